package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"FormKeeper/internal/cli/auth"
)

// keyResponse — ответ сервера на запрос ключа доступа.
type keyResponse struct {
	Key string `json:"key"`
}

// RefreshAccessKey запрашивает у сервера новый ключ доступа для отправок.
// Вызывается после 401: сервер сменил ключ пользователя, старый больше не действует.
func RefreshAccessKey(ctx context.Context, client *http.Client, serverURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL+"/login/key?form=user", nil)
	if err != nil {
		return "", err
	}
	if token, err := auth.LoadToken(); err == nil && token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh access key: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh access key: server status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var kr keyResponse
	if err := json.Unmarshal(body, &kr); err != nil {
		return "", fmt.Errorf("refresh access key: decode: %w", err)
	}
	if kr.Key == "" {
		return "", fmt.Errorf("refresh access key: empty key in response")
	}
	return kr.Key, nil
}
