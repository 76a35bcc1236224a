// Package auth хранит сессионную cookie CLI между запусками.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir    = "FormKeeper"
	tokenFile = "auth_token"
)

// tokenPath строит путь к файлу сессии в пользовательском каталоге
// конфигурации.
func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, appDir, tokenFile), nil
}

// SaveToken сохраняет значение сессионной cookie.
func SaveToken(token string) error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// LoadToken возвращает сохранённую cookie. Отсутствие файла или пустое
// содержимое означает, что сессии нет.
func LoadToken() (string, error) {
	p, err := tokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", fmt.Errorf("no stored session in %s", p)
	}
	return token, nil
}
