package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormKeeper/internal/cli/auth"
)

// изолируем каталог конфигурации пользователя
func setupConfigDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
}

func TestRefreshAccessKey(t *testing.T) {
	setupConfigDir(t)
	require.NoError(t, auth.SaveToken("tok-1"))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/key", r.URL.Path)
		require.Equal(t, "user", r.URL.Query().Get("form"))
		c, err := r.Cookie("auth_token")
		require.NoError(t, err)
		require.Equal(t, "tok-1", c.Value)
		_ = json.NewEncoder(w).Encode(map[string]string{"key": "fresh-key"})
	}))
	defer ts.Close()

	key, err := RefreshAccessKey(context.Background(), ts.Client(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "fresh-key", key)
}

func TestRefreshAccessKey_ServerError(t *testing.T) {
	setupConfigDir(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := RefreshAccessKey(context.Background(), ts.Client(), ts.URL)
	assert.Error(t, err)
}

func TestRefreshAccessKey_EmptyKey(t *testing.T) {
	setupConfigDir(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"key": ""})
	}))
	defer ts.Close()

	_, err := RefreshAccessKey(context.Background(), ts.Client(), ts.URL)
	assert.Error(t, err)
}
