package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"FormKeeper/internal/config"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/база/вложения) создавались в temp.
func withTempConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)

	cfg := config.NewTestConfig()
	cfg.ClientDBPath = db
	cfg.AttachDir = filepath.Join(dir, "attachments")
	return cfg
}

// captureOut подменяет writer вывода CLI и возвращает буфер с ним.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := Out
	buf := &bytes.Buffer{}
	Out = buf
	t.Cleanup(func() { Out = prev })
	return buf
}

// writeFile кладёт содержимое во временный файл и возвращает путь.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

const cmdInstanceXML = `<survey id="s1"><site>x</site><meta><instanceID>uuid:cmd1</instanceID></meta></survey>`
