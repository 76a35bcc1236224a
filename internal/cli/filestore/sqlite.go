package filestore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"FormKeeper/internal/cli/model"
)

// SQLiteBackend — структурный бэкенд вложений поверх локальной БД SQLite.
// Предпочтительный вариант: содержимое и размер лежат в одной таблице,
// удаление каталога — одним запросом по префиксу ключа.
type SQLiteBackend struct {
	dir string
	db  *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend создаёт бэкенд с БД в каталоге dir.
func NewSQLiteBackend(dir string) *SQLiteBackend {
	return &SQLiteBackend{dir: dir}
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

// IsSupported проверяет, что каталог и БД доступны на запись.
func (b *SQLiteBackend) IsSupported(ctx context.Context) bool {
	if b.dir == "" {
		return false
	}
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return false
	}
	db, err := sql.Open("sqlite", filepath.Join(b.dir, "attachments.sqlite"))
	if err != nil {
		return false
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return false
	}
	b.db = db
	return true
}

// Init гарантирует наличие таблицы вложений.
func (b *SQLiteBackend) Init(ctx context.Context) error {
	if b.db == nil {
		return errors.New("sqlite backend not probed")
	}
	const ddl = `
CREATE TABLE IF NOT EXISTS attachments (
  key TEXT PRIMARY KEY,
  file_name TEXT NOT NULL,
  content BLOB NOT NULL,
  size INTEGER NOT NULL
);
`
	_, err := b.db.ExecContext(ctx, ddl)
	return err
}

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) SaveFile(ctx context.Context, media model.Media) error {
	if media.Directory == "" || media.FileName == "" {
		return errors.New("attachment requires directory and file name")
	}
	size := media.Size
	if size == 0 {
		size = int64(len(media.Blob))
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO attachments(key, file_name, content, size) VALUES(?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content, size = excluded.size`,
		Key(media.Directory, media.FileName), media.FileName, media.Blob, size)
	return err
}

func (b *SQLiteBackend) GetFile(ctx context.Context, fileName, directory string) (string, error) {
	key := Key(directory, fileName)
	var one int
	err := b.db.QueryRowContext(ctx, `SELECT 1 FROM attachments WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

func (b *SQLiteBackend) RetrieveFile(ctx context.Context, directory, fileName string) (model.Media, error) {
	out := model.Media{Directory: directory, FileName: fileName}
	var blob []byte
	var size int64
	err := b.db.QueryRowContext(ctx,
		`SELECT content, size FROM attachments WHERE key = ?`,
		Key(directory, fileName)).Scan(&blob, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if blob == nil {
		blob = []byte{}
	}
	out.Blob, out.Size = blob, size
	return out, nil
}

func (b *SQLiteBackend) DeleteDirectory(ctx context.Context, directory string) error {
	if directory == "" {
		return nil
	}
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM attachments WHERE key LIKE ? ESCAPE '\'`,
		likePrefix(Namespace+"/"+directory+"/"))
	return err
}

func (b *SQLiteBackend) DeleteAll(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM attachments`)
	return err
}

// likePrefix экранирует префикс для оператора LIKE.
func likePrefix(p string) string {
	out := make([]byte, 0, len(p)+2)
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, p[i])
	}
	return string(append(out, '%'))
}
