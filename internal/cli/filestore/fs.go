package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"FormKeeper/internal/cli/model"
)

// FSBackend — простой резервный бэкенд: по файлу на вложение в дереве
// <base>/<directory>/<fileName>. Всегда доступен, пока доступна файловая
// система. Выданная GetFile ссылка — путь к файлу; она перестаёт действовать
// ровно в момент удаления записи, дольше ссылок бэкенд не держит.
type FSBackend struct {
	base string
}

var _ Backend = (*FSBackend)(nil)

// NewFSBackend создаёт бэкенд с корнем в каталоге base.
func NewFSBackend(base string) *FSBackend {
	return &FSBackend{base: base}
}

func (b *FSBackend) Name() string { return "fs" }

func (b *FSBackend) IsSupported(_ context.Context) bool { return b.base != "" }

func (b *FSBackend) Init(_ context.Context) error {
	return os.MkdirAll(b.base, 0o700)
}

func (b *FSBackend) Close() error { return nil }

// path собирает путь файла; имена проходят через filepath.Base, чтобы ключ
// не мог выйти за пределы своего каталога.
func (b *FSBackend) path(directory, fileName string) string {
	return filepath.Join(b.base, filepath.Base(directory), filepath.Base(fileName))
}

func (b *FSBackend) SaveFile(_ context.Context, media model.Media) error {
	if media.Directory == "" || media.FileName == "" {
		return errors.New("attachment requires directory and file name")
	}
	dir := filepath.Join(b.base, filepath.Base(media.Directory))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(b.path(media.Directory, media.FileName), media.Blob, 0o600)
}

func (b *FSBackend) GetFile(_ context.Context, fileName, directory string) (string, error) {
	p := b.path(directory, fileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return p, nil
}

func (b *FSBackend) RetrieveFile(_ context.Context, directory, fileName string) (model.Media, error) {
	out := model.Media{Directory: directory, FileName: fileName}
	blob, err := os.ReadFile(b.path(directory, fileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return out, err
	}
	out.Blob = blob
	out.Size = int64(len(blob))
	return out, nil
}

func (b *FSBackend) DeleteDirectory(_ context.Context, directory string) error {
	if directory == "" {
		return nil
	}
	// RemoveAll молчит об отсутствующем каталоге — пустой каталог не ошибка
	return os.RemoveAll(filepath.Join(b.base, filepath.Base(directory)))
}

func (b *FSBackend) DeleteAll(_ context.Context) error {
	entries, err := os.ReadDir(b.base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(b.base, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
