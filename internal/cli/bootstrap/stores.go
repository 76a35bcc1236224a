package bootstrap

import (
	"context"
	"fmt"

	"FormKeeper/internal/cli/filestore"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/config"
)

// Stores — открытые клиентские хранилища.
type Stores struct {
	Records *store.RecordStore
	Files   filestore.Backend
}

// OpenStores открывает хранилище записей и хранилище вложений, выполняет
// миграции и возвращает (stores, cleanup, error). cleanup необходимо вызвать
// после окончания работы, чтобы закрыть соединения.
//
// Бэкенд вложений выбирается пробой: предпочитается SQLite рядом с БД
// записей, при его недоступности — каталог на файловой системе.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, func() error, error) {
	records, _, err := store.Open(cfg.ClientDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open record store: %w", err)
	}
	if err := records.Migrate(); err != nil {
		_ = records.Close()
		return nil, nil, fmt.Errorf("migrate record store: %w", err)
	}
	records.SetQuota(cfg.MaxStorageBytes)

	files, err := filestore.Select(ctx,
		filestore.NewSQLiteBackend(cfg.ClientDBPath),
		filestore.NewFSBackend(cfg.AttachDir),
	)
	if err != nil {
		_ = records.Close()
		return nil, nil, fmt.Errorf("open attachment store: %w", err)
	}

	cleanup := func() error {
		ferr := files.Close()
		rerr := records.Close()
		if rerr != nil {
			return rerr
		}
		return ferr
	}
	return &Stores{Records: records, Files: files}, cleanup, nil
}

// CleanupOrphans удаляет все вложения, когда очередь записей пуста: после
// штатной отправки всей очереди осиротевших файлов быть не должно.
func CleanupOrphans(ctx context.Context, s *Stores) error {
	if len(s.Records.GetSurveyRecords(false, "")) > 0 {
		return nil
	}
	return s.Files.DeleteAll(ctx)
}
