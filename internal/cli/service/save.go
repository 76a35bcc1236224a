package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"FormKeeper/internal/cli/filestore"
	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/config"
	"FormKeeper/internal/form"
)

// SaveOptions — параметры сохранения записи.
type SaveOptions struct {
	// Name — ключ записи. Пустое имя заменяется автоименем со счётчиком.
	Name string
	// Data — сериализованный XML инстанса.
	Data  string
	Draft bool
	// Media — вложения активной сессии; сохраняются под каталогом instanceID.
	Media []model.Media
	// OldKey и Overwrite — для пересохранения и переименования.
	OldKey    string
	Overwrite bool

	AssignmentID string
	EditTargetID string
	AccessKey    string
}

// Saver сохраняет записи и их вложения, поддерживая согласованность двух
// хранилищ: вложения пишутся под каталогом instanceID, при переименовании
// со сменой instanceID каталог мигрирует вслед за записью.
type Saver struct {
	cfg     *config.Config
	records *store.RecordStore
	files   filestore.Backend
	logger  *zap.SugaredLogger
}

// NewSaver собирает сервис сохранения.
func NewSaver(cfg *config.Config, records *store.RecordStore, files filestore.Backend, logger *zap.SugaredLogger) *Saver {
	return &Saver{cfg: cfg, records: records, files: files, logger: logger}
}

// Save валидирует и сохраняет запись вместе с вложениями. Возвращает
// использованный ключ и статус хранилища; ошибка возможна только до первой
// записи в хранилища (валидация данных).
func (s *Saver) Save(ctx context.Context, opts SaveOptions) (string, store.Status, error) {
	if opts.Data == "" {
		return "", store.StatusRequire, fmt.Errorf("record has no data")
	}
	instanceID, err := form.DeriveInstanceID(opts.Data)
	if err != nil {
		// без instanceID негде хранить вложения — сохранение блокируется
		return "", store.StatusError, err
	}

	name := opts.Name
	if name == "" {
		name = "record - " + s.records.GetCounterValue()
	}

	rec := &model.Record{
		Data:         opts.Data,
		Draft:        opts.Draft,
		Form:         s.cfg.ServerURL,
		AssignmentID: opts.AssignmentID,
		EditTargetID: opts.EditTargetID,
		AccessKey:    opts.AccessKey,
	}

	// вложения пишутся до записи: сбой на полпути оставит лишние файлы,
	// но не запись без файлов
	if len(opts.Media) > 0 {
		if err := s.files.DeleteDirectory(ctx, instanceID); err != nil {
			return name, store.StatusError, err
		}
		for _, m := range opts.Media {
			m.Directory = instanceID
			if m.Size == 0 {
				m.Size = int64(len(m.Blob))
			}
			if err := s.files.SaveFile(ctx, m); err != nil {
				return name, store.StatusError, fmt.Errorf("save attachment %q: %w", m.FileName, err)
			}
		}
	}

	// переименование со сменой instanceID мигрирует каталог вложений,
	// чтобы за старой записью не оставались осиротевшие файлы
	if opts.OldKey != "" && opts.OldKey != name {
		if old := s.records.GetRecord(opts.OldKey); old != nil {
			if oldID, err := form.DeriveInstanceID(old.Data); err == nil && oldID != instanceID {
				if err := s.migrateDirectory(ctx, old.Data, oldID, instanceID); err != nil {
					s.logger.Warnw("attachment directory migration failed",
						"from", oldID, "to", instanceID, "error", err)
				}
			}
		}
	}

	status := s.records.SetRecord(name, rec, true, opts.Overwrite, opts.OldKey)
	return name, status, nil
}

// migrateDirectory переносит вложения старого каталога под новый instanceID.
func (s *Saver) migrateDirectory(ctx context.Context, oldData, fromDir, toDir string) error {
	names, err := form.MediaFileNames(oldData)
	if err != nil {
		return err
	}
	for _, fileName := range names {
		m, err := s.files.RetrieveFile(ctx, fromDir, fileName)
		if err != nil {
			return err
		}
		if !m.Found() {
			continue
		}
		m.Directory = toDir
		if err := s.files.SaveFile(ctx, m); err != nil {
			return err
		}
	}
	return s.files.DeleteDirectory(ctx, fromDir)
}

// DeleteRecord удаляет запись и каталог её вложений.
func (s *Saver) DeleteRecord(ctx context.Context, key string) bool {
	if rec := s.records.GetRecord(key); rec != nil {
		if instanceID, err := form.DeriveInstanceID(rec.Data); err == nil {
			if err := s.files.DeleteDirectory(ctx, instanceID); err != nil {
				s.logger.Warnw("failed to delete attachment directory", "instance_id", instanceID, "error", err)
			}
		}
	}
	return s.records.RemoveRecord(key)
}

// DeleteAll удаляет все записи и все вложения (после подтверждения в UI).
func (s *Saver) DeleteAll(ctx context.Context) {
	for _, rec := range s.records.GetSurveyRecords(false, "") {
		s.DeleteRecord(ctx, rec.Key)
	}
	// на всякий случай подчищаем и осиротевшие каталоги
	if err := s.files.DeleteAll(ctx); err != nil {
		s.logger.Warnw("failed to delete all attachments", "error", err)
	}
}
