package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"FormKeeper/internal/cli/api"
	"FormKeeper/internal/cli/filestore"
	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/cli/ui"
	"FormKeeper/internal/config"
)

// Submitter — контроллер жизненного цикла отправки: гоняет запись через
// конвейер, один раз обновляет истёкший ключ доступа, а после подтверждённой
// доставки вычищает запись и её вложения из локальных хранилищ.
type Submitter struct {
	cfg      *config.Config
	records  *store.RecordStore
	files    filestore.Backend
	pipeline *Pipeline
	ui       ui.UI
	logger   *zap.SugaredLogger
}

// NewSubmitter собирает контроллер и подписывает его на успехи конвейера.
func NewSubmitter(cfg *config.Config, records *store.RecordStore, files filestore.Backend, pipeline *Pipeline, u ui.UI, logger *zap.SugaredLogger) *Submitter {
	s := &Submitter{cfg: cfg, records: records, files: files, pipeline: pipeline, ui: u, logger: logger}
	pipeline.SetOnSuccess(s.complete)
	return s
}

// complete вычищает локальное состояние после подтверждённой доставки.
func (s *Submitter) complete(recordKey, instanceID string) {
	if err := s.files.DeleteDirectory(context.Background(), instanceID); err != nil {
		s.logger.Warnw("failed to delete attachment directory", "instance_id", instanceID, "error", err)
	}
	s.records.RemoveRecord(recordKey)
	s.logger.Infow("record submitted and purged", "key", recordKey, "instance_id", instanceID)
}

// SubmitRecord отправляет одну запись. При 401 запрашивает свежий ключ
// доступа, переписывает его в записи и повторяет ту же запись один раз;
// повторный 401 считается временной ошибкой.
func (s *Submitter) SubmitRecord(ctx context.Context, key string, rec *model.Record, inMemory []model.Media) (SendResult, error) {
	res, err := s.pipeline.Send(ctx, key, rec, inMemory)
	if err != nil {
		return res, err
	}

	if res.Outcome == api.OutcomeAuthExpired {
		newKey, kerr := api.RefreshAccessKey(ctx, s.pipeline.Client(), s.cfg.ServerURL)
		if kerr != nil {
			s.logger.Infow("access key refresh failed", "key", key, "error", kerr)
			s.report(key, res)
			return res, nil
		}
		rec.AccessKey = newKey
		if st := s.records.SetRecord(key, rec, false, true, key); st != store.StatusSuccess {
			s.logger.Warnw("failed to persist refreshed access key", "key", key, "status", st)
		}
		res, err = s.pipeline.Send(ctx, key, rec, inMemory)
		if err != nil {
			return res, err
		}
	}

	s.report(key, res)
	return res, nil
}

// report показывает итог пользователю: успех и временные сбои — тостом
// (операция повторится сама), фатальные ошибки записи — блокирующим alert.
func (s *Submitter) report(key string, res SendResult) {
	switch {
	case res.Outcome.Success():
		s.ui.Feedback(fmt.Sprintf("%s: %s", key, res.Message), 3)
	case res.Outcome == api.OutcomeClientError:
		s.ui.Alert(fmt.Sprintf("%s: %s", key, res.Message))
	default:
		s.ui.Feedback(fmt.Sprintf("%s: %s", key, res.Message), 10)
	}
}
