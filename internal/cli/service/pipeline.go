package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"FormKeeper/internal/cli/api"
	"FormKeeper/internal/cli/filestore"
	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/config"
	"FormKeeper/internal/form"
)

// SendResult — итог отправки одной записи.
type SendResult struct {
	Outcome    api.Outcome
	Status     int
	InstanceID string
	// Message — готовый текст для пользователя (какой бы ни был итог).
	Message string
}

// Pipeline превращает запись и её вложения в последовательность multipart
// POST-запросов в пределах байтового бюджета. Сам ничего не удаляет из
// хранилищ: об успехе сообщает колбэком, очистка — дело вызывающего.
type Pipeline struct {
	cfg    *config.Config
	files  filestore.Backend
	client *http.Client
	logger *zap.SugaredLogger
	// onSuccess вызывается после полной отправки записи.
	onSuccess func(recordKey, instanceID string)
}

// NewPipeline собирает конвейер отправки. HTTP-клиент несёт общий щедрый
// таймаут: запрос в полёте не прерывается, по истечении считается сетевой
// ошибкой.
func NewPipeline(cfg *config.Config, files filestore.Backend, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		files:  files,
		client: &http.Client{Timeout: time.Duration(cfg.SubmitTimeout) * time.Second},
		logger: logger,
	}
}

// SetOnSuccess регистрирует обработчик успешного завершения отправки.
func (p *Pipeline) SetOnSuccess(fn func(recordKey, instanceID string)) { p.onSuccess = fn }

// Client возвращает HTTP-клиент конвейера (его же используют запросы ключа).
func (p *Pipeline) Client() *http.Client { return p.client }

// ErrNoData возвращается для записи без сериализованных данных.
var ErrNoData = errors.New("record has no data")

// Send отправляет одну запись. Вложения берутся из inMemory, если они
// переданы (немедленная отправка активной формы), иначе разыскиваются в
// хранилище по каталогу instanceID.
//
// Батчи уходят строго последовательно: следующий собирается только после
// ответа на предыдущий, первый неуспешный ответ останавливает отправку.
func (p *Pipeline) Send(ctx context.Context, recordKey string, rec *model.Record, inMemory []model.Media) (SendResult, error) {
	if rec == nil || rec.Data == "" {
		return SendResult{}, ErrNoData
	}

	instanceID, err := form.DeriveInstanceID(rec.Data)
	if err != nil {
		return SendResult{}, fmt.Errorf("record %q: %w", recordKey, err)
	}

	// одни клиенты захвата дают всем файлам одно имя; выравниваем с сервером
	xmlData, err := form.FixMediaNames(rec.Data)
	if err != nil {
		return SendResult{}, fmt.Errorf("record %q: %w", recordKey, err)
	}

	res := SendResult{InstanceID: instanceID}

	media := inMemory
	if media == nil {
		var notFound []string
		media, notFound, err = p.mediaFromStore(ctx, instanceID, rec.Data)
		if err != nil {
			return res, err
		}
		if len(notFound) > 0 {
			// при фактической отправке потерянное вложение фатально для записи
			res.Outcome = api.OutcomeClientError
			res.Message = "Could not find the following files: " + strings.Join(notFound, ", ")
			return res, nil
		}
	}

	url := api.SubmissionURL(p.cfg.ServerURL, rec.AccessKey, rec.EditTargetID, p.cfg.DeviceID)

	sizes := make([]int64, len(media))
	for i, m := range media {
		sizes[i] = m.Size
	}
	batches := BuildBatches(sizes, p.cfg.MaxPostSize, p.cfg.MaxBatchFiles)
	p.logger.Debugw("submitting record",
		"key", recordKey, "instance_id", instanceID, "attachments", len(media), "batches", len(batches))

	for _, batch := range batches {
		part := make([]model.Media, 0, len(batch.Indexes))
		for _, idx := range batch.Indexes {
			part = append(part, media[idx])
		}
		body, contentType, err := api.BuildBatchBody(xmlData, rec.AssignmentID, part, batch.Final)
		if err != nil {
			return res, err
		}
		status, postErr := api.PostBatch(ctx, p.client, url, body, contentType)
		res.Status = status
		res.Outcome = api.Classify(status)
		res.Message = api.UserMessage(status)
		if postErr != nil {
			p.logger.Infow("submission attempt failed", "key", recordKey, "error", postErr)
		}
		if !res.Outcome.Success() {
			// остальные батчи не отправляются
			return res, nil
		}
	}

	if p.onSuccess != nil {
		p.onSuccess(recordKey, instanceID)
	}
	return res, nil
}

// mediaFromStore разыскивает вложения записи в хранилище по именам файловых
// узлов данных. Возвращает найденные вложения и имена ненайденных.
func (p *Pipeline) mediaFromStore(ctx context.Context, instanceID, data string) ([]model.Media, []string, error) {
	names, err := form.MediaFileNames(data)
	if err != nil {
		return nil, nil, err
	}
	var media []model.Media
	var notFound []string
	for _, name := range names {
		m, err := p.files.RetrieveFile(ctx, instanceID, name)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieve %q: %w", filestore.Key(instanceID, name), err)
		}
		if !m.Found() {
			notFound = append(notFound, name)
			continue
		}
		media = append(media, m)
	}
	return media, notFound, nil
}
