package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/cli/ui"
)

// Scheduler прогоняет все нечерновые записи через контроллер отправки.
// Два независимых флага не дают автоматическому и ручному проходам
// накладываться друг на друга.
type Scheduler struct {
	records   *store.RecordStore
	submitter *Submitter
	ui        ui.UI
	logger    *zap.SugaredLogger

	mu               sync.Mutex
	autoInProgress   bool
	manualInProgress bool

	// onListChanged вызывается после каждого прохода очереди.
	onListChanged func([]model.RecordInfo)
}

// NewScheduler собирает планировщик очереди.
func NewScheduler(records *store.RecordStore, submitter *Submitter, u ui.UI, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{records: records, submitter: submitter, ui: u, logger: logger}
}

// SetOnListChanged регистрирует получателя уведомлений об изменении очереди.
func (s *Scheduler) SetOnListChanged(fn func([]model.RecordInfo)) { s.onListChanged = fn }

// begin занимает флаг прохода. Возвращает false, если любой из двух проходов
// уже идёт.
func (s *Scheduler) begin(manual bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autoInProgress || s.manualInProgress {
		return false
	}
	if manual {
		s.manualInProgress = true
	} else {
		s.autoInProgress = true
	}
	return true
}

func (s *Scheduler) end(manual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if manual {
		s.manualInProgress = false
	} else {
		s.autoInProgress = false
	}
}

// Busy сообщает, идёт ли сейчас какой-либо проход очереди.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoInProgress || s.manualInProgress
}

// Drain отправляет очередь: снимок всех нечерновых записей, строго по одной.
// Ручной вызов при занятой очереди сообщает об этом пользователю, таймерный —
// молча выходит. Сбой отдельной записи логируется, но не прерывает проход.
func (s *Scheduler) Drain(ctx context.Context, manual bool) {
	if !s.begin(manual) {
		if manual {
			s.ui.Alert("A submission is already in progress. Try again later.")
		}
		return
	}
	defer func() {
		s.end(manual)
		if s.onListChanged != nil {
			s.onListChanged(s.records.GetRecordList())
		}
	}()

	records := s.records.GetSurveyRecords(true, "")
	if len(records) == 0 {
		return
	}
	if manual {
		s.ui.Feedback("Submitting queued records…", 3)
	}
	for i := range records {
		select {
		case <-ctx.Done():
			return
		default:
		}
		rec := records[i]
		if _, err := s.submitter.SubmitRecord(ctx, rec.Key, &rec.Record, nil); err != nil {
			// изоляция сбоев: остальные записи прохода всё равно отправляются
			s.logger.Warnw("queued record submission failed", "key", rec.Key, "error", err)
		}
	}
}

// SubmitSingle немедленно отправляет одну запись вне общего прохода, под
// ручным флагом; вложения активной формы передаются из памяти.
func (s *Scheduler) SubmitSingle(ctx context.Context, key string, rec *model.Record, inMemory []model.Media) (SendResult, error) {
	if !s.begin(true) {
		s.ui.Alert("A submission is already in progress. Try again later.")
		return SendResult{}, nil
	}
	defer func() {
		s.end(true)
		if s.onListChanged != nil {
			s.onListChanged(s.records.GetRecordList())
		}
	}()
	return s.submitter.SubmitRecord(ctx, key, rec, inMemory)
}

// Run запускает периодические автоматические проходы: первый — с небольшой
// задержкой после старта, дальше по интервалу, до отмены контекста.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	first := time.NewTimer(5 * time.Second)
	defer first.Stop()
	select {
	case <-ctx.Done():
		return
	case <-first.C:
		s.Drain(ctx, false)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Drain(ctx, false)
		}
	}
}
