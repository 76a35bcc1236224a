package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"FormKeeper/internal/form"
	"FormKeeper/internal/model"
	"FormKeeper/internal/repo"
)

// ReceiveOutcome — итог приёма батча.
type ReceiveOutcome int

const (
	// OutcomeStored — запись принята целиком и завершена этим батчем.
	OutcomeStored ReceiveOutcome = iota
	// OutcomePartial — принят нефинальный батч, запись ждёт продолжения.
	OutcomePartial
	// OutcomeDuplicate — запись с этим instanceID уже завершена ранее.
	OutcomeDuplicate
)

// ErrMissingInstanceID возвращается для батча без instanceID.
var ErrMissingInstanceID = errors.New("submission has no instance id")

// ReceiveRequest — один батч отправки, как его разобрал хендлер.
type ReceiveRequest struct {
	InstanceID   string
	XML          string
	DeviceID     string
	AssignmentID string
	EditTargetID string
	// Incomplete — батч помечен маркером неполноты: продолжение следует.
	Incomplete  bool
	Attachments []model.Attachment
}

// SubmissionService собирает батчи в записи. Батчи одной записи склеиваются
// по instanceID: вложения дописываются, финальный батч замораживает запись,
// повторная доставка завершённой записи не дублирует её.
type SubmissionService struct {
	repo   repo.SubmissionRepository
	logger *zap.SugaredLogger
}

func NewSubmissionService(r repo.SubmissionRepository, logger *zap.SugaredLogger) *SubmissionService {
	return &SubmissionService{repo: r, logger: logger}
}

// Receive принимает один батч от пользователя userID.
func (s *SubmissionService) Receive(ctx context.Context, userID int64, req ReceiveRequest) (ReceiveOutcome, error) {
	if req.InstanceID == "" {
		return 0, ErrMissingInstanceID
	}

	existing, err := s.repo.GetByInstanceID(ctx, userID, req.InstanceID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if existing != nil && existing.Complete {
		// повторная доставка: клиент не получил наш прошлый ответ
		s.logger.Infow("duplicate submission", "user_id", userID, "instance_id", req.InstanceID)
		return OutcomeDuplicate, nil
	}

	// файлы приходят под исходными именами; дублирующиеся стандартные имена
	// переписываются той же схемой, что и ссылки в XML на клиенте. Счётчики
	// продолжаются за именами, принятыми прошлыми батчами этой записи.
	var namer form.MediaNamer
	if existing != nil {
		for _, a := range existing.Attachments {
			namer.Observe(a.FileName)
		}
	}
	for i := range req.Attachments {
		req.Attachments[i].FileName = namer.Fix(req.Attachments[i].FileName)
	}

	if existing == nil {
		sub := &model.Submission{
			ID:           uuid.NewString(),
			UserID:       userID,
			InstanceID:   req.InstanceID,
			XML:          req.XML,
			DeviceID:     req.DeviceID,
			AssignmentID: req.AssignmentID,
			EditTargetID: req.EditTargetID,
			Complete:     !req.Incomplete,
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return 0, err
		}
		if err := s.repo.AddAttachments(ctx, sub.ID, req.Attachments); err != nil {
			return 0, err
		}
		if req.Incomplete {
			return OutcomePartial, nil
		}
		s.logger.Infow("submission stored", "user_id", userID, "instance_id", req.InstanceID)
		return OutcomeStored, nil
	}

	// продолжение начатой записи: дописываем вложения очередного батча
	if err := s.repo.AddAttachments(ctx, existing.ID, req.Attachments); err != nil {
		return 0, err
	}
	if req.Incomplete {
		return OutcomePartial, nil
	}
	if err := s.repo.Update(ctx, existing.ID, req.XML, true); err != nil {
		return 0, err
	}
	s.logger.Infow("submission completed", "user_id", userID, "instance_id", req.InstanceID, "batched", true)
	return OutcomeStored, nil
}

// List возвращает записи пользователя, новые первыми.
func (s *SubmissionService) List(ctx context.Context, userID int64) ([]model.Submission, error) {
	return s.repo.ListByUser(ctx, userID)
}
