package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"FormKeeper/internal/model"
)

// SubmissionRepository — контракт доступа к принятым записям.
type SubmissionRepository interface {
	// GetByInstanceID возвращает запись пользователя по instanceID вместе
	// с её вложениями, gorm.ErrRecordNotFound если её нет.
	GetByInstanceID(ctx context.Context, userID int64, instanceID string) (*model.Submission, error)
	Create(ctx context.Context, sub *model.Submission) error
	// AddAttachments дописывает файлы к записи; одноимённый файл того же
	// батча-повтора молча пропускается.
	AddAttachments(ctx context.Context, submissionID string, atts []model.Attachment) error
	// Update переписывает XML и флаг завершённости записи.
	Update(ctx context.Context, submissionID, xml string, complete bool) error
	// ListByUser возвращает записи пользователя, новые первыми.
	ListByUser(ctx context.Context, userID int64) ([]model.Submission, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepository создаёт реализацию репозитория записей.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) GetByInstanceID(ctx context.Context, userID int64, instanceID string) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("user_id = ? AND instance_id = ?", userID, instanceID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepo) AddAttachments(ctx context.Context, submissionID string, atts []model.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	for i := range atts {
		atts[i].SubmissionID = submissionID
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "file_name"}},
		DoNothing: true,
	}).Create(&atts).Error
}

func (r *submissionRepo) Update(ctx context.Context, submissionID, xml string, complete bool) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", submissionID).
		Updates(map[string]any{"xml": xml, "complete": complete}).Error
}

func (r *submissionRepo) ListByUser(ctx context.Context, userID int64) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
