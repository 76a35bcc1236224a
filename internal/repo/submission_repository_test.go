package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"FormKeeper/internal/model"
)

func TestSubmissionRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewSubmissionRepository(db)
	ctx := context.Background()

	sub := &model.Submission{
		ID:         uuid.NewString(),
		UserID:     1,
		InstanceID: "uuid:a1",
		XML:        "<survey/>",
		DeviceID:   "webform",
	}
	require.NoError(t, r.Create(ctx, sub))

	got, err := r.GetByInstanceID(ctx, 1, "uuid:a1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.False(t, got.Complete)

	// instanceID другого пользователя не виден
	_, err = r.GetByInstanceID(ctx, 2, "uuid:a1")
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	// instanceID уникален в пределах пользователя
	dup := &model.Submission{ID: uuid.NewString(), UserID: 1, InstanceID: "uuid:a1", XML: "<x/>"}
	assert.Error(t, r.Create(ctx, dup))
}

func TestSubmissionRepository_AddAttachmentsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewSubmissionRepository(db)
	ctx := context.Background()

	sub := &model.Submission{ID: uuid.NewString(), UserID: 1, InstanceID: "uuid:a2", XML: "<survey/>"}
	require.NoError(t, r.Create(ctx, sub))

	atts := []model.Attachment{
		{ID: uuid.NewString(), FileName: "photo.jpg", Content: []byte("jpeg"), Size: 4},
	}
	require.NoError(t, r.AddAttachments(ctx, sub.ID, atts))

	// повтор того же батча не дублирует файл
	again := []model.Attachment{
		{ID: uuid.NewString(), FileName: "photo.jpg", Content: []byte("jpeg"), Size: 4},
	}
	require.NoError(t, r.AddAttachments(ctx, sub.ID, again))

	var count int64
	require.NoError(t, db.Model(&model.Attachment{}).Where("submission_id = ?", sub.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// запись возвращается вместе с принятыми вложениями
	got, err := r.GetByInstanceID(ctx, 1, "uuid:a2")
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "photo.jpg", got.Attachments[0].FileName)
}

func TestSubmissionRepository_UpdateCompletes(t *testing.T) {
	db := newTestDB(t)
	r := NewSubmissionRepository(db)
	ctx := context.Background()

	sub := &model.Submission{ID: uuid.NewString(), UserID: 1, InstanceID: "uuid:a3", XML: "<v1/>"}
	require.NoError(t, r.Create(ctx, sub))

	require.NoError(t, r.Update(ctx, sub.ID, "<v2/>", true))

	got, err := r.GetByInstanceID(ctx, 1, "uuid:a3")
	require.NoError(t, err)
	assert.Equal(t, "<v2/>", got.XML)
	assert.True(t, got.Complete)
}

func TestSubmissionRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	r := NewSubmissionRepository(db)
	ctx := context.Background()

	for _, id := range []string{"uuid:b1", "uuid:b2"} {
		require.NoError(t, r.Create(ctx, &model.Submission{
			ID: uuid.NewString(), UserID: 7, InstanceID: id, XML: "<x/>",
		}))
	}
	require.NoError(t, r.Create(ctx, &model.Submission{
		ID: uuid.NewString(), UserID: 8, InstanceID: "uuid:b3", XML: "<x/>",
	}))

	subs, err := r.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
