package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"FormKeeper/internal/model"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	// успешное создание
	u, err := r.CreateUser(ctx, &model.User{Login: "john", Password: "hash"})
	assert.NoError(t, err)
	assert.NotZero(t, u.ID)

	// поиск по логину — найдено
	got, err := r.GetUserByLogin(ctx, "john")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// уникальный логин — вторая вставка должна дать ошибку
	_, err = r.CreateUser(ctx, &model.User{Login: "john", Password: "x"})
	assert.Error(t, err)

	// поиск несуществующего — ожидаем gorm.ErrRecordNotFound
	got, err = r.GetUserByLogin(ctx, "doesnotexist")
	assert.Nil(t, got)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestUserRepository_AccessKeyRotation(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, &model.User{Login: "alice", Password: "hash"})
	assert.NoError(t, err)

	// без ключа поиск по пустому ключу не находит никого
	_, err = r.GetUserByAccessKey(ctx, "")
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	assert.NoError(t, r.UpdateAccessKey(ctx, u.ID, "key-1"))
	got, err := r.GetUserByAccessKey(ctx, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// ротация: старый ключ перестаёт действовать
	assert.NoError(t, r.UpdateAccessKey(ctx, u.ID, "key-2"))
	_, err = r.GetUserByAccessKey(ctx, "key-1")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
	got, err = r.GetUserByAccessKey(ctx, "key-2")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
