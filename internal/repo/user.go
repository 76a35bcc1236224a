package repo

import (
	"context"

	"gorm.io/gorm"

	"FormKeeper/internal/model"
)

// UserRepository — контракт доступа к пользователям для слоя сервиса.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	// GetUserByAccessKey находит пользователя по действующему ключу доступа.
	GetUserByAccessKey(ctx context.Context, key string) (*model.User, error)
	// UpdateAccessKey заменяет ключ доступа пользователя; прежний ключ
	// перестаёт действовать.
	UpdateAccessKey(ctx context.Context, userID int64, key string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория пользователей.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByAccessKey(ctx context.Context, key string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("access_key = ? AND access_key <> ''", key).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateAccessKey(ctx context.Context, userID int64, key string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("access_key", key).Error
}
