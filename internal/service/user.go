package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"FormKeeper/internal/model"
	"FormKeeper/internal/repo"
)

// ErrLoginTaken возвращается при регистрации на занятый логин.
var ErrLoginTaken = errors.New("login already taken")

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid login or password")

// ErrUnknownAccessKey возвращается, когда ключ доступа не действует.
var ErrUnknownAccessKey = errors.New("unknown access key")

// UserService — бизнес-логика пользователей: регистрация, вход и выдача
// ключей доступа для отправок.
type UserService struct {
	repo repo.UserRepository
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r}
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, &model.User{Login: login, Password: string(hash)})
}

// Login проверяет пару логин/пароль.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueAccessKey выдаёт пользователю новый ключ доступа для отправок,
// отзывая прежний. Клиент запрашивает его после 401.
func (s *UserService) IssueAccessKey(ctx context.Context, userID int64) (string, error) {
	key := uuid.NewString()
	if err := s.repo.UpdateAccessKey(ctx, userID, key); err != nil {
		return "", err
	}
	return key, nil
}

// UserByAccessKey находит пользователя по действующему ключу доступа.
func (s *UserService) UserByAccessKey(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, ErrUnknownAccessKey
	}
	u, err := s.repo.GetUserByAccessKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownAccessKey
		}
		return nil, err
	}
	return u, nil
}
