package model

import "time"

// User — серверная модель пользователя-отправителя.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш

	// AccessKey — действующий ключ доступа для отправок по /submission/key/...
	// Выдаётся по GET /login/key и заменяется при каждом обновлении; отправка
	// со старым ключом получает 401.
	AccessKey string `gorm:"index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
