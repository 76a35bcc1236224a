package model

import "time"

// Submission — принятая запись формы. Батчи одной записи собираются в одну
// строку по instanceID: нефинальные батчи оставляют Complete=false, финальный
// батч переводит запись в завершённые.
type Submission struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;uniqueIndex:idx_user_instance"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// InstanceID — идентификатор инстанса из XML записи; уникален в пределах
	// пользователя и служит ключом сборки батчей и отсечения дублей.
	InstanceID string `gorm:"not null;uniqueIndex:idx_user_instance"`

	// XML — сериализованные данные записи (приходят с каждым батчем).
	XML string `gorm:"not null"`

	DeviceID     string
	AssignmentID string

	// EditTargetID — instanceID ранее принятой записи, которую эта заменяет.
	EditTargetID string `gorm:"index"`

	Complete bool `gorm:"not null;default:false"`

	Attachments []Attachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Attachment — файл, пришедший с одним из батчей записи.
type Attachment struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	SubmissionID string `gorm:"not null;uniqueIndex:idx_submission_file"`
	FileName     string `gorm:"not null;uniqueIndex:idx_submission_file"`
	Content      []byte `gorm:"not null"`
	Size         int64  `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
