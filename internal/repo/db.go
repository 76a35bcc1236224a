package repo

import (
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"

	"FormKeeper/internal/model"
)

// InitDB открывает БД сервера и накатывает миграции. Непустой DSN — Postgres,
// иначе локальный SQLite-файл (режим разработки и тестов).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if dsn != "" {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "formkeeper.sqlite"}
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Submission{}, &model.Attachment{}); err != nil {
		return nil, err
	}
	return db, nil
}
