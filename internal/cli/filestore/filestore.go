// Package filestore — долговременное хранилище бинарных вложений записей.
// Вложения группируются по каталогу (instanceID владеющей записи); составной
// ключ каталог+имя уникален. Доступно несколько взаимозаменяемых бэкендов за
// одним интерфейсом; выбор делается один раз на старте пробой возможностей.
package filestore

import (
	"context"
	"errors"

	"FormKeeper/internal/cli/model"
)

// Namespace — префикс пространства ключей вложений. Защищает от пересечения
// с записями формы, если бэкенд делит с ними носитель.
const Namespace = "fs:"

// Key строит составной ключ вложения: "<namespace>/<directory>/<fileName>".
func Key(directory, fileName string) string {
	return Namespace + "/" + directory + "/" + fileName
}

// Backend — контракт бэкенда хранилища вложений.
type Backend interface {
	// Name возвращает имя бэкенда для логов.
	Name() string
	// IsSupported сообщает, доступен ли бэкенд в текущем окружении.
	IsSupported(ctx context.Context) bool
	// Init подготавливает бэкенд к работе.
	Init(ctx context.Context) error
	// SaveFile сохраняет вложение. Идемпотентна: существующая запись под тем
	// же ключом перезаписывается.
	SaveFile(ctx context.Context, media model.Media) error
	// GetFile возвращает ссылку на вложение или "" если его нет.
	// Отсутствие — не ошибка.
	GetFile(ctx context.Context, fileName, directory string) (string, error)
	// RetrieveFile разрешает имя файла в содержимое. Когда вложение не
	// найдено, возвращает Media с нулевым Blob, а не ошибку: вызывающий сам
	// решает, пропустить или считать сбоем.
	RetrieveFile(ctx context.Context, directory, fileName string) (model.Media, error)
	// DeleteDirectory удаляет все вложения каталога вместе с выданными на них
	// ссылками. Пустой каталог — no-op, не ошибка.
	DeleteDirectory(ctx context.Context, directory string) error
	// DeleteAll удаляет все вложения во всех каталогах.
	DeleteAll(ctx context.Context) error
	// Close освобождает ресурсы бэкенда.
	Close() error
}

// ErrNoBackend возвращается пробой, когда ни один бэкенд не поддерживается.
var ErrNoBackend = errors.New("no supported attachment backend")

// Select выбирает первый поддерживаемый бэкенд из списка кандидатов и
// инициализирует его. Предпочтительный (структурный) бэкенд ставится первым,
// простой резервный — последним.
func Select(ctx context.Context, candidates ...Backend) (Backend, error) {
	for _, b := range candidates {
		if !b.IsSupported(ctx) {
			continue
		}
		if err := b.Init(ctx); err != nil {
			continue
		}
		return b, nil
	}
	return nil, ErrNoBackend
}
