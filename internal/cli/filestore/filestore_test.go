package filestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormKeeper/internal/cli/model"
)

// backends возвращает оба бэкенда, инициализированных во временных каталогах.
func backends(t *testing.T) []Backend {
	t.Helper()
	ctx := context.Background()

	sq := NewSQLiteBackend(t.TempDir())
	require.True(t, sq.IsSupported(ctx))
	require.NoError(t, sq.Init(ctx))
	t.Cleanup(func() { _ = sq.Close() })

	fsb := NewFSBackend(t.TempDir())
	require.True(t, fsb.IsSupported(ctx))
	require.NoError(t, fsb.Init(ctx))

	return []Backend{sq, fsb}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "fs:/uuid:abc/photo.jpg", Key("uuid:abc", "photo.jpg"))
}

func TestBackend_SaveRetrieveOverwrite(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.Name(), func(t *testing.T) {
			m := model.Media{Directory: "uuid:1", FileName: "photo.jpg", Blob: []byte("one")}
			require.NoError(t, b.SaveFile(ctx, m))

			got, err := b.RetrieveFile(ctx, "uuid:1", "photo.jpg")
			require.NoError(t, err)
			require.True(t, got.Found())
			assert.Equal(t, []byte("one"), got.Blob)
			assert.Equal(t, int64(3), got.Size)

			// повторное сохранение под тем же ключом перезаписывает содержимое
			m.Blob = []byte("two!")
			require.NoError(t, b.SaveFile(ctx, m))
			got, err = b.RetrieveFile(ctx, "uuid:1", "photo.jpg")
			require.NoError(t, err)
			assert.Equal(t, []byte("two!"), got.Blob)
			assert.Equal(t, int64(4), got.Size)
		})
	}
}

func TestBackend_MissingFileIsNotAnError(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.Name(), func(t *testing.T) {
			ref, err := b.GetFile(ctx, "absent.jpg", "uuid:1")
			require.NoError(t, err)
			assert.Empty(t, ref)

			got, err := b.RetrieveFile(ctx, "uuid:1", "absent.jpg")
			require.NoError(t, err)
			assert.False(t, got.Found())
			assert.Equal(t, "absent.jpg", got.FileName)
		})
	}
}

func TestBackend_DeleteDirectory(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.Name(), func(t *testing.T) {
			require.NoError(t, b.SaveFile(ctx, model.Media{Directory: "uuid:1", FileName: "a.jpg", Blob: []byte("a")}))
			require.NoError(t, b.SaveFile(ctx, model.Media{Directory: "uuid:1", FileName: "b.jpg", Blob: []byte("b")}))
			require.NoError(t, b.SaveFile(ctx, model.Media{Directory: "uuid:2", FileName: "c.jpg", Blob: []byte("c")}))

			require.NoError(t, b.DeleteDirectory(ctx, "uuid:1"))

			// все ссылки каталога отозваны
			ref, err := b.GetFile(ctx, "a.jpg", "uuid:1")
			require.NoError(t, err)
			assert.Empty(t, ref)
			ref, err = b.GetFile(ctx, "b.jpg", "uuid:1")
			require.NoError(t, err)
			assert.Empty(t, ref)

			// соседний каталог не задет
			got, err := b.RetrieveFile(ctx, "uuid:2", "c.jpg")
			require.NoError(t, err)
			assert.True(t, got.Found())

			// повторное удаление уже пустого каталога — no-op, не ошибка
			assert.NoError(t, b.DeleteDirectory(ctx, "uuid:1"))
			assert.NoError(t, b.DeleteDirectory(ctx, "never-existed"))
		})
	}
}

func TestBackend_DeleteAll(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.Name(), func(t *testing.T) {
			require.NoError(t, b.SaveFile(ctx, model.Media{Directory: "d1", FileName: "a", Blob: []byte("a")}))
			require.NoError(t, b.SaveFile(ctx, model.Media{Directory: "d2", FileName: "b", Blob: []byte("b")}))

			require.NoError(t, b.DeleteAll(ctx))

			for _, d := range []string{"d1", "d2"} {
				got, err := b.RetrieveFile(ctx, d, "a")
				require.NoError(t, err)
				assert.False(t, got.Found())
			}
		})
	}
}

func TestSelect_PrefersFirstSupported(t *testing.T) {
	ctx := context.Background()

	// структурный бэкенд без каталога не поддерживается — выбирается резервный
	b, err := Select(ctx, NewSQLiteBackend(""), NewFSBackend(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "fs", b.Name())

	// при доступности обоих предпочитается структурный
	sq := NewSQLiteBackend(t.TempDir())
	b, err = Select(ctx, sq, NewFSBackend(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", b.Name())
	_ = b.Close()

	_, err = Select(ctx, NewSQLiteBackend(""), NewFSBackend(""))
	assert.ErrorIs(t, err, ErrNoBackend)
}
