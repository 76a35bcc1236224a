package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/config"
)

func testCfg(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.ClientDBPath = t.TempDir()
	cfg.AttachDir = t.TempDir()
	return cfg
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()
	s, done, err := OpenStores(ctx, testCfg(t))
	require.NoError(t, err)
	defer done()

	require.NotNil(t, s.Records)
	require.NotNil(t, s.Files)
	assert.True(t, s.Records.IsWritable())
}

func TestCleanupOrphans(t *testing.T) {
	ctx := context.Background()
	s, done, err := OpenStores(ctx, testCfg(t))
	require.NoError(t, err)
	defer done()

	require.NoError(t, s.Files.SaveFile(ctx, model.Media{
		Directory: "uuid:orphan", FileName: "left.jpg", Blob: []byte("x"), Size: 1,
	}))

	// очередь пуста: вложение осиротело и вычищается
	require.NoError(t, CleanupOrphans(ctx, s))
	m, err := s.Files.RetrieveFile(ctx, "uuid:orphan", "left.jpg")
	require.NoError(t, err)
	assert.False(t, m.Found())
}

func TestCleanupOrphansKeepsPendingAttachments(t *testing.T) {
	ctx := context.Background()
	s, done, err := OpenStores(ctx, testCfg(t))
	require.NoError(t, err)
	defer done()

	data := `<survey id="s1"><meta><instanceID>uuid:pending</instanceID></meta></survey>`
	st := s.Records.SetRecord("rec", &model.Record{Data: data, Draft: true, Form: "http://server.example"}, false, false, "")
	require.Equal(t, store.StatusSuccess, st)
	require.NoError(t, s.Files.SaveFile(ctx, model.Media{
		Directory: "uuid:pending", FileName: "keep.jpg", Blob: []byte("x"), Size: 1,
	}))

	require.NoError(t, CleanupOrphans(ctx, s))
	m, err := s.Files.RetrieveFile(ctx, "uuid:pending", "keep.jpg")
	require.NoError(t, err)
	assert.True(t, m.Found(), "вложения незавершённых записей не трогаем")
}
