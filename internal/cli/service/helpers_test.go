package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"FormKeeper/internal/cli/filestore"
	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/cli/ui"
	"FormKeeper/internal/config"
)

// testEnv — собранный клиентский стек поверх временных каталогов.
type testEnv struct {
	cfg       *config.Config
	records   *store.RecordStore
	files     filestore.Backend
	ui        *ui.Silent
	pipeline  *Pipeline
	submitter *Submitter
	scheduler *Scheduler
	saver     *Saver
}

func newTestEnv(t *testing.T, serverURL string) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()

	cfg := config.NewTestConfig()
	cfg.ServerURL = serverURL

	records, _, err := store.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, records.Migrate())
	t.Cleanup(func() { _ = records.Close() })

	files := filestore.NewFSBackend(t.TempDir())
	require.NoError(t, files.Init(context.Background()))

	silent := &ui.Silent{}
	pipeline := NewPipeline(cfg, files, logger)
	submitter := NewSubmitter(cfg, records, files, pipeline, silent, logger)
	scheduler := NewScheduler(records, submitter, silent, logger)
	saver := NewSaver(cfg, records, files, logger)

	return &testEnv{
		cfg: cfg, records: records, files: files, ui: silent,
		pipeline: pipeline, submitter: submitter, scheduler: scheduler, saver: saver,
	}
}

// instanceXML строит минимальный инстанс с заданным instanceID и файлами.
func instanceXML(instanceID string, fileNames ...string) string {
	files := ""
	for i, n := range fileNames {
		files += fmt.Sprintf(`<f%d type="file">%s</f%d>`, i, n, i)
	}
	return fmt.Sprintf(`<survey id="s1"><site>x</site>%s<meta><instanceID>%s</instanceID></meta></survey>`,
		files, instanceID)
}

func finalRecord(env *testEnv, data string) *model.Record {
	return &model.Record{Data: data, Draft: false, Form: env.cfg.ServerURL}
}
