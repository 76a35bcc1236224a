package commands

import (
	"context"

	"go.uber.org/zap"

	"FormKeeper/internal/cli/bootstrap"
	"FormKeeper/internal/cli/service"
	"FormKeeper/internal/cli/ui"
	"FormKeeper/internal/config"
)

// cmdEnv — собранный клиентский стек для одной команды.
type cmdEnv struct {
	stores    *bootstrap.Stores
	saver     *service.Saver
	scheduler *service.Scheduler
	ui        ui.UI
	logger    *zap.SugaredLogger
}

// openEnv открывает хранилища и собирает сервисы клиента.
// cleanup закрывает соединения и сбрасывает буфер логгера.
func openEnv(ctx context.Context, cfg *config.Config) (*cmdEnv, func() error, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	sugar := logger.Sugar()

	stores, closeStores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	// при пустой очереди записей осиротевших вложений быть не должно
	if err := bootstrap.CleanupOrphans(ctx, stores); err != nil {
		sugar.Warnw("orphan attachment cleanup failed", "error", err)
	}

	console := ui.NewConsole()
	pipeline := service.NewPipeline(cfg, stores.Files, sugar)
	submitter := service.NewSubmitter(cfg, stores.Records, stores.Files, pipeline, console, sugar)
	scheduler := service.NewScheduler(stores.Records, submitter, console, sugar)
	saver := service.NewSaver(cfg, stores.Records, stores.Files, sugar)

	env := &cmdEnv{
		stores:    stores,
		saver:     saver,
		scheduler: scheduler,
		ui:        console,
		logger:    sugar,
	}
	cleanup := func() error {
		_ = logger.Sync()
		return closeStores()
	}
	return env, cleanup, nil
}
