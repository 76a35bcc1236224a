package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FormKeeper/internal/cli/commands"
	"FormKeeper/internal/config"
)

// заполняются линкером при релизной сборке
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("FormKeeper CLI %s (built %s)\n", version, buildDate)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return commands.Dispatch(ctx, cfg, flag.Args())
}
