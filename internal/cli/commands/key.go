package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"FormKeeper/internal/cli/api"
	"FormKeeper/internal/config"
)

type keyCmd struct{}

func (keyCmd) Name() string        { return "key" }
func (keyCmd) Description() string { return "Request a fresh submission access key" }
func (keyCmd) Usage() string       { return "key" }

func (keyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client := &http.Client{Timeout: 30 * time.Second}
	key, err := api.RefreshAccessKey(ctx, client, cfg.ServerURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Access key:", key)
	return nil
}

func init() { RegisterCmd(keyCmd{}) }
