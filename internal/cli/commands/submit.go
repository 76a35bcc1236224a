package commands

import (
	"context"
	"fmt"
	"time"

	"FormKeeper/internal/config"
)

type submitCmd struct{}

func (submitCmd) Name() string        { return "submit" }
func (submitCmd) Description() string { return "Submit all queued records now" }
func (submitCmd) Usage() string       { return "submit [<name>]" }

func (submitCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if len(args) == 1 {
		rec := env.stores.Records.GetRecord(args[0])
		if rec == nil {
			return fmt.Errorf("record %q not found", args[0])
		}
		if rec.Draft {
			return fmt.Errorf("record %q is a draft; save it without --draft first", args[0])
		}
		_, err := env.scheduler.SubmitSingle(ctx, args[0], rec, nil)
		return err
	}

	env.scheduler.Drain(ctx, true)
	return nil
}

type queueCmd struct{}

func (queueCmd) Name() string { return "queue" }
func (queueCmd) Description() string {
	return "Run in the foreground, submitting the queue on an interval"
}
func (queueCmd) Usage() string { return "queue" }

func (queueCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if cfg.SubmitInterval <= 0 {
		return fmt.Errorf("submit interval is off; set --submit-interval")
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(Out, "Submitting queue every %ds, Ctrl-C to stop\n", cfg.SubmitInterval)
	env.scheduler.Run(ctx, time.Duration(cfg.SubmitInterval)*time.Second)
	return nil
}

func init() {
	RegisterCmd(submitCmd{})
	RegisterCmd(queueCmd{})
}
