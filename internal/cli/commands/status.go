package commands

import (
	"context"
	"fmt"

	"FormKeeper/internal/config"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show local storage state" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	writable := "ok"
	if !env.stores.Records.IsWritable() {
		writable = "READ-ONLY"
	}
	list := env.stores.Records.GetRecordList()
	drafts := 0
	for _, r := range list {
		if r.Draft {
			drafts++
		}
	}

	fmt.Fprintln(Out, "Server:      ", cfg.ServerURL)
	fmt.Fprintln(Out, "Store:       ", cfg.ClientDBPath, "("+writable+")")
	fmt.Fprintln(Out, "Attachments: ", env.stores.Files.Name())
	fmt.Fprintf(Out, "Records:      %d (%d drafts, %d queued)\n", len(list), drafts, len(list)-drafts)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
