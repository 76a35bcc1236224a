package commands

import (
	"context"
	"fmt"
	"time"

	"FormKeeper/internal/config"
)

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "Show queued records and drafts" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	list := env.stores.Records.GetRecordList()
	if len(list) == 0 {
		fmt.Fprintln(Out, "No records")
		return nil
	}
	for _, r := range list {
		kind := "queued"
		if r.Draft {
			kind = "draft"
		}
		saved := time.UnixMilli(r.LastSaved).Format("2006-01-02 15:04:05")
		fmt.Fprintf(Out, "- %-30s %-7s saved %s\n", r.Key, kind, saved)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(list))
	return nil
}

type getCmd struct{}

func (getCmd) Name() string        { return "get" }
func (getCmd) Description() string { return "Print the XML instance of a record" }
func (getCmd) Usage() string       { return "get <name>" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	rec := env.stores.Records.GetRecord(args[0])
	if rec == nil {
		return fmt.Errorf("record %q not found", args[0])
	}
	fmt.Fprintln(Out, rec.Data)
	return nil
}

type deleteCmd struct{}

func (deleteCmd) Name() string        { return "delete" }
func (deleteCmd) Description() string { return "Delete a record and its attachments" }
func (deleteCmd) Usage() string       { return "delete <name>" }

func (deleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if !env.saver.DeleteRecord(ctx, args[0]) {
		return fmt.Errorf("record %q not found", args[0])
	}
	fmt.Fprintf(Out, "Deleted %q\n", args[0])
	return nil
}

type deleteAllCmd struct{}

func (deleteAllCmd) Name() string        { return "delete-all" }
func (deleteAllCmd) Description() string { return "Delete all records and attachments" }
func (deleteAllCmd) Usage() string       { return "delete-all" }

func (deleteAllCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if !env.ui.Confirm("Delete ALL local records and attachments?") {
		fmt.Fprintln(Out, "Cancelled")
		return nil
	}
	env.saver.DeleteAll(ctx)
	fmt.Fprintln(Out, "All records deleted")
	return nil
}

type exportCmd struct{}

func (exportCmd) Name() string        { return "export" }
func (exportCmd) Description() string { return "Print all records as a single XML fragment" }
func (exportCmd) Usage() string       { return "export" }

func (exportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintln(Out, env.stores.Records.ExportString())
	return nil
}

func init() {
	RegisterCmd(listCmd{})
	RegisterCmd(getCmd{})
	RegisterCmd(deleteCmd{})
	RegisterCmd(deleteAllCmd{})
	RegisterCmd(exportCmd{})
}
