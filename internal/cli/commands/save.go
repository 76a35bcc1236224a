package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"FormKeeper/internal/cli/model"
	"FormKeeper/internal/cli/service"
	"FormKeeper/internal/cli/store"
	"FormKeeper/internal/config"
)

type saveCmd struct{}

func (saveCmd) Name() string { return "save" }
func (saveCmd) Description() string {
	return "Save a record from an XML instance file (with optional attachments)"
}
func (saveCmd) Usage() string {
	return "save <file.xml> [--name <name>] [--draft] [--media <file>]... [--rename-from <name>] [--overwrite]"
}

func (saveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "имя записи; пустое — автоимя со счётчиком")
	draft := fs.Bool("draft", false, "сохранить черновиком, не отправлять")
	renameFrom := fs.String("rename-from", "", "прежнее имя при переименовании")
	overwrite := fs.Bool("overwrite", false, "разрешить занять существующее имя")
	assignment := fs.String("assignment", "", "идентификатор назначения")
	var media mediaList
	fs.Var(&media, "media", "файл вложения (можно повторять)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}

	attachments := make([]model.Media, 0, len(media))
	for _, path := range media {
		blob, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read attachment: %w", err)
		}
		attachments = append(attachments, model.Media{
			FileName: filepath.Base(path),
			Blob:     blob,
			Size:     int64(len(blob)),
		})
	}

	env, done, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	key, status, err := env.saver.Save(ctx, service.SaveOptions{
		Name:         *name,
		Data:         string(data),
		Draft:        *draft,
		Media:        attachments,
		OldKey:       *renameFrom,
		Overwrite:    *overwrite,
		AssignmentID: *assignment,
	})
	if err != nil {
		return err
	}
	switch status {
	case store.StatusSuccess:
		kind := "record"
		if *draft {
			kind = "draft"
		}
		fmt.Fprintf(Out, "Saved %s %q\n", kind, key)
		// финальная запись сразу уходит в отправку вместе с только что
		// прочитанными вложениями, без повторного похода в хранилище.
		// Без --media вложения разыскиваются в хранилище: при пересохранении
		// они могли быть сохранены раньше.
		if !*draft {
			inMemory := attachments
			if len(inMemory) == 0 {
				inMemory = nil
			}
			if rec := env.stores.Records.GetRecord(key); rec != nil {
				if _, err := env.scheduler.SubmitSingle(ctx, key, rec, inMemory); err != nil {
					return err
				}
			}
		}
		return nil
	case store.StatusExisting:
		return fmt.Errorf("record %q already exists (use --overwrite)", key)
	case store.StatusForbidden:
		return fmt.Errorf("name %q is reserved", key)
	case store.StatusFull:
		return fmt.Errorf("local storage quota exceeded")
	default:
		return fmt.Errorf("could not save record (status %s)", status)
	}
}

// mediaList — повторяемый флаг --media.
type mediaList []string

func (m *mediaList) String() string { return fmt.Sprint([]string(*m)) }
func (m *mediaList) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func init() { RegisterCmd(saveCmd{}) }
