package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/onyx"
	"github.com/google/subcommands"
)

// exportCmd writes a backup of the journal.
type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the journal as a backup document" }
func (*exportCmd) Usage() string {
	return `onyx export [-o <file.json>]

  Writes the trades, strategies, tags and profile as a JSON backup, to the
  standard output by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to the standard output")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return viewLedger(ctx, func(s *session, l *onyx.Ledger) error {
		var w io.Writer = os.Stdout
		if c.output != "" {
			out, err := os.Create(c.output)
			if err != nil {
				return err
			}
			defer out.Close()
			w = out
		}
		return onyx.EncodeBackup(w, l.Backup())
	})
}

// importCmd restores a backup into the journal.
type importCmd struct {
	keepImages bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a backup document into the journal" }
func (*importCmd) Usage() string {
	return `onyx import [-keep-images] <file.json>

  Replaces the sections of the journal present in the backup. Chart images of
  the journal entries are expected in the journal.images_dir folder unless
  -keep-images is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.keepImages, "keep-images", false, "Keep the image references of the backup as they are")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError("a backup file is required")
	}
	in, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening backup: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()
	b, err := onyx.DecodeBackup(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		if !c.keepImages {
			b.RelocateImages(s.cfg.Journal.ImagesDir)
		}
		if err := l.ApplyBackup(b); err != nil {
			return err
		}
		fmt.Printf("Imported %d running and %d closed trades (backup version %s)\n", len(l.Active()), len(l.History()), b.Version)
		return nil
	})
}
