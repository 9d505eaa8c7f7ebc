// Package cmd implements the onyx command line application on top of the
// journal and portfolio library.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/onyx"
	"github.com/etnz/onyx/coinlore"
	"github.com/etnz/onyx/config"
	"github.com/etnz/onyx/logger"
	"github.com/etnz/onyx/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&openCmd{}, "trades")
	c.Register(&closeCmd{}, "trades")
	c.Register(&stopCmd{}, "trades")
	c.Register(&beCmd{}, "trades")
	c.Register(&noteCmd{}, "trades")
	c.Register(&tagCmd{}, "trades")
	c.Register(&tradesCmd{}, "trades")

	c.Register(&strategyCmd{}, "strategies")
	c.Register(&tagsCmd{}, "strategies")
	c.Register(&modelCmd{}, "strategies")

	c.Register(&statsCmd{}, "analytics")
	c.Register(&simulateCmd{}, "analytics")

	c.Register(&investCmd{}, "portfolio")
	c.Register(&priceCmd{}, "portfolio")
	c.Register(&refreshCmd{}, "portfolio")
	c.Register(&portfolioCmd{}, "portfolio")
	c.Register(&watchCmd{}, "portfolio")
	c.Register(&curveCmd{}, "portfolio")

	c.Register(&exportCmd{}, "data")
	c.Register(&importCmd{}, "data")
	c.Register(&topicCmd{}, "data")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the onyx configuration file (yaml). Defaults and ONYX_* environment variables apply without it.")

// session holds what a command needs to reach the journal.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  store.Backend
}

// openSession loads the configuration and opens the configured store.
func openSession() (*session, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Data)
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", zap.String("backend", cfg.Data.Backend), zap.String("dir", cfg.Data.Dir))
	return &session{cfg: cfg, logger: log, store: st}, nil
}

// Close releases the store and flushes the logs.
func (s *session) Close() error {
	err := s.store.Close()
	_ = s.logger.Sync()
	return err
}

func (s *session) ledger(ctx context.Context) (*onyx.Ledger, error) {
	return onyx.LoadLedger(ctx, s.store, onyx.WithLogger(s.logger))
}

func (s *session) saveLedger(ctx context.Context, l *onyx.Ledger) error {
	return onyx.SaveLedger(ctx, s.store, l)
}

func (s *session) portfolio(ctx context.Context) (*onyx.Portfolio, error) {
	return onyx.LoadPortfolio(ctx, s.store, onyx.WithLogger(s.logger))
}

func (s *session) savePortfolio(ctx context.Context, p *onyx.Portfolio) error {
	return onyx.SavePortfolio(ctx, s.store, p)
}

func (s *session) coinlore() *coinlore.Client {
	return coinlore.New(s.cfg.Coinlore, s.logger)
}

// withLedger runs edit on the journal and saves it when edit succeeds.
func withLedger(ctx context.Context, edit func(*session, *onyx.Ledger) error) subcommands.ExitStatus {
	return runLedger(ctx, true, edit)
}

// viewLedger runs view on the journal without saving it.
func viewLedger(ctx context.Context, view func(*session, *onyx.Ledger) error) subcommands.ExitStatus {
	return runLedger(ctx, false, view)
}

func runLedger(ctx context.Context, save bool, fn func(*session, *onyx.Ledger) error) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	l, err := s.ledger(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading journal: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(s, l); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !save {
		return subcommands.ExitSuccess
	}
	if err := s.saveLedger(ctx, l); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving journal: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// withPortfolio runs edit on the portfolio and saves it when edit succeeds.
func withPortfolio(ctx context.Context, edit func(*session, *onyx.Portfolio) error) subcommands.ExitStatus {
	return runPortfolio(ctx, true, edit)
}

// viewPortfolio runs view on the portfolio without saving it.
func viewPortfolio(ctx context.Context, view func(*session, *onyx.Portfolio) error) subcommands.ExitStatus {
	return runPortfolio(ctx, false, view)
}

func runPortfolio(ctx context.Context, save bool, fn func(*session, *onyx.Portfolio) error) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	p, err := s.portfolio(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(s, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !save {
		return subcommands.ExitSuccess
	}
	if err := s.savePortfolio(ctx, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

var (
	errNoTrade      = errors.New("no running trade")
	errUnknownTrade = errors.New("unknown trade")
)

// resolveTrade returns the id of the trade designated by ref: an explicit id,
// or the most recent running trade of the active strategy when ref is empty.
func resolveTrade(l *onyx.Ledger, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		active := l.StrategyActive()
		if len(active) == 0 {
			return 0, errNoTrade
		}
		return active[0].ID, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid trade id %q: %w", ref, err)
	}
	if _, _, ok := l.Trade(id); !ok {
		return 0, fmt.Errorf("trade %d: %w", id, errUnknownTrade)
	}
	return id, nil
}

// usageError reports a misuse of a command.
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

// splitList reads a comma separated flag value.
func splitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
