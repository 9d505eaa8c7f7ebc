package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/renderer"
	"github.com/google/subcommands"
)

// strategyCmd lists and edits strategies.
type strategyCmd struct {
	selectRef string
	add       bool
	name      string
	risk      string
	rules     string
	deleteRef string
}

func (*strategyCmd) Name() string     { return "strategy" }
func (*strategyCmd) Synopsis() string { return "list, select and edit strategies" }
func (*strategyCmd) Usage() string {
	return `onyx strategy [-add] [-select <strategy>] [-name <name>] [-risk <amount>] [-rules <a;b;c>] [-delete <strategy>]

  Without flags, lists the strategies and the checklist of the active one.

  -add creates a new strategy and makes it active, -select activates an
  existing one. -name, -risk and -rules then edit the active strategy.
  A strategy is designated by its id, a unique id prefix or its name.
  The last strategy cannot be deleted.
`
}

func (c *strategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.selectRef, "select", "", "Strategy to activate")
	f.BoolVar(&c.add, "add", false, "Create a new strategy and activate it")
	f.StringVar(&c.name, "name", "", "New name of the active strategy")
	f.StringVar(&c.risk, "risk", "", "New default risk of the active strategy")
	f.StringVar(&c.rules, "rules", "", "New checklist of the active strategy, rules separated by ';'")
	f.StringVar(&c.deleteRef, "delete", "", "Strategy to delete")
}

func (c *strategyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var risk onyx.Money
	if c.risk != "" {
		var err error
		if risk, err = onyx.ParseMoney(c.risk); err != nil || !risk.IsPositive() {
			return usageError("invalid risk %q", c.risk)
		}
	}
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		if c.deleteRef != "" {
			id, err := resolveStrategy(l, c.deleteRef)
			if err != nil {
				return err
			}
			if err := l.DeleteStrategy(id); err != nil {
				return err
			}
		}
		if c.add {
			l.AddStrategy()
		}
		if c.selectRef != "" {
			id, err := resolveStrategy(l, c.selectRef)
			if err != nil {
				return err
			}
			if err := l.SelectStrategy(id); err != nil {
				return err
			}
		}

		if c.name != "" || c.risk != "" || c.rules != "" {
			st := l.ActiveStrategy()
			if c.name != "" {
				st.Name = strings.TrimSpace(c.name)
			}
			if c.risk != "" {
				st.Risk = risk
			}
			if c.rules != "" {
				st.Rules = nil
				for _, text := range strings.Split(c.rules, ";") {
					if text = strings.TrimSpace(text); text != "" {
						st.Rules = append(st.Rules, onyx.Rule{ID: strconv.Itoa(len(st.Rules) + 1), Text: text})
					}
				}
			}
			if err := l.SaveStrategy(st); err != nil {
				return err
			}
		}

		printMarkdown(renderer.StrategiesMarkdown(l.Strategies(), l.ActiveStrategy()))
		return nil
	})
}

// resolveStrategy returns the id of the strategy designated by ref: an id, a
// unique id prefix or a name.
func resolveStrategy(l *onyx.Ledger, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var found []string
	for _, s := range l.Strategies() {
		if s.ID == ref {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, ref) || strings.EqualFold(s.Name, ref) {
			found = append(found, s.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("strategy %q: %w", ref, onyx.ErrUnknownStrategy)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("strategy %q is ambiguous: %d strategies match", ref, len(found))
	}
}

// tagsCmd lists and extends the tag vocabulary.
type tagsCmd struct{}

func (*tagsCmd) Name() string     { return "tags" }
func (*tagsCmd) Synopsis() string { return "list or create tags" }
func (*tagsCmd) Usage() string {
	return `onyx tags [<tag>...]

  Adds the given tags to the vocabulary, then lists it.
`
}

func (c *tagsCmd) SetFlags(f *flag.FlagSet) {}

func (c *tagsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withLedger(ctx, func(s *session, l *onyx.Ledger) error {
		for _, tag := range f.Args() {
			l.CreateTag(tag)
		}
		printMarkdown(renderer.TagsMarkdown(l.Tags()))
		return nil
	})
}

// modelCmd evaluates a tag model and promotes it into a strategy.
type modelCmd struct {
	promote bool
}

func (*modelCmd) Name() string     { return "model" }
func (*modelCmd) Synopsis() string { return "evaluate the closed trades carrying a set of tags" }
func (*modelCmd) Usage() string {
	return `onyx model [-promote] <tag>...

  Shows the win rate and net profit of every closed trade carrying all of the
  given tags. -promote creates a strategy with one checklist rule per tag and
  makes it active.
`
}

func (c *modelCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.promote, "promote", false, "Create a strategy from the model")
}

func (c *modelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError("at least one tag is required")
	}
	run := viewLedger
	if c.promote {
		run = withLedger
	}
	return run(ctx, func(s *session, l *onyx.Ledger) error {
		stats, ok := onyx.ComputeModelStats(l.StrategyHistory(), f.Args())
		if !ok {
			return errors.New("no tag selected")
		}
		printMarkdown(renderer.ModelMarkdown(stats))
		if c.promote {
			st, _ := l.CreateStrategyFromModel(f.Args())
			printMarkdown(renderer.StrategiesMarkdown(l.Strategies(), st))
		}
		return nil
	})
}
