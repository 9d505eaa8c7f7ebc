package cmd

import (
	"flag"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/date"
	"github.com/etnz/onyx/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the registered commands and their flags for shell
// completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{"config": predict.Files("*.yaml")},
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		fs := flag.NewFlagSet(sc.Name(), flag.ContinueOnError)
		sc.SetFlags(fs)
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			sub.Flags[f.Name] = flagPredictor(sc.Name(), f)
		})
		if sc.Name() == "topic" {
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(append(topics, "*"))
		}
		root.Sub[sc.Name()] = sub
	})
	return root
}

func flagPredictor(command string, f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	switch {
	case command == "stats" && f.Name == "p":
		periods := make(predict.Set, len(date.Periods))
		for i, p := range date.Periods {
			periods[i] = p.String()
		}
		return periods
	case command == "invest" && f.Name == "c":
		categories := make(predict.Set, len(onyx.Categories))
		for i, c := range onyx.Categories {
			categories[i] = string(c)
		}
		return categories
	case f.Name == "png" || (command == "curve" && f.Name == "o"):
		return predict.Files("*.png")
	case command == "export" && f.Name == "o":
		return predict.Files("*.json")
	}
	return predict.Something
}
