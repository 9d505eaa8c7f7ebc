// Command onyx is a trading journal and investment portfolio tracker.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/onyx/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	cmd.Completion(commander).Complete("onyx")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
