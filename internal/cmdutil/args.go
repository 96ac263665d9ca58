package cmdutil

import (
	"github.com/spf13/cobra"
)

// NoArgs rejects any positional argument.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return FlagErrorf("'%s' accepts no arguments", cmd.CommandPath())
}

// ExactArgs requires exactly n positional arguments.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		return FlagErrorf("'%s' requires %d %s, got %d", cmd.CommandPath(), n, pluralize("argument", n), len(args))
	}
}

func pluralize(word string, number int) string {
	if number == 1 {
		return word
	}
	return word + "s"
}
