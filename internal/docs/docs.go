// Package docs renders the command tree as Markdown reference pages and
// man pages.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// visibleCommands returns cmd's subcommands that appear in help, sorted
// by name.
func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// walk calls fn for cmd and every visible descendant, parents first.
func walk(cmd *cobra.Command, fn func(*cobra.Command) error) error {
	if err := fn(cmd); err != nil {
		return err
	}
	for _, c := range visibleCommands(cmd) {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// genTree writes one file per command into dir using render.
func genTree(cmd *cobra.Command, dir string, filename func(*cobra.Command) string, render func(*cobra.Command, io.Writer) error) error {
	cmd.InitDefaultHelpFlag()
	return walk(cmd, func(c *cobra.Command) error {
		path := filepath.Join(dir, filename(c))
		var buf bytes.Buffer
		if err := render(c, &buf); err != nil {
			return fmt.Errorf("rendering %s: %w", c.CommandPath(), err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	})
}

type flagDoc struct {
	name      string
	shorthand string
	valueType string
	usage     string
	defValue  string
}

// flagDocs lists the visible flags in fs, sorted by name.
func flagDocs(fs *pflag.FlagSet) []flagDoc {
	var out []flagDoc
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		varname, usage := pflag.UnquoteUsage(f)
		out = append(out, flagDoc{
			name:      f.Name,
			shorthand: f.Shorthand,
			valueType: varname,
			usage:     usage,
			defValue:  f.DefValue,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (f flagDoc) hasDefault() bool {
	switch f.defValue {
	case "", "false", "0", "0s", "[]":
		return false
	}
	return true
}

func dashed(cmd *cobra.Command, sep string) string {
	return strings.ReplaceAll(cmd.CommandPath(), " ", sep)
}
