package docs

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/spf13/cobra"
)

// ManSection is the manual section the pages are generated for.
const ManSection = "1"

// GenManTree writes <command-path>.1 for cmd and its descendants.
func GenManTree(cmd *cobra.Command, dir string) error {
	return genTree(cmd, dir, func(c *cobra.Command) string {
		return dashed(c, "-") + "." + ManSection
	}, GenMan)
}

// GenMan renders the man page for a single command.
func GenMan(cmd *cobra.Command, w io.Writer) error {
	_, err := w.Write(md2man.Render(manMarkdown(cmd)))
	return err
}

// manMarkdown builds the md2man source for cmd.
func manMarkdown(cmd *cobra.Command) []byte {
	var buf bytes.Buffer
	name := cmd.CommandPath()

	fmt.Fprintf(&buf, "%% %s(%s) | Composefixture Manual\n\n", strings.ToUpper(dashed(cmd, "-")), ManSection)

	buf.WriteString("# NAME\n")
	fmt.Fprintf(&buf, "%s \\- %s\n\n", name, cmd.Short)

	buf.WriteString("# SYNOPSIS\n")
	fmt.Fprintf(&buf, "**%s**", name)
	if cmd.NonInheritedFlags().HasAvailableFlags() {
		buf.WriteString(" [OPTIONS]")
	}
	if cmd.HasAvailableSubCommands() {
		buf.WriteString(" COMMAND")
	}
	buf.WriteString("\n\n")

	if cmd.Long != "" {
		fmt.Fprintf(&buf, "# DESCRIPTION\n%s\n\n", cmd.Long)
	}

	if subs := visibleCommands(cmd); len(subs) > 0 {
		buf.WriteString("# COMMANDS\n")
		for _, c := range subs {
			fmt.Fprintf(&buf, "**%s**\n: %s\n\n", c.Name(), c.Short)
		}
	}

	flags := append(flagDocs(cmd.NonInheritedFlags()), flagDocs(cmd.InheritedFlags())...)
	if len(flags) > 0 {
		buf.WriteString("# OPTIONS\n")
		for _, f := range flags {
			if f.shorthand != "" {
				fmt.Fprintf(&buf, "**-%s**, ", f.shorthand)
			}
			fmt.Fprintf(&buf, "**--%s**", f.name)
			if f.valueType != "" {
				fmt.Fprintf(&buf, " <%s>", f.valueType)
			}
			fmt.Fprintf(&buf, "\n: %s", f.usage)
			if f.hasDefault() {
				fmt.Fprintf(&buf, " (default: %s)", f.defValue)
			}
			buf.WriteString("\n\n")
		}
	}

	if cmd.Example != "" {
		fmt.Fprintf(&buf, "# EXAMPLES\n```\n%s\n```\n\n", cmd.Example)
	}

	var seeAlso []string
	if cmd.HasParent() {
		seeAlso = append(seeAlso, fmt.Sprintf("**%s(%s)**", dashed(cmd.Parent(), "-"), ManSection))
	}
	for _, c := range visibleCommands(cmd) {
		seeAlso = append(seeAlso, fmt.Sprintf("**%s(%s)**", dashed(c, "-"), ManSection))
	}
	if len(seeAlso) > 0 {
		fmt.Fprintf(&buf, "# SEE ALSO\n%s\n", strings.Join(seeAlso, ", "))
	}

	return buf.Bytes()
}
