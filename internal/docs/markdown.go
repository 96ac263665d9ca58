package docs

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// GenMarkdownTree writes <command_path>.md for cmd and its descendants.
func GenMarkdownTree(cmd *cobra.Command, dir string) error {
	return genTree(cmd, dir, markdownFilename, GenMarkdown)
}

func markdownFilename(cmd *cobra.Command) string {
	return dashed(cmd, "_") + ".md"
}

// GenMarkdown renders the reference page for a single command.
func GenMarkdown(cmd *cobra.Command, w io.Writer) error {
	var b strings.Builder
	name := cmd.CommandPath()

	fmt.Fprintf(&b, "## %s\n\n%s\n\n", name, cmd.Short)
	if cmd.Long != "" {
		fmt.Fprintf(&b, "### Synopsis\n\n%s\n\n", cmd.Long)
	}
	if cmd.Runnable() {
		fmt.Fprintf(&b, "```\n%s\n```\n\n", cmd.UseLine())
	}
	if cmd.Example != "" {
		fmt.Fprintf(&b, "### Examples\n\n```\n%s\n```\n\n", cmd.Example)
	}

	writeMarkdownFlags(&b, "Options", flagDocs(cmd.NonInheritedFlags()))
	writeMarkdownFlags(&b, "Options inherited from parent commands", flagDocs(cmd.InheritedFlags()))

	var related []string
	if cmd.HasParent() {
		p := cmd.Parent()
		related = append(related, fmt.Sprintf("* [%s](%s) - %s", p.CommandPath(), markdownFilename(p), p.Short))
	}
	for _, c := range visibleCommands(cmd) {
		related = append(related, fmt.Sprintf("* [%s](%s) - %s", c.CommandPath(), markdownFilename(c), c.Short))
	}
	if len(related) > 0 {
		fmt.Fprintf(&b, "### See also\n\n%s\n", strings.Join(related, "\n"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownFlags(b *strings.Builder, title string, flags []flagDoc) {
	if len(flags) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n| Flag | Description |\n|---|---|\n", title)
	for _, f := range flags {
		flag := "`--" + f.name
		if f.valueType != "" {
			flag += " " + f.valueType
		}
		flag += "`"
		if f.shorthand != "" {
			flag = "`-" + f.shorthand + "`, " + flag
		}
		usage := strings.ReplaceAll(f.usage, "|", "\\|")
		if f.hasDefault() {
			usage += fmt.Sprintf(" (default `%s`)", f.defValue)
		}
		fmt.Fprintf(b, "| %s | %s |\n", flag, usage)
	}
	b.WriteString("\n")
}
