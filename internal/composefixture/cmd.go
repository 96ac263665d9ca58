package composefixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schmitthub/composefixture/internal/cmd/factory"
	"github.com/schmitthub/composefixture/internal/cmd/root"
	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/logger"
	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

const (
	exitOk    = 0
	exitError = 1
	exitUsage = 2
)

// Main is the entry point for the composefixture CLI.
// It initializes the Factory, creates the root command, and executes it.
func Main() int {
	// Ensure logs are flushed on exit
	defer logger.CloseFileWriter()

	f := factory.New(Version, Commit)
	defer f.CloseDaemon()

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(f.IOStreams.ErrOut, "Error: %s\n", err)
		return exitError
	}
	f.WorkDir = wd

	rootCmd := root.NewCmdRoot(f, Version, Commit)
	cmd, err := rootCmd.ExecuteC()
	return exitCode(f.IOStreams.ErrOut, cmd, err)
}

// exitCode reports err on w and maps it to a process exit status.
func exitCode(w io.Writer, cmd *cobra.Command, err error) int {
	if err == nil {
		return exitOk
	}

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		logger.Debug().Strs("argv", exitErr.Command).Int("code", exitErr.Code).Msg("child exited")
		return exitErr.Code
	}
	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	fmt.Fprintf(w, "Error: %s\n", err)

	var flagErr *cmdutil.FlagError
	if errors.As(err, &flagErr) || isCobraUsageError(err) {
		if cmd != nil {
			fmt.Fprintf(w, "\n%s", cmd.UsageString())
		}
		return exitUsage
	}
	return exitError
}

// isCobraUsageError recognises the errors cobra returns for unknown
// commands and flags, which do not carry a type.
func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "flag needs an argument", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
