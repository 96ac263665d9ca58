package composefixture

import (
	"errors"
	"fmt"
	"testing"

	"github.com/schmitthub/composefixture/internal/cmdutil"
	"github.com/schmitthub/composefixture/internal/iostreams/iostreamstest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	cmd := &cobra.Command{Use: "port SERVICE PORT"}

	tests := []struct {
		name       string
		err        error
		want       int
		wantStderr string
		wantUsage  bool
	}{
		{name: "success", err: nil, want: 0},
		{name: "child exit status", err: &cmdutil.ExitError{Code: 5}, want: 5},
		{name: "wrapped child exit status", err: fmt.Errorf("run: %w", &cmdutil.ExitError{Code: 9}), want: 9},
		{name: "silent", err: cmdutil.SilentError, want: 1},
		{name: "flag error", err: cmdutil.FlagErrorf("bad port"), want: 2, wantStderr: "Error: bad port", wantUsage: true},
		{name: "unknown flag", err: errors.New("unknown flag: --nope"), want: 2, wantStderr: "unknown flag", wantUsage: true},
		{name: "other error", err: errors.New("compose up failed"), want: 1, wantStderr: "Error: compose up failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()
			got := exitCode(tio.ErrBuf, cmd, tt.err)
			assert.Equal(t, tt.want, got)

			stderr := tio.ErrBuf.String()
			if tt.wantStderr == "" {
				assert.Empty(t, stderr)
			} else {
				assert.Contains(t, stderr, tt.wantStderr)
			}
			if tt.wantUsage {
				assert.Contains(t, stderr, "Usage:")
			} else {
				assert.NotContains(t, stderr, "Usage:")
			}
		})
	}
}
