package shell

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use POSIX sh syntax")
	}
}

func TestShellRunner_Success(t *testing.T) {
	skipOnWindows(t)

	out, err := NewRunner().Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestShellRunner_MergesStderr(t *testing.T) {
	skipOnWindows(t)

	out, err := NewRunner().Run(context.Background(), "echo out; echo err 1>&2")
	require.NoError(t, err)
	assert.Contains(t, string(out), "out")
	assert.Contains(t, string(out), "err")
}

func TestShellRunner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	out, err := NewRunner().Run(context.Background(), "echo boom; exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "echo boom; exit 3", cmdErr.Command)
	assert.Equal(t, "boom\n", string(cmdErr.Output))
	assert.Equal(t, "boom\n", string(out))
	assert.Contains(t, cmdErr.Error(), "returned 3")
	assert.Contains(t, cmdErr.Error(), "boom")
}

func TestShellRunner_AcceptableCodes(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name    string
		command string
		codes   []int
		wantErr bool
	}{
		{name: "default accepts zero", command: "true", codes: nil},
		{name: "default rejects one", command: "exit 1", codes: nil, wantErr: true},
		{name: "explicit set accepts listed code", command: "exit 2", codes: []int{0, 2}},
		{name: "explicit set rejects zero when absent", command: "true", codes: []int{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner().Run(context.Background(), tt.command, tt.codes...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShellRunner_EnvAndDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	r := &ShellRunner{Dir: dir, Env: []string{"COMPOSEFIXTURE_TEST_VAR=42"}}

	out, err := r.Run(context.Background(), `echo "$COMPOSEFIXTURE_TEST_VAR"; pwd`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "42", lines[0])
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(lines[1])
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestShellRunner_MissingShell(t *testing.T) {
	r := &ShellRunner{Shell: "/nonexistent/composefixture-shell"}

	_, err := r.Run(context.Background(), "true")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, -1, cmdErr.ExitCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestShellRunner_ContextCancel(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewRunner().Run(ctx, "sleep 5")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, -1, cmdErr.ExitCode)
}
