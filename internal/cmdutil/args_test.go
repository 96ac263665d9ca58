package cmdutil

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "host"}
	assert.NoError(t, NoArgs(cmd, nil))

	err := NoArgs(cmd, []string{"extra"})
	require.Error(t, err)
	var flagErr *FlagError
	assert.True(t, errors.As(err, &flagErr))
	assert.Contains(t, err.Error(), "accepts no arguments")
}

func TestExactArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "port"}
	validate := ExactArgs(2)

	assert.NoError(t, validate(cmd, []string{"web", "80"}))

	err := validate(cmd, []string{"web"})
	require.Error(t, err)
	assert.Equal(t, "'port' requires 2 arguments, got 1", err.Error())

	err = ExactArgs(1)(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 1 argument,")
}
