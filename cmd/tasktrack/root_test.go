package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"set-role"},
		{"jobs", "trigger"},
		{"jobs", "inspect"},
	} {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.RunE, path)
	}
	assert.NotNil(t, rootCmd.RunE, "serve runs without a subcommand")

	for _, name := range []string{"email", "role", "json"} {
		assert.NotNil(t, setRoleCmd.Flags().Lookup(name), name)
	}
}

func TestJobsTriggerNeedsType(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"jobs", "trigger"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestUnknownCommandIsRejected(t *testing.T) {
	rootCmd.SetArgs([]string{"bogus"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExitCodeSurvivesWrapping(t *testing.T) {
	err := errors.Join(errors.New("context"), exitCode(2))
	var code exitCode
	require.True(t, errors.As(err, &code))
	assert.Equal(t, exitCode(2), code)
	assert.Equal(t, "exit status 2", code.Error())
}
