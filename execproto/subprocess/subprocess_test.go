package subprocess

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeShellScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("subprocess executor targets POSIX shells")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "target.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExecuteReturnsFeaturesOnSuccess(t *testing.T) {
	script := writeShellScript(t, "echo hello-from-target\nexit 0\n")
	e := Executor{}
	res, ok := e.Execute(context.Background(), script, [][]byte{[]byte("a"), []byte("b")})
	require.True(t, ok)
	require.Len(t, res.Results, 2)
	assert.NotEmpty(t, res.Results[0].Features)
}

func TestExecuteReportsFailureOnNonZeroExit(t *testing.T) {
	script := writeShellScript(t, "exit 3\n")
	e := Executor{}
	res, ok := e.Execute(context.Background(), script, [][]byte{[]byte("a")})
	assert.False(t, ok)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, 0, res.NumOutputsRead)
}

func TestExecuteStopsAtFirstFailureAndReportsNumOutputsRead(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "count")
	require.NoError(t, os.WriteFile(counter, []byte("0"), 0o644))
	script := writeShellScript(t, "n=$(cat "+counter+")\nn=$((n+1))\necho $n > "+counter+"\nif [ $n -ge 3 ]; then exit 1; fi\nexit 0\n")

	e := Executor{}
	inputs := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	res, ok := e.Execute(context.Background(), script, inputs)
	assert.False(t, ok)
	assert.Equal(t, 2, res.NumOutputsRead)
}
