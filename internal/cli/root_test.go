package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Markers stay plain in assertions regardless of how the tests run.
func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// executeCommand runs the CLI with args, capturing its output.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	root := NewRootCommand()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeSessionFile drops session notation into a temp file.
func writeSessionFile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, _, err := executeCommand("--format", "xml", "canon", "whatever.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootListsSubcommands(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)
	for _, name := range []string{"canon", "check", "merge", "enumerate", "log", "bench", "test"} {
		assert.Contains(t, stdout, name)
	}
}

func TestRootRequiresSessionArgument(t *testing.T) {
	_, _, err := executeCommand("canon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arg")
}
