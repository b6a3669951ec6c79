package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessage(t *testing.T) {
	plain := NewExitError(ExitFailure, "family is not refluent")
	assert.Equal(t, "family is not refluent", plain.Error())

	wrapped := WrapExitError(ExitCommandError, "invalid session input", errors.New("no such file"))
	assert.Equal(t, "invalid session input: no such file", wrapped.Error())
	assert.Equal(t, errors.New("no such file"), wrapped.Unwrap())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestFormatterTextSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("all sequences canonical"))
	assert.Equal(t, "all sequences canonical\n", buf.String())
}

func TestFormatterJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"mergers": 2}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Contains(t, buf.String(), "  \"status\": \"ok\"", "output should be indented")
}

func TestFormatterTextError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error("BROKEN_CHAIN", "consecutive commands at node do not chain", nil))
	assert.Equal(t, "✗ [BROKEN_CHAIN] consecutive commands at node do not chain\n", buf.String())
}

func TestFormatterTextErrorVerboseDetails(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf, Verbose: true}

	require.NoError(t, f.Error("CONFLICT", "differing commands at one node", "node f"))
	assert.Contains(t, buf.String(), "Details: node f")
}

func TestFormatterJSONError(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error("E204", "empty path component", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E204", resp.Error.Code)
}

func TestVerboseLogGating(t *testing.T) {
	var out, errOut bytes.Buffer

	quiet := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())

	verbose := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut, Verbose: true}
	verbose.VerboseLog("canonicalized %d sequences", 3)
	assert.Empty(t, out.String(), "diagnostics should not mix into data output")
	assert.Equal(t, "canonicalized 3 sequences\n", errOut.String())
}

func TestVerboseLogFallsBackToWriter(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, Verbose: true}

	f.VerboseLog("phase done")
	assert.Equal(t, "phase done\n", out.String())
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "merger", pluralize(1, "merger", "mergers"))
	assert.Equal(t, "mergers", pluralize(0, "merger", "mergers"))
	assert.Equal(t, "mergers", pluralize(2, "merger", "mergers"))
}
