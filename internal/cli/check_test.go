package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRefluentFamily(t *testing.T) {
	path := writeSessionFile(t, "a=<d|E|D>;b=<d|E|D>.<d/f|E|Ff1>")

	stdout, _, err := executeCommand("check", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ family {a, b} is refluent")
}

func TestCheckDivergentFamily(t *testing.T) {
	path := writeSessionFile(t, "a=<f|E|Ff1>;b=<f|E|Ff2>")

	stdout, _, err := executeCommand("check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "family is not refluent", err.Error())
	assert.Contains(t, stdout, "✗ family {a, b} is not refluent")
	assert.Contains(t, stdout, "node f: <f|E|Ff1> vs <f|E|Ff2>")
}

func TestCheckSingleSequenceIsRefluent(t *testing.T) {
	path := writeSessionFile(t, "a=<f|E|Ff1>;b=<f|E|Ff2>")

	stdout, _, err := executeCommand("check", path, "--label", "a")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ family {a} is refluent")
}

func TestCheckNonCanonicalSequence(t *testing.T) {
	path := writeSessionFile(t, "a=<f|E|Ff1>.<f|Ff2|Ff3>")

	stdout, _, err := executeCommand("check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "family is not canonical")
	assert.Contains(t, stdout, "sequence a:")
	assert.Contains(t, stdout, "BROKEN_CHAIN")
}

func TestCheckJSONVerdict(t *testing.T) {
	path := writeSessionFile(t, "a=<f|E|Ff1>;b=<f|E|Ff2>")

	stdout, _, err := executeCommand("check", path, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_REFLUENT", resp.Error.Code)
	assert.False(t, resp.Data.Refluent)

	require.Len(t, resp.Data.Divergences, 1)
	assert.Equal(t, "f", resp.Data.Divergences[0].Node)
	assert.Equal(t, []string{"<f|E|Ff1>", "<f|E|Ff2>"}, resp.Data.Divergences[0].Variants)
}

func TestFindDivergencesOrdersByNode(t *testing.T) {
	path := writeSessionFile(t, "a=<z|E|Ff1>.<b|E|Ff3>;b=<z|E|Ff2>.<b|E|Ff4>")

	stdout, _, err := executeCommand("check", path, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Divergences, 2)
	assert.Equal(t, "b", resp.Data.Divergences[0].Node)
	assert.Equal(t, "z", resp.Data.Divergences[1].Node)
}
