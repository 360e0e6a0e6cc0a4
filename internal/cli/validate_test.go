package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	out, _, err := execute(t, "validate", "coinflip", `{"type":"Flip","result":"heads"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `✓ valid {"result":"heads","type":"Flip"} for AwaitingFlip`)
}

func TestValidateCommand_Rejected(t *testing.T) {
	out, _, err := execute(t, "validate", "race", `{"type":"Roll","pips":9}`,
		"--options", `{"players":["ada","bob"]}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ rejected for AwaitingRoll")
}

func TestValidateCommand_AfterSetupChoices(t *testing.T) {
	// Sides are 4 here, so a 5 is out of range.
	out, _, err := execute(t, "validate", "race", `{"type":"Roll","pips":5}`, "--format", "json",
		"--options", `{"players":["ada","bob"],"sides":4}`,
		"--choice", `{"type":"Roll","pips":1}`)
	require.Error(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeInvalidChoice, resp.Error.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "AwaitingRoll", data["decision"])
	assert.Equal(t, false, data["valid"])
	assert.NotEmpty(t, data["issues"])
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	out, _, err := execute(t, "validate", "race", `{"type":"Pass"}`, "--format", "json",
		"--options", `{"players":["ada","bob"]}`)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, map[string]any{"type": "Pass"}, data["choice"])
}

func TestValidateCommand_SetupFailure(t *testing.T) {
	_, _, err := execute(t, "validate", "coinflip", `{"type":"Flip","result":"heads"}`,
		"--choice", `{"type":"Flip","result":"edge"}`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "setup choice 1 failed")
}

func TestValidateCommand_NotAnObject(t *testing.T) {
	_, _, err := execute(t, "validate", "coinflip", "heads")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
