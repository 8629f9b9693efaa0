package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChallengeScriptFull(t *testing.T) {
	body := []byte("var respStatus = \"Challenge\";\nvar respMsg = \"Enter code\";\nthisForm.inputStr.value = \"tok\";\n")
	got, err := parseChallengeScript(body)
	require.NoError(t, err)
	assert.Equal(t, ChallengeStatusChallenge, got.Status)
	assert.Equal(t, "Enter code", got.Prompt)
	assert.Equal(t, "tok", got.InputStr)
}

func TestParseChallengeScriptErrorWithoutInputStr(t *testing.T) {
	body := []byte("var respStatus = \"Error\";\nvar respMsg = \"nope\";\n")
	got, err := parseChallengeScript(body)
	require.NoError(t, err)
	assert.Equal(t, ChallengeStatusError, got.Status)
	assert.Equal(t, "nope", got.Prompt)
	assert.Empty(t, got.InputStr)
}

func TestParseChallengeScriptChallengeRequiresInputStr(t *testing.T) {
	body := []byte("var respStatus = \"Challenge\";\nvar respMsg = \"Enter code\";\n")
	_, err := parseChallengeScript(body)
	require.Error(t, err)
}

func TestParseChallengeScriptTrailingGarbageFails(t *testing.T) {
	body := []byte("var respStatus = \"Challenge\";\nvar respMsg = \"Enter code\";\nthisForm.inputStr.value = \"tok\";\ngarbage")
	_, err := parseChallengeScript(body)
	require.Error(t, err)
}

func TestParseChallengeScriptNotAChallenge(t *testing.T) {
	_, err := parseChallengeScript([]byte("<xml/>"))
	require.ErrorIs(t, err, ErrNotChallengeScript)
}

func TestParseChallengeScriptToleratesLeadingWhitespace(t *testing.T) {
	body := []byte("\n\n  var respStatus = \"Challenge\";\n  var respMsg = \"hi\";\n  thisForm.inputStr.value = \"x\";\n")
	got, err := parseChallengeScript(body)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Prompt)
	assert.Equal(t, "x", got.InputStr)
}
