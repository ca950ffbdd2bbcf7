package apperr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamInvalidMessage(t *testing.T) {
	err := ParamInvalid("ref")
	assert.Equal(t, CodeParamInvalid, err.Code)
	assert.Equal(t, "Must provide 'ref'", err.Message)
	assert.False(t, err.Retryable)
}

func TestEngineDiagnosticIsRetryable(t *testing.T) {
	err := EngineDiagnostic("node is freed")
	assert.True(t, err.Retryable)
	assert.Equal(t, CodeEngineDiagnostic, err.Code)
}

func TestInternalWrapsMessage(t *testing.T) {
	err := Internal("boom")
	assert.Equal(t, "Internal: boom", err.Message)
	assert.Equal(t, CodeInternal, err.Code)
}

func TestWithRetrySetsDelay(t *testing.T) {
	err := ResourceUnavailable("capacity exhausted", WithRetry(250))
	require.True(t, err.Retryable)
	assert.Equal(t, 250, err.RetryAfterMs)
}

func TestWithNoteAttaches(t *testing.T) {
	err := New(CodeTargetMissing, "gone", WithNote("node was freed this frame"))
	assert.Equal(t, "node was freed this frame", err.Note)
}

func TestErrorStringFormat(t *testing.T) {
	err := TargetMissing("no such node")
	assert.Equal(t, "target_missing: no such node", err.Error())
}
