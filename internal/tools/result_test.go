// ABOUTME: Tests for the result union constructors and error formatting
// ABOUTME: Serialization shape is part of the API contract

package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResult(t *testing.T) {
	res := Success(map[string]any{"deleted": 3})
	assert.Equal(t, StatusSuccess, res.Status)
	assert.JSONEq(t, `{"deleted": 3}`, string(res.Data))
	assert.Nil(t, res.Err)
}

func TestSuccessUnserializablePayload(t *testing.T) {
	res := Success(make(chan int))
	assert.Equal(t, StatusError, res.Status)
	require.NotNil(t, res.Err)
	assert.Equal(t, CodeExecutionError, res.Err.Code)
}

func TestFailureResultSerialization(t *testing.T) {
	res := Failure(&Error{
		Code:    CodeInvalidInput,
		Message: "entries must not be empty",
		Details: map[string]any{"field": "entries"},
	})

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "error",
		"error": {
			"code": "INVALID_INPUT",
			"message": "entries must not be empty",
			"details": {"field": "entries"}
		}
	}`, string(data))
}

func TestPendingApprovalResult(t *testing.T) {
	res := PendingApproval("ap1", "Execute weight_entry_save_batch with args: {}")
	assert.Equal(t, StatusPendingApproval, res.Status)
	assert.Equal(t, "ap1", res.ApprovalID)
	assert.NotEmpty(t, res.Preview)
}

func TestErrorImplementsError(t *testing.T) {
	err := Errorf(CodeToolNotFound, "tool '%s' is not registered", "x")
	assert.Equal(t, "TOOL_NOT_FOUND: tool 'x' is not registered", err.Error())
}
