package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordinal/internal/order"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(OrderResult{ParentID: "p1", Order: []string{"A", "B"}})
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   OrderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"A", "B"}, resp.Data.Order)
}

func TestOutputFormatter_JSONErrorKeepsEngineCode(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(WrapExitError(ExitCommandError, "move failed", order.ChildNotFound("p1", "ghost")))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(order.ErrCodeNotFound), resp.Error.Code)
	assert.Equal(t, "ghost", resp.Error.ChildID)
	assert.Contains(t, resp.Error.Message, "move failed")
}

func TestOutputFormatter_JSONErrorPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(errors.New("accepts 1 arg(s), received 0")))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_COMMAND", resp.Error.Code)
	assert.Empty(t, resp.Error.ParentID)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success(OrderResult{ParentID: "p1", Order: []string{"A", "B"}}))
	assert.Equal(t, "0 A\n1 B\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error(order.NewConflict("p1", errors.New("database is locked")))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [CONFLICT]")
	assert.Contains(t, buf.String(), "database is locked")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitFailure},
		{"command", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"reported", NewReportedFailure("1 failed"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestResultText(t *testing.T) {
	tests := []struct {
		name   string
		result interface{ String() string }
		want   string
	}{
		{"empty order", OrderResult{ParentID: "p1", Order: []string{}}, "p1: (empty)"},
		{"created child", IDResult{Action: "created", ParentID: "p1", ChildID: "c1"}, "created child c1"},
		{"deleted parent", IDResult{Action: "deleted", ParentID: "p1"}, "deleted parent p1"},
		{"neighbor", NeighborResult{ChildID: "A", Neighbor: "B", Found: true}, "B"},
		{"no neighbor", NeighborResult{ChildID: "A"}, "(none)"},
		{"position", PositionResult{ChildID: "A", Position: 3}, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.String())
		})
	}
}
