package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrMap(attrs []slog.Attr) map[string]slog.Value {
	m := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("tasks_list", nil).Complete(nil)
	assert.True(t, ti.Success)
	assert.Equal(t, StatusSuccess, ti.Status())
	assert.Empty(t, ti.Error)

	ti = NewToolInvocation("tasks_list", nil).Complete(errors.New("boom"))
	assert.False(t, ti.Success)
	assert.Equal(t, StatusError, ti.Status())
	assert.Equal(t, "boom", ti.Error)
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	args := map[string]any{"tasklist": "l1", "task": "t1"}

	tests := []struct {
		name             string
		includeArguments bool
		wantKey          string
		absentKey        string
	}{
		{name: "names only", includeArguments: false, wantKey: "argument_names", absentKey: "arguments"},
		{name: "with values", includeArguments: true, wantKey: "arguments", absentKey: "argument_names"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := NewToolInvocation("tasks_get", args).Complete(nil)
			m := attrMap(ti.LogAttrs(tt.includeArguments))
			assert.Contains(t, m, tt.wantKey)
			assert.NotContains(t, m, tt.absentKey)
			assert.Equal(t, "tasks_get", m["tool"].String())
		})
	}

	ti := NewToolInvocation("tasks_get", args).Complete(nil)
	names := attrMap(ti.LogAttrs(false))["argument_names"].Any()
	assert.Equal(t, []string{"task", "tasklist"}, names)
}

func TestToolInvocation_LogAttrs_Optional(t *testing.T) {
	ti := NewToolInvocation("tasks_list", nil).Complete(nil)
	m := attrMap(ti.LogAttrs(false))
	assert.NotContains(t, m, "error")
	assert.NotContains(t, m, "trace_id")

	ti = NewToolInvocation("tasks_list", nil).Complete(errors.New("denied"))
	m = attrMap(ti.LogAttrs(false))
	assert.False(t, m["success"].Bool())
	assert.Equal(t, "denied", m["error"].String())
}

func TestToolInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ti := NewToolInvocation("tasks_list", nil).WithSpanContext(context.Background())
	assert.Empty(t, ti.TraceID)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	al := NewAuditLogger(logger, AuditConfig{Enabled: true})
	al.LogToolInvocation(context.Background(), NewToolInvocation("tasks_delete", nil).Complete(errors.New("nope")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "tool_invocation", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "tasks_delete", record["tool"])
	assert.Equal(t, "nope", record["error"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	NewAuditLogger(logger, AuditConfig{Enabled: false}).
		LogToolInvocation(context.Background(), NewToolInvocation("tasks_list", nil).Complete(nil))
	assert.Zero(t, buf.Len())

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(context.Background(), NewToolInvocation("tasks_list", nil).Complete(nil))
}
