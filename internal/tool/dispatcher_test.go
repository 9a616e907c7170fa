package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoDescriptor(name string) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "echoes its input",
		Parameters: Parameters{
			Type: "object",
			Properties: map[string]Property{
				"text": {Type: "string", Description: "text to echo"},
			},
			Required: []string{"text"},
		},
	}
}

func echoHandler(ctx context.Context, args map[string]any) (any, error) {
	return args["text"], nil
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(echoDescriptor("echo"), echoHandler))

	second := func(ctx context.Context, args map[string]any) (any, error) {
		return nil, fmt.Errorf("should never run")
	}
	err := d.Register(echoDescriptor("echo"), second)
	var dup DuplicateToolError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "echo", dup.Name)

	res := d.Invoke(context.Background(), "echo", map[string]any{"text": "hi"})
	assert.True(t, res.OK)
	assert.Equal(t, "hi", res.Value)
}

func TestDescriptorsStableInsertionOrder(t *testing.T) {
	d := NewDispatcher()
	names := []string{"zeta", "alpha", "mid"}
	for _, n := range names {
		require.NoError(t, d.Register(echoDescriptor(n), echoHandler))
	}

	first := d.Descriptors()
	second := d.Descriptors()
	require.Equal(t, first, second)

	got := make([]string, 0, len(first))
	for _, desc := range first {
		got = append(got, desc.Name)
	}
	assert.Equal(t, names, got)

	// Mutating the returned slice must not touch the registry.
	first[0].Name = "mutated"
	assert.Equal(t, "zeta", d.Descriptors()[0].Name)
}

func TestInvokeUnknownToolNeverRaises(t *testing.T) {
	d := NewDispatcher()
	res := d.Invoke(context.Background(), "no_such_tool", map[string]any{"x": 1})
	assert.False(t, res.OK)
	assert.Contains(t, res.Value, "unknown tool")
}

func TestInvokeHandlerErrorBecomesFailedResult(t *testing.T) {
	d := NewDispatcher()
	desc := echoDescriptor("boom")
	require.NoError(t, d.Register(desc, func(ctx context.Context, args map[string]any) (any, error) {
		return nil, fmt.Errorf("domain error")
	}))

	res := d.Invoke(context.Background(), "boom", map[string]any{"text": "x"})
	assert.False(t, res.OK)
	assert.Equal(t, "domain error", res.Value)
}

func TestInvokeHandlerPanicBecomesFailedResult(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(echoDescriptor("panic"), func(ctx context.Context, args map[string]any) (any, error) {
		panic("unreachable state")
	}))

	res := d.Invoke(context.Background(), "panic", map[string]any{"text": "x"})
	assert.False(t, res.OK)
}

func TestInvokeValidatesArgumentsAgainstSchema(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(echoDescriptor("echo"), echoHandler))

	missing := d.Invoke(context.Background(), "echo", map[string]any{})
	assert.False(t, missing.OK)

	wrongType := d.Invoke(context.Background(), "echo", map[string]any{"text": 12})
	assert.False(t, wrongType.OK)

	nilArgs := d.Invoke(context.Background(), "echo", nil)
	assert.False(t, nilArgs.OK)
}

func TestDescriptorAdvertisementShape(t *testing.T) {
	desc := echoDescriptor("echo")
	raw, err := json.Marshal(desc)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	assert.Equal(t, "echo", wire["name"])
	assert.Equal(t, "echoes its input", wire["description"])

	schema, ok := wire["input_schema"].(map[string]any)
	require.True(t, ok, "input_schema must be an object")
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema, "properties")
	assert.Equal(t, []any{"text"}, schema["required"])
}

func TestParametersForReflectsStruct(t *testing.T) {
	type searchArgs struct {
		Query string `json:"query" jsonschema:"description=search phrase"`
		Limit int    `json:"limit,omitempty" jsonschema:"description=max results"`
	}

	params := ParametersFor(&searchArgs{})
	assert.Equal(t, "object", params.Type)
	require.Contains(t, params.Properties, "query")
	require.Contains(t, params.Properties, "limit")
	assert.Equal(t, "string", params.Properties["query"].Type)
	assert.Equal(t, "integer", params.Properties["limit"].Type)
	assert.Equal(t, []string{"query"}, params.Required)
}
