package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternlabs/tern/internal/config"
	"github.com/ternlabs/tern/internal/llm"
	"github.com/ternlabs/tern/internal/stream"
	"github.com/ternlabs/tern/internal/tool"
	"github.com/ternlabs/tern/internal/tool/builtin"
)

// scriptedUpstream serves a fixed SSE body and captures the request payload.
func scriptedUpstream(t *testing.T, lines []string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Api-Key"))

		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
}

func testConfig(baseURL string) *config.ConfigSchema {
	return &config.ConfigSchema{
		Model:    config.Model{Name: "claude-test", MaxTokens: 256, Temperature: 1},
		Upstream: config.Upstream{BaseURL: baseURL, APIKey: "sk-test", Version: "2023-06-01"},
	}
}

func newTestSession(t *testing.T, lines []string, captured *map[string]any) *Session {
	t.Helper()
	server := scriptedUpstream(t, lines, captured)
	t.Cleanup(server.Close)

	dispatcher := tool.NewDispatcher()
	require.NoError(t, builtin.RegisterAll(dispatcher))
	return NewSession(llm.NewClient(testConfig(server.URL)), dispatcher)
}

func drain(t *testing.T, s stream.Stream) []stream.Event {
	t.Helper()
	var events []stream.Event
	for ev := range s.Events {
		events = append(events, ev)
	}
	select {
	case <-s.Done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not finish")
	}
	return events
}

func TestSessionStreamsTextAndRecordsHistory(t *testing.T) {
	var captured map[string]any
	session := newTestSession(t, []string{
		`data: {"type":"content_block_delta","delta":{"text":"Hi"}}`,
		`data: {"type":"content_block_delta","delta":{"text":" there"}}`,
		`data: [DONE]`,
	}, &captured)

	events := drain(t, session.Send(context.Background(), "hello"))
	require.Len(t, events, 3)
	assert.Equal(t, "Hi there", events[2].(stream.StreamEndEvent).Buffer)

	// The request advertised the builtin catalog.
	tools, ok := captured["tools"].([]any)
	require.True(t, ok, "request must advertise tools")
	first := tools[0].(map[string]any)
	assert.Contains(t, first, "name")
	assert.Contains(t, first, "input_schema")
	assert.Equal(t, true, captured["stream"])

	messages := session.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Hi there", messages[1].Content)
}

func TestSessionDispatchesToolsMidStream(t *testing.T) {
	session := newTestSession(t, []string{
		`data: {"type":"content_block_delta","delta":{"text":"Let me check. "}}`,
		`data: {"type":"content_block_start","content_block":{"type":"tool_use","id":"t1","name":"get_weather"}}`,
		`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"city\":\"Paris\"}"}}`,
		`data: {"type":"content_block_stop"}`,
		`data: [DONE]`,
	}, nil)

	events := drain(t, session.Send(context.Background(), "weather in paris?"))

	var result stream.ToolResultEvent
	var found bool
	for _, ev := range events {
		if r, ok := ev.(stream.ToolResultEvent); ok {
			result, found = r, true
		}
	}
	require.True(t, found, "expected a tool result event")
	assert.True(t, result.OK)
	assert.Contains(t, result.Buffer, "Let me check. ")
	assert.Contains(t, result.Buffer, `"temperature":20`)

	// The assistant message keeps the spliced annotation.
	messages := session.Messages()
	assert.Contains(t, messages[len(messages)-1].Content, "get_weather")
}

func TestSessionUnknownToolDegradesGracefully(t *testing.T) {
	session := newTestSession(t, []string{
		`data: {"type":"content_block_start","content_block":{"type":"tool_use","id":"t1","name":"launch_rockets"}}`,
		`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{}"}}`,
		`data: {"type":"content_block_stop"}`,
		`data: {"type":"content_block_delta","delta":{"text":"anyway…"}}`,
		`data: [DONE]`,
	}, nil)

	events := drain(t, session.Send(context.Background(), "do it"))

	var sawFailedResult, sawTrailingText bool
	for _, ev := range events {
		if r, ok := ev.(stream.ToolResultEvent); ok && !r.OK {
			sawFailedResult = true
			assert.Contains(t, r.Text, "unknown tool")
		}
		if td, ok := ev.(stream.TextDeltaEvent); ok && td.Text == "anyway…" {
			sawTrailingText = true
		}
	}
	assert.True(t, sawFailedResult)
	assert.True(t, sawTrailingText, "decoding must continue after a failed tool call")
}

func TestSessionRejectsConcurrentSends(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	dispatcher := tool.NewDispatcher()
	session := NewSession(llm.NewClient(testConfig(server.URL)), dispatcher)

	first := session.Send(context.Background(), "one")

	// Wait for the first exchange to reach the upstream before racing it.
	time.Sleep(100 * time.Millisecond)

	second := drain(t, session.Send(context.Background(), "two"))
	require.Len(t, second, 1)
	streamErr, ok := second[0].(stream.StreamErrorEvent)
	require.True(t, ok)
	assert.ErrorContains(t, streamErr.Err, "already in flight")

	release <- struct{}{}
	drain(t, first)
}

func TestSessionUpstreamErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	session := NewSession(llm.NewClient(testConfig(server.URL)), tool.NewDispatcher())
	events := drain(t, session.Send(context.Background(), "hi"))

	require.Len(t, events, 1)
	streamErr, ok := events[0].(stream.StreamErrorEvent)
	require.True(t, ok)
	assert.ErrorContains(t, streamErr.Err, "503")
}
