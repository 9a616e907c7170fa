// Package stream decodes a newline-delimited completion stream into typed
// events. Text and tool-invocation fragments interleave in one response; the
// decoder tracks which tool is open, concatenates its argument fragments, and
// splices each tool's result back into the running text without ever
// retracting text already emitted.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	framePrefix  = "data:"
	doneSentinel = "[DONE]"
)

// InvokeFunc resolves a completed tool invocation. The decoder tolerates
// both a JSON-serializable result and an error; neither aborts the stream.
type InvokeFunc func(ctx context.Context, name string, arguments map[string]any) (any, error)

type state int

const (
	stateIdle state = iota
	stateToolOpen
)

// Decoder reduces raw lines to events for a single response. A Decoder is
// not reusable across responses; each exchange gets its own instance.
type Decoder struct {
	invoke InvokeFunc
	logger *slog.Logger

	state    state
	toolID   string
	toolName string
	toolArgs strings.Builder

	buf strings.Builder
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithInvoker sets the tool-invocation callback fired on each completed tool
// call. Without one, ToolComplete events are emitted but nothing is invoked.
func WithInvoker(fn InvokeFunc) Option {
	return func(d *Decoder) { d.invoke = fn }
}

// WithLogger overrides the logger used for skipped-frame warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) { d.logger = logger }
}

// NewDecoder creates a decoder for one response stream.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Buffer returns the cumulative response text assembled so far.
func (d *Decoder) Buffer() string {
	return d.buf.String()
}

// frame is the JSON payload of one protocol line.
type frame struct {
	Type         string        `json:"type"`
	Index        int           `json:"index"`
	ContentBlock *contentBlock `json:"content_block"`
	Delta        *blockDelta   `json:"delta"`
}

type contentBlock struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

type blockDelta struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	PartialJSON string `json:"partial_json"`
}

// step processes a single raw line and returns the resulting events plus
// whether the stream is complete. It performs no I/O and never calls the
// invoker; the Run loop owns both.
func (d *Decoder) step(line string) ([]Event, bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, framePrefix) {
		// Blank keep-alive lines and comments.
		return nil, false
	}
	payload := strings.TrimSpace(line[len(framePrefix):])
	if payload == doneSentinel {
		return []Event{StreamEndEvent{Buffer: d.buf.String()}}, true
	}

	var f frame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		d.logger.Warn("skipping malformed frame", "error", err)
		return []Event{FrameSkippedEvent{Line: line, Reason: "malformed frame JSON"}}, false
	}

	switch f.Type {
	case "content_block_start":
		return d.stepBlockStart(line, &f), false
	case "content_block_delta":
		return d.stepBlockDelta(&f), false
	case "content_block_stop":
		return d.stepBlockStop(line), false
	default:
		// message_start, message_delta, ping and friends carry nothing we
		// need; completion arrives via the sentinel.
		return nil, false
	}
}

func (d *Decoder) stepBlockStart(line string, f *frame) []Event {
	cb := f.ContentBlock
	if cb == nil {
		return nil
	}
	if cb.Type == "tool_use" {
		if d.state == stateToolOpen {
			// Protocol violation: a second tool invocation opened while one
			// is still collecting arguments. Reject the new one so the two
			// argument buffers never merge.
			d.logger.Warn("tool invocation opened while another is in progress",
				"open", d.toolName, "rejected", cb.Name)
			return []Event{FrameSkippedEvent{Line: line, Reason: "tool invocation already open"}}
		}
		d.state = stateToolOpen
		d.toolID = cb.ID
		d.toolName = cb.Name
		d.toolArgs.Reset()
		return []Event{ToolStartEvent{ID: cb.ID, Name: cb.Name}}
	}
	if cb.Text != "" {
		return []Event{d.appendText(cb.Text)}
	}
	return nil
}

func (d *Decoder) stepBlockDelta(f *frame) []Event {
	delta := f.Delta
	if delta == nil {
		return nil
	}
	if delta.PartialJSON != "" && d.state == stateToolOpen {
		d.toolArgs.WriteString(delta.PartialJSON)
		return []Event{ToolArgumentChunkEvent{
			ID:          d.toolID,
			Name:        d.toolName,
			PartialJSON: delta.PartialJSON,
		}}
	}
	if delta.Text != "" {
		return []Event{d.appendText(delta.Text)}
	}
	return nil
}

func (d *Decoder) stepBlockStop(line string) []Event {
	if d.state != stateToolOpen {
		return nil
	}
	id, name := d.toolID, d.toolName
	raw := d.toolArgs.String()
	// Step back to idle either way so one bad invocation cannot wedge the
	// rest of the response.
	d.state = stateIdle
	d.toolID, d.toolName = "", ""
	d.toolArgs.Reset()

	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		d.logger.Warn("abandoning tool invocation with unparseable arguments",
			"tool", name, "error", err)
		return []Event{FrameSkippedEvent{Line: line, Reason: "tool arguments are not valid JSON"}}
	}
	return []Event{ToolCompleteEvent{ID: id, Name: name, Arguments: args}}
}

func (d *Decoder) appendText(text string) TextDeltaEvent {
	d.buf.WriteString(text)
	return TextDeltaEvent{Text: text, Buffer: d.buf.String()}
}

// toolResult appends the serialized invocation outcome to the running buffer
// as a visible annotation.
func (d *Decoder) toolResult(ev ToolCompleteEvent, value any, invokeErr error) ToolResultEvent {
	var text string
	ok := invokeErr == nil
	if ok {
		serialized, err := json.Marshal(value)
		if err != nil {
			ok = false
			text = fmt.Sprintf("\n[tool %s failed: unserializable result: %v]\n", ev.Name, err)
		} else {
			text = fmt.Sprintf("\n[tool %s result: %s]\n", ev.Name, serialized)
		}
	} else {
		text = fmt.Sprintf("\n[tool %s failed: %v]\n", ev.Name, invokeErr)
	}
	d.buf.WriteString(text)
	return ToolResultEvent{
		ID:     ev.ID,
		Name:   ev.Name,
		OK:     ok,
		Text:   text,
		Buffer: d.buf.String(),
	}
}

// Run drives the decoder over a line source and returns a stream of events.
// The returned channels close when the stream reaches a terminal event or
// the context is cancelled.
func (d *Decoder) Run(ctx context.Context, src LineSource) Stream {
	events := make(chan Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(events)
		d.run(ctx, src, events)
	}()

	return Stream{Events: events, Done: done}
}

func (d *Decoder) run(ctx context.Context, src LineSource, events chan<- Event) {
	for {
		line, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Consumer is gone; nothing left to report to.
				return
			}
			if err == io.EOF {
				err = fmt.Errorf("stream closed before completion")
			}
			d.emit(ctx, events, StreamErrorEvent{Err: err})
			return
		}

		evs, finished := d.step(line)
		for _, ev := range evs {
			if !d.emit(ctx, events, ev) {
				return
			}
			complete, isTool := ev.(ToolCompleteEvent)
			if !isTool || d.invoke == nil {
				continue
			}
			// The only suspension point in the decode loop: generation may
			// depend on the tool's output, so decoding waits for it.
			value, invokeErr := d.invoke(ctx, complete.Name, complete.Arguments)
			if ctx.Err() != nil {
				// Cancelled mid-invocation; discard the result.
				return
			}
			if invokeErr != nil {
				d.logger.Warn("tool invocation failed", "tool", complete.Name, "error", invokeErr)
			}
			if !d.emit(ctx, events, d.toolResult(complete, value, invokeErr)) {
				return
			}
		}
		if finished {
			return
		}
	}
}

func (d *Decoder) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
