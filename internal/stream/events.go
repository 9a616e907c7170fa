package stream

// EventType defines the type of decoded streaming event
type EventType int

const (
	EventTypeTextDelta EventType = iota
	EventTypeToolStart
	EventTypeToolArgumentChunk
	EventTypeToolComplete
	EventTypeToolResult
	EventTypeFrameSkipped
	EventTypeStreamEnd
	EventTypeStreamError
)

// Event is the interface for all decoded streaming events
type Event interface {
	Type() EventType
}

// TextDeltaEvent represents a chunk of assistant text. Buffer carries the
// cumulative response text so far; it only ever grows within one stream.
type TextDeltaEvent struct {
	Text   string
	Buffer string
}

func (e TextDeltaEvent) Type() EventType { return EventTypeTextDelta }

// ToolStartEvent represents a tool invocation opening in the stream.
// No arguments have been received yet.
type ToolStartEvent struct {
	ID   string
	Name string
}

func (e ToolStartEvent) Type() EventType { return EventTypeToolStart }

// ToolArgumentChunkEvent carries a raw fragment of the open tool's argument
// JSON. Fragments concatenate in arrival order.
type ToolArgumentChunkEvent struct {
	ID          string
	Name        string
	PartialJSON string
}

func (e ToolArgumentChunkEvent) Type() EventType { return EventTypeToolArgumentChunk }

// ToolCompleteEvent is emitted once the argument buffer has been fully
// received and parsed.
type ToolCompleteEvent struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (e ToolCompleteEvent) Type() EventType { return EventTypeToolComplete }

// ToolResultEvent is the annotation spliced into the response text after a
// tool invocation resolves. Buffer is cumulative, like TextDeltaEvent.
type ToolResultEvent struct {
	ID     string
	Name   string
	OK     bool
	Text   string
	Buffer string
}

func (e ToolResultEvent) Type() EventType { return EventTypeToolResult }

// FrameSkippedEvent is a non-fatal warning: a single frame was dropped
// without aborting the stream.
type FrameSkippedEvent struct {
	Line   string
	Reason string
}

func (e FrameSkippedEvent) Type() EventType { return EventTypeFrameSkipped }

// StreamEndEvent is terminal: upstream signaled completion.
type StreamEndEvent struct {
	Buffer string
}

func (e StreamEndEvent) Type() EventType { return EventTypeStreamEnd }

// StreamErrorEvent is terminal: the transport or decode failed.
type StreamErrorEvent struct {
	Err error
}

func (e StreamErrorEvent) Type() EventType { return EventTypeStreamError }

// Stream represents an ongoing decode of one response
type Stream struct {
	Events <-chan Event
	Done   <-chan struct{}
}
