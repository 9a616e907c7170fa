package proxy

import (
	"encoding/json"

	"github.com/ternlabs/tern/internal/stream"
)

// sseFrame is the relay's outbound event envelope.
type sseFrame struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	OK        *bool          `json:"ok,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// encodeEvent maps a decoded event onto the relay's wire envelope. A nil
// frame means the event is internal and not forwarded. terminal reports
// whether the stream is over after this event.
func encodeEvent(ev stream.Event) (frame []byte, terminal bool) {
	var out sseFrame
	switch e := ev.(type) {
	case stream.TextDeltaEvent:
		out = sseFrame{Type: "text_delta", Text: e.Text}
	case stream.ToolStartEvent:
		out = sseFrame{Type: "tool_start", ID: e.ID, Name: e.Name}
	case stream.ToolArgumentChunkEvent:
		// Argument fragments are consumed by the relay's own dispatch;
		// clients only see the completed call.
		return nil, false
	case stream.ToolCompleteEvent:
		out = sseFrame{Type: "tool_complete", ID: e.ID, Name: e.Name, Arguments: e.Arguments}
	case stream.ToolResultEvent:
		ok := e.OK
		out = sseFrame{Type: "tool_result", ID: e.ID, Name: e.Name, OK: &ok, Text: e.Text}
	case stream.FrameSkippedEvent:
		return nil, false
	case stream.StreamEndEvent:
		return nil, true
	case stream.StreamErrorEvent:
		msg, _ := json.Marshal(sseFrame{Type: "error", Message: e.Err.Error()})
		return msg, true
	default:
		return nil, false
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, false
	}
	return b, false
}
