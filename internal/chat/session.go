// Package chat ties the upstream client, the stream decoder, and the tool
// dispatcher together into one conversation. History lives in memory for the
// lifetime of the session; nothing is persisted.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ternlabs/tern/internal/llm"
	"github.com/ternlabs/tern/internal/stream"
	"github.com/ternlabs/tern/internal/tool"
)

type historyEntry struct {
	ID      uuid.UUID
	Role    llm.Role
	Content string
}

// Session is one conversation. Sessions are independent: concurrent requests
// each get their own Session and their own decoder; only the dispatcher's
// read-only registry is shared.
type Session struct {
	client     *llm.Client
	dispatcher *tool.Dispatcher
	logger     *slog.Logger

	mu      sync.Mutex
	busy    bool
	history []historyEntry
}

func NewSession(client *llm.Client, dispatcher *tool.Dispatcher) *Session {
	return &Session{
		client:     client,
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}
}

// Send appends a user message and streams the assistant's reply. Only one
// exchange may be in flight per session.
func (s *Session) Send(ctx context.Context, text string) stream.Stream {
	events := make(chan stream.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(events)
		s.exchange(ctx, text, events)
	}()

	return stream.Stream{Events: events, Done: done}
}

func (s *Session) exchange(ctx context.Context, text string, events chan<- stream.Event) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		events <- stream.StreamErrorEvent{Err: fmt.Errorf("a request is already in flight")}
		return
	}
	s.busy = true
	s.history = append(s.history, historyEntry{
		ID:      uuid.New(),
		Role:    llm.RoleUser,
		Content: text,
	})
	messages := s.messagesLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	rs, err := s.client.StreamMessages(ctx, messages, s.dispatcher.Descriptors())
	if err != nil {
		s.emit(ctx, events, stream.StreamErrorEvent{Err: err})
		return
	}
	defer rs.Close()

	decoder := stream.NewDecoder(
		stream.WithInvoker(s.invokeTool),
		stream.WithLogger(s.logger),
	)
	inner := decoder.Run(ctx, rs)

	for ev := range inner.Events {
		if end, ok := ev.(stream.StreamEndEvent); ok {
			s.recordAssistant(end.Buffer)
		}
		if !s.emit(ctx, events, ev) {
			return
		}
	}
}

// invokeTool bridges the decoder's callback to the dispatcher. Failed
// results come back as errors so the decoder annotates them as failures.
func (s *Session) invokeTool(ctx context.Context, name string, args map[string]any) (any, error) {
	res := s.dispatcher.Invoke(ctx, name, args)
	if !res.OK {
		return nil, fmt.Errorf("%v", res.Value)
	}
	return res.Value, nil
}

func (s *Session) recordAssistant(content string) {
	if content == "" {
		return
	}
	s.mu.Lock()
	s.history = append(s.history, historyEntry{
		ID:      uuid.New(),
		Role:    llm.RoleAssistant,
		Content: content,
	})
	s.mu.Unlock()
}

func (s *Session) messagesLocked() []llm.Message {
	messages := make([]llm.Message, 0, len(s.history))
	for _, entry := range s.history {
		messages = append(messages, llm.Message{Role: entry.Role, Content: entry.Content})
	}
	return messages
}

// Messages returns a snapshot of the conversation so far.
func (s *Session) Messages() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesLocked()
}

func (s *Session) emit(ctx context.Context, events chan<- stream.Event, ev stream.Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
