// Package proxy relays streaming completions. A client posts a conversation;
// the relay forwards it upstream, decodes the response stream, dispatches
// tool calls locally, and re-emits the decoded events to the client as
// server-sent frames in the same dialect it consumes.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ternlabs/tern/internal/config"
	"github.com/ternlabs/tern/internal/llm"
	"github.com/ternlabs/tern/internal/stream"
	"github.com/ternlabs/tern/internal/tool"
)

type Server struct {
	cfg        *config.ConfigSchema
	client     *llm.Client
	dispatcher *tool.Dispatcher
	logger     *slog.Logger
}

func NewServer(cfg *config.ConfigSchema, dispatcher *tool.Dispatcher) *Server {
	return &Server{
		cfg:        cfg,
		client:     llm.NewClient(cfg),
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}
}

// chatRequest is the relay's inbound payload.
type chatRequest struct {
	Messages []llm.Message `json:"messages"`
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Post("/v1/chat", s.handleChat)
	return r
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages must not be empty", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	rs, err := s.client.StreamMessages(ctx, req.Messages, s.dispatcher.Descriptors())
	if err != nil {
		logger.Error("upstream request failed", "error", err)
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer rs.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Request-Id", requestID)

	decoder := stream.NewDecoder(
		stream.WithInvoker(func(ctx context.Context, name string, args map[string]any) (any, error) {
			res := s.dispatcher.Invoke(ctx, name, args)
			if !res.OK {
				return nil, fmt.Errorf("%v", res.Value)
			}
			return res.Value, nil
		}),
		stream.WithLogger(logger),
	)

	for ev := range decoder.Run(ctx, rs).Events {
		frame, terminal := encodeEvent(ev)
		if frame != nil {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
		if terminal {
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}
	}
}

// Run serves until the context is cancelled, then drains connections within
// the configured shutdown window.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("relay listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "relay server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(s.cfg.Server.ShutdownSeconds)*time.Second,
		)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
