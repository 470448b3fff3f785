package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docchat-io/docchat/internal/metrics"
	"github.com/docchat-io/docchat/internal/models"
	"github.com/docchat-io/docchat/internal/store"
)

// contextTemplate is the literal template for injected document context.
const contextTemplate = "Relevant context from documents:\n%s"

// Completer is the completion-service contract.
type Completer interface {
	Complete(ctx context.Context, conv models.Conversation) (string, error)
}

// ContextRetriever produces a supporting context block for a query.
// An empty return means no context is available.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) string
}

// Result is the outcome of one chat exchange.
type Result struct {
	Response       string
	ConversationID string
	Storage        store.Tier
}

// Service wires store, retriever, and completion service per request.
// There is no per-conversation locking: concurrent requests on the same
// identifier are last-write-wins.
type Service struct {
	store     store.Store
	retriever ContextRetriever
	completer Completer
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewService creates the chat orchestrator. retriever may be a no-op.
func NewService(st store.Store, retriever ContextRetriever, completer Completer, collector *metrics.Collector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Service{
		store:     st,
		retriever: retriever,
		completer: completer,
		collector: collector,
		logger:    logger,
	}
}

// Chat runs one exchange. The message must be non-empty; the id defaults
// to the shared sentinel when blank. Downstream failures come back as
// *UpstreamError; the conversation is then left unpersisted, so the
// failure is invisible to the next read.
func (s *Service) Chat(ctx context.Context, id, message string) (Result, error) {
	if message == "" {
		return Result{}, ErrEmptyMessage
	}
	if id == "" {
		id = models.DefaultConversationID
	}

	getStart := time.Now()
	conv, ok := s.store.Get(ctx, id)
	s.collector.Record(metrics.OpStoreGet, time.Since(getStart))
	if !ok {
		conv = models.NewConversation()
	}

	// Retrieved context rides along as a synthetic system turn placed
	// right before the user turn. It stays in the transcript afterwards
	// and accumulates across exchanges.
	if s.retriever != nil {
		if docContext := s.retriever.Retrieve(ctx, message); docContext != "" {
			conv = append(conv, models.NewTurn(models.RoleSystem, fmt.Sprintf(contextTemplate, docContext)))
		}
	}

	conv = append(conv, models.NewTurn(models.RoleUser, message))

	start := time.Now()
	response, err := s.completer.Complete(ctx, conv)
	s.collector.Record(metrics.OpCompletion, time.Since(start))
	if err != nil {
		s.logger.Error("completion call failed", "conversation", id, "error", err)
		return Result{}, &UpstreamError{Err: err}
	}

	conv = append(conv, models.NewTurn(models.RoleAssistant, response))

	saveStart := time.Now()
	tier := s.store.Save(ctx, id, conv)
	s.collector.Record(metrics.OpStoreSave, time.Since(saveStart))
	s.logger.Info("chat exchange complete",
		"conversation", id, "turns", len(conv), "storage", tier)

	return Result{
		Response:       response,
		ConversationID: id,
		Storage:        tier,
	}, nil
}

// Reset deletes the conversation from all tiers. Resetting an unknown
// identifier succeeds and reports the tier the deletion reached.
func (s *Service) Reset(ctx context.Context, id string) store.Tier {
	if id == "" {
		id = models.DefaultConversationID
	}

	tier := s.store.Delete(ctx, id)
	s.logger.Info("conversation reset", "conversation", id, "storage", tier)
	return tier
}
