package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workmate-ai/internal/domain"
	"workmate-ai/internal/rag"
	"workmate-ai/internal/repository"
)

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrChatInvalidInput         = errors.New("chat invalid input")
	// ErrQuotaExceeded means the backend rejected the send; the caller shows
	// a distinct blocking state instead of a retry suggestion.
	ErrQuotaExceeded = errors.New("chat quota exceeded")
)

// SendResult pairs the persisted messages with the quota counters the
// backend returned alongside the answer.
type SendResult struct {
	UserMessage      domain.ChatMessage `json:"user_message"`
	AssistantMessage domain.ChatMessage `json:"assistant_message"`
	RemainingQuota   int                `json:"remaining_quota"`
	Rule             ExtractionRule     `json:"-"`
}

// ChatService orchestrates one send: persist the user message, ask the RAG
// endpoint, resolve the citation, persist the assistant message.
type ChatService struct {
	ragClient  rag.Client
	history    repository.HistoryRepository
	extractor  SourceExtractor
	aggregator SourceAggregator
	classifier SourceClassifier
}

func NewChatService(ragClient rag.Client, history repository.HistoryRepository) *ChatService {
	return &ChatService{
		ragClient: ragClient,
		history:   history,
	}
}

// Send runs the full message round trip. The extraction step is pure; only
// the repository and the RAG call touch the outside world.
func (s *ChatService) Send(ctx context.Context, identity, text string) (SendResult, error) {
	if s == nil || s.ragClient == nil || s.history == nil {
		return SendResult{}, ErrChatServiceNotConfigured
	}

	identity = strings.TrimSpace(identity)
	text = strings.TrimSpace(text)
	if identity == "" || text == "" {
		return SendResult{}, ErrChatInvalidInput
	}

	userMsg := domain.ChatMessage{
		ID:         uuid.NewString(),
		Identity:   identity,
		Text:       text,
		IsFromUser: true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.history.Append(ctx, userMsg); err != nil {
		return SendResult{}, fmt.Errorf("persist user message: %w", err)
	}

	answer, err := s.ragClient.Answer(ctx, identity, text)
	if err != nil {
		return SendResult{}, fmt.Errorf("rag answer: %w", err)
	}
	if answer.QuotaExceeded {
		return SendResult{UserMessage: userMsg, RemainingQuota: answer.RemainingQuota}, ErrQuotaExceeded
	}

	extracted := s.extractor.Extract(answer.ResponseText, answer.Citation)

	assistantMsg := domain.ChatMessage{
		ID:         uuid.NewString(),
		Identity:   identity,
		Text:       extracted.DisplayText,
		IsFromUser: false,
		Citation:   extracted.Citation,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.history.Append(ctx, assistantMsg); err != nil {
		return SendResult{}, fmt.Errorf("persist assistant message: %w", err)
	}

	return SendResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		RemainingQuota:   answer.RemainingQuota,
		Rule:             extracted.Rule,
	}, nil
}

// History returns the identity's ordered message list.
func (s *ChatService) History(ctx context.Context, identity string) ([]domain.ChatMessage, error) {
	if s == nil || s.history == nil {
		return nil, ErrChatServiceNotConfigured
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return []domain.ChatMessage{}, nil
	}
	return s.history.Load(ctx, identity)
}

// Sources aggregates and classifies the citation panel entries for the
// identity's current history. Recomputed on every call, no cached state.
func (s *ChatService) Sources(ctx context.Context, identity string) ([]domain.ClassifiedReference, error) {
	messages, err := s.History(ctx, identity)
	if err != nil {
		return nil, err
	}

	refs := s.aggregator.Aggregate(messages)
	out := make([]domain.ClassifiedReference, 0, len(refs))
	for _, ref := range refs {
		out = append(out, s.classifier.Classify(ref))
	}
	return out, nil
}

// ClearHistory wipes the identity's stored messages.
func (s *ChatService) ClearHistory(ctx context.Context, identity string) error {
	if s == nil || s.history == nil {
		return ErrChatServiceNotConfigured
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrChatInvalidInput
	}
	return s.history.Clear(ctx, identity)
}
