package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workmate-ai/internal/domain"
	"workmate-ai/internal/rag"
	"workmate-ai/internal/service"
)

type mockHistoryRepo struct {
	byIdentity map[string][]domain.ChatMessage
	loadErr    error
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{byIdentity: make(map[string][]domain.ChatMessage)}
}

func (m *mockHistoryRepo) Load(_ context.Context, identity string) ([]domain.ChatMessage, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.byIdentity[identity], nil
}

func (m *mockHistoryRepo) Append(_ context.Context, msg domain.ChatMessage) error {
	m.byIdentity[msg.Identity] = append(m.byIdentity[msg.Identity], msg)
	return nil
}

func (m *mockHistoryRepo) Replace(_ context.Context, identity string, msgs []domain.ChatMessage) error {
	m.byIdentity[identity] = msgs
	return nil
}

func (m *mockHistoryRepo) Clear(_ context.Context, identity string) error {
	delete(m.byIdentity, identity)
	return nil
}

func setupChatRouter(ragClient rag.Client, repo *mockHistoryRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewChatService(ragClient, repo)
	h := NewChatHandler(zap.NewNop(), svc)
	return NewRouter(zap.NewNop(), "test-secret", h)
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPostMessage_Success(t *testing.T) {
	repo := newMockHistoryRepo()
	client := &rag.MockClient{Response: rag.Answer{
		ResponseText:   "就業規則は「就業規則.pdf」に記載されております",
		RemainingQuota: 4,
	}}
	r := setupChatRouter(client, repo)

	rec := performRequest(r, http.MethodPost, "/chat/message", map[string]string{
		"identity": "user@example.com",
		"text":     "就業規則について教えて",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AssistantMessage domain.ChatMessage `json:"assistant_message"`
		RemainingQuota   int                `json:"remaining_quota"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AssistantMessage.Citation != "就業規則.pdf" {
		t.Fatalf("expected extracted citation, got %q", resp.AssistantMessage.Citation)
	}
	if resp.RemainingQuota != 4 {
		t.Fatalf("expected quota passthrough, got %d", resp.RemainingQuota)
	}
	if len(repo.byIdentity["user@example.com"]) != 2 {
		t.Fatalf("expected both messages persisted")
	}
}

func TestPostMessage_MissingText(t *testing.T) {
	r := setupChatRouter(&rag.MockClient{}, newMockHistoryRepo())

	rec := performRequest(r, http.MethodPost, "/chat/message", map[string]string{
		"identity": "user@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPostMessage_MissingIdentity(t *testing.T) {
	r := setupChatRouter(&rag.MockClient{}, newMockHistoryRepo())

	rec := performRequest(r, http.MethodPost, "/chat/message", map[string]string{
		"text": "質問です",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestPostMessage_QuotaExceeded(t *testing.T) {
	client := &rag.MockClient{Response: rag.Answer{QuotaExceeded: true}}
	r := setupChatRouter(client, newMockHistoryRepo())

	rec := performRequest(r, http.MethodPost, "/chat/message", map[string]string{
		"identity": "user@example.com",
		"text":     "質問です",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}

	var resp struct {
		QuotaExceeded bool `json:"quota_exceeded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.QuotaExceeded {
		t.Fatalf("expected quota_exceeded flag in response: %s", rec.Body.String())
	}
}

func TestPostMessage_BackendFailure(t *testing.T) {
	client := &rag.MockClient{Err: errors.New("connection refused")}
	r := setupChatRouter(client, newMockHistoryRepo())

	rec := performRequest(r, http.MethodPost, "/chat/message", map[string]string{
		"identity": "user@example.com",
		"text":     "質問です",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func TestGetSources_RankedPanel(t *testing.T) {
	repo := newMockHistoryRepo()
	repo.byIdentity["user@example.com"] = []domain.ChatMessage{
		{Identity: "user@example.com", Text: "q", IsFromUser: true},
		{Identity: "user@example.com", Text: "a", Citation: "a.pdf, b.xlsx"},
		{Identity: "user@example.com", Text: "a", Citation: "a.pdf"},
	}
	r := setupChatRouter(&rag.MockClient{}, repo)

	rec := performRequest(r, http.MethodGet, "/chat/sources?identity=user@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Sources []domain.ClassifiedReference `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(resp.Sources))
	}
	if resp.Sources[0].Name != "a.pdf" || resp.Sources[0].OccurrenceCount != 2 {
		t.Fatalf("unexpected ranking: %+v", resp.Sources)
	}
}

func TestClearHistory(t *testing.T) {
	repo := newMockHistoryRepo()
	repo.byIdentity["user@example.com"] = []domain.ChatMessage{
		{Identity: "user@example.com", Text: "q", IsFromUser: true},
	}
	r := setupChatRouter(&rag.MockClient{}, repo)

	rec := performRequest(r, http.MethodDelete, "/chat/history?identity=user@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(repo.byIdentity["user@example.com"]) != 0 {
		t.Fatalf("expected history cleared")
	}
}

func TestGetSources_RepositoryFailure(t *testing.T) {
	repo := newMockHistoryRepo()
	repo.loadErr = errors.New("connection reset")
	r := setupChatRouter(&rag.MockClient{}, repo)

	rec := performRequest(r, http.MethodGet, "/chat/sources?identity=user@example.com", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestGetHistory(t *testing.T) {
	repo := newMockHistoryRepo()
	repo.byIdentity["user@example.com"] = []domain.ChatMessage{
		{Identity: "user@example.com", Text: "質問", IsFromUser: true},
		{Identity: "user@example.com", Text: "回答", Citation: "manual.pdf"},
	}
	r := setupChatRouter(&rag.MockClient{}, repo)

	rec := performRequest(r, http.MethodGet, "/chat/history?identity=user@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[1].Citation != "manual.pdf" {
		t.Fatalf("unexpected history: %+v", resp.Messages)
	}
}
