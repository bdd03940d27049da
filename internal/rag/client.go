package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Answer is the wire shape returned by the extended-RAG chat endpoint.
// Citation is optional; when present it takes precedence over any in-text
// extraction downstream.
type Answer struct {
	ResponseText   string `json:"response_text"`
	Citation       string `json:"citation,omitempty"`
	RemainingQuota int    `json:"remaining_quota,omitempty"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
}

// Client asks the external chat endpoint for an answer to one user message.
type Client interface {
	Answer(ctx context.Context, identity, text string) (Answer, error)
}

type logger interface {
	Printf(format string, v ...interface{})
}

// HTTPClient implements Client against the extended-RAG HTTP endpoint.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger
}

// Generation can be slow; the timeout is deliberately far above typical
// latency so long answers are not cut off. One outstanding request per send.
const requestTimeout = 300 * time.Second

// NewHTTPClient builds a client pointing at the chat endpoint base URL.
func NewHTTPClient(baseURL, apiKey string, log any) *HTTPClient {
	l, _ := log.(logger)
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  l,
	}
}

func (c *HTTPClient) Answer(ctx context.Context, identity, text string) (Answer, error) {
	reqBody := chatRequest{Text: text, Identity: identity}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return Answer{}, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Printf("rag error status %d: %s", resp.StatusCode, string(respBody))
		}
		return Answer{}, fmt.Errorf("rag http error: status=%d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Answer{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return Answer{}, fmt.Errorf("rag api error: %s", cr.Error.Message)
	}

	return Answer{
		ResponseText:   cr.ResponseText,
		Citation:       cr.Citation,
		RemainingQuota: cr.RemainingQuota,
		QuotaExceeded:  cr.QuotaExceeded,
	}, nil
}

type chatRequest struct {
	Text     string `json:"text"`
	Identity string `json:"identity"`
}

type chatResponse struct {
	ResponseText   string `json:"response_text"`
	Citation       string `json:"citation,omitempty"`
	RemainingQuota int    `json:"remaining_quota,omitempty"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
	Error          *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
