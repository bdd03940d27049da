package rag

import "context"

// MockClient allows tests without a running RAG endpoint.
type MockClient struct {
	Response Answer
	Err      error
}

func (m *MockClient) Answer(ctx context.Context, identity, text string) (Answer, error) {
	return m.Response, m.Err
}
