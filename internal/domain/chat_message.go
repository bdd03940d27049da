package domain

import "time"

// ChatMessage is one entry in an identity's chat history. Text holds the
// display text with inline citation labels already removed; Citation holds the
// raw, possibly multi-entry citation string for assistant messages.
type ChatMessage struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	Text       string    `json:"text"`
	IsFromUser bool      `json:"is_from_user"`
	Citation   string    `json:"citation,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
