package models

import (
	"time"
)

// ChatMessage is one turn in a mentor conversation
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession summarizes one mentor conversation
type ChatSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int64     `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
}

// ChatRequest starts or continues a mentor conversation. An empty
// SessionID starts a new session.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse carries the mentor's reply
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}
