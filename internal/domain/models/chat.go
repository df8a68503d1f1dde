package models

import (
	"time"
)

// MessageType classifies chat messages.
type MessageType string

const (
	MessageTypeUser    MessageType = "user"
	MessageTypeAI      MessageType = "ai"
	MessageTypeContext MessageType = "context"
)

// Message is one entry in a chat session. Messages are append-only within a
// session; array order is chronological order.
type Message struct {
	ID           string      `json:"id"`
	Type         MessageType `json:"type"`
	Content      string      `json:"content"`
	Timestamp    time.Time   `json:"timestamp"`
	SelectedText string      `json:"selected_text,omitempty"`
}

// ChatSession is a chat thread, optionally bound to a document.
//
// DocID is association, never ownership: deleting the document does not
// cascade to the session.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DocID     string    `json:"doc_id,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
