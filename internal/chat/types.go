// Package chat implements the conversational assistant: prompt context,
// the Gemini client, sqlite persistence, and JSON export/import.
package chat

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCategory is the category a chat gets when none is chosen.
const DefaultCategory = "general"

var (
	// ErrNotFound is returned when a chat id has no stored record.
	ErrNotFound = errors.New("chat not found")
	// ErrWriteSkipped is returned when a write found another write in
	// progress and gave up.
	ErrWriteSkipped = errors.New("chat write skipped: another write in progress")
)

// NotFoundError names the missing chat. It matches ErrNotFound.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Chat with ID %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Message is one turn of a conversation. Timestamp is unix milliseconds and
// doubles as the message identity inside a chat.
type Message struct {
	Text          string `json:"text" yaml:"text"`
	IsUserMessage bool   `json:"isUserMessage" yaml:"is_user_message"`
	Timestamp     int64  `json:"timestamp" yaml:"timestamp"`
}

// Speaker returns "User" or "Assistant".
func (m Message) Speaker() string {
	if m.IsUserMessage {
		return "User"
	}
	return "Assistant"
}

// Chat is a stored conversation.
type Chat struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Category    string    `json:"category" yaml:"category"`
	Summary     *string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Timestamp   int64     `json:"timestamp" yaml:"timestamp"`
	LastUpdated int64     `json:"last_updated" yaml:"last_updated"`
	Messages    []Message `json:"messages" yaml:"messages"`
}

// Info is the listing view of a chat, without its messages.
type Info struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Category     string `json:"category" yaml:"category"`
	MessageCount int    `json:"message_count" yaml:"message_count"`
	HasSummary   bool   `json:"has_summary" yaml:"has_summary"`
	Timestamp    int64  `json:"timestamp" yaml:"timestamp"`
	LastUpdated  int64  `json:"last_updated" yaml:"last_updated"`
}

// SearchHit is a message matched by a search, with the chat it belongs to.
type SearchHit struct {
	ChatID   string  `json:"chat_id" yaml:"chat_id"`
	Category string  `json:"category" yaml:"category"`
	Message  Message `json:"message" yaml:"message"`
}

// TitleFor derives a chat title from its first user message.
func TitleFor(messages []Message) string {
	const max = 40
	for _, m := range messages {
		if !m.IsUserMessage {
			continue
		}
		t := strings.Join(strings.Fields(m.Text), " ")
		if len([]rune(t)) > max {
			t = string([]rune(t)[:max]) + "..."
		}
		return t
	}
	return "New chat"
}

// MatchesQuery reports whether text contains any of the lowercase
// space-separated terms of query. Empty terms never match.
func MatchesQuery(text, query string) bool {
	lower := strings.ToLower(text)
	for _, term := range strings.Split(strings.ToLower(query), " ") {
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}
	return c
}
