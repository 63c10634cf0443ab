package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/devicepilot/internal/logging"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyChat    = errors.New("chat has no messages to summarize")
)

// Saver persists chats. *Store implements it.
type Saver interface {
	SaveChat(ctx context.Context, c *Chat) error
}

// Session is one live conversation.
type Session struct {
	gen   Generator
	saver Saver
	log   *zap.Logger
	now   func() time.Time

	mu        sync.Mutex
	chat      *Chat
	reasoning bool
}

// NewSession continues c, or starts a new chat in the default category when
// c is nil. saver may be nil to keep the conversation in memory only.
func NewSession(c *Chat, gen Generator, saver Saver, log *zap.Logger) *Session {
	if c == nil {
		c = &Chat{Category: DefaultCategory}
	}
	c.Category = normalizeCategory(c.Category)
	return &Session{
		gen:   gen,
		saver: saver,
		log:   logging.OrNop(log).Named("chat"),
		now:   time.Now,
		chat:  c,
	}
}

// SetReasoning toggles the reasoning-then-response prompt suffix.
func (s *Session) SetReasoning(on bool) {
	s.mu.Lock()
	s.reasoning = on
	s.mu.Unlock()
}

// SetCategory changes the category used in prompts and on save.
func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	s.chat.Category = normalizeCategory(category)
	s.mu.Unlock()
}

// Chat returns a snapshot of the conversation.
func (s *Session) Chat() Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.chat
	c.Messages = slices.Clone(s.chat.Messages)
	return c
}

// Send appends text and the assistant's reply to the conversation and
// returns the reply. A failed completion still appends an error-tagged reply
// and returns it alongside the error. If ctx is cancelled while waiting for
// the model the conversation is left untouched.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := ""
	if s.chat.Summary != nil {
		summary = *s.chat.Summary
	}
	prompt := BuildContext(s.chat.Messages, text, ContextOptions{
		Category:  s.chat.Category,
		Summary:   summary,
		Reasoning: s.reasoning,
	})

	user := Message{Text: text, IsUserMessage: true, Timestamp: s.stamp(s.chat.Messages)}
	s.log.Debug("sending chat message", zap.Int("history", len(s.chat.Messages)), zap.Bool("reasoning", s.reasoning))

	completion, err := s.gen.Generate(ctx, prompt)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Message{}, ctxErr
	}

	reply := Message{IsUserMessage: false}
	if err != nil {
		reply.Text = ErrorMessage(err)
	} else {
		reply.Text = strings.TrimSpace(completion)
	}
	reply.Timestamp = s.stamp([]Message{user})
	s.chat.Messages = append(s.chat.Messages, user, reply)

	if err != nil {
		return reply, err
	}
	return reply, s.save(ctx)
}

// Record appends an exchange that did not go through the model, such as a
// device command run from the conversation, and saves the chat.
func (s *Session) Record(ctx context.Context, userText, replyText string) (Message, error) {
	if strings.TrimSpace(userText) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := Message{Text: userText, IsUserMessage: true, Timestamp: s.stamp(s.chat.Messages)}
	reply := Message{Text: replyText, Timestamp: s.stamp([]Message{user})}
	s.chat.Messages = append(s.chat.Messages, user, reply)
	return reply, s.save(ctx)
}

// Summarize asks the model for a summary of the conversation, stores it on
// the chat, and returns it.
func (s *Session) Summarize(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chat.Messages) == 0 {
		return "", ErrEmptyChat
	}
	completion, err := s.gen.Generate(ctx, SummaryPrompt(s.chat.Messages))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := strings.TrimSpace(completion)
	s.chat.Summary = &summary
	return summary, s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	err := s.saver.SaveChat(ctx, s.chat)
	if errors.Is(err, ErrWriteSkipped) {
		s.log.Warn("chat save skipped", zap.String("id", s.chat.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	return nil
}

// stamp returns the current time in milliseconds, bumped past the last
// timestamp in prior so messages keep distinct identities.
func (s *Session) stamp(prior []Message) int64 {
	ts := s.now().UnixMilli()
	if n := len(prior); n > 0 && ts <= prior[n-1].Timestamp {
		ts = prior[n-1].Timestamp + 1
	}
	return ts
}
