package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type recordingSaver struct {
	saved []Chat
	err   error
}

func (r *recordingSaver) SaveChat(_ context.Context, c *Chat) error {
	r.saved = append(r.saved, *c)
	return r.err
}

func fixedSession(c *Chat, gen Generator, saver Saver) *Session {
	s := NewSession(c, gen, saver, nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSession_Send(t *testing.T) {
	gen := &fakeGenerator{reply: "  Hi! How can I help?  "}
	saver := &recordingSaver{}
	s := fixedSession(nil, gen, saver)

	reply, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi! How can I help?", reply.Text)
	assert.False(t, reply.IsUserMessage)

	chat := s.Chat()
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, Message{Text: "hello", IsUserMessage: true, Timestamp: 1700000000000}, chat.Messages[0])
	assert.Equal(t, int64(1700000000001), chat.Messages[1].Timestamp, "reply gets a distinct timestamp")
	assert.Equal(t, "\nUser: hello\n\nAssistant: ", gen.lastPrompt())
	require.Len(t, saver.saved, 1)
	assert.Len(t, saver.saved[0].Messages, 2)
}

func TestSession_SendUsesHistoryCategoryAndSummary(t *testing.T) {
	summary := "talked about goa"
	prior := &Chat{
		Category: "travel",
		Summary:  &summary,
		Messages: []Message{{Text: "goa trip", IsUserMessage: true, Timestamp: 10}, {Text: "sounds fun", Timestamp: 11}},
	}
	gen := &fakeGenerator{reply: "ok"}
	s := fixedSession(prior, gen, nil)
	s.SetReasoning(true)

	_, err := s.Send(context.Background(), "budget for goa trip")
	require.NoError(t, err)

	p := gen.lastPrompt()
	assert.Contains(t, p, "Category: travel\n")
	assert.Contains(t, p, "Previous Discussion Summary: talked about goa\n")
	assert.Contains(t, p, "User: goa trip\nAssistant: sounds fun\n")
	assert.Contains(t, p, "User: budget for goa trip\n\nAssistant: Please provide both reasoning")
}

func TestSession_SendFailureAppendsTaggedReply(t *testing.T) {
	gen := &fakeGenerator{err: genai.APIError{Code: 429}}
	saver := &recordingSaver{}
	s := fixedSession(nil, gen, saver)

	reply, err := s.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, "🚫 Rate limit exceeded. Please try again later.", reply.Text)
	assert.Len(t, s.Chat().Messages, 2)
	assert.Empty(t, saver.saved, "failed turns are not persisted")
}

func TestSession_SendEmpty(t *testing.T) {
	s := fixedSession(nil, &fakeGenerator{}, nil)
	_, err := s.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Chat().Messages)
}

func TestSession_CancelledSendLeavesChatUntouched(t *testing.T) {
	gen := &fakeGenerator{reply: "late", block: make(chan struct{})}
	saver := &recordingSaver{}
	s := fixedSession(nil, gen, saver)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "hello")
		done <- err
	}()

	require.Eventually(t, func() bool { return gen.lastPrompt() != "" }, time.Second, time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Chat().Messages)
	assert.Empty(t, saver.saved)
}

func TestSession_SaveSkippedIsNotAnError(t *testing.T) {
	s := fixedSession(nil, &fakeGenerator{reply: "ok"}, &recordingSaver{err: ErrWriteSkipped})
	_, err := s.Send(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestSession_SaveErrorSurfaces(t *testing.T) {
	s := fixedSession(nil, &fakeGenerator{reply: "ok"}, &recordingSaver{err: errors.New("disk full")})
	reply, err := s.Send(context.Background(), "hello")
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, "ok", reply.Text)
}

func TestSession_Summarize(t *testing.T) {
	gen := &fakeGenerator{reply: "Greetings were exchanged."}
	saver := &recordingSaver{}
	s := fixedSession(&Chat{Messages: msgs("hi", "hello")}, gen, saver)

	summary, err := s.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Greetings were exchanged.", summary)
	assert.Equal(t, SummaryPrompt(msgs("hi", "hello")), gen.lastPrompt())

	chat := s.Chat()
	require.NotNil(t, chat.Summary)
	assert.Equal(t, summary, *chat.Summary)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, summary, *saver.saved[0].Summary)
}

func TestSession_SummarizeEmpty(t *testing.T) {
	gen := &fakeGenerator{}
	s := fixedSession(nil, gen, nil)
	_, err := s.Summarize(context.Background())
	assert.ErrorIs(t, err, ErrEmptyChat)
	assert.Empty(t, gen.prompts)
}

func TestSession_SummarizeFailure(t *testing.T) {
	s := fixedSession(&Chat{Messages: msgs("hi")}, &fakeGenerator{err: errors.New("boom")}, nil)
	_, err := s.Summarize(context.Background())
	assert.ErrorContains(t, err, "failed to generate summary")
	assert.Nil(t, s.Chat().Summary)
}

func TestSession_WithStore(t *testing.T) {
	store := openTestStore(t)
	s := NewSession(&Chat{Category: "work"}, &fakeGenerator{reply: "noted"}, store, nil)

	_, err := s.Send(context.Background(), "remind me about the report")
	require.NoError(t, err)

	id := s.Chat().ID
	require.NotEmpty(t, id)
	got, err := store.LoadChat(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "work", got.Category)
	assert.Equal(t, "remind me about the report", got.Title)
	assert.Len(t, got.Messages, 2)
}

func TestSession_Record(t *testing.T) {
	gen := &fakeGenerator{}
	saver := &recordingSaver{}
	s := fixedSession(nil, gen, saver)

	reply, err := s.Record(context.Background(), "open youtube", "Opening youtube")
	require.NoError(t, err)
	assert.Equal(t, "Opening youtube", reply.Text)
	assert.Empty(t, gen.prompts, "recorded turns skip the model")

	chat := s.Chat()
	require.Len(t, chat.Messages, 2)
	assert.True(t, chat.Messages[0].IsUserMessage)
	assert.Less(t, chat.Messages[0].Timestamp, chat.Messages[1].Timestamp)
	assert.Len(t, saver.saved, 1)
}
