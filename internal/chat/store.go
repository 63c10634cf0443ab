package chat

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mj1618/devicepilot/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// writeWait is how long a writer waits for an in-progress write before
// giving up.
const writeWait = 100 * time.Millisecond

// Store persists chats in SQLite.
//
// Writes share a single in-process flag. A writer that finds the flag set
// waits writeWait once and then skips with ErrWriteSkipped. This is not a
// queue: two writers racing for the flag can both skip.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	writing   atomic.Bool
	writeWait time.Duration
	now       func() time.Time
}

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{
		db:        db,
		log:       logging.OrNop(log).Named("chatstore"),
		writeWait: writeWait,
		now:       time.Now,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			applied_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, rest, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(prefix, "%d", &version); err != nil || version <= current {
			continue
		}
		description := strings.TrimSuffix(rest, ".sql")

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			version, description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
		s.log.Debug("applied migration", zap.Int("version", version), zap.String("description", description))
	}
	return nil
}

// beginWrite claims the write flag. The caller must call endWrite when it
// returns true.
func (s *Store) beginWrite(ctx context.Context) bool {
	if s.writing.CompareAndSwap(false, true) {
		return true
	}
	s.log.Warn("another write operation is in progress, waiting")

	t := time.NewTimer(s.writeWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	}

	if s.writing.CompareAndSwap(false, true) {
		return true
	}
	s.log.Warn("still writing, skipping")
	return false
}

func (s *Store) endWrite() { s.writing.Store(false) }

// SaveChat inserts or replaces c and its messages. A missing ID is filled
// with a new UUID; Title, Category, and timestamps are filled in likewise.
func (s *Store) SaveChat(ctx context.Context, c *Chat) error {
	if !s.beginWrite(ctx) {
		return ErrWriteSkipped
	}
	defer s.endWrite()

	now := s.now().UnixMilli()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Title == "" {
		c.Title = TitleFor(c.Messages)
	}
	if c.Timestamp == 0 {
		c.Timestamp = now
	}
	c.Category = normalizeCategory(c.Category)
	c.LastUpdated = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chats (id, title, summary, category, message_count, timestamp, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title         = excluded.title,
			summary       = excluded.summary,
			category      = excluded.category,
			message_count = excluded.message_count,
			last_updated  = excluded.last_updated
	`, c.ID, c.Title, nullString(c.Summary), c.Category, len(c.Messages), c.Timestamp, c.LastUpdated)
	if err != nil {
		return fmt.Errorf("save chat %s: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", c.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for i, m := range c.Messages {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (id, chat_id, seq, text, is_user_message, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.NewString(), c.ID, i, m.Text, m.IsUserMessage, m.Timestamp,
		); err != nil {
			return fmt.Errorf("save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.log.Debug("saved chat", zap.String("id", c.ID), zap.Int("messages", len(c.Messages)))
	return nil
}

// LoadChat returns the chat with its messages in order.
func (s *Store) LoadChat(ctx context.Context, id string) (*Chat, error) {
	c := &Chat{ID: id}
	var summary sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT title, summary, category, timestamp, last_updated FROM chats WHERE id = ?", id,
	).Scan(&c.Title, &summary, &c.Category, &c.Timestamp, &c.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load chat %s: %w", id, err)
	}
	if summary.Valid {
		c.Summary = &summary.String
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT text, is_user_message, timestamp FROM messages WHERE chat_id = ? ORDER BY seq", id)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	c.Messages = []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Text, &m.IsUserMessage, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		c.Messages = append(c.Messages, m)
	}
	return c, rows.Err()
}

// ListChats returns chats newest first. An empty category lists all.
func (s *Store) ListChats(ctx context.Context, category string) ([]Info, error) {
	q := "SELECT id, title, category, message_count, summary IS NOT NULL, timestamp, last_updated FROM chats"
	var args []any
	if category != "" {
		q += " WHERE category = ?"
		args = append(args, category)
	}
	q += " ORDER BY last_updated DESC, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var i Info
		if err := rows.Scan(&i.ID, &i.Title, &i.Category, &i.MessageCount, &i.HasSummary, &i.Timestamp, &i.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// DeleteChat removes a chat and its messages.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	if !s.beginWrite(ctx) {
		return ErrWriteSkipped
	}
	defer s.endWrite()

	res, err := s.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete chat %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	s.log.Debug("deleted chat", zap.String("id", id))
	return nil
}

// UpdateSummary replaces the stored summary of a chat.
func (s *Store) UpdateSummary(ctx context.Context, id, summary string) error {
	if !s.beginWrite(ctx) {
		return ErrWriteSkipped
	}
	defer s.endWrite()

	res, err := s.db.ExecContext(ctx,
		"UPDATE chats SET summary = ?, last_updated = ? WHERE id = ?",
		summary, s.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

// SearchMessages returns messages containing any term of query, oldest
// first. An empty category searches every chat.
func (s *Store) SearchMessages(ctx context.Context, query, category string) ([]SearchHit, error) {
	q := `SELECT m.chat_id, c.category, m.text, m.is_user_message, m.timestamp
		FROM messages m JOIN chats c ON c.id = m.chat_id`
	var args []any
	if category != "" {
		q += " WHERE c.category = ?"
		args = append(args, category)
	}
	q += " ORDER BY m.timestamp, m.chat_id, m.seq"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ChatID, &h.Category, &h.Message.Text, &h.Message.IsUserMessage, &h.Message.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if MatchesQuery(h.Message.Text, query) {
			hits = append(hits, h)
		}
	}
	return hits, rows.Err()
}

// Categories returns the distinct non-blank categories, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM chats WHERE TRIM(category) != '' ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
