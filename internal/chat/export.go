package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// exportFile is the on-disk shape shared with the mobile app's exports.
type exportFile struct {
	Category  string         `json:"category"`
	Timestamp int64          `json:"timestamp"`
	Messages  []Message      `json:"messages"`
	Summary   *string        `json:"summary"`
	Metadata  exportMetadata `json:"metadata"`
}

type exportMetadata struct {
	MessageCount int   `json:"messageCount"`
	LastUpdated  int64 `json:"lastUpdated"`
	ExportDate   int64 `json:"exportDate"`
}

// Export writes c as an export document stamped with now.
func Export(w io.Writer, c *Chat, now time.Time) error {
	messages := c.Messages
	if messages == nil {
		messages = []Message{}
	}
	doc := exportFile{
		Category:  normalizeCategory(c.Category),
		Timestamp: now.UnixMilli(),
		Messages:  messages,
		Summary:   c.Summary,
		Metadata: exportMetadata{
			MessageCount: len(messages),
			LastUpdated:  c.LastUpdated,
			ExportDate:   now.UnixMilli(),
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Import reads an export document. The returned chat has no ID; a missing
// or null summary stays nil.
func Import(r io.Reader) (*Chat, error) {
	var doc exportFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid chat export file: %w", err)
	}
	if doc.Messages == nil {
		return nil, fmt.Errorf("invalid chat export file: no messages")
	}
	updated := doc.Metadata.LastUpdated
	if updated == 0 && len(doc.Messages) > 0 {
		updated = doc.Messages[len(doc.Messages)-1].Timestamp
	}
	return &Chat{
		Title:       TitleFor(doc.Messages),
		Category:    normalizeCategory(doc.Category),
		Summary:     doc.Summary,
		Timestamp:   doc.Timestamp,
		LastUpdated: updated,
		Messages:    doc.Messages,
	}, nil
}

// ExportFileName is chat_<category>_<yyyy-MM-dd_HH-mm>.json.
func ExportFileName(category string, now time.Time) string {
	return fmt.Sprintf("chat_%s_%s.json", normalizeCategory(category), now.Format("2006-01-02_15-04"))
}
