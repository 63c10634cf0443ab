package chat

import (
	"cmp"
	"slices"
	"sort"
	"strings"
)

const (
	recentWindow   = 2
	relevantTop    = 3
	historyMax     = 5
	reasoningAsk   = "Please provide both reasoning and response, considering the conversation context above:\n🤔 First, explain your thought process and reasoning.\n✨ Then, provide your response."
	summaryPreface = "Please provide a concise summary of the following conversation, highlighting:\n1. Main topics discussed\n2. Key decisions or conclusions\n3. Any important action items\n\nConversation:\n"
)

// ContextOptions shapes the prompt built for a new user message.
type ContextOptions struct {
	Category  string
	Summary   string
	Reasoning bool
}

// BuildContext renders the prompt sent for message given the prior history.
func BuildContext(history []Message, message string, opts ContextOptions) string {
	var b strings.Builder
	if opts.Category != "" && opts.Category != DefaultCategory {
		b.WriteString("Category: " + opts.Category + "\n")
	}
	if opts.Summary != "" {
		b.WriteString("Previous Discussion Summary: " + opts.Summary + "\n")
	}
	b.WriteString("\n")

	if relevant := RelevantHistory(history, message); len(relevant) > 0 {
		b.WriteString("Relevant conversation history:\n")
		for _, m := range relevant {
			b.WriteString(m.Speaker() + ": " + m.Text + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("User: " + message + "\n")
	b.WriteString("\nAssistant: ")
	if opts.Reasoning {
		b.WriteString(reasoningAsk)
	}
	return b.String()
}

// RelevantHistory picks up to five messages: the last two plus the three
// scoring highest against query, deduplicated by timestamp and returned in
// timestamp order.
func RelevantHistory(history []Message, query string) []Message {
	if len(history) == 0 {
		return nil
	}

	type scored struct {
		m     Message
		score float64
	}
	ranked := make([]scored, len(history))
	for i, m := range history {
		ranked[i] = scored{m, relevance(m.Text, query)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var picked []Message
	for _, r := range ranked[:min(relevantTop, len(ranked))] {
		picked = append(picked, r.m)
	}
	picked = append(picked, history[max(0, len(history)-recentWindow):]...)

	seen := make(map[int64]bool, len(picked))
	var out []Message
	for _, m := range picked {
		if seen[m.Timestamp] {
			continue
		}
		seen[m.Timestamp] = true
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Message) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	return out[max(0, len(out)-historyMax):]
}

// relevance is the shared-word count over the combined distinct word count.
func relevance(text, query string) float64 {
	a := wordSet(text)
	b := wordSet(query)
	common := 0
	for w := range a {
		if b[w] {
			common++
		}
	}
	return float64(common) / float64(len(a)+len(b))
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Split(strings.ToLower(s), " ") {
		set[w] = true
	}
	return set
}

// SummaryPrompt asks for a summary of the whole transcript.
func SummaryPrompt(messages []Message) string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = m.Speaker() + ": " + m.Text
	}
	return summaryPreface + strings.Join(lines, "\n") + "\n\nSummary:"
}
