// Package classifier turns a free-text command into an intent by asking a
// remote Gemini model for structured JSON. Failure of any kind yields nil;
// callers fall back to local extraction.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/devicepilot/internal/intent"
	"go.uber.org/zap"
)

// Defaults for Config fields left empty.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 30 * time.Second
)

const maxResponseBytes = 1 << 20

// Config selects the endpoint and credentials.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Classifier calls the generateContent endpoint. It is safe for concurrent
// use.
type Classifier struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

// New creates a Classifier.
func New(cfg Config, log *zap.Logger) *Classifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{cfg: cfg, client: client, log: log}
}

// Available reports whether an API key is configured.
func (c *Classifier) Available() bool {
	return c != nil && strings.TrimSpace(c.cfg.APIKey) != ""
}

// Classify asks the model for the intent behind utterance. It returns nil
// on transport errors, non-2xx status, empty candidates, or unparseable
// output. Results are not guaranteed repeatable.
func (c *Classifier) Classify(ctx context.Context, utterance string) *intent.Intent {
	if c == nil {
		return nil
	}
	if !c.Available() {
		c.log.Debug("classifier unavailable: no api key")
		return nil
	}
	text, err := c.generate(ctx, BuildPrompt(utterance))
	if err != nil {
		c.log.Info("classifier request failed", zap.Error(err))
		return nil
	}
	in, err := ParseCompletion(text)
	if err != nil {
		c.log.Info("classifier output unparseable", zap.Error(err), zap.String("completion", text))
		return nil
	}
	c.log.Debug("classified", zap.String("kind", string(in.Kind)), zap.Any("parameters", in.Parameters))
	return &in
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// errNoCandidate means the model returned no text.
var errNoCandidate = errors.New("no candidate in response")

func (c *Classifier) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))
}

func (c *Classifier) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			TopK:            1,
			TopP:            0.95,
			MaxOutputTokens: 1000,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post generateContent: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errNoCandidate
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// ParseCompletion decodes {"command_type": ..., "parameters": {...}} from
// model output, using the outermost brace span when the JSON is wrapped in
// prose or code fences. Non-string parameter values are stringified.
func ParseCompletion(text string) (intent.Intent, error) {
	span := jsonSpan.FindString(text)
	if span == "" {
		span = text
	}
	var raw struct {
		CommandType *string        `json:"command_type"`
		Parameters  map[string]any `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return intent.Intent{}, fmt.Errorf("decode command: %w", err)
	}
	if raw.CommandType == nil {
		return intent.Intent{}, errors.New("decode command: missing command_type")
	}
	params := make(map[string]string, len(raw.Parameters))
	for k, v := range raw.Parameters {
		params[k] = stringify(v)
	}
	return intent.New(intent.ParseKind(*raw.CommandType), params), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
