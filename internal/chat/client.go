package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mj1618/devicepilot/internal/logging"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNoAPIKey is returned when the chat client has no credentials.
	ErrNoAPIKey = errors.New("gemini API key is not configured")
	// ErrNoResponse is returned when the model answers with no text.
	ErrNoResponse = errors.New("empty completion")
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiClient generates chat completions with the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewGeminiClient builds a client. It fails with ErrNoAPIKey when the key is
// blank.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     logging.OrNop(log).Named("chat"),
	}, nil
}

// Generate implements Generator.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 800,
	})
	if err != nil {
		g.log.Info("completion failed", zap.String("model", g.model), zap.Error(err))
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", ErrNoResponse
	}
	text := resp.Text()
	if text == "" {
		return "", ErrNoResponse
	}
	return text, nil
}

// ErrorPrefix marks assistant messages that report a failure.
const ErrorPrefix = "🚫 "

// ErrorMessage maps a Generate failure to the user-facing message appended
// to the conversation.
func ErrorMessage(err error) string {
	return ErrorPrefix + describe(err)
}

func describe(err error) string {
	if errors.Is(err, ErrNoResponse) {
		return "No response from AI. Please try again."
	}
	if errors.Is(err, ErrNoAPIKey) {
		return "Invalid API key. Please check your credentials."
	}
	if code, msg, ok := httpStatus(err); ok {
		switch code {
		case http.StatusNotFound:
			return "Model not found. Please check API configuration."
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Invalid API key. Please check your credentials."
		case http.StatusTooManyRequests:
			return "Rate limit exceeded. Please try again later."
		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return "Server error. Please try again later."
		default:
			return fmt.Sprintf("Network error (%d): %s", code, msg)
		}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "No internet connection. Please check your network."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	if err == nil || err.Error() == "" {
		return "Error: Unknown error occurred"
	}
	return "Error: " + err.Error()
}

func httpStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
