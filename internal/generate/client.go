package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client sends one prompt to a text-generation provider and returns the raw
// model text.
type Client interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	// Ping checks that the credentials and model are usable.
	Ping(ctx context.Context) error
	Model() string
}

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	DefaultGeminiModel    = "gemini-3-flash-preview"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

// Settings selects a provider and its credentials. It is passed explicitly to
// New instead of being read from ambient state.
type Settings struct {
	Provider string        `json:"provider"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model,omitempty"`
	BaseURL  string        `json:"base_url,omitempty"`
	Timeout  time.Duration `json:"-"`
}

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrInvalidAPIKey = errors.New("invalid or expired api key")
)

// UserMessage returns the Vietnamese message shown to a teacher for a
// generation failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return "Chưa có mã kết nối AI. Cô vui lòng vào mục 'Cài đặt' để nhập API Key nhé!"
	case errors.Is(err, ErrInvalidAPIKey):
		return "Mã kết nối AI (API Key) không đúng hoặc đã hết hạn. Cô vui lòng kiểm tra lại trong mục Cài đặt."
	case IsRetryable(err):
		return "Máy chủ AI đang quá tải. Cô vui lòng thử lại sau ít phút."
	default:
		return "Có lỗi xảy ra khi kết nối với AI. Vui lòng kiểm tra lại kết nối mạng."
	}
}

// New returns the client for s.Provider.
func New(s Settings) (Client, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if s.Timeout <= 0 {
		s.Timeout = 3 * time.Minute
	}
	httpClient := &http.Client{Timeout: s.Timeout}

	switch s.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(s.APIKey, s.Model, s.BaseURL, httpClient), nil
	case ProviderAnthropic:
		return NewAnthropicClient(s.APIKey, s.Model, s.BaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// statusError maps a non-200 provider response to an error.
func statusError(provider string, status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return &RetryableError{StatusCode: status, Message: string(body)}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s api status %d: %w", provider, status, ErrInvalidAPIKey)
	default:
		return fmt.Errorf("%s api status %d: %s", provider, status, truncate(string(body), 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
