package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/pkg/version"
)

// Mode selects the backend ranking algorithm.
type Mode string

const (
	// ModeBoolean is exact/logical keyword matching. Results carry a date.
	ModeBoolean Mode = "boolean"
	// ModeTFIDF is relevance-ranked search. Results carry a score.
	ModeTFIDF Mode = "tfidf"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeBoolean, ModeTFIDF}

// ParseMode parses a mode name case-insensitively. "tf-idf" is accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return ModeBoolean, nil
	case "tfidf", "tf-idf":
		return ModeTFIDF, nil
	default:
		return "", fmt.Errorf("unknown search mode %q (use boolean or tfidf)", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Title returns the heading used above result lists ("Boolean", "Tfidf").
func (m Mode) Title() string {
	s := string(m)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Next returns the other mode.
func (m Mode) Next() Mode {
	if m == ModeBoolean {
		return ModeTFIDF
	}
	return ModeBoolean
}

// path returns the endpoint for the mode.
func (m Mode) path() string {
	return "/search/" + string(m)
}

// Endpoint paths of the backend HTTP contract.
const (
	PathGeneric           = "/search"
	PathProbe             = "/search/test"
	DefaultExpansionPath  = "/search/expansions"
	DefaultBaseURL        = "http://localhost:8080"
	maxResponseBytes      = 10 << 20
	maxErrorExcerptLength = 512
)

// Config configures the HTTP gateway.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:8080.
	BaseURL string

	// ExpansionPath is the suggestion endpoint (default: /search/expansions).
	ExpansionPath string

	// Timeout bounds each request. Zero means no deadline beyond the caller's context.
	Timeout time.Duration

	// Retry is the transport retry policy. MaxRetries 0 disables retrying.
	Retry ferrors.RetryConfig

	// CircuitBreaker enables failing fast after repeated network or 5xx failures.
	CircuitBreaker bool

	// UserAgent is sent with every request.
	UserAgent string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// DefaultConfig returns the gateway defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		ExpansionPath: DefaultExpansionPath,
		Retry:         ferrors.DefaultRetryConfig(),
		UserAgent:     version.UserAgent(),
	}
}

// GenericOptions are the optional parameters of the generic /search endpoint.
// Zero values are omitted from the request.
type GenericOptions struct {
	Year  string
	Page  int
	Limit int
}

// rawResult mirrors the wire shape of a result. Pointers distinguish absent
// fields from empty ones.
type rawResult struct {
	Title     *string         `json:"title"`
	Summary   *string         `json:"summary"`
	URL       *string         `json:"url"`
	Sentiment json.RawMessage `json:"sentiment"`
	Date      *string         `json:"date"`
	Score     *float64        `json:"score"`
}

type probeRequest struct {
	Field string `json:"field"`
}
