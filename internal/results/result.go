// Package results holds ranked search results and derives the visible page.
package results

import "strings"

// Sentiment is the sentiment label the backend attaches to a document.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	// SentimentUnknown covers missing and unrecognised labels.
	SentimentUnknown Sentiment = "unknown"
)

// ParseSentiment maps a backend label to a Sentiment. It never fails.
func ParseSentiment(label string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	case "neutral":
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

// Label returns the capitalised display label ("Positive", "Unknown", ...).
func (s Sentiment) Label() string {
	if s == "" {
		s = SentimentUnknown
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// SearchResult is a single ranked document. Date is set by boolean search,
// Score by TF-IDF search; either may be absent.
type SearchResult struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	URL       string    `json:"url"`
	Sentiment Sentiment `json:"sentiment"`
	Date      *string   `json:"date,omitempty"`
	Score     *float64  `json:"score,omitempty"`
}
