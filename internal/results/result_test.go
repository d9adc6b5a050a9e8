package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		in   string
		want Sentiment
	}{
		{"positive", SentimentPositive},
		{"Negative", SentimentNegative},
		{" NEUTRAL ", SentimentNeutral},
		{"", SentimentUnknown},
		{"mixed", SentimentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSentiment(tt.in))
		})
	}
}

func TestSentiment_Label(t *testing.T) {
	assert.Equal(t, "Positive", SentimentPositive.Label())
	assert.Equal(t, "Unknown", SentimentUnknown.Label())
	assert.Equal(t, "Unknown", Sentiment("").Label())
}
