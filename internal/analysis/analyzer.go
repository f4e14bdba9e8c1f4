// Package analysis provides the keyword/sentiment/urgency text classifier
// used by every triage agent. It is deliberately simple: case-insensitive
// substring matching against fixed tables, no I/O, fully deterministic, and
// cheap enough to run per complaint per agent without caching.
package analysis

import "strings"

// Sentiment is the coarse tone of a complaint text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Urgency is the detected time pressure of a complaint text. The analyzer
// never emits UrgencyLow: absence of urgency signal still defaults to medium,
// a deliberate conservative bias.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Keyword category tags emitted by Analyze.
const (
	CategoryVehicle = "vehicle"
	CategoryBattery = "battery"
	CategoryPayment = "payment"
	CategoryUrgent  = "urgent"
)

// categoryPatterns maps each category tag to the substrings that trigger it.
// A category fires when any of its patterns appears anywhere in the text;
// multiple categories may fire simultaneously. The table is ordered so the
// emitted keyword list is deterministic.
var categoryPatterns = []struct {
	category string
	patterns []string
}{
	{CategoryVehicle, []string{"scooter", "bike", "vehicle", "motor", "wheel", "brake"}},
	{CategoryBattery, []string{"battery", "charge", "power", "swap", "station"}},
	{CategoryPayment, []string{"payment", "billing", "charge", "refund", "transaction", "money"}},
	{CategoryUrgent, []string{"urgent", "emergency", "critical", "immediately", "asap"}},
}

var negativeWords = []string{"bad", "terrible", "awful", "broken", "failed", "angry", "frustrated"}

var positiveWords = []string{"good", "great", "excellent", "satisfied", "happy"}

// urgentWords drive the urgency signal. Note it is a wider set than the
// "urgent" keyword category: stuck/stranded riders are urgent even when they
// don't say so.
var urgentWords = []string{"urgent", "emergency", "critical", "immediately", "stuck", "stranded"}

// Result is the output of one Analyze call.
type Result struct {
	Keywords  []string  `json:"keywords"`
	Sentiment Sentiment `json:"sentiment"`
	Urgency   Urgency   `json:"urgency"`
}

// HasKeyword reports whether the given category tag fired.
func (r Result) HasKeyword(category string) bool {
	for _, k := range r.Keywords {
		if k == category {
			return true
		}
	}
	return false
}

// Analyze classifies a free-text complaint description. It is a pure
// function: identical input always yields an identical Result.
func Analyze(text string) Result {
	lower := strings.ToLower(text)

	var keywords []string
	for _, entry := range categoryPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				keywords = append(keywords, entry.category)
				break
			}
		}
	}

	return Result{
		Keywords:  keywords,
		Sentiment: detectSentiment(lower),
		Urgency:   detectUrgency(lower),
	}
}

// detectSentiment counts negative vs positive word occurrences. Ties favor
// neutral.
func detectSentiment(lower string) Sentiment {
	var negative, positive int
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	switch {
	case negative > positive:
		return SentimentNegative
	case positive > negative:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

func detectUrgency(lower string) Urgency {
	for _, w := range urgentWords {
		if strings.Contains(lower, w) {
			return UrgencyHigh
		}
	}
	return UrgencyMedium
}
