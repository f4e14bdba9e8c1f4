package analysis_test

import (
	"reflect"
	"testing"

	"github.com/swapdesk/swapdesk/internal/analysis"
)

func TestAnalyzeIsPure(t *testing.T) {
	text := "The battery swap station is broken and I was charged twice, this is urgent"
	first := analysis.Analyze(text)
	second := analysis.Analyze(text)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Analyze is not deterministic: %+v vs %+v", first, second)
	}
}

func TestAnalyzeKeywordCategories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single battery category",
			text: "The battery drains too fast",
			want: []string{analysis.CategoryBattery},
		},
		{
			name: "multiple categories fire simultaneously",
			text: "My scooter died at the swap station and the payment failed",
			want: []string{analysis.CategoryVehicle, analysis.CategoryBattery, analysis.CategoryPayment},
		},
		{
			name: "charge matches both battery and payment",
			text: "I was charged incorrectly",
			want: []string{analysis.CategoryBattery, analysis.CategoryPayment},
		},
		{
			name: "case insensitive",
			text: "URGENT: the BRAKE is loose",
			want: []string{analysis.CategoryVehicle, analysis.CategoryUrgent},
		},
		{
			name: "no categories",
			text: "everything is fine",
			want: nil,
		},
		{
			name: "empty text yields defaults",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.Analyze(tt.text)
			if !reflect.DeepEqual(got.Keywords, tt.want) {
				t.Errorf("Analyze(%q).Keywords = %v, want %v", tt.text, got.Keywords, tt.want)
			}
		})
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want analysis.Sentiment
	}{
		{"negative outweighs", "terrible broken scooter, really bad", analysis.SentimentNegative},
		{"positive outweighs", "great service, very satisfied and happy", analysis.SentimentPositive},
		{"tie favors neutral", "the good ride ended with a broken battery", analysis.SentimentNeutral},
		{"no signal is neutral", "the ride ended", analysis.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analysis.Analyze(tt.text).Sentiment; got != tt.want {
				t.Errorf("Analyze(%q).Sentiment = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnalyzeUrgency(t *testing.T) {
	if got := analysis.Analyze("the swap door is stuck").Urgency; got != analysis.UrgencyHigh {
		t.Errorf("stuck should be high urgency, got %s", got)
	}
	if got := analysis.Analyze("I am stranded downtown").Urgency; got != analysis.UrgencyHigh {
		t.Errorf("stranded should be high urgency, got %s", got)
	}
	// Absence of urgency signal defaults to medium, never low.
	if got := analysis.Analyze("minor cosmetic scratch").Urgency; got != analysis.UrgencyMedium {
		t.Errorf("no signal should default to medium, got %s", got)
	}
	if got := analysis.Analyze("").Urgency; got != analysis.UrgencyMedium {
		t.Errorf("empty text should default to medium, got %s", got)
	}
}

func TestResultHasKeyword(t *testing.T) {
	r := analysis.Analyze("battery problem at the station")
	if !r.HasKeyword(analysis.CategoryBattery) {
		t.Error("expected battery keyword to be present")
	}
	if r.HasKeyword(analysis.CategoryPayment) {
		t.Error("did not expect payment keyword")
	}
}
