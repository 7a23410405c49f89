package analysis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
)

func TestParseAnnotation_FullResponse(t *testing.T) {
	content := `{
		"summary": "Bitcoin surged on ETF inflows.",
		"sentiment": "Positive",
		"reasoning": "Inflows signal demand.",
		"investment_factors": "Bitcoin, ETF"
	}`

	annotation, err := ParseAnnotation(content)
	if err != nil {
		t.Fatalf("ParseAnnotation failed: %v", err)
	}
	if annotation.Sentiment != models.SentimentPositive {
		t.Errorf("Unexpected sentiment: %s", annotation.Sentiment)
	}
	if annotation.Summary != "Bitcoin surged on ETF inflows." {
		t.Errorf("Unexpected summary: %q", annotation.Summary)
	}
}

func TestParseAnnotation_AppliesDefaults(t *testing.T) {
	annotation, err := ParseAnnotation(`{"sentiment": "Positive"}`)
	if err != nil {
		t.Fatalf("ParseAnnotation failed: %v", err)
	}
	if annotation.Summary != "N/A" {
		t.Errorf("Expected N/A summary default, got %q", annotation.Summary)
	}
	if annotation.Reasoning != "N/A" {
		t.Errorf("Expected N/A reasoning default, got %q", annotation.Reasoning)
	}
	if annotation.InvestmentFactors != "None" {
		t.Errorf("Expected None factors default, got %q", annotation.InvestmentFactors)
	}
}

func TestParseAnnotation_NormalizesSentiment(t *testing.T) {
	cases := map[string]models.Sentiment{
		"positive":  models.SentimentPositive,
		"NEGATIVE":  models.SentimentNegative,
		" Neutral ": models.SentimentNeutral,
		"bullish":   models.SentimentNeutral,
		"":          models.SentimentNeutral,
	}
	for raw, want := range cases {
		annotation, err := ParseAnnotation(fmt.Sprintf(`{"sentiment": %q}`, raw))
		if err != nil {
			t.Fatalf("ParseAnnotation(%q) failed: %v", raw, err)
		}
		if annotation.Sentiment != want {
			t.Errorf("Sentiment %q normalized to %q, want %q", raw, annotation.Sentiment, want)
		}
	}
}

func TestParseAnnotation_RejectsNonJSON(t *testing.T) {
	if _, err := ParseAnnotation("I could not analyze this title."); err == nil {
		t.Error("Expected error for non-JSON content")
	}
}

func TestAnalyzeTitle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "{\"summary\": \"A summary.\", \"sentiment\": \"negative\", \"reasoning\": \"Bearish title.\", \"investment_factors\": \"Bitcoin\"}"
				}
			}]
		}`)
	}))
	defer server.Close()

	analyzer := NewAnalyzer("test-key", server.URL, "test-model", 1, zerolog.Nop())

	annotation, err := analyzer.AnalyzeTitle(context.Background(), "Bitcoin slides on outflows", false)
	if err != nil {
		t.Fatalf("AnalyzeTitle failed: %v", err)
	}
	if annotation.Sentiment != models.SentimentNegative {
		t.Errorf("Unexpected sentiment: %s", annotation.Sentiment)
	}
	if annotation.Summary != "A summary." {
		t.Errorf("Unexpected summary: %q", annotation.Summary)
	}
}

func TestAnalyzeTitle_FailureReturnsAnnotationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	analyzer := NewAnalyzer("test-key", server.URL, "test-model", 1, zerolog.Nop())

	_, err := analyzer.AnalyzeTitle(context.Background(), "Some title", false)
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}
	var annErr *perrors.AnnotationError
	if !perrors.As(err, &annErr) {
		t.Errorf("Expected AnnotationError, got %T", err)
	}
}

func TestAnalyzeTitle_UnusableContentIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"choices": [{
				"message": {"role": "assistant", "content": "I cannot analyze this title."}
			}]
		}`)
	}))
	defer server.Close()

	analyzer := NewAnalyzer("test-key", server.URL, "test-model", 1, zerolog.Nop())

	annotation, err := analyzer.AnalyzeTitle(context.Background(), "Some title", false)
	if err != nil {
		t.Fatalf("Expected absence without error, got %v", err)
	}
	if annotation != nil {
		t.Errorf("Expected nil annotation for unusable content, got %+v", annotation)
	}
}

func TestBuildPrompt_EconomicContext(t *testing.T) {
	plain := buildPrompt("Fed holds rates", false)
	economic := buildPrompt("Fed holds rates", true)

	if strings.Contains(plain, "IMPORTANT CONTEXT") {
		t.Error("Plain prompt must not carry the economic context suffix")
	}
	if !strings.Contains(economic, "IMPORTANT CONTEXT") {
		t.Error("Economic prompt must carry the economic context suffix")
	}
	if !strings.Contains(plain, `"Fed holds rates"`) {
		t.Error("Prompt must embed the quoted title")
	}
}
