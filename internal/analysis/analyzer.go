// Package analysis provides the AI annotation adapter for news articles.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	perrors "crypto-pulse/internal/errors"
	"crypto-pulse/internal/models"
	"crypto-pulse/pkg/utils"
)

// Analyzer annotates article titles with a structured sentiment summary via
// an OpenAI-compatible chat endpoint (a local Ollama instance works through
// its /v1 path).
type Analyzer struct {
	client     *openai.Client
	model      string
	maxRetries int
	logger     zerolog.Logger
}

// NewAnalyzer creates an analyzer. baseURL may be empty for the default
// OpenAI endpoint.
func NewAnalyzer(apiKey, baseURL, model string, maxRetries int, logger zerolog.Logger) *Analyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Analyzer{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.With().Str("component", "analyzer").Logger(),
	}
}

// AnalyzeTitle annotates one article title. It retries transient failures
// with backoff; after the final attempt it returns an AnnotationError, which
// callers treat as "leave the article unprocessed for a later cycle".
func (a *Analyzer) AnalyzeTitle(ctx context.Context, title string, isEconomic bool) (*models.Annotation, error) {
	prompt := buildPrompt(title, isEconomic)

	var annotation *models.Annotation
	retryCfg := utils.DefaultRetryConfig()
	retryCfg.MaxAttempts = a.maxRetries

	err := utils.Retry(ctx, retryCfg, func() error {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			a.logger.Warn().Err(err).Str("title", title).Msg("Annotation attempt failed")
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("no choices in completion response")
		}

		parsed, err := ParseAnnotation(resp.Choices[0].Message.Content)
		if err != nil {
			a.logger.Warn().Err(err).Str("title", title).Msg("Unparseable annotation")
			return fmt.Errorf("%w: %v", perrors.ErrNoAnnotation, err)
		}
		annotation = parsed
		return nil
	})
	if err != nil {
		// A model that answered but never produced usable JSON is absence,
		// not a fault: the article is simply left unannotated.
		if perrors.Is(err, perrors.ErrNoAnnotation) {
			return nil, nil
		}
		return nil, perrors.NewAnnotationError(title, a.maxRetries, err)
	}

	return annotation, nil
}

// ParseAnnotation decodes the model's JSON reply into an annotation,
// applying the documented field defaults and normalizing the sentiment label.
func ParseAnnotation(content string) (*models.Annotation, error) {
	var raw struct {
		Summary           string `json:"summary"`
		Sentiment         string `json:"sentiment"`
		Reasoning         string `json:"reasoning"`
		InvestmentFactors string `json:"investment_factors"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decoding annotation: %w", err)
	}

	annotation := &models.Annotation{
		Summary:           raw.Summary,
		Sentiment:         normalizeSentiment(raw.Sentiment),
		Reasoning:         raw.Reasoning,
		InvestmentFactors: raw.InvestmentFactors,
	}
	if annotation.Summary == "" {
		annotation.Summary = "N/A"
	}
	if annotation.Reasoning == "" {
		annotation.Reasoning = "N/A"
	}
	if annotation.InvestmentFactors == "" {
		annotation.InvestmentFactors = "None"
	}
	return annotation, nil
}

func normalizeSentiment(s string) models.Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return models.SentimentPositive
	case "negative":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func buildPrompt(title string, isEconomic bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Analyze the following news article title and provide a structured JSON response.
The title is: %q

Your response MUST be a single JSON object with the following four keys:
1. "summary": A brief, one-sentence summary of the article's likely content.
2. "sentiment": The overall sentiment. Must be one of: "Positive", "Negative", "Neutral".
3. "reasoning": A short explanation for why you chose that sentiment, based ONLY on the title.
4. "investment_factors": Key factors or entities mentioned that could influence investment decisions (e.g., specific companies, regulations, market trends). List them as a comma-separated string. If none, return "None".

Example response format:
{
    "summary": "The article discusses a significant price increase for Bitcoin, potentially driven by new institutional investments.",
    "sentiment": "Positive",
    "reasoning": "The title mentions a price surge and favorable market conditions, which is bullish for the asset.",
    "investment_factors": "Bitcoin, institutional investment"
}`, title)

	if isEconomic {
		b.WriteString("\n\nIMPORTANT CONTEXT: This title is from a major economic news event. Analyze its potential market-wide significance with higher priority.")
	}

	b.WriteString("\n\nNow, analyze the provided title and generate the JSON object.")
	return b.String()
}
