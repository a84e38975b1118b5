package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

const extractorSystemPrompt = `You convert a free-text description of someone's plans for a day in the Boston area into structured activities.
Respond with ONLY a JSON array, no prose. Each element:
{"description": "what they want to do", "location": "location mention if any, else omit", "time": "explicit time in 24h HH:MM if stated, else omit"}
Keep the activities in the order they are mentioned.`

// ExtractorConfig configures the activity extractor client
type ExtractorConfig struct {
	URL    string
	APIKey string
	Model  string
}

// ExtractorClient turns free text into activity requests via an
// OpenAI-compatible chat-completions endpoint. Extraction itself lives on
// the other side of this boundary.
type ExtractorClient struct {
	cfg     ExtractorConfig
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewExtractorClient creates an extractor client
func NewExtractorClient(cfg ExtractorConfig, opts Options, logger *zap.Logger) *ExtractorClient {
	return &ExtractorClient{
		cfg:     cfg,
		hc:      newHTTPClient(opts),
		breaker: newBreaker("extractor"),
		logger:  logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract converts free-text plans into an unordered list of activity
// requests. Rank records the narrative order of mention. Retries a transient
// failure exactly once.
func (c *ExtractorClient) Extract(ctx context.Context, plans string) ([]models.ActivityRequest, error) {
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: extractorSystemPrompt},
			{Role: "user", Content: plans},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var resp chatResponse
	err := retryOnce(ctx, models.ProviderExtractor, func() error {
		resp = chatResponse{}
		return postJSON(ctx, c.hc, c.breaker, c.cfg.URL, headers, body, &resp)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, &models.ProviderError{Kind: models.ProviderExtractor, Err: fmt.Errorf("empty completion")}
	}

	activities, err := parseActivities(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &models.ProviderError{Kind: models.ProviderExtractor, Err: err}
	}
	c.logger.Debug("extracted activities", zap.Int("count", len(activities)))
	return activities, nil
}

// parseActivities decodes the model's JSON array, tolerating a markdown
// code fence around it
func parseActivities(content string) ([]models.ActivityRequest, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var activities []models.ActivityRequest
	if err := json.Unmarshal([]byte(content), &activities); err != nil {
		return nil, fmt.Errorf("malformed extraction payload: %w", err)
	}
	for i := range activities {
		activities[i].Rank = i
	}
	return activities, nil
}
