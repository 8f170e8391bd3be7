// Package gemini calls the Google Gemini generateContent API to turn a
// free-text food description into a structured nutrition estimate.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mbodji/fueltrack/internal/domain/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	model          = "gemini-2.5-flash-preview-09-2025"

	// maxRetries transport-level retries after the first attempt; the delay
	// before retry n is 2^(n-1) seconds: 1s, 2s, 4s, 8s, 16s.
	maxRetries = 5
)

// ErrProviderUnavailable is returned once the retry budget is exhausted.
var ErrProviderUnavailable = errors.New("estimation provider unavailable")

// ErrMalformedResponse is returned when the provider answered but the payload
// is not the required nutrition schema. Not retried: the provider is
// deterministic enough that resending the same input will not help.
var ErrMalformedResponse = errors.New("malformed provider response")

const systemPrompt = `You are a nutrition expert. Convert the user's food description into a JSON object.
Format: {
  "foodName": string,
  "calories": number,
  "protein": number,
  "carbs": number,
  "fat": number,
  "fiber": number,
  "sugar": number,
  "sodium": number
}.
Be as accurate as possible. Only return valid JSON.`

// Client defines the interface for text-to-nutrition estimation.
type Client interface {
	Estimate(ctx context.Context, apiKey, text string) (models.FoodEstimate, error)
}

type geminiClient struct {
	httpClient *resty.Client
	baseURL    string
	sleep      func(time.Duration)
}

// NewClient creates a configured Gemini client.
func NewClient() Client {
	client := resty.New().
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	return &geminiClient{
		httpClient: client,
		baseURL:    defaultBaseURL,
		sleep:      time.Sleep,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// estimatePayload is the strict schema the system prompt demands. Numeric
// fields tolerate strings and nulls, coercing anything unusable to zero.
type estimatePayload struct {
	FoodName string      `json:"foodName"`
	Calories looseNumber `json:"calories"`
	Protein  looseNumber `json:"protein"`
	Carbs    looseNumber `json:"carbs"`
	Fat      looseNumber `json:"fat"`
	Fiber    looseNumber `json:"fiber"`
	Sugar    looseNumber `json:"sugar"`
	Sodium   looseNumber `json:"sodium"`
}

// looseNumber accepts a JSON number, a numeric string, or null. Anything else
// decodes to zero rather than failing the whole payload.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseNumber(v)
	return nil
}

// Estimate sends the food text to Gemini with the schema-fixing system
// instruction, retrying transport failures on an exponential backoff
// schedule. A response whose payload is not the nutrition schema fails fast
// with ErrMalformedResponse.
func (c *geminiClient) Estimate(ctx context.Context, apiKey, text string) (models.FoodEstimate, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		estimate, err := c.generate(ctx, apiKey, text)
		if err == nil {
			return estimate, nil
		}
		if errors.Is(err, ErrMalformedResponse) {
			return models.FoodEstimate{}, err
		}
		lastErr = err
	}

	return models.FoodEstimate{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

func (c *geminiClient) generate(ctx context.Context, apiKey, text string) (models.FoodEstimate, error) {
	reqBody := generateRequest{
		Contents:          []content{{Parts: []part{{Text: text}}}},
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		GenerationConfig:  &generationConfig{ResponseMimeType: "application/json"},
	}

	var respBody generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model))

	if err != nil {
		return models.FoodEstimate{}, fmt.Errorf("gemini api call: %w", err)
	}
	if resp.IsError() {
		return models.FoodEstimate{}, fmt.Errorf("gemini api error: status %d", resp.StatusCode())
	}
	if len(respBody.Candidates) == 0 || len(respBody.Candidates[0].Content.Parts) == 0 {
		return models.FoodEstimate{}, errors.New("empty response from gemini")
	}

	raw := stripCodeFences(respBody.Candidates[0].Content.Parts[0].Text)

	var payload estimatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.FoodEstimate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.FoodName == "" && payload.Calories == 0 && payload.Protein == 0 && payload.Carbs == 0 && payload.Fat == 0 {
		return models.FoodEstimate{}, fmt.Errorf("%w: no usable fields", ErrMalformedResponse)
	}

	vector := models.NutritionVector{
		Calories: float64(payload.Calories),
		Protein:  float64(payload.Protein),
		Carbs:    float64(payload.Carbs),
		Fat:      float64(payload.Fat),
		Fiber:    float64(payload.Fiber),
		Sugar:    float64(payload.Sugar),
		Sodium:   float64(payload.Sodium),
	}

	return models.FoodEstimate{
		FoodName:  payload.FoodName,
		Nutrition: vector.Clamp(),
	}, nil
}

// Gemini occasionally wraps the JSON payload in a markdown code block even
// when asked for application/json.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
