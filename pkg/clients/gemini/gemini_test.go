package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func envelope(payload string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{
						map[string]interface{}{"text": payload},
					},
				},
			},
		},
	}
}

const validPayload = `{"foodName":"Grilled Chicken","calories":330,"protein":62,"carbs":0,"fat":7,"fiber":0,"sugar":0,"sodium":140}`

// newTestClient returns a client pointed at the given server that records
// backoff sleeps instead of waiting.
func newTestClient(serverURL string, slept *[]time.Duration) *geminiClient {
	return &geminiClient{
		httpClient: resty.New(),
		baseURL:    serverURL,
		sleep: func(d time.Duration) {
			*slept = append(*slept, d)
		},
	}
}

func TestEstimateSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("api key = %q, want test-key", got)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("request must demand application/json output")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope(validPayload))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	estimate, err := client.Estimate(context.Background(), "test-key", "chicken 200g")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if estimate.FoodName != "Grilled Chicken" {
		t.Fatalf("food name = %q", estimate.FoodName)
	}
	if estimate.Nutrition.Calories != 330 || estimate.Nutrition.Protein != 62 {
		t.Fatalf("unexpected vector: %+v", estimate.Nutrition)
	}
	if len(slept) != 0 {
		t.Fatalf("slept %v on a first-attempt success", slept)
	}
}

func TestEstimateRetrySchedule(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 5 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope(validPayload))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	estimate, err := client.Estimate(context.Background(), "test-key", "chicken 200g")
	if err != nil {
		t.Fatalf("estimate after 5 failures should succeed on the 6th attempt: %v", err)
	}
	if estimate.FoodName != "Grilled Chicken" {
		t.Fatalf("food name = %q", estimate.FoodName)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %d times, want %d: %v", len(slept), len(want), slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("delay %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestEstimateExhaustsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	_, err := client.Estimate(context.Background(), "test-key", "chicken 200g")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("error = %v, want ErrProviderUnavailable", err)
	}
	if attempts != 6 {
		t.Fatalf("attempts = %d, want 6 (1 initial + 5 retries)", attempts)
	}
}

func TestEstimateMalformedPayloadFailsFast(t *testing.T) {
	t.Parallel()

	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope("this is not the schema"))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	_, err := client.Estimate(context.Background(), "test-key", "chicken 200g")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, malformed payloads must not be retried", attempts)
	}
	if len(slept) != 0 {
		t.Fatalf("slept %v on a non-retryable failure", slept)
	}
}

func TestEstimateStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope("```json\n" + validPayload + "\n```"))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	estimate, err := client.Estimate(context.Background(), "test-key", "chicken 200g")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.Nutrition.Calories != 330 {
		t.Fatalf("calories = %v, want 330", estimate.Nutrition.Calories)
	}
}

func TestEstimateCoercesLooseNumbers(t *testing.T) {
	t.Parallel()

	payload := `{"foodName":"Mystery Soup","calories":"250","protein":null,"carbs":"abc","fat":-4,"fiber":3,"sugar":1,"sodium":500}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope(payload))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := newTestClient(srv.URL, &slept)

	estimate, err := client.Estimate(context.Background(), "test-key", "mystery soup")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	v := estimate.Nutrition
	if v.Calories != 250 {
		t.Fatalf("string number not coerced: calories = %v", v.Calories)
	}
	if v.Protein != 0 || v.Carbs != 0 {
		t.Fatalf("null/garbage fields must coerce to 0: %+v", v)
	}
	if v.Fat != 0 {
		t.Fatalf("negative fields must clamp to 0, fat = %v", v.Fat)
	}
	if v.Sodium != 500 {
		t.Fatalf("sodium = %v, want 500", v.Sodium)
	}
}
