package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redline-eval/redline/pkg/scoring"
)

// EngineEvaluator scores narratives in process.
type EngineEvaluator struct {
	Engine *scoring.Engine
}

// Evaluate implements Evaluator. It never fails.
func (e EngineEvaluator) Evaluate(_ context.Context, narrative string) (*scoring.EvaluationResult, error) {
	return e.Engine.Evaluate(narrative), nil
}

// HTTPEvaluator scores narratives against a remote redlined instance.
type HTTPEvaluator struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPEvaluator creates an evaluator for the server at baseURL.
func NewHTTPEvaluator(baseURL, apiKey string) *HTTPEvaluator {
	return &HTTPEvaluator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Evaluate implements Evaluator.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, narrative string) (*scoring.EvaluationResult, error) {
	body, err := json.Marshal(map[string]string{"narrative": narrative})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.APIKey != "" {
		req.Header.Set("X-API-Key", e.APIKey)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("evaluator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result scoring.EvaluationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding evaluation: %w", err)
	}
	return &result, nil
}
