package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/redline-eval/redline/pkg/scoring"
)

// ErrNoCredential is returned when a client is built without an API key.
var ErrNoCredential = errors.New("no API credential configured")

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for compatible gateways
	Seed    int
}

// NewOpenAIClient builds a go-openai client from cfg.
func NewOpenAIClient(cfg OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredential
	}
	occ := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		occ.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(occ), nil
}

// OpenAIScorer asks a chat model for the probability that a narrative qualifies.
type OpenAIScorer struct {
	client *openai.Client
	model  string
	seed   int
	system string
}

// NewOpenAIScorer creates a scorer whose system prompt is rendered from rs.
func NewOpenAIScorer(cfg OpenAIConfig, rs *scoring.RuleSet) (*OpenAIScorer, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIScorer{
		client: client,
		model:  model,
		seed:   cfg.Seed,
		system: SystemPrompt(rs),
	}, nil
}

// Score implements Scorer.
func (s *OpenAIScorer) Score(ctx context.Context, narrative string) (float64, error) {
	seed := s.seed
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.system},
			{Role: openai.ChatMessageRoleUser, Content: narrative},
		},
		// A zero temperature is dropped by omitempty; the smallest float keeps it explicit.
		Temperature:    math.SmallestNonzeroFloat32,
		Seed:           &seed,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("chat completion returned no choices")
	}
	return ParseReply(resp.Choices[0].Message.Content)
}

// ParseReply extracts the score from the judge's JSON reply, tolerating a
// surrounding markdown code fence.
func ParseReply(content string) (float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply struct {
		Score     *float64 `json:"score"`
		Rationale string   `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &reply); err != nil {
		return 0, fmt.Errorf("decoding judge reply: %w", err)
	}
	if reply.Score == nil {
		return 0, fmt.Errorf("judge reply has no score")
	}
	return *reply.Score, nil
}
