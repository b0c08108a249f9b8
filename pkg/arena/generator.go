package arena

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator writes narratives with a chat model.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIGenerator creates a generator on an existing client.
func NewOpenAIGenerator(client *openai.Client, model string) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, temperature: 0.7}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: GeneratorPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("generator returned an empty narrative")
	}
	return text, nil
}

const generatorSystemPrompt = "You write R&D project narratives for IRS Section 41 credit documentation. " +
	"Reply with the narrative text only, no headings or commentary."

var difficultyBriefs = map[string]string{
	DifficultyEasy:   "a project with clear technical uncertainty and a documented process of experimentation",
	DifficultyMedium: "a project mixing genuine experimentation with some routine engineering work",
	DifficultyHard:   "a borderline project where technical uncertainty is easy to confuse with business risk",
}

// GeneratorPrompt renders the user message for a round. Later rounds carry
// the previous narrative and the critique of its redline.
func GeneratorPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d. Write a narrative describing %s.\n", req.Round, difficultyBriefs[req.Difficulty])
	if req.Topic != "" {
		fmt.Fprintf(&b, "Project: %s\n", req.Topic)
	}
	if req.Previous == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "\nRevise the previous narrative (risk score %d, %s):\n\n%s\n",
		req.Previous.Evaluation.RiskScore, req.Previous.Evaluation.Classification, req.Previous.Narrative)
	if len(req.Critique) > 0 {
		b.WriteString("\nAddress this feedback:\n")
		for _, s := range req.Critique {
			fmt.Fprintf(&b, "- %s: %s\n", s.Title, s.Description)
		}
	}
	return b.String()
}
