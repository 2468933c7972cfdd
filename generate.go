package docquiz

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// GenerationClient produces raw model output for a prompt. Implementations
// return whatever text the model emitted; callers run it through
// NormalizeQuestions.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient generates quiz content through a hosted chat completion model.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a generation client with the given API key.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// Generate sends the prompt and returns the raw message content. No retries;
// a bad response is the normalizer's problem.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	VerboseLog("Sending generation request (%d chars)", len(prompt))

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert MCQ quiz generator. Respond with only a JSON array of questions.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate questions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	content := resp.Choices[0].Message.Content
	VerboseLog("Received %d chars of model output", len(content))
	return content, nil
}
