package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAI generates text with the chat completions API
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a chat completions generator. Extra options are passed to
// the SDK client (base URL, retries, HTTP client).
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{client: openai.NewClient(opts...), model: model}
}

func (o *OpenAI) Name() string { return "openai:" + o.model }

// Generate sends the prompt as a single user message after the system prompt
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
