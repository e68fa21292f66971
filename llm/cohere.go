package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
)

// Cohere generates text with the Cohere chat API
type Cohere struct {
	client *cohereclient.Client
	model  string
}

// NewCohere creates a Cohere chat generator
func NewCohere(apiKey, model string, opts ...option.RequestOption) *Cohere {
	if model == "" {
		model = "command-r-plus"
	}

	// Long scripts take a while; force HTTP/1.1 to avoid HTTP/2 stream resets
	httpClient := &http.Client{
		Timeout: 3 * time.Minute,
		Transport: &http.Transport{
			ForceAttemptHTTP2: false,
			TLSNextProto:      map[string]func(string, *tls.Conn) http.RoundTripper{},
		},
	}

	opts = append([]option.RequestOption{
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	}, opts...)

	return &Cohere{client: cohereclient.NewClient(opts...), model: model}
}

func (c *Cohere) Name() string { return "cohere:" + c.model }

// Generate sends the prompt as the chat message with the system prompt as preamble
func (c *Cohere) Generate(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	chatReq := &cohere.ChatRequest{
		Message:     req.Prompt,
		Model:       &c.model,
		Temperature: &temperature,
	}
	if req.System != "" {
		preamble := req.System
		chatReq.Preamble = &preamble
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		chatReq.MaxTokens = &maxTokens
	}

	resp, err := c.client.Chat(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}

	return resp.Text, nil
}
