package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// openAIProvider talks to OpenAI-compatible chat completion endpoints.
type openAIProvider struct {
	model  domain.ModelDefinition
	client openai.Client
}

func newOpenAIProvider(model domain.ModelDefinition, apiKey string, httpClient *http.Client) *openAIProvider {
	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(model.Endpoint))
	}
	return &openAIProvider{model: model, client: openai.NewClient(opts...)}
}

func (p *openAIProvider) Name() string {
	return p.model.Name
}

func (p *openAIProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *openAIProvider) Generate(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	prompt, err := renderPromptMessages(p.model, req)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("render prompt: %w", err)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt))
	for _, msg := range prompt {
		switch strings.ToLower(msg.Role) {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model.ModelID),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(p.model.GetMaxTokens())),
		Temperature: openai.Float(p.model.GetTemperature()),
	})
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ports.ChatResponse{}, errors.New("chat completion returned no choices")
	}

	return ports.ChatResponse{
		Text:   strings.TrimSpace(resp.Choices[0].Message.Content),
		Tokens: int(resp.Usage.TotalTokens),
		Model:  resp.Model,
	}, nil
}

var _ ports.ChatProvider = (*openAIProvider)(nil)
