// Package ai builds chat providers for the knowledge service.
//
// Two provider kinds exist:
//   - openai: any OpenAI-compatible chat completion API (OpenAI, Perplexity),
//     driven through the official openai-go client.
//   - http: a configuration-driven JSON provider whose request and response
//     shape is controlled by the model's APIFormat (Anthropic, Ollama, custom).
package ai

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// Factory creates providers that share one HTTP client.
type Factory struct {
	httpClient *http.Client
	getenv     func(string) string
}

// NewFactory creates a provider factory. A nil client gets the default timeout.
func NewFactory(client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &Factory{httpClient: client, getenv: os.Getenv}
}

// ForModel returns the provider for model, or an error wrapping
// domain.ErrProviderUnavailable when its API key is missing.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.ChatProvider, error) {
	apiKey := ""
	if model.RequiresKey() {
		apiKey = strings.TrimSpace(f.getenv(model.AuthEnvVar))
		if apiKey == "" {
			return nil, fmt.Errorf("%w: %s is not set", domain.ErrProviderUnavailable, model.AuthEnvVar)
		}
	}

	switch kind := inferProviderKind(model); kind {
	case domain.ProviderKindOpenAI:
		return newOpenAIProvider(model, apiKey, f.httpClient), nil
	case domain.ProviderKindHTTP:
		return newHTTPProvider(model, apiKey, f.httpClient), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider kind %q", domain.ErrProviderUnavailable, kind)
	}
}

func inferProviderKind(model domain.ModelDefinition) domain.ProviderKind {
	if model.Kind != "" {
		return model.Kind
	}
	switch {
	case strings.Contains(model.Endpoint, "anthropic.com"),
		strings.Contains(model.Endpoint, "11434"),
		model.APIFormat.ResponseJSONPath != "":
		return domain.ProviderKindHTTP
	default:
		return domain.ProviderKindOpenAI
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
