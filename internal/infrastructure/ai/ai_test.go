package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

func factoryWithEnv(env map[string]string) *Factory {
	f := NewFactory(nil)
	f.getenv = func(key string) string { return env[key] }
	return f
}

func TestFactoryMissingKey(t *testing.T) {
	f := factoryWithEnv(nil)

	_, err := f.ForModel(domain.ModelDefinition{Name: "perplexity", AuthEnvVar: "PERPLEXITY_API_KEY"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "PERPLEXITY_API_KEY")
}

func TestFactoryPicksProviderKind(t *testing.T) {
	f := factoryWithEnv(map[string]string{"KEY": "secret"})

	tests := []struct {
		name  string
		model domain.ModelDefinition
		want  interface{}
	}{
		{name: "explicit openai", model: domain.ModelDefinition{Kind: domain.ProviderKindOpenAI, AuthEnvVar: "KEY"}, want: &openAIProvider{}},
		{name: "explicit http", model: domain.ModelDefinition{Kind: domain.ProviderKindHTTP}, want: &httpProvider{}},
		{name: "anthropic endpoint", model: domain.ModelDefinition{Endpoint: "https://api.anthropic.com/v1/messages", AuthEnvVar: "KEY"}, want: &httpProvider{}},
		{name: "default", model: domain.ModelDefinition{Endpoint: "https://api.perplexity.ai"}, want: &openAIProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := f.ForModel(tt.model)
			require.NoError(t, err)
			assert.IsType(t, tt.want, provider)
		})
	}

	_, err := f.ForModel(domain.ModelDefinition{Kind: "grpc"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "sonar",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": " Olá! "}}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
		}`))
	}))
	defer server.Close()

	provider := newOpenAIProvider(domain.ModelDefinition{
		Name:     "perplexity",
		Endpoint: server.URL,
		ModelID:  "sonar",
	}, "secret", server.Client())

	resp, err := provider.Generate(context.Background(), ports.ChatRequest{
		Prompt:        "oi",
		AssistantName: "APEX",
		Context:       []domain.ChatMessage{{Role: "user", Content: "antes"}, {Role: "assistant", Content: "ok"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Olá!", resp.Text)
	assert.Equal(t, 10, resp.Tokens)
	assert.Equal(t, "sonar", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "You are APEX")
	assert.Equal(t, "antes", got.Messages[1].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "oi", got.Messages[3].Content)
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := newOpenAIProvider(domain.ModelDefinition{Endpoint: server.URL, ModelID: "sonar"}, "bad", server.Client())

	_, err := provider.Generate(context.Background(), ports.ChatRequest{Prompt: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestHTTPProviderAnthropicFormat(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "Resposta"}], "usage": {"input_tokens": 4, "output_tokens": 6}}`))
	}))
	defer server.Close()

	provider := newHTTPProvider(domain.ModelDefinition{
		Name:     "claude",
		Endpoint: server.URL,
		ModelID:  "claude-haiku",
		APIFormat: domain.APIFormat{
			AuthHeaderName:    "x-api-key",
			SystemMessageMode: domain.SystemMessageModeSeparate,
			ContentWrapper:    domain.ContentWrapperAnthropic,
			ResponseJSONPath:  domain.AnthropicResponsePath,
			ExtraHeaders:      map[string]string{"anthropic-version": "2023-06-01"},
		},
	}, "secret", server.Client())

	resp, err := provider.Generate(context.Background(), ports.ChatRequest{Prompt: "pergunta"})

	require.NoError(t, err)
	assert.Equal(t, "Resposta", resp.Text)
	assert.Equal(t, 10, resp.Tokens)
	assert.Contains(t, body["system"], "voice assistant")
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.IsType(t, []interface{}{}, first["content"])
}

func TestHTTPProviderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := newHTTPProvider(domain.ModelDefinition{Endpoint: server.URL}, "", server.Client())

	_, err := provider.Generate(context.Background(), ports.ChatRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503: overloaded")
}

func TestResponseText(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"hi"}}],"n":1,"a*b":{"c":"star"}}`)

	got, err := responseText(body, "choices[0].message.content")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	got, err = responseText(body, "a*b.c")
	require.NoError(t, err)
	assert.Equal(t, "star", got)

	_, err = responseText(body, "choices[3].message")
	assert.ErrorContains(t, err, "not found")

	_, err = responseText(body, "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = responseText(body, "n")
	assert.ErrorContains(t, err, "not a string")

	_, err = responseText([]byte(`<html>`), "n")
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestGJSONPath(t *testing.T) {
	assert.Equal(t, "content.0.text", gjsonPath("content[0].text"))
	assert.Equal(t, "choices.0.message.content", gjsonPath("choices[0].message.content"))
	assert.Equal(t, `a\*b.c`, gjsonPath("a*b.c"))
}

func TestUsageTokens(t *testing.T) {
	assert.Equal(t, 9, usageTokens([]byte(`{"usage":{"total_tokens":9,"input_tokens":1}}`)))
	assert.Equal(t, 10, usageTokens([]byte(`{"usage":{"input_tokens":4,"output_tokens":6}}`)))
	assert.Equal(t, 0, usageTokens([]byte(`{}`)))
}

func TestRenderPromptCustomTemplates(t *testing.T) {
	model := domain.ModelDefinition{Prompt: []domain.PromptMessage{
		{Role: "system", Content: "Sou {{.Assistant}}."},
	}}

	messages, err := renderPromptMessages(model, ports.ChatRequest{Prompt: "  qual a capital?  ", AssistantName: "JARVIS"})

	require.NoError(t, err)
	assert.Equal(t, []domain.PromptMessage{
		{Role: "system", Content: "Sou JARVIS."},
		{Role: "user", Content: "qual a capital?"},
	}, messages)

	_, err = renderPromptMessages(domain.ModelDefinition{Prompt: []domain.PromptMessage{{Role: "user", Content: "{{.Broken"}}}, ports.ChatRequest{})
	assert.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient(domain.DefaultHTTPClientTimeout, "")
	require.NoError(t, err)
	assert.Nil(t, client.Transport)

	client, err = NewHTTPClient(domain.DefaultHTTPClientTimeout, "127.0.0.1:9050")
	require.NoError(t, err)
	assert.IsType(t, &http.Transport{}, client.Transport)
}
