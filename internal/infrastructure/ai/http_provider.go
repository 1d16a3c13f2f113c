package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

const maxErrorBody = 512

// httpProvider is a configuration-driven JSON chat provider.
// Request and response shapes come from the model's APIFormat.
type httpProvider struct {
	model      domain.ModelDefinition
	apiKey     string
	httpClient *http.Client
}

func newHTTPProvider(model domain.ModelDefinition, apiKey string, client *http.Client) *httpProvider {
	return &httpProvider{model: model, apiKey: apiKey, httpClient: client}
}

func (p *httpProvider) Name() string {
	return p.model.Name
}

func (p *httpProvider) Model() domain.ModelDefinition {
	return p.model
}

func (p *httpProvider) Generate(ctx context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	messages, err := renderPromptMessages(p.model, req)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("render prompt: %w", err)
	}

	body, err := p.buildRequestBody(messages)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	p.setHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ports.ChatResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorSnippet(raw))
	}

	content, err := responseText(raw, p.model.APIFormat.GetResponseJSONPath())
	if err != nil {
		return ports.ChatResponse{}, fmt.Errorf("read response: %w", err)
	}

	return ports.ChatResponse{
		Text:   strings.TrimSpace(content),
		Tokens: usageTokens(raw),
		Model:  p.model.ModelID,
	}, nil
}

// buildRequestBody constructs the JSON body according to the APIFormat.
func (p *httpProvider) buildRequestBody(messages []domain.PromptMessage) ([]byte, error) {
	format := p.model.APIFormat

	request := map[string]interface{}{
		"model":       p.model.ModelID,
		"max_tokens":  p.model.GetMaxTokens(),
		"temperature": p.model.GetTemperature(),
	}

	if format.IsSystemMessageSeparate() {
		system, chat := splitSystemMessages(messages, format)
		if system != "" {
			request["system"] = system
		}
		request["messages"] = chat
	} else {
		request["messages"] = formatMessages(messages, format)
	}

	return json.Marshal(request)
}

func (p *httpProvider) setHeaders(req *http.Request) {
	format := p.model.APIFormat
	if p.apiKey != "" {
		req.Header.Set(format.GetAuthHeaderName(), format.GetAuthHeaderPrefix()+p.apiKey)
	}
	for key, value := range format.ExtraHeaders {
		req.Header.Set(key, value)
	}
}

// splitSystemMessages moves system prompts into one string for APIs that take
// a top-level "system" field.
func splitSystemMessages(messages []domain.PromptMessage, format domain.APIFormat) (string, []map[string]interface{}) {
	var systemLines []string
	chat := make([]map[string]interface{}, 0, len(messages))

	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chat = append(chat, formatMessage(msg, format))
	}

	return strings.TrimSpace(strings.Join(systemLines, "\n")), chat
}

func formatMessages(messages []domain.PromptMessage, format domain.APIFormat) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		result = append(result, formatMessage(msg, format))
	}
	return result
}

func formatMessage(msg domain.PromptMessage, format domain.APIFormat) map[string]interface{} {
	message := map[string]interface{}{
		"role": strings.ToLower(msg.Role),
	}
	if format.IsContentWrapped() {
		message["content"] = []map[string]string{
			{"type": "text", "text": msg.Content},
		}
	} else {
		message["content"] = msg.Content
	}
	return message
}

func errorSnippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

var _ ports.ChatProvider = (*httpProvider)(nil)
