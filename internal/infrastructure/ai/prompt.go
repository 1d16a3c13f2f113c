package ai

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// templateData is available to prompt templates in config.yaml:
//   - {{.Prompt}}: the user's question
//   - {{.Assistant}}: assistant display name
//   - {{.Date}}: current date (YYYY-MM-DD)
type templateData struct {
	Prompt    string
	Assistant string
	Date      string
}

// renderPromptMessages expands the model's prompt templates and splices the
// conversation context between the system messages and the rest.
// A user message carrying the prompt is appended when the templates lack one.
func renderPromptMessages(model domain.ModelDefinition, req ports.ChatRequest) ([]domain.PromptMessage, error) {
	assistant := req.AssistantName
	if assistant == "" {
		assistant = domain.DefaultAssistantName
	}
	data := templateData{
		Prompt:    strings.TrimSpace(req.Prompt),
		Assistant: assistant,
		Date:      time.Now().Format("2006-01-02"),
	}

	templates := model.Prompt
	if len(templates) == 0 {
		templates = defaultTemplateMessages()
	}

	var system, rest []domain.PromptMessage
	for _, msg := range templates {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered := domain.PromptMessage{Role: msg.Role, Content: strings.TrimSpace(content)}
		if strings.EqualFold(msg.Role, "system") && len(rest) == 0 {
			system = append(system, rendered)
			continue
		}
		rest = append(rest, rendered)
	}

	out := make([]domain.PromptMessage, 0, len(system)+len(req.Context)+len(rest)+1)
	out = append(out, system...)
	for _, msg := range req.Context {
		out = append(out, domain.PromptMessage{Role: msg.Role, Content: msg.Content})
	}
	out = append(out, rest...)

	if !hasUserMessage(rest) {
		out = append(out, domain.PromptMessage{Role: "user", Content: data.Prompt})
	}
	return out, nil
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

func defaultTemplateMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You are {{.Assistant}}, a voice assistant. Today is {{.Date}}.
Answer in the same language as the question, in a few short sentences that read well aloud.`,
		},
		{
			Role:    "user",
			Content: "{{.Prompt}}",
		},
	}
}
