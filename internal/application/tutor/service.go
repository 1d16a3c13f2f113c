package tutor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/pkg/logger"
	"github.com/doeshing/apex/internal/ports"
)

// Reply is the provider's answer to one lesson.
type Reply struct {
	Kind   Kind     `json:"kind"`
	Lesson string   `json:"lesson"`
	Prompt string   `json:"prompt"`
	Text   string   `json:"text"`
	Items  []string `json:"items,omitempty"`
	Tokens int      `json:"tokens"`
	Model  string   `json:"model,omitempty"`
}

// Service sends rendered lessons to a chat provider.
type Service struct {
	Provider      ports.ChatProvider
	Logger        ports.Logger
	AssistantName string
	Timeout       time.Duration
}

// Ask renders the lesson kind/name with params and asks the provider.
func (s *Service) Ask(ctx context.Context, kind Kind, name string, params map[string]string) (Reply, error) {
	lesson, ok := Find(kind, name)
	if !ok {
		return Reply{}, fmt.Errorf("%w: %s %s", ErrUnknownLesson, kind, name)
	}
	prompt, err := lesson.Render(params)
	if err != nil {
		return Reply{}, err
	}
	if s.Provider == nil {
		return Reply{}, domain.ErrProviderUnavailable
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.Provider.Generate(ctx, ports.ChatRequest{
		Prompt:        prompt,
		AssistantName: s.AssistantName,
		Context:       []domain.ChatMessage{{Role: "system", Content: Persona(kind)}},
	})
	if err != nil {
		s.log().Error("lesson failed", err, map[string]interface{}{"kind": string(kind), "lesson": lesson.Name})
		return Reply{}, fmt.Errorf("%s: %w", s.Provider.Name(), err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Reply{}, fmt.Errorf("%s: empty response", s.Provider.Name())
	}
	s.log().Debug("lesson answered", map[string]interface{}{
		"kind":     string(kind),
		"lesson":   lesson.Name,
		"tokens":   resp.Tokens,
		"duration": time.Since(start).String(),
	})

	reply := Reply{Kind: kind, Lesson: lesson.Name, Prompt: prompt, Text: text, Tokens: resp.Tokens, Model: resp.Model}
	if lesson.Items != "" {
		reply.Items = firstLines(text, itemCount(params[lesson.Items], lesson.Defaults[lesson.Items]))
	}
	return reply, nil
}

// Generate asks for code and returns the first fenced block of the answer,
// or the whole answer when it has no fence.
func (s *Service) Generate(ctx context.Context, name string, params map[string]string) (Reply, error) {
	reply, err := s.Ask(ctx, KindCode, name, params)
	if err != nil {
		return Reply{}, err
	}
	reply.Text = ExtractCode(reply.Text)
	return reply, nil
}

// SaveCode writes generated code to path, creating parent directories.
func SaveCode(path, code string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExtractCode returns the body of the first ``` fence in text.
func ExtractCode(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return strings.TrimSpace(text)
	}
	body := text[start+3:]
	// drop the language tag line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return strings.TrimSpace(text)
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func itemCount(value, fallback string) int {
	for _, v := range []string{value, fallback} {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// firstLines keeps up to n non-blank lines.
func firstLines(text string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func (s *Service) log() ports.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Nop()
}
