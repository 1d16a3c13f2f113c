// Package knowledge answers free-text questions with a chat provider, a web
// search engine, or both, caching answers and persisting conversation turns.
package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/pkg/logger"
	"github.com/doeshing/apex/internal/ports"
)

const snippetLimit = 200

// Service implements ports.KnowledgeService. Provider, Search, Conversations
// and Cache are optional; Query fails with domain.ErrNoKnowledgeSource when
// the strategy has nothing to call.
type Service struct {
	Provider      ports.ChatProvider
	Search        ports.SearchEngine
	Conversations ports.ConversationRepository
	Cache         ports.AnswerCache
	Logger        ports.Logger

	Strategy      domain.KnowledgeStrategy
	Timeout       time.Duration
	ContextTurns  int
	AssistantName string
	Clock         func() time.Time
}

type answer struct {
	text   string
	source string
	tokens int
}

// Query answers text according to the configured strategy.
func (s *Service) Query(ctx context.Context, text string) (string, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return "", domain.ErrEmptyUtterance
	}

	key := CacheKey(question)
	if s.Cache != nil {
		entry, ok, err := s.Cache.Get(key)
		if err != nil {
			s.log().Warn("answer cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			s.log().Debug("answer cache hit", map[string]interface{}{"key": key})
			return entry.Answer, nil
		}
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	ans, err := s.resolve(ctx, question)
	if err != nil {
		return "", err
	}

	s.remember(key, question, ans)
	return ans.text, nil
}

func (s *Service) resolve(ctx context.Context, question string) (answer, error) {
	switch s.strategy() {
	case domain.StrategyChat:
		if s.Provider == nil {
			return answer{}, domain.ErrProviderUnavailable
		}
		return s.chat(ctx, question)
	case domain.StrategySearch:
		if s.Search == nil {
			return answer{}, domain.ErrNoKnowledgeSource
		}
		return s.search(ctx, question)
	}

	if s.Provider == nil && s.Search == nil {
		return answer{}, domain.ErrNoKnowledgeSource
	}

	var chatErr error
	if s.Provider != nil {
		ans, err := s.chat(ctx, question)
		if err == nil {
			return ans, nil
		}
		chatErr = err
		s.log().Warn("chat provider failed, falling back to search", map[string]interface{}{
			"provider": s.Provider.Name(),
			"error":    err.Error(),
		})
	}
	if s.Search == nil {
		return answer{}, chatErr
	}

	ans, err := s.search(ctx, question)
	if err != nil {
		return answer{}, errors.Join(chatErr, err)
	}
	return ans, nil
}

func (s *Service) chat(ctx context.Context, question string) (answer, error) {
	resp, err := s.Provider.Generate(ctx, ports.ChatRequest{
		Prompt:        question,
		AssistantName: s.AssistantName,
		Context:       s.contextMessages(),
	})
	if err != nil {
		return answer{}, fmt.Errorf("%s: %w", s.Provider.Name(), err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return answer{}, fmt.Errorf("%s: empty response", s.Provider.Name())
	}
	return answer{text: text, source: domain.SourceChat, tokens: resp.Tokens}, nil
}

func (s *Service) search(ctx context.Context, question string) (answer, error) {
	results, err := s.Search.Search(ctx, question)
	if err != nil {
		return answer{}, fmt.Errorf("web search: %w", err)
	}
	return answer{
		text:   FormatResults(s.name(), question, results),
		source: domain.SourceSearch,
	}, nil
}

// contextMessages replays persisted turns, oldest first.
func (s *Service) contextMessages() []domain.ChatMessage {
	if s.Conversations == nil || s.ContextTurns <= 0 {
		return nil
	}
	turns, err := s.Conversations.Turns(s.ContextTurns)
	if err != nil {
		s.log().Warn("load conversation context failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	messages := make([]domain.ChatMessage, 0, len(turns)*2)
	for _, turn := range turns {
		messages = append(messages,
			domain.ChatMessage{Role: "user", Content: turn.Question},
			domain.ChatMessage{Role: "assistant", Content: turn.Answer},
		)
	}
	return messages
}

func (s *Service) remember(key, question string, ans answer) {
	now := s.now()
	if s.Conversations != nil {
		err := s.Conversations.SaveTurn(domain.ConversationTurn{
			Timestamp: now,
			Question:  question,
			Answer:    ans.text,
			Source:    ans.source,
			Tokens:    ans.tokens,
		})
		if err != nil {
			s.log().Warn("save conversation turn failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.Cache != nil {
		err := s.Cache.Set(domain.CacheEntry{
			Key:       key,
			Query:     question,
			Answer:    ans.text,
			Source:    ans.source,
			CreatedAt: now,
		})
		if err != nil {
			s.log().Warn("answer cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *Service) strategy() domain.KnowledgeStrategy {
	switch s.Strategy {
	case domain.StrategyChat, domain.StrategySearch:
		return s.Strategy
	default:
		return domain.StrategyAuto
	}
}

func (s *Service) name() string {
	if s.AssistantName == "" {
		return domain.DefaultAssistantName
	}
	return s.AssistantName
}

func (s *Service) log() ports.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logger.Nop()
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// CacheKey hashes the lower-cased, whitespace-collapsed question.
func CacheKey(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// FormatResults renders search hits as a numbered plain-text block.
func FormatResults(assistant, question string, results []domain.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("%s could not find any results for %q.", assistant, question)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s found %d results:\n", assistant, len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, r.Title)
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			fmt.Fprintf(&b, "    %s\n", truncate(snippet, snippetLimit))
		}
		fmt.Fprintf(&b, "    %s\n", r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
