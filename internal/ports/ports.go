// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The interpreter, router and orchestrator only ever see
// these interfaces, so the local action catalog, the chat providers, the search
// scraper and the conversation store can be swapped without touching the core.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ActionExecutor, KnowledgeService)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/apex/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.apex/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Classifier maps a raw utterance to a canonical command (or the lower-cased original).
type Classifier interface {
	Classify(text string) string
}

// Router decides whether an utterance is a local command or a knowledge query.
type Router interface {
	Route(original, classified string) domain.RouteDecision
}

// ActionExecutor performs a local side effect for one canonical command.
// An unrecognized command yields a "not recognized" message and a nil error.
type ActionExecutor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// KnowledgeService answers free text with generated or retrieved text.
type KnowledgeService interface {
	Query(ctx context.Context, text string) (string, error)
}

// Processor is the orchestrator boundary used by transports (REPL, api server, voice loop).
type Processor interface {
	Process(ctx context.Context, utterance string) domain.OutcomeRecord
	History() []domain.OutcomeRecord
}

// ProviderFactory builds chat providers from model definitions.
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (ChatProvider, error)
}

// ChatProvider is the single capability every AI backend exposes.
type ChatProvider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ChatRequest) (ChatResponse, error)
}

// ChatRequest carries the prompt and optional conversation context.
type ChatRequest struct {
	Prompt        string
	AssistantName string
	Context       []domain.ChatMessage
}

// ChatResponse is the generated text plus usage metadata.
type ChatResponse struct {
	Text   string
	Tokens int
	Model  string
}

// SearchEngine retrieves web results for a query.
type SearchEngine interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// ConversationRepository persists knowledge exchanges and context variables.
type ConversationRepository interface {
	SaveTurn(domain.ConversationTurn) error
	Turns(limit int) ([]domain.ConversationTurn, error)
	SetVariable(key, value string) error
	Variable(key string) (string, bool, error)
	ExportJSON(dest string) error
	Clear() error
	Path() string
	Close() error
}

// AnswerCache stores knowledge answers addressed by a hash key.
type AnswerCache interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
	Clear() error
}

// CommandRunner runs shell command lines for user-defined actions.
type CommandRunner interface {
	Run(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// CommandGuard vets a user command line before it is stored or run.
type CommandGuard interface {
	Check(line string) error
}

// Launcher opens URLs, folders and applications on the host desktop.
type Launcher interface {
	Open(ctx context.Context, target string) error
	Start(ctx context.Context, program string, args ...string) error
	LookPath(program string) (string, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
