// Package app wires application services to infrastructure adapters.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/doeshing/apex/internal/application/doctor"
	"github.com/doeshing/apex/internal/application/interpreter"
	"github.com/doeshing/apex/internal/application/knowledge"
	"github.com/doeshing/apex/internal/application/orchestrator"
	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/infrastructure/ai"
	"github.com/doeshing/apex/internal/infrastructure/cache"
	"github.com/doeshing/apex/internal/infrastructure/config"
	"github.com/doeshing/apex/internal/infrastructure/executor"
	"github.com/doeshing/apex/internal/infrastructure/history"
	"github.com/doeshing/apex/internal/infrastructure/search"
	"github.com/doeshing/apex/internal/infrastructure/security"
	"github.com/doeshing/apex/internal/pkg/logger"
	"github.com/doeshing/apex/internal/ports"
	"github.com/doeshing/apex/internal/version"
)

// Options controls how the container is built.
type Options struct {
	// ConfigPath overrides the config file location.
	ConfigPath string
	// EnvFile is loaded before the config; a missing file is ignored.
	EnvFile string
	// LogLevel is debug, info, warn or error.
	LogLevel string
	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Container holds the dependency graph shared by every transport.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        *logger.SlogLogger
	HTTPClient    *http.Client
	Classifier    *interpreter.Classifier
	Orchestrator  *orchestrator.Service
	Knowledge     *knowledge.Service
	Executor      *executor.Catalog
	Conversations ports.ConversationRepository
	Cache         *cache.FileCache
	DoctorService *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	log := logger.New(out, logger.ParseLevel(opts.LogLevel))

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	httpClient, err := ai.NewHTTPClient(domain.DefaultHTTPClientTimeout, cfg.Network.SocksProxy)
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}

	conversations := history.NewStore(cfg.History.DBPath, log)
	answerCache := cache.NewFileCache(cfg.Knowledge.CacheDir, cfg.GetCacheMaxEntries(), cfg.GetCacheTTL())

	knowledgeService := &knowledge.Service{
		Provider:      buildProvider(cfg, ai.NewFactory(httpClient), log),
		Search:        search.NewScraper(httpClient, cfg.Search),
		Conversations: conversations,
		Cache:         answerCache,
		Logger:        log,
		Strategy:      cfg.GetStrategy(),
		Timeout:       cfg.GetKnowledgeTimeout(),
		ContextTurns:  cfg.GetContextTurns(),
		AssistantName: cfg.GetAssistantName(),
	}

	guard, err := security.NewGuardrail(cfg.Actions.Blocked)
	if err != nil {
		conversations.Close()
		return nil, err
	}

	launcher := executor.NewSystemLauncher()
	catalog := &executor.Catalog{
		Settings:      cfg.Actions,
		Launcher:      launcher,
		Runner:        executor.NewShellRunner(cfg.GetExecutionShell()),
		Commands:      conversations,
		Guard:         guard,
		Logger:        log,
		CreatePhrases: cfg.Vocabulary.CreateCommand,
	}

	classifier := interpreter.NewClassifier(cfg.Vocabulary)
	orchestratorService := &orchestrator.Service{
		Name:       cfg.GetAssistantName(),
		Version:    assistantVersion(cfg),
		Classifier: classifier,
		Router:     interpreter.NewRouter(cfg.Vocabulary),
		Executor:   catalog,
		Knowledge:  knowledgeService,
		Logger:     log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Launcher:       launcher,
		Conversations:  conversations,
	}

	return &Container{
		Config:        cfg,
		ConfigLoader:  cfgLoader,
		Logger:        log,
		HTTPClient:    httpClient,
		Classifier:    classifier,
		Orchestrator:  orchestratorService,
		Knowledge:     knowledgeService,
		Executor:      catalog,
		Conversations: conversations,
		Cache:         answerCache,
		DoctorService: doctorService,
	}, nil
}

// Close releases the conversation store.
func (c *Container) Close() error {
	if c.Conversations == nil {
		return nil
	}
	return c.Conversations.Close()
}

// buildProvider returns nil when the knowledge service has to run without a
// chat model, which the auto strategy answers with web search.
func buildProvider(cfg domain.Config, factory ports.ProviderFactory, log ports.Logger) ports.ChatProvider {
	if cfg.GetStrategy() == domain.StrategySearch {
		return nil
	}
	model, err := cfg.GetDefaultModel()
	if err != nil {
		log.Warn("no chat model configured", map[string]interface{}{"error": err.Error()})
		return nil
	}
	provider, err := factory.ForModel(model)
	if err != nil {
		log.Warn("chat provider unavailable", map[string]interface{}{"model": model.Name, "error": err.Error()})
		return nil
	}
	log.Debug("chat provider ready", map[string]interface{}{"model": model.Name, "provider": provider.Name()})
	return provider
}

func assistantVersion(cfg domain.Config) string {
	if cfg.Assistant.Version != "" {
		return cfg.Assistant.Version
	}
	return version.Version
}
