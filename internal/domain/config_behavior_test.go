package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/apex/internal/domain"
)

func TestConfig_GetDefaultModel(t *testing.T) {
	tests := []struct {
		name        string
		config      domain.Config
		wantError   bool
		wantModelID string
	}{
		{
			name: "returns named default model",
			config: domain.Config{
				Knowledge: domain.KnowledgeSettings{DefaultModel: "perplexity"},
				Models: []domain.ModelDefinition{
					{Name: "openai", ModelID: "gpt-4o-mini"},
					{Name: "perplexity", ModelID: "sonar"},
				},
			},
			wantModelID: "sonar",
		},
		{
			name: "falls back to first model when unset",
			config: domain.Config{
				Models: []domain.ModelDefinition{{Name: "openai", ModelID: "gpt-4o-mini"}},
			},
			wantModelID: "gpt-4o-mini",
		},
		{
			name: "returns error when default model not found",
			config: domain.Config{
				Knowledge: domain.KnowledgeSettings{DefaultModel: "missing"},
				Models:    []domain.ModelDefinition{{Name: "openai"}},
			},
			wantError: true,
		},
		{
			name:      "returns error when nothing configured",
			config:    domain.Config{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := tt.config.GetDefaultModel()

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if model.ModelID != tt.wantModelID {
				t.Errorf("got model ID %s, want %s", model.ModelID, tt.wantModelID)
			}
		})
	}
}

func TestConfig_GetStrategy(t *testing.T) {
	tests := []struct {
		in   domain.KnowledgeStrategy
		want domain.KnowledgeStrategy
	}{
		{"", domain.StrategyAuto},
		{"bogus", domain.StrategyAuto},
		{domain.StrategyChat, domain.StrategyChat},
		{domain.StrategySearch, domain.StrategySearch},
	}

	for _, tt := range tests {
		cfg := domain.Config{Knowledge: domain.KnowledgeSettings{Strategy: tt.in}}
		if got := cfg.GetStrategy(); got != tt.want {
			t.Errorf("GetStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg domain.Config

	if got := cfg.GetKnowledgeTimeout(); got != domain.DefaultKnowledgeTimeout {
		t.Errorf("GetKnowledgeTimeout() = %v", got)
	}
	if got := cfg.GetCacheTTL(); got != domain.DefaultCacheTTL {
		t.Errorf("GetCacheTTL() = %v", got)
	}
	if got := cfg.GetContextTurns(); got != domain.DefaultContextTurns {
		t.Errorf("GetContextTurns() = %d", got)
	}
	if got := cfg.GetExecutionShell(); got != "sh" {
		t.Errorf("GetExecutionShell() = %s", got)
	}
	if got := cfg.GetServerAddr(); got != domain.DefaultServerAddr {
		t.Errorf("GetServerAddr() = %s", got)
	}
	if got := cfg.GetWakeWord(); got != "apex" {
		t.Errorf("GetWakeWord() = %s", got)
	}

	cfg.Knowledge.TimeoutSeconds = 5
	cfg.Knowledge.CacheTTL = "10m"
	cfg.Knowledge.ContextTurns = -1
	cfg.Bridge.PollIntervalMS = 50

	if got := cfg.GetKnowledgeTimeout(); got != 5*time.Second {
		t.Errorf("GetKnowledgeTimeout() = %v", got)
	}
	if got := cfg.GetCacheTTL(); got != 10*time.Minute {
		t.Errorf("GetCacheTTL() = %v", got)
	}
	if got := cfg.GetContextTurns(); got != 0 {
		t.Errorf("GetContextTurns() = %d, want 0 for negative", got)
	}
	if got := cfg.GetBridgePollInterval(); got != 50*time.Millisecond {
		t.Errorf("GetBridgePollInterval() = %v", got)
	}
}

func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{
			name: "valid configuration",
			config: domain.Config{
				Knowledge: domain.KnowledgeSettings{DefaultModel: "openai"},
				Models:    []domain.ModelDefinition{{Name: "openai"}},
			},
		},
		{
			name: "missing default model",
			config: domain.Config{
				Knowledge: domain.KnowledgeSettings{DefaultModel: "missing"},
				Models:    []domain.ModelDefinition{{Name: "openai"}},
			},
			wantError: true,
		},
		{
			name: "chat strategy without models",
			config: domain.Config{
				Knowledge: domain.KnowledgeSettings{Strategy: domain.StrategyChat},
			},
			wantError: true,
		},
		{
			name: "duplicate model names",
			config: domain.Config{
				Models: []domain.ModelDefinition{{Name: "a"}, {Name: "a"}},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestVocabulary_WithDefaults(t *testing.T) {
	v := domain.Vocabulary{SearchTriggers: []string{"find"}}.WithDefaults()

	if len(v.SearchTriggers) != 1 || v.SearchTriggers[0] != "find" {
		t.Errorf("custom triggers overwritten: %v", v.SearchTriggers)
	}
	if len(v.Fillers) == 0 || v.Chrome != "chrome" {
		t.Errorf("defaults not applied: %+v", v)
	}
}

func TestHealthReport_HasErrors(t *testing.T) {
	report := domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "a", Status: domain.HealthOK},
		{Name: "b", Status: domain.HealthWarn},
	}}
	if report.HasErrors() {
		t.Error("warn-only report should not have errors")
	}
	report.Checks = append(report.Checks, domain.HealthCheck{Name: "c", Status: domain.HealthError})
	if !report.HasErrors() {
		t.Error("expected HasErrors after an error check")
	}
}
