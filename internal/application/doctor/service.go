// Package doctor runs the startup dependency check behind --check.
package doctor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	appconfig "github.com/doeshing/apex/internal/application/config"
	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Launcher       ports.Launcher
	Conversations  ports.ConversationRepository

	// Getenv and GOOS are replaceable in tests.
	Getenv func(string) string
	GOOS   string
}

// Run executes checks and returns a report. The error is non-nil only when
// the configuration itself cannot be loaded.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("format version %s", cfg.ConfigFormatVersion)))

	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config validation", strings.ReplaceAll(err.Error(), "\n", "; ")))
	} else {
		checks = append(checks, ok("Config validation", "consistent"))
	}

	checks = append(checks, s.knowledgeCheck(cfg))
	checks = append(checks, s.apiKeyChecks(cfg.Models)...)
	checks = append(checks, searchCheck(cfg.Search))
	checks = append(checks, s.launcherChecks(cfg.Actions)...)
	checks = append(checks, s.historyCheck())

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) knowledgeCheck(cfg domain.Config) domain.HealthCheck {
	strategy := cfg.GetStrategy()
	model, err := cfg.GetDefaultModel()
	if err != nil {
		if strategy == domain.StrategyChat {
			return fail("Knowledge", err.Error())
		}
		return warn("Knowledge", fmt.Sprintf("%s strategy, no chat model: web search only", strategy))
	}
	if model.RequiresKey() && s.getenv(model.AuthEnvVar) == "" {
		if strategy == domain.StrategyChat {
			return fail("Knowledge", fmt.Sprintf("chat strategy needs %s", model.AuthEnvVar))
		}
		if strategy == domain.StrategyAuto {
			return warn("Knowledge", fmt.Sprintf("%s missing: falling back to web search", model.AuthEnvVar))
		}
	}
	return ok("Knowledge", fmt.Sprintf("%s strategy, model %s", strategy, model.Name))
}

func (s *Service) apiKeyChecks(models []domain.ModelDefinition) []domain.HealthCheck {
	var checks []domain.HealthCheck
	for _, model := range models {
		if !model.RequiresKey() {
			continue
		}
		name := "API key " + model.Name
		if s.getenv(model.AuthEnvVar) == "" {
			checks = append(checks, warn(name, model.AuthEnvVar+" missing"))
			continue
		}
		checks = append(checks, ok(name, model.AuthEnvVar+" set"))
	}
	return checks
}

func searchCheck(search domain.SearchSettings) domain.HealthCheck {
	if search.Endpoint == "" {
		return warn("Web search", "no endpoint configured, using built-in default")
	}
	return ok("Web search", search.Endpoint)
}

func (s *Service) launcherChecks(actions domain.ActionSettings) []domain.HealthCheck {
	if s.Launcher == nil {
		return []domain.HealthCheck{warn("Launcher", "not initialized")}
	}

	opener := map[string]string{"windows": "cmd", "darwin": "open"}[s.goos()]
	if opener == "" {
		opener = "xdg-open"
	}
	editor := actions.EditorBin
	if editor == "" {
		editor = "code"
	}

	var checks []domain.HealthCheck
	for _, bin := range []struct{ name, program string }{
		{"Desktop opener", opener},
		{"Editor", editor},
	} {
		if path, err := s.Launcher.LookPath(bin.program); err == nil {
			checks = append(checks, ok(bin.name, path))
		} else {
			checks = append(checks, warn(bin.name, bin.program+" not found on PATH"))
		}
	}
	return checks
}

func (s *Service) historyCheck() domain.HealthCheck {
	if s.Conversations == nil {
		return fail("History store", "not initialized")
	}
	if _, err := s.Conversations.Turns(1); err != nil {
		return fail("History store", err.Error())
	}
	return ok("History store", s.Conversations.Path())
}

func (s *Service) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

func (s *Service) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
