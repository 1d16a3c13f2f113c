// Package config validates a loaded configuration before services are built.
package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/doeshing/apex/internal/domain"
)

// Validate reports every consistency problem in cfg, joined into one error.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := cfg.ValidateConsistency(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validateKnowledge(cfg.Knowledge)...)
	errs = append(errs, validateModels(cfg.Models)...)
	errs = append(errs, validateSearch(cfg.Search)...)
	if err := validateVocabulary(cfg.Vocabulary); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validateActions(cfg.Actions)...)
	if cfg.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
			errs = append(errs, fmt.Errorf("server.addr invalid: %w", err))
		}
	}
	return errors.Join(errs...)
}

func validateKnowledge(k domain.KnowledgeSettings) []error {
	var errs []error
	switch k.Strategy {
	case "", domain.StrategyAuto, domain.StrategyChat, domain.StrategySearch:
	default:
		errs = append(errs, fmt.Errorf("knowledge.strategy must be auto|chat|search, got %s", k.Strategy))
	}
	if k.CacheTTL != "" {
		if _, err := time.ParseDuration(k.CacheTTL); err != nil {
			errs = append(errs, fmt.Errorf("knowledge.cache_ttl invalid: %w", err))
		}
	}
	if k.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("knowledge.timeout must be >= 0"))
	}
	return errs
}

func validateModels(models []domain.ModelDefinition) []error {
	var errs []error
	for i, m := range models {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("models[%d].name must be set", i))
		}
		switch m.Kind {
		case "", domain.ProviderKindOpenAI:
		case domain.ProviderKindHTTP:
			if m.Endpoint == "" {
				errs = append(errs, fmt.Errorf("model %s: http providers need an endpoint", m.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("model %s: unknown kind %q", m.Name, m.Kind))
		}
		if m.ModelID == "" {
			errs = append(errs, fmt.Errorf("model %s: model_id must be set", m.Name))
		}
	}
	return errs
}

func validateSearch(s domain.SearchSettings) []error {
	var errs []error
	if s.Endpoint != "" && !strings.HasPrefix(s.Endpoint, "http://") && !strings.HasPrefix(s.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("search.endpoint must be an http(s) URL, got %s", s.Endpoint))
	}
	if strings.Count(s.Endpoint, "%s") > 1 {
		errs = append(errs, errors.New("search.endpoint may contain at most one %s"))
	}
	if s.MaxResults < 0 {
		errs = append(errs, errors.New("search.max_results must be >= 0"))
	}
	return errs
}

func validateActions(a domain.ActionSettings) []error {
	var errs []error
	for i, rule := range a.Blocked {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("actions.blocked_patterns[%d] invalid: %w", i, err))
		}
	}
	return errs
}

func validateVocabulary(v domain.Vocabulary) error {
	for _, t := range v.SearchTriggers {
		if strings.TrimSpace(t) == "" {
			return errors.New("vocabulary.search_triggers must not contain empty entries")
		}
	}
	return nil
}
