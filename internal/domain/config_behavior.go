package domain

import (
	"fmt"
	"time"
)

// GetDefaultModel retrieves the default knowledge model definition.
// Returns an error if the default model is not found
func (c *Config) GetDefaultModel() (ModelDefinition, error) {
	if c.Knowledge.DefaultModel == "" {
		if len(c.Models) > 0 {
			return c.Models[0], nil
		}
		return ModelDefinition{}, fmt.Errorf("no default model configured")
	}

	if model, ok := c.FindModelByName(c.Knowledge.DefaultModel); ok {
		return model, nil
	}

	return ModelDefinition{}, fmt.Errorf("default model %s not found in configuration", c.Knowledge.DefaultModel)
}

// FindModelByName searches for a model by its name
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// GetStrategy returns the knowledge strategy, defaulting to auto.
func (c *Config) GetStrategy() KnowledgeStrategy {
	switch c.Knowledge.Strategy {
	case StrategyChat, StrategySearch:
		return c.Knowledge.Strategy
	default:
		return StrategyAuto
	}
}

// GetKnowledgeTimeout returns the per-query timeout.
func (c *Config) GetKnowledgeTimeout() time.Duration {
	if c.Knowledge.TimeoutSeconds <= 0 {
		return DefaultKnowledgeTimeout
	}
	return time.Duration(c.Knowledge.TimeoutSeconds) * time.Second
}

// GetContextTurns returns how many persisted turns are replayed to the chat provider.
func (c *Config) GetContextTurns() int {
	if c.Knowledge.ContextTurns < 0 {
		return 0
	}
	if c.Knowledge.ContextTurns == 0 {
		return DefaultContextTurns
	}
	return c.Knowledge.ContextTurns
}

// GetCacheTTL parses the answer cache TTL. Invalid values fall back to the default.
func (c *Config) GetCacheTTL() time.Duration {
	if c.Knowledge.CacheTTL == "" {
		return DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(c.Knowledge.CacheTTL)
	if err != nil {
		return DefaultCacheTTL
	}
	return ttl
}

// GetCacheMaxEntries returns the maximum number of cached answers
func (c *Config) GetCacheMaxEntries() int {
	if c.Knowledge.CacheMaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Knowledge.CacheMaxEntries
}

// GetSearchMaxResults returns how many search results are kept.
func (c *Config) GetSearchMaxResults() int {
	if c.Search.MaxResults <= 0 {
		return DefaultSearchMaxResults
	}
	return c.Search.MaxResults
}

// GetExecutionShell returns the configured shell for custom commands
func (c *Config) GetExecutionShell() string {
	const defaultShell = "sh"

	if c.Actions.Shell == "" || c.Actions.Shell == "auto" {
		return defaultShell
	}
	return c.Actions.Shell
}

// GetServerAddr returns the api mode listen address.
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

// GetBridgePollInterval returns the file relay polling interval.
func (c *Config) GetBridgePollInterval() time.Duration {
	if c.Bridge.PollIntervalMS <= 0 {
		return DefaultBridgePollInterval
	}
	return time.Duration(c.Bridge.PollIntervalMS) * time.Millisecond
}

// GetAssistantName returns the display name.
func (c *Config) GetAssistantName() string {
	if c.Assistant.Name == "" {
		return DefaultAssistantName
	}
	return c.Assistant.Name
}

// GetWakeWord returns the wake word used by voice mode.
func (c *Config) GetWakeWord() string {
	if c.Assistant.WakeWord == "" {
		return DefaultWakeWord
	}
	return c.Assistant.WakeWord
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if c.Knowledge.DefaultModel != "" && !c.HasModel(c.Knowledge.DefaultModel) {
		return fmt.Errorf("default model %s does not exist in models list", c.Knowledge.DefaultModel)
	}

	if c.Knowledge.Strategy == StrategyChat && len(c.Models) == 0 {
		return fmt.Errorf("knowledge strategy %q requires at least one model", StrategyChat)
	}

	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if seen[model.Name] {
			return fmt.Errorf("model %s declared twice", model.Name)
		}
		seen[model.Name] = true
	}

	return nil
}
