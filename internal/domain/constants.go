package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Identity defaults
const (
	DefaultAssistantName = "APEX"
	DefaultWakeWord      = "apex"
)

// Timeout and duration constants
const (
	// DefaultKnowledgeTimeout bounds a single knowledge query
	DefaultKnowledgeTimeout = 30 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultCommandTimeout bounds custom shell commands
	DefaultCommandTimeout = 30 * time.Second
	// DefaultBridgePollInterval matches the file relay cadence
	DefaultBridgePollInterval = 300 * time.Millisecond
	// DefaultRelayTimeout bounds a relay POST to the api server
	DefaultRelayTimeout = 5 * time.Second
	// DefaultCacheTTL is how long knowledge answers stay cached
	DefaultCacheTTL = time.Hour
)

// Limit constants
const (
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
	// DefaultSearchMaxResults is the number of search hits kept
	DefaultSearchMaxResults = 5
	// DefaultContextTurns is the number of past turns replayed to the chat provider
	DefaultContextTurns = 10
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 2048
	// DefaultTemperature is used when a model sets none
	DefaultTemperature = 0.7
)

// Network defaults
const (
	DefaultServerAddr = "127.0.0.1:5000"
)
