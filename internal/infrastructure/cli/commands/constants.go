package commands

import (
	"context"

	"github.com/doeshing/apex/internal/app"
)

// Loader returns the shared container, building it on first use so that
// root flags such as --config are applied before anything is wired.
type Loader func(ctx context.Context) (*app.Container, error)

// Output formats
const (
	TimestampFormat = "2006-01-02 15:04:05"
	questionWidth   = 60
)

// Messages
const (
	msgNoHistoryRecorded  = "No conversation history yet."
	msgNoCachedResponses  = "No cached answers."
	msgConfigurationValid = "Configuration valid"
	msgHistoryCleared     = "Conversation history cleared."
	msgCacheCleared       = "Answer cache cleared."
)
