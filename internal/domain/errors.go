package domain

import "errors"

var (
	// ErrEmptyUtterance is reported when a caller hands an empty utterance to the orchestrator.
	ErrEmptyUtterance = errors.New("empty utterance")
	// ErrProviderUnavailable means no chat provider could be built (missing key, unknown kind).
	ErrProviderUnavailable = errors.New("chat provider unavailable")
	// ErrNoKnowledgeSource means neither a chat provider nor a search engine is configured.
	ErrNoKnowledgeSource = errors.New("no knowledge source configured")
)
