package domain

import "time"

// ConversationTurn is one persisted knowledge exchange.
type ConversationTurn struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Source    string    `json:"source"`
	Tokens    int       `json:"tokens"`
}

// CacheEntry stores a cached knowledge answer.
type CacheEntry struct {
	Key       string    `json:"key"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
