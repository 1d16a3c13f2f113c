package domain

import "time"

// Route is the binary dispatch target for one utterance.
type Route string

const (
	RouteLocalCommand   Route = "LOCAL_COMMAND"
	RouteKnowledgeQuery Route = "KNOWLEDGE_QUERY"
)

// RouteDecision is produced by the router for a classified utterance.
type RouteDecision struct {
	Target  Route  `json:"target"`
	Payload string `json:"payload"`
}

// OutcomeRecord is the immutable result of processing one utterance.
type OutcomeRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Input      string    `json:"input"`
	Command    string    `json:"command"`
	Route      Route     `json:"route"`
	Response   string    `json:"response"`
	Success    bool      `json:"success"`
	DurationMS int64     `json:"duration_ms"`
}
