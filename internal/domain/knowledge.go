package domain

// KnowledgeStrategy selects which backend answers knowledge queries.
type KnowledgeStrategy string

const (
	StrategyAuto   KnowledgeStrategy = "auto"
	StrategyChat   KnowledgeStrategy = "chat"
	StrategySearch KnowledgeStrategy = "search"
)

// Knowledge answer sources recorded with each conversation turn.
const (
	SourceChat   = "chat"
	SourceSearch = "search"
	SourceCache  = "cache"
)

// SearchResult is one hit returned by the web search engine.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ChatMessage is a role/content pair replayed to chat providers.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
