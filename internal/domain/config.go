package domain

// Config mirrors ~/.apex/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Assistant           AssistantSettings `yaml:"assistant"`
	Vocabulary          Vocabulary        `yaml:"vocabulary"`
	Knowledge           KnowledgeSettings `yaml:"knowledge"`
	Models              []ModelDefinition `yaml:"models"`
	Search              SearchSettings    `yaml:"search"`
	Actions             ActionSettings    `yaml:"actions"`
	History             HistorySettings   `yaml:"history"`
	Server              ServerSettings    `yaml:"server"`
	Bridge              BridgeSettings    `yaml:"bridge"`
	Network             NetworkSettings   `yaml:"network"`
}

// AssistantSettings holds identity metadata.
type AssistantSettings struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	WakeWord string `yaml:"wake_word"`
}

// KnowledgeSettings controls how knowledge queries are answered.
type KnowledgeSettings struct {
	Strategy        KnowledgeStrategy `yaml:"strategy"`
	DefaultModel    string            `yaml:"default_model"`
	TimeoutSeconds  int               `yaml:"timeout"`
	ContextTurns    int               `yaml:"context_turns"`
	CacheTTL        string            `yaml:"cache_ttl"`
	CacheMaxEntries int               `yaml:"cache_max_entries"`
	CacheDir        string            `yaml:"cache_dir"`
}

// SearchSettings configures the HTML search scraper.
type SearchSettings struct {
	Endpoint        string `yaml:"endpoint"`
	ResultSelector  string `yaml:"result_selector"`
	TitleSelector   string `yaml:"title_selector"`
	SnippetSelector string `yaml:"snippet_selector"`
	MaxResults      int    `yaml:"max_results"`
	UserAgent       string `yaml:"user_agent"`
}

// ActionSettings configures the local action catalog.
type ActionSettings struct {
	Shell     string            `yaml:"shell"`
	YouTube   string            `yaml:"youtube_url"`
	Browser   string            `yaml:"browser_url"`
	SearchURL string            `yaml:"search_url"`
	ChromeBin []string          `yaml:"chrome_paths"`
	EditorBin string            `yaml:"editor_bin"`
	Folders   map[string]string `yaml:"folders"`
	Custom    map[string]string `yaml:"custom"`
	// Blocked extends the built-in guardrail for user command lines.
	Blocked   []GuardRule       `yaml:"blocked_patterns"`
}

// HistorySettings points at the persistent conversation store.
type HistorySettings struct {
	DBPath string `yaml:"db_path"`
}

// ServerSettings configures api mode.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// BridgeSettings configures the file relay.
type BridgeSettings struct {
	CommandFile    string `yaml:"command_file"`
	ResponseFile   string `yaml:"response_file"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
	TargetURL      string `yaml:"target_url"`
}

// NetworkSettings holds outbound network options.
type NetworkSettings struct {
	SocksProxy string `yaml:"socks_proxy"`
}
