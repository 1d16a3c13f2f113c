package domain

// Vocabulary is the word list the interpreter matches utterances against.
// Every list is matched case-insensitively; order matters where noted.
type Vocabulary struct {
	// Fillers are stripped during normalization, in order.
	Fillers []string `yaml:"fillers"`
	// YouTube words trigger "open youtube".
	YouTube []string `yaml:"youtube"`
	// Browser words trigger "open browser"; Chrome selects the chrome variant.
	Browser []string `yaml:"browser"`
	Chrome  string   `yaml:"chrome"`
	// Editor words trigger "open vs code".
	Editor []string `yaml:"editor"`
	// Time words trigger "what time is it".
	Time []string `yaml:"time"`
	// SearchTriggers is the single trigger vocabulary shared by the classifier
	// search rule and the router, checked in order.
	SearchTriggers []string `yaml:"search_triggers"`
	// CreateCommand phrases mark a user-defined command in the original text.
	CreateCommand []string `yaml:"create_command"`
	// LegacySubstring restores raw substring filler removal.
	LegacySubstring bool `yaml:"legacy_substring"`
}

// Canonical commands produced by the classifier.
const (
	CommandOpenYouTube       = "open youtube"
	CommandOpenBrowser       = "open browser"
	CommandOpenBrowserChrome = "open browser chrome"
	CommandOpenVSCode        = "open vs code"
	CommandWhatTime          = "what time is it"
	CommandSearchFor         = "search for"
)

// DefaultVocabulary returns the built-in Portuguese/English vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Fillers: []string{
			"apex", "por favor", "porfavor", "pode", "poderia", "você", "voce",
			"pra mim", "para mim", "aí", "ai", "mano", "rapidinho", "por gentileza",
			"faz", "faça", "faca", "me", "diz", "diga", "tipo", "assim", "por", "favor",
			"please", "hey",
		},
		YouTube:        []string{"youtube"},
		Browser:        []string{"browser", "internet", "chrome", "google", "navegador"},
		Chrome:         "chrome",
		Editor:         []string{"vs code", "vscode", "visual studio code"},
		Time:           []string{"hora", "horas"},
		SearchTriggers: []string{"pesquisar", "pesquise", "procure", "busque", "buscar", "look up"},
		CreateCommand:  []string{"create command", "criar comando"},
	}
}

// WithDefaults fills empty lists from DefaultVocabulary.
func (v Vocabulary) WithDefaults() Vocabulary {
	def := DefaultVocabulary()
	if len(v.Fillers) == 0 {
		v.Fillers = def.Fillers
	}
	if len(v.YouTube) == 0 {
		v.YouTube = def.YouTube
	}
	if len(v.Browser) == 0 {
		v.Browser = def.Browser
	}
	if v.Chrome == "" {
		v.Chrome = def.Chrome
	}
	if len(v.Editor) == 0 {
		v.Editor = def.Editor
	}
	if len(v.Time) == 0 {
		v.Time = def.Time
	}
	if len(v.SearchTriggers) == 0 {
		v.SearchTriggers = def.SearchTriggers
	}
	if len(v.CreateCommand) == 0 {
		v.CreateCommand = def.CreateCommand
	}
	return v
}
