package interpreter

import (
	"strings"

	"github.com/doeshing/apex/internal/domain"
)

// Input is the view of one utterance every rule sees.
type Input struct {
	Original   string
	Lowered    string
	Normalized string
}

// Rule is one entry of the ordered classification table.
type Rule struct {
	Name  string
	Apply func(Input) (string, bool)
}

// RuleFallback names the outcome when no rule matched.
const RuleFallback = "fallback"

// Classifier applies the rule table; the first matching rule wins.
type Classifier struct {
	normalizer *Normalizer
	rules      []Rule
}

// NewClassifier builds the default rule table for a vocabulary.
func NewClassifier(vocab domain.Vocabulary) *Classifier {
	vocab = vocab.WithDefaults()
	return &Classifier{
		normalizer: NewNormalizer(vocab.Fillers, vocab.LegacySubstring),
		rules: []Rule{
			youtubeRule(vocab.YouTube),
			browserRule(vocab.Browser, vocab.Chrome),
			editorRule(vocab.Editor),
			timeRule(vocab.Time),
			searchRule(vocab.SearchTriggers),
			createCommandRule(vocab.CreateCommand),
		},
	}
}

// Classify returns the canonical command for text, or its lower-cased trimmed
// form when nothing matches.
func (c *Classifier) Classify(text string) string {
	_, command := c.Explain(text)
	return command
}

// Explain is Classify plus the name of the rule that produced the result.
func (c *Classifier) Explain(text string) (string, string) {
	in := Input{
		Original:   text,
		Lowered:    strings.ToLower(strings.TrimSpace(text)),
		Normalized: c.normalizer.Normalize(text),
	}
	if in.Normalized == "" {
		return RuleFallback, in.Lowered
	}
	for _, rule := range c.rules {
		if command, ok := rule.Apply(in); ok {
			return rule.Name, command
		}
	}
	return RuleFallback, in.Lowered
}

// Normalize exposes the classifier's normalizer.
func (c *Classifier) Normalize(text string) string {
	return c.normalizer.Normalize(text)
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		names = append(names, rule.Name)
	}
	return names
}

func youtubeRule(words []string) Rule {
	words = lowerAll(words)
	return Rule{Name: "youtube", Apply: func(in Input) (string, bool) {
		if containsAny(in.Normalized, words) {
			return domain.CommandOpenYouTube, true
		}
		return "", false
	}}
}

func browserRule(words []string, chrome string) Rule {
	words = lowerAll(words)
	chrome = strings.ToLower(chrome)
	return Rule{Name: "browser", Apply: func(in Input) (string, bool) {
		if !containsAny(in.Normalized, words) {
			return "", false
		}
		if chrome != "" && strings.Contains(in.Normalized, chrome) {
			return domain.CommandOpenBrowserChrome, true
		}
		return domain.CommandOpenBrowser, true
	}}
}

func editorRule(words []string) Rule {
	words = lowerAll(words)
	return Rule{Name: "editor", Apply: func(in Input) (string, bool) {
		if containsAny(in.Normalized, words) {
			return domain.CommandOpenVSCode, true
		}
		return "", false
	}}
}

func timeRule(words []string) Rule {
	words = lowerAll(words)
	return Rule{Name: "time", Apply: func(in Input) (string, bool) {
		if containsAny(in.Normalized, words) {
			return domain.CommandWhatTime, true
		}
		return "", false
	}}
}

// searchRule splits on the first occurrence of the first trigger present.
// Triggers only match whole tokens. Further triggers are dropped from the
// search term so that the produced command classifies to itself.
func searchRule(triggers []string) Rule {
	set := newPhraseSet(lowerAll(triggers))
	ordered := make([][]string, 0, len(triggers))
	for _, trigger := range lowerAll(triggers) {
		ordered = append(ordered, strings.Fields(trigger))
	}
	return Rule{Name: "search", Apply: func(in Input) (string, bool) {
		tokens := strings.Fields(in.Normalized)
		for _, trigger := range ordered {
			idx := indexPhrase(tokens, trigger)
			if idx < 0 {
				continue
			}
			term := strings.Join(set.strip(tokens[idx+len(trigger):]), " ")
			if term == "" {
				return domain.CommandSearchFor, true
			}
			return domain.CommandSearchFor + " " + term, true
		}
		return "", false
	}}
}

func createCommandRule(phrases []string) Rule {
	phrases = lowerAll(phrases)
	return Rule{Name: "create_command", Apply: func(in Input) (string, bool) {
		if containsAny(in.Lowered, phrases) {
			return in.Lowered, true
		}
		return "", false
	}}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
