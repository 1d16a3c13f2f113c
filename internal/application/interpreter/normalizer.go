// Package interpreter turns free-form utterances into canonical commands.
//
// The pipeline is Normalize → Classify → Route. All three steps are pure and
// safe for concurrent use; their behaviour is driven entirely by a
// domain.Vocabulary so the word lists can be tuned from config.yaml.
package interpreter

import (
	"sort"
	"strings"
	"unicode"
)

// Normalizer lower-cases text and strips filler words.
type Normalizer struct {
	fillers []string
	phrases *phraseSet
	legacy  bool
}

// NewNormalizer builds a normalizer for the given filler list.
// With legacy set, fillers are removed as raw substrings in list order, which
// can cut fillers out of longer words ("ai" inside "praia").
func NewNormalizer(fillers []string, legacy bool) *Normalizer {
	lowered := make([]string, 0, len(fillers))
	for _, f := range fillers {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			lowered = append(lowered, f)
		}
	}
	return &Normalizer{
		fillers: lowered,
		phrases: newPhraseSet(lowered),
		legacy:  legacy,
	}
}

// Normalize lower-cases, removes fillers and collapses whitespace.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if n.legacy {
		for _, f := range n.fillers {
			text = strings.ReplaceAll(text, f, " ")
		}
		return collapse(text)
	}
	return strings.Join(n.phrases.strip(strings.Fields(text)), " ")
}

// phraseSet matches whole-token phrases, longest phrase first.
type phraseSet struct {
	phrases [][]string
}

func newPhraseSet(words []string) *phraseSet {
	phrases := make([][]string, 0, len(words))
	for _, w := range words {
		if tokens := strings.Fields(w); len(tokens) > 0 {
			phrases = append(phrases, tokens)
		}
	}
	sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })
	return &phraseSet{phrases: phrases}
}

func (p *phraseSet) strip(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if width := p.matchAt(tokens, i); width > 0 {
			i += width
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// contains reports whether any phrase occurs in tokens.
func (p *phraseSet) contains(tokens []string) bool {
	for i := range tokens {
		if p.matchAt(tokens, i) > 0 {
			return true
		}
	}
	return false
}

func (p *phraseSet) matchAt(tokens []string, i int) int {
	for _, phrase := range p.phrases {
		if phraseAt(tokens, i, phrase) {
			return len(phrase)
		}
	}
	return 0
}

// indexPhrase returns the first token index where phrase starts, or -1.
func indexPhrase(tokens, phrase []string) int {
	for i := range tokens {
		if phraseAt(tokens, i, phrase) {
			return i
		}
	}
	return -1
}

func phraseAt(tokens []string, i int, phrase []string) bool {
	if len(phrase) == 0 || i+len(phrase) > len(tokens) {
		return false
	}
	for j, word := range phrase {
		if bare(tokens[i+j]) != word {
			return false
		}
	}
	return true
}

// bare drops leading and trailing punctuation so "apex," matches "apex".
func bare(token string) string {
	return strings.TrimFunc(token, unicode.IsPunct)
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
