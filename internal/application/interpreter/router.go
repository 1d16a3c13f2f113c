package interpreter

import (
	"strings"

	"github.com/doeshing/apex/internal/domain"
)

// Router sends utterances that carry a search trigger to the knowledge
// service and everything else to the local action executor. It shares the
// trigger vocabulary with the classifier's search rule and, like it, only
// matches triggers as whole tokens.
type Router struct {
	triggers *phraseSet
}

// NewRouter builds a router for a vocabulary.
func NewRouter(vocab domain.Vocabulary) *Router {
	return &Router{triggers: newPhraseSet(lowerAll(vocab.WithDefaults().SearchTriggers))}
}

// Route inspects the original utterance, not the classified command.
func (r *Router) Route(original, classified string) domain.RouteDecision {
	if r.triggers.contains(strings.Fields(strings.ToLower(original))) {
		return domain.RouteDecision{Target: domain.RouteKnowledgeQuery, Payload: original}
	}
	return domain.RouteDecision{Target: domain.RouteLocalCommand, Payload: classified}
}

var (
	defaultClassifier = NewClassifier(domain.DefaultVocabulary())
	defaultRouter     = NewRouter(domain.DefaultVocabulary())
)

// Normalize runs the default normalizer.
func Normalize(text string) string {
	return defaultClassifier.Normalize(text)
}

// Classify runs the default classifier.
func Classify(text string) string {
	return defaultClassifier.Classify(text)
}

// Route runs the default router.
func Route(original, classified string) domain.RouteDecision {
	return defaultRouter.Route(original, classified)
}
