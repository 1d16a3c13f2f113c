// Package tutor turns study requests (programming, language and content
// tutoring, plus code generation) into prompts for a chat provider.
//
// Every lesson is a text/template over named parameters. Templates reference
// parameters as {{.language}}, {{.code}} and so on; missing parameters are
// reported before any provider call.
package tutor

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// Kind groups lessons that share a persona.
type Kind string

const (
	KindProgramming Kind = "programming"
	KindLanguage    Kind = "language"
	KindContent     Kind = "content"
	KindCode        Kind = "codegen"
)

var (
	// ErrUnknownLesson is returned for a kind/name pair outside the catalog.
	ErrUnknownLesson = errors.New("unknown lesson")
	// ErrMissingParam is returned when a required parameter is blank.
	ErrMissingParam = errors.New("missing parameter")
)

// Lesson is one prompt template. Body names the parameter filled from free
// text (positional CLI args). Items, when set, names the parameter holding
// how many lines of the answer to keep as Reply.Items.
type Lesson struct {
	Kind     Kind
	Name     string
	Summary  string
	Body     string
	Required []string
	Defaults map[string]string
	Template string
	Items    string
}

// summaryWords maps the summary sizes to a target word count.
var summaryWords = map[string]int{"pequeno": 100, "medio": 300, "grande": 700}

var funcs = template.FuncMap{
	"words": func(size string) int {
		if n, ok := summaryWords[strings.ToLower(size)]; ok {
			return n
		}
		return summaryWords["medio"]
	},
}

var personas = map[Kind]string{
	KindProgramming: "Você é um tutor de programação paciente. Responda em português, com exemplos de código curtos e comentados.",
	KindLanguage:    "Você é um tutor de idiomas. Explique em português e dê exemplos no idioma estudado.",
	KindContent:     "Você é um tutor didático. Explique em português, de forma clara e organizada.",
	KindCode:        "Você gera código completo e executável. Foque em simplicidade e educação e inclua comentários explicativos.",
}

var catalog = []Lesson{
	{
		Kind: KindProgramming, Name: "explain", Summary: "Explain a concept with code examples",
		Body: "concept", Required: []string{"language", "concept"},
		Defaults: map[string]string{"level": "iniciante"},
		Template: "Explique {{.concept}} em {{.language}} para nível {{.level}}. Inclua exemplos de código.",
	},
	{
		Kind: KindProgramming, Name: "review", Summary: "Review a piece of code",
		Body: "code", Required: []string{"language", "code"},
		Template: "Revise este código {{.language}}:\n{{.code}}\nAponte melhorias.",
	},
	{
		Kind: KindProgramming, Name: "debug", Summary: "Find the cause of an error",
		Body: "code", Required: []string{"language", "code", "error"},
		Template: "Debug este código {{.language}}:\n{{.code}}\nErro: {{.error}}",
	},
	{
		Kind: KindProgramming, Name: "exercise", Summary: "Create an exercise on a topic",
		Body: "topic", Required: []string{"language", "topic"},
		Defaults: map[string]string{"difficulty": "facil"},
		Template: "Crie um exercício de {{.language}} sobre {{.topic}}, dificuldade {{.difficulty}}.",
	},
	{
		Kind: KindLanguage, Name: "grammar", Summary: "Teach a grammar topic",
		Body: "topic", Required: []string{"language", "topic"},
		Defaults: map[string]string{"level": "iniciante"},
		Template: "Ensine sobre {{.topic}} em {{.language}} para alguém em nível {{.level}}. Inclua exemplos práticos.",
	},
	{
		Kind: KindLanguage, Name: "correct", Summary: "Correct a sentence and explain the errors",
		Body: "sentence", Required: []string{"language", "sentence"},
		Template: "Corrija esta frase em {{.language}}: '{{.sentence}}'. Explique os erros.",
	},
	{
		Kind: KindLanguage, Name: "dialogue", Summary: "Write a practice dialogue",
		Body: "context", Required: []string{"language", "context"},
		Defaults: map[string]string{"level": "intermediário"},
		Template: "Crie um diálogo em {{.language}} para nível {{.level}} sobre: {{.context}}",
	},
	{
		Kind: KindLanguage, Name: "pronounce", Summary: "Describe how a word is pronounced",
		Body: "word", Required: []string{"language", "word"},
		Template: "Explique como pronunciar '{{.word}}' em {{.language}}. Use descrição fonética.",
	},
	{
		Kind: KindLanguage, Name: "translate", Summary: "Translate text and explain the choices",
		Body: "text", Required: []string{"from", "to", "text"},
		Template: "Traduza de {{.from}} para {{.to}}: '{{.text}}'. Explique a tradução.",
	},
	{
		Kind: KindContent, Name: "explain", Summary: "Explain study material",
		Body: "content", Required: []string{"content"},
		Defaults: map[string]string{"level": "intermediário"},
		Template: "Explique este conteúdo de forma clara para um aluno em nível {{.level}}:\n{{.content}}",
	},
	{
		Kind: KindContent, Name: "summarize", Summary: "Summarize text (size pequeno, medio or grande)",
		Body: "content", Required: []string{"content"},
		Defaults: map[string]string{"size": "medio"},
		Template: "Resuma este texto em aproximadamente {{words .size}} palavras:\n{{.content}}",
	},
	{
		Kind: KindContent, Name: "exercises", Summary: "Create exercises about study material",
		Body: "content", Required: []string{"content"},
		Defaults: map[string]string{"count": "3"},
		Template: "Crie {{.count}} exercícios sobre o conteúdo abaixo, um por linha:\n{{.content}}",
		Items:    "count",
	},
	{
		Kind: KindContent, Name: "answer", Summary: "Answer a student's question about material",
		Body: "question", Required: []string{"content", "question"},
		Template: "Contexto: {{.content}}\nDúvida do aluno: {{.question}}\nResponda de forma didática.",
	},
	{
		Kind: KindCode, Name: "tool", Summary: "Generate a small tool or app",
		Body: "description", Required: []string{"description"},
		Defaults: map[string]string{"language": "Python"},
		Template: "Gere código {{.language}} completo para: {{.description}}. Inclua comentários explicativos.",
	},
	{
		Kind: KindCode, Name: "app", Summary: "Generate an educational app (quiz, flashcards or practice)",
		Body: "topic", Required: []string{"topic"},
		Defaults: map[string]string{"type": "quiz", "language": "Python"},
		Template: `Gere código {{.language}} completo para: {{if eq .type "flashcards"}}um sistema de flashcards para estudar {{.topic}}` +
			`{{else if eq .type "practice"}}exercícios práticos interativos sobre {{.topic}}` +
			`{{else}}um aplicativo de quiz interativo sobre {{.topic}} com 10 perguntas{{end}}. Inclua comentários explicativos.`,
	},
	{
		Kind: KindCode, Name: "script", Summary: "Generate an automation script",
		Body: "task", Required: []string{"task"},
		Defaults: map[string]string{"language": "Python"},
		Template: "Crie um script {{.language}} para automatizar: {{.task}}. Inclua tratamento de erros e documentação.",
	},
}

// Lessons lists the catalog ordered by kind and name.
func Lessons() []Lesson {
	out := make([]Lesson, len(catalog))
	copy(out, catalog)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LessonsOf lists the lessons of one kind.
func LessonsOf(kind Kind) []Lesson {
	var out []Lesson
	for _, l := range Lessons() {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Find looks a lesson up by kind and name.
func Find(kind Kind, name string) (Lesson, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range catalog {
		if l.Kind == kind && l.Name == name {
			return l, true
		}
	}
	return Lesson{}, false
}

// Persona is the system message used for a kind.
func Persona(kind Kind) string {
	return personas[kind]
}

// Render fills the template. Defaults apply to blank parameters.
func (l Lesson) Render(params map[string]string) (string, error) {
	data := make(map[string]string, len(l.Defaults)+len(params))
	for k, v := range l.Defaults {
		data[k] = v
	}
	for k, v := range params {
		if v = strings.TrimSpace(v); v != "" {
			data[strings.ToLower(k)] = v
		}
	}
	for _, key := range l.Required {
		if data[key] == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
		}
	}

	tmpl, err := template.New(string(l.Kind) + "/" + l.Name).Funcs(funcs).Option("missingkey=zero").Parse(l.Template)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
