package tutor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

type stubProvider struct {
	requests []ports.ChatRequest
	resp     ports.ChatResponse
	err      error
}

func (p *stubProvider) Name() string                   { return "stub" }
func (p *stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{Name: "stub"} }
func (p *stubProvider) Generate(_ context.Context, req ports.ChatRequest) (ports.ChatResponse, error) {
	p.requests = append(p.requests, req)
	return p.resp, p.err
}

func TestAskProgrammingExplain(t *testing.T) {
	provider := &stubProvider{resp: ports.ChatResponse{Text: "  Goroutines são...  ", Tokens: 42, Model: "m"}}
	s := &Service{Provider: provider, AssistantName: "APEX"}

	reply, err := s.Ask(context.Background(), KindProgramming, "explain", map[string]string{"language": "Go", "concept": "goroutines"})

	require.NoError(t, err)
	assert.Equal(t, "Goroutines são...", reply.Text)
	assert.Equal(t, 42, reply.Tokens)
	assert.Equal(t, "Explique goroutines em Go para nível iniciante. Inclua exemplos de código.", reply.Prompt)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, reply.Prompt, req.Prompt)
	assert.Equal(t, "APEX", req.AssistantName)
	assert.Equal(t, []domain.ChatMessage{{Role: "system", Content: Persona(KindProgramming)}}, req.Context)
}

func TestAskRequiresParams(t *testing.T) {
	provider := &stubProvider{}
	s := &Service{Provider: provider}

	_, err := s.Ask(context.Background(), KindLanguage, "translate", map[string]string{"from": "inglês", "text": "hello"})

	assert.ErrorIs(t, err, ErrMissingParam)
	assert.ErrorContains(t, err, "to")
	assert.Empty(t, provider.requests)
}

func TestAskUnknownLesson(t *testing.T) {
	_, err := (&Service{Provider: &stubProvider{}}).Ask(context.Background(), KindContent, "dance", nil)
	assert.ErrorIs(t, err, ErrUnknownLesson)
}

func TestAskWithoutProvider(t *testing.T) {
	_, err := (&Service{}).Ask(context.Background(), KindContent, "explain", map[string]string{"content": "fotossíntese"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestAskProviderFailure(t *testing.T) {
	s := &Service{Provider: &stubProvider{err: errors.New("429 too many requests")}}

	_, err := s.Ask(context.Background(), KindContent, "explain", map[string]string{"content": "fotossíntese"})
	assert.EqualError(t, err, "stub: 429 too many requests")

	s.Provider = &stubProvider{resp: ports.ChatResponse{Text: "   "}}
	_, err = s.Ask(context.Background(), KindContent, "explain", map[string]string{"content": "fotossíntese"})
	assert.EqualError(t, err, "stub: empty response")
}

func TestAskExercisesKeepsRequestedLines(t *testing.T) {
	provider := &stubProvider{resp: ports.ChatResponse{Text: "1. a\n\n2. b\n3. c\n4. d"}}
	s := &Service{Provider: provider}

	reply, err := s.Ask(context.Background(), KindContent, "exercises", map[string]string{"content": "frações", "count": "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1. a", "2. b"}, reply.Items)

	reply, err = s.Ask(context.Background(), KindContent, "exercises", map[string]string{"content": "frações"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1. a", "2. b", "3. c"}, reply.Items)
	assert.Contains(t, provider.requests[1].Prompt, "Crie 3 exercícios")
}

func TestRenderTemplates(t *testing.T) {
	tests := []struct {
		kind   Kind
		name   string
		params map[string]string
		want   string
	}{
		{KindContent, "summarize", map[string]string{"content": "x", "size": "grande"}, "Resuma este texto em aproximadamente 700 palavras:\nx"},
		{KindContent, "summarize", map[string]string{"content": "x", "size": "enorme"}, "Resuma este texto em aproximadamente 300 palavras:\nx"},
		{KindLanguage, "correct", map[string]string{"language": "francês", "sentence": "je suis allé"}, "Corrija esta frase em francês: 'je suis allé'. Explique os erros."},
		{KindCode, "app", map[string]string{"topic": "francês", "type": "flashcards"}, "Gere código Python completo para: um sistema de flashcards para estudar francês. Inclua comentários explicativos."},
		{KindCode, "app", map[string]string{"topic": "Go"}, "Gere código Python completo para: um aplicativo de quiz interativo sobre Go com 10 perguntas. Inclua comentários explicativos."},
		{KindCode, "script", map[string]string{"task": "renomear fotos", "language": "Go"}, "Crie um script Go para automatizar: renomear fotos. Inclua tratamento de erros e documentação."},
	}

	for _, tt := range tests {
		lesson, ok := Find(tt.kind, tt.name)
		require.True(t, ok, tt.name)
		got, err := lesson.Render(tt.params)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}
}

func TestCatalogIsComplete(t *testing.T) {
	for _, lesson := range Lessons() {
		assert.NotEmpty(t, Persona(lesson.Kind), lesson.Name)
		assert.Contains(t, lesson.Required, lesson.Body, "%s %s", lesson.Kind, lesson.Name)

		params := map[string]string{}
		for _, key := range lesson.Required {
			params[key] = "x"
		}
		_, err := lesson.Render(params)
		assert.NoError(t, err, "%s %s", lesson.Kind, lesson.Name)
	}
	assert.Len(t, LessonsOf(KindProgramming), 4)
	assert.Len(t, LessonsOf(KindLanguage), 5)
	assert.Len(t, LessonsOf(KindContent), 4)
	assert.Len(t, LessonsOf(KindCode), 3)
}

func TestGenerateExtractsCode(t *testing.T) {
	provider := &stubProvider{resp: ports.ChatResponse{Text: "Aqui está:\n```python\nprint('oi')\n```\nBons estudos."}}
	s := &Service{Provider: provider}

	reply, err := s.Generate(context.Background(), "tool", map[string]string{"description": "um olá mundo"})

	require.NoError(t, err)
	assert.Equal(t, "print('oi')", reply.Text)
	assert.Equal(t, KindCode, reply.Kind)
}

func TestExtractCode(t *testing.T) {
	assert.Equal(t, "plain", ExtractCode("  plain \n"))
	assert.Equal(t, "a := 1", ExtractCode("```go\na := 1\n```"))
	assert.Equal(t, "x", ExtractCode("```\nx"))
	assert.Equal(t, "```", ExtractCode("```"))
}

func TestSaveCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tool.py")

	require.NoError(t, SaveCode(path, "print('oi')"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print('oi')\n", string(data))
}
