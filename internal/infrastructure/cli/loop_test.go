package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/apex/internal/domain"
)

type fakeProcessor struct {
	mu     sync.Mutex
	inputs []string
}

func (p *fakeProcessor) Process(_ context.Context, utterance string) domain.OutcomeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, utterance)
	return domain.OutcomeRecord{Input: utterance, Command: utterance, Route: domain.RouteLocalCommand, Response: "ok: " + utterance, Success: true}
}

func (p *fakeProcessor) History() []domain.OutcomeRecord { return nil }

func TestREPL(t *testing.T) {
	proc := &fakeProcessor{}
	var out bytes.Buffer
	loop := &Loop{
		Processor: proc,
		Renderer:  NewRenderer(&out),
		In:        strings.NewReader("abrir youtube\n\n   \nque horas são\nsair\nnever reached\n"),
	}

	err := loop.REPL(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"abrir youtube", "que horas são"}, proc.inputs)
	assert.Contains(t, out.String(), ReplPrompt)
	assert.Contains(t, out.String(), "ok: abrir youtube")
}

func TestREPLStopsAtEOF(t *testing.T) {
	proc := &fakeProcessor{}
	loop := &Loop{Processor: proc, Renderer: NewRenderer(&bytes.Buffer{}), In: strings.NewReader("one")}

	assert.NoError(t, loop.REPL(context.Background()))
	assert.Equal(t, []string{"one"}, proc.inputs)
}

func TestREPLExitWordsAnyCase(t *testing.T) {
	for _, word := range []string{"sair", "EXIT", "Quit"} {
		proc := &fakeProcessor{}
		loop := &Loop{Processor: proc, Renderer: NewRenderer(&bytes.Buffer{}), In: strings.NewReader(word + "\nlate\n")}

		assert.NoError(t, loop.REPL(context.Background()))
		assert.Empty(t, proc.inputs, word)
	}
}

func TestREPLCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proc := &fakeProcessor{}
	loop := &Loop{Processor: proc, Renderer: NewRenderer(&bytes.Buffer{}), In: strings.NewReader("")}

	assert.NoError(t, loop.REPL(ctx))
}

func TestVoice(t *testing.T) {
	proc := &fakeProcessor{}
	var out bytes.Buffer
	transcripts := strings.Join([]string{
		"conversa de fundo",
		"Apex!",
		"",
		"abrir o navegador",
		"outra conversa",
		"apex que horas são",
	}, "\n")
	loop := &Loop{Processor: proc, Renderer: NewRenderer(&out), In: strings.NewReader(transcripts), WakeWord: "apex"}

	assert.NoError(t, loop.Voice(context.Background()))
	assert.Equal(t, []string{"abrir o navegador", "que horas são"}, proc.inputs)
	assert.Contains(t, out.String(), "Sim?")
}

func TestVoiceDropsWakeWordBeforeProcessing(t *testing.T) {
	proc := &fakeProcessor{}
	transcripts := strings.Join([]string{
		"Apex, abrir downloads",
		"apex",
		"Apex, criar comando backup: ls",
		"apex",
		"apex",
		"abrir youtube",
	}, "\n")
	loop := &Loop{Processor: proc, Renderer: NewRenderer(&bytes.Buffer{}), In: strings.NewReader(transcripts), WakeWord: "Apex"}

	assert.NoError(t, loop.Voice(context.Background()))
	assert.Equal(t, []string{"abrir downloads", "criar comando backup: ls", "abrir youtube"}, proc.inputs)
}

func TestVoiceWithoutWakeWord(t *testing.T) {
	proc := &fakeProcessor{}
	loop := &Loop{Processor: proc, Renderer: NewRenderer(&bytes.Buffer{}), In: strings.NewReader("abrir youtube\nque horas são\n")}

	assert.NoError(t, loop.Voice(context.Background()))
	assert.Equal(t, []string{"abrir youtube", "que horas são"}, proc.inputs)
}

func TestSplitWakeWord(t *testing.T) {
	tests := []struct {
		text      string
		wantRest  string
		wantHeard bool
	}{
		{"apex", "", true},
		{"Apex, abrir youtube", "abrir youtube", true},
		{"apexia abrir", "apexia abrir", false},
		{"abrir youtube", "abrir youtube", false},
	}

	for _, tt := range tests {
		rest, heard := splitWakeWord(tt.text, "apex")
		assert.Equal(t, tt.wantRest, rest, tt.text)
		assert.Equal(t, tt.wantHeard, heard, tt.text)
	}
}

func TestSpinnerNilSafe(t *testing.T) {
	var s *Spinner
	s.Start()
	s.Stop()
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "working")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	s.Start()
	s.Stop()

	assert.Contains(t, buf.String(), "working")
}
