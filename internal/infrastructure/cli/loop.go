package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/doeshing/apex/internal/ports"
)

// ReplPrompt is printed before each interactive line.
const ReplPrompt = "APEX> "

var exitWords = map[string]bool{"sair": true, "exit": true, "quit": true}

// Loop drives the interactive and voice front ends over one Processor.
type Loop struct {
	Processor ports.Processor
	Renderer  *Renderer
	In        io.Reader
	// Spinner is shown while an utterance is processed; nil disables it.
	Spinner *Spinner
	// WakeWord arms voice mode.
	WakeWord string
}

// REPL reads utterances line by line until an exit word, EOF or cancellation.
// Blank lines are skipped.
func (l *Loop) REPL(ctx context.Context) error {
	lines := l.lines(ctx)
	for {
		l.Renderer.Prompt(ReplPrompt)
		line, ok := next(ctx, lines)
		if !ok {
			return nil
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if exitWords[strings.ToLower(text)] {
			l.Renderer.Notice("Até logo.")
			return nil
		}
		l.process(ctx, text)
	}
}

// Voice reads transcripts produced by an external speech front end, one per
// line. A transcript that is only the wake word arms the loop and the next
// non-empty transcript is processed. A transcript carrying the wake word and
// more words is processed at once, without the wake word.
func (l *Loop) Voice(ctx context.Context) error {
	wake := strings.ToLower(strings.TrimSpace(l.WakeWord))
	armed := false
	lines := l.lines(ctx)
	for {
		line, ok := next(ctx, lines)
		if !ok {
			return nil
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if exitWords[strings.ToLower(text)] {
			return nil
		}

		switch rest, heard := splitWakeWord(text, wake); {
		case heard && rest == "":
			armed = true
			l.Renderer.Notice("Sim?")
		case heard:
			armed = false
			l.process(ctx, rest)
		case armed:
			armed = false
			l.process(ctx, text)
		}
	}
}

func (l *Loop) process(ctx context.Context, text string) {
	l.Spinner.Start()
	rec := l.Processor.Process(ctx, text)
	l.Spinner.Stop()
	l.Renderer.Outcome(rec)
}

// lines streams input lines until EOF or ctx is cancelled.
func (l *Loop) lines(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(l.In)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// next returns the following line, or false on EOF or cancellation.
func next(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

// splitWakeWord reports whether text contains wake as a word and returns the
// text with the wake word removed.
func splitWakeWord(text, wake string) (string, bool) {
	if wake == "" {
		return text, true
	}
	heard := false
	var rest []string
	for _, token := range strings.Fields(text) {
		if strings.Trim(strings.ToLower(token), ",.!?;:") == wake {
			heard = true
			continue
		}
		rest = append(rest, token)
	}
	return strings.Join(rest, " "), heard
}
