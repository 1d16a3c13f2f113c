package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/apex/internal/domain"
)

// Renderer prints outcome records and reports in a compact, styled layout.
// Styles degrade to plain text when out is not a terminal.
type Renderer struct {
	out io.Writer

	name    lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
	prompt  lipgloss.Style
	message lipgloss.Style
}

// NewRenderer creates a renderer bound to out.
func NewRenderer(out io.Writer) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:     out,
		name:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		ok:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("243")),
		prompt:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		message: r.NewStyle().PaddingLeft(2),
	}
}

// Banner prints the startup line.
func (r *Renderer) Banner(name, version, mode string) {
	fmt.Fprintf(r.out, "%s %s %s\n", r.name.Render(name), r.dim.Render("v"+version), r.dim.Render("("+mode+" mode)"))
}

// Prompt prints the REPL prompt without a newline.
func (r *Renderer) Prompt(text string) {
	fmt.Fprint(r.out, r.prompt.Render(text))
}

// Notice prints a dim informational line.
func (r *Renderer) Notice(text string) {
	fmt.Fprintln(r.out, r.dim.Render(text))
}

// Outcome prints one outcome record: a status line followed by the response.
func (r *Renderer) Outcome(rec domain.OutcomeRecord) {
	status := r.ok.Render("OK")
	if !rec.Success {
		status = r.fail.Render("ERROR")
	}
	meta := fmt.Sprintf("%s %s · %dms", routeLabel(rec.Route), rec.Command, rec.DurationMS)
	fmt.Fprintf(r.out, "%s %s\n", status, r.dim.Render(meta))
	for _, line := range strings.Split(strings.TrimRight(rec.Response, "\n"), "\n") {
		fmt.Fprintln(r.out, r.message.Render(line))
	}
}

// HealthReport prints one line per doctor check.
func (r *Renderer) HealthReport(report domain.HealthReport) {
	for _, check := range report.Checks {
		text, style := "[FAIL]", r.fail
		switch check.Status {
		case domain.HealthOK:
			text, style = "[OK]", r.ok
		case domain.HealthWarn:
			text, style = "[WARN]", r.warn
		}
		pad := strings.Repeat(" ", 7-len(text))
		fmt.Fprintf(r.out, "%s%s%s %s\n", style.Render(text), pad, check.Name, r.dim.Render(check.Details))
	}
}

func routeLabel(route domain.Route) string {
	switch route {
	case domain.RouteKnowledgeQuery:
		return "knowledge"
	case domain.RouteLocalCommand:
		return "local"
	default:
		return "-"
	}
}
