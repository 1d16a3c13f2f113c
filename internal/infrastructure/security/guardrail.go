// Package security screens user-taught command lines before they reach the shell.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// ErrBlocked is wrapped by every rejection.
var ErrBlocked = errors.New("command blocked by guardrail")

// Guardrail implements ports.CommandGuard with regular-expression rules.
type Guardrail struct {
	rules []compiledRule
}

type compiledRule struct {
	re   *regexp.Regexp
	rule domain.GuardRule
}

// NewGuardrail compiles the built-in rules plus extra.
func NewGuardrail(extra []domain.GuardRule) (*Guardrail, error) {
	all := append(DefaultRules(), extra...)
	compiled := make([]compiledRule, 0, len(all))
	for _, rule := range all {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("guardrail pattern %q: %w", rule.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, rule: rule})
	}
	return &Guardrail{rules: compiled}, nil
}

// Check returns an error wrapping ErrBlocked that lists every matched rule,
// or nil when line is allowed.
func (g *Guardrail) Check(line string) error {
	var reasons []string
	for _, r := range g.rules {
		if r.re.MatchString(line) {
			reasons = append(reasons, r.rule.Message)
		}
	}
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBlocked, strings.Join(reasons, "; "))
}

// Len reports how many rules are active.
func (g *Guardrail) Len() int {
	return len(g.rules)
}

// DefaultRules block destructive commands a voice command should never run.
func DefaultRules() []domain.GuardRule {
	return []domain.GuardRule{
		{Pattern: `rm\s+-[a-zA-Z]*r[a-zA-Z]*f?\s+/(\s|$)`, Message: "deleting the root directory"},
		{Pattern: `rm\s+-[a-zA-Z]*r[a-zA-Z]*\s+(~|\$HOME)/?(\s|$)`, Message: "deleting the home directory"},
		{Pattern: `rm\s+-rf\s+\*`, Message: "recursive delete of everything"},
		{Pattern: `dd\s+if=`, Message: "raw disk writing"},
		{Pattern: `mkfs(\.|\s)`, Message: "formatting a filesystem"},
		{Pattern: `>\s*/dev/(sd[a-z]|nvme)`, Message: "writing to a block device"},
		{Pattern: `(curl|wget)[^|]*\|\s*(sudo\s+)?(ba)?sh`, Message: "piping a remote script to a shell"},
		{Pattern: `:\(\)\s*\{\s*:\|:&\s*\};:`, Message: "fork bomb"},
		{Pattern: `(?i)\b(shutdown|reboot|halt)\b`, Message: "powering off the machine"},
		{Pattern: `(?i)format\s+[a-z]:`, Message: "formatting a drive"},
		{Pattern: `(?i)\bdel\s+/[sq]`, Message: "recursive delete on Windows"},
	}
}

var _ ports.CommandGuard = (*Guardrail)(nil)
