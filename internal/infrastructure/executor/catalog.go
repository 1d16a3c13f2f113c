// Package executor implements the local action catalog: opening sites,
// applications and folders, telling the time and running user commands.
package executor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/pkg/filesystem"
	"github.com/doeshing/apex/internal/ports"
)

// NotRecognized is returned for commands outside the catalog.
const NotRecognized = "Command not recognized."

const (
	defaultYouTubeURL = "https://www.youtube.com"
	defaultBrowserURL = "https://www.google.com"
	defaultSearchURL  = "https://www.google.com/search?q=%s"
	defaultEditorBin  = "code"

	userCommandPrefix = "command:"
)

// CommandStore persists commands taught with "create command".
type CommandStore interface {
	SetVariable(key, value string) error
	Variable(key string) (string, bool, error)
}

// Catalog implements ports.ActionExecutor.
type Catalog struct {
	Settings domain.ActionSettings
	Launcher ports.Launcher
	Runner   ports.CommandRunner
	Commands CommandStore
	Guard    ports.CommandGuard
	Logger   ports.Logger

	// CreatePhrases mark a "create command" utterance.
	CreatePhrases []string

	// Clock, HomeDir and GOOS are replaceable in tests.
	Clock   func() time.Time
	HomeDir string
	GOOS    string
}

// Execute performs the side effect for one canonical command. Unknown
// commands return NotRecognized and a nil error.
func (c *Catalog) Execute(ctx context.Context, command string) (string, error) {
	cmd := strings.Join(strings.Fields(strings.ToLower(command)), " ")

	switch cmd {
	case "":
		return NotRecognized, nil
	case domain.CommandOpenYouTube:
		return c.openURL(ctx, orDefault(c.Settings.YouTube, defaultYouTubeURL), "Opening YouTube.")
	case domain.CommandOpenBrowser:
		return c.openURL(ctx, orDefault(c.Settings.Browser, defaultBrowserURL), "Opening the browser.")
	case domain.CommandOpenBrowserChrome:
		return c.startFirst(ctx, c.chromeCandidates(), "Opening Google Chrome.", "Google Chrome was not found on this system.")
	case domain.CommandOpenVSCode:
		editor := orDefault(c.Settings.EditorBin, defaultEditorBin)
		return c.startFirst(ctx, [][]string{{editor}}, "Opening VS Code.", "VS Code was not found on this system.")
	case domain.CommandWhatTime:
		return fmt.Sprintf("It is %s.", c.now().Format("15:04")), nil
	}

	if cmd == domain.CommandSearchFor || strings.HasPrefix(cmd, domain.CommandSearchFor+" ") {
		return c.searchWeb(ctx, strings.TrimSpace(strings.TrimPrefix(cmd, domain.CommandSearchFor)))
	}
	if phrase, ok := c.createPhrase(cmd); ok {
		return c.defineCommand(definitionBody(command, cmd, phrase))
	}
	if line, ok := c.Settings.Custom[cmd]; ok {
		return c.runUserCommand(ctx, cmd, line)
	}
	if line, ok := c.storedCommand(cmd); ok {
		return c.runUserCommand(ctx, cmd, line)
	}
	if containsAny(cmd, "bloco de notas", "notepad", "text editor", "editor de texto") {
		return c.startFirst(ctx, appCandidates(c.goos(), appTextEditor), "Opening the text editor.", "No text editor was found on this system.")
	}
	if containsAny(cmd, "calculadora", "calculator") {
		return c.startFirst(ctx, appCandidates(c.goos(), appCalculator), "Opening the calculator.", "No calculator was found on this system.")
	}
	if name, path, ok := c.matchFolder(cmd); ok {
		return c.openFolder(ctx, name, path)
	}

	c.log().Debug("command not recognized", map[string]interface{}{"command": cmd})
	return NotRecognized, nil
}

func (c *Catalog) openURL(ctx context.Context, target, message string) (string, error) {
	if err := c.Launcher.Open(ctx, target); err != nil {
		return "", fmt.Errorf("open %s: %w", target, err)
	}
	return message, nil
}

// startFirst launches the first candidate that resolves to an executable.
func (c *Catalog) startFirst(ctx context.Context, candidates [][]string, message, missing string) (string, error) {
	for _, argv := range candidates {
		program, ok := c.resolve(argv[0])
		if !ok {
			continue
		}
		if err := c.Launcher.Start(ctx, program, argv[1:]...); err != nil {
			return "", err
		}
		return message, nil
	}
	return missing, nil
}

func (c *Catalog) resolve(program string) (string, bool) {
	program = os.ExpandEnv(program)
	if strings.ContainsAny(program, `/\`) {
		if _, err := os.Stat(program); err == nil {
			return program, true
		}
		return "", false
	}
	path, err := c.Launcher.LookPath(program)
	if err != nil {
		return "", false
	}
	return path, true
}

func (c *Catalog) searchWeb(ctx context.Context, term string) (string, error) {
	if term == "" {
		return "Nothing to search for.", nil
	}
	pattern := orDefault(c.Settings.SearchURL, defaultSearchURL)
	target := fmt.Sprintf(pattern, url.QueryEscape(term))
	return c.openURL(ctx, target, fmt.Sprintf("Searching the web for %q.", term))
}

// createPhrase finds a create phrase anywhere in cmd on a word boundary, so a
// leading wake word or filler ("apex, criar comando ...") is tolerated.
func (c *Catalog) createPhrase(cmd string) (string, bool) {
	phrases := c.CreatePhrases
	if len(phrases) == 0 {
		phrases = domain.DefaultVocabulary().CreateCommand
	}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && indexWord(cmd, p) >= 0 {
			return p, true
		}
	}
	return "", false
}

// definitionBody returns the text after the create phrase, keeping the
// spacing of the command line when possible.
func definitionBody(command, cmd, phrase string) string {
	raw := strings.ToLower(strings.TrimSpace(command))
	if idx := indexWord(raw, phrase); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(phrase):])
	}
	idx := indexWord(cmd, phrase)
	return strings.TrimSpace(cmd[idx+len(phrase):])
}

// indexWord is strings.Index restricted to matches that start a word.
func indexWord(text, phrase string) int {
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], phrase)
		if idx < 0 {
			return -1
		}
		idx += from
		if idx == 0 || !isWordByte(text[idx-1]) {
			return idx
		}
		from = idx + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	r := rune(b)
	return r >= utf8.RuneSelf || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// defineCommand stores "<name>: <command line>" taught with "create command".
func (c *Catalog) defineCommand(rest string) (string, error) {
	sep := strings.IndexAny(rest, ":=")
	if sep < 0 {
		return "Usage: create command <name>: <command line>", nil
	}
	name := strings.Join(strings.Fields(strings.ToLower(rest[:sep])), " ")
	line := strings.TrimSpace(rest[sep+1:])
	if name == "" || line == "" {
		return "Usage: create command <name>: <command line>", nil
	}
	if c.Commands == nil {
		return "", fmt.Errorf("no command store configured")
	}
	if err := c.vet(line); err != nil {
		return "", err
	}
	if err := c.Commands.SetVariable(userCommandPrefix+name, line); err != nil {
		return "", fmt.Errorf("save command %q: %w", name, err)
	}
	return fmt.Sprintf("Command %q saved.", name), nil
}

func (c *Catalog) storedCommand(cmd string) (string, bool) {
	if c.Commands == nil {
		return "", false
	}
	line, ok, err := c.Commands.Variable(userCommandPrefix + cmd)
	if err != nil {
		c.log().Warn("load stored command failed", map[string]interface{}{"command": cmd, "error": err.Error()})
		return "", false
	}
	return line, ok
}

func (c *Catalog) runUserCommand(ctx context.Context, name, line string) (string, error) {
	if c.Runner == nil {
		return "", fmt.Errorf("no command runner configured")
	}
	if err := c.vet(line); err != nil {
		return "", err
	}
	c.log().Info("running user command", map[string]interface{}{"name": name, "command": line})
	result, err := c.Runner.Run(ctx, line)
	if err != nil {
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("command %q failed: %s", name, detail)
	}
	if out := strings.TrimSpace(result.Stdout); out != "" {
		return fmt.Sprintf("Ran %q:\n%s", name, out), nil
	}
	return fmt.Sprintf("Ran %q.", name), nil
}

func (c *Catalog) vet(line string) error {
	if c.Guard == nil {
		return nil
	}
	if err := c.Guard.Check(line); err != nil {
		c.log().Warn("user command rejected", map[string]interface{}{"command": line, "error": err.Error()})
		return err
	}
	return nil
}

func (c *Catalog) matchFolder(cmd string) (string, string, bool) {
	folders := map[string]string{"downloads": filepath.Join(c.homeDir(), "Downloads")}
	for name, path := range c.Settings.Folders {
		folders[strings.ToLower(name)] = path
	}

	names := make([]string, 0, len(folders))
	for name := range folders {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	// The verb may follow a wake word or filler; the folder name ends the line.
	tokens := strings.Fields(cmd)
	verb := -1
	for i, tok := range tokens {
		if folderVerbs[strings.TrimFunc(tok, unicode.IsPunct)] {
			verb = i
			break
		}
	}
	if verb < 0 {
		return "", "", false
	}
	tail := " " + strings.TrimRightFunc(strings.Join(tokens[verb+1:], " "), unicode.IsPunct)
	for _, name := range names {
		if strings.HasSuffix(tail, " "+name) {
			return name, filesystem.ExpandPath(folders[name], c.homeDir()), true
		}
	}
	return "", "", false
}

var folderVerbs = map[string]bool{"open": true, "abrir": true, "abre": true}

func (c *Catalog) openFolder(ctx context.Context, name, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("The %s folder was not found.", name), nil
	}
	return c.openURL(ctx, path, fmt.Sprintf("Opening the %s folder.", name))
}

func (c *Catalog) chromeCandidates() [][]string {
	paths := c.Settings.ChromeBin
	if len(paths) == 0 {
		paths = defaultChromePaths(c.goos())
	}
	out := make([][]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, []string{p})
	}
	return out
}

func (c *Catalog) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c *Catalog) goos() string {
	if c.GOOS != "" {
		return c.GOOS
	}
	return runtime.GOOS
}

func (c *Catalog) homeDir() string {
	if c.HomeDir != "" {
		return c.HomeDir
	}
	return filesystem.UserHomeDir()
}

func (c *Catalog) log() ports.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return nopLogger{}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}

var _ ports.ActionExecutor = (*Catalog)(nil)
