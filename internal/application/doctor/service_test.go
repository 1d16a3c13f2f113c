package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
)

type staticConfig struct {
	cfg domain.Config
	err error
}

func (s staticConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type pathLauncher map[string]string

func (pathLauncher) Open(context.Context, string) error             { return nil }
func (pathLauncher) Start(context.Context, string, ...string) error { return nil }

func (p pathLauncher) LookPath(program string) (string, error) {
	if path, ok := p[program]; ok {
		return path, nil
	}
	return "", errors.New("not found")
}

type stubConversations struct {
	err error
}

func (s stubConversations) SaveTurn(domain.ConversationTurn) error { return nil }
func (s stubConversations) Turns(int) ([]domain.ConversationTurn, error) {
	return nil, s.err
}
func (s stubConversations) SetVariable(string, string) error { return nil }
func (s stubConversations) Variable(string) (string, bool, error) {
	return "", false, nil
}
func (s stubConversations) ExportJSON(string) error { return nil }
func (s stubConversations) Clear() error            { return nil }
func (s stubConversations) Path() string            { return "/tmp/history.db" }
func (s stubConversations) Close() error            { return nil }

func baseConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Knowledge:           domain.KnowledgeSettings{DefaultModel: "perplexity"},
		Models: []domain.ModelDefinition{
			{Name: "perplexity", ModelID: "sonar", AuthEnvVar: "PERPLEXITY_API_KEY"},
		},
		Search: domain.SearchSettings{Endpoint: "https://html.duckduckgo.com/html/?q=%s"},
	}
}

func findCheck(t *testing.T, report domain.HealthReport, name string) domain.HealthCheck {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %+v", name, report.Checks)
	return domain.HealthCheck{}
}

func TestDoctorHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: staticConfig{cfg: baseConfig()},
		Launcher:       pathLauncher{"xdg-open": "/usr/bin/xdg-open", "code": "/usr/bin/code"},
		Conversations:  stubConversations{},
		Getenv:         func(string) string { return "key" },
		GOOS:           "linux",
	}

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	for _, c := range report.Checks {
		assert.Equal(t, domain.HealthOK, c.Status, c.Name)
	}
	assert.Equal(t, "/tmp/history.db", findCheck(t, report, "History store").Details)
}

func TestDoctorMissingKeyInAutoModeWarns(t *testing.T) {
	svc := &Service{
		ConfigProvider: staticConfig{cfg: baseConfig()},
		Launcher:       pathLauncher{},
		Conversations:  stubConversations{},
		Getenv:         func(string) string { return "" },
		GOOS:           "darwin",
	}

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	assert.Equal(t, domain.HealthWarn, findCheck(t, report, "Knowledge").Status)
	assert.Equal(t, domain.HealthWarn, findCheck(t, report, "API key perplexity").Status)
	assert.Contains(t, findCheck(t, report, "Desktop opener").Details, "open not found")
}

func TestDoctorChatStrategyWithoutKeyFails(t *testing.T) {
	cfg := baseConfig()
	cfg.Knowledge.Strategy = domain.StrategyChat
	svc := &Service{
		ConfigProvider: staticConfig{cfg: cfg},
		Conversations:  stubConversations{err: errors.New("database is locked")},
		Getenv:         func(string) string { return "" },
	}

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, report.HasErrors())
	assert.Equal(t, domain.HealthError, findCheck(t, report, "Knowledge").Status)
	assert.Equal(t, domain.HealthError, findCheck(t, report, "History store").Status)
	assert.Equal(t, domain.HealthWarn, findCheck(t, report, "Launcher").Status)
}

func TestDoctorConfigLoadFailure(t *testing.T) {
	svc := &Service{ConfigProvider: staticConfig{err: errors.New("permission denied")}}

	report, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.True(t, report.HasErrors())
	assert.Len(t, report.Checks, 1)
}
