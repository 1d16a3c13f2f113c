// Package orchestrator runs one utterance through interpretation, routing and
// execution and keeps the in-memory outcome history.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// ErrorPrefix starts the response text of every failed outcome.
const ErrorPrefix = "Error: "

// Service is the assistant's request/response loop. One Service is built at
// startup and shared by every transport.
type Service struct {
	Name    string
	Version string

	Classifier ports.Classifier
	Router     ports.Router
	Executor   ports.ActionExecutor
	Knowledge  ports.KnowledgeService
	Logger     ports.Logger

	// Clock and NewID are replaceable in tests.
	Clock func() time.Time
	NewID func() string

	history History
}

// Process classifies, routes and executes one utterance. Failures of the
// executor or knowledge service are returned as a failed record, never as an
// error. The record is appended to History exactly once.
//
// Callers must not pass blank input; doing so yields a failed record that is
// not added to History and no collaborator is called.
func (s *Service) Process(ctx context.Context, utterance string) domain.OutcomeRecord {
	start := s.now()
	rec := domain.OutcomeRecord{
		ID:    s.newID(),
		Input: utterance,
		Route: domain.RouteLocalCommand,
	}

	if strings.TrimSpace(utterance) == "" {
		rec.Response = ErrorPrefix + domain.ErrEmptyUtterance.Error()
		rec.Timestamp = start
		return rec
	}

	s.dispatch(ctx, &rec)
	rec.DurationMS = s.now().Sub(start).Milliseconds()
	rec = s.history.append(rec, s.now)

	s.log().Info("utterance processed", map[string]interface{}{
		"id":          rec.ID,
		"route":       string(rec.Route),
		"command":     rec.Command,
		"success":     rec.Success,
		"duration_ms": rec.DurationMS,
	})
	return rec
}

// History returns a copy of every outcome recorded so far.
func (s *Service) History() []domain.OutcomeRecord {
	return s.history.Records()
}

// HistoryLen returns the number of recorded outcomes.
func (s *Service) HistoryLen() int {
	return s.history.Len()
}

func (s *Service) dispatch(ctx context.Context, rec *domain.OutcomeRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.log().Error("collaborator panicked", fmt.Errorf("%v", r), map[string]interface{}{"input": rec.Input})
			rec.Response = fmt.Sprintf("%s%v", ErrorPrefix, r)
			rec.Success = false
		}
	}()

	rec.Command = s.Classifier.Classify(rec.Input)
	decision := s.Router.Route(rec.Input, rec.Command)
	rec.Route = decision.Target

	var (
		response string
		err      error
	)
	switch decision.Target {
	case domain.RouteKnowledgeQuery:
		response, err = s.Knowledge.Query(ctx, decision.Payload)
	default:
		response, err = s.Executor.Execute(ctx, decision.Payload)
	}
	if err != nil {
		s.log().Warn("external call failed", map[string]interface{}{
			"route": string(decision.Target),
			"error": err.Error(),
		})
		rec.Response = ErrorPrefix + err.Error()
		return
	}
	rec.Response = response
	rec.Success = true
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) log() ports.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}
