package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/pkg/logger"
)

type recordingProcessor struct {
	mu      sync.Mutex
	records []domain.OutcomeRecord
}

func (p *recordingProcessor) Process(_ context.Context, utterance string) domain.OutcomeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := domain.OutcomeRecord{
		ID:       "id-" + utterance,
		Input:    utterance,
		Command:  strings.ToLower(utterance),
		Route:    domain.RouteLocalCommand,
		Response: "done: " + utterance,
		Success:  true,
	}
	p.records = append(p.records, rec)
	return rec
}

func (p *recordingProcessor) History() []domain.OutcomeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OutcomeRecord(nil), p.records...)
}

func newTestServer() (*Server, *recordingProcessor) {
	proc := &recordingProcessor{}
	return New("127.0.0.1:0", proc, logger.Nop()), proc
}

func TestCommandHandler(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		wantStatus  int
		wantReply   string
		wantMessage string
	}{
		{"processes text", http.MethodPost, `{"texto":"abrir youtube"}`, http.StatusOK, StatusOK, "done: abrir youtube"},
		{"empty text", http.MethodPost, `{"texto":"   "}`, http.StatusBadRequest, StatusError, "Comando vazio"},
		{"missing field", http.MethodPost, `{}`, http.StatusBadRequest, StatusError, "Comando vazio"},
		{"bad json", http.MethodPost, `{texto`, http.StatusInternalServerError, StatusError, ""},
		{"wrong method", http.MethodGet, ``, http.StatusMethodNotAllowed, StatusError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer()
			req := httptest.NewRequest(tt.method, "/comando", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var reply CommandReply
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
			assert.Equal(t, tt.wantReply, reply.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, reply.Message)
			}
		})
	}
}

func TestCommandHandlerRejectsOversizedBody(t *testing.T) {
	srv, proc := newTestServer()
	body := `{"texto":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/comando", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var reply CommandReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, StatusError, reply.Status)
	assert.Equal(t, "Comando muito grande", reply.Message)
	assert.Empty(t, proc.History())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `apex_rejected_requests_total{reason="size",transport="http"} 1`)
}

func TestWebsocketRejectsOversizedFrame(t *testing.T) {
	srv, proc := newTestServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("a", maxBodyBytes+1))))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Empty(t, proc.History())
}

func TestCommandHandlerIncludesOutcome(t *testing.T) {
	srv, proc := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/comando", strings.NewReader(`{"texto":"que horas são"}`))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	var reply CommandReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotNil(t, reply.Outcome)
	assert.Equal(t, "que horas são", reply.Outcome.Input)
	assert.Len(t, proc.History(), 1)
}

func TestHistoryAndHealth(t *testing.T) {
	srv, proc := newTestServer()
	srv.Version = "1.2.3"
	proc.Process(context.Background(), "one")
	proc.Process(context.Background(), "two")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var records []domain.OutcomeRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "one", records[0].Input)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health HealthReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, 2, health.Processed)
}

func TestWebsocketRoundTrip(t *testing.T) {
	srv, _ := newTestServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("abrir navegador")))
	var record domain.OutcomeRecord
	require.NoError(t, conn.ReadJSON(&record))
	assert.Equal(t, "abrir navegador", record.Input)
	assert.True(t, record.Success)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("  ")))
	var reply CommandReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, StatusError, reply.Status)
	assert.Equal(t, "Comando vazio", reply.Message)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()

	for _, body := range []string{`{"texto":"abrir youtube"}`, `{"texto":""}`} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/comando", strings.NewReader(body)))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	out := w.Body.String()
	assert.Contains(t, out, `apex_utterances_total{route="LOCAL_COMMAND",success="true",transport="http"} 1`)
	assert.Contains(t, out, `apex_rejected_requests_total{reason="empty",transport="http"} 1`)
	assert.Contains(t, out, "apex_utterance_duration_seconds_bucket")
}
