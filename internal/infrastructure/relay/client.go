// Package relay forwards utterances to a running api server and mirrors the
// replies into a response file for external front ends.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/infrastructure/server"
	"github.com/doeshing/apex/internal/ports"
)

const invalidReply = "Resposta inválida do servidor"

// Client posts utterances to POST /comando.
type Client struct {
	TargetURL    string
	ResponseFile string
	HTTPClient   *http.Client
	Logger       ports.Logger
}

// NewClient builds a client with the relay timeout applied.
func NewClient(targetURL, responseFile string, logger ports.Logger) *Client {
	return &Client{
		TargetURL:    targetURL,
		ResponseFile: responseFile,
		HTTPClient:   &http.Client{Timeout: domain.DefaultRelayTimeout},
		Logger:       logger,
	}
}

// Send forwards text and returns the server reply. Transport failures are
// folded into an error reply; either way the reply is written to ResponseFile.
// The returned error is the transport failure, if any.
func (c *Client) Send(ctx context.Context, text string) (server.CommandReply, error) {
	reply, sendErr := c.post(ctx, text)
	if sendErr != nil {
		reply = server.CommandReply{Status: server.StatusError, Message: sendErr.Error()}
		c.Logger.Warn("relay send failed", map[string]interface{}{"target": c.TargetURL, "error": sendErr.Error()})
	}

	if err := c.writeResponse(reply); err != nil {
		c.Logger.Error("write response file", err, map[string]interface{}{"path": c.ResponseFile})
		if sendErr == nil {
			sendErr = err
		}
	}
	return reply, sendErr
}

func (c *Client) post(ctx context.Context, text string) (server.CommandReply, error) {
	body, err := json.Marshal(server.CommandRequest{Text: text})
	if err != nil {
		return server.CommandReply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TargetURL, bytes.NewReader(body))
	if err != nil {
		return server.CommandReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return server.CommandReply{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return server.CommandReply{}, fmt.Errorf("read reply: %w", err)
	}

	var reply server.CommandReply
	if err := json.Unmarshal(data, &reply); err != nil || reply.Status == "" {
		return server.CommandReply{Status: server.StatusError, Message: invalidReply}, nil
	}
	return reply, nil
}

func (c *Client) writeResponse(reply server.CommandReply) error {
	if c.ResponseFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.ResponseFile), domain.DirectoryPermissions); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reply); err != nil {
		return err
	}
	return os.WriteFile(c.ResponseFile, bytes.TrimRight(buf.Bytes(), "\n"), 0o644)
}

// Sender is the part of Client the bridge depends on.
type Sender interface {
	Send(ctx context.Context, text string) (server.CommandReply, error)
}

// Bridge watches a command file written by another program and forwards
// each new command through a Sender.
type Bridge struct {
	CommandFile string
	Interval    time.Duration
	Sender      Sender
	Logger      ports.Logger

	last string
}

// Poll checks the command file once. It forwards the text when it is
// non-empty and differs from the last forwarded command, then truncates the
// file. A missing file is not an error.
func (b *Bridge) Poll(ctx context.Context) (bool, error) {
	data, err := os.ReadFile(b.CommandFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	text := string(bytes.TrimSpace(data))
	if text == "" || text == b.last {
		return false, nil
	}

	b.Logger.Info("bridge command received", map[string]interface{}{"text": text})
	if _, err := b.Sender.Send(ctx, text); err != nil {
		b.Logger.Warn("bridge forward failed", map[string]interface{}{"error": err.Error()})
	}
	b.last = text

	if err := os.WriteFile(b.CommandFile, nil, 0o644); err != nil {
		return true, fmt.Errorf("truncate command file: %w", err)
	}
	return true, nil
}

// Run forwards commands until ctx is cancelled. File system events on the
// command file trigger an immediate poll; the ticker still polls every
// Interval for file systems without change notification.
func (b *Bridge) Run(ctx context.Context) error {
	interval := b.Interval
	if interval <= 0 {
		interval = domain.DefaultBridgePollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	watcher, err := b.watch()
	if err != nil {
		b.Logger.Warn("bridge file watch unavailable, polling only", map[string]interface{}{"error": err.Error()})
	} else {
		defer watcher.Close()
		events = watcher.Events
	}

	b.Logger.Info("bridge started", map[string]interface{}{"file": b.CommandFile, "interval": interval.String()})
	for {
		if _, err := b.Poll(ctx); err != nil {
			b.Logger.Error("bridge poll", err, nil)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(b.CommandFile) {
				continue
			}
		}
	}
}

// watch subscribes to the directory holding the command file, so the file
// may be created after the bridge starts.
func (b *Bridge) watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(b.CommandFile)); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}
