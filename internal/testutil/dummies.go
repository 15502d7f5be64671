// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings recorded so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it answers 200 with Body. Set Status to change the code, Err to
// fail every request, or Handler to compute responses per request.
type DummyWebClient struct {
	Status        int
	Body          string
	Err           error
	Panic         any
	ResponseDelay time.Duration
	Handler       func(req *webclient.Request) (*webclient.Response, error)

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.Panic != nil {
		panic(d.Panic)
	}

	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.Handler != nil {
		return d.Handler(req)
	}
	if d.Err != nil {
		return nil, d.Err
	}

	status := d.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &webclient.Response{
		Request:    req,
		Body:       []byte(d.Body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// RequestURLs returns the URLs requested so far, in order.
func (d *DummyWebClient) RequestURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Requests))
	for _, r := range d.Requests {
		out = append(out, r.URL)
	}
	return out
}

// ─── Discord ───────────────────────────────────────────────────────────

// DummySender implements announcer.Sender by recording sent messages.
type DummySender struct {
	Err error

	mu   sync.Mutex
	Sent []string
}

func (d *DummySender) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sent = append(d.Sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (d *DummySender) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Sent...)
}

// DummyNotifier records announced snapshots.
type DummyNotifier struct {
	Err error

	mu        sync.Mutex
	Snapshots []*store.Snapshot
	Chunks    [][]store.Chunk
}

func (d *DummyNotifier) Announce(_ context.Context, snap *store.Snapshot, chunks []store.Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Snapshots = append(d.Snapshots, snap)
	d.Chunks = append(d.Chunks, chunks)
	return d.Err
}

func (d *DummyNotifier) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Snapshots)
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }

// NewError returns a plain error with the given message.
func NewError(msg string) error { return &errString{msg} }
