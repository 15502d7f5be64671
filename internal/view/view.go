// Package view fetches the replacements fragment from the backend and renders
// it, or an error line, into the content container.
package view

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/webclient"
)

const (
	ReasonOK               = "ok"
	ReasonConnectionFailed = "connection failed"
	ReasonXHRFailure       = "xhr failure"
)

// Outcome is the single result of one request: the response body with
// reason "ok", or an empty Text and a reason describing the failure.
type Outcome struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Failed reports whether there is no payload to render.
func (o Outcome) Failed() bool { return o.Text == "" }

// Rendered is the markup the container receives for this outcome.
func (o Outcome) Rendered() string {
	if o.Text == "" {
		return "error: " + o.Reason
	}
	return o.Text
}

// View issues GETs against the backend and renders results into a Container.
type View struct {
	cfg       Config
	client    webclient.WebClient
	container Container
	logger    logging.Logger
	now       func() time.Time

	lastTS atomic.Int64
}

type Option func(*View)

// WithClock overrides the time source used for the ts parameter.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

func New(cfg Config, client webclient.WebClient, container Container, logger logging.Logger, opts ...Option) *View {
	if cfg.Resource == "" {
		cfg.Resource = DefaultResource
	}
	v := &View{
		cfg:       cfg,
		client:    client,
		container: container,
		logger:    logger.With(logging.Field{Key: "component", Value: "view"}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Main is the page-load entry point: it runs one Update.
func (v *View) Main(ctx context.Context) <-chan Outcome {
	v.logger.Debug("page loaded", logging.Field{Key: "resource", Value: v.cfg.Resource})
	return v.Update(ctx)
}

// Update requests the configured resource and renders the outcome into the
// container. It returns immediately; the channel yields the outcome once,
// after the container has been updated, and is then closed.
func (v *View) Update(ctx context.Context) <-chan Outcome {
	return v.dispatch(ctx, v.cfg.Resource, v.cfg.Query, v.render)
}

// Fetch requests resource with the cache-busting ts parameter followed by
// query, without rendering. The channel yields exactly one outcome.
func (v *View) Fetch(ctx context.Context, resource, query string) <-chan Outcome {
	return v.dispatch(ctx, resource, query, nil)
}

// RequestURL builds "<base><resource>?ts=<ts><query>". query is appended
// verbatim, so it should start with "&" when non-empty.
func (v *View) RequestURL(resource, query string, ts int64) (string, error) {
	raw := strings.TrimRight(v.cfg.BaseURL, "/") + resource + "?ts=" + strconv.FormatInt(ts, 10) + query

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("request url %q is not absolute", raw)
	}
	return raw, nil
}

// timestamp returns epoch millis that never go backwards for this View.
func (v *View) timestamp() int64 {
	now := v.now().UnixMilli()
	for {
		last := v.lastTS.Load()
		if now <= last {
			return last
		}
		if v.lastTS.CompareAndSwap(last, now) {
			return now
		}
	}
}

func (v *View) dispatch(ctx context.Context, resource, query string, complete func(Outcome)) <-chan Outcome {
	out := make(chan Outcome, 1)
	ts := v.timestamp()

	go func() {
		defer close(out)
		o := v.roundTrip(ctx, resource, query, ts)
		if complete != nil {
			complete(o)
		}
		out <- o
	}()

	return out
}

func (v *View) roundTrip(ctx context.Context, resource, query string, ts int64) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("request dispatch panicked", logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			o = Outcome{Reason: ReasonXHRFailure}
		}
	}()

	target, err := v.RequestURL(resource, query, ts)
	if err != nil {
		v.logger.Warn("building request failed", logging.Field{Key: "error", Value: err.Error()})
		return Outcome{Reason: ReasonXHRFailure}
	}

	resp, err := v.client.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: target})
	if err != nil {
		if webclient.IsDispatchError(err) {
			v.logger.Warn("request dispatch failed",
				logging.Field{Key: "url", Value: target},
				logging.Field{Key: "error", Value: err.Error()})
			return Outcome{Reason: ReasonXHRFailure}
		}
		v.logger.Warn("request failed",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "error", Value: err.Error()})
		return Outcome{Reason: "0 - " + ReasonConnectionFailed}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return Outcome{Text: string(resp.Body), Reason: ReasonOK}
	case 0:
		return Outcome{Reason: "0 - " + ReasonConnectionFailed}
	default:
		return Outcome{Reason: fmt.Sprintf("%d - %s", resp.StatusCode, resp.Body)}
	}
}

func (v *View) render(o Outcome) {
	if o.Failed() {
		v.logger.Warn("rendering error", logging.Field{Key: "reason", Value: o.Reason})
	} else {
		v.logger.Debug("rendering content", logging.Field{Key: "bytes", Value: len(o.Text)})
	}
	v.container.SetContent(o.Rendered())
}
