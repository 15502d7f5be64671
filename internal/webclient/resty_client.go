package webclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raysh454/repview/internal/logging"
)

// RestyClient is a WebClient backed by go-resty.
type RestyClient struct {
	client *resty.Client
	logger logging.Logger
}

// NewRestyClient builds a resty client with cfg's timeout and user agent.
func NewRestyClient(cfg Config, logger logging.Logger) (*RestyClient, error) {
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "resty"})

	client := resty.New().SetTimeout(cfg.timeout())
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	componentLogger.Info("created resty webclient",
		logging.Field{Key: "timeout", Value: cfg.timeout().String()})

	return &RestyClient{client: client, logger: componentLogger}, nil
}

func (rc *RestyClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrDispatch)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	// resty reports URL errors from the transport; catch them up front so
	// they stay distinguishable from connection failures.
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrDispatch, err)
	}

	r := rc.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaderMultiValues(req.Headers)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	rc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		rc.logger.Warn("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("resty execute: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       resp.Body(),
		Headers:    resp.Header(),
		StatusCode: resp.StatusCode(),
		FetchedAt:  time.Now(),
	}, nil
}

func (rc *RestyClient) Close() error {
	rc.logger.Info("closing resty webclient")
	rc.client.GetClient().CloseIdleConnections()
	return nil
}
