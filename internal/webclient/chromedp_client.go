package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/repview/internal/logging"
)

// ChromedpClient loads pages in headless Chrome and, once the network has
// gone idle, returns the inner markup of WaitSelector. Without a selector it
// returns the document body as the server sent it. Only GET is supported.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	timeout     time.Duration
	selector    string
	userAgent   string
	logger      logging.Logger
}

// NewChromedpClient starts a browser allocator; tabs are opened per request.
func NewChromedpClient(cfg Config, logger logging.Logger, opts ...chromedp.ExecAllocatorOption) (*ChromedpClient, error) {
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", cfg.headless()),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocOpts = append(allocOpts, opts...)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	componentLogger.Info("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: cfg.idleAfter().String()},
		logging.Field{Key: "timeout", Value: cfg.timeout().String()},
		logging.Field{Key: "selector", Value: cfg.WaitSelector})

	return &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		idleAfter:   cfg.idleAfter(),
		timeout:     cfg.timeout(),
		selector:    cfg.WaitSelector,
		userAgent:   cfg.UserAgent,
		logger:      componentLogger,
	}, nil
}

// waitNetworkIdle signals once no request has been in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{}, 1)
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					idleChan <- struct{}{}
				})
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

// documentStatus records the status and headers of the main document.
type documentStatus struct {
	mu      sync.Mutex
	seen    bool
	status  int
	headers http.Header
}

func (d *documentStatus) listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.seen {
			return
		}
		d.seen = true
		d.status = int(e.Response.Status)
		d.headers = http.Header{}
		for k, v := range e.Response.Headers {
			d.headers.Set(k, fmt.Sprint(v))
		}
	})
}

func (d *documentStatus) get() (int, http.Header) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.headers
}

func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrDispatch)
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%w: chromedp backend only supports GET, got %s", ErrDispatch, m)
	}

	browserCtx, cancelTab := chromedp.NewContext(cdc.allocCtx)
	defer cancelTab()
	tabCtx, cancel := context.WithTimeout(browserCtx, cdc.timeout)
	defer cancel()

	// follow the caller's cancellation
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	idle := waitNetworkIdle(tabCtx, cdc.idleAfter)
	doc := &documentStatus{}
	doc.listen(tabCtx)

	actions := []chromedp.Action{network.Enable()}
	if len(req.Headers) > 0 {
		extra := network.Headers{}
		for k := range req.Headers {
			extra[k] = req.Headers.Get(k)
		}
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	actions = append(actions, chromedp.Navigate(req.URL))

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
	}

	html, err := cdc.read(tabCtx)
	if err != nil {
		return nil, err
	}

	status, headers := doc.get()
	if status == 0 {
		status = http.StatusOK
	}

	return &Response{
		Request:    req,
		Body:       []byte(html),
		Headers:    headers,
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

// bodyExpression yields the payload of the loaded document. Non-HTML bodies
// are wrapped in a <pre> by Chrome, so their text is read instead.
const bodyExpression = `document.body ? (document.contentType === "text/html" ? document.body.innerHTML : document.body.innerText) : ""`

func (cdc *ChromedpClient) read(ctx context.Context) (string, error) {
	var html string
	if cdc.selector == "" {
		if err := chromedp.Run(ctx, chromedp.Evaluate(bodyExpression, &html)); err != nil {
			return "", fmt.Errorf("read document body: %w", err)
		}
		return html, nil
	}
	if err := chromedp.Run(ctx,
		chromedp.WaitReady(cdc.selector, chromedp.ByQuery),
		chromedp.InnerHTML(cdc.selector, &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read %s: %w", cdc.selector, err)
	}
	return html, nil
}

func (cdc *ChromedpClient) Close() error {
	cdc.logger.Info("closing chromedp webclient")
	cdc.allocCancel()
	return nil
}
