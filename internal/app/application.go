package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/raysh454/repview/internal/announcer"
	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/server"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/view"
	"github.com/raysh454/repview/internal/watcher"
	"github.com/raysh454/repview/internal/webclient"
)

// Application is the global runtime state container: it builds every
// component from Config and owns their lifecycle.
type Application struct {
	Config *Config
	Logger logging.Logger

	Client  webclient.WebClient
	Page    *server.Page
	View    *view.View
	Store   *store.SQLiteStore
	Watcher *watcher.Watcher
	Server  *server.Server
	// Bot is nil when no Discord token is configured.
	Bot *announcer.Bot

	httpServer *http.Server
	errs       chan error

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication validates cfg and constructs all components. Nothing is
// started until Start.
func NewApplication(cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		return nil, errors.New("application: nil logger provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("creating web client: %w", err)
	}

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	page := server.NewPage(cfg.View.ContainerID)
	v := view.New(cfg.View, client, page, logger)

	var (
		bot      *announcer.Bot
		notifier watcher.Notifier
	)
	if cfg.Discord.Enabled() {
		bot, err = announcer.NewBot(cfg.Discord, st, logger)
		if err != nil {
			_ = st.Close()
			_ = client.Close()
			return nil, err
		}
		notifier = bot.Announcer()
	}

	w, err := watcher.New(cfg.Watcher, v, st, notifier, logger)
	if err != nil {
		_ = st.Close()
		_ = client.Close()
		return nil, err
	}

	srv, err := server.NewServer(cfg.Server, page, st, w, logger)
	if err != nil {
		_ = st.Close()
		_ = client.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Page:    page,
		View:    v,
		Store:   st,
		Watcher: w,
		Server:  srv,
		Bot:     bot,
		errs:    make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start connects the bot, starts the watcher and serves HTTP in the
// background. Serve failures are reported on Errors.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "addr", Value: a.Config.Server.ListenAddr},
		logging.Field{Key: "backend", Value: a.Config.View.BaseURL})

	if a.Bot != nil {
		if err := a.Bot.Open(); err != nil {
			return err
		}
	}
	if err := a.Watcher.Start(a.ctx); err != nil {
		return err
	}

	a.httpServer = a.Server.HTTPServer()
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	return nil
}

// Errors yields fatal errors from background components.
func (a *Application) Errors() <-chan error { return a.errs }

// LoadPage performs the page-load fetch once and returns its outcome. The
// container text is then available from Page.
func (a *Application) LoadPage(ctx context.Context) view.Outcome {
	return <-a.View.Main(ctx)
}

// Shutdown stops every component, waiting at most until ctx is done for the
// HTTP server and a running check.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	// cancel internal ctx so a running check gives up
	a.cancel()
	select {
	case <-a.Watcher.Stop().Done():
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for running check: %w", ctx.Err()))
	}

	if a.Bot != nil {
		if err := a.Bot.Close(); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}
	if err := a.Client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("web client: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	return errors.Join(errs...)
}
