// Command repview hosts the replacements page: it fetches the fragment from
// the college site, renders it into the content container, serves the page
// and API, and watches for schedule changes.
//
// Usage: repview [-config repview.toml] [-once] [-init] [-addr :8080]
// [-backend nethttp|resty|chromedp] [-base-url URL] [-log-level info] [-help]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/repview/internal/app"
	"github.com/raysh454/repview/internal/cli"
	"github.com/raysh454/repview/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "repview:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	args, err := cli.ParseArgs(argv)
	if errors.Is(err, flag.ErrHelp) {
		cli.Usage(os.Stderr)
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := app.LoadConfig(args.ConfigPath)
	if err != nil {
		return err
	}
	args.Apply(cfg)

	if args.InitConfig {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := app.WriteConfig(args.ConfigPath, cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Println("wrote", args.ConfigPath)
		return nil
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel).With(logging.Field{Key: "app", Value: "repview"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}

	if args.Once {
		outcome := a.LoadPage(ctx)
		fmt.Println(a.Page.Element().Text())
		shutdownErr := a.Shutdown(context.Background())
		if outcome.Failed() {
			return errors.New(outcome.Reason)
		}
		return shutdownErr
	}

	if err := a.Start(); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("signal received")
	case runErr = <-a.Errors():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}
