package cli_test

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/app"
	"github.com/raysh454/repview/internal/cli"
	"github.com/raysh454/repview/internal/webclient"
)

func TestParseArgs_Defaults(t *testing.T) {
	t.Parallel()
	args, err := cli.ParseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, cli.DefaultConfigPath, args.ConfigPath)
	require.False(t, args.Once)
	require.False(t, args.InitConfig)

	cfg := app.DefaultConfig()
	args.Apply(cfg)
	require.Equal(t, app.DefaultConfig(), cfg, "no flags, no overrides")
}

func TestParseArgs_Overrides(t *testing.T) {
	t.Parallel()
	args, err := cli.ParseArgs([]string{
		"-config", "/etc/repview.toml",
		"-once",
		"-addr", ":9000",
		"-backend", "chromedp",
		"-base-url", "http://localhost:9999",
		"-log-level", "debug",
	})
	require.NoError(t, err)
	require.Equal(t, "/etc/repview.toml", args.ConfigPath)
	require.True(t, args.Once)

	cfg := app.DefaultConfig()
	args.Apply(cfg)
	require.Equal(t, ":9000", cfg.Server.ListenAddr)
	require.Equal(t, webclient.ClientChromedp, cfg.WebClient.Client)
	require.Equal(t, "http://localhost:9999", cfg.View.BaseURL)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestParseArgs_Errors(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		{"-nope"},
		{"stray"},
		{"-once", "-init"},
	} {
		_, err := cli.ParseArgs(args)
		require.Error(t, err, "%v", args)
	}
}

func TestParseArgs_Help(t *testing.T) {
	t.Parallel()
	for _, arg := range []string{"-h", "-help", "--help"} {
		_, err := cli.ParseArgs([]string{arg})
		require.ErrorIs(t, err, flag.ErrHelp, arg)
	}
}

func TestUsage_ListsFlags(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cli.Usage(&buf)

	out := buf.String()
	require.Contains(t, out, "Usage: repview")
	for _, name := range []string{"-config", "-once", "-init", "-addr", "-backend", "-base-url", "-log-level"} {
		require.Contains(t, out, name)
	}
	require.Contains(t, out, "trace|debug|info|warn|error")
}

func TestParseArgs_TraceLevel(t *testing.T) {
	t.Parallel()
	args, err := cli.ParseArgs([]string{"-log-level", "trace"})
	require.NoError(t, err)

	cfg := app.DefaultConfig()
	args.Apply(cfg)
	require.Equal(t, "trace", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}
