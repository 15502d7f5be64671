package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/repview/internal/app"
	"github.com/raysh454/repview/internal/webclient"
)

const DefaultConfigPath = "repview.toml"

// CLIArgs are the command-line arguments. Flags left unset do not override
// the config file.
type CLIArgs struct {
	// ConfigPath is the TOML config file; a missing file means defaults.
	ConfigPath string

	// Once loads the page a single time, prints the content text and exits.
	Once bool

	// InitConfig writes the effective config to ConfigPath and exits.
	InitConfig bool

	Addr     string
	Backend  string
	BaseURL  string
	LogLevel string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

type flagValues struct {
	configPath, addr, backend, baseURL, logLevel *string
	once, initConfig                             *bool
}

func newFlagSet() (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet("repview", flag.ContinueOnError)
	v := &flagValues{
		configPath: fs.String("config", DefaultConfigPath, "Path to the TOML config file"),
		once:       fs.Bool("once", false, "Load the page once, print its text and exit"),
		initConfig: fs.Bool("init", false, "Write the effective config to -config and exit"),
		addr:       fs.String("addr", "", "HTTP listen address (overrides server.listen_addr)"),
		backend:    fs.String("backend", "", "Web client backend: "+strings.Join(webclient.ListBackends(), "|")),
		baseURL:    fs.String("base-url", "", "Replacements backend origin (overrides view.base_url)"),
		logLevel:   fs.String("log-level", "", "trace|debug|info|warn|error (overrides log_level)"),
	}
	return fs, v
}

// Usage writes the flag summary to w.
func Usage(w io.Writer) {
	fs, _ := newFlagSet()
	fs.SetOutput(w)
	fmt.Fprintln(w, "Usage: repview [flags]")
	fs.PrintDefaults()
}

// ParseArgs parses a slice of args and returns CLIArgs. The function is
// deterministic and does not read os.Args. -h and -help yield flag.ErrHelp.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs, v := newFlagSet()

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if *v.once && *v.initConfig {
		return nil, fmt.Errorf("-once and -init cannot be combined")
	}

	return &CLIArgs{
		ConfigPath: *v.configPath,
		Once:       *v.once,
		InitConfig: *v.initConfig,
		Addr:       strings.TrimSpace(*v.addr),
		Backend:    strings.TrimSpace(*v.backend),
		BaseURL:    strings.TrimSpace(*v.baseURL),
		LogLevel:   strings.TrimSpace(*v.logLevel),
		RawArgs:    args,
	}, nil
}

// Apply overrides cfg with the flags that were given.
func (a *CLIArgs) Apply(cfg *app.Config) {
	if a.Addr != "" {
		cfg.Server.ListenAddr = a.Addr
	}
	if a.Backend != "" {
		cfg.WebClient.Client = webclient.Client(a.Backend)
	}
	if a.BaseURL != "" {
		cfg.View.BaseURL = a.BaseURL
	}
	if a.LogLevel != "" {
		cfg.LogLevel = a.LogLevel
	}
}
