package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/raysh454/repview/internal/announcer"
	"github.com/raysh454/repview/internal/server"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/view"
	"github.com/raysh454/repview/internal/watcher"
	"github.com/raysh454/repview/internal/webclient"
)

// Config is the whole runtime configuration, one TOML table per component.
type Config struct {
	LogLevel string `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	Server    server.Config    `toml:"server"`
	View      view.Config      `toml:"view"`
	WebClient webclient.Config `toml:"webclient"`
	Store     store.Config     `toml:"store"`
	Watcher   watcher.Config   `toml:"watcher"`
	Discord   announcer.Config `toml:"discord"`
}

// DefaultConfig returns a Config pointed at the production backend.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Server:    server.DefaultConfig(),
		View:      view.DefaultConfig(),
		WebClient: webclient.Config{Client: webclient.ClientNetHTTP},
		Store:     store.DefaultConfig(),
		Watcher:   watcher.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults; an empty path does too.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// WriteConfig stores cfg as TOML at path.
func WriteConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		const maxSplits = 2
		name := strings.SplitN(fld.Tag.Get("toml"), ",", maxSplits)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every section and reports the offending keys.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// drop the root "Config." prefix
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", ns, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", ns, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
