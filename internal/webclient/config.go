package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientResty    Client = "resty"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client `toml:"client" validate:"omitempty,oneof=nethttp resty chromedp"`

	// TimeoutSeconds bounds a single request; 0 means the 30s default.
	TimeoutSeconds int `toml:"timeout_seconds" validate:"gte=0,lte=600"`

	// UserAgent is sent with every request when set.
	UserAgent string `toml:"user_agent"`

	// chromedp only
	Headless        *bool `toml:"headless"`
	IdleAfterMillis int   `toml:"idle_after_ms" validate:"gte=0"`
	// WaitSelector names the element whose inner markup is returned. Empty
	// returns the document body.
	WaitSelector string `toml:"wait_selector"`
}

const defaultTimeout = 30 * time.Second

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) idleAfter() time.Duration {
	if c.IdleAfterMillis <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.IdleAfterMillis) * time.Millisecond
}

func (c Config) headless() bool {
	return c.Headless == nil || *c.Headless
}
