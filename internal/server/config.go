package server

type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string `toml:"listen_addr" validate:"required"`

	// AllowedOrigin is sent as Access-Control-Allow-Origin and checked on
	// websocket upgrades. "*" allows any origin.
	AllowedOrigin string `toml:"allowed_origin"`

	// RefreshPerMinute caps POST /api/refresh. 0 disables manual refresh.
	RefreshPerMinute int `toml:"refresh_per_minute" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{ListenAddr: ":8080", AllowedOrigin: "*", RefreshPerMinute: 2}
}
