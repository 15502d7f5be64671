package store

type Config struct {
	// Path is the SQLite database file. ":memory:" keeps everything in
	// process, which tests use.
	Path string `toml:"path" validate:"required"`
}

func DefaultConfig() Config {
	return Config{Path: "~/.config/repview/repview.db"}
}
