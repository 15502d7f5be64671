package watcher

const DefaultSchedule = "@every 6h"

type Config struct {
	// Schedule is a cron expression or descriptor ("@every 6h", "0 7 * * 1-6").
	Schedule string `toml:"schedule" validate:"required"`
	// CheckOnStart runs one check as soon as the watcher starts.
	CheckOnStart bool `toml:"check_on_start"`
	// History is how many check results are kept in memory; 0 keeps all.
	History int `toml:"history" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{Schedule: DefaultSchedule, CheckOnStart: true, History: 20}
}
