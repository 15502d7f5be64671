package announcer

// Config holds the Discord credentials. An empty Token disables the bot.
type Config struct {
	Token     string `toml:"token"`
	ChannelID string `toml:"channel_id" validate:"required_with=Token"`
	// GuildID scopes slash commands to one server; empty registers them globally.
	GuildID string `toml:"guild_id"`
}

func (c Config) Enabled() bool { return c.Token != "" }
