package view

const (
	DefaultResource    = "/replacements/api/fetch-rep"
	DefaultContainerID = "content"
)

// Config locates the backend resource and names the content container.
type Config struct {
	// BaseURL is the origin the resource path is resolved against,
	// e.g. "http://rep.spb-kit.ru".
	BaseURL string `toml:"base_url" validate:"required,url"`

	// Resource is the fixed path queried for replacement content.
	Resource string `toml:"resource" validate:"required,startswith=/"`

	// Query is appended verbatim after the ts parameter (e.g. "&group=101").
	Query string `toml:"query"`

	ContainerID string `toml:"container_id" validate:"required"`
}

// DefaultConfig returns the production backend settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://rep.spb-kit.ru",
		Resource:    DefaultResource,
		Query:       "",
		ContainerID: DefaultContainerID,
	}
}
