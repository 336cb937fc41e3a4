package adapter

import "github.com/arloliu/geokey/internal/options"

type config struct {
	extraFields []string
}

// Option configures an Adapter.
type Option = options.Option[*config]

// WithPayloadFields stores additional record attributes in the value payload.
// Attributes read by the bound handlers are always stored.
func WithPayloadFields(names ...string) Option {
	return options.NoError(func(c *config) {
		c.extraFields = append(c.extraFields, names...)
	})
}
