package openapi

// Option tunes document generation. The defaults reproduce the historical
// output exactly; every option is an opt-in.
type Option func(*config)

type config struct {
	maxLength          bool
	placeholderSchemes bool
}

// WithMaxLength projects a field's max_length onto its parameter schema as
// maxLength. By default only min_length is projected.
func WithMaxLength() Option {
	return func(c *config) { c.maxLength = true }
}

// WithPlaceholderSchemes adds basicAuth and apikeyAuth security schemes so
// operations of basic and apikey APIs do not reference undefined schemes.
func WithPlaceholderSchemes() Option {
	return func(c *config) { c.placeholderSchemes = true }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
