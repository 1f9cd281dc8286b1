package openapi

import (
	"strings"

	"github.com/mark3labs/tera/internal/spec"
)

// Assemble builds the OpenAPI document for s. It is pure and total over a
// validated schema: no I/O, no shared state, safe to call concurrently.
//
// Paths keep declaration order. When two endpoints share a path and method
// the later one replaces the earlier operation without a diagnostic.
func Assemble(s *spec.Schema, opts ...Option) *Document {
	cfg := newConfig(opts)

	baseURL := s.API.BaseURL
	if baseURL == "" {
		baseURL = "/"
	}
	doc := &Document{
		OpenAPI: Version,
		Info: Info{
			Title:       s.API.Name,
			Version:     s.API.Version,
			Description: s.API.Description,
		},
		Servers:    []Server{{URL: baseURL}},
		Components: Components{SecuritySchemes: securitySchemes(s.API.Auth, cfg)},
		Paths:      NewOrderedMap[*PathItem](),
	}

	for _, ep := range s.Endpoints {
		item, ok := doc.Paths.Get(ep.Path)
		if !ok {
			item = NewOrderedMap[*Operation]()
			doc.Paths.Set(ep.Path, item)
		}
		item.Set(strings.ToLower(string(ep.Method)), buildOperation(ep, s.API, cfg))
	}
	return doc
}

func securitySchemes(auth *spec.Auth, cfg config) *OrderedMap[*SecurityScheme] {
	out := NewOrderedMap[*SecurityScheme]()
	if auth == nil {
		return out
	}
	switch auth.Type {
	case spec.AuthBearer:
		out.Set(SchemeName(spec.AuthBearer), &SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: "JWT"})
	case spec.AuthBasic:
		if cfg.placeholderSchemes {
			out.Set(SchemeName(spec.AuthBasic), &SecurityScheme{Type: "http", Scheme: "basic"})
		}
	case spec.AuthAPIKey:
		if cfg.placeholderSchemes {
			out.Set(SchemeName(spec.AuthAPIKey), &SecurityScheme{Type: "apiKey", In: "header", Name: "X-API-Key"})
		}
	}
	return out
}
