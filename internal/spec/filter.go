package spec

import (
	"regexp"
	"strings"
)

// FilterOption configures which endpoints Filter keeps.
type FilterOption func(*filterConfig)

type filterConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[Method]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only endpoints tagged with one of tags.
func WithIncludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes endpoints tagged with any of tags.
func WithExcludeTags(tags []string) FilterOption {
	return func(c *filterConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only endpoints using one of methods. Matching ignores case.
func WithMethods(methods []string) FilterOption {
	return func(c *filterConfig) {
		for _, m := range methods {
			m = strings.ToUpper(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if c.methods == nil {
				c.methods = make(map[Method]struct{}, len(methods))
			}
			c.methods[Method(m)] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only endpoints whose path matches one of the regular
// expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) FilterOption {
	return func(c *filterConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile(`a^$`)
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Filter returns a shallow copy of s holding the endpoints that pass every
// option, in declaration order. With no options the copy holds all of them.
func Filter(s *Schema, opts ...FilterOption) *Schema {
	if s == nil {
		return nil
	}
	cfg := &filterConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	out := &Schema{API: s.API}
	for _, ep := range s.Endpoints {
		if cfg.keep(ep) {
			out.Endpoints = append(out.Endpoints, ep)
		}
	}
	return out
}

func (c *filterConfig) keep(ep Endpoint) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[ep.Method]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(ep.Path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(c.includeTags) > 0 {
		if _, ok := c.includeTags[ep.Tag]; !ok {
			return false
		}
	}
	if _, blocked := c.excludeTags[ep.Tag]; blocked && ep.Tag != "" {
		return false
	}
	return true
}
