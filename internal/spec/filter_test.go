package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() *Schema {
	return &Schema{
		API: API{Name: "Pets", Version: "1"},
		Endpoints: []Endpoint{
			{Path: "/pets", Method: GET, Tag: "read"},
			{Path: "/pets", Method: POST, Tag: "write"},
			{Path: "/admin", Method: GET, Tag: "admin"},
			{Path: "/health", Method: HEAD},
		},
	}
}

func ids(s *Schema) []string {
	out := []string{}
	for _, ep := range s.Endpoints {
		out = append(out, ep.ID())
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		opts []FilterOption
		want []string
	}{
		{"none", nil, []string{"GET /pets", "POST /pets", "GET /admin", "HEAD /health"}},
		{"include", []FilterOption{WithIncludeTags([]string{"read", " admin "})}, []string{"GET /pets", "GET /admin"}},
		{"exclude", []FilterOption{WithExcludeTags([]string{"admin"})}, []string{"GET /pets", "POST /pets", "HEAD /health"}},
		{"methods", []FilterOption{WithMethods([]string{"get"})}, []string{"GET /pets", "GET /admin"}},
		{"paths", []FilterOption{WithPathPatterns([]string{"^/pets$"})}, []string{"GET /pets", "POST /pets"}},
		{"invalid pattern", []FilterOption{WithPathPatterns([]string{"("})}, []string{}},
		{"combined", []FilterOption{WithMethods([]string{"GET"}), WithExcludeTags([]string{"admin"})}, []string{"GET /pets"}},
		{"blank tags ignored", []FilterOption{WithIncludeTags([]string{"", " "})}, []string{"GET /pets", "POST /pets", "GET /admin", "HEAD /health"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := filterFixture()
			got := Filter(src, tc.opts...)
			assert.Equal(t, tc.want, ids(got))
			assert.Equal(t, src.API, got.API)
			assert.Len(t, src.Endpoints, 4)
		})
	}
}

func TestFilter_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Filter(nil))
}
