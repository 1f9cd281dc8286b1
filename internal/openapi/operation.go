package openapi

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mark3labs/tera/internal/spec"
)

var (
	placeholderRe = regexp.MustCompile(`\{.*?\}`)
	nonAlnumRe    = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// OperationID derives a camel-case identifier from method and path:
// placeholders are dropped, the remaining words capitalized and prefixed
// with the lower-case method. GET /users/{id} gives "getUsers".
//
// Distinct routes may collide; see Check.
func OperationID(method spec.Method, path string) string {
	clean := placeholderRe.ReplaceAllString(path, "")
	clean = nonAlnumRe.ReplaceAllString(clean, " ")
	var b strings.Builder
	b.WriteString(strings.ToLower(string(method)))
	for _, word := range strings.Fields(clean) {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

// capitalize upper-cases the first letter and lower-cases the rest. Words
// are ASCII alphanumerics at this point.
func capitalize(word string) string {
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// SchemeName is the security scheme an API's auth type is referenced by,
// e.g. "bearerAuth".
func SchemeName(t spec.AuthType) string {
	return string(t) + "Auth"
}

// BuildOperation converts one endpoint. api supplies the auth type used for
// the security requirement.
func BuildOperation(ep spec.Endpoint, api spec.API, opts ...Option) *Operation {
	return buildOperation(ep, api, newConfig(opts))
}

func buildOperation(ep spec.Endpoint, api spec.API, cfg config) *Operation {
	op := &Operation{
		Summary:     ep.Summary,
		OperationID: OperationID(ep.Method, ep.Path),
		Tags:        []string{},
		Description: ep.Description,
		Parameters:  buildParameters(ep.Params, cfg),
		Responses:   buildResponses(ep.Responses),
	}
	if ep.Tag != "" {
		op.Tags = []string{ep.Tag}
	}
	if ep.AuthRequired && api.Auth != nil {
		op.Security = []SecurityRequirement{{SchemeName(api.Auth.Type): []string{}}}
	}
	if len(ep.Body) > 0 {
		op.RequestBody = buildRequestBody(ep.Body)
	}
	return op
}

func buildParameters(params *spec.Params, cfg config) []*Parameter {
	out := []*Parameter{}
	if params == nil {
		return out
	}
	groups := []struct {
		in     string
		fields []spec.Field
	}{
		{"path", params.Path},
		{"query", params.Query},
		{"header", params.Header},
	}
	for _, g := range groups {
		for _, f := range g.fields {
			schema := Infer(f.Example)
			if f.MinLength != nil {
				n := *f.MinLength
				schema.MinLength = &n
			}
			if cfg.maxLength && f.MaxLength != nil {
				n := *f.MaxLength
				schema.MaxLength = &n
			}
			out = append(out, &Parameter{
				Name:        f.Name,
				In:          g.in,
				Required:    f.Required,
				Description: f.Description,
				Schema:      schema,
			})
		}
	}
	return out
}

func buildRequestBody(fields []spec.Field) *RequestBody {
	props := NewOrderedMap[*Schema]()
	required := RequiredFields{}
	example := make([]spec.Member, 0, len(fields))
	seen := make(map[string]int, len(fields))
	for _, f := range fields {
		props.Set(f.Name, Infer(f.Example))
		if f.Required {
			required = append(required, f.Name)
		}
		// a repeated name replaces the earlier example in place, like props
		if i, ok := seen[f.Name]; ok {
			example[i].Value = f.Example
			continue
		}
		seen[f.Name] = len(example)
		example = append(example, spec.Member{Key: f.Name, Value: f.Example})
	}
	content := NewOrderedMap[*MediaType]()
	content.Set(mediaTypeJSON, &MediaType{
		Schema:  &Schema{Type: "object", Properties: props, Required: &required},
		Example: spec.Object(example...),
	})
	return &RequestBody{Required: true, Content: content}
}

func buildResponses(r spec.Responses) *OrderedMap[*Response] {
	out := NewOrderedMap[*Response]()
	out.Set(strconv.Itoa(r.Success.Status), jsonResponse(r.Success.Description, Infer(r.Success.Example), r.Success.Example))
	for _, e := range r.Errors {
		schema := &Schema{Type: "object"}
		if e.Example.Truthy() {
			schema = Infer(e.Example)
		}
		out.Set(strconv.Itoa(e.Status), jsonResponse(e.Message, schema, e.Example))
	}
	return out
}

func jsonResponse(description string, schema *Schema, example spec.Value) *Response {
	content := NewOrderedMap[*MediaType]()
	content.Set(mediaTypeJSON, &MediaType{Schema: schema, Example: example})
	return &Response{Description: description, Content: content}
}
