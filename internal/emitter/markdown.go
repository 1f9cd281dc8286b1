package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

const untaggedGroup = "general"

var markdownTmpl = template.Must(template.New("markdown").Parse(`# {{.Title}}
{{if .Description}}
{{.Description}}
{{end}}
- **Version:** {{.Version}}
- **Base URL:** ` + "`{{.BaseURL}}`" + `
{{- if .Auth}}
- **Authentication:** {{.Auth}}
{{- end}}
{{range .Groups}}
## {{.Heading}}
{{range .Endpoints}}
### ` + "`{{.Method}} {{.Path}}`" + `

**{{.Summary}}**{{if .Auth}} (requires authentication){{end}}
{{if .Description}}
{{.Description}}
{{end}}
{{- if .Params}}
#### Parameters

| Name | In | Type | Required | Description |
| --- | --- | --- | --- | --- |
{{range .Params}}| {{.Name}} | {{.In}} | {{.Type}} | {{.Required}} | {{.Description}} |
{{end}}
{{- end}}
{{- if .Body}}
#### Request body

| Field | Type | Required | Example |
| --- | --- | --- | --- |
{{range .Body}}| {{.Name}} | {{.Type}} | {{.Required}} | {{.Example}} |
{{end}}
{{- end}}
#### Responses
{{range .Responses}}
**{{.Status}}** {{.Description}}
{{- if .Example}}

` + "```json" + `
{{.Example}}
` + "```" + `
{{- end}}
{{end}}
{{- end}}
{{- end}}`))

type mdDoc struct {
	Title       string
	Description string
	Version     string
	BaseURL     string
	Auth        string
	Groups      []*mdGroup
}

type mdGroup struct {
	Heading   string
	Endpoints []mdEndpoint
}

type mdEndpoint struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Auth        bool
	Params      []mdField
	Body        []mdField
	Responses   []mdResponse
}

type mdField struct {
	Name        string
	In          string
	Type        string
	Required    string
	Description string
	Example     string
}

type mdResponse struct {
	Status      int
	Description string
	Example     string
}

// renderMarkdown renders the schema as a human-readable reference grouped by
// tag, in order of first appearance.
func renderMarkdown(s *spec.Schema) ([]byte, error) {
	title := cases.Title(language.English)
	doc := mdDoc{
		Title:       s.API.Name,
		Description: deref(s.API.Description),
		Version:     s.API.Version,
		BaseURL:     s.API.BaseURL,
	}
	if doc.BaseURL == "" {
		doc.BaseURL = "/"
	}
	if s.API.Auth != nil {
		doc.Auth = string(s.API.Auth.Type)
	}

	groups := map[string]*mdGroup{}
	for _, ep := range s.Endpoints {
		tag := ep.Tag
		if tag == "" {
			tag = untaggedGroup
		}
		g, ok := groups[tag]
		if !ok {
			g = &mdGroup{Heading: title.String(tag)}
			groups[tag] = g
			doc.Groups = append(doc.Groups, g)
		}
		mep, err := markdownEndpoint(ep)
		if err != nil {
			return nil, err
		}
		g.Endpoints = append(g.Endpoints, mep)
	}

	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func markdownEndpoint(ep spec.Endpoint) (mdEndpoint, error) {
	out := mdEndpoint{
		Method:      string(ep.Method),
		Path:        ep.Path,
		Summary:     ep.Summary,
		Description: deref(ep.Description),
		Auth:        ep.AuthRequired,
	}
	if ep.Params != nil {
		for _, group := range []struct {
			in     string
			fields []spec.Field
		}{{"path", ep.Params.Path}, {"query", ep.Params.Query}, {"header", ep.Params.Header}} {
			for _, f := range group.fields {
				out.Params = append(out.Params, mdField{
					Name:        cell(f.Name),
					In:          group.in,
					Type:        typeName(f.Example),
					Required:    yesNo(f.Required),
					Description: cell(deref(f.Description)),
				})
			}
		}
	}
	for _, f := range ep.Body {
		example, err := compactJSON(f.Example)
		if err != nil {
			return out, err
		}
		out.Body = append(out.Body, mdField{
			Name:     cell(f.Name),
			Type:     typeName(f.Example),
			Required: yesNo(f.Required),
			Example:  "`" + cell(example) + "`",
		})
	}

	success, err := indentJSON(ep.Responses.Success.Example)
	if err != nil {
		return out, err
	}
	out.Responses = append(out.Responses, mdResponse{
		Status:      ep.Responses.Success.Status,
		Description: ep.Responses.Success.Description,
		Example:     success,
	})
	for _, e := range ep.Responses.Errors {
		r := mdResponse{Status: e.Status, Description: e.Message}
		if e.Description != nil {
			r.Description += " - " + *e.Description
		}
		if !e.Example.IsNull() {
			if r.Example, err = indentJSON(e.Example); err != nil {
				return out, err
			}
		}
		out.Responses = append(out.Responses, r)
	}
	return out, nil
}

// typeName reports the inferred type, with its format when there is one.
func typeName(v spec.Value) string {
	s := openapi.Infer(v)
	switch {
	case s.Format != "":
		return s.Type + " (" + s.Format + ")"
	case s.Type == "array" && s.Items != nil && s.Items.Type != "":
		return "array of " + s.Items.Type
	}
	return s.Type
}

func compactJSON(v spec.Value) (string, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func indentJSON(v spec.Value) (string, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
