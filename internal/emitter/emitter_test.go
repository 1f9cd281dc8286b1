package emitter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

func sampleSchema() *spec.Schema {
	desc := "Manage <orders> & items"
	return &spec.Schema{
		API: spec.API{Name: "Shop API", Version: "1.0", Description: &desc, BaseURL: "/", Auth: &spec.Auth{Type: spec.AuthBearer}},
		Endpoints: []spec.Endpoint{
			{
				Path: "/orders/{id}", Method: spec.GET, Summary: "Get order", Tag: "order items", AuthRequired: true,
				Params: &spec.Params{Path: []spec.Field{{Name: "id", Example: spec.String("3fa85f64-5717-4562-b3fc-2c963f66afa6"), Required: true}}},
				Responses: spec.Responses{
					Success: spec.SuccessResponse{Status: 200, Description: "Success", Example: spec.Object(spec.Member{Key: "total", Value: spec.Float(9.5)})},
					Errors:  []spec.ErrorResponse{{Status: 404, Message: "Order not found"}},
				},
			},
			{
				Path: "/ping", Method: spec.GET, Summary: "Ping",
				Responses: spec.Responses{Success: spec.SuccessResponse{Status: 200, Description: "Success", Example: spec.String("pong")}},
			},
			{
				Path: "/orders", Method: spec.POST, Summary: "Create order", Tag: "order items",
				Body:      []spec.Field{{Name: "sku", Example: spec.String("A|B"), Required: true}, {Name: "tags", Example: spec.Array(spec.String("x"))}},
				Responses: spec.Responses{Success: spec.SuccessResponse{Status: 201, Description: "Created", Example: spec.Object()}},
			},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()
	cases := map[string]Format{
		"out.json":     FormatJSON,
		"out.YAML":     FormatYAML,
		"out.yml":      FormatYAML,
		"docs/api.md":  FormatMarkdown,
		"api.markdown": FormatMarkdown,
		"index.html":   FormatHTML,
		"noext":        FormatJSON,
	}
	for path, want := range cases {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	f, err := ParseFormat(" YML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	f, err = ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	_, err = ParseFormat("postman")
	assert.Error(t, err)
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	out, err := Render(s, openapi.Assemble(s), FormatJSON)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("{\n  \"openapi\": \"3.0.3\",\n  \"info\": {\n    \"title\": \"Shop API\",")))
	assert.Contains(t, string(out), `"description": "Manage <orders> & items"`)
	assert.True(t, bytes.HasSuffix(out, []byte("}\n")))
}

func TestRender_YAML(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	out, err := Render(s, openapi.Assemble(s), FormatYAML)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "openapi: 3.0.3\ninfo:\n  title: Shop API\n  version: \"1.0\"\n"), string(out))

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	paths := back["paths"].(map[string]any)
	assert.Contains(t, paths, "/orders/{id}")
	get := paths["/orders/{id}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "getOrders", get["operationId"])
	assert.Contains(t, get["responses"].(map[string]any), "404")
}

func TestRender_YAMLQuotesLegacyBooleans(t *testing.T) {
	t.Parallel()
	s := &spec.Schema{
		API: spec.API{Name: "Switch API", Version: "1.0"},
		Endpoints: []spec.Endpoint{{
			Path: "/switch", Method: spec.POST, Summary: "Flip",
			Body:      []spec.Field{{Name: "on", Example: spec.String("yes"), Required: true}},
			Responses: spec.Responses{Success: spec.SuccessResponse{Status: 200, Example: spec.Object(spec.Member{Key: "off", Value: spec.String("N")})}},
		}},
	}
	out, err := Render(s, openapi.Assemble(s), FormatYAML)
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "\"on\":")
	assert.Contains(t, doc, "\"yes\"")
	assert.Contains(t, doc, "\"off\": \"N\"")
	for _, bare := range []string{" on:", " off:", ": yes\n", ": N\n"} {
		assert.NotContains(t, doc, bare)
	}
}

func TestRender_Markdown(t *testing.T) {
	t.Parallel()
	out, err := Render(sampleSchema(), openapi.Assemble(sampleSchema()), FormatMarkdown)
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# Shop API\n"))
	assert.Contains(t, md, "- **Authentication:** bearer")
	assert.Contains(t, md, "## Order Items\n")
	assert.Contains(t, md, "## General\n")
	assert.Less(t, strings.Index(md, "## Order Items"), strings.Index(md, "## General"))
	assert.Contains(t, md, "### `GET /orders/{id}`")
	assert.Contains(t, md, "**Get order** (requires authentication)")
	assert.Contains(t, md, "| id | path | string (uuid) | yes |  |")
	assert.Contains(t, md, "| sku | string | yes | `\"A\\|B\"` |")
	assert.Contains(t, md, "| tags | array of string | no |")
	assert.Contains(t, md, "**404** Order not found")
	assert.Contains(t, md, "```json\n{\n  \"total\": 9.5\n}\n```")
}

func TestRender_HTML(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	out, err := Render(s, openapi.Assemble(s), FormatHTML)
	require.NoError(t, err)
	page := string(out)
	assert.Contains(t, page, "<title>Shop API</title>")
	assert.Contains(t, page, "redoc.standalone.js")
	assert.Contains(t, page, "Redoc.init(")
	assert.Contains(t, page, "getOrders")
	assert.NotContains(t, page, "Manage <orders>")
}

func TestEmit_WritesFile(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	path := filepath.Join(t.TempDir(), "nested", "openapi.yaml")
	res, err := Emit(context.Background(), s, openapi.Assemble(s), Options{Path: path})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, FormatYAML, res.Format)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Planned.Size, len(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestEmit_RefusesOverwriteWithoutForce(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	doc := openapi.Assemble(s)
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	_, err := Emit(context.Background(), s, doc, Options{Path: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExists))

	_, err = Emit(context.Background(), s, doc, Options{Path: path, Force: true})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"openapi": "3.0.3"`)
}

func TestEmit_DryRun(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	path := filepath.Join(t.TempDir(), "out.md")
	res, err := Emit(context.Background(), s, openapi.Assemble(s), Options{Path: path, DryRun: true, Format: FormatHTML})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, FormatHTML, res.Format)
	assert.Positive(t, res.Planned.Size)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEmit_Validation(t *testing.T) {
	t.Parallel()
	s := sampleSchema()
	_, err := Emit(context.Background(), s, openapi.Assemble(s), Options{})
	assert.Error(t, err)
	_, err = Emit(context.Background(), nil, nil, Options{Path: "x.json"})
	assert.Error(t, err)
	_, err = Emit(context.Background(), s, openapi.Assemble(s), Options{Path: filepath.Join(t.TempDir(), "x"), Format: "postman"})
	assert.Error(t, err)
}
