package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/tera/internal/spec"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func TestOperationID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		method spec.Method
		path   string
		want   string
	}{
		{spec.GET, "/users/{id}", "getUsers"},
		{spec.POST, "/orders/{orderId}/items", "postOrdersItems"},
		{spec.GET, "/test", "getTest"},
		{spec.DELETE, "/v1/user-profiles/{id}/avatar_image", "deleteV1UserProfilesAvatarImage"},
		{spec.PATCH, "/API/Users", "patchApiUsers"},
		{spec.GET, "/", "get"},
		{spec.HEAD, "/{a}/{b}", "head"},
		{spec.OPTIONS, "/2fa/codes", "options2faCodes"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OperationID(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

func orderEndpoint() spec.Endpoint {
	return spec.Endpoint{
		Path:         "/orders/{orderId}/items",
		Method:       spec.POST,
		Summary:      "Add item",
		Tag:          "orders",
		AuthRequired: true,
		Params: &spec.Params{
			Path: []spec.Field{{Name: "orderId", Example: spec.String("42"), Required: true, MinLength: intPtr(1), MaxLength: intPtr(10)}},
		},
		Body: []spec.Field{
			{Name: "sku", Example: spec.String("SKU-1"), Required: true},
			{Name: "qty", Example: spec.Int(2)},
		},
		Responses: spec.Responses{
			Success: spec.SuccessResponse{Status: 201, Description: "Created", Example: spec.Object(spec.Member{Key: "id", Value: spec.Int(7)})},
			Errors: []spec.ErrorResponse{
				{Status: 404, Message: "Not found", Example: spec.Object(spec.Member{Key: "error", Value: spec.String("nf")})},
				{Status: 400, Message: "Bad"},
			},
		},
	}
}

func bearerAPI() spec.API {
	return spec.API{Name: "Shop", Version: "1", BaseURL: "/", Auth: &spec.Auth{Type: spec.AuthBearer}}
}

func TestBuildOperation_Full(t *testing.T) {
	t.Parallel()
	op := BuildOperation(orderEndpoint(), bearerAPI())
	want := `{"summary":"Add item","operationId":"postOrdersItems","tags":["orders"],"description":null,` +
		`"parameters":[{"name":"orderId","in":"path","required":true,"description":null,"schema":{"type":"string","minLength":1}}],` +
		`"responses":{` +
		`"201":{"description":"Created","content":{"application/json":{"schema":{"type":"object","properties":{"id":{"type":"integer"}}},"example":{"id":7}}}},` +
		`"404":{"description":"Not found","content":{"application/json":{"schema":{"type":"object","properties":{"error":{"type":"string"}}},"example":{"error":"nf"}}}},` +
		`"400":{"description":"Bad","content":{"application/json":{"schema":{"type":"object"},"example":null}}}},` +
		`"security":[{"bearerAuth":[]}],` +
		`"requestBody":{"required":true,"content":{"application/json":{"schema":{"type":"object","properties":{"sku":{"type":"string"},"qty":{"type":"integer"}},"required":["sku"]},"example":{"sku":"SKU-1","qty":2}}}}}`
	assert.Equal(t, want, toJSON(t, op))
}

func TestBuildOperation_MaxLengthOptIn(t *testing.T) {
	t.Parallel()
	op := BuildOperation(orderEndpoint(), bearerAPI(), WithMaxLength())
	require.Len(t, op.Parameters, 1)
	assert.Equal(t, `{"type":"string","minLength":1,"maxLength":10}`, toJSON(t, op.Parameters[0].Schema))
}

func TestBuildOperation_SingleRequiredBodyField(t *testing.T) {
	t.Parallel()
	ep := spec.Endpoint{
		Path: "/people", Method: spec.POST, Summary: "Create",
		Body:      []spec.Field{{Name: "age", Example: spec.Int(30), Required: true}},
		Responses: spec.Responses{Success: spec.SuccessResponse{Status: 200, Description: "Success", Example: spec.Null()}},
	}
	op := BuildOperation(ep, spec.API{})
	require.NotNil(t, op.RequestBody)
	media, ok := op.RequestBody.Content.Get("application/json")
	require.True(t, ok)
	assert.Equal(t, `{"type":"object","properties":{"age":{"type":"integer"}},"required":["age"]}`, toJSON(t, media.Schema))
	assert.Equal(t, `{"age":30}`, toJSON(t, media.Example))
}

func TestBuildOperation_NoRequiredBodyFieldsRendersNull(t *testing.T) {
	t.Parallel()
	ep := spec.Endpoint{
		Path: "/notes", Method: spec.PUT, Summary: "Save",
		Body: []spec.Field{
			{Name: "text", Example: spec.String("hi")},
			{Name: "text", Example: spec.String("again")},
		},
		Responses: spec.Responses{Success: spec.SuccessResponse{Status: 204, Description: "Saved", Example: spec.Null()}},
	}
	op := BuildOperation(ep, spec.API{})
	media, _ := op.RequestBody.Content.Get("application/json")
	assert.Equal(t, `{"type":"object","properties":{"text":{"type":"string"}},"required":null}`, toJSON(t, media.Schema))
	assert.Equal(t, `{"text":"again"}`, toJSON(t, media.Example))
}

func TestBuildOperation_Minimal(t *testing.T) {
	t.Parallel()
	ep := spec.Endpoint{
		Path: "/ping", Method: spec.GET, Summary: "Ping", Description: strPtr("Health check"),
		Responses: spec.Responses{Success: spec.SuccessResponse{Status: 200, Description: "Success", Example: spec.String("pong")}},
	}
	op := BuildOperation(ep, bearerAPI())
	assert.Equal(t, `{"summary":"Ping","operationId":"getPing","tags":[],"description":"Health check","parameters":[],`+
		`"responses":{"200":{"description":"Success","content":{"application/json":{"schema":{"type":"string"},"example":"pong"}}}}}`,
		toJSON(t, op))
}

func TestBuildOperation_ParameterOrder(t *testing.T) {
	t.Parallel()
	ep := spec.Endpoint{
		Path: "/x/{id}", Method: spec.GET, Summary: "x",
		Params: &spec.Params{
			Header: []spec.Field{{Name: "X-H", Example: spec.String("h")}},
			Query:  []spec.Field{{Name: "q1", Example: spec.Int(1)}, {Name: "q2", Example: spec.Bool(true), Description: strPtr("flag")}},
			Path:   []spec.Field{{Name: "id", Example: spec.Int(9), Required: true}},
		},
		Responses: spec.Responses{Success: spec.SuccessResponse{Status: 200, Example: spec.Null()}},
	}
	op := BuildOperation(ep, spec.API{})
	var got []string
	for _, p := range op.Parameters {
		got = append(got, p.In+":"+p.Name)
	}
	assert.Equal(t, []string{"path:id", "query:q1", "query:q2", "header:X-H"}, got)
	assert.Equal(t, "flag", *op.Parameters[2].Description)
}

func TestBuildOperation_Security(t *testing.T) {
	t.Parallel()
	ep := orderEndpoint()

	basic := spec.API{Auth: &spec.Auth{Type: spec.AuthBasic}}
	assert.Equal(t, []SecurityRequirement{{"basicAuth": {}}}, BuildOperation(ep, basic).Security)

	apikey := spec.API{Auth: &spec.Auth{Type: spec.AuthAPIKey}}
	assert.Equal(t, []SecurityRequirement{{"apikeyAuth": {}}}, BuildOperation(ep, apikey).Security)

	assert.Nil(t, BuildOperation(ep, spec.API{}).Security)

	ep.AuthRequired = false
	assert.Nil(t, BuildOperation(ep, bearerAPI()).Security)
}

func TestBuildOperation_FalsyErrorExample(t *testing.T) {
	t.Parallel()
	ep := spec.Endpoint{
		Path: "/e", Method: spec.GET, Summary: "e",
		Responses: spec.Responses{
			Success: spec.SuccessResponse{Status: 200, Description: "Success", Example: spec.Null()},
			Errors: []spec.ErrorResponse{
				{Status: 409, Message: "Conflict", Example: spec.Object()},
				{Status: 500, Message: "Boom", Example: spec.String("")},
			},
		},
	}
	op := BuildOperation(ep, spec.API{})
	conflict, _ := op.Responses.Get("409")
	media, _ := conflict.Content.Get("application/json")
	assert.Equal(t, `{"schema":{"type":"object"},"example":{}}`, toJSON(t, media))
	boom, _ := op.Responses.Get("500")
	media, _ = boom.Content.Get("application/json")
	assert.Equal(t, `{"schema":{"type":"object"},"example":""}`, toJSON(t, media))
}
