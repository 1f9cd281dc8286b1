package openapi

import (
	"encoding/json"

	"github.com/mark3labs/tera/internal/spec"
)

// Version is the OpenAPI version every generated document declares.
const Version = "3.0.3"

const mediaTypeJSON = "application/json"

// Document is an OpenAPI 3.0 document. Field order is output key order.
type Document struct {
	OpenAPI    string                 `json:"openapi" yaml:"openapi"`
	Info       Info                   `json:"info" yaml:"info"`
	Servers    []Server               `json:"servers" yaml:"servers"`
	Components Components             `json:"components" yaml:"components"`
	Paths      *OrderedMap[*PathItem] `json:"paths" yaml:"paths"`
}

// Info.Description is written as null when unset.
type Info struct {
	Title       string  `json:"title" yaml:"title"`
	Version     string  `json:"version" yaml:"version"`
	Description *string `json:"description" yaml:"description"`
}

type Server struct {
	URL string `json:"url" yaml:"url"`
}

type Components struct {
	SecuritySchemes *OrderedMap[*SecurityScheme] `json:"securitySchemes" yaml:"securitySchemes"`
}

type SecurityScheme struct {
	Type         string `json:"type" yaml:"type"`
	Scheme       string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	BearerFormat string `json:"bearerFormat,omitempty" yaml:"bearerFormat,omitempty"`
	In           string `json:"in,omitempty" yaml:"in,omitempty"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
}

// PathItem maps lower-case HTTP methods to operations.
type PathItem = OrderedMap[*Operation]

type Operation struct {
	Summary     string                 `json:"summary" yaml:"summary"`
	OperationID string                 `json:"operationId" yaml:"operationId"`
	Tags        []string               `json:"tags" yaml:"tags"`
	Description *string                `json:"description" yaml:"description"`
	Parameters  []*Parameter           `json:"parameters" yaml:"parameters"`
	Responses   *OrderedMap[*Response] `json:"responses" yaml:"responses"`
	Security    []SecurityRequirement  `json:"security,omitempty" yaml:"security,omitempty"`
	RequestBody *RequestBody           `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
}

// SecurityRequirement names one scheme with an empty scope list.
type SecurityRequirement map[string][]string

type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Required    bool    `json:"required" yaml:"required"`
	Description *string `json:"description" yaml:"description"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

type RequestBody struct {
	Required bool                    `json:"required" yaml:"required"`
	Content  *OrderedMap[*MediaType] `json:"content" yaml:"content"`
}

type Response struct {
	Description string                  `json:"description" yaml:"description"`
	Content     *OrderedMap[*MediaType] `json:"content" yaml:"content"`
}

// MediaType.Example is always written, as null when absent.
type MediaType struct {
	Schema  *Schema    `json:"schema" yaml:"schema"`
	Example spec.Value `json:"example" yaml:"example"`
}

// Schema is the JSON Schema subset produced by inference. The zero Schema
// is the unconstrained schema {}.
type Schema struct {
	Type       string               `json:"type,omitempty" yaml:"type,omitempty"`
	Format     string               `json:"format,omitempty" yaml:"format,omitempty"`
	Nullable   bool                 `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Properties *OrderedMap[*Schema] `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema              `json:"items,omitempty" yaml:"items,omitempty"`
	Required   *RequiredFields      `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength  *int                 `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  *int                 `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// RequiredFields lists required property names. When attached to a schema
// but empty it is written as null rather than [].
type RequiredFields []string

func (r RequiredFields) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal([]string(r))
}

func (r RequiredFields) MarshalYAML() (interface{}, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []string(r), nil
}
