package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Raw shapes mirror the file layout. Pointers distinguish a missing key from
// a zero value; yaml.Node keeps an explicit `example: null` apart from an
// absent example.

type rawFile struct {
	API       *rawAPI        `yaml:"api"`
	Endpoints *[]rawEndpoint `yaml:"endpoints"`
}

type rawAPI struct {
	Name        *string  `yaml:"name"`
	Version     *string  `yaml:"version"`
	Description *string  `yaml:"description"`
	BaseURL     *string  `yaml:"base_url"`
	Auth        *rawAuth `yaml:"auth"`
}

type rawAuth struct {
	Type *string `yaml:"type"`
}

type rawEndpoint struct {
	Path         *string       `yaml:"path"`
	Method       *string       `yaml:"method"`
	Summary      *string       `yaml:"summary"`
	Tag          *string       `yaml:"tag"`
	Description  *string       `yaml:"description"`
	AuthRequired *bool         `yaml:"auth_required"`
	Params       *rawParams    `yaml:"params"`
	Body         []rawField    `yaml:"body"`
	Responses    *rawResponses `yaml:"responses"`
}

type rawParams struct {
	Query  []rawField `yaml:"query"`
	Path   []rawField `yaml:"path"`
	Header []rawField `yaml:"header"`
}

type rawField struct {
	Name        *string   `yaml:"name"`
	Example     yaml.Node `yaml:"example"`
	Required    *bool     `yaml:"required"`
	Description *string   `yaml:"description"`
	MinLength   *int      `yaml:"min_length"`
	MaxLength   *int      `yaml:"max_length"`
}

type rawResponses struct {
	Success *rawSuccess `yaml:"success"`
	Errors  []rawError  `yaml:"errors"`
}

type rawSuccess struct {
	Status      *int      `yaml:"status"`
	Description *string   `yaml:"description"`
	Example     yaml.Node `yaml:"example"`
}

type rawError struct {
	Status      *int      `yaml:"status"`
	Message     *string   `yaml:"message"`
	Description *string   `yaml:"description"`
	Example     yaml.Node `yaml:"example"`
}

const (
	defaultBaseURL            = "/"
	defaultSuccessStatus      = 200
	defaultSuccessDescription = "Success"
)

// Parse decodes a YAML or JSON document and enforces the model invariants.
// Unknown keys are rejected. All violations are collected into a single
// *SpecError with Code ValidationError.
func Parse(data []byte, location string) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SpecError{Code: InputError, Message: "spec: the file is empty", Location: location}
	}

	var raw rawFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, mapDecodeErr(err, location)
	}

	v := &validator{}
	schema := v.schema(&raw)
	if len(v.fields) > 0 {
		return nil, &SpecError{
			Code:        ValidationError,
			Message:     fmt.Sprintf("spec: %d validation error(s)", len(v.fields)),
			Location:    location,
			JSONPointer: v.fields[0].Pointer,
			Fields:      v.fields,
		}
	}
	return schema, nil
}

var (
	lineRe         = regexp.MustCompile(`line (\d+)`)
	unknownFieldRe = regexp.MustCompile(`field (\S+) not found in type \S+`)
)

func mapDecodeErr(err error, location string) error {
	if errors.Is(err, io.EOF) {
		return &SpecError{Code: InputError, Message: "spec: the file is empty", Location: location, Cause: err}
	}
	var te *yaml.TypeError
	if errors.As(err, &te) {
		fields := make([]FieldError, 0, len(te.Errors))
		for _, msg := range te.Errors {
			fields = append(fields, fieldErrorFromYAML(msg))
		}
		return &SpecError{
			Code:     ValidationError,
			Message:  fmt.Sprintf("spec: %d validation error(s)", len(fields)),
			Location: location,
			Fields:   fields,
			Cause:    err,
		}
	}
	se := &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
		se.Line, _ = strconv.Atoi(m[1])
	}
	return se
}

func fieldErrorFromYAML(msg string) FieldError {
	fe := FieldError{Message: msg}
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		fe.Line, _ = strconv.Atoi(m[1])
		fe.Message = strings.TrimSpace(strings.TrimPrefix(msg, m[0]+":"))
	}
	if m := unknownFieldRe.FindStringSubmatch(fe.Message); m != nil {
		fe.Message = fmt.Sprintf("unknown field %q", m[1])
	}
	return fe
}

type validator struct {
	fields []FieldError
}

func (v *validator) fail(pointer, format string, args ...any) {
	v.fields = append(v.fields, FieldError{Pointer: pointer, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) schema(raw *rawFile) *Schema {
	out := &Schema{}
	if raw.API == nil {
		v.fail("#/api", "field required")
	} else {
		out.API = v.api(raw.API)
	}
	if raw.Endpoints == nil {
		v.fail("#/endpoints", "field required")
		return out
	}
	for i := range *raw.Endpoints {
		out.Endpoints = append(out.Endpoints, v.endpoint(&(*raw.Endpoints)[i], fmt.Sprintf("#/endpoints/%d", i)))
	}
	return out
}

func (v *validator) api(raw *rawAPI) API {
	api := API{Description: raw.Description, BaseURL: defaultBaseURL}
	api.Name = v.required(raw.Name, "#/api/name")
	api.Version = v.required(raw.Version, "#/api/version")
	if raw.BaseURL != nil {
		api.BaseURL = *raw.BaseURL
	}
	if raw.Auth != nil {
		t := AuthType(v.required(raw.Auth.Type, "#/api/auth/type"))
		if raw.Auth.Type != nil && !t.Valid() {
			v.fail("#/api/auth/type", "must be one of bearer, basic, apikey (got %q)", t)
		}
		api.Auth = &Auth{Type: t}
	}
	return api
}

func (v *validator) endpoint(raw *rawEndpoint, ptr string) Endpoint {
	ep := Endpoint{Description: raw.Description}
	ep.Path = v.required(raw.Path, ptr+"/path")
	m := Method(v.required(raw.Method, ptr+"/method"))
	if raw.Method != nil && !m.Valid() {
		v.fail(ptr+"/method", "must be one of %s (got %q)", joinMethods(), m)
	}
	ep.Method = m
	ep.Summary = v.required(raw.Summary, ptr+"/summary")
	if raw.Tag != nil {
		ep.Tag = *raw.Tag
	}
	if raw.AuthRequired != nil {
		ep.AuthRequired = *raw.AuthRequired
	}
	if raw.Params != nil {
		ep.Params = &Params{
			Path:   v.fieldList(raw.Params.Path, ptr+"/params/path"),
			Query:  v.fieldList(raw.Params.Query, ptr+"/params/query"),
			Header: v.fieldList(raw.Params.Header, ptr+"/params/header"),
		}
	}
	ep.Body = v.fieldList(raw.Body, ptr+"/body")
	if raw.Responses == nil {
		v.fail(ptr+"/responses", "field required")
		return ep
	}
	ep.Responses = v.responses(raw.Responses, ptr+"/responses")
	return ep
}

func (v *validator) fieldList(raw []rawField, ptr string) []Field {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Field, 0, len(raw))
	for i := range raw {
		rf := &raw[i]
		fptr := fmt.Sprintf("%s/%d", ptr, i)
		f := Field{Description: rf.Description, MinLength: rf.MinLength, MaxLength: rf.MaxLength}
		f.Name = v.required(rf.Name, fptr+"/name")
		f.Example = v.example(&rf.Example, fptr+"/example", true)
		if rf.Required != nil {
			f.Required = *rf.Required
		}
		if rf.MinLength != nil && *rf.MinLength < 0 {
			v.fail(fptr+"/min_length", "must be greater than or equal to 0")
		}
		if rf.MaxLength != nil && *rf.MaxLength < 0 {
			v.fail(fptr+"/max_length", "must be greater than or equal to 0")
		}
		out = append(out, f)
	}
	return out
}

func (v *validator) responses(raw *rawResponses, ptr string) Responses {
	var out Responses
	if raw.Success == nil {
		v.fail(ptr+"/success", "field required")
	} else {
		s := raw.Success
		out.Success = SuccessResponse{Status: defaultSuccessStatus, Description: defaultSuccessDescription}
		if s.Status != nil {
			out.Success.Status = *s.Status
		}
		if s.Description != nil {
			out.Success.Description = *s.Description
		}
		out.Success.Example = v.example(&s.Example, ptr+"/success/example", true)
	}
	for i := range raw.Errors {
		re := &raw.Errors[i]
		eptr := fmt.Sprintf("%s/errors/%d", ptr, i)
		e := ErrorResponse{Description: re.Description}
		if re.Status == nil {
			v.fail(eptr+"/status", "field required")
		} else {
			e.Status = *re.Status
		}
		e.Message = v.required(re.Message, eptr+"/message")
		e.Example = v.example(&re.Example, eptr+"/example", false)
		out.Errors = append(out.Errors, e)
	}
	return out
}

func (v *validator) required(s *string, ptr string) string {
	if s == nil {
		v.fail(ptr, "field required")
		return ""
	}
	return *s
}

func (v *validator) example(node *yaml.Node, ptr string, mandatory bool) Value {
	if node.Kind == 0 {
		if mandatory {
			v.fail(ptr, "field required")
		}
		return Null()
	}
	val, err := valueFromNode(node, map[*yaml.Node]bool{})
	if err != nil {
		v.fail(ptr, "%v", err)
		return Null()
	}
	return val
}

func joinMethods() string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
