package openapi

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidationError reports a generated document that kin-openapi rejects.
type ValidationError struct {
	Pointer string // JSON Pointer of the offending node, when known
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Pointer != "" {
		return fmt.Sprintf("openapi: invalid document at %s: %v", e.Pointer, e.Cause)
	}
	return fmt.Sprintf("openapi: invalid document: %v", e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Validate round-trips doc through the kin-openapi loader and validator.
func Validate(ctx context.Context, doc *Document) error {
	if doc == nil {
		return &ValidationError{Cause: errors.New("nil document")}
	}
	raw, err := marshalJSON(doc)
	if err != nil {
		return fmt.Errorf("openapi: encode document: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	t, err := loader.LoadFromData(raw)
	if err != nil {
		return &ValidationError{Pointer: extractJSONPointer(err), Cause: err}
	}
	if err := t.Validate(ctx); err != nil {
		return &ValidationError{Pointer: extractJSONPointer(err), Cause: err}
	}
	return nil
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	var me openapi3.MultiError
	if errors.As(err, &me) && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
