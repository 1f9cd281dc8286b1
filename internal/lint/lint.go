// Package lint checks documentation files for syntax and structure errors and
// for quality problems that still produce a document.
package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeFileNotFound          = "file_not_found"
	CodeUnknownFormat         = "unknown_format"
	CodeIOError               = "io_error"
	CodeYAMLSyntax            = "yaml_syntax"
	CodeJSONSyntax            = "json_syntax"
	CodeSchemaError           = "schema_error"
	CodeMissingAPIDescription = "missing_api_description"
	CodeMissingDescription    = "missing_description"
	CodeUnsafeOperation       = "unsafe_operation"
	CodeInvalidOpenAPI        = "invalid_openapi"
)

type Issue struct {
	Code     string
	Message  string
	Severity Severity
	Location string
	Line     int
}

// String formats the issue as "[WARNING] message at location (Line n)".
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString("[" + strings.ToUpper(string(i.Severity)) + "] " + i.Message)
	if i.Location != "" {
		b.WriteString(" at " + i.Location)
	}
	if i.Line > 0 {
		b.WriteString(" (Line " + strconv.Itoa(i.Line) + ")")
	}
	return b.String()
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Linter runs the file, structure and rule stages. Quality rules only run
// on files without errors.
type Linter struct {
	// Ignore drops warnings with these codes. Errors are always reported.
	Ignore []string
	// Strict reports generation findings as errors and validates the
	// generated document with kin-openapi.
	Strict bool
	// Options are passed to the generator, so findings match what build
	// would produce.
	Options []openapi.Option
	Logger  *slog.Logger
}

// Lint checks the file at path. It never fails; every problem, including
// I/O failures, is reported as an Issue.
func (l Linter) Lint(ctx context.Context, path string) []Issue {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	data, issues := readFile(path)
	if issues != nil {
		return issues
	}

	schema, issues := parse(data, path)
	if HasErrors(issues) {
		return issues
	}
	logger.Debug("structure ok, running rules", "path", path, "endpoints", len(schema.Endpoints))

	issues = append(issues, rules(schema)...)
	findingSeverity := SeverityWarning
	if l.Strict {
		findingSeverity = SeverityError
	}
	for _, f := range openapi.Check(schema, l.Options...) {
		issues = append(issues, Issue{Code: f.Code, Message: f.Message, Severity: findingSeverity, Location: f.Location})
	}
	if l.Strict {
		err := openapi.Validate(ctx, openapi.Assemble(schema, l.Options...))
		var ve *openapi.ValidationError
		switch {
		case errors.As(err, &ve):
			issues = append(issues, Issue{Code: CodeInvalidOpenAPI, Message: ve.Cause.Error(), Severity: SeverityError, Location: ve.Pointer})
		case err != nil:
			issues = append(issues, Issue{Code: CodeInvalidOpenAPI, Message: err.Error(), Severity: SeverityError})
		}
	}
	return l.filterIgnored(issues)
}

func (l Linter) filterIgnored(issues []Issue) []Issue {
	if len(l.Ignore) == 0 {
		return issues
	}
	ignored := make(map[string]struct{}, len(l.Ignore))
	for _, code := range l.Ignore {
		ignored[strings.TrimSpace(code)] = struct{}{}
	}
	out := issues[:0]
	for _, i := range issues {
		if _, skip := ignored[i.Code]; skip && i.Severity == SeverityWarning {
			continue
		}
		out = append(out, i)
	}
	return out
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// readFile runs the file stage: existence, extension and syntax.
func readFile(path string) ([]byte, []Issue) {
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, []Issue{{Code: CodeFileNotFound, Message: "File not found: " + path, Severity: SeverityError}}
	}
	if err == nil && st.IsDir() {
		return nil, []Issue{{Code: CodeIOError, Message: path + " is a directory", Severity: SeverityError}}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return nil, []Issue{{Code: CodeUnknownFormat, Message: fmt.Sprintf("Unsupported extension %q.", ext), Severity: SeverityError}}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []Issue{{Code: CodeIOError, Message: err.Error(), Severity: SeverityError}}
	}

	if ext == ".json" {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			issue := Issue{Code: CodeJSONSyntax, Message: "Invalid JSON: " + err.Error(), Severity: SeverityError}
			var se *json.SyntaxError
			if errors.As(err, &se) {
				issue.Line = lineAt(data, se.Offset)
			}
			return nil, []Issue{issue}
		}
		return data, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		issue := Issue{Code: CodeYAMLSyntax, Message: "Invalid YAML: " + err.Error(), Severity: SeverityError}
		if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
			issue.Line, _ = strconv.Atoi(m[1])
		}
		return nil, []Issue{issue}
	}
	return data, nil
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

// parse runs the structure stage, turning each violation into a
// schema_error.
func parse(data []byte, path string) (*spec.Schema, []Issue) {
	schema, err := spec.Parse(data, path)
	if err == nil {
		return schema, nil
	}
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return nil, []Issue{{Code: CodeSchemaError, Message: err.Error(), Severity: SeverityError}}
	}
	if len(se.Fields) == 0 {
		code := CodeSchemaError
		if se.Code == spec.ParseError {
			code = CodeYAMLSyntax
		}
		return nil, []Issue{{Code: code, Message: se.Message, Severity: SeverityError, Line: se.Line}}
	}
	issues := make([]Issue, 0, len(se.Fields))
	for _, f := range se.Fields {
		issues = append(issues, Issue{Code: CodeSchemaError, Message: f.Message, Severity: SeverityError, Location: f.Pointer, Line: f.Line})
	}
	return nil, issues
}
