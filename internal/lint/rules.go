package lint

import (
	"fmt"
	"strings"

	"github.com/mark3labs/tera/internal/spec"
)

// Rule inspects a structurally valid schema.
type Rule func(*spec.Schema) []Issue

// Rules run in this order.
var Rules = []Rule{checkGeneralInfo, checkEndpoints}

func rules(s *spec.Schema) []Issue {
	var out []Issue
	for _, r := range Rules {
		out = append(out, r(s)...)
	}
	return out
}

func checkGeneralInfo(s *spec.Schema) []Issue {
	if s.API.Description == nil || strings.TrimSpace(*s.API.Description) == "" {
		return []Issue{{
			Code:     CodeMissingAPIDescription,
			Message:  "API definition is missing a general description.",
			Severity: SeverityWarning,
			Location: "api",
		}}
	}
	return nil
}

func isWriteMethod(m spec.Method) bool {
	switch m {
	case spec.POST, spec.PUT, spec.DELETE, spec.PATCH:
		return true
	}
	return false
}

func checkEndpoints(s *spec.Schema) []Issue {
	var out []Issue
	for _, ep := range s.Endpoints {
		loc := ep.ID()
		if strings.TrimSpace(ep.Summary) == "" && (ep.Description == nil || strings.TrimSpace(*ep.Description) == "") {
			out = append(out, Issue{
				Code:     CodeMissingDescription,
				Message:  "Endpoint lacks summary or description.",
				Severity: SeverityWarning,
				Location: loc,
			})
		}
		if isWriteMethod(ep.Method) && !ep.AuthRequired {
			out = append(out, Issue{
				Code:     CodeUnsafeOperation,
				Message:  fmt.Sprintf("Public %s endpoint detected.", ep.Method),
				Severity: SeverityWarning,
				Location: loc,
			})
		}
	}
	return out
}
