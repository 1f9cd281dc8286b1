package openapi

import (
	"fmt"

	"github.com/mark3labs/tera/internal/spec"
)

// Finding codes reported by Check.
const (
	CodeDuplicateOperationID   = "duplicate_operation_id"
	CodeDuplicateRoute         = "duplicate_route"
	CodeDanglingSecurityScheme = "dangling_security_scheme"
	CodeAuthWithoutScheme      = "auth_without_scheme"
	CodeMaxLengthIgnored       = "max_length_ignored"
)

// Finding is a generation hazard: the document would still be produced, but
// possibly not as the author intended.
type Finding struct {
	Code     string
	Message  string
	Location string // JSON Pointer into the source, e.g. "#/endpoints/2"
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Location, f.Message, f.Code)
}

// Check inspects s for behavior Assemble performs silently: colliding
// operation ids, overwritten routes, security requirements without a
// matching scheme and dropped max_length constraints. Pass the same options
// that will be given to Assemble. Findings follow endpoint order.
func Check(s *spec.Schema, opts ...Option) []Finding {
	cfg := newConfig(opts)
	schemes := securitySchemes(s.API.Auth, cfg)

	var out []Finding
	routes := map[string]int{}
	ids := map[string]string{}
	for i, ep := range s.Endpoints {
		loc := fmt.Sprintf("#/endpoints/%d", i)
		route := ep.ID()

		if first, dup := routes[route]; dup {
			out = append(out, Finding{
				Code:     CodeDuplicateRoute,
				Message:  fmt.Sprintf("%s is declared again; it replaces #/endpoints/%d", route, first),
				Location: loc,
			})
		} else {
			routes[route] = i
			id := OperationID(ep.Method, ep.Path)
			if other, taken := ids[id]; taken {
				out = append(out, Finding{
					Code:     CodeDuplicateOperationID,
					Message:  fmt.Sprintf("operationId %q of %s is also used by %s", id, route, other),
					Location: loc,
				})
			} else {
				ids[id] = route
			}
		}

		if ep.AuthRequired {
			switch {
			case s.API.Auth == nil:
				out = append(out, Finding{
					Code:     CodeAuthWithoutScheme,
					Message:  fmt.Sprintf("%s requires auth but api.auth is not set; no security requirement is emitted", route),
					Location: loc + "/auth_required",
				})
			default:
				name := SchemeName(s.API.Auth.Type)
				if _, ok := schemes.Get(name); !ok {
					out = append(out, Finding{
						Code:     CodeDanglingSecurityScheme,
						Message:  fmt.Sprintf("%s references security scheme %q which is not defined", route, name),
						Location: loc + "/auth_required",
					})
				}
			}
		}

		if !cfg.maxLength && ep.Params != nil {
			out = append(out, maxLengthFindings(ep.Params.Path, loc+"/params/path")...)
			out = append(out, maxLengthFindings(ep.Params.Query, loc+"/params/query")...)
			out = append(out, maxLengthFindings(ep.Params.Header, loc+"/params/header")...)
		}
	}
	return out
}

func maxLengthFindings(fields []spec.Field, ptr string) []Finding {
	var out []Finding
	for i, f := range fields {
		if f.MaxLength == nil {
			continue
		}
		out = append(out, Finding{
			Code:     CodeMaxLengthIgnored,
			Message:  fmt.Sprintf("max_length of parameter %q is not written to the document", f.Name),
			Location: fmt.Sprintf("%s/%d/max_length", ptr, i),
		})
	}
	return out
}
