package openapi

import "github.com/mark3labs/tera/internal/spec"

const uuidLength = 36

// Infer derives a schema from an example value. It never fails: kinds it
// does not recognize become {type: string}.
//
// Objects keep their key order at every depth. Arrays are typed by their
// first element only; an empty array gets the unconstrained item schema {}.
// null maps to a nullable string.
func Infer(v spec.Value) *Schema {
	switch v.Kind() {
	case spec.KindBool:
		return &Schema{Type: "boolean"}
	case spec.KindString:
		if looksLikeUUID(v.AsString()) {
			return &Schema{Type: "string", Format: "uuid"}
		}
		return &Schema{Type: "string"}
	case spec.KindInteger:
		return &Schema{Type: "integer"}
	case spec.KindNumber:
		return &Schema{Type: "number"}
	case spec.KindObject:
		props := NewOrderedMap[*Schema]()
		for _, m := range v.Members() {
			props.Set(m.Key, Infer(m.Value))
		}
		return &Schema{Type: "object", Properties: props}
	case spec.KindArray:
		items := v.Items()
		if len(items) == 0 {
			return &Schema{Type: "array", Items: &Schema{}}
		}
		return &Schema{Type: "array", Items: Infer(items[0])}
	case spec.KindNull:
		return &Schema{Type: "string", Nullable: true}
	}
	return &Schema{Type: "string"}
}

// looksLikeUUID accepts any 36 characters drawn from hex digits and '-'.
// Hyphen positions are not checked.
func looksLikeUUID(s string) bool {
	if len(s) != uuidLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F', c == '-':
		default:
			return false
		}
	}
	return true
}
