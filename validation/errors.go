package validation

import (
	"fmt"
	"strings"
)

const (
	CodeRequired      = "required"
	CodeInvalidType   = "invalid_type"
	CodeInvalidFormat = "invalid_format"
	CodeTooSmall      = "too_small"
)

// Issue is a single failing field. Path holds field names and, for nested
// arrays, element indexes.
type Issue struct {
	Path    []any  `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error aggregates every issue found in one payload.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.PathString(), is.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (is Issue) PathString() string {
	var b strings.Builder
	for i, p := range is.Path {
		switch v := p.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

func typeIssue(path []any, expected string, got any) Issue {
	return Issue{
		Path:    path,
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("Expected %s, received %s", expected, typeName(got)),
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

func formatMessage(tag string) string {
	switch tag {
	case "email":
		return "Invalid email"
	case "isodatetime":
		return "Invalid datetime"
	default:
		return "Invalid " + tag
	}
}
