// Package validation checks untyped JSON payloads against declarative
// per-entity schemas and reports every failing field at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

type Kind int

const (
	String Kind = iota
	Number
	Integer
	Boolean
	Any
	Array
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	default:
		return "any"
	}
}

// Field describes one recognized key of a payload.
type Field struct {
	Name     string
	Kind     Kind
	Required bool // key must be present
	Nullable bool
	MinLen   int
	// Format is a validator tag applied to string values, e.g. "email".
	Format string
	Elem   *Schema // element schema for Array fields
}

type Schema struct {
	Name   string
	Fields []Field
}

// Values is the normalized output of a successful validation. It only holds
// recognized keys; integers are int64, numbers float64, nested arrays []Values.
type Values map[string]any

// Partial returns a copy of s where no field is required. Types and formats
// of present fields are still checked.
func (s *Schema) Partial() *Schema {
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Required = false
		fields[i] = f
	}
	return &Schema{Name: s.Name, Fields: fields}
}

// Decode parses a JSON request body keeping numbers as json.Number so that
// integer fields can be told apart from fractional ones.
func Decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ValidateJSON decodes body and validates it. Malformed JSON is reported as
// a plain error, not a validation error.
func (s *Schema) ValidateJSON(body []byte) (Values, error) {
	payload, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return s.Validate(payload)
}

func (s *Schema) Validate(payload any) (Values, error) {
	var issues []Issue
	out := s.validate(payload, nil, &issues)
	if len(issues) > 0 {
		return nil, &Error{Issues: issues}
	}
	return out, nil
}

func (s *Schema) validate(payload any, path []any, issues *[]Issue) Values {
	obj, ok := payload.(map[string]any)
	if !ok {
		*issues = append(*issues, typeIssue(path, "object", payload))
		return nil
	}

	out := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		fieldPath := appendPath(path, f.Name)
		raw, present := obj[f.Name]
		if !present {
			if f.Required {
				*issues = append(*issues, Issue{Path: fieldPath, Code: CodeRequired, Message: "Required"})
			}
			continue
		}
		if raw == nil {
			if f.Nullable || f.Kind == Any {
				out[f.Name] = nil
			} else {
				*issues = append(*issues, typeIssue(fieldPath, f.Kind.String(), nil))
			}
			continue
		}
		if v, ok := f.check(raw, fieldPath, issues); ok {
			out[f.Name] = v
		}
	}
	return out
}

func (f Field) check(raw any, path []any, issues *[]Issue) (any, bool) {
	switch f.Kind {
	case String:
		s, ok := raw.(string)
		if !ok {
			*issues = append(*issues, typeIssue(path, "string", raw))
			return nil, false
		}
		if f.MinLen > 0 && len(strings.TrimSpace(s)) < f.MinLen {
			*issues = append(*issues, Issue{Path: path, Code: CodeTooSmall, Message: fmt.Sprintf("%s is required", humanize(f.Name))})
			return nil, false
		}
		if f.Format != "" {
			if err := validate.Var(s, f.Format); err != nil {
				*issues = append(*issues, Issue{Path: path, Code: CodeInvalidFormat, Message: formatMessage(f.Format)})
				return nil, false
			}
		}
		return s, true

	case Number, Integer:
		n, ok := toFloat(raw)
		if !ok {
			*issues = append(*issues, typeIssue(path, "number", raw))
			return nil, false
		}
		if f.Kind == Number {
			return n, true
		}
		i, err := toInt(raw, n)
		if err != nil {
			*issues = append(*issues, Issue{Path: path, Code: CodeInvalidType, Message: err.Error()})
			return nil, false
		}
		return i, true

	case Boolean:
		b, ok := raw.(bool)
		if !ok {
			*issues = append(*issues, typeIssue(path, "boolean", raw))
			return nil, false
		}
		return b, true

	case Array:
		items, ok := raw.([]any)
		if !ok {
			*issues = append(*issues, typeIssue(path, "array", raw))
			return nil, false
		}
		before := len(*issues)
		out := make([]Values, 0, len(items))
		for i, item := range items {
			v := f.Elem.validate(item, appendPath(path, i), issues)
			out = append(out, v)
		}
		return out, len(*issues) == before

	default:
		return raw, true
	}
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// maxExactInt is the largest magnitude a float64 holds without rounding.
const maxExactInt = 1 << 53

// toInt keeps every digit of an integer literal. Literals written in float
// form ("2.0", "1e3") are accepted only while they convert exactly.
func toInt(raw any, n float64) (int64, error) {
	if num, ok := raw.(json.Number); ok {
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
	}
	if n != math.Trunc(n) {
		return 0, errors.New("Expected integer, received float")
	}
	if math.Abs(n) > maxExactInt {
		return 0, errors.New("Expected integer, received number out of range")
	}
	return int64(n), nil
}

func appendPath(path []any, elem any) []any {
	out := make([]any, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func humanize(name string) string {
	switch name {
	case "companyname":
		return "Company name"
	}
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
