package shape

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Issue is one validation failure
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Result is the outcome of validating a value against a shape
type Result struct {
	Value  map[string]any
	Issues []Issue
	Raw    string
	shape  string
}

// OK reports whether validation passed
func (r Result) OK() bool {
	return len(r.Issues) == 0 && r.Value != nil
}

// Err returns a *ValidationError describing the issues, or nil when OK
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Shape: r.shape, Issues: r.Issues, Raw: r.Raw}
}

// ValidationError means the model answered but not in the requested shape.
// It is never worth retrying the same prompt.
type ValidationError struct {
	Shape  string
	Issues []Issue
	Raw    string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("response does not match shape %q: %s", e.Shape, strings.Join(parts, "; "))
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// Parse locates a JSON object in raw model text and validates it
func (s Shape) Parse(raw string) Result {
	payload, ok := ExtractObject(raw)
	if !ok {
		return Result{Raw: raw, shape: s.Name, Issues: []Issue{{Message: "response does not contain a JSON object"}}}
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return Result{Raw: raw, shape: s.Name, Issues: []Issue{{Message: "response is not valid JSON: " + err.Error()}}}
	}

	res := s.Validate(value)
	res.Raw = raw
	return res
}

// Validate checks value against the shape. Scalars are coerced where the
// intent is unambiguous ("3" for an integer, 5 for a string). The returned
// value is a copy holding only the declared keys.
func (s Shape) Validate(value map[string]any) Result {
	res := Result{shape: s.Name}
	if value == nil {
		res.Issues = append(res.Issues, Issue{Message: "value is not an object"})
		return res
	}

	res.Value = validateObject("", s.Fields, value, &res.Issues)
	return res
}

func validateObject(prefix string, fields []Field, in map[string]any, issues *[]Issue) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		v, present := in[f.Name]
		if !present || v == nil {
			switch {
			case f.Required:
				*issues = append(*issues, Issue{Path: path, Message: "is required"})
			case present && f.Nullable:
				out[f.Name] = nil
			}
			continue
		}

		coerced, ok := coerce(path, f, v, issues)
		if !ok {
			continue
		}
		if f.Required && f.Kind == KindString {
			if str, _ := coerced.(string); strings.TrimSpace(str) == "" {
				*issues = append(*issues, Issue{Path: path, Message: "must not be empty"})
				continue
			}
		}
		out[f.Name] = coerced
	}
	return out
}

func coerce(path string, f Field, v any, issues *[]Issue) (any, bool) {
	fail := func(format string, args ...any) (any, bool) {
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
		return nil, false
	}

	switch f.Kind {
	case KindString:
		var str string
		switch t := v.(type) {
		case string:
			str = t
		case float64:
			str = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			str = strconv.FormatBool(t)
		default:
			return fail("must be a string")
		}
		if len(f.Enum) == 0 {
			return str, true
		}
		for _, allowed := range f.Enum {
			if strings.EqualFold(strings.TrimSpace(str), allowed) {
				return allowed, true
			}
		}
		return fail("must be one of: %s", strings.Join(f.Enum, ", "))

	case KindNumber, KindInteger:
		var n float64
		switch t := v.(type) {
		case float64:
			n = t
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "+")), 64)
			if err != nil {
				return fail("must be a number")
			}
			n = parsed
		default:
			return fail("must be a number")
		}
		if f.Kind == KindInteger && n != math.Trunc(n) {
			return fail("must be an integer")
		}
		return n, true

	case KindBoolean:
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return fail("must be a boolean")
			}
			return b, true
		default:
			return fail("must be a boolean")
		}

	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return fail("must be an array")
		}
		if f.Elem == nil {
			return arr, true
		}
		out := make([]any, 0, len(arr))
		valid := true
		for i, elem := range arr {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if elem == nil {
				*issues = append(*issues, Issue{Path: elemPath, Message: "must not be null"})
				valid = false
				continue
			}
			c, ok := coerce(elemPath, *f.Elem, elem, issues)
			if !ok {
				valid = false
				continue
			}
			out = append(out, c)
		}
		return out, valid

	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fail("must be an object")
		}
		before := len(*issues)
		out := validateObject(path, f.Fields, obj, issues)
		return out, len(*issues) == before

	default:
		return v, true
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
