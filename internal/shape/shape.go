// Package shape describes the structure a completion response must follow and
// validates model output against it.
//
// Shapes are plain data: a list of field descriptors, each with a kind, a
// required flag and an optional enum. Validate and Parse never return errors
// for bad input; they return a Result carrying the issues found.
package shape

// Kind is the JSON kind a field must have
type Kind string

// Field kinds
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Field describes one key of an object
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	Nullable    bool
	// Enum restricts a string field to these values. Matching ignores case and
	// the canonical spelling is stored.
	Enum []string
	// Elem describes array elements
	Elem *Field
	// Fields describes object members
	Fields []Field
}

// Shape is a named object descriptor
type Shape struct {
	Name   string
	Fields []Field
}

// New creates a shape
func New(name string, fields ...Field) Shape {
	return Shape{Name: name, Fields: fields}
}

// Field returns the descriptor for key
func (s Shape) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys lists the top level keys in declaration order
func (s Shape) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Name
	}
	return keys
}

// Pick returns a new shape with only the given keys, in the order given.
// Unknown keys are ignored.
func (s Shape) Pick(name string, keys ...string) Shape {
	out := Shape{Name: name}
	for _, k := range keys {
		if f, ok := s.Field(k); ok {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// Optional returns a copy of the shape where no top level field is required
func (s Shape) Optional(name string) Shape {
	out := Shape{Name: name, Fields: make([]Field, len(s.Fields))}
	for i, f := range s.Fields {
		f.Required = false
		out.Fields[i] = f
	}
	return out
}

// String declares a string field
func String(name, description string) Field {
	return Field{Name: name, Kind: KindString, Description: description}
}

// Number declares a number field
func Number(name, description string) Field {
	return Field{Name: name, Kind: KindNumber, Description: description}
}

// Integer declares an integer field
func Integer(name, description string) Field {
	return Field{Name: name, Kind: KindInteger, Description: description}
}

// Boolean declares a boolean field
func Boolean(name, description string) Field {
	return Field{Name: name, Kind: KindBoolean, Description: description}
}

// Enum declares a string field restricted to values
func Enum(name, description string, values ...string) Field {
	return Field{Name: name, Kind: KindString, Description: description, Enum: values}
}

// Array declares an array field
func Array(name, description string, elem Field) Field {
	return Field{Name: name, Kind: KindArray, Description: description, Elem: &elem}
}

// Object declares a nested object field
func Object(name, description string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, Description: description, Fields: fields}
}

// Req marks the field required
func (f Field) Req() Field {
	f.Required = true
	return f
}

// Null marks the field nullable
func (f Field) Null() Field {
	f.Nullable = true
	return f
}
