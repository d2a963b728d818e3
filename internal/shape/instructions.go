package shape

import (
	"fmt"
	"strings"
)

// FormatInstructions renders the block appended to every prompt telling the
// model what JSON to produce.
func (s Shape) FormatInstructions() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. ")
	b.WriteString("Do not wrap it in prose. Omit keys you cannot determine.\n")
	b.WriteString("The object uses these keys:\n")
	writeFields(&b, s.Fields, 0)
	return b.String()
}

// ArrayInstructions renders the instruction block for a JSON array of n
// objects of this shape.
func (s Shape) ArrayInstructions(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Respond with a JSON array of exactly %d objects and nothing else. ", n)
	b.WriteString("Element i must describe input i, in the same order.\n")
	b.WriteString("Each object uses these keys:\n")
	writeFields(&b, s.Fields, 0)
	return b.String()
}

func writeFields(b *strings.Builder, fields []Field, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		fmt.Fprintf(b, "%s- %q (%s", indent, f.Name, describeKind(f))
		if f.Required {
			b.WriteString(", required")
		}
		if f.Nullable {
			b.WriteString(", may be null")
		}
		b.WriteString(")")
		if f.Description != "" {
			b.WriteString(": ")
			b.WriteString(f.Description)
		}
		b.WriteString("\n")
		if f.Kind == KindObject {
			writeFields(b, f.Fields, depth+1)
		}
		if f.Kind == KindArray && f.Elem != nil && f.Elem.Kind == KindObject {
			writeFields(b, f.Elem.Fields, depth+1)
		}
	}
}

func describeKind(f Field) string {
	switch {
	case len(f.Enum) > 0:
		quoted := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return "one of " + strings.Join(quoted, ", ")
	case f.Kind == KindArray && f.Elem != nil:
		return "array of " + describeKind(*f.Elem)
	default:
		return string(f.Kind)
	}
}
