package shape

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractObject finds a JSON object in model output. Models wrap JSON in prose
// or code fences often enough that a direct parse is only the first attempt.
func ExtractObject(text string) (string, bool) {
	return extract(text, '{', '}')
}

// ExtractArray finds a JSON array in model output
func ExtractArray(text string) (string, bool) {
	return extract(text, '[', ']')
}

// SplitArray extracts a JSON array and returns the raw text of each element
func SplitArray(text string) ([]string, bool) {
	payload, ok := ExtractArray(text)
	if !ok {
		return nil, false
	}

	elems := gjson.Parse(payload).Array()
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Raw
	}
	return out, true
}

func extract(text string, open, closing byte) (string, bool) {
	text = strings.TrimSpace(text)

	candidates := []string{text}
	for _, fence := range []string{"```json", "```"} {
		if idx := strings.Index(text, fence); idx >= 0 {
			after := text[idx+len(fence):]
			if end := strings.Index(after, "```"); end >= 0 {
				candidates = append(candidates, strings.TrimSpace(after[:end]))
			}
		}
	}
	if start := strings.IndexByte(text, open); start >= 0 {
		if end := strings.LastIndexByte(text, closing); end > start {
			candidates = append(candidates, text[start:end+1])
		}
	}

	for _, c := range candidates {
		if len(c) > 0 && c[0] == open && gjson.Valid(c) {
			return c, true
		}
	}
	return "", false
}
