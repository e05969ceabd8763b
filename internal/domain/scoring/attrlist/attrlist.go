// Package attrlist converts between the bracketed textual list form that document
// attributes are stored in (for example "['kg', 'lb']") and plain string slices.
package attrlist

import "strings"

// Separator joins list items in the normalized form.
const Separator = ","

var quoteStripper = strings.NewReplacer("'", "", `"`, "")

// Normalize strips one leading "[" and one trailing "]", removes quote characters
// and collapses ", " separators to ",".
//
//	Normalize("['kg', 'lb']") == "kg,lb"
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = quoteStripper.Replace(s)
	return strings.ReplaceAll(s, ", ", Separator)
}

// Parse normalizes raw and splits it into items, trimming whitespace around each.
// An empty list ("", "[]") yields nil. Empty items between separators are kept so
// that positions stay aligned with a sibling list.
func Parse(raw string) []string {
	s := Normalize(raw)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, Separator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Format renders items in the bracketed form Parse accepts.
//
//	Format([]string{"kg", "lb"}) == "['kg', 'lb']"
func Format(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(it)
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}
