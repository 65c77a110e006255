package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const trailingSectionsToken = "sections"

// FormatLabel turns a section type id into the label shown to users:
// underscores become spaces, a trailing "sections" token is dropped
// (case-insensitive), the result is trimmed and its first letter upper-cased.
func FormatLabel(id string) string {
	label := strings.ReplaceAll(id, "_", " ")
	label = strings.TrimSpace(label)

	if fields := strings.Fields(label); len(fields) > 0 {
		last := fields[len(fields)-1]
		if strings.EqualFold(last, trailingSectionsToken) {
			label = strings.TrimSpace(label[:strings.LastIndex(label, last)])
		}
	}

	if label == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
