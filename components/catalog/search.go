package catalog

import (
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Entry describes one section type offered to a picker. Known is false for
// ids the registry cannot build; adding one is a no-op in the editor.
type Entry struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Known   bool   `json:"known"`
	Fields  int    `json:"fields,omitempty"`
	Preview string `json:"preview,omitempty"`
}

// Search runs the picker filter over sections and caps the result. An empty
// query lists the whole catalog unless opts.EmptySearchMode is
// EmptySearchNone.
func Search(sections []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}
	if strings.TrimSpace(query) == "" && opts.EmptySearchMode == EmptySearchNone {
		return nil
	}
	matches := editor.Filter(sections, query)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Entries runs Search and describes each match through the registry.
func Entries(sections []string, query string, limit int, opts Options) []Entry {
	matches := Search(sections, query, limit, opts)
	out := make([]Entry, 0, len(matches))
	reg := opts.registry()
	for _, id := range matches {
		out = append(out, describe(reg, id))
	}
	return out
}

func describe(reg *schema.Registry, id string) Entry {
	entry, ok := reg.Entry(id)
	if !ok {
		return Entry{Value: id, Label: schema.FormatLabel(id)}
	}
	label := entry.Schema.Name
	if label == "" || label == id {
		label = schema.FormatLabel(id)
	}
	return Entry{
		Value:   id,
		Label:   label,
		Known:   true,
		Fields:  len(entry.Schema.Fields),
		Preview: entry.Preview,
	}
}
