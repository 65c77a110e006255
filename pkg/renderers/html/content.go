package html

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// htmlSuffix is appended to a textarea field id for its rendered markdown.
const htmlSuffix = "_html"

type markup struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkup() *markup {
	return &markup{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// render converts markdown to sanitised HTML. On conversion failure the
// escaped source is returned.
func (m *markup) render(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return m.policy.Sanitize(source)
	}
	return strings.TrimSpace(m.policy.Sanitize(buf.String()))
}

// prepare returns a copy of content with a rendered "<id>_html" companion for
// every textarea field, rows of array fields included.
func (m *markup) prepare(section schema.SectionSchema, content schema.Content) map[string]any {
	out := map[string]any(schema.CloneContent(content))
	if out == nil {
		out = map[string]any{}
	}
	m.annotate(section.Fields, out)
	for _, field := range section.Fields {
		if field.Kind != schema.KindArray {
			continue
		}
		rows, _ := out[field.ID].([]any)
		for _, row := range rows {
			if record, ok := row.(map[string]any); ok {
				m.annotate(field.ItemFields, record)
			}
		}
	}
	return out
}

func (m *markup) annotate(fields []schema.FieldDefinition, record map[string]any) {
	for _, field := range fields {
		if field.Kind != schema.KindTextarea {
			continue
		}
		text, _ := record[field.ID].(string)
		record[field.ID+htmlSuffix] = m.render(text)
	}
}

// safeURL passes http(s), mailto and relative references and replaces
// anything else with "#".
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto":
		return raw
	default:
		return "#"
	}
}
