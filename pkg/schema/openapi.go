package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI vendor extensions understood by ImportOpenAPI.
const (
	// ExtensionSection marks a components.schemas entry as a section. The
	// value is either `true` or an object with type/name/maxItems/preview.
	ExtensionSection = "x-section"
	// ExtensionFieldKind forces the field kind of a property.
	ExtensionFieldKind = "x-field-kind"
	// ExtensionFieldOrder lists property names in display order.
	ExtensionFieldOrder = "x-field-order"
	// ExtensionOrder is a per-property numeric sort key.
	ExtensionOrder = "x-order"
	// ExtensionItemName is the singular noun for array rows.
	ExtensionItemName = "x-item-name"
)

// ImportOpenAPI reads section schemas from the components.schemas entries of
// an OpenAPI 3 document that carry the x-section extension. The returned
// sections are validated but not registered; pass them to NewRegistry,
// optionally alongside BuiltinSections.
func ImportOpenAPI(ctx context.Context, raw []byte) ([]SectionSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: openapi document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var sections []SectionSchema
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		meta, ok := sectionExtension(ref.Value.Extensions[ExtensionSection])
		if !ok {
			continue
		}
		section, err := convertSection(name, meta, ref.Value)
		if err != nil {
			return nil, err
		}
		if err := Validate(section); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, nil
}

type sectionMeta struct {
	Type     string
	Name     string
	Preview  string
	MaxItems int
}

func sectionExtension(value any) (sectionMeta, bool) {
	switch typed := value.(type) {
	case bool:
		return sectionMeta{}, typed
	case map[string]any:
		meta := sectionMeta{
			Type:    stringValue(typed["type"]),
			Name:    stringValue(typed["name"]),
			Preview: stringValue(typed["preview"]),
		}
		meta.MaxItems, _ = intValue(typed["maxItems"])
		return meta, true
	default:
		return sectionMeta{}, false
	}
}

func convertSection(componentName string, meta sectionMeta, src *openapi3.Schema) (SectionSchema, error) {
	section := SectionSchema{
		Type:     meta.Type,
		Name:     meta.Name,
		Preview:  meta.Preview,
		MaxItems: meta.MaxItems,
	}
	if section.Type == "" {
		section.Type = componentName
	}
	if section.Name == "" {
		section.Name = src.Title
	}
	if section.Name == "" {
		section.Name = FormatLabel(section.Type)
	}

	fields, err := convertProperties(section.Type, src, false)
	if err != nil {
		return SectionSchema{}, err
	}
	section.Fields = fields
	return section, nil
}

func convertProperties(sectionType string, src *openapi3.Schema, nested bool) ([]FieldDefinition, error) {
	keys := orderedProperties(src)
	fields := make([]FieldDefinition, 0, len(keys))
	for _, key := range keys {
		prop := src.Properties[key]
		if prop == nil || prop.Value == nil {
			continue
		}
		field, err := convertField(sectionType, key, prop.Value, nested)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func convertField(sectionType, id string, src *openapi3.Schema, nested bool) (FieldDefinition, error) {
	field := FieldDefinition{
		ID:      id,
		Label:   src.Title,
		Info:    src.Description,
		Default: normaliseValue(src.Default),
		Kind:    inferKind(src),
	}
	if field.Label == "" {
		field.Label = FormatLabel(id)
	}

	switch field.Kind {
	case KindSelect:
		for _, value := range src.Enum {
			option := fmt.Sprint(value)
			field.Options = append(field.Options, Option{Value: option, Label: FormatLabel(option)})
		}
	case KindArray:
		if nested {
			return FieldDefinition{}, fmt.Errorf("%w: section %q field %q: nested arrays are not supported", ErrInvalidSchema, sectionType, id)
		}
		if src.Items == nil || src.Items.Value == nil || len(src.Items.Value.Properties) == 0 {
			return FieldDefinition{}, fmt.Errorf("%w: section %q field %q: array items must be an object with properties", ErrInvalidSchema, sectionType, id)
		}
		items, err := convertProperties(sectionType, src.Items.Value, true)
		if err != nil {
			return FieldDefinition{}, err
		}
		field.ItemFields = items
		if src.MaxItems != nil {
			field.MaxItems = int(*src.MaxItems)
		}
		field.ItemName = stringValue(src.Extensions[ExtensionItemName])
	}
	return field, nil
}

func inferKind(src *openapi3.Schema) FieldKind {
	if forced := FieldKind(strings.ToLower(stringValue(src.Extensions[ExtensionFieldKind]))); forced.Valid() {
		return forced
	}
	if len(src.Enum) > 0 {
		return KindSelect
	}
	switch strings.ToLower(src.Format) {
	case "uri", "url", "uri-reference":
		return KindURL
	case "image", "binary":
		return KindImage
	case "textarea", "markdown":
		return KindTextarea
	}
	switch firstType(src.Type) {
	case openapi3.TypeNumber, openapi3.TypeInteger:
		return KindNumber
	case openapi3.TypeArray:
		return KindArray
	default:
		return KindText
	}
}

// orderedProperties sorts property names by x-field-order, then x-order,
// then name.
func orderedProperties(src *openapi3.Schema) []string {
	keys := make([]string, 0, len(src.Properties))
	for key := range src.Properties {
		keys = append(keys, key)
	}

	explicit := map[string]int{}
	if list, ok := src.Extensions[ExtensionFieldOrder].([]any); ok {
		for idx, entry := range list {
			explicit[stringValue(entry)] = idx
		}
	}
	rank := func(key string) (int, bool) {
		if idx, ok := explicit[key]; ok {
			return idx, true
		}
		if prop := src.Properties[key]; prop != nil && prop.Value != nil {
			if order, ok := intValue(prop.Value.Extensions[ExtensionOrder]); ok {
				return len(explicit) + order, true
			}
		}
		return 0, false
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ri, iok := rank(keys[i])
		rj, jok := rank(keys[j])
		switch {
		case iok && jok && ri != rj:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func stringValue(value any) string {
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}

func intValue(value any) (int, bool) {
	switch typed := value.(type) {
	case float64:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	default:
		return 0, false
	}
}
