package schema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

const sectionsDocument = `
openapi: 3.0.3
info:
  title: sections
  version: "1.0"
paths: {}
components:
  schemas:
    Testimonial:
      type: object
      title: Testimonials
      x-section:
        type: testimonials_section
        maxItems: 2
      x-field-order: [heading, quotes]
      properties:
        quotes:
          type: array
          maxItems: 4
          x-item-name: Quote
          items:
            type: object
            properties:
              author:
                type: string
              body:
                type: string
                format: textarea
              photo:
                type: string
                format: image
        heading:
          type: string
          default: What people say
    Banner:
      type: object
      x-section: true
      properties:
        tone:
          type: string
          enum: [light, dark]
          default: light
        href:
          type: string
          format: uri
        height:
          type: integer
          x-order: 0
    NotASection:
      type: object
      properties:
        id:
          type: string
`

func TestImportOpenAPI(t *testing.T) {
	sections, err := schema.ImportOpenAPI(context.Background(), []byte(sectionsDocument))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	banner := sections[0]
	if banner.Type != "Banner" || banner.Name != "Banner" {
		t.Fatalf("unexpected banner identity: %q/%q", banner.Type, banner.Name)
	}
	gotKinds := map[string]schema.FieldKind{}
	var order []string
	for _, field := range banner.Fields {
		gotKinds[field.ID] = field.Kind
		order = append(order, field.ID)
	}
	wantKinds := map[string]schema.FieldKind{
		"tone":   schema.KindSelect,
		"href":   schema.KindURL,
		"height": schema.KindNumber,
	}
	if diff := cmp.Diff(wantKinds, gotKinds); diff != "" {
		t.Fatalf("kind mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"height", "href", "tone"}, order); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	testimonials := sections[1]
	if testimonials.Type != "testimonials_section" || testimonials.Name != "Testimonials" || testimonials.MaxItems != 2 {
		t.Fatalf("unexpected testimonials section: %+v", testimonials)
	}
	if testimonials.Fields[0].ID != "heading" || testimonials.Fields[0].Default != "What people say" {
		t.Fatalf("unexpected heading field: %+v", testimonials.Fields[0])
	}
	quotes := testimonials.Fields[1]
	if quotes.Kind != schema.KindArray || quotes.MaxItems != 4 || quotes.ItemName != "Quote" {
		t.Fatalf("unexpected quotes field: %+v", quotes)
	}
	itemKinds := map[string]schema.FieldKind{}
	for _, item := range quotes.ItemFields {
		itemKinds[item.ID] = item.Kind
	}
	wantItems := map[string]schema.FieldKind{
		"author": schema.KindText,
		"body":   schema.KindTextarea,
		"photo":  schema.KindImage,
	}
	if diff := cmp.Diff(wantItems, itemKinds); diff != "" {
		t.Fatalf("item kinds mismatch (-want +got):\n%s", diff)
	}

	if _, err := schema.NewRegistry(append(schema.BuiltinSections(), sections...)); err != nil {
		t.Fatalf("imported sections should register alongside builtins: %v", err)
	}
}

func TestImportOpenAPI_EmptyPayload(t *testing.T) {
	if _, err := schema.ImportOpenAPI(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
