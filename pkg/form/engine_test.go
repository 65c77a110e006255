package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/form"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

func gallerySection(t *testing.T) schema.SectionSchema {
	t.Helper()
	section, err := schema.Builtin().Lookup("gallery")
	if err != nil {
		t.Fatalf("lookup gallery: %v", err)
	}
	return section
}

func itemsOf(n int) []any {
	rows := make([]any, n)
	for idx := range rows {
		rows[idx] = map[string]any{"caption_text": "row"}
	}
	return rows
}

func TestRenderArrayField_TruncatesToCap(t *testing.T) {
	section := gallerySection(t)
	items, _ := section.Field("items")
	ctrl := form.New().RenderArrayField(section.Bounded(items), schema.Content{"items": itemsOf(5)}, "")

	if got := len(ctrl.Rows); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	for _, row := range ctrl.Rows {
		if row.Synthesized {
			t.Fatalf("row %d should come from stored content", row.Index)
		}
	}
}

func TestRenderArrayField_PadsToCap(t *testing.T) {
	section := gallerySection(t)
	items, _ := section.Field("items")
	content := schema.Content{"items": itemsOf(1)}
	ctrl := form.New().RenderArrayField(section.Bounded(items), content, "")

	if got := len(ctrl.Rows); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	synthesized := 0
	for _, row := range ctrl.Rows {
		if row.Synthesized {
			synthesized++
		}
	}
	if synthesized != 2 {
		t.Fatalf("expected 2 synthesized rows, got %d", synthesized)
	}
	if got := len(content["items"].([]any)); got != 1 {
		t.Fatalf("padding must not be persisted, stored length is %d", got)
	}
	image := ctrl.Rows[2].Controls[0]
	if image.Value != "/assets/placeholder.jpg" {
		t.Fatalf("synthesized row should fall back to item defaults, got %#v", image.Value)
	}
	if image.Path != "items[2].image" {
		t.Fatalf("unexpected path %q", image.Path)
	}
}

func TestRenderArrayField_NonRecordRowsRenderEmpty(t *testing.T) {
	section := gallerySection(t)
	items, _ := section.Field("items")
	ctrl := form.New().RenderArrayField(section.Bounded(items), schema.Content{"items": []any{"junk", nil}}, "")
	if ctrl.Rows[0].Controls[2].Value != nil {
		t.Fatalf("expected empty caption for malformed row, got %#v", ctrl.Rows[0].Controls[2].Value)
	}
}

func TestRenderFields_UnknownKindKeepsSiblings(t *testing.T) {
	section := schema.SectionSchema{
		Type: "mixed",
		Fields: []schema.FieldDefinition{
			{Kind: schema.KindText, ID: "title", Default: "Hi"},
			{Kind: "colour", ID: "tint"},
			{Kind: schema.KindNumber, ID: "height", Default: float64(10)},
		},
	}
	controls := form.New().RenderFields(section, schema.Content{}, "")
	if len(controls) != 3 {
		t.Fatalf("expected 3 controls, got %d", len(controls))
	}
	if !errors.Is(controls[1].Err, form.ErrUnknownFieldKind) {
		t.Fatalf("expected unknown kind error, got %v", controls[1].Err)
	}
	if controls[1].Placeholder != "unknown field type" {
		t.Fatalf("unexpected placeholder %q", controls[1].Placeholder)
	}
	if controls[0].Value != "Hi" || controls[2].Value != float64(10) {
		t.Fatalf("sibling controls should render: %#v %#v", controls[0].Value, controls[2].Value)
	}
	if got := len(form.Errors(controls)); got != 1 {
		t.Fatalf("expected one collected error, got %d", got)
	}
}

func TestSet_ScalarReplacesWholeObject(t *testing.T) {
	section := gallerySection(t)
	engine := form.New()
	original := schema.Content{"gallery_title": "Old", "section_height": "small"}
	controls := engine.RenderFields(section, original, "")

	next, err := engine.Set(original, controls[0], "New")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if original["gallery_title"] != "Old" {
		t.Fatalf("input content mutated")
	}
	want := schema.Content{"gallery_title": "New", "section_height": "small"}
	if diff := cmp.Diff(want, next); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_ArrayCopyOnWrite(t *testing.T) {
	section := gallerySection(t)
	engine := form.New()
	firstRow := map[string]any{"caption_text": "first", "link": "https://a.example"}
	original := schema.Content{"items": []any{firstRow}}
	ctrl := engine.RenderFields(section, original, "")[2]

	next, err := engine.Set(original, ctrl.Rows[0].Controls[2], "edited")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if firstRow["caption_text"] != "first" {
		t.Fatalf("original row mutated")
	}
	if got := original["items"].([]any)[0]; got.(map[string]any)["caption_text"] != "first" {
		t.Fatalf("original list mutated")
	}
	rows := next["items"].([]any)
	if diff := cmp.Diff(map[string]any{"caption_text": "edited", "link": "https://a.example"}, rows[0]); diff != "" {
		t.Fatalf("edited row mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_ArrayIndexPastStoredLength(t *testing.T) {
	section := gallerySection(t)
	engine := form.New()
	original := schema.Content{}
	ctrl := engine.RenderFields(section, original, "")[2]

	next, err := engine.Set(original, ctrl.Rows[2].Controls[2], "third")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	want := []any{map[string]any{}, map[string]any{}, map[string]any{"caption_text": "third"}}
	if diff := cmp.Diff(want, next["items"]); diff != "" {
		t.Fatalf("padded rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_CoercesByKind(t *testing.T) {
	engine := form.New()
	section := schema.SectionSchema{
		Type: "coerce",
		Fields: []schema.FieldDefinition{
			{Kind: schema.KindNumber, ID: "height"},
			{Kind: schema.KindSelect, ID: "size", Options: []schema.Option{{Value: "s"}, {Value: "m"}}},
		},
	}
	controls := engine.RenderFields(section, schema.Content{}, "")

	next, err := engine.Set(schema.Content{}, controls[0], " 42.5 ")
	if err != nil {
		t.Fatalf("set number: %v", err)
	}
	if next["height"] != 42.5 {
		t.Fatalf("expected 42.5, got %#v", next["height"])
	}
	if _, err := engine.Set(next, controls[0], "tall"); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for bad number, got %v", err)
	}
	if _, err := engine.Set(next, controls[1], "xl"); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for unknown option, got %v", err)
	}
}

func TestSet_NotifiesOnChange(t *testing.T) {
	var changes []form.Change
	engine := form.New(form.WithOnChange(func(change form.Change) {
		changes = append(changes, change)
	}))
	section := gallerySection(t)
	controls := engine.RenderFields(section, schema.Content{}, "7")
	if _, err := engine.Set(schema.Content{}, controls[1], "large"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "7.section_height" {
		t.Fatalf("unexpected changes %#v", changes)
	}
}

func TestImageBinding_PreviewDecoupledUntilCommit(t *testing.T) {
	section, err := schema.Builtin().Lookup("image_text_section")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	engine := form.New()
	content := schema.Content{"imageUrl": "/a.jpg"}
	ctrl := engine.RenderFields(section, content, "1")[0]
	binding := ctrl.Image
	if binding == nil {
		t.Fatalf("image control should carry a binding")
	}

	ref, err := binding.Resolve(context.Background(), nil, "https://cdn.example/b.jpg")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if binding.Preview() != ref || !binding.Pending() {
		t.Fatalf("preview should follow the pick before commit")
	}
	if content["imageUrl"] != "/a.jpg" {
		t.Fatalf("resolving must not write content")
	}

	next, err := engine.Set(content, ctrl, ref)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if next["imageUrl"] != ref || binding.Pending() {
		t.Fatalf("commit should store the reference and clear pending state")
	}

	// Undo elsewhere restores the old value; re-rendering must re-sync.
	again := engine.RenderFields(section, content, "1")[0]
	if again.Image != binding {
		t.Fatalf("binding should be cached per path")
	}
	if binding.Preview() != "/a.jpg" {
		t.Fatalf("preview should re-sync to the external value, got %q", binding.Preview())
	}
}

func TestURLResolver(t *testing.T) {
	resolver := form.URLResolver{Root: "/srv/uploads", Prefix: "/uploads/"}
	cases := map[string]string{
		"https://cdn.example/x.png": "https://cdn.example/x.png",
		"/srv/uploads/a/b.png":      "/uploads/a/b.png",
		"/assets/placeholder.jpg":   "/assets/placeholder.jpg",
	}
	for source, want := range cases {
		got, err := resolver.Resolve(context.Background(), source)
		if err != nil {
			t.Fatalf("resolve %q: %v", source, err)
		}
		if got != want {
			t.Fatalf("resolve %q = %q, want %q", source, got, want)
		}
	}
	if _, err := resolver.Resolve(context.Background(), "relative.png"); !errors.Is(err, form.ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestCoerce(t *testing.T) {
	height := schema.FieldDefinition{Kind: schema.KindNumber, ID: "height"}
	got, err := form.Coerce(height, "480")
	if err != nil || got != float64(480) {
		t.Fatalf("coerce number = %v, %v", got, err)
	}
	if _, err := form.Coerce(height, "tall"); !errors.Is(err, form.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := form.Coerce(schema.FieldDefinition{Kind: "color"}, "red"); !errors.Is(err, form.ErrUnknownFieldKind) {
		t.Fatalf("expected ErrUnknownFieldKind, got %v", err)
	}
}

func TestFind_SearchesRows(t *testing.T) {
	section := gallerySection(t)
	controls := form.New().RenderFields(section, schema.Content{"items": itemsOf(1)}, "7")

	ctrl, ok := form.Find(controls, "7.items[1].caption_text")
	if !ok {
		t.Fatalf("row control not found")
	}
	if ctrl.Ref.Field != "items" || ctrl.Ref.Index != 1 {
		t.Fatalf("unexpected ref %+v", ctrl.Ref)
	}
	if _, ok := form.Find(controls, "7.gallery_title"); !ok {
		t.Fatalf("top-level control not found")
	}
	if _, ok := form.Find(controls, "7.missing"); ok {
		t.Fatalf("unexpected match")
	}
}
