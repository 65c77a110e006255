package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

func serve(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, []Entry) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload catalogResponse
	if rec.Code == http.StatusOK && method == http.MethodGet {
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, payload.Data
}

func values(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Value)
	}
	return out
}

func TestNewHandler_ListsBuiltinSections(t *testing.T) {
	rec, data := serve(t, NewHandler(), http.MethodGet, "/api/sections")

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	want := []Entry{
		{Value: "columns_section", Label: "Multi Column", Known: true, Fields: 2, Preview: "columns_section"},
		{Value: "gallery", Label: "Gallery Section", Known: true, Fields: 3, Preview: "gallery"},
		{Value: "heading_description_section", Label: "Heading And Description", Known: true, Fields: 3, Preview: "heading_description_section"},
		{Value: "image_section", Label: "Image Banner", Known: true, Fields: 4, Preview: "image_section"},
		{Value: "image_text_section", Label: "Image With Text", Known: true, Fields: 4, Preview: "image_text_section"},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_FlagsUnregisteredTypes(t *testing.T) {
	h := NewHandler(WithSections([]string{"gallery", "pricing_table"}))
	_, data := serve(t, h, http.MethodGet, "/api/sections")

	want := []Entry{
		{Value: "gallery", Label: "Gallery Section", Known: true, Fields: 3, Preview: "gallery"},
		{Value: "pricing_table", Label: "Pricing table"},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_UsesConfiguredRegistry(t *testing.T) {
	reg := schema.MustNewRegistry([]schema.SectionSchema{{
		Type:   "hero",
		Name:   "Hero Banner",
		Fields: []schema.FieldDefinition{{Kind: schema.KindText, ID: "title"}},
	}})
	_, data := serve(t, NewHandler(WithRegistry(reg)), http.MethodGet, "/api/sections")

	want := []Entry{{Value: "hero", Label: "Hero Banner", Known: true, Fields: 1, Preview: "hero"}}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_SearchMatchesPickerFilter(t *testing.T) {
	sections := []string{"image_text_section", "hero_image", "image_section", "gallery"}
	h := NewHandler(WithSections(sections), WithMaxLimit(2))

	_, data := serve(t, h, http.MethodGet, "/api/sections?q=IMAGE&limit=10")

	if diff := cmp.Diff([]string{"image_text_section", "image_section"}, values(data)); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	_, data = serve(t, NewHandler(WithSections(sections)), http.MethodGet, "/api/sections?q=image")
	if diff := cmp.Diff(editor.Filter(sections, "image"), values(data)); diff != "" {
		t.Fatalf("handler and picker filter disagree (-want +got):\n%s", diff)
	}

	// Labels match too, as in the picker.
	_, data = serve(t, NewHandler(WithSections([]string{"columns_section", "heading_description_section"})), http.MethodGet, "/api/sections?q=heading%20desc")
	if diff := cmp.Diff([]string{"heading_description_section"}, values(data)); diff != "" {
		t.Fatalf("label search mismatch (-want +got):\n%s", diff)
	}
}

func TestNewHandler_EmptySearchNoneReturnsEmptyDataArray(t *testing.T) {
	h := NewHandler(
		WithSections([]string{"hero"}),
		WithEmptySearchMode(EmptySearchNone),
	)
	_, data := serve(t, h, http.MethodGet, "/api/sections")
	if data == nil || len(data) != 0 {
		t.Fatalf("expected empty data array, got %#v", data)
	}
}

func TestNewHandler_CustomQueryParams(t *testing.T) {
	h := NewHandler(
		WithSections([]string{"gallery", "hero"}),
		WithSearchParam("search"),
		WithLimitParam("max"),
	)
	_, data := serve(t, h, http.MethodGet, "/api/sections?search=her&max=1")
	if diff := cmp.Diff([]string{"hero"}, values(data)); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	rec, _ := serve(t, NewHandler(), http.MethodPost, "/api/sections")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestNewHandler_HeadHasNoBody(t *testing.T) {
	rec, _ := serve(t, NewHandler(), http.MethodHead, "/api/sections")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("unexpected HEAD response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestNewHandler_NegativeLimitReturnsEmptyDataArray(t *testing.T) {
	_, data := serve(t, NewHandler(), http.MethodGet, "/api/sections?limit=-1")
	if data == nil || len(data) != 0 {
		t.Fatalf("expected empty data array, got %#v", data)
	}
}

func TestComponent_PathJoinsBasePath(t *testing.T) {
	cases := map[string]struct {
		base  string
		route string
		want  string
	}{
		"root":           {base: "", want: "/api/sections"},
		"base":           {base: "/editor", want: "/editor/api/sections"},
		"relative base":  {base: "editor", want: "/editor/api/sections"},
		"trailing slash": {base: "/editor/", route: "catalog", want: "/editor/catalog"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var fns []OptionFn
			if tc.route != "" {
				fns = append(fns, WithRoutePath(tc.route))
			}
			if got := New(fns...).Path(tc.base); got != tc.want {
				t.Fatalf("Path(%q) = %q, want %q", tc.base, got, tc.want)
			}
		})
	}
}

func TestComponent_RegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	component := New(WithSections([]string{"gallery", "hero"}))
	pattern, err := component.RegisterRoutes(mux, "/editor")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/editor/api/sections" {
		t.Fatalf("unexpected registered pattern: %q", pattern)
	}

	rec, data := serve(t, mux, http.MethodGet, pattern+"?q=gal&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if diff := cmp.Diff(component.Entries("gal", 1), data); diff != "" {
		t.Fatalf("mux and component disagree (-want +got):\n%s", diff)
	}

	if _, err := component.RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
