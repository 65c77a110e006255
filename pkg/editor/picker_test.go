package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilter(t *testing.T) {
	catalog := []string{"image_text_section", "gallery", "image_section", "columns_section", "heading_description_section"}
	cases := map[string][]string{
		"":      catalog,
		"IMAGE": {"image_text_section", "image_section"},
		"sec":   {"image_text_section", "image_section", "columns_section", "heading_description_section"},
		"desc":  {"heading_description_section"},
		"gal":   {"gallery"},
		"text":  {"image_text_section"},
		"zzz":   nil,
	}
	for query, want := range cases {
		if diff := cmp.Diff(want, Filter(catalog, query)); diff != "" {
			t.Errorf("Filter(%q) mismatch (-want +got):\n%s", query, diff)
		}
	}
}

func TestFilter_PrefixFirst(t *testing.T) {
	got := Filter([]string{"hero_banner", "banner"}, "ban")
	if diff := cmp.Diff([]string{"banner", "hero_banner"}, got); diff != "" {
		t.Fatalf("prefix matches should lead (-want +got):\n%s", diff)
	}
}
