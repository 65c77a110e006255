package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

func TestInstances_DuplicateTypesAndRemoval(t *testing.T) {
	store := NewInstances(NewCounter(0))
	a := store.Create("gallery")
	b := store.Create("gallery")
	if a == b {
		t.Fatalf("ids must differ")
	}
	if got := store.Len(); got != 2 {
		t.Fatalf("duplicate types must both be kept, got %d", got)
	}
	if !store.Remove(a) || store.Remove(a) {
		t.Fatalf("remove should succeed once")
	}
	c := store.Create("gallery")
	if c <= b {
		t.Fatalf("ids must keep increasing after removal, got %d", c)
	}
}

func TestInstances_ListIsCopy(t *testing.T) {
	store := NewInstances(nil)
	store.Create("gallery")
	list := store.List()
	list[0].Type = "mutated"
	if inst, _ := store.Get(1); inst.Type != "gallery" {
		t.Fatalf("List leaked internal storage")
	}
}

func TestCounter_Seed(t *testing.T) {
	counter := NewCounter(0)
	counter.Seed(10)
	if got := counter.Next(); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	counter.Seed(3)
	if got := counter.Next(); got != 12 {
		t.Fatalf("seeding lower must not rewind, got %d", got)
	}
}

func TestVisibilitySet_Toggle(t *testing.T) {
	set := NewVisibilitySet()
	if !set.Toggle(3) || !set.Toggle(1) {
		t.Fatalf("toggle should hide")
	}
	if diff := cmp.Diff([]InstanceID{1, 3}, set.List()); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	if set.Toggle(3) || set.Hidden(3) {
		t.Fatalf("second toggle should show")
	}
}

func TestContentStore_StoresExactlyWhatItIsGiven(t *testing.T) {
	store := NewContentStore()
	store.Put(1, schema.Content{"title": "x"})
	got, _ := store.Get(1)
	if diff := cmp.Diff(schema.Content{"title": "x"}, got); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
	snap := store.Snapshot()
	snap[1]["title"] = "changed"
	if got, _ := store.Get(1); got["title"] != "x" {
		t.Fatalf("snapshot shares maps with the store")
	}
}
