package editor_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) contains(fragment string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, fragment) {
			return true
		}
	}
	return false
}

func newSession(t *testing.T, options ...editor.Option) *editor.Session {
	t.Helper()
	base := []editor.Option{
		editor.WithLogger(&recordingLogger{}),
		editor.WithInvariantMode(editor.InvariantPanic),
	}
	return editor.NewSession(context.Background(), append(base, options...)...)
}

func add(t *testing.T, s *editor.Session, sectionType string) editor.InstanceID {
	t.Helper()
	if !s.OpenPicker() {
		t.Fatalf("open picker failed in mode %s", s.Mode())
	}
	id, ok := s.CommitAdd(sectionType)
	if !ok {
		t.Fatalf("add %q failed", sectionType)
	}
	return id
}

func assertState(t *testing.T, s *editor.Session, want editor.State) {
	t.Helper()
	if got := s.State(); !got.Equal(want) {
		t.Fatalf("state mismatch:\nwant %+v\n got %+v", want, got)
	}
}

func assertDepths(t *testing.T, s *editor.Session, undo, redo int) {
	t.Helper()
	if s.UndoDepth() != undo || s.RedoDepth() != redo {
		t.Fatalf("depths = %d/%d, want %d/%d", s.UndoDepth(), s.RedoDepth(), undo, redo)
	}
}

func TestSession_GalleryScenario(t *testing.T) {
	s := newSession(t)

	id := add(t, s, "gallery")
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	added := editor.State{Order: []editor.Instance{{ID: 1, Type: "gallery"}}}
	assertState(t, s, added)
	assertDepths(t, s, 1, 0)

	if !s.ToggleHidden(1) {
		t.Fatalf("hide failed")
	}
	hidden := editor.State{Order: []editor.Instance{{ID: 1, Type: "gallery"}}, Hidden: []editor.InstanceID{1}}
	assertState(t, s, hidden)
	assertDepths(t, s, 2, 0)

	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	assertState(t, s, added)
	assertDepths(t, s, 1, 1)

	if !s.Undo() {
		t.Fatalf("second undo failed")
	}
	assertState(t, s, editor.State{})
	assertDepths(t, s, 0, 2)

	if !s.Redo() || !s.Redo() {
		t.Fatalf("redo failed")
	}
	assertState(t, s, hidden)
	assertDepths(t, s, 2, 0)

	content, ok := s.Content(1)
	if !ok || content["gallery_title"] != "Our Featured Work" {
		t.Fatalf("content should survive undo/redo, got %#v", content)
	}
}

func TestSession_UndoRedoInverseLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := schema.Builtin().Names()

	for round := 0; round < 25; round++ {
		s := newSession(t)
		for step := 0; step < 30; step++ {
			before := s.State()
			applied := false
			n := len(s.Instances())
			switch op := rng.Intn(4); {
			case op == 0 || n == 0:
				s.OpenPicker()
				_, applied = s.CommitAdd(types[rng.Intn(len(types))])
			case op == 1:
				applied = s.Delete(s.Instances()[rng.Intn(n)].ID)
			case op == 2:
				applied = s.ToggleHidden(s.Instances()[rng.Intn(n)].ID)
			default:
				applied = s.Move(rng.Intn(n), rng.Intn(n))
			}
			if !applied {
				if !s.State().Equal(before) {
					t.Fatalf("round %d step %d: no-op changed state", round, step)
				}
				continue
			}
			after := s.State()

			if !s.Undo() {
				t.Fatalf("round %d step %d: undo failed", round, step)
			}
			if !s.State().Equal(before) {
				t.Fatalf("round %d step %d: undo did not restore the previous state", round, step)
			}
			if !s.Redo() {
				t.Fatalf("round %d step %d: redo failed", round, step)
			}
			if !s.State().Equal(after) {
				t.Fatalf("round %d step %d: redo did not restore the next state", round, step)
			}
		}
	}
}

func TestSession_NewOperationInvalidatesRedo(t *testing.T) {
	s := newSession(t)
	add(t, s, "gallery")
	add(t, s, "image_section")
	s.Undo()
	s.Undo()
	assertDepths(t, s, 0, 2)

	add(t, s, "columns_section")
	assertDepths(t, s, 1, 0)
	before := s.State()
	if s.Redo() {
		t.Fatalf("redo should be a no-op after a new operation")
	}
	assertState(t, s, before)
	assertDepths(t, s, 1, 0)
}

func TestSession_EmptyStackUndoRedo(t *testing.T) {
	s := newSession(t)
	if s.Undo() || s.Redo() {
		t.Fatalf("undo/redo on empty stacks should report false")
	}
	assertDepths(t, s, 0, 0)
	assertState(t, s, editor.State{})
}

func TestSession_IDsAreNeverReused(t *testing.T) {
	s := newSession(t)
	seen := map[editor.InstanceID]bool{}
	for i := 0; i < 20; i++ {
		id := add(t, s, "gallery")
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
		if i%3 == 0 {
			s.Delete(id)
		}
		if i%5 == 0 {
			s.Undo()
		}
	}
}

func TestSession_DeleteIsAtomic(t *testing.T) {
	s := newSession(t)
	keep := add(t, s, "gallery")
	gone := add(t, s, "image_text_section")
	s.ToggleHidden(gone)

	if !s.Delete(gone) {
		t.Fatalf("delete failed")
	}
	if _, ok := s.Instance(gone); ok {
		t.Fatalf("instance still in order")
	}
	if s.Hidden(gone) {
		t.Fatalf("instance still hidden")
	}
	if _, ok := s.Content(gone); ok {
		t.Fatalf("content still stored")
	}
	snap := s.Snapshot()
	if _, ok := snap.Content[gone]; ok || snap.IsHidden(gone) {
		t.Fatalf("snapshot still references deleted instance")
	}
	if _, ok := s.Content(keep); !ok {
		t.Fatalf("unrelated content removed")
	}

	s.Undo()
	if content, ok := s.Content(gone); !ok || content["heading_text"] != "Image With Text Heading" {
		t.Fatalf("undo of delete should restore content, got %#v", content)
	}
	if !s.Hidden(gone) {
		t.Fatalf("undo of delete should restore hidden flag")
	}
}

func TestSession_MoveSemantics(t *testing.T) {
	s := newSession(t)
	for _, typ := range []string{"gallery", "image_section", "columns_section", "image_text_section"} {
		add(t, s, typ)
	}
	depth := s.UndoDepth()

	if s.Move(2, 2) {
		t.Fatalf("move onto itself should be a no-op")
	}
	if s.UndoDepth() != depth {
		t.Fatalf("no-op move must not snapshot")
	}

	if !s.Move(0, 2) {
		t.Fatalf("move failed")
	}
	var got []editor.InstanceID
	for _, inst := range s.Instances() {
		got = append(got, inst.ID)
	}
	if diff := cmp.Diff([]editor.InstanceID{2, 3, 1, 4}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_DragGesture(t *testing.T) {
	s := newSession(t)
	for _, typ := range []string{"gallery", "image_section", "columns_section"} {
		add(t, s, typ)
	}
	depth := s.UndoDepth()
	before := s.State()

	s.BeginDrag(0)
	s.DragOver(1)
	s.DragOver(2)
	assertState(t, s, before)
	if s.UndoDepth() != depth {
		t.Fatalf("hover must not snapshot")
	}
	s.DragOver(-1)
	if s.Drop() {
		t.Fatalf("drop outside a target should be abandoned")
	}
	assertState(t, s, before)

	s.BeginDrag(0)
	s.DragOver(2)
	if !s.Drop() {
		t.Fatalf("drop failed")
	}
	if s.Instances()[2].ID != 1 || s.UndoDepth() != depth+1 {
		t.Fatalf("drop should move once and snapshot once")
	}
}

func TestSession_ContentEditsAreNotHistoried(t *testing.T) {
	s := newSession(t)
	id := add(t, s, "gallery")
	s.Select(id)
	depthU, depthR := s.UndoDepth(), s.RedoDepth()

	controls, err := s.Form(id)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if err := s.Edit(id, controls[0], "Edited"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := s.Edit(id, controls[2].Rows[1].Controls[2], "caption"); err != nil {
		t.Fatalf("edit array: %v", err)
	}
	assertDepths(t, s, depthU, depthR)

	content, _ := s.Content(id)
	if content["gallery_title"] != "Edited" {
		t.Fatalf("edit not stored: %#v", content)
	}
	rows := content["items"].([]any)
	if len(rows) != 2 || rows[1].(map[string]any)["caption_text"] != "caption" {
		t.Fatalf("array edit not stored: %#v", rows)
	}
}

func TestSession_StateMachine(t *testing.T) {
	s := newSession(t)
	if s.Mode() != editor.ModeBrowsing {
		t.Fatalf("sessions start browsing")
	}
	if !s.OpenPicker() || s.Mode() != editor.ModeChoosing {
		t.Fatalf("open picker should enter choosing")
	}
	if s.OpenPicker() {
		t.Fatalf("only one picker may be open")
	}
	if !s.PreviewRequest("gallery") || s.Picker().Preview != "gallery" {
		t.Fatalf("preview request should set the preview")
	}
	assertState(t, s, editor.State{})
	if !s.ClosePicker() || s.Mode() != editor.ModeBrowsing {
		t.Fatalf("close picker should return to browsing")
	}
	assertDepths(t, s, 0, 0)

	id := add(t, s, "gallery")
	if s.Mode() != editor.ModeBrowsing {
		t.Fatalf("commit add should return to browsing")
	}
	if !s.Select(id) || s.Mode() != editor.ModeEditing {
		t.Fatalf("select should enter editing")
	}
	if s.UndoDepth() != 1 {
		t.Fatalf("select must not snapshot")
	}
	if s.OpenPicker() {
		t.Fatalf("picker cannot open while editing")
	}
	if !s.Back() || s.Mode() != editor.ModeBrowsing {
		t.Fatalf("back should return to browsing")
	}

	s.SetTab(editor.TabSettings)
	if s.OpenPicker() {
		t.Fatalf("picker only opens from the content tab")
	}
}

func TestSession_DeletingEditedInstanceReturnsToBrowsing(t *testing.T) {
	s := newSession(t)
	id := add(t, s, "gallery")
	s.Select(id)
	s.Delete(id)
	if s.Mode() != editor.ModeBrowsing {
		t.Fatalf("expected browsing, got %s", s.Mode())
	}

	id = add(t, s, "gallery")
	s.Select(id)
	s.Undo()
	if s.Mode() != editor.ModeBrowsing {
		t.Fatalf("undoing the edited instance away should return to browsing")
	}
}

func TestSession_UnknownTypeAddIsNoOp(t *testing.T) {
	logger := &recordingLogger{}
	s := newSession(t, editor.WithLogger(logger))
	s.OpenPicker()
	if _, ok := s.CommitAdd("missing_section"); ok {
		t.Fatalf("unknown type should not be added")
	}
	assertState(t, s, editor.State{})
	assertDepths(t, s, 0, 0)
	if !logger.contains("section type not found") {
		t.Fatalf("expected a log line, got %v", logger.lines)
	}
}

func TestSession_CatalogFailureDegrades(t *testing.T) {
	logger := &recordingLogger{}
	feed := editor.CatalogFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	})
	s := newSession(t, editor.WithLogger(logger), editor.WithCatalogFeed(feed))
	if got := s.Catalog(); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %v", got)
	}
	if !logger.contains("connection refused") {
		t.Fatalf("expected catalog failure to be logged")
	}
	if !s.OpenPicker() {
		t.Fatalf("editor should still work with an empty catalog")
	}
}

func TestSession_StaleIDs(t *testing.T) {
	s := newSession(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("stale id should panic in debug mode")
			}
		}()
		s.ToggleHidden(42)
	}()

	logger := &recordingLogger{}
	prod := newSession(t, editor.WithLogger(logger), editor.WithInvariantMode(editor.InvariantLog))
	if prod.ToggleHidden(42) || prod.UpdateContent(42, schema.Content{}) {
		t.Fatalf("stale ids should be treated as absent")
	}
	if !logger.contains("stale instance id") {
		t.Fatalf("expected invariant log, got %v", logger.lines)
	}
}

func TestSession_HandleKey(t *testing.T) {
	var saved []editor.Payload
	saver := editor.SaverFunc(func(_ context.Context, payload editor.Payload) error {
		saved = append(saved, payload)
		return nil
	})
	s := newSession(t, editor.WithSaver(saver))
	add(t, s, "gallery")

	if _, handled := s.HandleKey(context.Background(), editor.KeyEvent{Key: "z", Ctrl: true, TextEntry: true}); handled {
		t.Fatalf("shortcuts must be suppressed in text entry")
	}
	assertDepths(t, s, 1, 0)

	if action, handled := s.HandleKey(context.Background(), editor.KeyEvent{Key: "z", Ctrl: true}); !handled || action != editor.ActionUndo {
		t.Fatalf("ctrl+z should undo")
	}
	assertDepths(t, s, 0, 1)
	s.HandleKey(context.Background(), editor.KeyEvent{Key: "y", Meta: true})
	assertDepths(t, s, 1, 0)

	s.HandleKey(context.Background(), editor.KeyEvent{Key: "s", Ctrl: true})
	if len(saved) != 1 {
		t.Fatalf("expected one save, got %d", len(saved))
	}
	s.HandleKey(context.Background(), editor.KeyEvent{Key: "s", Ctrl: true})
	if len(saved) != 1 {
		t.Fatalf("saving a clean session should do nothing")
	}
}

func TestSession_SaveAndLoad(t *testing.T) {
	var saved editor.Payload
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession(t,
		editor.WithPageID("home"),
		editor.WithClock(func() time.Time { return clock }),
		editor.WithSaver(editor.SaverFunc(func(_ context.Context, payload editor.Payload) error {
			saved = payload
			return nil
		})),
	)
	a := add(t, s, "gallery")
	b := add(t, s, "image_section")
	s.ToggleHidden(b)
	s.Delete(a)

	if !s.Dirty() {
		t.Fatalf("session should be dirty")
	}
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("session should be clean after save")
	}
	if saved.PageID != "home" || !saved.SavedAt.Equal(clock) || saved.Revision == "" {
		t.Fatalf("unexpected payload metadata %+v", saved)
	}
	if diff := cmp.Diff([]editor.Instance{{ID: b, Type: "image_section"}}, saved.Order); diff != "" {
		t.Fatalf("saved order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := saved.Content[a]; ok {
		t.Fatalf("deleted instance content should not be saved")
	}

	loaded := newSession(t)
	if err := loaded.Load(saved); err != nil {
		t.Fatalf("load: %v", err)
	}
	assertDepths(t, loaded, 0, 0)
	if !loaded.Hidden(b) || loaded.PageID() != "home" || loaded.Dirty() {
		t.Fatalf("load did not restore the payload")
	}
	next := add(t, loaded, "gallery")
	if next <= b {
		t.Fatalf("ids after load must be past the loaded ids, got %d", next)
	}
}

func TestSession_SaveFailureKeepsDirty(t *testing.T) {
	s := newSession(t, editor.WithSaver(editor.SaverFunc(func(context.Context, editor.Payload) error {
		return errors.New("disk full")
	})))
	add(t, s, "gallery")
	if err := s.Save(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if !s.Dirty() {
		t.Fatalf("failed save must keep the session dirty")
	}
}

func TestSession_LoadRejectsInconsistentPayload(t *testing.T) {
	s := newSession(t)
	bad := []editor.Payload{
		{Order: []editor.Instance{{ID: 1, Type: "gallery"}, {ID: 1, Type: "gallery"}}},
		{Order: []editor.Instance{{ID: 1, Type: "gallery"}}, Hidden: []editor.InstanceID{2}},
		{Order: []editor.Instance{{ID: 1, Type: "gallery"}}, Content: map[editor.InstanceID]schema.Content{3: {}}},
	}
	for idx, payload := range bad {
		if err := s.Load(payload); err == nil {
			t.Fatalf("payload %d should be rejected", idx)
		}
	}
}

func TestSession_Subscribe(t *testing.T) {
	s := newSession(t)
	var kinds []editor.ChangeKind
	unsubscribe := s.Subscribe(func(change editor.Change) {
		kinds = append(kinds, change.Kind)
	})
	add(t, s, "gallery")
	unsubscribe()
	s.Undo()

	want := []editor.ChangeKind{editor.ChangeMode, editor.ChangeStructure}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}
