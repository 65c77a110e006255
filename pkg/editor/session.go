package editor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/pkg/form"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// Mode is the controller state.
type Mode int

const (
	// ModeBrowsing shows the section list.
	ModeBrowsing Mode = iota
	// ModeEditing shows the form of one instance.
	ModeEditing
	// ModeChoosing has the add-section picker open.
	ModeChoosing
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeChoosing:
		return "choosing"
	default:
		return "browsing"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Tab is the active sidebar tab.
type Tab string

const (
	TabContent    Tab = "content"
	TabComponents Tab = "components"
	TabSettings   Tab = "settings"
)

// Device is the preview viewport.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// ChangeKind classifies session notifications.
type ChangeKind string

const (
	ChangeStructure ChangeKind = "structure"
	ChangeContent   ChangeKind = "content"
	ChangeMode      ChangeKind = "mode"
	ChangeView      ChangeKind = "view"
	ChangeSaved     ChangeKind = "saved"
	ChangeLoaded    ChangeKind = "loaded"
)

// Change is delivered to subscribers after a gesture takes effect.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Instance InstanceID `json:"instance,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithRegistry sets the section registry. Defaults to schema.Builtin().
func WithRegistry(reg *schema.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithIDGenerator replaces the instance id counter.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Session) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithHistoryLimit caps the undo depth; the oldest snapshots are evicted.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		s.historyLimit = limit
	}
}

// WithCatalogFeed sets the source of the picker catalog. Without one the
// picker lists the registry's section types.
func WithCatalogFeed(feed CatalogFeed) Option {
	return func(s *Session) {
		s.feed = feed
	}
}

// WithSaver sets the save boundary.
func WithSaver(saver Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithLogger sets the logger. Defaults to the standard library logger.
func WithLogger(logger Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInvariantMode selects how stale instance references are handled.
func WithInvariantMode(mode InvariantMode) Option {
	return func(s *Session) {
		s.invariants = mode
	}
}

// WithPageID names the page the session edits.
func WithPageID(id string) Option {
	return func(s *Session) {
		s.pageID = id
	}
}

// WithKeymap replaces the default key bindings.
func WithKeymap(km Keymap) Option {
	return func(s *Session) {
		s.keymap = km
	}
}

// WithFormEngine sets the form engine used by Form and Edit.
func WithFormEngine(engine *form.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.forms = engine
		}
	}
}

// WithClock overrides time.Now for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is the editor controller: it owns the stores and history and
// applies user gestures to them.
type Session struct {
	id     string
	pageID string

	registry *schema.Registry
	ids      IDGenerator
	forms    *form.Engine
	keymap   Keymap

	instances *Instances
	content   *ContentStore
	hidden    *VisibilitySet
	history   *History
	// archive holds the content of instances that left the order, keyed by
	// id, while some history snapshot can still bring them back.
	archive map[InstanceID]schema.Content

	mode    Mode
	editing InstanceID
	picker  Picker
	drag    *DragSession
	tab     Tab
	device  Device

	feed    CatalogFeed
	catalog []string
	saver   Saver

	logger       Logger
	invariants   InvariantMode
	historyLimit int
	now          func() time.Time

	revision      uint64
	savedRevision uint64

	subscribers map[int]func(Change)
	nextSub     int
}

// NewSession builds a session and fetches the picker catalog. A catalog
// failure is logged and leaves the picker empty.
func NewSession(ctx context.Context, options ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		pageID:      "default",
		keymap:      DefaultKeymap(),
		archive:     make(map[InstanceID]schema.Content),
		tab:         TabContent,
		device:      DeviceDesktop,
		logger:      defaultLogger(),
		now:         time.Now,
		subscribers: make(map[int]func(Change)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.registry == nil {
		s.registry = schema.Builtin()
	}
	if s.ids == nil {
		s.ids = NewCounter(0)
	}
	if s.forms == nil {
		s.forms = form.New()
	}
	s.instances = NewInstances(s.ids)
	s.content = NewContentStore()
	s.hidden = NewVisibilitySet()
	s.history = NewHistory(s.historyLimit)

	_ = s.RefreshCatalog(ctx)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// PageID returns the page being edited.
func (s *Session) PageID() string { return s.pageID }

// Registry returns the section registry.
func (s *Session) Registry() *schema.Registry { return s.registry }

// RefreshCatalog reloads the picker catalog from the feed.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	if s.feed == nil {
		s.catalog = s.registry.Names()
		return nil
	}
	sections, err := s.feed.Sections(ctx)
	if err != nil {
		s.catalog = nil
		s.logger.Printf("editor: catalog fetch failed, picker will be empty: %v", err)
		return err
	}
	s.catalog = slices.Clone(sections)
	s.emit(Change{Kind: ChangeView})
	return nil
}

// Catalog returns the picker entries, filtered by the current query.
func (s *Session) Catalog() []string {
	return Filter(s.catalog, s.picker.Query)
}

// Mode returns the controller state.
func (s *Session) Mode() Mode { return s.mode }

// Editing returns the instance being edited.
func (s *Session) Editing() (InstanceID, bool) {
	return s.editing, s.mode == ModeEditing
}

// Picker returns the picker state.
func (s *Session) Picker() Picker { return s.picker }

// Tab returns the active sidebar tab.
func (s *Session) Tab() Tab { return s.tab }

// Device returns the preview viewport.
func (s *Session) Device() Device { return s.device }

// Drag returns the drag session in progress.
func (s *Session) Drag() (DragSession, bool) {
	if s.drag == nil {
		return DragSession{}, false
	}
	return *s.drag, true
}

// Instances returns the instance order.
func (s *Session) Instances() []Instance { return s.instances.List() }

// Instance looks up one instance.
func (s *Session) Instance(id InstanceID) (Instance, bool) { return s.instances.Get(id) }

// Hidden reports whether id is hidden.
func (s *Session) Hidden(id InstanceID) bool { return s.hidden.Hidden(id) }

// Content returns a copy of the stored content of id.
func (s *Session) Content(id InstanceID) (schema.Content, bool) {
	content, ok := s.content.Get(id)
	if !ok {
		return nil, false
	}
	return schema.CloneContent(content), true
}

// State returns the current history unit.
func (s *Session) State() State {
	return State{Order: s.instances.List(), Hidden: s.hidden.List()}
}

// UndoDepth returns the undo stack length.
func (s *Session) UndoDepth() int { return s.history.UndoCount() }

// RedoDepth returns the redo stack length.
func (s *Session) RedoDepth() int { return s.history.RedoCount() }

// Dirty reports whether anything changed since the last save or load.
func (s *Session) Dirty() bool { return s.revision != s.savedRevision }

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Session) Subscribe(fn func(Change)) func() {
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

// OpenPicker opens the add-section picker. Only valid while browsing on the
// content tab, and only one picker can be open.
func (s *Session) OpenPicker() bool {
	if s.mode != ModeBrowsing || s.tab != TabContent {
		s.reject("open picker")
		return false
	}
	s.mode = ModeChoosing
	s.picker = Picker{Open: true}
	s.emit(Change{Kind: ChangeMode})
	return true
}

// SetPickerQuery filters the picker catalog.
func (s *Session) SetPickerQuery(query string) bool {
	if s.mode != ModeChoosing {
		s.reject("picker query")
		return false
	}
	s.picker.Query = query
	s.emit(Change{Kind: ChangeView})
	return true
}

// PreviewRequest shows sectionType in the picker preview without adding it.
func (s *Session) PreviewRequest(sectionType string) bool {
	if s.mode != ModeChoosing {
		s.reject("preview request")
		return false
	}
	if !s.registry.Has(sectionType) {
		s.picker.Preview = ""
		s.emit(Change{Kind: ChangeView})
		return false
	}
	s.picker.Preview = sectionType
	s.emit(Change{Kind: ChangeView})
	return true
}

// CommitAdd appends a new instance of sectionType with default content and
// closes the picker. Unknown types are skipped and the picker stays open.
func (s *Session) CommitAdd(sectionType string) (InstanceID, bool) {
	if s.mode != ModeChoosing {
		s.reject("commit add")
		return 0, false
	}
	defaults, err := s.registry.DefaultContent(sectionType)
	if err != nil {
		s.logger.Printf("editor: add skipped: %v", err)
		return 0, false
	}

	s.history.Snapshot(s.State())
	id := s.instances.Create(sectionType)
	s.content.Put(id, defaults)
	s.mode = ModeBrowsing
	s.picker = Picker{}
	s.structural(id)
	return id, true
}

// ClosePicker dismisses the picker without adding anything.
func (s *Session) ClosePicker() bool {
	if s.mode != ModeChoosing {
		return false
	}
	s.mode = ModeBrowsing
	s.picker = Picker{}
	s.emit(Change{Kind: ChangeMode})
	return true
}

// Select opens the form of id.
func (s *Session) Select(id InstanceID) bool {
	if s.mode != ModeBrowsing {
		s.reject("select")
		return false
	}
	if !s.exists(id, "select") {
		return false
	}
	s.mode = ModeEditing
	s.editing = id
	s.emit(Change{Kind: ChangeMode, Instance: id})
	return true
}

// Back returns from the form to the section list.
func (s *Session) Back() bool {
	if s.mode != ModeEditing {
		s.reject("back")
		return false
	}
	s.mode = ModeBrowsing
	s.editing = 0
	s.emit(Change{Kind: ChangeMode})
	return true
}

// Delete removes id from the order, the hidden set and the content store in
// one step. Deleting the instance being edited returns to browsing.
func (s *Session) Delete(id InstanceID) bool {
	if s.mode == ModeChoosing {
		s.reject("delete")
		return false
	}
	if !s.exists(id, "delete") {
		return false
	}

	s.history.Snapshot(s.State())
	s.instances.Remove(id)
	s.hidden.Remove(id)
	if content, ok := s.content.Delete(id); ok {
		s.archive[id] = content
	}
	s.forms.Forget(id.String())
	if s.mode == ModeEditing && s.editing == id {
		s.mode = ModeBrowsing
		s.editing = 0
	}
	s.structural(id)
	return true
}

// ToggleHidden flips the visibility of id. The order is untouched.
func (s *Session) ToggleHidden(id InstanceID) bool {
	if s.mode == ModeChoosing {
		s.reject("toggle hidden")
		return false
	}
	if !s.exists(id, "toggle hidden") {
		return false
	}
	s.history.Snapshot(s.State())
	s.hidden.Toggle(id)
	s.structural(id)
	return true
}

// Move relocates the instance at from to index to. Moving onto itself is a
// no-op and records nothing.
func (s *Session) Move(from, to int) bool {
	if s.mode == ModeChoosing {
		s.reject("move")
		return false
	}
	if from == to {
		return false
	}
	size := s.instances.Len()
	if from < 0 || to < 0 || from >= size || to >= size {
		s.logger.Printf("editor: move %d -> %d: %v", from, to, ErrIndexOutOfRange)
		return false
	}
	s.history.Snapshot(s.State())
	s.instances.Reorder(from, to)
	s.structural(0)
	return true
}

// BeginDrag starts dragging the instance at index from.
func (s *Session) BeginDrag(from int) bool {
	if s.mode != ModeBrowsing || from < 0 || from >= s.instances.Len() {
		s.reject("begin drag")
		return false
	}
	s.drag = &DragSession{From: from}
	s.emit(Change{Kind: ChangeView})
	return true
}

// DragOver records the hovered drop index; an index outside the order
// clears the target. Hovering never touches history or the order.
func (s *Session) DragOver(index int) bool {
	if s.drag == nil {
		return false
	}
	if index < 0 || index >= s.instances.Len() {
		s.drag.HasOver = false
	} else {
		s.drag.Over = index
		s.drag.HasOver = true
	}
	s.emit(Change{Kind: ChangeView})
	return s.drag.HasOver
}

// Drop ends the drag. Without a target the gesture is abandoned.
func (s *Session) Drop() bool {
	drag := s.drag
	s.drag = nil
	if drag == nil {
		return false
	}
	to, ok := drag.Target()
	if !ok {
		s.emit(Change{Kind: ChangeView})
		return false
	}
	if !s.Move(drag.From, to) {
		s.emit(Change{Kind: ChangeView})
		return false
	}
	return true
}

// CancelDrag abandons the drag.
func (s *Session) CancelDrag() {
	if s.drag != nil {
		s.drag = nil
		s.emit(Change{Kind: ChangeView})
	}
}

// Undo restores the state before the last structural operation. It reports
// false, changing nothing, when the undo stack is empty.
func (s *Session) Undo() bool {
	prev, err := s.history.Undo(s.State())
	if err != nil {
		return false
	}
	s.apply(prev)
	return true
}

// Redo re-applies the last undone operation.
func (s *Session) Redo() bool {
	next, err := s.history.Redo(s.State())
	if err != nil {
		return false
	}
	s.apply(next)
	return true
}

// UpdateContent replaces the content of id. Content edits are not recorded
// in history.
func (s *Session) UpdateContent(id InstanceID, content schema.Content) bool {
	if !s.exists(id, "update content") {
		return false
	}
	s.content.Put(id, schema.CloneContent(content))
	s.revision++
	s.emit(Change{Kind: ChangeContent, Instance: id})
	return true
}

// Form renders the controls of the instance being edited.
func (s *Session) Form(id InstanceID) ([]form.Control, error) {
	inst, ok := s.instances.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStaleInstance, id)
	}
	section, err := s.registry.Lookup(inst.Type)
	if err != nil {
		return nil, err
	}
	content, _ := s.content.Get(id)
	return s.forms.RenderFields(section, content, id.String()), nil
}

// Edit writes value through ctrl into the content of the instance being
// edited.
func (s *Session) Edit(id InstanceID, ctrl form.Control, value any) error {
	if s.mode != ModeEditing || s.editing != id {
		return fmt.Errorf("%w: edit %d while %s", ErrInvalidTransition, id, s.mode)
	}
	content, _ := s.content.Get(id)
	next, err := s.forms.Set(content, ctrl, value)
	if err != nil {
		return err
	}
	s.UpdateContent(id, next)
	return nil
}

// SetTab switches the sidebar tab. Leaving the content tab closes the picker.
func (s *Session) SetTab(tab Tab) bool {
	switch tab {
	case TabContent, TabComponents, TabSettings:
	default:
		return false
	}
	if tab != TabContent && s.mode == ModeChoosing {
		s.mode = ModeBrowsing
		s.picker = Picker{}
	}
	s.tab = tab
	s.emit(Change{Kind: ChangeView})
	return true
}

// SetDevice switches the preview viewport.
func (s *Session) SetDevice(device Device) bool {
	switch device {
	case DeviceDesktop, DeviceTablet, DeviceMobile:
	default:
		return false
	}
	s.device = device
	s.emit(Change{Kind: ChangeView})
	return true
}

// HandleKey runs the action bound to ev. It reports whether the key was
// consumed, in which case the caller should suppress its default handling.
func (s *Session) HandleKey(ctx context.Context, ev KeyEvent) (Action, bool) {
	action, ok := s.keymap.Resolve(ev)
	if !ok {
		return ActionNone, false
	}
	switch action {
	case ActionSave:
		if err := s.Save(ctx); err != nil {
			s.logger.Printf("editor: %v", err)
		}
	case ActionUndo:
		s.Undo()
	case ActionRedo:
		s.Redo()
	}
	return action, true
}

// Payload captures the order, hidden set and content for saving.
func (s *Session) Payload() Payload {
	state := s.State()
	return Payload{
		PageID:  s.pageID,
		Order:   state.Order,
		Hidden:  state.Hidden,
		Content: s.content.Snapshot(),
		SavedAt: s.now().UTC(),
	}
}

// Save hands the payload to the Saver. Saving a clean session, or one
// without a Saver, does nothing.
func (s *Session) Save(ctx context.Context) error {
	if !s.Dirty() {
		return nil
	}
	if s.saver == nil {
		s.logger.Printf("editor: save requested but no saver is configured")
		return nil
	}
	payload := s.Payload()
	payload.Revision = uuid.NewString()
	if err := s.saver.Save(ctx, payload); err != nil {
		return fmt.Errorf("editor: save page %q: %w", s.pageID, err)
	}
	s.savedRevision = s.revision
	s.emit(Change{Kind: ChangeSaved})
	return nil
}

// Load replaces the session contents with payload. History is cleared and
// the id counter is moved past the largest loaded id.
func (s *Session) Load(payload Payload) error {
	seen := make(map[InstanceID]struct{}, len(payload.Order))
	for _, inst := range payload.Order {
		if inst.ID <= 0 {
			return fmt.Errorf("editor: load: invalid instance id %d", inst.ID)
		}
		if _, dup := seen[inst.ID]; dup {
			return fmt.Errorf("editor: load: duplicate instance id %d", inst.ID)
		}
		seen[inst.ID] = struct{}{}
	}
	for _, id := range payload.Hidden {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("editor: load: hidden %w %d", ErrStaleInstance, id)
		}
	}
	for id := range payload.Content {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("editor: load: content %w %d", ErrStaleInstance, id)
		}
	}

	if payload.PageID != "" {
		s.pageID = payload.PageID
	}
	s.instances.restore(payload.Order)
	s.hidden.restore(payload.Hidden)
	s.content = NewContentStore()
	for _, inst := range payload.Order {
		if content, ok := payload.Content[inst.ID]; ok {
			s.content.Put(inst.ID, schema.CloneContent(content))
			continue
		}
		s.content.Put(inst.ID, s.fallbackContent(inst))
	}
	s.history.Clear()
	clear(s.archive)
	s.forms.Reset()
	s.mode = ModeBrowsing
	s.editing = 0
	s.picker = Picker{}
	s.drag = nil
	s.revision++
	s.savedRevision = s.revision
	s.check()
	s.emit(Change{Kind: ChangeLoaded})
	return nil
}

func (s *Session) apply(state State) {
	s.instances.restore(state.Order)
	s.hidden.restore(state.Hidden)
	s.reconcile()
	if s.mode == ModeEditing {
		if _, ok := s.instances.Get(s.editing); !ok {
			s.mode = ModeBrowsing
			s.editing = 0
		}
	}
	s.drag = nil
	s.structural(0)
}

// reconcile moves content between the store and the archive so the store
// holds exactly the ids in the order.
func (s *Session) reconcile() {
	live := make(map[InstanceID]Instance, s.instances.Len())
	for _, inst := range s.instances.List() {
		live[inst.ID] = inst
	}
	for _, id := range s.content.IDs() {
		if _, ok := live[id]; ok {
			continue
		}
		content, _ := s.content.Delete(id)
		s.archive[id] = content
		s.forms.Forget(id.String())
	}
	for id, inst := range live {
		if _, ok := s.content.Get(id); ok {
			continue
		}
		if content, ok := s.archive[id]; ok {
			s.content.Put(id, content)
			delete(s.archive, id)
			continue
		}
		s.content.Put(id, s.fallbackContent(inst))
	}
}

func (s *Session) pruneArchive() {
	for id := range s.archive {
		if !s.history.references(id) {
			delete(s.archive, id)
		}
	}
}

func (s *Session) fallbackContent(inst Instance) schema.Content {
	content, err := s.registry.DefaultContent(inst.Type)
	if err != nil {
		return schema.Content{}
	}
	return content
}

func (s *Session) structural(id InstanceID) {
	s.pruneArchive()
	s.revision++
	s.check()
	s.emit(Change{Kind: ChangeStructure, Instance: id})
}

func (s *Session) exists(id InstanceID, op string) bool {
	if _, ok := s.instances.Get(id); ok {
		return true
	}
	s.violation(fmt.Errorf("%s: %w %d", op, ErrStaleInstance, id))
	return false
}

// check verifies that content and visibility reference only live instances.
func (s *Session) check() {
	live := make(map[InstanceID]struct{}, s.instances.Len())
	for _, inst := range s.instances.List() {
		live[inst.ID] = struct{}{}
		if _, ok := s.content.Get(inst.ID); !ok {
			s.violation(fmt.Errorf("instance %d has no content", inst.ID))
		}
	}
	for _, id := range s.content.IDs() {
		if _, ok := live[id]; !ok {
			s.violation(fmt.Errorf("content %w %d", ErrStaleInstance, id))
		}
	}
	for _, id := range s.hidden.List() {
		if _, ok := live[id]; !ok {
			s.violation(fmt.Errorf("hidden %w %d", ErrStaleInstance, id))
		}
	}
}

func (s *Session) violation(err error) {
	if s.invariants == InvariantPanic {
		panic(fmt.Errorf("editor: invariant: %w", err))
	}
	s.logger.Printf("editor: invariant: %v", err)
}

func (s *Session) reject(op string) {
	s.logger.Printf("editor: %s: %v in mode %s", op, ErrInvalidTransition, s.mode)
}

func (s *Session) emit(change Change) {
	for _, fn := range s.subscribers {
		fn(change)
	}
}
