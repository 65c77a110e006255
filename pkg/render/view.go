package render

import (
	"strconv"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/form"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

// View is everything a renderer needs to draw the editor.
type View struct {
	PageID    string  `json:"pageId"`
	SessionID string  `json:"sessionId"`
	Page      Page    `json:"page"`
	Sidebar   Sidebar `json:"sidebar"`
}

// Page is the live preview: visible instances only, in order.
type Page struct {
	Device   string    `json:"device"`
	Sections []Section `json:"sections"`
}

// Section is one previewed instance. Content is hydrated with defaults.
type Section struct {
	ID       editor.InstanceID `json:"id"`
	Type     string            `json:"type"`
	Label    string            `json:"label"`
	Template string            `json:"template,omitempty"`
	Known    bool              `json:"known"`
	Hidden   bool              `json:"hidden,omitempty"`
	Content  schema.Content    `json:"content"`
	// Schema is the section definition for known types, for renderers
	// that treat fields by kind.
	Schema schema.SectionSchema `json:"-"`
}

// Sidebar is the authoring panel. It lists every instance, hidden ones
// included.
type Sidebar struct {
	Mode      string       `json:"mode"`
	Tab       string       `json:"tab"`
	Items     []Item       `json:"items"`
	Editing   *EditingForm `json:"editing,omitempty"`
	Picker    PickerView   `json:"picker"`
	UndoDepth int          `json:"undoDepth"`
	RedoDepth int          `json:"redoDepth"`
	CanUndo   bool         `json:"canUndo"`
	CanRedo   bool         `json:"canRedo"`
	CanSave   bool         `json:"canSave"`
}

// Item is one row of the sidebar section list.
type Item struct {
	ID         editor.InstanceID `json:"id"`
	Index      int               `json:"index"`
	Type       string            `json:"type"`
	Label      string            `json:"label"`
	Hidden     bool              `json:"hidden"`
	Known      bool              `json:"known"`
	Dragging   bool              `json:"dragging,omitempty"`
	DropTarget bool              `json:"dropTarget,omitempty"`
}

// EditingForm is the form of the instance being edited.
type EditingForm struct {
	ID     editor.InstanceID `json:"id"`
	Type   string            `json:"type"`
	Label  string            `json:"label"`
	Fields []Field           `json:"fields"`
	Error  string            `json:"error,omitempty"`
}

// Field is a form control flattened for templates.
type Field struct {
	Path         string          `json:"path"`
	Kind         string          `json:"kind"`
	Label        string          `json:"label"`
	Info         string          `json:"info,omitempty"`
	Value        string          `json:"value"`
	Options      []schema.Option `json:"options,omitempty"`
	Rows         []FieldRow      `json:"rows,omitempty"`
	ImagePreview string          `json:"imagePreview,omitempty"`
	Pending      bool            `json:"pending,omitempty"`
	Error        string          `json:"error,omitempty"`
	Placeholder  string          `json:"placeholder,omitempty"`
}

// FieldRow is one array record in a form.
type FieldRow struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Synthesized bool    `json:"synthesized,omitempty"`
	Fields      []Field `json:"fields"`
}

// PickerView is the add-section popup.
type PickerView struct {
	Open    bool          `json:"open"`
	Query   string        `json:"query,omitempty"`
	Entries []PickerEntry `json:"entries,omitempty"`
	Preview *Section      `json:"preview,omitempty"`
}

// PickerEntry is one catalog entry.
type PickerEntry struct {
	Type       string `json:"type"`
	Label      string `json:"label"`
	Available  bool   `json:"available"`
	Previewing bool   `json:"previewing,omitempty"`
}

// BuildOption customises view building.
type BuildOption func(*builder)

// WithLabeler localises section and field labels.
func WithLabeler(labeler Labeler) BuildOption {
	return func(b *builder) {
		b.labels = labeler
	}
}

type builder struct {
	session  *editor.Session
	registry *schema.Registry
	snap     editor.Snapshot
	labels   Labeler
}

func newBuilder(session *editor.Session, options []BuildOption) *builder {
	b := &builder{
		session:  session,
		registry: session.Registry(),
		snap:     session.Snapshot(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// BuildView builds the page and sidebar for session. Call it on the goroutine
// that owns the session.
func BuildView(session *editor.Session, options ...BuildOption) View {
	b := newBuilder(session, options)
	return View{
		PageID:    b.snap.PageID,
		SessionID: b.snap.SessionID,
		Page:      b.page(),
		Sidebar:   b.sidebar(),
	}
}

// BuildPage builds the preview of the visible instances.
func BuildPage(session *editor.Session, options ...BuildOption) Page {
	return newBuilder(session, options).page()
}

// BuildSidebar builds the authoring sidebar.
func BuildSidebar(session *editor.Session, options ...BuildOption) Sidebar {
	return newBuilder(session, options).sidebar()
}

func (b *builder) page() Page {
	page := Page{Device: string(b.snap.Device), Sections: []Section{}}
	for _, inst := range b.snap.Order {
		if b.snap.IsHidden(inst.ID) {
			continue
		}
		page.Sections = append(page.Sections, b.section(inst, b.snap.Content[inst.ID]))
	}
	return page
}

func (b *builder) section(inst editor.Instance, content schema.Content) Section {
	entry, ok := b.registry.Entry(inst.Type)
	if !ok {
		return Section{ID: inst.ID, Type: inst.Type, Label: schema.FormatLabel(inst.Type), Content: schema.Content{}}
	}
	return Section{
		ID:       inst.ID,
		Type:     inst.Type,
		Label:    b.labels.Section(inst.Type, sectionName(entry.Schema)),
		Template: entry.Preview,
		Known:    true,
		Content:  Hydrate(entry.Schema, content),
		Schema:   entry.Schema,
	}
}

func (b *builder) sidebar() Sidebar {
	sidebar := Sidebar{
		Mode:      b.snap.Mode.String(),
		Tab:       string(b.snap.Tab),
		Items:     make([]Item, 0, len(b.snap.Order)),
		UndoDepth: b.snap.UndoDepth,
		RedoDepth: b.snap.RedoDepth,
		CanUndo:   b.snap.UndoDepth > 0,
		CanRedo:   b.snap.RedoDepth > 0,
		CanSave:   b.snap.Dirty,
	}

	for idx, inst := range b.snap.Order {
		item := Item{
			ID:     inst.ID,
			Index:  idx,
			Type:   inst.Type,
			Label:  b.typeLabel(inst.Type),
			Hidden: b.snap.IsHidden(inst.ID),
			Known:  b.registry.Has(inst.Type),
		}
		if drag := b.snap.Drag; drag != nil {
			item.Dragging = drag.From == idx
			item.DropTarget = drag.HasOver && drag.Over == idx
		}
		sidebar.Items = append(sidebar.Items, item)
	}

	if b.snap.Mode == editor.ModeEditing {
		sidebar.Editing = b.editing(b.snap.Editing)
	}

	if b.snap.Picker.Open {
		picker := PickerView{Open: true, Query: b.snap.Picker.Query}
		for _, sectionType := range b.snap.Catalog {
			picker.Entries = append(picker.Entries, PickerEntry{
				Type:       sectionType,
				Label:      b.typeLabel(sectionType),
				Available:  b.registry.Has(sectionType),
				Previewing: sectionType == b.snap.Picker.Preview,
			})
		}
		if preview := b.snap.Picker.Preview; preview != "" {
			defaults, err := b.registry.DefaultContent(preview)
			if err == nil {
				section := b.section(editor.Instance{Type: preview}, defaults)
				picker.Preview = &section
			}
		}
		sidebar.Picker = picker
	}
	return sidebar
}

func (b *builder) editing(id editor.InstanceID) *EditingForm {
	inst, ok := b.session.Instance(id)
	if !ok {
		return nil
	}
	editing := &EditingForm{ID: id, Type: inst.Type, Label: b.typeLabel(inst.Type)}
	controls, err := b.session.Form(id)
	if err != nil {
		editing.Error = err.Error()
		return editing
	}
	editing.Fields = b.fields(inst.Type, controls, "")
	return editing
}

func (b *builder) fields(sectionType string, controls []form.Control, scope string) []Field {
	out := make([]Field, 0, len(controls))
	for _, ctrl := range controls {
		labelPath := ctrl.Field.ID
		if scope != "" {
			labelPath = scope + "." + ctrl.Field.ID
		}
		field := Field{
			Path:    ctrl.Path,
			Kind:    string(ctrl.Kind),
			Label:   b.labels.Field(sectionType, labelPath, ctrl.Label()),
			Info:    ctrl.Field.Info,
			Value:   ctrl.String(),
			Options: ctrl.Options,
		}
		if ctrl.Err != nil {
			field.Error = ctrl.Err.Error()
			field.Placeholder = ctrl.Placeholder
		}
		if ctrl.Image != nil {
			field.ImagePreview = ctrl.Image.Preview()
			field.Pending = ctrl.Image.Pending()
		}
		noun := ctrl.Field.ItemName
		if noun == "" {
			noun = "Item"
		}
		for _, row := range ctrl.Rows {
			field.Rows = append(field.Rows, FieldRow{
				Index:       row.Index,
				Label:       noun + " " + strconv.Itoa(row.Index+1),
				Synthesized: row.Synthesized,
				Fields:      b.fields(sectionType, row.Controls, ctrl.Field.ID),
			})
		}
		out = append(out, field)
	}
	return out
}

func (b *builder) typeLabel(sectionType string) string {
	if entry, ok := b.registry.Entry(sectionType); ok {
		return b.labels.Section(sectionType, sectionName(entry.Schema))
	}
	return b.labels.Section(sectionType, schema.FormatLabel(sectionType))
}

func sectionName(section schema.SectionSchema) string {
	if section.Name != "" && section.Name != section.Type {
		return section.Name
	}
	return schema.FormatLabel(section.Type)
}
