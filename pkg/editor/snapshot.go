package editor

import "github.com/goliatone/go-pagebuilder/pkg/schema"

// Snapshot is a read-only copy of everything a view needs to draw the
// editor. It shares no references with the session.
type Snapshot struct {
	SessionID string                        `json:"sessionId"`
	PageID    string                        `json:"pageId"`
	Mode      Mode                          `json:"mode"`
	Editing   InstanceID                    `json:"editing,omitempty"`
	Order     []Instance                    `json:"order"`
	Hidden    []InstanceID                  `json:"hidden"`
	Content   map[InstanceID]schema.Content `json:"content"`
	Picker    Picker                        `json:"picker"`
	Catalog   []string                      `json:"catalog"`
	Drag      *DragSession                  `json:"drag,omitempty"`
	Tab       Tab                           `json:"tab"`
	Device    Device                        `json:"device"`
	UndoDepth int                           `json:"undoDepth"`
	RedoDepth int                           `json:"redoDepth"`
	Dirty     bool                          `json:"dirty"`
}

// IsHidden reports whether id is hidden in the snapshot.
func (s Snapshot) IsHidden(id InstanceID) bool {
	for _, hidden := range s.Hidden {
		if hidden == id {
			return true
		}
	}
	return false
}

// Snapshot captures the session for rendering.
func (s *Session) Snapshot() Snapshot {
	state := s.State()
	snap := Snapshot{
		SessionID: s.id,
		PageID:    s.pageID,
		Mode:      s.mode,
		Order:     state.Order,
		Hidden:    state.Hidden,
		Content:   s.content.Snapshot(),
		Picker:    s.picker,
		Catalog:   s.Catalog(),
		Tab:       s.tab,
		Device:    s.device,
		UndoDepth: s.history.UndoCount(),
		RedoDepth: s.history.RedoCount(),
		Dirty:     s.Dirty(),
	}
	if s.mode == ModeEditing {
		snap.Editing = s.editing
	}
	if s.drag != nil {
		drag := *s.drag
		snap.Drag = &drag
	}
	return snap
}
