package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/form"
)

var (
	// ErrUnknownAction is returned for gestures the server does not route.
	ErrUnknownAction = errors.New("server: unknown gesture action")
	// ErrUnknownField is returned when an edit names a path the form does
	// not render.
	ErrUnknownField = errors.New("server: unknown field path")
)

// Gesture is one user interaction posted by the browser runtime. Only the
// fields the action needs are read.
type Gesture struct {
	Action string            `json:"action"`
	ID     editor.InstanceID `json:"id,omitempty"`
	Type   string            `json:"type,omitempty"`
	Tab    string            `json:"tab,omitempty"`
	Device string            `json:"device,omitempty"`
	Path   string            `json:"path,omitempty"`
	Value  any               `json:"value,omitempty"`
	Query  string            `json:"query,omitempty"`
	From   int               `json:"from,omitempty"`
	Index  int               `json:"index,omitempty"`
	editor.KeyEvent
}

// Apply routes g to the session. It reports whether the session accepted
// the gesture; rejected transitions are not errors.
func Apply(ctx context.Context, session *editor.Session, g Gesture) (bool, error) {
	switch g.Action {
	case "select", "delete", "toggle_hidden", "edit":
		// Ids from the browser may be stale; the session treats those as
		// invariant violations.
		if _, ok := session.Instance(g.ID); !ok {
			return false, fmt.Errorf("server: %s: %w %d", g.Action, editor.ErrStaleInstance, g.ID)
		}
	}
	switch g.Action {
	case "tab":
		return session.SetTab(editor.Tab(g.Tab)), nil
	case "device":
		return session.SetDevice(editor.Device(g.Device)), nil
	case "undo":
		return session.Undo(), nil
	case "redo":
		return session.Redo(), nil
	case "save":
		if err := session.Save(ctx); err != nil {
			return false, err
		}
		return true, nil
	case "select":
		return session.Select(g.ID), nil
	case "back":
		return session.Back(), nil
	case "delete":
		return session.Delete(g.ID), nil
	case "toggle_hidden":
		return session.ToggleHidden(g.ID), nil
	case "open_picker":
		return session.OpenPicker(), nil
	case "close_picker":
		return session.ClosePicker(), nil
	case "picker_query":
		return session.SetPickerQuery(g.Query), nil
	case "preview":
		return session.PreviewRequest(g.Type), nil
	case "add":
		_, ok := session.CommitAdd(g.Type)
		return ok, nil
	case "move":
		return session.Move(g.From, g.Index), nil
	case "drag_begin":
		return session.BeginDrag(g.From), nil
	case "drag_over":
		return session.DragOver(g.Index), nil
	case "drop":
		return session.Drop(), nil
	case "drag_cancel":
		session.CancelDrag()
		return true, nil
	case "edit":
		return edit(session, g)
	case "key":
		_, handled := session.HandleKey(ctx, g.KeyEvent)
		return handled, nil
	case "refresh_catalog":
		if err := session.RefreshCatalog(ctx); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w %q", ErrUnknownAction, g.Action)
	}
}

func edit(session *editor.Session, g Gesture) (bool, error) {
	controls, err := session.Form(g.ID)
	if err != nil {
		return false, err
	}
	ctrl, ok := form.Find(controls, g.Path)
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownField, g.Path)
	}
	if err := session.Edit(g.ID, ctrl, g.Value); err != nil {
		return false, err
	}
	return true, nil
}
