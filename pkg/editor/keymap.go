package editor

import (
	"fmt"
	"strings"
)

// Action is a session command reachable from a key binding.
type Action string

const (
	ActionNone Action = ""
	ActionSave Action = "save"
	ActionUndo Action = "undo"
	ActionRedo Action = "redo"
)

// KeyEvent describes one key press. Ctrl and Meta both count as the primary
// modifier. TextEntry is set when focus is inside a text-entry control.
type KeyEvent struct {
	Key       string `json:"key"`
	Ctrl      bool   `json:"ctrl,omitempty"`
	Meta      bool   `json:"meta,omitempty"`
	Shift     bool   `json:"shift,omitempty"`
	Alt       bool   `json:"alt,omitempty"`
	TextEntry bool   `json:"textEntry,omitempty"`
}

// Primary reports whether the primary modifier is held.
func (e KeyEvent) Primary() bool { return e.Ctrl || e.Meta }

type chord struct {
	key   string
	shift bool
	alt   bool
}

// Keymap binds primary-modifier chords to actions.
type Keymap struct {
	bindings map[chord]Action
}

// DefaultKeymap binds mod+S, mod+Z and mod+Y.
func DefaultKeymap() Keymap {
	km := Keymap{bindings: make(map[chord]Action)}
	km.Bind("ctrl+s", ActionSave)
	km.Bind("ctrl+z", ActionUndo)
	km.Bind("ctrl+y", ActionRedo)
	return km
}

// Bind maps a chord such as "ctrl+shift+z" to action. The modifier named in
// combo is irrelevant beyond being primary; ctrl and meta bind alike.
func (k *Keymap) Bind(combo string, action Action) error {
	ev, err := ParseKey(combo)
	if err != nil {
		return err
	}
	if !ev.Primary() {
		return fmt.Errorf("editor: binding %q needs ctrl or meta", combo)
	}
	if k.bindings == nil {
		k.bindings = make(map[chord]Action)
	}
	k.bindings[chord{key: ev.Key, shift: ev.Shift, alt: ev.Alt}] = action
	return nil
}

// Resolve returns the action bound to ev. Events raised while a text-entry
// control has focus never resolve.
func (k Keymap) Resolve(ev KeyEvent) (Action, bool) {
	if ev.TextEntry || !ev.Primary() {
		return ActionNone, false
	}
	action, ok := k.bindings[chord{key: strings.ToLower(ev.Key), shift: ev.Shift, alt: ev.Alt}]
	return action, ok
}

// ParseKey parses "ctrl+z", "cmd+shift+z", "meta+s" and similar into a
// KeyEvent. The key itself is lower-cased.
func ParseKey(combo string) (KeyEvent, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	var ev KeyEvent
	for idx, part := range parts {
		part = strings.TrimSpace(part)
		if idx == len(parts)-1 {
			if part == "" {
				return KeyEvent{}, fmt.Errorf("editor: key combo %q has no key", combo)
			}
			ev.Key = part
			continue
		}
		switch part {
		case "ctrl", "control":
			ev.Ctrl = true
		case "meta", "cmd", "super":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		case "alt", "option":
			ev.Alt = true
		default:
			return KeyEvent{}, fmt.Errorf("editor: unknown modifier %q in %q", part, combo)
		}
	}
	return ev, nil
}
