package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/render"
)

// Shell is the interactive terminal editor. It owns the session for the
// duration of Run; nothing else may touch it concurrently.
type Shell struct {
	session *editor.Session
	driver  PromptDriver
	forms   *FormEditor
	labels  render.Labeler
	theme   Theme
	outline OutlineRenderer
}

type menuEntry struct {
	label string
	run   func(ctx context.Context) (bool, error)
}

// NewShell builds a shell over session.
func NewShell(session *editor.Session, options ...Option) *Shell {
	cfg := newConfig(options)
	return &Shell{
		session: session,
		driver:  cfg.driver,
		forms: &FormEditor{
			driver:   cfg.driver,
			resolver: cfg.resolver,
			labels:   cfg.labels,
			theme:    cfg.theme,
		},
		labels: cfg.labels,
		theme:  cfg.theme,
	}
}

// Run shows the main menu until the user quits. Ctrl+C surfaces as
// ErrAborted.
func (s *Shell) Run(ctx context.Context) error {
	for {
		more, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step runs one menu interaction and reports whether the shell should keep
// going.
func (s *Shell) Step(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	entries := s.menu()
	options := make([]string, len(entries))
	for i, entry := range entries {
		options[i] = entry.label
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Page " + s.session.PageID(), Options: options, PageSize: 15})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(entries) {
		return true, nil
	}
	return entries[idx].run(ctx)
}

func (s *Shell) menu() []menuEntry {
	view := render.BuildSidebar(s.session, render.WithLabeler(s.labels))
	var entries []menuEntry

	if view.Tab == string(editor.TabContent) {
		entries = append(entries, menuEntry{"Add section", s.pick})
	}
	for _, item := range view.Items {
		label := "Edit: " + item.Label
		if item.Hidden {
			label += " (hidden)"
		}
		if !item.Known {
			label += " (unavailable)"
		}
		entries = append(entries, menuEntry{label, s.editFunc(item.ID)})
	}
	if len(view.Items) > 0 {
		entries = append(entries,
			menuEntry{"Show or hide sections", s.visibility},
			menuEntry{"Move a section", s.move},
			menuEntry{"Delete a section", s.remove},
		)
	}
	if view.CanUndo {
		entries = append(entries, menuEntry{fmt.Sprintf("Undo (%d)", view.UndoDepth), s.simple(s.session.Undo)})
	}
	if view.CanRedo {
		entries = append(entries, menuEntry{fmt.Sprintf("Redo (%d)", view.RedoDepth), s.simple(s.session.Redo)})
	}
	if view.CanSave {
		entries = append(entries, menuEntry{"Save", s.save})
	}
	entries = append(entries,
		menuEntry{"Show outline", s.showOutline},
		menuEntry{"Preview device: " + string(s.session.Device()), s.device},
		menuEntry{"Quit", s.quit},
	)
	return entries
}

func (s *Shell) simple(op func() bool) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) {
		op()
		return true, nil
	}
}

// pick drives the add-section popup: search, preview, confirm.
func (s *Shell) pick(ctx context.Context) (bool, error) {
	if !s.session.OpenPicker() {
		return true, nil
	}
	defer func() {
		if s.session.Mode() == editor.ModeChoosing {
			s.session.ClosePicker()
		}
	}()

	for {
		picker := render.BuildSidebar(s.session, render.WithLabeler(s.labels)).Picker
		options := []string{"Search..."}
		for _, entry := range picker.Entries {
			options = append(options, entry.Label)
		}
		options = append(options, "Cancel")
		if len(picker.Entries) == 0 {
			s.info(ctx, "No sections available.")
		}

		idx, err := s.driver.Select(ctx, SelectConfig{Message: "Add section", Options: options, PageSize: 15})
		if err != nil {
			return false, err
		}
		switch {
		case idx == 0:
			query, err := s.driver.Input(ctx, InputConfig{Message: "Search", Default: picker.Query})
			if err != nil {
				return false, err
			}
			s.session.SetPickerQuery(query)
			continue
		case idx < 1 || idx > len(picker.Entries):
			return true, nil
		}

		entry := picker.Entries[idx-1]
		if !entry.Available {
			s.info(ctx, s.theme.ErrorPrefix+entry.Label+" is not available in this build.")
			continue
		}
		s.session.PreviewRequest(entry.Type)
		if preview := render.BuildSidebar(s.session).Picker.Preview; preview != nil {
			s.info(ctx, s.theme.InfoPrefix+"Preview: "+preview.Label)
		}
		ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Add " + entry.Label + "?", Default: true})
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if _, added := s.session.CommitAdd(entry.Type); added {
			return true, nil
		}
	}
}

func (s *Shell) editFunc(id editor.InstanceID) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		if !s.session.Select(id) {
			s.info(ctx, s.theme.ErrorPrefix+"This section cannot be edited.")
			return true, nil
		}
		defer s.session.Back()
		err := s.forms.Edit(ctx, s.session, id)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, ErrAborted), ctx.Err() != nil:
			return false, err
		default:
			s.info(ctx, s.theme.ErrorPrefix+err.Error())
			return true, nil
		}
	}
}

func (s *Shell) chooseInstance(ctx context.Context, message string) (int, bool, error) {
	items := render.BuildSidebar(s.session, render.WithLabeler(s.labels)).Items
	options := make([]string, 0, len(items)+1)
	for _, item := range items {
		options = append(options, fmt.Sprintf("%d. %s", item.Index+1, item.Label))
	}
	options = append(options, "Cancel")
	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return 0, false, err
	}
	if idx < 0 || idx >= len(items) {
		return 0, false, nil
	}
	return idx, true, nil
}

func (s *Shell) visibility(ctx context.Context) (bool, error) {
	items := render.BuildSidebar(s.session, render.WithLabeler(s.labels)).Items
	options := make([]string, len(items))
	var visible []int
	for i, item := range items {
		options[i] = item.Label
		if !item.Hidden {
			visible = append(visible, i)
		}
	}
	picked, err := s.driver.MultiSelect(ctx, SelectConfig{Message: "Visible sections", Options: options, Defaults: visible})
	if err != nil {
		return false, err
	}
	show := make(map[int]bool, len(picked))
	for _, idx := range picked {
		show[idx] = true
	}
	for i, item := range items {
		if item.Hidden == show[i] {
			s.session.ToggleHidden(item.ID)
		}
	}
	return true, nil
}

func (s *Shell) move(ctx context.Context) (bool, error) {
	from, ok, err := s.chooseInstance(ctx, "Move which section?")
	if err != nil || !ok {
		return err == nil, err
	}
	to, ok, err := s.chooseInstance(ctx, "Move to position of")
	if err != nil || !ok {
		return err == nil, err
	}
	s.session.Move(from, to)
	return true, nil
}

func (s *Shell) remove(ctx context.Context) (bool, error) {
	idx, ok, err := s.chooseInstance(ctx, "Delete which section?")
	if err != nil || !ok {
		return err == nil, err
	}
	inst := s.session.Instances()[idx]
	confirmed, err := s.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Delete section #%d?", inst.ID)})
	if err != nil {
		return false, err
	}
	if confirmed {
		s.session.Delete(inst.ID)
	}
	return true, nil
}

func (s *Shell) save(ctx context.Context) (bool, error) {
	if err := s.session.Save(ctx); err != nil {
		s.info(ctx, s.theme.ErrorPrefix+err.Error())
		return true, nil
	}
	s.info(ctx, s.theme.InfoPrefix+"Saved.")
	return true, nil
}

func (s *Shell) showOutline(ctx context.Context) (bool, error) {
	view := render.BuildView(s.session, render.WithLabeler(s.labels))
	out, err := s.outline.Render(ctx, view, render.RenderOptions{})
	if err != nil {
		return false, err
	}
	s.info(ctx, string(out))
	return true, nil
}

func (s *Shell) device(ctx context.Context) (bool, error) {
	devices := []editor.Device{editor.DeviceDesktop, editor.DeviceTablet, editor.DeviceMobile}
	options := make([]string, len(devices))
	current := 0
	for i, device := range devices {
		options[i] = string(device)
		if device == s.session.Device() {
			current = i
		}
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Preview device", Options: options, DefaultIndex: current})
	if err != nil {
		return false, err
	}
	if idx >= 0 && idx < len(devices) {
		s.session.SetDevice(devices[idx])
	}
	return true, nil
}

func (s *Shell) quit(ctx context.Context) (bool, error) {
	if !s.session.Dirty() {
		return false, nil
	}
	discard, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Discard unsaved changes?"})
	if errors.Is(err, ErrAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !discard, nil
}

func (s *Shell) info(ctx context.Context, msg string) {
	_ = s.driver.Info(ctx, msg)
}
