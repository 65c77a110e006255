package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-pagebuilder/pkg/editor"
	"github.com/goliatone/go-pagebuilder/pkg/form"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

const doneOption = "Done"

// FormEditor walks the form of one instance through a PromptDriver. Every
// answer is committed through Session.Edit, so the preview and the
// session's content stay current between prompts.
type FormEditor struct {
	driver   PromptDriver
	resolver form.Resolver
	labels   render.Labeler
	theme    Theme
}

// NewFormEditor builds a form editor.
func NewFormEditor(options ...Option) *FormEditor {
	cfg := newConfig(options)
	return &FormEditor{
		driver:   cfg.driver,
		resolver: cfg.resolver,
		labels:   cfg.labels,
		theme:    cfg.theme,
	}
}

// Edit prompts for fields of id until the user picks Done. The session must
// already be editing id.
func (f *FormEditor) Edit(ctx context.Context, session *editor.Session, id editor.InstanceID) error {
	if editing, ok := session.Editing(); !ok || editing != id {
		return fmt.Errorf("%w: %d", ErrNotEditing, id)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		controls, err := session.Form(id)
		if err != nil {
			return err
		}
		sidebar := render.BuildSidebar(session, render.WithLabeler(f.labels))
		fields := sidebar.Editing.Fields

		options := make([]string, 0, len(fields)+1)
		for _, field := range fields {
			options = append(options, summary(field))
		}
		options = append(options, doneOption)

		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      sidebar.Editing.Label,
			Options:      options,
			DefaultIndex: len(options) - 1,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(controls) {
			return nil
		}

		ctrl := controls[idx]
		if ctrl.Err != nil {
			f.info(ctx, f.theme.ErrorPrefix+fields[idx].Placeholder+": "+ctrl.Err.Error())
			continue
		}
		if len(ctrl.Rows) > 0 {
			err = f.editRows(ctx, session, id, ctrl, fields[idx])
		} else {
			err = f.editControl(ctx, session, id, ctrl, fields[idx])
		}
		if err != nil {
			return err
		}
	}
}

func (f *FormEditor) editRows(ctx context.Context, session *editor.Session, id editor.InstanceID, ctrl form.Control, field render.Field) error {
	for {
		options := make([]string, 0, len(field.Rows)+1)
		for _, row := range field.Rows {
			label := row.Label
			if row.Synthesized {
				label += " (new)"
			}
			options = append(options, label)
		}
		options = append(options, doneOption)

		idx, err := f.driver.Select(ctx, SelectConfig{Message: field.Label, Options: options, DefaultIndex: len(options) - 1})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(ctrl.Rows) {
			return nil
		}

		row, rowView := ctrl.Rows[idx], field.Rows[idx]
		sub := make([]string, 0, len(rowView.Fields)+1)
		for _, subField := range rowView.Fields {
			sub = append(sub, summary(subField))
		}
		sub = append(sub, doneOption)
		pick, err := f.driver.Select(ctx, SelectConfig{Message: rowView.Label, Options: sub, DefaultIndex: len(sub) - 1})
		if err != nil {
			return err
		}
		if pick < 0 || pick >= len(row.Controls) {
			continue
		}
		if err := f.editControl(ctx, session, id, row.Controls[pick], rowView.Fields[pick]); err != nil {
			return err
		}

		// Rows are re-rendered from the edited content so synthesized rows
		// that became stored ones show their new state.
		controls, err := session.Form(id)
		if err != nil {
			return err
		}
		sidebar := render.BuildSidebar(session, render.WithLabeler(f.labels))
		for i, candidate := range controls {
			if candidate.Path == ctrl.Path {
				ctrl, field = candidate, sidebar.Editing.Fields[i]
			}
		}
	}
}

func (f *FormEditor) editControl(ctx context.Context, session *editor.Session, id editor.InstanceID, ctrl form.Control, field render.Field) error {
	validate := func(answer string) error {
		_, err := form.Coerce(ctrl.Field, answer)
		return err
	}

	var value any
	switch ctrl.Kind {
	case schema.KindSelect:
		labels := make([]string, len(ctrl.Options))
		current := 0
		for i, option := range ctrl.Options {
			labels[i] = option.Label
			if labels[i] == "" {
				labels[i] = option.Value
			}
			if option.Value == field.Value {
				current = i
			}
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: field.Label, Options: labels, DefaultIndex: current, Help: field.Info})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(ctrl.Options) {
			return nil
		}
		value = ctrl.Options[idx].Value
	case schema.KindTextarea:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{Message: field.Label, Default: field.Value, Help: field.Info})
		if err != nil {
			return err
		}
		value = answer
	case schema.KindImage:
		answer, err := f.driver.Input(ctx, InputConfig{Message: field.Label, Default: field.Value, Help: field.Info})
		if err != nil {
			return err
		}
		if answer == field.Value {
			return nil
		}
		ref, err := ctrl.Image.Resolve(ctx, f.resolver, answer)
		if err != nil {
			f.info(ctx, f.theme.ErrorPrefix+err.Error())
			return nil
		}
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: "Use " + ref + "?", Default: true})
		if err != nil || !ok {
			return err
		}
		value = ref
	default:
		answer, err := f.driver.Input(ctx, InputConfig{Message: field.Label, Default: field.Value, Help: field.Info, Validator: validate})
		if err != nil {
			return err
		}
		value = answer
	}

	if err := session.Edit(id, ctrl, value); err != nil {
		f.info(ctx, f.theme.ErrorPrefix+err.Error())
	}
	return nil
}

func (f *FormEditor) info(ctx context.Context, msg string) {
	_ = f.driver.Info(ctx, msg)
}

func summary(field render.Field) string {
	switch {
	case field.Error != "":
		return field.Label + " [" + field.Placeholder + "]"
	case len(field.Rows) > 0:
		return field.Label + " (" + strconv.Itoa(len(field.Rows)) + " items)"
	case field.Value == "":
		return field.Label
	default:
		value := field.Value
		if runes := []rune(value); len(runes) > 40 {
			value = string(runes[:37]) + "..."
		}
		return field.Label + ": " + value
	}
}
