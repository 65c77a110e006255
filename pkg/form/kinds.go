package form

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/schema"
)

var (
	// ErrUnknownFieldKind is attached to controls whose kind is outside the
	// supported set.
	ErrUnknownFieldKind = errors.New("form: unknown field kind")
	// ErrInvalidValue is returned by Set when a value cannot be coerced to
	// the control's kind.
	ErrInvalidValue = errors.New("form: invalid value")
)

// kindHandler normalises edited values for one field kind.
type kindHandler struct {
	coerce func(field schema.FieldDefinition, value any) (any, error)
}

// kinds is the closed dispatch table. Adding a kind means adding an entry
// here and in schema.FieldKind.
var kinds = map[schema.FieldKind]kindHandler{
	schema.KindText:     {coerce: coerceString},
	schema.KindTextarea: {coerce: coerceString},
	schema.KindImage:    {coerce: coerceString},
	schema.KindURL:      {coerce: coerceURL},
	schema.KindNumber:   {coerce: coerceNumber},
	schema.KindSelect:   {coerce: coerceSelect},
}

// Coerce normalises value for field the way Set would, without writing it.
// Terminal and HTTP front ends use it to validate input before committing.
func Coerce(field schema.FieldDefinition, value any) (any, error) {
	handler, ok := kinds[field.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFieldKind, field.Kind)
	}
	return handler.coerce(field, value)
}

func coerceString(_ schema.FieldDefinition, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, value)
	}
}

func coerceURL(field schema.FieldDefinition, value any) (any, error) {
	raw, err := coerceString(field, value)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(raw.(string))
	if trimmed == "" {
		return "", nil
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, err)
	}
	return trimmed, nil
}

func coerceNumber(_ schema.FieldDefinition, value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("%w: expected number, got %T", ErrInvalidValue, value)
	}
}

func coerceSelect(field schema.FieldDefinition, value any) (any, error) {
	raw, err := coerceString(field, value)
	if err != nil {
		return nil, err
	}
	choice := raw.(string)
	if len(field.Options) == 0 {
		return choice, nil
	}
	for _, option := range field.Options {
		if option.Value == choice {
			return choice, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not an option of %q", ErrInvalidValue, choice, field.ID)
}
