package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema marks a section schema that failed validation.
var ErrInvalidSchema = errors.New("schema: invalid section schema")

// Validate checks the structural invariants of a section schema: a type key,
// known field kinds, ids unique within each field list (array item fields form
// their own scope), item fields only on array fields and no nested arrays.
func Validate(section SectionSchema) error {
	if strings.TrimSpace(section.Type) == "" {
		return fmt.Errorf("%w: section type is required", ErrInvalidSchema)
	}
	if section.MaxItems < 0 {
		return fmt.Errorf("%w: section %q has negative maxItems", ErrInvalidSchema, section.Type)
	}
	return validateFields(section.Type, "", section.Fields, false)
}

func validateFields(sectionType, scope string, fields []FieldDefinition, nested bool) error {
	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return fmt.Errorf("%w: section %q field %s[%d] has an empty id", ErrInvalidSchema, sectionType, scope, idx)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: section %q duplicates field id %q", ErrInvalidSchema, sectionType, qualify(scope, id))
		}
		seen[id] = struct{}{}

		if !field.Kind.Valid() {
			return fmt.Errorf("%w: section %q field %q has unknown kind %q", ErrInvalidSchema, sectionType, qualify(scope, id), field.Kind)
		}
		if field.MaxItems < 0 {
			return fmt.Errorf("%w: section %q field %q has negative maxItems", ErrInvalidSchema, sectionType, qualify(scope, id))
		}

		switch field.Kind {
		case KindArray:
			if nested {
				return fmt.Errorf("%w: section %q nests array field %q inside another array", ErrInvalidSchema, sectionType, qualify(scope, id))
			}
			if len(field.ItemFields) == 0 {
				return fmt.Errorf("%w: section %q array field %q has no item fields", ErrInvalidSchema, sectionType, qualify(scope, id))
			}
			if err := validateFields(sectionType, qualify(scope, id), field.ItemFields, true); err != nil {
				return err
			}
		default:
			if len(field.ItemFields) > 0 {
				return fmt.Errorf("%w: section %q field %q declares item fields but is %q", ErrInvalidSchema, sectionType, qualify(scope, id), field.Kind)
			}
		}
	}
	return nil
}

func qualify(scope, id string) string {
	if scope == "" {
		return id
	}
	return scope + "." + id
}
