package convert

import (
	"fmt"
	"sort"

	"github.com/a3tai/formengine/internal/model"
)

// SerializeModel writes the edited section model back into the hierarchical
// JSON shape: one object per section keyed by its slugified name, one entry
// per field keyed by its slugified label. Fields without a concrete value
// emit a type-appropriate default placeholder. The output is a fresh
// document; original metadata (_keyOrder, _columnOrder, _type wrappers) is
// not reconstructed, so persistence must store the model itself, not only
// this serialization.
func SerializeModel(sections []model.SectionDescriptor) map[string]any {
	ordered := make([]model.SectionDescriptor, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	doc := make(map[string]any, len(ordered))
	sectionKeys := make(map[string]bool, len(ordered))
	for i := range ordered {
		section := &ordered[i]
		key := disambiguate(slugOrDefault(section.Name, section.Key, "section"), sectionKeys)
		doc[key] = serializeSection(section)
	}
	return doc
}

func serializeSection(section *model.SectionDescriptor) map[string]any {
	out := make(map[string]any, len(section.Fields))
	fieldKeys := make(map[string]bool, len(section.Fields))
	for i := range section.Fields {
		field := &section.Fields[i]
		key := disambiguate(slugOrDefault(field.Label, field.Key, "field"), fieldKeys)
		out[key] = serializeFieldValue(field)
	}
	return out
}

// serializeFieldValue emits the field's concrete value, or the default
// placeholder its type calls for when none is present
func serializeFieldValue(field *model.FieldDescriptor) any {
	if field.HasValue() {
		if field.IsTable() {
			return field.Rows
		}
		return field.Value
	}
	return DefaultValueForType(field)
}

// DefaultValueForType returns the empty placeholder a field of the given
// type serializes to when it has no value
func DefaultValueForType(field *model.FieldDescriptor) any {
	switch field.Type {
	case model.FieldTypeTable:
		row := make(map[string]any, len(field.Columns))
		for _, col := range field.Columns {
			row[col] = ""
		}
		return []map[string]any{row}
	case model.FieldTypeCheckbox:
		return []string{}
	case model.FieldTypeSignature:
		return map[string]any{"image_url": "", "signed_at": ""}
	default:
		// select, radio, date and all text-like types default to empty string
		return ""
	}
}

// disambiguate resolves duplicate generated keys with a numeric suffix so
// no field or section is silently dropped on serialize
func disambiguate(key string, used map[string]bool) string {
	if !used[key] {
		used[key] = true
		return key
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", key, n)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

func slugOrDefault(name, fallback, last string) string {
	if s := Slug(name); s != "" {
		return s
	}
	if s := Slug(fallback); s != "" {
		return s
	}
	return last
}
