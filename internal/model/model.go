package model

import (
	"encoding/json"
	"fmt"
)

// FieldType represents the semantic type of a form field
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeEmail     FieldType = "email"
	FieldTypeNumber    FieldType = "number"
	FieldTypeDate      FieldType = "date"
	FieldTypeSelect    FieldType = "select"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypePhone     FieldType = "phone"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeFile      FieldType = "file"
	FieldTypeTable     FieldType = "table"
	FieldTypeSignature FieldType = "signature"
)

// fieldTypes is the closed set of supported field types
var fieldTypes = map[FieldType]bool{
	FieldTypeText:      true,
	FieldTypeEmail:     true,
	FieldTypeNumber:    true,
	FieldTypeDate:      true,
	FieldTypeSelect:    true,
	FieldTypeTextarea:  true,
	FieldTypeCheckbox:  true,
	FieldTypePhone:     true,
	FieldTypeRadio:     true,
	FieldTypeFile:      true,
	FieldTypeTable:     true,
	FieldTypeSignature: true,
}

// Valid reports whether t is one of the supported field types
func (t FieldType) Valid() bool {
	return fieldTypes[t]
}

// HasOptions reports whether fields of this type carry an options list
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeCheckbox || t == FieldTypeRadio
}

// GroupedTableHeader describes one top-level column of a table. Colspan 1
// marks a simple column; Colspan > 1 marks a column whose cells were nested
// objects flattened into SubHeaders.
type GroupedTableHeader struct {
	Name       string   `json:"name"`
	Colspan    int      `json:"colspan"`
	SubHeaders []string `json:"sub_headers,omitempty"`
}

// FieldDescriptor represents one typed, labeled unit of extracted or
// editable data. Key retains the original raw document key so edits can be
// written back under it; Label is the display form.
type FieldDescriptor struct {
	ID             string               `json:"id"`
	Key            string               `json:"key"`
	Label          string               `json:"label"`
	Type           FieldType            `json:"type"`
	Required       bool                 `json:"required"`
	Value          any                  `json:"value"`
	Options        []string             `json:"options,omitempty"`
	Columns        []string             `json:"columns,omitempty"`
	Rows           []map[string]any     `json:"rows,omitempty"`
	GroupedHeaders []GroupedTableHeader `json:"grouped_headers,omitempty"`
	BBox           []float64            `json:"bbox,omitempty"`
	Confidence     float64              `json:"confidence"`
}

// IsTable reports whether the field is a table field
func (f *FieldDescriptor) IsTable() bool {
	return f.Type == FieldTypeTable
}

// HasValue reports whether the field carries a concrete value. Table fields
// are concrete when they carry rows; all other fields when Value is non-nil.
func (f *FieldDescriptor) HasValue() bool {
	if f.IsTable() {
		return len(f.Rows) > 0
	}
	return f.Value != nil
}

// SectionDescriptor is a named, ordered group of fields. Key retains the
// original document key (or derived prefix) the section was built from.
type SectionDescriptor struct {
	ID     string            `json:"id"`
	Key    string            `json:"key"`
	Name   string            `json:"name"`
	Order  int               `json:"order"`
	Fields []FieldDescriptor `json:"fields"`
}

// SectionMeta is the compact section record persisted alongside the flat
// field list so the model can be reconstructed losslessly on next load.
type SectionMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Meta returns the persistable metadata record for the section
func (s *SectionDescriptor) Meta() SectionMeta {
	return SectionMeta{ID: s.ID, Name: s.Name, Order: s.Order}
}

// Validate checks the structural invariants of the section and its fields
func (s *SectionDescriptor) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("section %q has empty id", s.Name)
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		if !f.Type.Valid() {
			return fmt.Errorf("field %q has unsupported type %q", f.Label, f.Type)
		}
		if f.IsTable() && len(f.Columns) == 0 {
			return fmt.Errorf("table field %q has no columns", f.Label)
		}
		if f.Type.HasOptions() && f.Options == nil {
			return fmt.Errorf("choice field %q has no options list", f.Label)
		}
	}
	return nil
}

// FlatFields returns every field across sections in section order. The
// returned slice shares field values with the sections.
func FlatFields(sections []SectionDescriptor) []FieldDescriptor {
	var fields []FieldDescriptor
	for i := range sections {
		fields = append(fields, sections[i].Fields...)
	}
	return fields
}

// SectionMetas returns the persistable metadata list for the sections
func SectionMetas(sections []SectionDescriptor) []SectionMeta {
	metas := make([]SectionMeta, 0, len(sections))
	for i := range sections {
		metas = append(metas, sections[i].Meta())
	}
	return metas
}

// DecodeSections parses a JSON-encoded section list, as persisted by the
// storage layer or supplied through the serialize tool
func DecodeSections(data []byte) ([]SectionDescriptor, error) {
	var sections []SectionDescriptor
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to parse section list: %w", err)
	}
	return sections, nil
}
