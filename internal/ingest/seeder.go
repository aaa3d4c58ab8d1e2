// Package ingest seeds a raw hierarchical document from a PDF's interactive
// form fields. It is a local convenience producer standing in for the
// external document-analysis service: the output is the same RawDocument
// shape the conversion engine consumes, with field wrappers declaring each
// field's type.
package ingest

import (
	"fmt"
	"io"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

// SeededField is one form field recovered from a PDF
type SeededField struct {
	Name     string
	Key      string
	Type     model.FieldType
	Value    any
	Options  []string
	Required bool
	BBox     []float64
	Page     int
}

// Seeder builds raw hierarchical documents from PDF form fields, using the
// AcroForm dictionary when present and a text-pattern scan as fallback
type Seeder struct {
	debugMode bool
}

// NewSeeder creates a new PDF seeder
func NewSeeder(debugMode bool) *Seeder {
	return &Seeder{debugMode: debugMode}
}

// SeedFromFile builds a raw document from the PDF at path. AcroForm fields
// are preferred; PDFs without an interactive form fall back to a heuristic
// text scan for form-like patterns.
func (s *Seeder) SeedFromFile(path string) (map[string]any, error) {
	fields, err := s.acroFormFieldsFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		scanned, scanErr := s.textPatternFields(path)
		if scanErr != nil {
			if s.debugMode {
				fmt.Printf("Text pattern fallback failed: %v\n", scanErr)
			}
		} else {
			fields = scanned
		}
	}
	return s.buildDocument(fields), nil
}

// SeedFromReader builds a raw document from PDF data. Only the AcroForm
// path is available here; the text-pattern fallback needs a file path.
func (s *Seeder) SeedFromReader(reader io.ReadSeeker) (map[string]any, error) {
	fields, err := s.acroFormFields(reader)
	if err != nil {
		return nil, err
	}
	return s.buildDocument(fields), nil
}

// buildDocument assembles the RawDocument shape: one field wrapper per
// seeded field, keyed by the slugified field name (page-suffixed when the
// field's page is known and the name collides), plus _keyOrder metadata
// recording the encounter order
func (s *Seeder) buildDocument(fields []SeededField) map[string]any {
	doc := make(map[string]any, len(fields)+1)
	var keyOrder []string
	used := make(map[string]bool, len(fields))

	signatures := make([]any, 0)

	for _, field := range fields {
		if field.Type == model.FieldTypeSignature {
			signatures = append(signatures, map[string]any{
				"image_url": "",
				"label":     field.Name,
			})
			continue
		}

		key := field.Key
		if key == "" {
			key = fmt.Sprintf("field_%d", len(keyOrder)+1)
		}
		if used[key] && field.Page > 0 {
			key = fmt.Sprintf("%s_page_%d", key, field.Page)
		}
		base := key
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true

		wrapper := map[string]any{
			hierdata.TypeKey: string(field.Type),
			"value":          field.Value,
			"label":          field.Name,
		}
		if len(field.Options) > 0 {
			wrapper["options"] = field.Options
		}
		if len(field.BBox) == 4 {
			wrapper["bbox"] = field.BBox
		}

		doc[key] = wrapper
		keyOrder = append(keyOrder, key)
	}

	if len(signatures) > 0 {
		doc[hierdata.SignaturesKey] = signatures
		keyOrder = append(keyOrder, hierdata.SignaturesKey)
	}
	if len(keyOrder) > 0 {
		doc[hierdata.KeyOrderKey] = keyOrder
	}

	return doc
}
