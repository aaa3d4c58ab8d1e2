package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/formengine/internal/model"
)

// textPatternFields scans page text for form-like patterns on PDFs that
// carry no AcroForm: bracketed checkboxes, underline runs that suggest
// write-in fields, and signature lines. Detection is intentionally coarse;
// fields found this way carry no value, only a type and a page marker.
func (s *Seeder) textPatternFields(path string) ([]SeededField, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text scan: %w", err)
	}
	defer file.Close()

	var fields []SeededField
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		var text strings.Builder
		for _, t := range page.Content().Text {
			text.WriteString(t.S)
		}
		pageText := text.String()
		if pageText == "" {
			continue
		}

		if containsAny(pageText, "[ ]", "[X]", "[x]") {
			fields = append(fields, SeededField{
				Name: fmt.Sprintf("Checkbox Page %d", pageNum),
				Key:  fmt.Sprintf("checkbox_page_%d", pageNum),
				Type: model.FieldTypeCheckbox,
				Page: pageNum,
			})
		}
		if containsAny(pageText, "____", "....") {
			fields = append(fields, SeededField{
				Name: fmt.Sprintf("Text Field Page %d", pageNum),
				Key:  fmt.Sprintf("text_field_page_%d", pageNum),
				Type: model.FieldTypeText,
				Page: pageNum,
			})
		}
		if strings.Contains(strings.ToLower(pageText), "signature") {
			fields = append(fields, SeededField{
				Name: fmt.Sprintf("Signature Page %d", pageNum),
				Key:  fmt.Sprintf("signature_page_%d", pageNum),
				Type: model.FieldTypeSignature,
				Page: pageNum,
			})
		}
	}

	if s.debugMode {
		fmt.Printf("Text scan found %d form patterns\n", len(fields))
	}
	return fields, nil
}

func containsAny(text string, patterns ...string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
