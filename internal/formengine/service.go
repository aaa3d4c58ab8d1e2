// Package formengine is the service facade over the conversion engine: it
// validates inputs at the system boundary, decodes raw hierarchical JSON,
// and orchestrates the convert and ingest packages. All conversion work
// below this facade is pure and total; errors surface only here, at the
// decode and I/O edges.
package formengine

import (
	"fmt"

	"github.com/a3tai/formengine/internal/convert"
	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/ingest"
	"github.com/a3tai/formengine/internal/model"
)

// Service exposes the conversion engine's operations
type Service struct {
	maxDocumentSize int64
	seeder          *ingest.Seeder
}

// NewService creates a new form engine service. maxDocumentSize bounds the
// accepted raw JSON payload in bytes.
func NewService(maxDocumentSize int64, debugMode bool) *Service {
	return &Service{
		maxDocumentSize: maxDocumentSize,
		seeder:          ingest.NewSeeder(debugMode),
	}
}

// Convert turns raw hierarchical JSON into the editable section model. A
// malformed document structure degrades field by field; only non-object
// top-level payloads are rejected outright.
func (s *Service) Convert(req FormConvertRequest) (*FormConvertResult, error) {
	if err := s.checkSize(len(req.Hierarchical)); err != nil {
		return nil, err
	}
	doc, err := hierdata.DecodeDocument(req.Hierarchical)
	if err != nil {
		return nil, err
	}

	converter := convert.NewConverter()
	sections := converter.ConvertWithPrior(doc, req.PriorFields)

	return &FormConvertResult{
		Sections: sections,
		Metadata: model.SectionMetas(sections),
		Fields:   model.FlatFields(sections),
	}, nil
}

// Serialize writes an edited section model back into the hierarchical
// shape the persistence layer expects
func (s *Service) Serialize(req FormSerializeRequest) (*FormSerializeResult, error) {
	for i := range req.Sections {
		if err := req.Sections[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid section model: %w", err)
		}
	}
	return &FormSerializeResult{
		Document: convert.SerializeModel(req.Sections),
	}, nil
}

// Inspect reports how each top-level key of a raw document would be
// classified, without building the model
func (s *Service) Inspect(req FormInspectRequest) (*FormInspectResult, error) {
	if err := s.checkSize(len(req.Hierarchical)); err != nil {
		return nil, err
	}
	doc, err := hierdata.DecodeDocument(req.Hierarchical)
	if err != nil {
		return nil, err
	}
	return &FormInspectResult{
		Decisions: convert.NewConverter().Inspect(doc),
	}, nil
}

// SeedFromPDF builds a raw hierarchical document from a PDF's form fields,
// standing in for the external document-analysis service
func (s *Service) SeedFromPDF(req FormSeedPDFRequest) (*FormSeedPDFResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	doc, err := s.seeder.SeedFromFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to seed document from %s: %w", req.Path, err)
	}

	fieldCount := 0
	for key := range doc {
		if !hierdata.IsMetadataKey(key) {
			fieldCount++
		}
	}

	return &FormSeedPDFResult{
		Path:     req.Path,
		Document: doc,
		Fields:   fieldCount,
	}, nil
}

// EngineInfo describes the engine for the info tool
func (s *Service) EngineInfo(serverName, version string) *EngineInfoResult {
	return &EngineInfoResult{
		ServerName:      serverName,
		Version:         version,
		MaxDocumentSize: s.maxDocumentSize,
		FieldTypes: []string{
			string(model.FieldTypeText), string(model.FieldTypeEmail),
			string(model.FieldTypeNumber), string(model.FieldTypeDate),
			string(model.FieldTypeSelect), string(model.FieldTypeTextarea),
			string(model.FieldTypeCheckbox), string(model.FieldTypePhone),
			string(model.FieldTypeRadio), string(model.FieldTypeFile),
			string(model.FieldTypeTable), string(model.FieldTypeSignature),
		},
		Tools: []string{
			"form_convert", "form_serialize", "form_inspect",
			"form_seed_pdf", "form_engine_info",
		},
	}
}

// GetMaxDocumentSize returns the configured payload limit
func (s *Service) GetMaxDocumentSize() int64 {
	return s.maxDocumentSize
}

func (s *Service) checkSize(size int) error {
	if size == 0 {
		return fmt.Errorf("hierarchical data cannot be empty")
	}
	if s.maxDocumentSize > 0 && int64(size) > s.maxDocumentSize {
		return fmt.Errorf("document size %d exceeds maximum %d bytes", size, s.maxDocumentSize)
	}
	return nil
}
