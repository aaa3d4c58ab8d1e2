package formengine

import (
	"encoding/json"

	"github.com/a3tai/formengine/internal/convert"
	"github.com/a3tai/formengine/internal/model"
)

// FormConvertRequest carries raw hierarchical JSON into the engine,
// optionally with the previously-persisted field list whose confirmed
// type/required edits take precedence over fresh inference
type FormConvertRequest struct {
	Hierarchical json.RawMessage         `json:"hierarchical"`
	PriorFields  []model.FieldDescriptor `json:"prior_fields,omitempty"`
}

// FormConvertResult is the full editable model plus the metadata records
// the persistence layer stores alongside it
type FormConvertResult struct {
	Sections []model.SectionDescriptor `json:"sections"`
	Metadata []model.SectionMeta       `json:"metadata"`
	Fields   []model.FieldDescriptor   `json:"fields"`
}

// FormSerializeRequest carries an edited section model back for
// serialization into the hierarchical shape
type FormSerializeRequest struct {
	Sections []model.SectionDescriptor `json:"sections"`
}

// FormSerializeResult holds the freshly built hierarchical document
type FormSerializeResult struct {
	Document map[string]any `json:"document"`
}

// FormInspectRequest asks for the per-key classification report of a raw
// hierarchical document
type FormInspectRequest struct {
	Hierarchical json.RawMessage `json:"hierarchical"`
}

// FormInspectResult lists the shape decision taken for each top-level key
type FormInspectResult struct {
	Decisions []convert.KeyDecision `json:"decisions"`
}

// FormSeedPDFRequest asks for a raw document seeded from a PDF's form
// fields
type FormSeedPDFRequest struct {
	Path string `json:"path"`
}

// FormSeedPDFResult holds the seeded raw document
type FormSeedPDFResult struct {
	Path     string         `json:"path"`
	Document map[string]any `json:"document"`
	Fields   int            `json:"fields"`
}

// EngineInfoResult describes the running engine for the info tool
type EngineInfoResult struct {
	ServerName      string   `json:"server_name"`
	Version         string   `json:"version"`
	MaxDocumentSize int64    `json:"max_document_size"`
	FieldTypes      []string `json:"field_types"`
	Tools           []string `json:"tools"`
}
