package convert

import (
	"fmt"

	"github.com/a3tai/formengine/internal/hierdata"
)

// Key decisions reported by Inspect
const (
	DecisionMetadata      = "metadata"
	DecisionSignatures    = "signatures"
	DecisionScalar        = "scalar"
	DecisionWrapper       = "wrapper"
	DecisionTableFlat     = "table_flat"
	DecisionTableGrouped  = "table_grouped"
	DecisionNestedSection = "nested_section"
)

// KeyDecision records the shape decision taken for one top-level key,
// with human-readable evidence for why
type KeyDecision struct {
	Key      string `json:"key"`
	Decision string `json:"decision"`
	Evidence string `json:"evidence"`
}

// Inspect reports, without building the model, how each top-level key of
// the document would be classified by a conversion. Useful for debugging
// why the upstream producer's output landed in a particular shape.
func (c *Converter) Inspect(doc *hierdata.Value) []KeyDecision {
	if doc == nil || !doc.IsObject() {
		return nil
	}

	decisions := make([]KeyDecision, 0, doc.Len())
	for _, key := range doc.Keys() {
		decisions = append(decisions, c.inspectKey(doc, key))
	}
	return decisions
}

func (c *Converter) inspectKey(doc *hierdata.Value, key string) KeyDecision {
	v, _ := doc.Field(key)

	if hierdata.IsMetadataKey(key) {
		return KeyDecision{Key: key, Decision: DecisionMetadata,
			Evidence: "reserved metadata prefix, never a field"}
	}
	if key == hierdata.SignaturesKey && v.IsArray() {
		return KeyDecision{Key: key, Decision: DecisionSignatures,
			Evidence: fmt.Sprintf("reserved signatures key with %d entries", v.Len())}
	}
	if declared, ok := hierdata.WrapperType(v); ok {
		return KeyDecision{Key: key, Decision: DecisionWrapper,
			Evidence: fmt.Sprintf("field wrapper declaring type %q", declared)}
	}
	if v.IsScalar() {
		return KeyDecision{Key: key, Decision: DecisionScalar,
			Evidence: fmt.Sprintf("%s value, grouped under prefix %q", v.Kind(), keyPrefix(key))}
	}

	classification := c.detector.Classify(v, doc, key, "")
	switch classification.Kind {
	case TableFlat:
		return KeyDecision{Key: key, Decision: DecisionTableFlat,
			Evidence: fmt.Sprintf("%d columns, %d rows", len(classification.Columns), len(classification.Rows))}
	case TableGrouped:
		return KeyDecision{Key: key, Decision: DecisionTableGrouped,
			Evidence: fmt.Sprintf("%d header groups over %d columns, %d rows",
				len(classification.Headers), len(classification.Columns), len(classification.Rows))}
	default:
		return KeyDecision{Key: key, Decision: DecisionNestedSection,
			Evidence: fmt.Sprintf("%s below table thresholds, rendered as fields", v.Kind())}
	}
}
