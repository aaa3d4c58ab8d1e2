package convert

import (
	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

// Confidence levels assigned by the resolver. Wrapper-declared types were
// asserted by the producer; inferred types carry less certainty, and the
// text fallback the least.
const (
	ConfidenceDeclared = 0.9
	ConfidenceTable    = 0.8
	ConfidenceInferred = 0.7
	ConfidenceFallback = 0.5
)

// ResolvedValue is the outcome of type resolution for a single raw value
type ResolvedValue struct {
	Type       model.FieldType
	Value      any
	Options    []string
	Columns    []string
	BBox       []float64
	Label      string
	Wrapped    bool
	Confidence float64
}

// ResolveValue determines the semantic field type and canonical value of a
// single raw JSON value. Wrapper objects ({_type, value, ...}) are honored
// first; bare values fall back to inference from their JSON shape. The
// function is total: unresolvable shapes degrade to text with the raw value
// stringified, never an error.
func ResolveValue(v *hierdata.Value) ResolvedValue {
	if declared, ok := hierdata.WrapperType(v); ok {
		return resolveWrapper(v, declared)
	}

	switch v.Kind() {
	case hierdata.KindNull:
		return ResolvedValue{Type: model.FieldTypeText, Value: nil, Confidence: ConfidenceFallback}
	case hierdata.KindNumber:
		return ResolvedValue{Type: model.FieldTypeNumber, Value: v.Num(), Confidence: ConfidenceInferred}
	case hierdata.KindBool:
		return ResolvedValue{Type: model.FieldTypeCheckbox, Value: v.Bool(), Options: []string{}, Confidence: ConfidenceInferred}
	case hierdata.KindString:
		return ResolvedValue{Type: model.FieldTypeText, Value: v.Str(), Confidence: ConfidenceInferred}
	case hierdata.KindArray:
		return resolveArray(v)
	default:
		// Bare objects without a _type wrapper degrade to stringified text
		return ResolvedValue{Type: model.FieldTypeText, Value: v.Stringify(), Confidence: ConfidenceFallback}
	}
}

// resolveWrapper extracts the declared type and companion metadata from a
// field wrapper object. An unknown declared type degrades to text but keeps
// the wrapper's value.
func resolveWrapper(v *hierdata.Value, declared string) ResolvedValue {
	resolved := ResolvedValue{
		Type:       model.FieldType(declared),
		Wrapped:    true,
		Options:    []string{},
		Confidence: ConfidenceDeclared,
	}
	if !resolved.Type.Valid() {
		resolved.Type = model.FieldTypeText
		resolved.Confidence = ConfidenceFallback
	}

	if inner, ok := v.Field("value"); ok && !inner.IsNull() {
		resolved.Value = inner.Interface()
	}
	if opts, ok := v.Field("options"); ok && opts.IsArray() {
		resolved.Options = opts.StringSlice()
	}
	if cols, ok := v.Field(hierdata.ColumnsKey); ok && cols.IsArray() {
		resolved.Columns = cols.StringSlice()
	}
	if bbox, ok := v.Field("bbox"); ok {
		if coords := bbox.FloatSlice(); len(coords) == 4 {
			resolved.BBox = coords
		}
	}
	if label, ok := v.Field("label"); ok && label.Kind() == hierdata.KindString {
		resolved.Label = label.Str()
	}

	return resolved
}

// resolveArray infers the type of a bare array value: uniform non-null
// objects suggest a table, anything else a multi-value checkbox
func resolveArray(v *hierdata.Value) ResolvedValue {
	items := v.Items()
	if len(items) > 0 && allObjects(items) {
		return ResolvedValue{
			Type:       model.FieldTypeTable,
			Value:      v.Interface(),
			Columns:    items[0].Keys(),
			Confidence: ConfidenceTable,
		}
	}
	return ResolvedValue{
		Type:       model.FieldTypeCheckbox,
		Value:      v.Interface(),
		Options:    []string{},
		Confidence: ConfidenceInferred,
	}
}

func allObjects(items []*hierdata.Value) bool {
	for _, item := range items {
		if !item.IsObject() {
			return false
		}
	}
	return true
}
