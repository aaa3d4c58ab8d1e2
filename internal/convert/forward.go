package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

// Converter turns a raw hierarchical document into the ordered
// Section/Field model in one pass, orchestrating section grouping, table
// shape detection, column order resolution and value type resolution. It
// never fails on malformed values: every unresolvable shape degrades to a
// documented fallback.
type Converter struct {
	detector *Detector
	ids      IDSource
}

// NewConverter creates a converter with default detection thresholds and a
// per-conversion counter id source
func NewConverter() *Converter {
	return &Converter{
		detector: NewDetector(),
		ids:      NewCounterIDSource(),
	}
}

// NewConverterWithIDs creates a converter using the given id source, for
// callers that need ids unique beyond a single conversion
func NewConverterWithIDs(ids IDSource) *Converter {
	return &Converter{
		detector: NewDetector(),
		ids:      ids,
	}
}

// Convert builds the full section model from a decoded document
func (c *Converter) Convert(doc *hierdata.Value) []model.SectionDescriptor {
	return c.ConvertWithPrior(doc, nil)
}

// ConvertWithPrior builds the section model and then re-applies
// previously-confirmed human edits from a persisted field list: a prior
// field matched by normalized label keeps its type and required flag, so
// re-running inference never silently reverts a user's correction. The
// persisted list is authoritative for field identity: prior fields the new
// raw data no longer contains are carried into a trailing section instead
// of being dropped.
func (c *Converter) ConvertWithPrior(doc *hierdata.Value, prior []model.FieldDescriptor) []model.SectionDescriptor {
	if doc == nil || !doc.IsObject() {
		return nil
	}

	plans := PlanSections(doc)
	sections := make([]model.SectionDescriptor, 0, len(plans))
	for _, plan := range plans {
		section := model.SectionDescriptor{
			ID:    c.ids.SectionID(),
			Key:   plan.Key,
			Name:  plan.Name,
			Order: plan.Order,
		}

		switch plan.Kind {
		case PlanSignatures:
			section.Fields = c.buildSignatureFields(doc)
		case PlanNested:
			section.Fields = c.buildNestedFields(doc, plan)
		default:
			section.Fields = c.buildScalarGroupFields(doc, plan)
		}

		sections = append(sections, section)
	}

	if len(prior) > 0 {
		matched := applyPriorOverrides(sections, prior)
		if carried := c.buildCarriedFields(prior, matched); len(carried) > 0 {
			sections = append(sections, model.SectionDescriptor{
				ID:     c.ids.SectionID(),
				Key:    "persisted_fields",
				Name:   "Persisted Fields",
				Order:  len(sections),
				Fields: carried,
			})
		}
	}
	return sections
}

// buildScalarGroupFields builds the fields of a prefix-grouped (or
// standalone) scalar section. In a shared-prefix group each field's label
// drops the prefix the section already names.
func (c *Converter) buildScalarGroupFields(doc *hierdata.Value, plan SectionPlan) []model.FieldDescriptor {
	grouped := len(plan.MemberKeys) > 1
	fields := make([]model.FieldDescriptor, 0, len(plan.MemberKeys))
	for _, key := range plan.MemberKeys {
		v, _ := doc.Field(key)
		label := FormatLabel(key)
		if grouped {
			if remainder := strings.TrimPrefix(StripPageSuffix(key), plan.Key+"_"); remainder != "" {
				label = FormatLabel(remainder)
			}
		}
		fields = append(fields, c.buildScalarField(key, label, v))
	}
	return fields
}

// buildScalarField resolves one simple value into a field descriptor
func (c *Converter) buildScalarField(key, label string, v *hierdata.Value) model.FieldDescriptor {
	resolved := ResolveValue(v)
	if resolved.Label != "" {
		label = resolved.Label
	}
	field := model.FieldDescriptor{
		ID:         c.ids.FieldID(),
		Key:        key,
		Label:      label,
		Type:       resolved.Type,
		Value:      resolved.Value,
		BBox:       resolved.BBox,
		Confidence: resolved.Confidence,
	}
	if field.Type.HasOptions() {
		field.Options = resolved.Options
		if field.Options == nil {
			field.Options = []string{}
		}
	}
	return field
}

// buildNestedFields builds the fields of a section derived from one nested
// top-level key: a single table field when shape detection finds a table,
// otherwise the nested members rendered as regular fields
func (c *Converter) buildNestedFields(doc *hierdata.Value, plan SectionPlan) []model.FieldDescriptor {
	key := plan.MemberKeys[0]
	v, _ := doc.Field(key)

	// A wrapper declaring a table trumps shape detection
	if declared, ok := hierdata.WrapperType(v); ok && declared == string(model.FieldTypeTable) {
		return []model.FieldDescriptor{c.buildWrapperTableField(doc, key, plan.Name, v)}
	}

	if classification := c.detector.Classify(v, doc, key, ""); classification.IsTable() {
		return []model.FieldDescriptor{c.buildTableField(key, plan.Name, classification)}
	}

	switch v.Kind() {
	case hierdata.KindObject:
		return c.buildObjectSectionFields(doc, key, v)
	case hierdata.KindArray:
		return c.buildArraySubsectionFields(key, plan.Name, v)
	default:
		return []model.FieldDescriptor{c.buildScalarField(key, plan.Name, v)}
	}
}

// buildObjectSectionFields renders a non-table nested object as one field
// per member; members that are themselves tables are detected individually
func (c *Converter) buildObjectSectionFields(doc *hierdata.Value, sectionKey string, v *hierdata.Value) []model.FieldDescriptor {
	var fields []model.FieldDescriptor
	for _, subKey := range v.Keys() {
		if hierdata.IsMetadataKey(subKey) {
			continue
		}
		sub, _ := v.Field(subKey)

		if declared, ok := hierdata.WrapperType(sub); ok && declared == string(model.FieldTypeTable) {
			fields = append(fields, c.buildWrapperTableField(doc, sectionKey, FormatLabel(subKey), sub))
			continue
		}

		classification := c.detector.Classify(sub, doc, sectionKey, subKey)
		if !classification.IsTable() {
			// Nested section objects can carry their own column order
			// metadata alongside the table key
			classification = c.detector.Classify(sub, v, subKey, "")
		}
		if classification.IsTable() {
			field := c.buildTableField(subKey, FormatLabel(subKey), classification)
			fields = append(fields, field)
			continue
		}

		fields = append(fields, c.buildScalarField(subKey, FormatLabel(subKey), sub))
	}
	return fields
}

// buildArraySubsectionFields renders a non-table array (below the table
// thresholds, or non-uniform) as a numbered subsection: each object element
// contributes its members as fields, suffixed with the element's ordinal
// when there is more than one
func (c *Converter) buildArraySubsectionFields(sectionKey, sectionName string, v *hierdata.Value) []model.FieldDescriptor {
	items := v.Items()
	if !allObjects(items) || len(items) == 0 {
		return []model.FieldDescriptor{c.buildScalarField(sectionKey, sectionName, v)}
	}

	var fields []model.FieldDescriptor
	for i, item := range items {
		for _, subKey := range item.Keys() {
			if hierdata.IsMetadataKey(subKey) {
				continue
			}
			sub, _ := item.Field(subKey)
			key := subKey
			label := FormatLabel(subKey)
			if len(items) > 1 {
				key = fmt.Sprintf("%s_%d", subKey, i+1)
				label = fmt.Sprintf("%s %d", label, i+1)
			}
			fields = append(fields, c.buildScalarField(key, label, sub))
		}
	}
	return fields
}

// buildTableField materializes a detected table as a single table field
func (c *Converter) buildTableField(key, label string, classification TableClassification) model.FieldDescriptor {
	field := model.FieldDescriptor{
		ID:         c.ids.FieldID(),
		Key:        key,
		Label:      label,
		Type:       model.FieldTypeTable,
		Columns:    classification.Columns,
		Rows:       classification.Rows,
		Confidence: ConfidenceTable,
	}
	if classification.Kind == TableGrouped {
		field.GroupedHeaders = classification.Headers
	}
	return field
}

// buildWrapperTableField materializes a wrapper-declared table: columns
// come from the wrapper's _columns, the row data, and any out-of-band
// column order metadata, merged so no column is dropped
func (c *Converter) buildWrapperTableField(doc *hierdata.Value, sectionKey, label string, v *hierdata.Value) model.FieldDescriptor {
	resolved := ResolveValue(v)
	if resolved.Label != "" {
		label = resolved.Label
	}

	rows := tableRowsFromValue(resolved.Value)
	dataColumns := resolved.Columns
	if len(dataColumns) == 0 && len(rows) > 0 {
		dataColumns = columnsFromRows(rows)
	}
	columns := MergeColumnOrder(FindColumnOrder(doc, sectionKey, ""), dataColumns)

	return model.FieldDescriptor{
		ID:         c.ids.FieldID(),
		Key:        sectionKey,
		Label:      label,
		Type:       model.FieldTypeTable,
		Columns:    columns,
		Rows:       rows,
		BBox:       resolved.BBox,
		Confidence: resolved.Confidence,
	}
}

// buildSignatureFields renders the reserved signatures key as a dedicated
// section of signature fields
func (c *Converter) buildSignatureFields(doc *hierdata.Value) []model.FieldDescriptor {
	sig, _ := doc.Field(hierdata.SignaturesKey)
	var fields []model.FieldDescriptor
	for i, item := range sig.Items() {
		label := fmt.Sprintf("Signature %d", i+1)
		if item.IsObject() {
			if l, ok := item.Field("label"); ok && l.Kind() == hierdata.KindString && l.Str() != "" {
				label = l.Str()
			}
		}
		fields = append(fields, model.FieldDescriptor{
			ID:         c.ids.FieldID(),
			Key:        fmt.Sprintf("%s_%d", hierdata.SignaturesKey, i+1),
			Label:      label,
			Type:       model.FieldTypeSignature,
			Value:      item.Interface(),
			Confidence: ConfidenceDeclared,
		})
	}
	return fields
}

// applyPriorOverrides re-applies persisted type and required-flag edits to
// freshly inferred fields, matched by normalized label (with the raw key as
// a secondary match). Returns the indices of prior fields that matched, so
// the caller can carry the unmatched remainder forward.
func applyPriorOverrides(sections []model.SectionDescriptor, prior []model.FieldDescriptor) map[int]bool {
	byNorm := make(map[string]int, len(prior))
	for i := range prior {
		if norm := NormalizeLabel(prior[i].Label); norm != "" {
			if _, exists := byNorm[norm]; !exists {
				byNorm[norm] = i
			}
		}
		if norm := NormalizeLabel(prior[i].Key); norm != "" {
			if _, exists := byNorm[norm]; !exists {
				byNorm[norm] = i
			}
		}
	}

	matched := make(map[int]bool, len(prior))
	for si := range sections {
		for fi := range sections[si].Fields {
			field := &sections[si].Fields[fi]
			idx, found := byNorm[NormalizeLabel(field.Label)]
			if !found {
				idx, found = byNorm[NormalizeLabel(field.Key)]
			}
			if !found {
				continue
			}
			p := &prior[idx]
			matched[idx] = true
			field.Type = p.Type
			field.Required = p.Required
			if field.Type.HasOptions() {
				if len(field.Options) == 0 && len(p.Options) > 0 {
					field.Options = p.Options
				}
				if field.Options == nil {
					field.Options = []string{}
				}
			}
		}
	}
	return matched
}

// buildCarriedFields re-emits persisted fields the new raw data no longer
// contains, so a confirmed field never disappears just because a
// re-analysis missed it
func (c *Converter) buildCarriedFields(prior []model.FieldDescriptor, matched map[int]bool) []model.FieldDescriptor {
	var fields []model.FieldDescriptor
	for i := range prior {
		if matched[i] {
			continue
		}
		field := prior[i]
		if field.ID == "" {
			field.ID = c.ids.FieldID()
		}
		if !field.Type.Valid() {
			field.Type = model.FieldTypeText
		}
		if field.Type.HasOptions() && field.Options == nil {
			field.Options = []string{}
		}
		fields = append(fields, field)
	}
	return fields
}

// tableRowsFromValue coerces a wrapper table value into row records
func tableRowsFromValue(value any) []map[string]any {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	var rows []map[string]any
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// columnsFromRows derives a column list from row data when neither wrapper
// metadata nor order metadata supplies one
func columnsFromRows(rows []map[string]any) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, key := range sortedRowKeys(row) {
			if !seen[key] {
				columns = append(columns, key)
				seen[key] = true
			}
		}
	}
	return columns
}

func sortedRowKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// Map iteration is randomized; sort for determinism
	sort.Strings(keys)
	return keys
}
