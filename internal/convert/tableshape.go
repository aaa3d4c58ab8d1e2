package convert

import (
	"regexp"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

// TableKind classifies the outcome of table shape detection
type TableKind int

const (
	// TableNone marks a structure that is not a table
	TableNone TableKind = iota
	// TableFlat marks a table with a single header row
	TableFlat
	// TableGrouped marks a table whose columns are multi-part, requiring a
	// two-row header
	TableGrouped
)

// TableClassification is the result of classifying a candidate structure.
// For flat tables Headers holds one colspan-1 entry per column; for grouped
// tables the entries describe the two-row header layout.
type TableClassification struct {
	Kind    TableKind
	Columns []string
	Rows    []map[string]any
	Headers []model.GroupedTableHeader
}

// IsTable reports whether the classification found a table
func (c TableClassification) IsTable() bool {
	return c.Kind != TableNone
}

var (
	// groupKeyPattern finds the shared key that grouped arrays merge on
	groupKeyPattern = regexp.MustCompile(`(?i)^(fy|year|period|date|time_period)$`)
	// placeholderRowKeyPattern matches generic outer keys carrying no row
	// identity worth preserving
	placeholderRowKeyPattern = regexp.MustCompile(`(?i)^(row|item|entry|record)[_ ]?\d+$`)
)

// DetectorConfig configures table shape detection thresholds. A structure
// qualifies as a table only when it yields at least MinColumns columns and
// MinRows rows; anything smaller renders as regular fields instead of a
// noisy one-cell table. The same threshold applies to every detection rule.
type DetectorConfig struct {
	MinRows    int
	MinColumns int
}

// DefaultDetectorConfig returns the default detection thresholds
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinRows:    2,
		MinColumns: 2,
	}
}

// Detector classifies candidate JSON structures as tables. The upstream
// producer's output is not self-describing, so table-ness is inferred from
// uniformity and cardinality rather than declared.
type Detector struct {
	config DetectorConfig
}

// NewDetector creates a detector with default thresholds
func NewDetector() *Detector {
	return &Detector{config: DefaultDetectorConfig()}
}

// NewDetectorWithConfig creates a detector with custom thresholds
func NewDetectorWithConfig(config DetectorConfig) *Detector {
	if config.MinRows < 1 {
		config.MinRows = 1
	}
	if config.MinColumns < 1 {
		config.MinColumns = 1
	}
	return &Detector{config: config}
}

// Classify evaluates the detection rules in priority order against a value
// that is either an array or a plain object. The scope (usually the
// document root) supplies out-of-band column order metadata for sectionKey
// and, when the table is nested inside a section, tableKey.
func (d *Detector) Classify(v *hierdata.Value, scope *hierdata.Value, sectionKey, tableKey string) TableClassification {
	none := TableClassification{Kind: TableNone}
	switch v.Kind() {
	case hierdata.KindObject:
		if c, ok := d.classifyGroupedArrays(v); ok {
			return c
		}
		if c, ok := d.classifyColumnOriented(v, scope, sectionKey, tableKey); ok {
			return c
		}
		if c, ok := d.classifyNestedObjectMatrix(v, scope, sectionKey, tableKey); ok {
			return c
		}
		return none
	case hierdata.KindArray:
		if c, ok := d.classifyUniformArray(v, scope, sectionKey, tableKey); ok {
			return c
		}
		return none
	default:
		return none
	}
}

// classifyGroupedArrays handles an object whose values are each arrays of
// uniform objects sharing a common key (a fiscal-year or period marker, or
// failing that the first key). Rows are merged across the arrays by equal
// common-key value, and each original top-level key becomes one
// multi-column header group spanning its object's sub-keys.
func (d *Detector) classifyGroupedArrays(v *hierdata.Value) (TableClassification, bool) {
	keys := v.Keys()
	if len(keys) < 2 {
		return TableClassification{}, false
	}

	type group struct {
		key     string
		subKeys []string
		rows    []*hierdata.Value
	}
	groups := make([]group, 0, len(keys))

	for _, key := range keys {
		member, _ := v.Field(key)
		if !member.IsArray() || member.Len() == 0 {
			return TableClassification{}, false
		}
		subKeys, ok := uniformObjectKeys(member.Items())
		if !ok {
			return TableClassification{}, false
		}
		groups = append(groups, group{key: key, subKeys: subKeys, rows: member.Items()})
	}

	commonKey, ok := findCommonKey(groups[0].subKeys, func(candidate string) bool {
		for _, g := range groups {
			if !containsString(g.subKeys, candidate) {
				return false
			}
		}
		return true
	})
	if !ok {
		return TableClassification{}, false
	}

	// Build the merged column list and header groups
	columns := []string{commonKey}
	headers := []model.GroupedTableHeader{{Name: commonKey, Colspan: 1}}
	for _, g := range groups {
		var subHeaders []string
		for _, sub := range g.subKeys {
			if sub == commonKey {
				continue
			}
			subHeaders = append(subHeaders, sub)
			columns = append(columns, g.key+"_"+sub)
		}
		if len(subHeaders) == 0 {
			continue
		}
		headers = append(headers, model.GroupedTableHeader{
			Name:       g.key,
			Colspan:    len(subHeaders),
			SubHeaders: subHeaders,
		})
	}

	// Merge rows across groups keyed by the common value
	var rowOrder []string
	merged := make(map[string]map[string]any)
	for _, g := range groups {
		for _, row := range g.rows {
			commonVal, _ := row.Field(commonKey)
			id := commonVal.Stringify()
			target, exists := merged[id]
			if !exists {
				target = map[string]any{commonKey: commonVal.Interface()}
				merged[id] = target
				rowOrder = append(rowOrder, id)
			}
			for _, sub := range g.subKeys {
				if sub == commonKey {
					continue
				}
				if cell, found := row.Field(sub); found {
					target[g.key+"_"+sub] = cell.Interface()
				}
			}
		}
	}

	rows := make([]map[string]any, 0, len(rowOrder))
	for _, id := range rowOrder {
		rows = append(rows, merged[id])
	}

	if !d.meetsThresholds(len(columns), len(rows)) {
		return TableClassification{}, false
	}
	return TableClassification{
		Kind:    TableGrouped,
		Columns: columns,
		Rows:    rows,
		Headers: headers,
	}, true
}

// classifyColumnOriented handles a column-oriented object: every value is
// an array of equal length, at least one non-empty. The columns are
// transposed into row-based records.
func (d *Detector) classifyColumnOriented(v *hierdata.Value, scope *hierdata.Value, sectionKey, tableKey string) (TableClassification, bool) {
	keys := v.Keys()
	if len(keys) < 2 {
		return TableClassification{}, false
	}

	length := -1
	nonEmpty := false
	for _, key := range keys {
		member, _ := v.Field(key)
		if !member.IsArray() {
			return TableClassification{}, false
		}
		if length == -1 {
			length = member.Len()
		} else if member.Len() != length {
			return TableClassification{}, false
		}
		if member.Len() > 0 {
			nonEmpty = true
		}
	}
	if !nonEmpty || !d.meetsThresholds(len(keys), length) {
		return TableClassification{}, false
	}

	columns := MergeColumnOrder(FindColumnOrder(scope, sectionKey, tableKey), keys)

	rows := make([]map[string]any, length)
	for i := 0; i < length; i++ {
		row := make(map[string]any, len(keys))
		for _, key := range keys {
			member, _ := v.Field(key)
			row[key] = member.Items()[i].Interface()
		}
		rows[i] = row
	}

	return TableClassification{
		Kind:    TableFlat,
		Columns: columns,
		Rows:    rows,
		Headers: flatHeaders(columns),
	}, true
}

// classifyUniformArray handles an array whose elements are all plain
// objects sharing an identical key set. Elements holding nested objects
// produce a grouped table with parentKey_childKey columns; otherwise the
// table is flat.
func (d *Detector) classifyUniformArray(v *hierdata.Value, scope *hierdata.Value, sectionKey, tableKey string) (TableClassification, bool) {
	items := v.Items()
	if len(items) == 0 {
		return TableClassification{}, false
	}
	elemKeys, ok := uniformObjectKeys(items)
	if !ok {
		return TableClassification{}, false
	}

	ordered := MergeColumnOrder(FindColumnOrder(scope, sectionKey, tableKey), elemKeys)

	if hasNestedObjectValues(items, ordered) {
		return d.buildGroupedFromArray(items, ordered)
	}

	if !d.meetsThresholds(len(ordered), len(items)) {
		return TableClassification{}, false
	}

	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row := make(map[string]any, len(ordered))
		for _, key := range ordered {
			if cell, found := item.Field(key); found {
				row[key] = cell.Interface()
			}
		}
		rows = append(rows, row)
	}

	return TableClassification{
		Kind:    TableFlat,
		Columns: ordered,
		Rows:    rows,
		Headers: flatHeaders(ordered),
	}, true
}

// buildGroupedFromArray flattens elements whose values are themselves plain
// objects into parentKey_childKey columns with a two-row header
func (d *Detector) buildGroupedFromArray(items []*hierdata.Value, parentKeys []string) (TableClassification, bool) {
	var columns []string
	var headers []model.GroupedTableHeader

	first := items[0]
	for _, key := range parentKeys {
		cell, _ := first.Field(key)
		if cell.IsObject() {
			subKeys := cell.Keys()
			for _, sub := range subKeys {
				columns = append(columns, key+"_"+sub)
			}
			headers = append(headers, model.GroupedTableHeader{
				Name:       key,
				Colspan:    len(subKeys),
				SubHeaders: subKeys,
			})
		} else {
			columns = append(columns, key)
			headers = append(headers, model.GroupedTableHeader{Name: key, Colspan: 1})
		}
	}

	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row := make(map[string]any, len(columns))
		for _, key := range parentKeys {
			cell, found := item.Field(key)
			if !found {
				continue
			}
			if cell.IsObject() {
				for _, sub := range cell.Keys() {
					if subCell, ok := cell.Field(sub); ok {
						row[key+"_"+sub] = subCell.Interface()
					}
				}
			} else {
				row[key] = cell.Interface()
			}
		}
		rows = append(rows, row)
	}

	if !d.meetsThresholds(len(columns), len(rows)) {
		return TableClassification{}, false
	}
	return TableClassification{
		Kind:    TableGrouped,
		Columns: columns,
		Rows:    rows,
		Headers: headers,
	}, true
}

// classifyNestedObjectMatrix handles a plain object whose values are all
// plain objects sharing identical key sets: each entry becomes a row. The
// original outer key is preserved as a synthetic _rowKey column unless
// every outer key is a generic placeholder like "row_1".
func (d *Detector) classifyNestedObjectMatrix(v *hierdata.Value, scope *hierdata.Value, sectionKey, tableKey string) (TableClassification, bool) {
	keys := v.Keys()
	if len(keys) < 2 {
		return TableClassification{}, false
	}

	var members []*hierdata.Value
	for _, key := range keys {
		member, _ := v.Field(key)
		members = append(members, member)
	}
	subKeys, ok := uniformObjectKeys(members)
	if !ok || len(subKeys) < 2 {
		return TableClassification{}, false
	}

	keepRowKey := false
	for _, key := range keys {
		if !placeholderRowKeyPattern.MatchString(key) {
			keepRowKey = true
			break
		}
	}

	ordered := MergeColumnOrder(FindColumnOrder(scope, sectionKey, tableKey), subKeys)
	columns := ordered
	if keepRowKey {
		columns = append([]string{RowKeyColumn}, ordered...)
	}

	rows := make([]map[string]any, 0, len(keys))
	for i, key := range keys {
		row := make(map[string]any, len(columns))
		if keepRowKey {
			row[RowKeyColumn] = key
		}
		for _, sub := range ordered {
			if cell, found := members[i].Field(sub); found {
				row[sub] = cell.Interface()
			}
		}
		rows = append(rows, row)
	}

	if !d.meetsThresholds(len(columns), len(rows)) {
		return TableClassification{}, false
	}
	return TableClassification{
		Kind:    TableFlat,
		Columns: columns,
		Rows:    rows,
		Headers: flatHeaders(columns),
	}, true
}

// RowKeyColumn is the synthetic column that preserves the outer key of a
// nested-object matrix row
const RowKeyColumn = "_rowKey"

func (d *Detector) meetsThresholds(columns, rows int) bool {
	return columns >= d.config.MinColumns && rows >= d.config.MinRows
}

// uniformObjectKeys returns the shared key set when every item is a plain
// object with an identical key set; key order follows the first item
func uniformObjectKeys(items []*hierdata.Value) ([]string, bool) {
	if len(items) == 0 {
		return nil, false
	}
	first := items[0]
	if !first.IsObject() {
		return nil, false
	}
	keys := first.Keys()
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	for _, item := range items[1:] {
		if !item.IsObject() || item.Len() != len(keys) {
			return nil, false
		}
		for _, k := range item.Keys() {
			if !want[k] {
				return nil, false
			}
		}
	}
	return keys, true
}

// hasNestedObjectValues reports whether any element carries a plain object
// (not array) under one of the given keys
func hasNestedObjectValues(items []*hierdata.Value, keys []string) bool {
	for _, item := range items {
		for _, key := range keys {
			if cell, found := item.Field(key); found && cell.IsObject() {
				return true
			}
		}
	}
	return false
}

// findCommonKey picks the merge key for grouped arrays: the first key
// matching the period pattern that is shared by every group, else the first
// key if shared
func findCommonKey(candidates []string, sharedByAll func(string) bool) (string, bool) {
	for _, key := range candidates {
		if groupKeyPattern.MatchString(key) && sharedByAll(key) {
			return key, true
		}
	}
	if len(candidates) > 0 && sharedByAll(candidates[0]) {
		return candidates[0], true
	}
	return "", false
}

func flatHeaders(columns []string) []model.GroupedTableHeader {
	headers := make([]model.GroupedTableHeader, 0, len(columns))
	for _, col := range columns {
		headers = append(headers, model.GroupedTableHeader{Name: col, Colspan: 1})
	}
	return headers
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
