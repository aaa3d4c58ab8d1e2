package convert

import (
	"strings"

	"github.com/a3tai/formengine/internal/hierdata"
)

// FindColumnOrder locates out-of-band column ordering metadata for a table
// within the given scope (usually the document root). The lookup tries, in
// order: the exact metadata key, a page-suffixed variant of it, and finally
// any _columnOrder key whose page-normalized form matches. Returns nil when
// no metadata exists; callers then fall back to the table's own key order.
func FindColumnOrder(scope *hierdata.Value, sectionKey, tableKey string) []string {
	if scope == nil || !scope.IsObject() {
		return nil
	}

	target := sectionKey
	if tableKey != "" {
		target = sectionKey + "_" + tableKey
	}

	// Exact key first
	exact := hierdata.MetadataPrefix + target + hierdata.ColumnOrderSuffix
	if order := columnOrderAt(scope, exact); order != nil {
		return order
	}

	// Page-suffixed and normalized variants: any _..._columnOrder key whose
	// page-stripped inner name matches the page-stripped target.
	want := NormalizeLabel(target)
	for _, key := range scope.Keys() {
		if !strings.HasPrefix(key, hierdata.MetadataPrefix) ||
			!strings.HasSuffix(key, hierdata.ColumnOrderSuffix) {
			continue
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(key, hierdata.MetadataPrefix), hierdata.ColumnOrderSuffix)
		inner = strings.TrimSuffix(inner, "_")
		if NormalizeLabel(inner) == want {
			if order := columnOrderAt(scope, key); order != nil {
				return order
			}
		}
	}

	return nil
}

// MergeColumnOrder reconciles ordering metadata with the columns actually
// present in the row data: ordered columns that exist come first, then any
// data columns the metadata missed, in their original encounter order. No
// column is ever dropped.
func MergeColumnOrder(order, dataColumns []string) []string {
	if len(order) == 0 {
		return dataColumns
	}

	present := make(map[string]bool, len(dataColumns))
	for _, col := range dataColumns {
		present[col] = true
	}

	merged := make([]string, 0, len(dataColumns))
	listed := make(map[string]bool, len(order))
	for _, col := range order {
		if present[col] && !listed[col] {
			merged = append(merged, col)
			listed[col] = true
		}
	}
	for _, col := range dataColumns {
		if !listed[col] {
			merged = append(merged, col)
			listed[col] = true
		}
	}
	return merged
}

func columnOrderAt(scope *hierdata.Value, key string) []string {
	v, ok := scope.Field(key)
	if !ok || !v.IsArray() || v.Len() == 0 {
		return nil
	}
	return v.StringSlice()
}
