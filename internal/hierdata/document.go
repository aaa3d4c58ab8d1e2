package hierdata

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved keys of a raw hierarchical document. Keys starting with the
// metadata prefix are never treated as fields.
const (
	MetadataPrefix    = "_"
	KeyOrderKey       = "_keyOrder"
	TypeKey           = "_type"
	ColumnsKey        = "_columns"
	ColumnOrderSuffix = "_columnOrder"
	SignaturesKey     = "signatures"
)

// IsMetadataKey reports whether a top-level key is reserved metadata
func IsMetadataKey(key string) bool {
	return strings.HasPrefix(key, MetadataPrefix)
}

// DecodeDocument parses a raw hierarchical document. The top level must be
// a JSON object; anything else is rejected at this boundary so the
// conversion core never sees it.
func DecodeDocument(data []byte) (*Value, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("hierarchical data must be a JSON object, got %s", v.Kind())
	}
	return v, nil
}

// DocumentKeys returns the document's semantic key order: the _keyOrder
// metadata entry when present (filtered to keys that actually exist, with
// unlisted keys appended in insertion order), otherwise plain insertion
// order. Metadata keys are always excluded.
func DocumentKeys(doc *Value) []string {
	if doc == nil || !doc.IsObject() {
		return nil
	}

	var ordered []string
	seen := make(map[string]bool)

	if orderVal, ok := doc.Field(KeyOrderKey); ok && orderVal.IsArray() {
		for _, key := range orderVal.StringSlice() {
			if _, exists := doc.Field(key); exists && !IsMetadataKey(key) && !seen[key] {
				ordered = append(ordered, key)
				seen[key] = true
			}
		}
	}

	for _, key := range doc.Keys() {
		if IsMetadataKey(key) || seen[key] {
			continue
		}
		ordered = append(ordered, key)
		seen[key] = true
	}

	return ordered
}

// WrapperType returns the declared _type of a field wrapper object, if the
// value is one. A wrapper is any object carrying a string _type member.
func WrapperType(v *Value) (string, bool) {
	if v == nil || !v.IsObject() {
		return "", false
	}
	t, ok := v.Field(TypeKey)
	if !ok || t.Kind() != KindString {
		return "", false
	}
	return t.Str(), true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
