package convert

import (
	"strings"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

// SectionPlanKind identifies how a planned section was derived
type SectionPlanKind int

const (
	// PlanScalarGroup is a section of scalar fields grouped by shared key
	// prefix (or a single standalone scalar key)
	PlanScalarGroup SectionPlanKind = iota
	// PlanNested is a section derived from one nested object or array key
	PlanNested
	// PlanSignatures is the dedicated section for the reserved signatures key
	PlanSignatures
)

// SectionPlan is the grouping decision for one section, before field typing
// and table detection run. MemberKeys always lists the raw top-level
// document keys the section owns.
type SectionPlan struct {
	Kind       SectionPlanKind
	Key        string
	Name       string
	Order      int
	MemberKeys []string
}

// PlanSections partitions a document's top-level keys into sections.
// Metadata keys are stripped; scalar keys sharing a prefix (before the
// first underscore, page suffix removed) merge into one section when at
// least two of them share it; nested keys each become their own section.
// Scalar groups and nested sections interleave in document order rather
// than being grouped by kind. Every non-metadata key lands in exactly one
// plan.
func PlanSections(doc *hierdata.Value) []SectionPlan {
	keys := hierdata.DocumentKeys(doc)

	// The signatures key is reserved only when it actually holds an array;
	// any other shape falls through to normal scalar/nested handling so the
	// key is never lost.
	sigVal, _ := doc.Field(hierdata.SignaturesKey)
	sigArray := sigVal.IsArray()

	// Count prefix populations among scalar keys first, so group membership
	// is known before plans are laid out in document order.
	prefixCount := make(map[string]int)
	scalar := make(map[string]bool)
	for _, key := range keys {
		if key == hierdata.SignaturesKey && sigArray {
			continue
		}
		v, _ := doc.Field(key)
		if isScalarField(v) {
			scalar[key] = true
			prefixCount[keyPrefix(key)]++
		}
	}

	var plans []SectionPlan
	emitted := make(map[string]bool)
	groupIndex := make(map[string]int)

	for _, key := range keys {
		if key == hierdata.SignaturesKey && sigArray {
			continue
		}
		if !scalar[key] {
			plans = append(plans, SectionPlan{
				Kind:       PlanNested,
				Key:        key,
				Name:       FormatLabel(key),
				MemberKeys: []string{key},
			})
			continue
		}

		prefix := keyPrefix(key)
		if prefixCount[prefix] < 2 {
			plans = append(plans, SectionPlan{
				Kind:       PlanScalarGroup,
				Key:        key,
				Name:       FormatLabel(key),
				MemberKeys: []string{key},
			})
			continue
		}

		if emitted[prefix] {
			idx := groupIndex[prefix]
			plans[idx].MemberKeys = append(plans[idx].MemberKeys, key)
			continue
		}
		emitted[prefix] = true
		groupIndex[prefix] = len(plans)
		plans = append(plans, SectionPlan{
			Kind:       PlanScalarGroup,
			Key:        prefix,
			Name:       FormatLabel(prefix),
			MemberKeys: []string{key},
		})
	}

	// Signatures render as their own trailing section when present and
	// non-empty
	if sigArray && sigVal.Len() > 0 {
		plans = append(plans, SectionPlan{
			Kind:       PlanSignatures,
			Key:        hierdata.SignaturesKey,
			Name:       FormatLabel(hierdata.SignaturesKey),
			MemberKeys: []string{hierdata.SignaturesKey},
		})
	}

	// Drop sections that are really order metadata that leaked through
	filtered := plans[:0]
	for _, plan := range plans {
		norm := NormalizeLabel(plan.Key)
		if norm == "keyorder" || strings.HasPrefix(plan.Key, "_key") {
			continue
		}
		filtered = append(filtered, plan)
	}

	for i := range filtered {
		filtered[i].Order = i
	}
	return filtered
}

// isScalarField reports whether a top-level value renders as a simple typed
// field: primitives, nulls, and wrappers declaring any non-table type.
// Bare objects and arrays, and wrappers declaring a table, are nested.
func isScalarField(v *hierdata.Value) bool {
	if declared, ok := hierdata.WrapperType(v); ok {
		return declared != string(model.FieldTypeTable)
	}
	return v.IsScalar()
}

// keyPrefix derives the grouping prefix of a scalar key: the segment before
// the first underscore, page suffix stripped. Keys without an underscore
// group only with themselves.
func keyPrefix(key string) string {
	stripped := StripPageSuffix(key)
	if i := strings.Index(stripped, "_"); i > 0 {
		return stripped[:i]
	}
	return stripped
}
