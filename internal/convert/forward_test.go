package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

func TestConvertMixedDocument(t *testing.T) {
	doc := decode(t, `{
		"client_name": "Acme",
		"client_email": "a@acme.test",
		"items": [
			{"name": "Widget", "qty": 2},
			{"name": "Gadget", "qty": 5}
		],
		"status": {"_type": "select", "value": "open", "options": ["open", "closed"]},
		"signatures": [{"label": "Witness", "image_url": ""}]
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 4)

	client := sections[0]
	assert.Equal(t, "client", client.Key)
	assert.Equal(t, "Client", client.Name)
	assert.Equal(t, 0, client.Order)
	require.Len(t, client.Fields, 2)
	assert.Equal(t, "client_name", client.Fields[0].Key)
	assert.Equal(t, "Name", client.Fields[0].Label)
	assert.Equal(t, model.FieldTypeText, client.Fields[0].Type)
	assert.Equal(t, "Acme", client.Fields[0].Value)
	assert.Equal(t, "Email", client.Fields[1].Label)

	items := sections[1]
	assert.Equal(t, "items", items.Key)
	require.Len(t, items.Fields, 1)
	table := items.Fields[0]
	assert.Equal(t, model.FieldTypeTable, table.Type)
	assert.Equal(t, []string{"name", "qty"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, ConfidenceTable, table.Confidence)
	assert.Empty(t, table.GroupedHeaders)

	status := sections[2]
	require.Len(t, status.Fields, 1)
	assert.Equal(t, model.FieldTypeSelect, status.Fields[0].Type)
	assert.Equal(t, "open", status.Fields[0].Value)
	assert.Equal(t, []string{"open", "closed"}, status.Fields[0].Options)
	assert.Equal(t, ConfidenceDeclared, status.Fields[0].Confidence)

	sigs := sections[3]
	assert.Equal(t, hierdata.SignaturesKey, sigs.Key)
	require.Len(t, sigs.Fields, 1)
	assert.Equal(t, model.FieldTypeSignature, sigs.Fields[0].Type)
	assert.Equal(t, "Witness", sigs.Fields[0].Label)
	assert.Equal(t, "signatures_1", sigs.Fields[0].Key)
}

func TestConvertFlatScalars(t *testing.T) {
	doc := decode(t, `{"full_name": "Jane Doe", "age": 34}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 2)

	require.Len(t, sections[0].Fields, 1)
	name := sections[0].Fields[0]
	assert.Equal(t, "Full Name", name.Label)
	assert.Equal(t, model.FieldTypeText, name.Type)
	assert.Equal(t, "Jane Doe", name.Value)

	require.Len(t, sections[1].Fields, 1)
	age := sections[1].Fields[0]
	assert.Equal(t, "Age", age.Label)
	assert.Equal(t, model.FieldTypeNumber, age.Type)
	assert.Equal(t, float64(34), age.Value)
}

// Every non-metadata document key must land in exactly one section, either
// as a field key or as the section's own key.
func TestConvertCoversEveryKey(t *testing.T) {
	doc := decode(t, `{
		"_keyOrder": ["invoice_number", "invoice_date", "items", "notes"],
		"invoice_number": "INV-7",
		"invoice_date": "2024-01-15",
		"items": [{"name": "a", "qty": 1}, {"name": "b", "qty": 2}],
		"notes": "deliver by friday",
		"_items_columnOrder": ["qty", "name"]
	}`)

	sections := NewConverter().Convert(doc)

	covered := make(map[string]bool)
	for _, section := range sections {
		covered[section.Key] = true
		for _, field := range section.Fields {
			covered[field.Key] = true
		}
	}

	for _, key := range hierdata.DocumentKeys(doc) {
		assert.True(t, covered[key], "key %q not represented in the model", key)
	}
}

func TestConvertIDsAreSequential(t *testing.T) {
	doc := decode(t, `{"a_one": 1, "a_two": 2, "b": "x"}`)
	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 2)
	assert.Equal(t, "section_1", sections[0].ID)
	assert.Equal(t, "section_2", sections[1].ID)
	assert.Equal(t, "field_1", sections[0].Fields[0].ID)
	assert.Equal(t, "field_2", sections[0].Fields[1].ID)
	assert.Equal(t, "field_3", sections[1].Fields[0].ID)
}

func TestConvertPageSuffixedKeysMerge(t *testing.T) {
	doc := decode(t, `{
		"employer_name_page_1": "Acme",
		"employer_name_page_2": "Acme Inc"
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Fields, 2)

	// Labels agree after page-suffix stripping; raw keys stay distinct so
	// each value writes back to its own page
	assert.Equal(t, sections[0].Fields[0].Label, sections[0].Fields[1].Label)
	assert.Equal(t, "employer_name_page_1", sections[0].Fields[0].Key)
	assert.Equal(t, "employer_name_page_2", sections[0].Fields[1].Key)
}

func TestConvertWrapperTable(t *testing.T) {
	doc := decode(t, `{
		"lines": {
			"_type": "table",
			"value": [{"a": 1, "b": 2}, {"a": 3, "b": 4}],
			"_columns": ["a", "b"]
		},
		"_lines_columnOrder": ["b", "a"]
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Fields, 1)

	table := sections[0].Fields[0]
	assert.Equal(t, model.FieldTypeTable, table.Type)
	assert.Equal(t, "lines", table.Key)
	assert.Equal(t, []string{"b", "a"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, ConfidenceDeclared, table.Confidence)
}

func TestConvertSmallArrayBecomesNumberedFields(t *testing.T) {
	doc := decode(t, `{
		"contacts": [{"name": "Ann"}, {"name": "Bob"}]
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 1)
	fields := sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "name_1", fields[0].Key)
	assert.Equal(t, "Name 1", fields[0].Label)
	assert.Equal(t, "Ann", fields[0].Value)
	assert.Equal(t, "name_2", fields[1].Key)
	assert.Equal(t, "Bob", fields[1].Value)
}

func TestConvertObjectSection(t *testing.T) {
	doc := decode(t, `{
		"address": {"street": "1 Main St", "city": "Springfield"}
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 1)
	assert.Equal(t, "Address", sections[0].Name)
	fields := sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "Street", fields[0].Label)
	assert.Equal(t, "1 Main St", fields[0].Value)
	assert.Equal(t, "City", fields[1].Label)
}

func TestConvertObjectSectionWithInnerTable(t *testing.T) {
	doc := decode(t, `{
		"details": {
			"summary": "ok",
			"items": [{"name": "a", "qty": 1}, {"name": "b", "qty": 2}]
		},
		"_details_items_columnOrder": ["qty", "name"]
	}`)

	sections := NewConverter().Convert(doc)
	require.Len(t, sections, 1)
	fields := sections[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, model.FieldTypeText, fields[0].Type)

	table := fields[1]
	assert.Equal(t, model.FieldTypeTable, table.Type)
	assert.Equal(t, "items", table.Key)
	assert.Equal(t, []string{"qty", "name"}, table.Columns)
}

// Confirmed edits from a persisted field list must survive re-conversion:
// a matched field keeps its type and required flag instead of reverting to
// fresh inference.
func TestConvertWithPriorOverrides(t *testing.T) {
	doc := decode(t, `{
		"client_name": "Acme",
		"client_email": "a@acme.test"
	}`)

	prior := []model.FieldDescriptor{
		{Key: "client_email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
	}

	sections := NewConverter().ConvertWithPrior(doc, prior)
	require.Len(t, sections, 1)
	fields := sections[0].Fields
	require.Len(t, fields, 2)

	assert.Equal(t, model.FieldTypeText, fields[0].Type, "unmatched field keeps inference")
	assert.False(t, fields[0].Required)

	assert.Equal(t, model.FieldTypeEmail, fields[1].Type, "matched field keeps confirmed type")
	assert.True(t, fields[1].Required)
	assert.Equal(t, "a@acme.test", fields[1].Value, "fresh value wins over prior value")
}

// A confirmed field must survive a re-analysis that no longer produces it:
// the persisted list is authoritative for field identity, with the raw data
// only refreshing values.
func TestConvertWithPriorKeepsMissingFields(t *testing.T) {
	doc := decode(t, `{"client_name": "Acme"}`)

	prior := []model.FieldDescriptor{
		{Key: "client_name", Label: "Name", Type: model.FieldTypeText},
		{ID: "f_kept", Key: "client_email", Label: "Email", Type: model.FieldTypeEmail, Required: true, Value: "a@acme.test"},
	}

	sections := NewConverter().ConvertWithPrior(doc, prior)
	require.Len(t, sections, 2)

	carried := sections[1]
	assert.Equal(t, "Persisted Fields", carried.Name)
	assert.Equal(t, 1, carried.Order)
	require.Len(t, carried.Fields, 1)

	kept := carried.Fields[0]
	assert.Equal(t, "f_kept", kept.ID)
	assert.Equal(t, "client_email", kept.Key)
	assert.Equal(t, model.FieldTypeEmail, kept.Type)
	assert.True(t, kept.Required)
	assert.Equal(t, "a@acme.test", kept.Value)
}

func TestConvertWithPriorAllMatchedAddsNoSection(t *testing.T) {
	doc := decode(t, `{"client_name": "Acme"}`)
	prior := []model.FieldDescriptor{
		{Key: "client_name", Label: "Name", Type: model.FieldTypeTextarea},
	}

	sections := NewConverter().ConvertWithPrior(doc, prior)
	require.Len(t, sections, 1)
	assert.Equal(t, model.FieldTypeTextarea, sections[0].Fields[0].Type)
}

// Overriding an inferred field to a choice type must leave it valid even
// when neither side carries an options list.
func TestConvertPriorOverrideToChoiceType(t *testing.T) {
	doc := decode(t, `{"status": "open"}`)
	prior := []model.FieldDescriptor{
		{Key: "status", Label: "Status", Type: model.FieldTypeSelect},
	}

	sections := NewConverter().ConvertWithPrior(doc, prior)
	require.Len(t, sections, 1)

	field := sections[0].Fields[0]
	assert.Equal(t, model.FieldTypeSelect, field.Type)
	require.NotNil(t, field.Options)
	assert.NoError(t, sections[0].Validate())
}

func TestConvertPriorMatchIgnoresPageSuffix(t *testing.T) {
	doc := decode(t, `{"phone_page_3": "555-0100"}`)

	prior := []model.FieldDescriptor{
		{Key: "phone", Label: "Phone", Type: model.FieldTypePhone},
	}

	sections := NewConverter().ConvertWithPrior(doc, prior)
	require.Len(t, sections, 1)
	assert.Equal(t, model.FieldTypePhone, sections[0].Fields[0].Type)
}

func TestConvertNilAndNonObject(t *testing.T) {
	assert.Nil(t, NewConverter().Convert(nil))
	assert.Nil(t, NewConverter().Convert(hierdata.String("x")))
}

func TestConvertChoiceFieldsAlwaysHaveOptions(t *testing.T) {
	doc := decode(t, `{
		"agreed": true,
		"status": {"_type": "radio", "value": "a"}
	}`)

	sections := NewConverter().Convert(doc)
	for _, field := range model.FlatFields(sections) {
		if field.Type.HasOptions() {
			assert.NotNil(t, field.Options, "field %q", field.Label)
		}
	}
}
