package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/formengine/internal/hierdata"
	"github.com/a3tai/formengine/internal/model"
)

func decode(t *testing.T, data string) *hierdata.Value {
	t.Helper()
	v, err := hierdata.Decode([]byte(data))
	require.NoError(t, err)
	return v
}

func TestClassifyUniformArray(t *testing.T) {
	d := NewDetector()

	t.Run("flat table from uniform objects", func(t *testing.T) {
		v := decode(t, `[
			{"name": "Widget", "qty": 2},
			{"name": "Gadget", "qty": 5},
			{"name": "Sprocket", "qty": 1}
		]`)
		c := d.Classify(v, nil, "items", "")
		require.True(t, c.IsTable())
		assert.Equal(t, TableFlat, c.Kind)
		assert.Equal(t, []string{"name", "qty"}, c.Columns)
		require.Len(t, c.Rows, 3)
		assert.Equal(t, "Widget", c.Rows[0]["name"])
		assert.Equal(t, float64(2), c.Rows[0]["qty"])
		require.Len(t, c.Headers, 2)
		assert.Equal(t, 1, c.Headers[0].Colspan)
	})

	t.Run("non-uniform key sets are not a table", func(t *testing.T) {
		v := decode(t, `[{"name": "a", "qty": 1}, {"name": "b", "price": 2}]`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})

	t.Run("single column stays a field list", func(t *testing.T) {
		v := decode(t, `[{"name": "a"}, {"name": "b"}, {"name": "c"}]`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})

	t.Run("single row stays a field list", func(t *testing.T) {
		v := decode(t, `[{"name": "a", "qty": 1}]`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})

	t.Run("scalar array is not a table", func(t *testing.T) {
		v := decode(t, `["a", "b", "c"]`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})

	t.Run("column order metadata applies", func(t *testing.T) {
		scope := decode(t, `{"_items_columnOrder": ["qty", "name"]}`)
		v := decode(t, `[{"name": "a", "qty": 1}, {"name": "b", "qty": 2}]`)
		c := d.Classify(v, scope, "items", "")
		require.True(t, c.IsTable())
		assert.Equal(t, []string{"qty", "name"}, c.Columns)
	})
}

func TestClassifyArrayWithNestedObjects(t *testing.T) {
	d := NewDetector()

	v := decode(t, `[
		{"item": "Widget", "price": {"net": 10, "gross": 12}},
		{"item": "Gadget", "price": {"net": 20, "gross": 24}}
	]`)
	c := d.Classify(v, nil, "lines", "")
	require.True(t, c.IsTable())
	assert.Equal(t, TableGrouped, c.Kind)
	assert.Equal(t, []string{"item", "price_net", "price_gross"}, c.Columns)

	require.Len(t, c.Headers, 2)
	assert.Equal(t, model.GroupedTableHeader{Name: "item", Colspan: 1}, c.Headers[0])
	assert.Equal(t, "price", c.Headers[1].Name)
	assert.Equal(t, 2, c.Headers[1].Colspan)
	assert.Equal(t, []string{"net", "gross"}, c.Headers[1].SubHeaders)

	require.Len(t, c.Rows, 2)
	assert.Equal(t, "Widget", c.Rows[0]["item"])
	assert.Equal(t, float64(10), c.Rows[0]["price_net"])
	assert.Equal(t, float64(24), c.Rows[1]["price_gross"])
}

func TestClassifyColumnOriented(t *testing.T) {
	d := NewDetector()

	t.Run("equal-length arrays transpose into rows", func(t *testing.T) {
		v := decode(t, `{"name": ["a", "b"], "qty": [1, 2]}`)
		c := d.Classify(v, nil, "items", "")
		require.True(t, c.IsTable())
		assert.Equal(t, TableFlat, c.Kind)
		assert.Equal(t, []string{"name", "qty"}, c.Columns)
		require.Len(t, c.Rows, 2)
		assert.Equal(t, "a", c.Rows[0]["name"])
		assert.Equal(t, float64(2), c.Rows[1]["qty"])
	})

	t.Run("ragged lengths are not a table", func(t *testing.T) {
		v := decode(t, `{"name": ["a", "b"], "qty": [1]}`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})

	t.Run("all-empty columns are not a table", func(t *testing.T) {
		v := decode(t, `{"name": [], "qty": []}`)
		assert.False(t, d.Classify(v, nil, "items", "").IsTable())
	})
}

func TestClassifyGroupedArrays(t *testing.T) {
	d := NewDetector()

	v := decode(t, `{
		"revenue": [
			{"fy": "2022", "amount": 100},
			{"fy": "2023", "amount": 150}
		],
		"costs": [
			{"fy": "2022", "total": 60},
			{"fy": "2023", "total": 80}
		]
	}`)
	c := d.Classify(v, nil, "financials", "")
	require.True(t, c.IsTable())
	assert.Equal(t, TableGrouped, c.Kind)
	assert.Equal(t, []string{"fy", "revenue_amount", "costs_total"}, c.Columns)

	require.Len(t, c.Headers, 3)
	assert.Equal(t, "fy", c.Headers[0].Name)
	assert.Equal(t, "revenue", c.Headers[1].Name)
	assert.Equal(t, []string{"amount"}, c.Headers[1].SubHeaders)

	// Rows merged across the two arrays on equal fy values
	require.Len(t, c.Rows, 2)
	assert.Equal(t, "2022", c.Rows[0]["fy"])
	assert.Equal(t, float64(100), c.Rows[0]["revenue_amount"])
	assert.Equal(t, float64(60), c.Rows[0]["costs_total"])
	assert.Equal(t, float64(80), c.Rows[1]["costs_total"])
}

func TestClassifyGroupedArraysUnalignedPeriods(t *testing.T) {
	d := NewDetector()

	// A period present in only one group still produces a row; the other
	// group's cells are simply absent
	v := decode(t, `{
		"revenue": [{"fy": "2022", "amount": 100}, {"fy": "2023", "amount": 150}],
		"costs": [{"fy": "2023", "total": 80}]
	}`)
	c := d.Classify(v, nil, "financials", "")
	require.True(t, c.IsTable())
	require.Len(t, c.Rows, 2)
	assert.Equal(t, "2022", c.Rows[0]["fy"])
	_, has := c.Rows[0]["costs_total"]
	assert.False(t, has)
	assert.Equal(t, float64(80), c.Rows[1]["costs_total"])
}

func TestClassifyNestedObjectMatrix(t *testing.T) {
	d := NewDetector()

	t.Run("outer keys preserved as row key column", func(t *testing.T) {
		v := decode(t, `{
			"alpha": {"x": 1, "y": 2},
			"beta": {"x": 3, "y": 4}
		}`)
		c := d.Classify(v, nil, "matrix", "")
		require.True(t, c.IsTable())
		assert.Equal(t, TableFlat, c.Kind)
		assert.Equal(t, []string{RowKeyColumn, "x", "y"}, c.Columns)
		require.Len(t, c.Rows, 2)
		assert.Equal(t, "alpha", c.Rows[0][RowKeyColumn])
		assert.Equal(t, float64(3), c.Rows[1]["x"])
	})

	t.Run("placeholder outer keys are dropped", func(t *testing.T) {
		v := decode(t, `{
			"row_1": {"x": 1, "y": 2},
			"row_2": {"x": 3, "y": 4}
		}`)
		c := d.Classify(v, nil, "matrix", "")
		require.True(t, c.IsTable())
		assert.Equal(t, []string{"x", "y"}, c.Columns)
		_, has := c.Rows[0][RowKeyColumn]
		assert.False(t, has)
	})

	t.Run("differing sub-keys are not a table", func(t *testing.T) {
		v := decode(t, `{
			"alpha": {"x": 1, "y": 2},
			"beta": {"x": 3, "z": 4}
		}`)
		assert.False(t, d.Classify(v, nil, "matrix", "").IsTable())
	})
}

func TestDetectorThresholds(t *testing.T) {
	relaxed := NewDetectorWithConfig(DetectorConfig{MinRows: 1, MinColumns: 2})

	v := decode(t, `[{"name": "a", "qty": 1}]`)
	c := relaxed.Classify(v, nil, "items", "")
	assert.True(t, c.IsTable(), "relaxed thresholds accept a single row")

	assert.False(t, NewDetector().Classify(v, nil, "items", "").IsTable(),
		"default thresholds reject a single row")
}

func TestClassifyScalarValues(t *testing.T) {
	d := NewDetector()
	for _, data := range []string{`"text"`, `42`, `true`, `null`} {
		assert.False(t, d.Classify(decode(t, data), nil, "k", "").IsTable(), "input %s", data)
	}
}
