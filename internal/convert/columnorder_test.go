package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/formengine/internal/hierdata"
)

func TestFindColumnOrder(t *testing.T) {
	scope, err := hierdata.Decode([]byte(`{
		"items": [],
		"_items_columnOrder": ["qty", "name", "price"],
		"_summary_page_2_columnOrder": ["total", "label"]
	}`))
	require.NoError(t, err)

	t.Run("exact key", func(t *testing.T) {
		assert.Equal(t, []string{"qty", "name", "price"}, FindColumnOrder(scope, "items", ""))
	})

	t.Run("page-suffixed metadata matches page-stripped target", func(t *testing.T) {
		assert.Equal(t, []string{"total", "label"}, FindColumnOrder(scope, "summary", ""))
	})

	t.Run("page-suffixed target matches metadata", func(t *testing.T) {
		assert.Equal(t, []string{"qty", "name", "price"}, FindColumnOrder(scope, "items_page_3", ""))
	})

	t.Run("nested table key", func(t *testing.T) {
		nested, err := hierdata.Decode([]byte(`{"_details_items_columnOrder": ["b", "a"]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, FindColumnOrder(nested, "details", "items"))
	})

	t.Run("no metadata", func(t *testing.T) {
		assert.Nil(t, FindColumnOrder(scope, "missing", ""))
	})

	t.Run("nil scope", func(t *testing.T) {
		assert.Nil(t, FindColumnOrder(nil, "items", ""))
	})
}

func TestMergeColumnOrder(t *testing.T) {
	tests := []struct {
		name     string
		order    []string
		data     []string
		expected []string
	}{
		{
			name:     "metadata first then unlisted data columns",
			order:    []string{"b", "a"},
			data:     []string{"a", "b", "c"},
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "ordered columns absent from data are skipped",
			order:    []string{"b", "ghost", "a"},
			data:     []string{"a", "b"},
			expected: []string{"b", "a"},
		},
		{
			name:     "no metadata keeps data order",
			order:    nil,
			data:     []string{"x", "y"},
			expected: []string{"x", "y"},
		},
		{
			name:     "duplicate metadata entries collapse",
			order:    []string{"a", "a", "b"},
			data:     []string{"a", "b"},
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeColumnOrder(tt.order, tt.data)
			assert.Equal(t, tt.expected, merged)

			// No data column may ever be dropped by ordering metadata
			for _, col := range tt.data {
				assert.Contains(t, merged, col)
			}
		})
	}
}
