package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		id   string
		want Category
	}{
		{"wind", CategoryNatural},
		{"light", CategoryNatural},
		{"still", CategoryQuality},
		{"emerge", CategoryAction},
		{"under", CategoryRelation},
		{"echo", CategoryAbstract},
		{"path", CategoryBeing},
		{"sound", CategoryUnknown},
		{"Wind", CategoryUnknown},
		{"", CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.id))
		})
	}
}

func TestCategories_ScanOrder(t *testing.T) {
	assert.Equal(t, []Category{
		CategoryNatural, CategoryQuality, CategoryAction, CategoryRelation,
		CategoryAbstract, CategoryBeing, CategoryUnknown,
	}, Categories())
}

func TestCategoryWords_ReturnsCopy(t *testing.T) {
	words := CategoryWords(CategoryBeing)
	assert.Equal(t, []string{"life", "death", "breath", "voice", "spirit", "memory", "dream", "path"}, words)

	words[0] = "mutated"
	assert.Equal(t, CategoryBeing, Categorize("life"))
	assert.Equal(t, "life", CategoryWords(CategoryBeing)[0])

	assert.Nil(t, CategoryWords(CategoryUnknown))
}
