package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammiranda/category_service/models"
)

func TestGetStatistics(t *testing.T) {
	tree := clothingTree()
	archive := category(6, "Archive", 0, 0, 3)
	archive.IsActive = false
	assert.NoError(t, tree.AddCategory(archive))

	stats := tree.GetStatistics()

	assert.Equal(t, 6, stats.TotalCategories)
	assert.Equal(t, 3, stats.RootCategories)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, map[int]int{0: 3, 1: 2, 2: 1}, stats.DepthDistribution)
	assert.Equal(t, 5, stats.ActiveCategories)
	assert.Equal(t, 1, stats.InactiveCategories)
}

func TestGetStatisticsEmpty(t *testing.T) {
	stats := Empty().GetStatistics()

	assert.Equal(t, 0, stats.TotalCategories)
	assert.Equal(t, 0, stats.MaxDepth)
	assert.Empty(t, stats.DepthDistribution)
}

func TestValidateTreeStructure(t *testing.T) {
	testCases := []struct {
		name     string
		records  []*models.Category
		expected []string
	}{
		{
			name: "consistent tree",
			records: []*models.Category{
				category(1, "Clothing", 0, 0, 1),
				category(2, "Tops", 1, 1, 1),
				category(3, "Tshirts", 2, 2, 1),
			},
			expected: []string{},
		},
		{
			name: "stored depth disagrees with ancestors",
			records: []*models.Category{
				category(1, "Clothing", 0, 0, 1),
				category(2, "Tops", 1, 3, 1),
			},
			expected: []string{"depth mismatch: category 2 (stored depth 3, computed depth 1)"},
		},
		{
			name: "parent missing from the tree",
			records: []*models.Category{
				category(1, "Clothing", 0, 0, 1),
				category(2, "Orphan", 42, 0, 1),
			},
			expected: []string{"missing parent: category 2 references parent 42"},
		},
		{
			name: "stored parent ids form a cycle",
			records: []*models.Category{
				category(1, "A", 2, 1, 1),
				category(2, "B", 1, 1, 1),
			},
			expected: []string{
				"circular reference: category 1",
				"circular reference: category 2",
				"depth mismatch: category 2 (stored depth 1, computed depth 0)",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree := Build(tc.records)
			assert.Equal(t, tc.expected, tree.ValidateTreeStructure())
		})
	}
}

func TestValidateTreeStructureAfterMutations(t *testing.T) {
	tree := clothingTree()

	_, err := tree.UpdateCategory(5, &models.Category{Name: "Bottoms", ParentID: int64Ptr(3), SortOrder: 1, IsActive: true})
	assert.NoError(t, err)
	_, err = tree.RemoveCategory(2)
	assert.NoError(t, err)
	_, err = tree.DeleteCategory(4)
	assert.NoError(t, err)

	assert.Empty(t, tree.ValidateTreeStructure())
	assert.Equal(t, "Clothing > Tshirts > Bottoms", tree.GetCategoryPath(5))
}
