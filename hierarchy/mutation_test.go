package hierarchy

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammiranda/category_service/models"
)

// chainTree builds n nested categories with ids 1..n at depths 0..n-1
func chainTree(n int) *Tree {
	records := make([]*models.Category, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, category(int64(i), fmt.Sprintf("Level%d", i-1), int64(i-1), i-1, 1))
	}
	return Build(records)
}

func assertCode(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
	herr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, code, herr.Code)
}

func TestAddCategory(t *testing.T) {
	tree := clothingTree()

	err := tree.AddCategory(category(6, "Pants", 5, 0, 1))
	require.NoError(t, err)

	added, ok := tree.FindByID(6)
	require.True(t, ok)
	assert.Equal(t, 2, added.Depth)
	assert.Equal(t, "Clothing > Bottoms > Pants", tree.GetCategoryPath(6))
	assert.Empty(t, tree.ValidateTreeStructure())
}

func TestAddCategoryRoot(t *testing.T) {
	tree := clothingTree()

	require.NoError(t, tree.AddCategory(category(6, "Bags", 0, 0, 0)))

	assert.Equal(t, []string{"Bags", "Clothing", "Shoes"}, names(tree.GetRootCategories()))
}

func TestAddCategoryRejections(t *testing.T) {
	inactive := category(7, "Archive", 0, 0, 9)
	inactive.IsActive = false

	testCases := []struct {
		name     string
		record   *models.Category
		sentinel error
		code     string
		kind     Kind
	}{
		{"duplicate id", category(1, "Other", 0, 0, 1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"unknown parent", category(10, "Child", 999, 0, 1), ErrParentNotFound, CodeParentNotFound, KindNotFound},
		{"inactive parent", category(10, "Child", 7, 0, 1), ErrInactiveParent, CodeInactiveCategory, KindStructuralViolation},
		{"duplicate sibling name", category(10, "Tops", 1, 0, 1), ErrDuplicateName, CodeDuplicateName, KindConflict},
		{"empty name", category(10, "", 1, 0, 1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"blank name", category(10, "   ", 1, 0, 1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"tab name", category(10, "\t", 0, 0, 1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"name too long", category(10, strings.Repeat("a", 101), 1, 0, 1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"negative sort order", category(10, "Child", 1, 0, -1), ErrInvalidInput, CodeInvalidInput, KindInvalidInput},
		{"root too deep", category(10, "Deep", 0, 6, 1), ErrMaxDepthExceeded, CodeMaxDepthExceeded, KindStructuralViolation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree := clothingTree()
			require.NoError(t, tree.AddCategory(inactive.Clone()))
			before := tree.Len()

			err := tree.AddCategory(tc.record)

			assertCode(t, err, tc.sentinel, tc.code)
			herr, _ := AsError(err)
			assert.Equal(t, tc.kind, herr.Kind)
			assert.Equal(t, before, tree.Len())
		})
	}
}

func TestAddCategoryMaxDepth(t *testing.T) {
	// depths 0..5
	tree := chainTree(6)

	err := tree.AddCategory(category(100, "TooDeep", 6, 0, 1))
	assertCode(t, err, ErrMaxDepthExceeded, CodeMaxDepthExceeded)
	herr, _ := AsError(err)
	assert.Equal(t, "depth 6 exceeds max depth 5", herr.Details)
	_, exists := tree.FindByID(100)
	assert.False(t, exists)

	require.NoError(t, tree.AddCategory(category(101, "Deepest", 5, 0, 1)))
	added, _ := tree.FindByID(101)
	assert.Equal(t, 5, added.Depth)

	require.NoError(t, tree.AddCategory(category(102, "Middle", 4, 0, 2)))
	middle, _ := tree.FindByID(102)
	assert.Equal(t, 4, middle.Depth)
}

func TestUpdateCategoryFields(t *testing.T) {
	tree := clothingTree()

	modified, err := tree.UpdateCategory(2, &models.Category{
		Name:      "Upper",
		ParentID:  int64Ptr(1),
		SortOrder: 5,
		IsActive:  true,
	})
	require.NoError(t, err)

	require.Len(t, modified, 1)
	assert.Equal(t, "Upper", modified[0].Name)
	assert.Equal(t, []string{"Bottoms", "Upper"}, names(tree.GetChildren(int64Ptr(1))))
}

func TestUpdateCategoryReparentCascadesDepth(t *testing.T) {
	tree := clothingTree()

	modified, err := tree.UpdateCategory(2, &models.Category{
		Name:      "Tops",
		ParentID:  int64Ptr(4),
		SortOrder: 1,
		IsActive:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Tops", "Tshirts"}, names(modified))
	assert.Equal(t, "Shoes > Tops > Tshirts", tree.GetCategoryPath(3))
	assert.Equal(t, []string{"Bottoms"}, names(tree.GetChildren(int64Ptr(1))))
	for _, c := range tree.Categories() {
		assert.Len(t, tree.GetAncestors(c.ID), c.Depth, "category %d", c.ID)
	}
	assert.Empty(t, tree.ValidateTreeStructure())
}

func TestUpdateCategoryPromoteToRoot(t *testing.T) {
	tree := clothingTree()

	_, err := tree.UpdateCategory(2, &models.Category{Name: "Tops", SortOrder: 0, IsActive: true})
	require.NoError(t, err)

	tops, _ := tree.FindByID(2)
	tshirts, _ := tree.FindByID(3)
	assert.Nil(t, tops.ParentID)
	assert.Equal(t, 0, tops.Depth)
	assert.Equal(t, 1, tshirts.Depth)
	assert.Equal(t, []string{"Tops", "Clothing", "Shoes"}, names(tree.GetRootCategories()))
}

func TestUpdateCategoryRejections(t *testing.T) {
	testCases := []struct {
		name     string
		id       int64
		parentID *int64
		newName  string
		sentinel error
		code     string
	}{
		{"unknown category", 999, nil, "X", ErrNotFound, CodeNotFound},
		{"self as parent", 2, int64Ptr(2), "Tops", ErrCircularReference, CodeCircularReference},
		{"child as parent", 1, int64Ptr(2), "Clothing", ErrCircularReference, CodeCircularReference},
		{"grandchild as parent", 1, int64Ptr(3), "Clothing", ErrCircularReference, CodeCircularReference},
		{"unknown parent", 2, int64Ptr(999), "Tops", ErrParentNotFound, CodeParentNotFound},
		{"duplicate name under new parent", 5, nil, "Shoes", ErrDuplicateName, CodeDuplicateName},
		{"empty name", 2, int64Ptr(1), "", ErrInvalidInput, CodeInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree := clothingTree()
			before := tree.Categories()
			snapshot := make([]models.Category, 0, len(before))
			for _, c := range before {
				snapshot = append(snapshot, *c.Clone())
			}

			_, err := tree.UpdateCategory(tc.id, &models.Category{
				Name:     tc.newName,
				ParentID: tc.parentID,
				IsActive: true,
			})

			assertCode(t, err, tc.sentinel, tc.code)
			after := tree.Categories()
			require.Len(t, after, len(snapshot))
			for i, c := range after {
				assert.Equal(t, snapshot[i], *c.Clone())
			}
		})
	}
}

func TestUpdateCategoryMaxDepth(t *testing.T) {
	tree := chainTree(6)
	require.NoError(t, tree.AddCategory(category(10, "Other", 0, 0, 2)))
	require.NoError(t, tree.AddCategory(category(11, "OtherChild", 10, 0, 1)))

	// moving under the depth-5 leaf would put it at depth 6
	_, err := tree.UpdateCategory(10, &models.Category{Name: "Other", ParentID: int64Ptr(6), IsActive: true})
	assertCode(t, err, ErrMaxDepthExceeded, CodeMaxDepthExceeded)

	// depth 4 parent is fine for a leaf but not for a node with a child
	_, err = tree.UpdateCategory(10, &models.Category{Name: "Other", ParentID: int64Ptr(5), IsActive: true})
	assertCode(t, err, ErrMaxDepthExceeded, CodeMaxDepthExceeded)

	_, err = tree.UpdateCategory(10, &models.Category{Name: "Other", ParentID: int64Ptr(4), IsActive: true})
	require.NoError(t, err)
	child, _ := tree.FindByID(11)
	assert.Equal(t, 5, child.Depth)
}

func TestUpdateCategoryInactiveParent(t *testing.T) {
	tree := clothingTree()
	archive := category(6, "Archive", 0, 0, 3)
	archive.IsActive = false
	require.NoError(t, tree.AddCategory(archive))

	_, err := tree.UpdateCategory(2, &models.Category{Name: "Tops", ParentID: int64Ptr(6), IsActive: true})

	assertCode(t, err, ErrInactiveParent, CodeInactiveCategory)
}

func TestRemoveCategoryPromotesChildren(t *testing.T) {
	tree := clothingTree()

	modified, err := tree.RemoveCategory(2)
	require.NoError(t, err)

	_, exists := tree.FindByID(2)
	assert.False(t, exists)
	assert.Equal(t, []string{"Tshirts"}, names(modified))

	tshirts, ok := tree.FindByID(3)
	require.True(t, ok)
	require.NotNil(t, tshirts.ParentID)
	assert.Equal(t, int64(1), *tshirts.ParentID)
	assert.Equal(t, 1, tshirts.Depth)
	assert.Equal(t, "Clothing > Tshirts", tree.GetCategoryPath(3))
	assert.Empty(t, tree.ValidateTreeStructure())
}

func TestRemoveRootPromotesChildrenToRoots(t *testing.T) {
	tree := clothingTree()

	modified, err := tree.RemoveCategory(1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Tops", "Tshirts", "Bottoms"}, names(modified))
	assert.Equal(t, []string{"Tops", "Shoes", "Bottoms"}, names(tree.GetRootCategories()))
	tshirts, _ := tree.FindByID(3)
	assert.Equal(t, 1, tshirts.Depth)
	assert.Equal(t, 4, tree.Len())
	assert.Empty(t, tree.ValidateTreeStructure())
}

func TestRemoveCategoryRejectsNameCollision(t *testing.T) {
	tree := clothingTree()
	require.NoError(t, tree.AddCategory(category(6, "Bottoms", 2, 0, 2)))

	_, err := tree.RemoveCategory(2)

	assertCode(t, err, ErrDuplicateName, CodeDuplicateName)
	_, exists := tree.FindByID(2)
	assert.True(t, exists)
	assert.Equal(t, []string{"Tshirts", "Bottoms"}, names(tree.GetChildren(int64Ptr(2))))
}

func TestRemoveCategoryNotFound(t *testing.T) {
	tree := clothingTree()

	_, err := tree.RemoveCategory(999)

	assertCode(t, err, ErrNotFound, CodeNotFound)
}

func TestDeleteCategoryCascades(t *testing.T) {
	tree := clothingTree()
	expected := tree.CountCategoryAndDescendants(1)

	removed, err := tree.DeleteCategory(1)
	require.NoError(t, err)

	assert.Len(t, removed, expected)
	assert.Equal(t, []string{"Clothing", "Tops", "Tshirts", "Bottoms"}, names(removed))
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, []string{"Shoes"}, names(tree.GetRootCategories()))

	removedIDs := make(map[int64]bool)
	for _, c := range removed {
		removedIDs[c.ID] = true
	}
	for _, c := range tree.Categories() {
		if c.ParentID != nil {
			assert.False(t, removedIDs[*c.ParentID])
		}
	}
}

func TestDeleteCategoryLeaf(t *testing.T) {
	tree := clothingTree()

	removed, err := tree.DeleteCategory(3)
	require.NoError(t, err)

	assert.Len(t, removed, 1)
	assert.Empty(t, tree.GetChildren(int64Ptr(2)))
}

func TestDeleteCategoryNotFound(t *testing.T) {
	tree := clothingTree()

	_, err := tree.DeleteCategory(999)

	assertCode(t, err, ErrNotFound, CodeNotFound)
	assert.Equal(t, 5, tree.Len())
}
