package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammiranda/category_service/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

// category builds an active record; parent 0 means root
func category(id int64, name string, parent int64, depth, sortOrder int) *models.Category {
	c := &models.Category{
		ID:        id,
		Name:      name,
		Depth:     depth,
		SortOrder: sortOrder,
		IsActive:  true,
	}
	if parent != 0 {
		c.ParentID = int64Ptr(parent)
	}
	return c
}

func names(categories []*models.Category) []string {
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		result = append(result, c.Name)
	}
	return result
}

func TestNodeAddChild(t *testing.T) {
	parent := NewNode(category(1, "Clothing", 0, 0, 1))
	child := NewNode(category(2, "Tops", 1, 1, 1))

	parent.AddChild(child)
	parent.AddChild(child)

	assert.Len(t, parent.Children(), 1)
	assert.Same(t, parent, child.Parent())
	assert.False(t, parent.IsLeaf())
	assert.True(t, child.IsLeaf())
	assert.True(t, parent.IsRoot())
	assert.False(t, child.IsRoot())
}

func TestNodeAddChildMovesFromPreviousParent(t *testing.T) {
	first := NewNode(category(1, "First", 0, 0, 1))
	second := NewNode(category(2, "Second", 0, 0, 2))
	child := NewNode(category(3, "Child", 1, 1, 1))

	first.AddChild(child)
	second.AddChild(child)

	assert.Empty(t, first.Children())
	assert.Len(t, second.Children(), 1)
	assert.Same(t, second, child.Parent())
}

func TestNodeRemoveChild(t *testing.T) {
	parent := NewNode(category(1, "Clothing", 0, 0, 1))
	child := NewNode(category(2, "Tops", 1, 1, 1))
	parent.AddChild(child)

	parent.RemoveChild(child)

	assert.Empty(t, parent.Children())
	assert.Nil(t, child.Parent())

	// removing an absent child is a no-op
	parent.RemoveChild(child)
	assert.Empty(t, parent.Children())
}

func TestNodeSortChildren(t *testing.T) {
	parent := NewNode(category(1, "Clothing", 0, 0, 1))
	parent.AddChild(NewNode(category(2, "C", 1, 1, 3)))
	parent.AddChild(NewNode(category(3, "A", 1, 1, 1)))
	parent.AddChild(NewNode(category(4, "B1", 1, 1, 2)))
	parent.AddChild(NewNode(category(5, "B2", 1, 1, 2)))

	parent.SortChildren()

	var got []string
	for _, c := range parent.Children() {
		got = append(got, c.Category.Name)
	}
	assert.Equal(t, []string{"A", "B1", "B2", "C"}, got)
}

func TestNodeSortChildrenRecursively(t *testing.T) {
	root := NewNode(category(1, "Root", 0, 0, 1))
	second := NewNode(category(2, "Second", 1, 1, 2))
	first := NewNode(category(3, "First", 1, 1, 1))
	root.AddChild(second)
	root.AddChild(first)
	second.AddChild(NewNode(category(4, "Z", 2, 2, 9)))
	second.AddChild(NewNode(category(5, "Y", 2, 2, 0)))

	root.SortChildrenRecursively()

	children := root.Children()
	assert.Equal(t, "First", children[0].Category.Name)
	assert.Equal(t, "Second", children[1].Category.Name)
	grandchildren := children[1].Children()
	assert.Equal(t, "Y", grandchildren[0].Category.Name)
	assert.Equal(t, "Z", grandchildren[1].Category.Name)
}

func TestNodeDepth(t *testing.T) {
	root := NewNode(category(1, "A", 0, 0, 1))
	mid := NewNode(category(2, "B", 1, 1, 1))
	leaf := NewNode(category(3, "C", 2, 2, 1))
	root.AddChild(mid)
	mid.AddChild(leaf)

	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, mid.Depth())
	assert.Equal(t, 2, leaf.Depth())
}

func TestNodeSiblings(t *testing.T) {
	root := NewNode(category(1, "Clothing", 0, 0, 1))
	tops := NewNode(category(2, "Tops", 1, 1, 1))
	bottoms := NewNode(category(3, "Bottoms", 1, 1, 2))
	outer := NewNode(category(4, "Outer", 1, 1, 3))
	root.AddChild(tops)
	root.AddChild(bottoms)
	root.AddChild(outer)

	siblings := tops.Siblings()
	assert.Len(t, siblings, 2)
	assert.NotContains(t, siblings, tops)
	assert.Empty(t, root.Siblings())
}

func TestNodeEquality(t *testing.T) {
	a := NewNode(category(1, "A", 0, 0, 1))
	b := NewNode(category(1, "Renamed", 0, 0, 5))
	c := NewNode(category(2, "A", 0, 0, 1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "Node(category=A, children=0)", a.String())
}
