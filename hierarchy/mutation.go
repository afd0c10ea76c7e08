package hierarchy

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ammiranda/category_service/models"
)

// MaxNameLength bounds the length of a category name in characters
const MaxNameLength = 100

func validateFields(name string, sortOrder int) error {
	if strings.TrimSpace(name) == "" {
		return InvalidInputError("name must not be blank")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return InvalidInputError(fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if sortOrder < 0 {
		return InvalidInputError("sortOrder must not be negative")
	}
	return nil
}

// CheckParent validates parentID as the parent of a new child and returns the
// depth the child would have. A nil parent places the child at depth 0.
func (t *Tree) CheckParent(parentID *int64) (int, error) {
	if parentID == nil {
		return 0, nil
	}
	parent, ok := t.nodes[*parentID]
	if !ok {
		return 0, ParentNotFoundError(*parentID)
	}
	if !parent.Category.IsActive {
		return 0, InactiveParentError(*parentID)
	}
	depth := parent.Category.Depth + 1
	if depth > MaxDepth {
		return 0, MaxDepthExceededError(depth, MaxDepth)
	}
	return depth, nil
}

// ValidateNew runs every insert check except id uniqueness and returns the
// depth the record would be stored at.
func (t *Tree) ValidateNew(c *models.Category) (int, error) {
	if err := validateFields(c.Name, c.SortOrder); err != nil {
		return 0, err
	}
	if c.ParentID == nil && c.Depth > MaxDepth {
		return 0, MaxDepthExceededError(c.Depth, MaxDepth)
	}
	depth, err := t.CheckParent(c.ParentID)
	if err != nil {
		return 0, err
	}
	if c.IsActive && t.ValidateDuplicateName(c.Name, c.ParentID, nil) {
		return 0, DuplicateNameError(c.Name, c.ParentID)
	}
	return depth, nil
}

// AddCategory inserts a record under its parent, or as a root. The record's
// depth is set from its placement. On error the tree is left unchanged.
func (t *Tree) AddCategory(c *models.Category) error {
	if _, exists := t.nodes[c.ID]; exists {
		return InvalidInputError(fmt.Sprintf("category id %d already exists", c.ID))
	}
	depth, err := t.ValidateNew(c)
	if err != nil {
		return err
	}

	c.Depth = depth
	node := NewNode(c)
	t.nodes[c.ID] = node
	if c.ParentID != nil {
		t.nodes[*c.ParentID].AddChild(node)
	} else {
		t.roots = append(t.roots, node)
	}
	t.sort()
	return nil
}

// CheckReparent validates moving id under newParentID without changing anything
func (t *Tree) CheckReparent(id int64, newParentID *int64) error {
	node, ok := t.nodes[id]
	if !ok {
		return NotFoundError(id)
	}
	if newParentID == nil {
		return nil
	}
	if *newParentID == id {
		return CircularReferenceError(id, *newParentID, "a category cannot be its own parent")
	}
	for _, d := range descendantNodes(node) {
		if d.ID() == *newParentID {
			return CircularReferenceError(id, *newParentID, "a category cannot move under its own descendant")
		}
	}
	depth, err := t.CheckParent(newParentID)
	if err != nil {
		return err
	}
	if deepest := depth + subtreeHeight(node); deepest > MaxDepth {
		return MaxDepthExceededError(deepest, MaxDepth)
	}
	return nil
}

// subtreeHeight is the distance from node to its deepest descendant
func subtreeHeight(node *Node) int {
	height := 0
	type entry struct {
		node  *Node
		level int
	}
	stack := []entry{{node, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.level > height {
			height = e.level
		}
		for _, c := range e.node.children {
			stack = append(stack, entry{c, e.level + 1})
		}
	}
	return height
}

// UpdateCategory applies name, parent, sort order and active flag from
// changes to the category id. When the parent changes the node is relinked
// and depths are recomputed across its subtree. It returns every record that
// was modified: the category itself, followed by its descendants when it moved.
func (t *Tree) UpdateCategory(id int64, changes *models.Category) ([]*models.Category, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, NotFoundError(id)
	}
	if err := validateFields(changes.Name, changes.SortOrder); err != nil {
		return nil, err
	}
	reparent := !models.SameParent(node.Category.ParentID, changes.ParentID)
	if reparent {
		if err := t.CheckReparent(id, changes.ParentID); err != nil {
			return nil, err
		}
	}
	if changes.IsActive && t.ValidateDuplicateName(changes.Name, changes.ParentID, &id) {
		return nil, DuplicateNameError(changes.Name, changes.ParentID)
	}

	rec := node.Category
	rec.Name = changes.Name
	rec.SortOrder = changes.SortOrder
	rec.IsActive = changes.IsActive
	modified := []*models.Category{rec}

	if reparent {
		t.detach(node)
		if changes.ParentID != nil {
			parentID := *changes.ParentID
			rec.ParentID = &parentID
			t.nodes[parentID].AddChild(node)
		} else {
			rec.ParentID = nil
			t.roots = append(t.roots, node)
		}
		modified = cascadeDepth(node)
	}

	t.sort()
	return modified, nil
}

// RemoveCategory deletes id alone and re-attaches its children one level up,
// to id's former parent or to the root list. It returns the records whose
// parent or depth changed. Promotion that would put two active siblings
// under the same name is rejected before anything changes.
func (t *Tree) RemoveCategory(id int64) ([]*models.Category, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, NotFoundError(id)
	}

	newParent := node.parent
	var newParentID *int64
	if newParent != nil {
		pid := newParent.ID()
		newParentID = &pid
	}
	seen := make(map[string]bool)
	for _, sibling := range t.childNodes(newParentID) {
		if sibling != node && sibling.Category.IsActive {
			seen[sibling.Category.Name] = true
		}
	}
	for _, child := range node.children {
		if !child.Category.IsActive {
			continue
		}
		if seen[child.Category.Name] {
			return nil, DuplicateNameError(child.Category.Name, newParentID)
		}
		seen[child.Category.Name] = true
	}

	modified := make([]*models.Category, 0)
	for _, child := range node.Children() {
		node.RemoveChild(child)
		if newParent != nil {
			pid := newParent.ID()
			child.Category.ParentID = &pid
			newParent.AddChild(child)
		} else {
			child.Category.ParentID = nil
			t.roots = append(t.roots, child)
		}
		modified = append(modified, cascadeDepth(child)...)
	}

	t.detach(node)
	delete(t.nodes, id)
	t.sort()
	return modified, nil
}

// DeleteCategory removes id together with all of its descendants and returns
// the removed records in pre-order, id first.
func (t *Tree) DeleteCategory(id int64) ([]*models.Category, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, NotFoundError(id)
	}

	removed := append([]*Node{node}, descendantNodes(node)...)
	for _, n := range removed {
		delete(t.nodes, n.ID())
	}
	t.detach(node)
	return toCategories(removed), nil
}

// detach unlinks node from its parent or from the root list
func (t *Tree) detach(node *Node) {
	if node.parent != nil {
		node.parent.RemoveChild(node)
		return
	}
	for i, r := range t.roots {
		if r == node {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			return
		}
	}
}

// cascadeDepth sets node's depth from its parent and propagates
// child.depth = parent.depth + 1 through the subtree. It returns every
// visited record, node first.
func cascadeDepth(node *Node) []*models.Category {
	if node.parent != nil {
		node.Category.Depth = node.parent.Category.Depth + 1
	} else {
		node.Category.Depth = 0
	}

	visited := make([]*models.Category, 0)
	queue := []*Node{node}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited = append(visited, current.Category)
		for _, child := range current.children {
			child.Category.Depth = current.Category.Depth + 1
			queue = append(queue, child)
		}
	}
	return visited
}
