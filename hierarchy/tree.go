// Package hierarchy keeps categories in an in-memory tree and enforces the
// structural rules of the catalogue: bounded depth, acyclic parentage and
// unique names among active siblings.
//
// A Tree is a derived view. It is rebuilt from a flat snapshot of records
// whenever a fresh view is needed and is not safe for concurrent mutation;
// callers serialise writers and give each request its own Tree.
package hierarchy

import (
	"strings"

	"github.com/ammiranda/category_service/models"
)

// MaxDepth is the deepest level a category may sit at. Roots are at depth 0.
const MaxDepth = 5

// PathSeparator joins category names in a breadcrumb path
const PathSeparator = " > "

// Tree indexes nodes by id and keeps the ordered list of roots
type Tree struct {
	nodes map[int64]*Node
	roots []*Node
}

// Empty returns a tree without categories
func Empty() *Tree {
	return &Tree{
		nodes: make(map[int64]*Node),
		roots: make([]*Node, 0),
	}
}

// Build assembles a tree from a flat list of records.
//
// The first pass wraps every record and indexes it by id; the second links
// each node under its parent. A parent id that does not resolve, or a link
// that would close a cycle, leaves the node as a root. Such nodes are
// reported by ValidateTreeStructure.
func Build(records []*models.Category) *Tree {
	t := Empty()

	for _, rec := range records {
		if _, exists := t.nodes[rec.ID]; exists {
			continue
		}
		t.nodes[rec.ID] = NewNode(rec)
	}

	for _, rec := range records {
		node := t.nodes[rec.ID]
		if node.Category != rec {
			continue
		}
		if rec.ParentID != nil {
			if parent, ok := t.nodes[*rec.ParentID]; ok && !t.wouldCycle(node, parent) {
				parent.AddChild(node)
				continue
			}
		}
		t.roots = append(t.roots, node)
	}

	t.sort()
	return t
}

// wouldCycle reports whether linking node under parent makes node its own ancestor
func (t *Tree) wouldCycle(node, parent *Node) bool {
	for current := parent; current != nil; current = current.parent {
		if current == node {
			return true
		}
	}
	return false
}

func (t *Tree) sort() {
	sortNodes(t.roots)
	for _, root := range t.roots {
		root.SortChildrenRecursively()
	}
}

// Len returns the number of indexed categories
func (t *Tree) Len() int {
	return len(t.nodes)
}

// FindByID returns the record with the given id
func (t *Tree) FindByID(id int64) (*models.Category, bool) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return node.Category, true
}

// FindNode returns the node with the given id
func (t *Tree) FindNode(id int64) (*Node, bool) {
	node, ok := t.nodes[id]
	return node, ok
}

// Roots returns a copy of the ordered root list
func (t *Tree) Roots() []*Node {
	roots := make([]*Node, len(t.roots))
	copy(roots, t.roots)
	return roots
}

// Categories returns every record in pre-order, roots first
func (t *Tree) Categories() []*models.Category {
	result := make([]*models.Category, 0, len(t.nodes))
	for _, root := range t.roots {
		result = append(result, root.Category)
		result = append(result, collectDescendants(root)...)
	}
	return result
}

// GetRootCategories returns the root records ordered by sort order
func (t *Tree) GetRootCategories() []*models.Category {
	return toCategories(t.roots)
}

// GetChildren returns the roots when parentID is nil and the children of the
// parent otherwise. An unknown parent has no children.
func (t *Tree) GetChildren(parentID *int64) []*models.Category {
	return toCategories(t.childNodes(parentID))
}

func (t *Tree) childNodes(parentID *int64) []*Node {
	if parentID == nil {
		return t.roots
	}
	parent, ok := t.nodes[*parentID]
	if !ok {
		return nil
	}
	return parent.children
}

// GetDescendants returns everything below id in pre-order, excluding id itself
func (t *Tree) GetDescendants(id int64) []*models.Category {
	node, ok := t.nodes[id]
	if !ok {
		return []*models.Category{}
	}
	return collectDescendants(node)
}

func collectDescendants(node *Node) []*models.Category {
	return toCategories(descendantNodes(node))
}

// descendantNodes walks the subtree under node in pre-order with an explicit stack
func descendantNodes(node *Node) []*Node {
	result := make([]*Node, 0)
	stack := make([]*Node, 0, len(node.children))
	for i := len(node.children) - 1; i >= 0; i-- {
		stack = append(stack, node.children[i])
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, current)
		for i := len(current.children) - 1; i >= 0; i-- {
			stack = append(stack, current.children[i])
		}
	}
	return result
}

// GetAncestors returns the ancestors of id ordered from the root down to the immediate parent
func (t *Tree) GetAncestors(id int64) []*models.Category {
	node, ok := t.nodes[id]
	if !ok {
		return []*models.Category{}
	}
	ancestors := make([]*models.Category, 0, MaxDepth)
	for current := node.parent; current != nil; current = current.parent {
		ancestors = append(ancestors, current.Category)
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors
}

// GetCategoryPath joins the names from the root down to id, e.g. "A > B > C".
// It returns an empty string for an unknown id.
func (t *Tree) GetCategoryPath(id int64) string {
	node, ok := t.nodes[id]
	if !ok {
		return ""
	}
	ancestors := t.GetAncestors(id)
	names := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		names = append(names, a.Name)
	}
	names = append(names, node.Category.Name)
	return strings.Join(names, PathSeparator)
}

// IsDescendantOf reports whether ancestorID is among the ancestors of id
func (t *Tree) IsDescendantOf(id, ancestorID int64) bool {
	for _, a := range t.GetAncestors(id) {
		if a.ID == ancestorID {
			return true
		}
	}
	return false
}

// CountCategoryAndDescendants returns 1 plus the number of descendants of id
func (t *Tree) CountCategoryAndDescendants(id int64) int {
	return 1 + len(t.GetDescendants(id))
}

// ValidateDuplicateName reports whether an active sibling under parentID,
// other than excludeID, already uses name.
func (t *Tree) ValidateDuplicateName(name string, parentID *int64, excludeID *int64) bool {
	for _, sibling := range t.childNodes(parentID) {
		c := sibling.Category
		if !c.IsActive || c.Name != name {
			continue
		}
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		return true
	}
	return false
}

func toCategories(nodes []*Node) []*models.Category {
	result := make([]*models.Category, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, n.Category)
	}
	return result
}
