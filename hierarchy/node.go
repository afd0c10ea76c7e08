package hierarchy

import (
	"fmt"
	"sort"

	"github.com/ammiranda/category_service/models"
)

// Node wraps one category record in the tree.
// A node owns its children; the parent pointer is a back-reference only.
type Node struct {
	Category *models.Category
	parent   *Node
	children []*Node
}

// NewNode creates a detached node for the given record
func NewNode(category *models.Category) *Node {
	return &Node{
		Category: category,
		children: make([]*Node, 0),
	}
}

// ID returns the id of the wrapped record
func (n *Node) ID() int64 {
	return n.Category.ID
}

// Parent returns the parent node, or nil for a root
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the ordered child list
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Equal reports whether both nodes wrap the same record id
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.ID() == other.ID()
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c.Equal(child) {
			return i
		}
	}
	return -1
}

// AddChild links child under n. Adding a child that is already present is a no-op.
func (n *Node) AddChild(child *Node) {
	if n.indexOf(child) >= 0 {
		return
	}
	if child.parent != nil && child.parent != n {
		child.parent.RemoveChild(child)
	}
	n.children = append(n.children, child)
	child.parent = n
}

// RemoveChild unlinks child from n and clears its parent link
func (n *Node) RemoveChild(child *Node) {
	i := n.indexOf(child)
	if i < 0 {
		return
	}
	removed := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	removed.parent = nil
}

// SortChildren orders the direct children by sort order, keeping ties stable
func (n *Node) SortChildren() {
	sortNodes(n.children)
}

// SortChildrenRecursively sorts the children of n and of every descendant
func (n *Node) SortChildrenRecursively() {
	stack := []*Node{n}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current.SortChildren()
		stack = append(stack, current.children...)
	}
}

// IsRoot reports whether n has no parent
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// IsLeaf reports whether n has no children
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Depth counts the ancestors of n by walking parent links
func (n *Node) Depth() int {
	depth := 0
	for current := n.parent; current != nil; current = current.parent {
		depth++
	}
	return depth
}

// Siblings returns the other children of n's parent
func (n *Node) Siblings() []*Node {
	if n.parent == nil {
		return []*Node{}
	}
	siblings := make([]*Node, 0, len(n.parent.children))
	for _, c := range n.parent.children {
		if !c.Equal(n) {
			siblings = append(siblings, c)
		}
	}
	return siblings
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(category=%s, children=%d)", n.Category.Name, len(n.children))
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Category.SortOrder < nodes[j].Category.SortOrder
	})
}
