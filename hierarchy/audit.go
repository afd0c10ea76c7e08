package hierarchy

import (
	"fmt"
	"sort"
)

// Statistics summarises the shape of a tree
type Statistics struct {
	TotalCategories    int         `json:"totalCategories"`
	RootCategories     int         `json:"rootCategories"`
	MaxDepth           int         `json:"maxDepth"`
	DepthDistribution  map[int]int `json:"depthDistribution"`
	ActiveCategories   int         `json:"activeCategories"`
	InactiveCategories int         `json:"inactiveCategories"`
}

// GetStatistics counts categories overall, per stored depth, and by active flag
func (t *Tree) GetStatistics() Statistics {
	stats := Statistics{
		TotalCategories:   len(t.nodes),
		RootCategories:    len(t.roots),
		DepthDistribution: make(map[int]int),
	}
	for _, node := range t.nodes {
		c := node.Category
		stats.DepthDistribution[c.Depth]++
		if c.Depth > stats.MaxDepth {
			stats.MaxDepth = c.Depth
		}
		if c.IsActive {
			stats.ActiveCategories++
		} else {
			stats.InactiveCategories++
		}
	}
	return stats
}

// ValidateTreeStructure audits the tree and returns one description per
// violation found. It never fails; an empty result means the tree is consistent.
//
// Three checks run in order: cycles in the stored parent ids, stored depth
// against the number of linked ancestors, and parent ids that reference a
// category missing from the tree.
func (t *Tree) ValidateTreeStructure() []string {
	ids := make([]int64, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	violations := make([]string, 0)
	for _, id := range ids {
		if t.hasCircularReference(id) {
			violations = append(violations, fmt.Sprintf("circular reference: category %d", id))
		}
	}
	for _, id := range ids {
		stored := t.nodes[id].Category.Depth
		if expected := len(t.GetAncestors(id)); stored != expected {
			violations = append(violations, fmt.Sprintf(
				"depth mismatch: category %d (stored depth %d, computed depth %d)", id, stored, expected))
		}
	}
	for _, id := range ids {
		parentID := t.nodes[id].Category.ParentID
		if parentID == nil {
			continue
		}
		if _, ok := t.nodes[*parentID]; !ok {
			violations = append(violations, fmt.Sprintf(
				"missing parent: category %d references parent %d", id, *parentID))
		}
	}
	return violations
}

// hasCircularReference follows stored parent ids from id with a visited set;
// revisiting an id means the chain never reaches a root.
func (t *Tree) hasCircularReference(id int64) bool {
	visited := make(map[int64]bool)
	current := id
	for {
		if visited[current] {
			return true
		}
		visited[current] = true
		node, ok := t.nodes[current]
		if !ok || node.Category.ParentID == nil {
			return false
		}
		current = *node.Category.ParentID
	}
}
