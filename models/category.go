package models

import "time"

// Category is a single persisted category record
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parentId"`
	Depth     int       `json:"depth"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCategory creates an active category with the given name and placement
func NewCategory(name string, parentID *int64, sortOrder int) *Category {
	return &Category{
		Name:      name,
		ParentID:  parentID,
		SortOrder: sortOrder,
		IsActive:  true,
	}
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Clone returns a copy that shares no pointers with c
func (c *Category) Clone() *Category {
	cp := *c
	if c.ParentID != nil {
		parentID := *c.ParentID
		cp.ParentID = &parentID
	}
	return &cp
}

// SameParent compares two optional parent ids
func SameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CategoryResponse is a category with its nested children, as returned by the API
type CategoryResponse struct {
	ID        int64               `json:"id" dynamodbav:"id"`
	Name      string              `json:"name" dynamodbav:"name"`
	ParentID  *int64              `json:"parentId" dynamodbav:"parentId,omitempty"`
	Depth     int                 `json:"depth" dynamodbav:"depth"`
	SortOrder int                 `json:"sortOrder" dynamodbav:"sortOrder"`
	IsActive  bool                `json:"isActive" dynamodbav:"isActive"`
	CreatedAt time.Time           `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt" dynamodbav:"updatedAt"`
	Children  []*CategoryResponse `json:"children" dynamodbav:"children"`
}

// NewCategoryResponse converts a record into a response without children
func NewCategoryResponse(c *Category) *CategoryResponse {
	resp := &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Depth:     c.Depth,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Children:  make([]*CategoryResponse, 0),
	}
	if c.ParentID != nil {
		parentID := *c.ParentID
		resp.ParentID = &parentID
	}
	return resp
}

// AddChild appends a child response
func (r *CategoryResponse) AddChild(child *CategoryResponse) {
	r.Children = append(r.Children, child)
}

// DeleteResponse reports the outcome of a delete
type DeleteResponse struct {
	DeletedCategoryID    int64 `json:"deletedCategoryId"`
	DeletedChildrenCount int   `json:"deletedChildrenCount"`
}

// PathResponse is the breadcrumb of a category
type PathResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// RemoveResponse reports a removal whose children were promoted one level up
type RemoveResponse struct {
	RemovedCategoryID     int64 `json:"removedCategoryId"`
	PromotedChildrenCount int   `json:"promotedChildrenCount"`
}
