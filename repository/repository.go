package repository

import (
	"context"
	"errors"

	"github.com/ammiranda/category_service/models"
)

// Store defines the record operations shared by a repository and the
// transaction scopes it hands out.
type Store interface {
	// Get retrieves a category by its ID.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	Get(ctx context.Context, id int64) (*models.Category, error)

	// Save inserts the category when its ID is zero, assigning the new ID to
	// c.ID, and updates the stored row otherwise.
	// Returns ErrCategoryNotFound when updating a missing row, and
	// ErrDuplicateName when the store's own name constraint rejects the row.
	Save(ctx context.Context, c *models.Category) error

	// DeleteByID removes a single category row.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// FindByParent returns the children of parentID ordered by sort order.
	// A nil parentID returns the roots.
	FindByParent(ctx context.Context, parentID *int64) ([]*models.Category, error)

	// FindAll returns every category ordered by depth, then sort order.
	FindAll(ctx context.Context) ([]*models.Category, error)

	// ExistsByParentAndName reports whether an active category named name
	// already sits under parentID.
	ExistsByParentAndName(ctx context.Context, parentID *int64, name string) (bool, error)
}

// Repository defines the interface for data access operations.
// It provides methods for managing categories in a persistent storage.
type Repository interface {
	Store

	// Initialize performs any necessary setup for the repository.
	// This may include establishing database connections or running migrations.
	Initialize(ctx context.Context) error

	// Cleanup releases the resources held by the repository.
	Cleanup(ctx context.Context) error

	// WithinTx runs fn against a transactional Store. Every write made through
	// it is committed when fn returns nil and discarded otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// Common errors
var (
	// ErrCategoryNotFound is returned when a requested category does not exist
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateName is returned when the store rejects a sibling name collision
	ErrDuplicateName = errors.New("duplicate category name")
)
