package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ammiranda/category_service/models"
)

// MemoryRepository implements Repository in process memory. It backs the
// "memory" store driver and the service tests.
type MemoryRepository struct {
	categories map[int64]*models.Category
	nextID     int64
	mu         sync.RWMutex
	txMu       sync.Mutex
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		categories: make(map[int64]*models.Category),
	}
}

// Initialize performs any necessary setup
func (m *MemoryRepository) Initialize(ctx context.Context) error {
	return nil
}

// Cleanup drops every stored category
func (m *MemoryRepository) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[int64]*models.Category)
	m.nextID = 0
	return nil
}

// WithinTx snapshots the stored categories, runs fn and restores the
// snapshot if fn fails. Transactions are serialised with each other.
func (m *MemoryRepository) WithinTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := make(map[int64]*models.Category, len(m.categories))
	for id, c := range m.categories {
		snapshot[id] = c.Clone()
	}
	nextID := m.nextID
	m.mu.RUnlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.categories = snapshot
		m.nextID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// Get retrieves a category by ID
func (m *MemoryRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return c.Clone(), nil
}

// Save inserts or updates a category
func (m *MemoryRepository) Save(ctx context.Context, c *models.Category) error {
	if c == nil || c.Name == "" {
		return ErrInvalidInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c.IsActive && m.nameTaken(c.ParentID, c.Name, c.ID) {
		return ErrDuplicateName
	}

	now := time.Now().UTC()
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
		c.CreatedAt = now
	} else {
		existing, ok := m.categories[c.ID]
		if !ok {
			return ErrCategoryNotFound
		}
		c.CreatedAt = existing.CreatedAt
	}
	c.UpdatedAt = now
	m.categories[c.ID] = c.Clone()
	return nil
}

// DeleteByID deletes a single category
func (m *MemoryRepository) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

// FindByParent returns the children of parentID ordered by sort order
func (m *MemoryRepository) FindByParent(ctx context.Context, parentID *int64) ([]*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Category, 0)
	for _, c := range m.categories {
		if models.SameParent(c.ParentID, parentID) {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// FindAll returns every category ordered by depth, then sort order
func (m *MemoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, c.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ID < b.ID
	})
	return result, nil
}

// ExistsByParentAndName reports whether an active sibling already uses name
func (m *MemoryRepository) ExistsByParentAndName(ctx context.Context, parentID *int64, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameTaken(parentID, name, 0), nil
}

// nameTaken must be called with mu held
func (m *MemoryRepository) nameTaken(parentID *int64, name string, excludeID int64) bool {
	for id, c := range m.categories {
		if id != excludeID && c.IsActive && c.Name == name && models.SameParent(c.ParentID, parentID) {
			return true
		}
	}
	return false
}
