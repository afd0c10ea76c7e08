// Package service runs category operations against the hierarchy engine,
// persists their effects in one store transaction and evicts cached views.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ammiranda/category_service/cache"
	"github.com/ammiranda/category_service/hierarchy"
	"github.com/ammiranda/category_service/metrics"
	"github.com/ammiranda/category_service/models"
	"github.com/ammiranda/category_service/repository"
)

// Operation names used in logs and metrics
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpRemove = "remove"
)

// CategoryService is safe for concurrent use. Mutations are serialised;
// reads build their own tree from a store snapshot.
type CategoryService struct {
	repo   repository.Repository
	cache  cache.Provider
	logger *slog.Logger

	// mu is held for writing by mutations up to their cache eviction and for
	// reading by reads that fill the cache, so a view loaded before a commit
	// is never stored after that commit's eviction.
	mu sync.RWMutex
}

// NewCategoryService creates a service over repo. A nil cache disables caching.
func NewCategoryService(repo repository.Repository, provider cache.Provider, logger *slog.Logger) *CategoryService {
	if provider == nil {
		provider = cache.NewNoopCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{
		repo:   repo,
		cache:  provider,
		logger: logger,
	}
}

// loadTree builds a tree from every record in store
func (s *CategoryService) loadTree(ctx context.Context, store repository.Store) (*hierarchy.Tree, error) {
	start := time.Now()
	records, err := store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	tree := hierarchy.Build(records)
	metrics.ObserveTreeBuild(start)
	return tree, nil
}

// mutate runs fn inside a store transaction while holding the writer lock,
// then records the outcome and evicts every cached view on success.
func (s *CategoryService) mutate(ctx context.Context, op string, attrs []any, fn func(store repository.Store, tree *hierarchy.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.WithinTx(ctx, func(store repository.Store) error {
		tree, err := s.loadTree(ctx, store)
		if err != nil {
			return err
		}
		return fn(store, tree)
	})

	logAttrs := append([]any{"operation", op}, attrs...)
	if err != nil {
		if herr, ok := hierarchy.AsError(err); ok {
			metrics.ObserveMutation(op, metrics.ResultRejected)
			s.logger.Warn("category mutation rejected", append(logAttrs, "code", herr.Code, "details", herr.Details)...)
			return err
		}
		metrics.ObserveMutation(op, metrics.ResultError)
		s.logger.Error("category mutation failed", append(logAttrs, "error", err)...)
		return err
	}

	metrics.ObserveMutation(op, metrics.ResultSuccess)
	if cacheErr := s.cache.InvalidateCache(ctx); cacheErr != nil {
		s.logger.Error("failed to invalidate category cache", "operation", op, "error", cacheErr)
	}
	return nil
}

// save persists c, mapping a store-level name collision to DuplicateName
func save(ctx context.Context, store repository.Store, c *models.Category) error {
	if err := store.Save(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return hierarchy.DuplicateNameError(c.Name, c.ParentID)
		}
		return fmt.Errorf("failed to save category %d: %w", c.ID, err)
	}
	return nil
}

// Create inserts a new active category under req.ParentID, or as a root
func (s *CategoryService) Create(ctx context.Context, req *models.CreateCategoryRequest) (*models.CategoryResponse, error) {
	var created *models.Category
	attrs := []any{"name", req.Name, "parent_id", req.ParentID}

	err := s.mutate(ctx, OpCreate, attrs, func(store repository.Store, tree *hierarchy.Tree) error {
		rec := models.NewCategory(req.Name, req.ParentID, req.SortOrder)
		depth, err := tree.ValidateNew(rec)
		if err != nil {
			return err
		}

		exists, err := store.ExistsByParentAndName(ctx, rec.ParentID, rec.Name)
		if err != nil {
			return fmt.Errorf("failed to check category name: %w", err)
		}
		if exists {
			return hierarchy.DuplicateNameError(rec.Name, rec.ParentID)
		}

		rec.Depth = depth
		if err := save(ctx, store, rec); err != nil {
			return err
		}
		if err := tree.AddCategory(rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", created.ID, "parent_id", created.ParentID, "name", created.Name, "depth", created.Depth)
	return models.NewCategoryResponse(created), nil
}

// Update renames, reorders or reparents category id. Reparenting recomputes
// and persists the depth of every descendant.
func (s *CategoryService) Update(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.CategoryResponse, error) {
	var updated *models.Category
	attrs := []any{"category_id", id, "name", req.Name, "parent_id", req.ParentID}

	err := s.mutate(ctx, OpUpdate, attrs, func(store repository.Store, tree *hierarchy.Tree) error {
		existing, ok := tree.FindByID(id)
		if !ok {
			return hierarchy.NotFoundError(id)
		}

		modified, err := tree.UpdateCategory(id, &models.Category{
			Name:      req.Name,
			ParentID:  req.ParentID,
			SortOrder: req.SortOrder,
			IsActive:  existing.IsActive,
		})
		if err != nil {
			return err
		}

		for _, c := range modified {
			if err := save(ctx, store, c); err != nil {
				return err
			}
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category updated", "category_id", id, "parent_id", updated.ParentID, "name", updated.Name, "depth", updated.Depth)
	return models.NewCategoryResponse(updated), nil
}

// Delete removes category id together with all of its descendants
func (s *CategoryService) Delete(ctx context.Context, id int64) (*models.DeleteResponse, error) {
	var removedCount int

	err := s.mutate(ctx, OpDelete, []any{"category_id", id}, func(store repository.Store, tree *hierarchy.Tree) error {
		removed, err := tree.DeleteCategory(id)
		if err != nil {
			return err
		}
		// leaves first, so no row ever references a deleted parent
		for i := len(removed) - 1; i >= 0; i-- {
			if err := store.DeleteByID(ctx, removed[i].ID); err != nil {
				return fmt.Errorf("failed to delete category %d: %w", removed[i].ID, err)
			}
		}
		removedCount = len(removed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category deleted", "category_id", id, "deleted_children", removedCount-1)
	return &models.DeleteResponse{
		DeletedCategoryID:    id,
		DeletedChildrenCount: removedCount - 1,
	}, nil
}

// Remove deletes category id alone and re-attaches its children to its parent
func (s *CategoryService) Remove(ctx context.Context, id int64) (*models.RemoveResponse, error) {
	var promoted int

	err := s.mutate(ctx, OpRemove, []any{"category_id", id}, func(store repository.Store, tree *hierarchy.Tree) error {
		rec, ok := tree.FindByID(id)
		if !ok {
			return hierarchy.NotFoundError(id)
		}
		retired := rec.Clone()
		node, _ := tree.FindNode(id)
		promoted = len(node.Children())

		modified, err := tree.RemoveCategory(id)
		if err != nil {
			return err
		}

		// deactivate first so a promoted child may take over its name
		if retired.IsActive {
			retired.IsActive = false
			if err := save(ctx, store, retired); err != nil {
				return err
			}
		}
		for _, c := range modified {
			if err := save(ctx, store, c); err != nil {
				return err
			}
		}
		if err := store.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete category %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category removed", "category_id", id, "promoted_children", promoted)
	return &models.RemoveResponse{
		RemovedCategoryID:     id,
		PromotedChildrenCount: promoted,
	}, nil
}

// GetByID returns category id with its nested, sorted children
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.CategoryResponse, error) {
	if cached, ok := s.cache.GetCategory(ctx, id); ok {
		metrics.ObserveCache("category", true)
		return cached, nil
	}
	metrics.ObserveCache("category", false)

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	node, ok := tree.FindNode(id)
	if !ok {
		return nil, hierarchy.NotFoundError(id)
	}

	resp := BuildResponse(node)
	s.cache.SetCategory(ctx, id, resp)
	return resp, nil
}

// GetAll returns the forest of roots with nested, sorted children
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.CategoryResponse, error) {
	if cached, ok := s.cache.GetTree(ctx); ok {
		metrics.ObserveCache("tree", true)
		return cached, nil
	}
	metrics.ObserveCache("tree", false)

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	roots := tree.Roots()
	forest := make([]*models.CategoryResponse, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, BuildResponse(root))
	}
	s.cache.SetTree(ctx, forest)
	return forest, nil
}

// GetPath returns the breadcrumb of category id, e.g. "Clothing > Tops"
func (s *CategoryService) GetPath(ctx context.Context, id int64) (*models.PathResponse, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.FindByID(id); !ok {
		return nil, hierarchy.NotFoundError(id)
	}
	return &models.PathResponse{ID: id, Path: tree.GetCategoryPath(id)}, nil
}

// GetAncestors returns the ancestors of id, root first, without children
func (s *CategoryService) GetAncestors(ctx context.Context, id int64) ([]*models.CategoryResponse, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.FindByID(id); !ok {
		return nil, hierarchy.NotFoundError(id)
	}
	return flatResponses(tree.GetAncestors(id)), nil
}

// GetDescendants returns everything below id in pre-order, without children
func (s *CategoryService) GetDescendants(ctx context.Context, id int64) ([]*models.CategoryResponse, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.FindByID(id); !ok {
		return nil, hierarchy.NotFoundError(id)
	}
	return flatResponses(tree.GetDescendants(id)), nil
}

// GetStatistics summarises the stored tree
func (s *CategoryService) GetStatistics(ctx context.Context) (*hierarchy.Statistics, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	stats := tree.GetStatistics()
	return &stats, nil
}

// Audit lists structural violations in the stored records
func (s *CategoryService) Audit(ctx context.Context) ([]string, error) {
	tree, err := s.loadTree(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	violations := tree.ValidateTreeStructure()
	if len(violations) > 0 {
		s.logger.Warn("category tree audit found violations", "count", len(violations))
	}
	return violations, nil
}

// BuildResponse converts the subtree under node into nested responses,
// preserving the tree's sibling order
func BuildResponse(node *hierarchy.Node) *models.CategoryResponse {
	type frame struct {
		node *hierarchy.Node
		resp *models.CategoryResponse
	}

	root := models.NewCategoryResponse(node.Category)
	stack := []frame{{node, root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range f.node.Children() {
			resp := models.NewCategoryResponse(child.Category)
			f.resp.AddChild(resp)
			stack = append(stack, frame{child, resp})
		}
	}
	return root
}

func flatResponses(categories []*models.Category) []*models.CategoryResponse {
	result := make([]*models.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, models.NewCategoryResponse(c))
	}
	return result
}
