package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ammiranda/category_service/models"
)

const categoryColumns = "id, name, parent_id, depth, sort_order, is_active, created_at, updated_at"

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlStore implements Store over database/sql. Queries are written with "?"
// placeholders and rebound for drivers that number their parameters.
type sqlStore struct {
	q           queryer
	numbered    bool
	returningID bool
	isUnique    func(error) bool
}

func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Get(ctx context.Context, id int64) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, s.rebind("SELECT "+categoryColumns+" FROM categories WHERE id = ?"), id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	return c, nil
}

func (s *sqlStore) Save(ctx context.Context, c *models.Category) error {
	if c == nil || c.Name == "" {
		return ErrInvalidInput
	}
	now := time.Now().UTC()
	if c.ID == 0 {
		return s.insert(ctx, c, now)
	}

	result, err := s.q.ExecContext(ctx, s.rebind(
		"UPDATE categories SET name = ?, parent_id = ?, depth = ?, sort_order = ?, is_active = ?, updated_at = ? WHERE id = ?"),
		c.Name, c.ParentID, c.Depth, c.SortOrder, c.IsActive, now, c.ID,
	)
	if err != nil {
		return s.writeError("error updating category", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	c.UpdatedAt = now
	return nil
}

func (s *sqlStore) insert(ctx context.Context, c *models.Category, now time.Time) error {
	query := "INSERT INTO categories (name, parent_id, depth, sort_order, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	args := []any{c.Name, c.ParentID, c.Depth, c.SortOrder, c.IsActive, now, now}

	var id int64
	if s.returningID {
		if err := s.q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return s.writeError("error creating category", err)
		}
	} else {
		result, err := s.q.ExecContext(ctx, s.rebind(query), args...)
		if err != nil {
			return s.writeError("error creating category", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("error reading inserted id: %w", err)
		}
	}

	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (s *sqlStore) writeError(msg string, err error) error {
	if s.isUnique != nil && s.isUnique(err) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicateName)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *sqlStore) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, s.rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *sqlStore) FindByParent(ctx context.Context, parentID *int64) ([]*models.Category, error) {
	if parentID == nil {
		return s.list(ctx, "SELECT "+categoryColumns+" FROM categories WHERE parent_id IS NULL ORDER BY sort_order, id")
	}
	return s.list(ctx, "SELECT "+categoryColumns+" FROM categories WHERE parent_id = ? ORDER BY sort_order, id", *parentID)
}

func (s *sqlStore) FindAll(ctx context.Context) ([]*models.Category, error) {
	return s.list(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY depth, sort_order, id")
}

func (s *sqlStore) ExistsByParentAndName(ctx context.Context, parentID *int64, name string) (bool, error) {
	var exists bool
	var err error
	if parentID == nil {
		err = s.q.QueryRowContext(ctx, s.rebind(
			"SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id IS NULL AND name = ? AND is_active)"),
			name,
		).Scan(&exists)
	} else {
		err = s.q.QueryRowContext(ctx, s.rebind(
			"SELECT EXISTS(SELECT 1 FROM categories WHERE parent_id = ? AND name = ? AND is_active)"),
			*parentID, name,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("error checking category name: %w", err)
	}
	return exists, nil
}

func (s *sqlStore) list(ctx context.Context, query string, args ...any) ([]*models.Category, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	var parentID sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &parentID, &c.Depth, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return &c, nil
}

// withinTx runs fn in a database transaction and commits when it succeeds
func withinTx(ctx context.Context, db *sql.DB, base sqlStore, fn func(Store) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	scoped := base
	scoped.q = tx
	if err := fn(&scoped); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}
