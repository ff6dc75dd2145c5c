package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ordinal/internal/order"
)

// Parent is a parent row as read outside a transaction.
type Parent struct {
	ID string `json:"id"`

	// Cache is the denormalized order, or nil when the column is NULL.
	Cache order.Sequence `json:"order_cache,omitempty"`

	Revision int64 `json:"revision"`
}

// Child is a child row as read outside a transaction.
type Child struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Position int    `json:"position"`
}

// ReadParent retrieves a parent by ID.
// Returns order.ParentNotFound if it does not exist.
func (s *Store) ReadParent(ctx context.Context, parentID string) (Parent, error) {
	var p Parent
	var cache sql.NullString
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT id, order_cache, revision FROM parents WHERE id = ?`),
		parentID,
	).Scan(&p.ID, &cache, &p.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return Parent{}, order.ParentNotFound(parentID)
	}
	if err != nil {
		return Parent{}, fmt.Errorf("read parent: %w", err)
	}

	if cache.Valid {
		p.Cache, err = unmarshalCache(cache.String)
		if err != nil {
			return Parent{}, fmt.Errorf("read parent: %w", err)
		}
	}
	return p, nil
}

// ReadChildren returns a parent's child rows ordered by position.
// Returns an empty slice (not nil) when the parent has no children; it does
// not check that the parent exists.
func (s *Store) ReadChildren(ctx context.Context, parentID string) ([]order.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`
			SELECT id, position FROM children
			WHERE parent_id = ?
			ORDER BY position ASC, id ASC`),
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	result := []order.Row{}
	for rows.Next() {
		var r order.Row
		if err := rows.Scan(&r.ChildID, &r.Position); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return result, nil
}

// ReadChild retrieves a child by ID.
// Returns order.ChildNotFound if it does not exist.
func (s *Store) ReadChild(ctx context.Context, childID string) (Child, error) {
	var c Child
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT id, parent_id, position FROM children WHERE id = ?`),
		childID,
	).Scan(&c.ID, &c.ParentID, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return Child{}, order.ChildNotFound("", childID)
	}
	if err != nil {
		return Child{}, fmt.Errorf("read child: %w", err)
	}
	return c, nil
}

// ReadNeighbor returns the sibling whose position is childID's position
// plus delta, in a single statement. found is false when childID does not
// exist; ok is false when no sibling sits at that offset.
func (s *Store) ReadNeighbor(ctx context.Context, childID string, delta int) (id string, found, ok bool, err error) {
	var neighbor sql.NullString
	err = s.db.QueryRowContext(ctx,
		s.dialect.rebind(`
			SELECT n.id
			FROM children c
			LEFT JOIN children n
				ON n.parent_id = c.parent_id AND n.position = c.position + ?
			WHERE c.id = ?`),
		delta, childID,
	).Scan(&neighbor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, fmt.Errorf("read neighbor: %w", err)
	}
	if !neighbor.Valid {
		return "", true, false, nil
	}
	return neighbor.String, true, true, nil
}

// ListParents returns all parent IDs in ascending order.
func (s *Store) ListParents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM parents ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query parents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan parent: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parents: %w", err)
	}
	return ids, nil
}
