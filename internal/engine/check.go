package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
)

// Report is the result of checking one parent's order.
type Report struct {
	ParentID string   `json:"parent_id"`
	Children int      `json:"children"`
	Problems []string `json:"problems,omitempty"`
}

// OK reports whether no problem was found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Check verifies the stored order of each parent: positions must be a
// permutation of [0, count-1] and the cache, when present, must equal the
// children sorted by position. Nothing is repaired.
//
// Each parent is read under its exclusive scope in its own transaction,
// which is always rolled back. With no ids, every parent is checked.
func (e *Engine) Check(ctx context.Context, parentIDs ...string) ([]Report, error) {
	if len(parentIDs) == 0 {
		ids, err := e.store.ListParents(ctx)
		if err != nil {
			return nil, fmt.Errorf("check: %w", err)
		}
		parentIDs = ids
	}

	reports := make([]Report, 0, len(parentIDs))
	for _, id := range parentIDs {
		r, err := e.CheckParent(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// CheckParent checks a single parent. See Check.
func (e *Engine) CheckParent(ctx context.Context, parentID string) (Report, error) {
	var report Report
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		rows, err := tx.LockScope(ctx, parentID)
		if err != nil {
			return err
		}
		cache, cached, err := tx.ReadOrderCache(ctx, parentID)
		if err != nil {
			return err
		}
		report = inspect(parentID, rows, cache, cached)
		return errReadOnly
	})
	if err != nil && !errors.Is(err, errReadOnly) {
		return Report{}, err
	}

	if !report.OK() {
		e.logger.Warn("order check failed",
			"parent_id", parentID,
			"problems", len(report.Problems))
	}
	return report, nil
}

// errReadOnly forces the check transaction to roll back.
var errReadOnly = errors.New("read-only transaction")

// inspect lists every problem in a parent's stored rows and cache.
func inspect(parentID string, rows []order.Row, cache order.Sequence, cached bool) Report {
	report := Report{ParentID: parentID, Children: len(rows)}
	addf := func(format string, args ...any) {
		report.Problems = append(report.Problems, fmt.Sprintf(format, args...))
	}

	holders := make(map[int][]string)
	for _, r := range rows {
		holders[r.Position] = append(holders[r.Position], r.ChildID)
		if r.Position < 0 || r.Position >= len(rows) {
			addf("child %q has position %d outside [0, %d]", r.ChildID, r.Position, len(rows)-1)
		}
	}
	positions := make([]int, 0, len(holders))
	for pos := range holders {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	for _, pos := range positions {
		if ids := holders[pos]; len(ids) > 1 {
			addf("position %d held by %d children %q", pos, len(ids), ids)
		}
	}
	for pos := 0; pos < len(rows); pos++ {
		if _, ok := holders[pos]; !ok {
			addf("gap at position %d", pos)
		}
	}

	if cached {
		if want := order.FromRows(rows); !cache.Equal(want) {
			addf("order cache %q does not match positions %q", cache, want)
		}
	}
	return report
}
