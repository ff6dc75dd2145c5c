package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/ordinal/internal/engine"
)

// OrderResult is a parent's order.
type OrderResult struct {
	ParentID string   `json:"parent_id"`
	Order    []string `json:"order"`
}

// String prints one "index id" line per child.
func (r OrderResult) String() string {
	if len(r.Order) == 0 {
		return fmt.Sprintf("%s: (empty)", r.ParentID)
	}
	var b strings.Builder
	for i, id := range r.Order {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s", i, id)
	}
	return b.String()
}

// IDResult reports a created or removed id.
type IDResult struct {
	Action   string `json:"action"`
	ParentID string `json:"parent_id,omitempty"`
	ChildID  string `json:"child_id,omitempty"`
}

func (r IDResult) String() string {
	if r.ChildID != "" {
		return fmt.Sprintf("%s child %s", r.Action, r.ChildID)
	}
	return fmt.Sprintf("%s parent %s", r.Action, r.ParentID)
}

// NeighborResult is the answer to next or prev.
type NeighborResult struct {
	ChildID  string `json:"child_id"`
	Neighbor string `json:"neighbor,omitempty"`
	Found    bool   `json:"found"`
}

func (r NeighborResult) String() string {
	if !r.Found {
		return "(none)"
	}
	return r.Neighbor
}

// PositionResult is a child's position.
type PositionResult struct {
	ChildID  string `json:"child_id"`
	Position int    `json:"position"`
}

func (r PositionResult) String() string {
	return fmt.Sprintf("%d", r.Position)
}

// CheckResult aggregates integrity reports.
type CheckResult struct {
	Reports []engine.Report `json:"reports"`
	Failed  int             `json:"failed"`
	Total   int             `json:"total"`
}

func (r CheckResult) String() string {
	var b strings.Builder
	for _, rep := range r.Reports {
		if rep.OK() {
			fmt.Fprintf(&b, "✓ %s (%d children)\n", rep.ParentID, rep.Children)
			continue
		}
		fmt.Fprintf(&b, "✗ %s (%d children)\n", rep.ParentID, rep.Children)
		for _, p := range rep.Problems {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	fmt.Fprintf(&b, "Check Summary: %d ok, %d failed, %d total", r.Total-r.Failed, r.Failed, r.Total)
	return b.String()
}
