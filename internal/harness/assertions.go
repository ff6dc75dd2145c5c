package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ordinal/internal/engine"
	"github.com/roach88/ordinal/internal/order"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Op)
			if event.Error != "" {
				fmt.Fprintf(&buf, " -> %s", event.Error)
			} else if event.Order != nil {
				fmt.Fprintf(&buf, " -> %v", event.Order)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(ctx context.Context, eng *engine.Engine, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(ctx, eng, result.Trace, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluate(ctx context.Context, eng *engine.Engine, trace []TraceEvent, a Assertion) error {
	switch a.Type {
	case AssertFinalOrder:
		return assertFinalOrder(ctx, eng, trace, a)
	case AssertPosition:
		return assertPosition(ctx, eng, trace, a)
	case AssertNeighbors:
		return assertNeighbors(ctx, eng, trace, a)
	case AssertAbsent:
		return assertAbsent(ctx, eng, trace, a)
	case AssertIntegrity:
		return assertIntegrity(ctx, eng, trace)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertFinalOrder(ctx context.Context, eng *engine.Engine, trace []TraceEvent, a Assertion) error {
	got, err := eng.Order(ctx, a.Parent)
	if err != nil {
		return fmt.Errorf("order %s: %w", a.Parent, err)
	}
	want := a.Order
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, []string(got)) {
		return &AssertionError{
			Type:     AssertFinalOrder,
			Expected: fmt.Sprintf("%s order %v", a.Parent, want),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertPosition(ctx context.Context, eng *engine.Engine, trace []TraceEvent, a Assertion) error {
	got, err := eng.PositionOf(ctx, a.Child)
	if err != nil {
		return fmt.Errorf("position of %s: %w", a.Child, err)
	}
	if got != *a.Position {
		return &AssertionError{
			Type:     AssertPosition,
			Expected: fmt.Sprintf("%s at position %d", a.Child, *a.Position),
			Actual:   fmt.Sprintf("position %d", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertNeighbors(ctx context.Context, eng *engine.Engine, trace []TraceEvent, a Assertion) error {
	check := func(side string, want *string, lookup func(context.Context, string) (string, bool, error)) error {
		if want == nil {
			return nil
		}
		id, _, err := lookup(ctx, a.Child)
		if err != nil {
			return fmt.Errorf("%s of %s: %w", side, a.Child, err)
		}
		if id != *want {
			return &AssertionError{
				Type:     AssertNeighbors,
				Expected: fmt.Sprintf("%s of %s is %s", side, a.Child, describe(*want)),
				Actual:   describe(id),
				Trace:    trace,
			}
		}
		return nil
	}

	if err := check("next", a.Next, eng.Next); err != nil {
		return err
	}
	return check("previous", a.Previous, eng.Previous)
}

func describe(id string) string {
	if id == "" {
		return "none"
	}
	return id
}

func assertAbsent(ctx context.Context, eng *engine.Engine, trace []TraceEvent, a Assertion) error {
	var err error
	subject := a.Child
	if a.Parent != "" {
		subject = a.Parent
		_, err = eng.Order(ctx, a.Parent)
	} else {
		_, err = eng.PositionOf(ctx, a.Child)
	}

	if order.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: fmt.Sprintf("%s does not exist", subject),
		Actual:   "exists",
		Trace:    trace,
	}
}

func assertIntegrity(ctx context.Context, eng *engine.Engine, trace []TraceEvent) error {
	reports, err := eng.Check(ctx)
	if err != nil {
		return err
	}

	var problems []string
	for _, r := range reports {
		for _, p := range r.Problems {
			problems = append(problems, r.ParentID+": "+p)
		}
	}
	if len(problems) > 0 {
		return &AssertionError{
			Type:     AssertIntegrity,
			Expected: "no integrity problems",
			Actual:   strings.Join(problems, "; "),
			Trace:    trace,
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.TraceOp {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", a.TraceOp, a.Count),
			Actual:   fmt.Sprintf("%d times", count),
			Trace:    trace,
		}
	}
	return nil
}
