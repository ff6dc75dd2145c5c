package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/ordinal/internal/engine"
	"github.com/roach88/ordinal/internal/order"
	"github.com/roach88/ordinal/internal/store"
	"github.com/roach88/ordinal/internal/testutil"
)

// Harness executes one scenario against one engine.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Seed the setup parents and children
//  2. Execute flow steps, checking each expect clause
//  3. Evaluate assertions against the final state
//
// A returned error means the scenario could not be executed at all (setup
// failed or a step failed with an error outside the engine's error kinds);
// failed expectations are reported in Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		engine: engine.New(st, engine.WithLogger(logger)),
		clock:  testutil.NewDeterministicClock(),
		logger: logger,
	}

	ctx := context.Background()
	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, h.engine, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSetup creates every setup parent and appends its children.
func (h *Harness) executeSetup(ctx context.Context, setup []ParentSetup) error {
	for i, p := range setup {
		if err := h.engine.CreateParent(ctx, p.Parent); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		for _, child := range p.Children {
			if _, err := h.engine.Append(ctx, child, p.Parent); err != nil {
				return fmt.Errorf("setup[%d]: %w", i, err)
			}
		}
	}
	return nil
}

// executeFlow runs each step, traces its outcome and checks its expect
// clause.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		seq, err := h.apply(ctx, step)

		event := TraceEvent{
			Seq:    h.clock.Next(),
			Op:     step.Op,
			Parent: step.Parent,
			Child:  step.Child,
			Target: step.Target,
			Order:  seq,
		}
		if err != nil {
			code := order.CodeOf(err)
			if code == "" {
				return fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
			}
			event.Error = string(code)
			event.Order = nil
		}
		result.AddTrace(event)

		if msg := checkExpect(i, step, event); msg != "" {
			result.AddError(msg)
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"op", step.Op,
			"error", event.Error)
	}
	return nil
}

// apply executes one step and returns the affected parent's order
// afterwards. delete_parent returns no order.
func (h *Harness) apply(ctx context.Context, step Step) (order.Sequence, error) {
	switch step.Op {
	case OpCreateParent:
		if err := h.engine.CreateParent(ctx, step.Parent); err != nil {
			return nil, err
		}
		return order.Sequence{}, nil
	case OpDeleteParent:
		return nil, h.engine.DeleteParent(ctx, step.Parent)
	case OpAppend:
		return h.engine.Append(ctx, step.Child, step.Parent)
	case OpRemove:
		return h.engine.Remove(ctx, step.Child)
	case OpMove:
		return h.engine.MoveTo(ctx, step.Child, *step.Target)
	case OpSetOrder:
		seq := order.Sequence(step.Order)
		if seq == nil {
			seq = order.Sequence{}
		}
		if err := h.engine.SetOrder(ctx, step.Parent, seq); err != nil {
			return nil, err
		}
		return h.engine.Order(ctx, step.Parent)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// checkExpect compares a traced step against its expect clause. Without an
// expect clause the step must succeed.
func checkExpect(index int, step Step, event TraceEvent) string {
	want := step.Expect
	if want == nil || want.Error == "" {
		if event.Error != "" {
			return fmt.Sprintf("flow[%d] %s: unexpected error %s", index, step.Op, event.Error)
		}
	}
	if want == nil {
		return ""
	}

	if want.Error != "" && want.Error != event.Error {
		actual := event.Error
		if actual == "" {
			actual = "success"
		}
		return fmt.Sprintf("flow[%d] %s: expected error %s, got %s", index, step.Op, want.Error, actual)
	}
	if want.Order != nil && !slices.Equal(want.Order, event.Order) {
		return fmt.Sprintf("flow[%d] %s: expected order %v, got %v", index, step.Op, want.Order, event.Order)
	}
	return ""
}
