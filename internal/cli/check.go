package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/ordinal/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Parallel int
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [parent-id]...",
		Short: "Verify stored orders without repairing them",
		Long: `Verify that every parent's positions form a gap-free permutation and
that its cached order matches. Nothing is repaired.

Without ids, every parent is checked.

Exit codes:
  0 - All parents passed
  1 - One or more parents have problems
  2 - Command error

Examples:
  ordinal check
  ordinal check section-1 section-2 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "parents checked concurrently")

	return cmd
}

func runCheck(opts *CheckOptions, parentIDs []string, cmd *cobra.Command) error {
	if opts.Parallel < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --parallel %d: must be at least 1", opts.Parallel))
	}

	e, err := openEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if len(parentIDs) == 0 {
		if parentIDs, err = e.store.ListParents(ctx); err != nil {
			return fail("check", err)
		}
	}

	reports, err := checkAll(ctx, e.engine, parentIDs, opts.Parallel)
	if err != nil {
		return fail("check", err)
	}

	result := CheckResult{Reports: reports, Total: len(reports)}
	for _, r := range reports {
		if !r.OK() {
			result.Failed++
		}
	}
	if err := e.out.Success(result); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewReportedFailure(fmt.Sprintf("%d parent(s) failed the check", result.Failed))
	}
	return nil
}

// checkAll checks parents with at most limit checks in flight. Reports keep
// the order of parentIDs.
func checkAll(ctx context.Context, eng *engine.Engine, parentIDs []string, limit int) ([]engine.Report, error) {
	reports := make([]engine.Report, len(parentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range parentIDs {
		g.Go(func() error {
			r, err := eng.CheckParent(gctx, id)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
