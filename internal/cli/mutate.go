package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/ordinal/internal/order"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schema in the configured database",
		Long: `Create the parents and children tables if they do not exist.

Every other command also applies the schema on open; init only makes it
explicit. Running it twice is harmless.

Example:
  ordinal init --db ./ordinal.db
  ordinal init --driver postgres --db postgres://localhost/ordinal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			e.logger.Info("schema ready", "driver", e.cfg.Driver)
			return e.out.Success(IDResult{Action: "initialized", ParentID: e.cfg.DSN})
		},
	}
}

// NewParentCommand creates the parent command group.
func NewParentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Create or delete parents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [parent-id]",
		Short: "Create an empty parent",
		Long: `Create an empty parent. Without an id, a UUIDv7 is generated.

Example:
  ordinal parent add section-1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			id := firstOr(args, e.ids.Generate)
			err = e.mutate(cmd.Context(), "create parent", func(ctx context.Context) error {
				return e.engine.CreateParent(ctx, id)
			})
			if err != nil {
				return err
			}
			return e.out.Success(IDResult{Action: "created", ParentID: id})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <parent-id>",
		Short: "Delete a parent and all of its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			err = e.mutate(cmd.Context(), "delete parent", func(ctx context.Context) error {
				return e.engine.DeleteParent(ctx, args[0])
			})
			if err != nil {
				return err
			}
			return e.out.Success(IDResult{Action: "deleted", ParentID: args[0]})
		},
	})

	return cmd
}

// NewChildCommand creates the child command group.
func NewChildCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "child",
		Short: "Create or delete children",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <parent-id> [child-id]",
		Short: "Append a new child to a parent",
		Long: `Append a new child at the end of a parent's order. Without an id, a
UUIDv7 is generated. Prints the parent's new order.

Example:
  ordinal child add section-1 task-9`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			parentID := args[0]
			childID := firstOr(args[1:], e.ids.Generate)
			var seq order.Sequence
			err = e.mutate(cmd.Context(), "append child", func(ctx context.Context) error {
				var err error
				seq, err = e.engine.Append(ctx, childID, parentID)
				return err
			})
			if err != nil {
				return err
			}
			return e.out.Success(OrderResult{ParentID: parentID, Order: seq})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <child-id>",
		Short: "Delete a child and compact its siblings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := e.store.ReadChild(cmd.Context(), args[0])
			if err != nil {
				return fail("remove child", err)
			}
			var seq order.Sequence
			err = e.mutate(cmd.Context(), "remove child", func(ctx context.Context) error {
				var err error
				seq, err = e.engine.Remove(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return e.out.Success(OrderResult{ParentID: c.ParentID, Order: seq})
		},
	})

	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <child-id> <target>",
		Short: "Move a child to a zero-based position",
		Long: `Move a child to a zero-based position within its parent.

Targets outside the range clamp: negative values move the child to the head,
values past the end move it to the tail. Prints the parent's new order.

Example:
  ordinal move task-3 0
  ordinal move task-3 -- -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid target %q: must be an integer", args[1]))
			}

			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := e.store.ReadChild(cmd.Context(), args[0])
			if err != nil {
				return fail("move", err)
			}
			var seq order.Sequence
			err = e.mutate(cmd.Context(), "move", func(ctx context.Context) error {
				var err error
				seq, err = e.engine.MoveTo(ctx, args[0], target)
				return err
			})
			if err != nil {
				return err
			}
			return e.out.Success(OrderResult{ParentID: c.ParentID, Order: seq})
		},
	}
}

// NewSetOrderCommand creates the set-order command.
func NewSetOrderCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-order <parent-id> <child-id>...",
		Short: "Replace a parent's whole order",
		Long: `Replace a parent's whole order. The ids must name every current child
exactly once; anything else fails with INVARIANT_VIOLATION.

Example:
  ordinal set-order section-1 task-3 task-1 task-2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			parentID := args[0]
			seq := order.Sequence(args[1:]).Clone()
			err = e.mutate(cmd.Context(), "set order", func(ctx context.Context) error {
				return e.engine.SetOrder(ctx, parentID, seq)
			})
			if err != nil {
				return err
			}
			return e.out.Success(OrderResult{ParentID: parentID, Order: seq})
		},
	}
}

// firstOr returns args[0], or gen() when args is empty.
func firstOr(args []string, gen func() string) string {
	if len(args) > 0 {
		return args[0]
	}
	return gen()
}
