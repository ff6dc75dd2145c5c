package cli

import (
	"github.com/spf13/cobra"
)

// NewOrderCommand creates the order command.
func NewOrderCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order <parent-id>",
		Short: "Print a parent's children in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			seq, err := e.engine.Order(cmd.Context(), args[0])
			if err != nil {
				return fail("order", err)
			}
			return e.out.Success(OrderResult{ParentID: args[0], Order: seq})
		},
	}
}

// NewNextCommand creates the next command.
func NewNextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next <child-id>",
		Short: "Print the sibling after a child",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			id, ok, err := e.engine.Next(cmd.Context(), args[0])
			if err != nil {
				return fail("next", err)
			}
			return e.out.Success(NeighborResult{ChildID: args[0], Neighbor: id, Found: ok})
		},
	}
}

// NewPrevCommand creates the prev command.
func NewPrevCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prev <child-id>",
		Short: "Print the sibling before a child",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			id, ok, err := e.engine.Previous(cmd.Context(), args[0])
			if err != nil {
				return fail("prev", err)
			}
			return e.out.Success(NeighborResult{ChildID: args[0], Neighbor: id, Found: ok})
		},
	}
}

// NewPositionCommand creates the position command.
func NewPositionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "position <child-id>",
		Short: "Print a child's zero-based position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, cmd)
			if err != nil {
				return err
			}
			defer e.close()

			pos, err := e.engine.PositionOf(cmd.Context(), args[0])
			if err != nil {
				return fail("position", err)
			}
			return e.out.Success(PositionResult{ChildID: args[0], Position: pos})
		},
	}
}
