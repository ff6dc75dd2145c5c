package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ordinal/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Driver     string
	DB         string

	// IDGenerator overrides id generation for parents and children created
	// without an explicit id. If nil, UUIDv7Generator is used.
	IDGenerator engine.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ordinal CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ordinal",
		Short: "Scoped ordering engine",
		Long: `ordinal keeps a gap-free order of child records under each parent.

Every mutation takes an exclusive lock over the parent's children, rewrites
positions and the parent's cached order in one transaction, and fails with
CONFLICT instead of waiting forever when the lock is held elsewhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "store driver (sqlite3|postgres), overrides config")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database path or DSN, overrides config")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewParentCommand(opts))
	cmd.AddCommand(NewChildCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewSetOrderCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewPrevCommand(opts))
	cmd.AddCommand(NewPositionCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are written to stdout in the selected format.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return exitErr.Code
	}

	format := opts.Format
	if !slices.Contains(ValidFormats, format) {
		format = "text"
	}
	out := &OutputFormatter{Format: format, Writer: stdout}
	if werr := out.Error(err); werr != nil {
		fmt.Fprintln(stderr, err)
	}

	if exitErr == nil {
		// cobra argument and flag errors.
		return ExitCommandError
	}
	return exitErr.Code
}
