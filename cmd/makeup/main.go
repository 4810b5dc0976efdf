package main

import (
	"errors"
	"fmt"
	"os"

	makeup "github.com/E0SelmY4V/make-up-binary"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// errFailed is returned when at least one target could not be built.
// The reason has already been printed.
var errFailed = errors.New("failed")

func main() {
	if err := newRootCommand().Execute(); err == errFailed {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand returns the command tree for the makeup binary.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeup",
		Short: "Build bit masks from factors using AND, OR & NOT.",
		Long: `Makeup decides whether a target bit mask can be produced from a set of
factor masks using only bitwise AND, OR & NOT, and synthesizes an
expression that produces it.

Masks are Go integer literals such as 0b0101, 0x33 or 15.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if GetFlag(cmd, "verbose") {
				log.SetLevel(log.DebugLevel)
			}
			if GetFlag(cmd, "no-color") {
				color.NoColor = true
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.Int("width", makeup.Width8, "mask width in bits (8, 16, 32 or 64)")
	flags.StringArrayP("factor", "f", nil, "factor mask (repeatable)")
	flags.String("problem", "", "read width, factors & targets from a YAML file")
	flags.String("strategy", string(makeup.StrategyRecursive), "search strategy (recursive or worklist)")
	flags.Int("max-steps", 0, "maximum masks expanded per target (0 = default)")
	flags.BoolP("verbose", "v", false, "increase logging verbosity")
	flags.Bool("no-color", false, "disable colored output")

	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newMakeCommand())
	cmd.AddCommand(newTableCommand())
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] TARGET...",
		Short: "Report whether each target can be built from the factors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunnerFromFlags(cmd, args)
			if err != nil {
				return err
			}
			return r.check()
		},
	}
}

func newMakeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "make [flags] TARGET...",
		Short: "Synthesize an expression for each target.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunnerFromFlags(cmd, args)
			if err != nil {
				return err
			}
			return r.make()
		},
	}
}

func newTableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "table [flags] TARGET...",
		Short: "Resolve every target and print all resolved masks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunnerFromFlags(cmd, args)
			if err != nil {
				return err
			}
			return r.table()
		},
	}
}

// newRunnerFromFlags builds a problem from the problem file or the flags.
// Flags given alongside a problem file override its fields. Positional
// arguments are appended to the problem's targets.
func newRunnerFromFlags(cmd *cobra.Command, args []string) (runner, error) {
	p := &makeup.Problem{
		Width:    GetInt(cmd, "width"),
		Factors:  GetStringArray(cmd, "factor"),
		MaxSteps: GetInt(cmd, "max-steps"),
		Strategy: makeup.Strategy(GetString(cmd, "strategy")),
	}
	if path := GetString(cmd, "problem"); path != "" {
		file, err := makeup.ReadProblemFile(path)
		if err != nil {
			return nil, err
		}

		flags := cmd.Flags()
		if flags.Changed("width") {
			file.Width = p.Width
		}
		if flags.Changed("factor") {
			file.Factors = p.Factors
		}
		if flags.Changed("max-steps") {
			file.MaxSteps = p.MaxSteps
		}
		if flags.Changed("strategy") {
			file.Strategy = p.Strategy
		}
		p = file
	}
	p.Targets = append(p.Targets, args...)

	if err := p.Validate(); err != nil {
		return nil, err
	} else if len(p.Targets) == 0 {
		return nil, errors.New("at least one target required")
	}
	return newRunner(p, cmd.OutOrStdout())
}
