package main

import (
	"fmt"
	"io"

	makeup "github.com/E0SelmY4V/make-up-binary"
	"github.com/fatih/color"
)

// runner executes a subcommand against a parsed problem.
type runner interface {
	check() error
	make() error
	table() error
}

// newRunner returns a runner using the mask type matching the problem width.
func newRunner(p *makeup.Problem, w io.Writer) (runner, error) {
	switch p.Width {
	case makeup.Width8:
		return newProgram[uint8](p, w)
	case makeup.Width16:
		return newProgram[uint16](p, w)
	case makeup.Width32:
		return newProgram[uint32](p, w)
	case makeup.Width64:
		return newProgram[uint64](p, w)
	default:
		return nil, fmt.Errorf("invalid width: %d", p.Width)
	}
}

// program holds a problem decoded for a specific mask type.
type program[T makeup.Mask] struct {
	factors  []T
	targets  []T
	strategy makeup.Strategy
	maxSteps int
	w        io.Writer

	ok   func(a ...interface{}) string
	fail func(a ...interface{}) string
}

func newProgram[T makeup.Mask](p *makeup.Problem, w io.Writer) (*program[T], error) {
	factors, err := makeup.ParseMasks[T](p.Factors)
	if err != nil {
		return nil, err
	}
	targets, err := makeup.ParseMasks[T](p.Targets)
	if err != nil {
		return nil, err
	}

	return &program[T]{
		factors:  factors,
		targets:  targets,
		strategy: p.Strategy,
		maxSteps: p.MaxSteps,
		w:        w,
		ok:       color.New(color.FgGreen).SprintFunc(),
		fail:     color.New(color.FgRed).SprintFunc(),
	}, nil
}

// check prints whether each target is makable, followed by its conflicts.
func (p *program[T]) check() error {
	var failed bool
	for _, target := range p.targets {
		detail := makeup.IsMakableDetail(target, p.factors)
		if len(detail) == 0 {
			fmt.Fprintf(p.w, "%s: %s\n", makeup.FormatMask(target), p.ok("makable"))
			continue
		}

		failed = true
		fmt.Fprintf(p.w, "%s: %s\n", makeup.FormatMask(target), p.fail("not makable"))
		for _, flag := range detail.Slice() {
			fmt.Fprintf(p.w, "\t%s\n", makeup.FormatMask(flag))
		}
	}

	if failed {
		return errFailed
	}
	return nil
}

// make prints the step and expression for each target.
func (p *program[T]) make() error {
	var failed bool
	for _, target := range p.targets {
		step, expr, err := p.solve(target)
		if err != nil {
			failed = true
			fmt.Fprintf(p.w, "%s: %s\n", makeup.FormatMask(target), p.fail(describe(err)))
			continue
		}

		fmt.Fprintf(p.w, "%s: %s\n", makeup.FormatMask(target), step)
		fmt.Fprintf(p.w, "\t%s\n", p.ok(makeup.DisplayExpr(expr)))
	}

	if failed {
		return errFailed
	}
	return nil
}

// solve resolves target with the configured strategy.
func (p *program[T]) solve(target T) (makeup.Step[uint64, T], makeup.Expr[T], error) {
	if p.strategy == makeup.StrategyWorklist {
		w := makeup.NewWorklist[uint64](p.factors)
		if p.maxSteps > 0 {
			w.MaxIterations = p.maxSteps
		}
		step, err := w.Search(target)
		if err != nil {
			return step, nil, err
		}
		return step, w.GetExpr(target), nil
	}

	s := makeup.New[uint64](p.factors)
	if p.maxSteps > 0 {
		s.MaxSteps = p.maxSteps
	}
	return s.Solve(target)
}

// table resolves every target with one synthesizer and prints all resolved masks.
func (p *program[T]) table() error {
	s := makeup.New[uint64](p.factors)
	if p.maxSteps > 0 {
		s.MaxSteps = p.maxSteps
	}

	var failed bool
	for _, target := range p.targets {
		if _, _, err := s.Solve(target); err != nil {
			failed = true
			fmt.Fprintf(p.w, "%s: %s\n", makeup.FormatMask(target), p.fail(describe(err)))
		}
	}

	itr := s.Steps().Iterator()
	for !itr.Done() {
		k, v := itr.Next()
		fmt.Fprintf(p.w, "%s\t%s\n", makeup.FormatMask(k.(T)), v.(makeup.Step[uint64, T]))
	}

	if failed {
		return errFailed
	}
	return nil
}

// describe returns a short message for a search error.
func describe(err error) string {
	switch err {
	case makeup.ErrUnreachable:
		return "unreachable"
	case makeup.ErrStepLimit:
		return "step limit exceeded"
	case makeup.ErrIterationLimit:
		return "iteration limit exceeded"
	default:
		return err.Error()
	}
}
