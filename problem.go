package makeup

import (
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Strategy names a search implementation.
type Strategy string

// Search strategies.
const (
	StrategyRecursive = Strategy("recursive")
	StrategyWorklist  = Strategy("worklist")
)

// IsValid returns true if s names a known strategy.
func (s Strategy) IsValid() bool {
	return s == StrategyRecursive || s == StrategyWorklist
}

// Problem describes a set of factors and the targets to build from them.
// Masks are written as Go integer literals, e.g. "0b0101", "0x33" or "15".
type Problem struct {
	Width    int      `yaml:"width"`
	Factors  []string `yaml:"factors"`
	Targets  []string `yaml:"targets"`
	MaxSteps int      `yaml:"max-steps"`
	Strategy Strategy `yaml:"strategy"`
}

// ParseProblem decodes and validates a YAML problem description.
// Width defaults to 8 and strategy defaults to recursive.
func ParseProblem(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.UnmarshalWithOptions(data, &p, yaml.Strict()); err != nil {
		return nil, errors.Wrap(err, "decoding problem")
	}

	if p.Width == 0 {
		p.Width = Width8
	}
	if p.Strategy == "" {
		p.Strategy = StrategyRecursive
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReadProblemFile reads and parses a problem from a YAML file.
func ReadProblemFile(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading problem file")
	}

	p, err := ParseProblem(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return p, nil
}

// Validate returns an error if the problem cannot be run.
func (p *Problem) Validate() error {
	switch p.Width {
	case Width8, Width16, Width32, Width64:
	default:
		return errors.Errorf("invalid width: %d", p.Width)
	}

	if !p.Strategy.IsValid() {
		return errors.Errorf("invalid strategy: %q", p.Strategy)
	} else if p.MaxSteps < 0 {
		return errors.Errorf("invalid max-steps: %d", p.MaxSteps)
	}

	for _, s := range p.Factors {
		if _, err := parseUint(s, p.Width); err != nil {
			return errors.Wrap(err, "factor")
		}
	}
	for _, s := range p.Targets {
		if _, err := parseUint(s, p.Width); err != nil {
			return errors.Wrap(err, "target")
		}
	}
	return nil
}

// ParseMask parses s as an integer literal that fits in T.
// Binary, octal & hex prefixes and underscores are accepted.
func ParseMask[T Mask](s string) (T, error) {
	v, err := parseUint(s, int(Width[T]()))
	if err != nil {
		return 0, err
	}
	return T(v), nil
}

// ParseMasks parses each string in a with ParseMask.
func ParseMasks[T Mask](a []string) ([]T, error) {
	masks := make([]T, 0, len(a))
	for _, s := range a {
		v, err := ParseMask[T](s)
		if err != nil {
			return nil, err
		}
		masks = append(masks, v)
	}
	return masks, nil
}

func parseUint(s string, width int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, width)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid mask %q", s)
	}
	return v, nil
}
