package makeup

import (
	"fmt"
)

// MethodKind represents the way a mask is produced.
type MethodKind int

// Method kinds.
const (
	Exist = MethodKind(iota + 1)
	Not
	And
	Or
	Magic
)

var methodKinds = [...]string{
	Exist: "exist",
	Not:   "not",
	And:   "and",
	Or:    "or",
	Magic: "magic",
}

// String returns the string representation of the kind.
func (k MethodKind) String() string {
	if k >= Exist && k <= Magic {
		return methodKinds[k]
	}
	return fmt.Sprintf("MethodKind<%d>", k)
}

// Method describes how a mask is produced from other masks.
// X is set for Not, And & Or. Y is set for And & Or.
type Method[T Mask] struct {
	Kind MethodKind
	X    T
	Y    T
}

// String returns the string representation of the method with operands in binary.
func (m Method[T]) String() string {
	switch m.Kind {
	case Not:
		return fmt.Sprintf("not(%s)", FormatMask(m.X))
	case And, Or:
		return fmt.Sprintf("%s(%s, %s)", m.Kind, FormatMask(m.X), FormatMask(m.Y))
	default:
		return m.Kind.String()
	}
}

// Step is the cheapest known way to build a mask along with its cost.
type Step[S Cost, T Mask] struct {
	Cost   S
	Method Method[T]
}

// NewExistStep returns a zero-cost step for a factor.
func NewExistStep[S Cost, T Mask]() Step[S, T] {
	return Step[S, T]{Method: Method[T]{Kind: Exist}}
}

// NewNotStep returns a step that complements x, which costs cost.
func NewNotStep[S Cost, T Mask](cost S, x T) Step[S, T] {
	return Step[S, T]{Cost: addCost(cost, 1), Method: Method[T]{Kind: Not, X: x}}
}

// NewBinaryStep returns an And or Or step combining x & y.
func NewBinaryStep[S Cost, T Mask](kind MethodKind, x, y T, xcost, ycost S) Step[S, T] {
	assert(kind == And || kind == Or, "invalid binary step kind: %s", kind)
	return Step[S, T]{Cost: addCost(xcost, ycost), Method: Method[T]{Kind: kind, X: x, Y: y}}
}

// NewMagicStep returns the placeholder step for a mask that cannot be built.
func NewMagicStep[S Cost, T Mask]() Step[S, T] {
	return Step[S, T]{Cost: maxCost[S](), Method: Method[T]{Kind: Magic}}
}

// IsMagic returns true if the step could not be built.
func (s Step[S, T]) IsMagic() bool {
	return s.Method.Kind == Magic
}

// Less returns true if s is strictly better than other.
// Any real step is better than magic, regardless of cost.
func (s Step[S, T]) Less(other Step[S, T]) bool {
	if s.IsMagic() {
		return false
	} else if other.IsMagic() {
		return true
	}
	return s.Cost < other.Cost
}

// String returns the string representation of the step.
func (s Step[S, T]) String() string {
	if s.IsMagic() {
		return s.Method.String()
	}
	return fmt.Sprintf("%d %s", s.Cost, s.Method)
}

// Produces returns the mask the method yields given the operand masks.
// Returns false for Exist and Magic, which have no operands.
func (m Method[T]) Produces() (T, bool) {
	switch m.Kind {
	case Not:
		return ^m.X, true
	case And:
		return m.X & m.Y, true
	case Or:
		return m.X | m.Y, true
	default:
		return 0, false
	}
}
