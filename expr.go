package makeup

import (
	"fmt"
	"slices"
	"strconv"
)

// Expr represents an immutable expression tree over AND, OR & NOT.
type Expr[T Mask] interface {
	String() string
	expr(T)
}

func (*BinaryExpr[T]) expr(T) {}
func (*ExistExpr[T]) expr(T)  {}
func (*MagicExpr[T]) expr(T)  {}
func (*NotExpr[T]) expr(T)    {}

// BinaryOp represents a binary expression operation.
type BinaryOp int

// BinaryExpr operations.
const (
	AND = BinaryOp(iota + 1)
	OR
)

var binaryOps = [...]string{
	AND: "and",
	OR:  "or",
}

var binaryOpSymbols = [...]string{
	AND: "&",
	OR:  "|",
}

// String returns the string representation of the operation.
func (op BinaryOp) String() string {
	if op.IsValid() {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", op)
}

// Symbol returns the infix operator used when displaying the operation.
func (op BinaryOp) Symbol() string {
	if op.IsValid() {
		return binaryOpSymbols[op]
	}
	return "?"
}

// IsValid returns true if op is AND or OR.
func (op BinaryOp) IsValid() bool {
	return op == AND || op == OR
}

// apply returns the result of the operation on two concrete masks.
func apply[T Mask](op BinaryOp, lhs, rhs T) T {
	switch op {
	case AND:
		return lhs & rhs
	case OR:
		return lhs | rhs
	default:
		panic("unreachable")
	}
}

// BinaryExpr represents the bitwise AND or OR of two expressions.
type BinaryExpr[T Mask] struct {
	Op  BinaryOp
	LHS Expr[T]
	RHS Expr[T]
}

// NewBinaryExpr returns a new instance of BinaryExpr.
func NewBinaryExpr[T Mask](op BinaryOp, lhs, rhs Expr[T]) Expr[T] {
	assert(op.IsValid(), "invalid binary op: %s", op)
	return &BinaryExpr[T]{Op: op, LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *BinaryExpr[T]) String() string {
	return fmt.Sprintf("(%s %s %s)", e.LHS, e.Op.Symbol(), e.RHS)
}

// NotExpr represents the bitwise NOT of an expression.
type NotExpr[T Mask] struct {
	Expr Expr[T]
}

// NewNotExpr returns a new instance of NotExpr.
func NewNotExpr[T Mask](expr Expr[T]) Expr[T] {
	return &NotExpr[T]{Expr: expr}
}

// String returns the string representation of the expression.
func (e *NotExpr[T]) String() string {
	return "!" + e.Expr.String()
}

// ExistExpr represents a factor that is used as-is.
type ExistExpr[T Mask] struct {
	Value T
}

// NewExistExpr returns a new instance of ExistExpr.
func NewExistExpr[T Mask](value T) Expr[T] {
	return &ExistExpr[T]{Value: value}
}

// String returns the string representation of the expression.
func (e *ExistExpr[T]) String() string {
	return strconv.FormatUint(uint64(e.Value), 10)
}

// MagicExpr represents a mask that could not be built.
type MagicExpr[T Mask] struct{}

// NewMagicExpr returns a new instance of MagicExpr.
func NewMagicExpr[T Mask]() Expr[T] {
	return &MagicExpr[T]{}
}

// String returns the string representation of the expression.
func (e *MagicExpr[T]) String() string {
	return "ERROR"
}

// DisplayExpr returns expr as fully parenthesized infix text.
func DisplayExpr[T Mask](expr Expr[T]) string {
	if expr == nil {
		return ""
	}
	return expr.String()
}

// IsMagicExpr returns true if expr contains a magic leaf anywhere in its tree.
func IsMagicExpr[T Mask](expr Expr[T]) bool {
	switch expr := expr.(type) {
	case *MagicExpr[T]:
		return true
	case *NotExpr[T]:
		return IsMagicExpr(expr.Expr)
	case *BinaryExpr[T]:
		return IsMagicExpr(expr.LHS) || IsMagicExpr(expr.RHS)
	default:
		return false
	}
}

// ExprSize returns the number of nodes in the expression tree.
func ExprSize[T Mask](expr Expr[T]) int {
	switch expr := expr.(type) {
	case *NotExpr[T]:
		return 1 + ExprSize(expr.Expr)
	case *BinaryExpr[T]:
		return 1 + ExprSize(expr.LHS) + ExprSize(expr.RHS)
	default:
		return 1
	}
}

// ExprNotCount returns the number of NOT nodes in the expression tree.
func ExprNotCount[T Mask](expr Expr[T]) int {
	switch expr := expr.(type) {
	case *NotExpr[T]:
		return 1 + ExprNotCount(expr.Expr)
	case *BinaryExpr[T]:
		return ExprNotCount(expr.LHS) + ExprNotCount(expr.RHS)
	default:
		return 0
	}
}

// CompareExpr returns an integer comparing two expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareExpr[T Mask](a, b Expr[T]) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ExistExpr[T]:
		return compareExistExpr(a, b.(*ExistExpr[T]))
	case *MagicExpr[T]:
		return 0
	case *NotExpr[T]:
		return CompareExpr(a.Expr, b.(*NotExpr[T]).Expr)
	case *BinaryExpr[T]:
		return compareBinaryExpr(a, b.(*BinaryExpr[T]))
	default:
		panic("unreachable")
	}
}

func compareExistExpr[T Mask](a, b *ExistExpr[T]) int {
	if a.Value < b.Value {
		return -1
	} else if a.Value > b.Value {
		return 1
	}
	return 0
}

func compareBinaryExpr[T Mask](a, b *BinaryExpr[T]) int {
	if a.Op < b.Op {
		return -1
	} else if a.Op > b.Op {
		return 1
	}
	if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.RHS, b.RHS)
}

// exprKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func exprKind[T Mask](expr Expr[T]) int {
	switch expr.(type) {
	case *ExistExpr[T]:
		return 1
	case *MagicExpr[T]:
		return 2
	case *NotExpr[T]:
		return 3
	case *BinaryExpr[T]:
		return 4
	default:
		panic("unreachable")
	}
}

// ExprVisitor represents a visitor that can be passed to WalkExpr().
type ExprVisitor[T Mask] interface {
	// Executed for every visited node. Return a different expression to replace it.
	Visit(expr Expr[T]) (Expr[T], ExprVisitor[T])
}

// WalkExpr traverses expr depth-first, calling v.Visit for each node.
// Expressions are never modified in place; a node whose children are replaced
// is copied.
func WalkExpr[T Mask](v ExprVisitor[T], expr Expr[T]) Expr[T] {
	other, v := v.Visit(expr)
	if v == nil || other != expr {
		return other
	}

	switch expr := expr.(type) {
	case *BinaryExpr[T]:
		lhs, rhs := WalkExpr(v, expr.LHS), WalkExpr(v, expr.RHS)
		if lhs != expr.LHS || rhs != expr.RHS {
			return &BinaryExpr[T]{Op: expr.Op, LHS: lhs, RHS: rhs}
		}
	case *NotExpr[T]:
		if other := WalkExpr(v, expr.Expr); other != expr.Expr {
			return &NotExpr[T]{Expr: other}
		}
	case *ExistExpr[T], *MagicExpr[T]:
		// nop
	default:
		panic("unreachable")
	}
	return expr
}

// Leaves returns the distinct factor values used by expr, in ascending order.
func Leaves[T Mask](expr Expr[T]) []T {
	v := &leafVisitor[T]{m: make(map[T]struct{})}
	WalkExpr[T](v, expr)

	a := make([]T, 0, len(v.m))
	for value := range v.m {
		a = append(a, value)
	}
	slices.Sort(a)
	return a
}

type leafVisitor[T Mask] struct {
	m map[T]struct{}
}

func (v *leafVisitor[T]) Visit(expr Expr[T]) (Expr[T], ExprVisitor[T]) {
	if expr, ok := expr.(*ExistExpr[T]); ok {
		v.m[expr.Value] = struct{}{}
	}
	return expr, v
}

// Evaluate returns the mask produced by expr using the literal leaf values.
// Returns ErrMagic if the tree contains a magic leaf.
func Evaluate[T Mask](expr Expr[T]) (T, error) {
	return (&ExprEvaluator[T]{}).Evaluate(expr)
}

// ExprEvaluator evaluates expressions, optionally substituting leaf values.
type ExprEvaluator[T Mask] struct {
	m map[T]T // mapping of leaf value to substituted value
}

// NewExprEvaluator returns a new instance of ExprEvaluator that replaces each
// leaf in leaves by the value at the same index in values.
func NewExprEvaluator[T Mask](leaves, values []T) *ExprEvaluator[T] {
	assert(len(leaves) == len(values), "leaf/value count mismatch: %d != %d", len(leaves), len(values))

	m := make(map[T]T, len(leaves))
	for i, leaf := range leaves {
		_, ok := m[leaf]
		assert(!ok, "duplicate leaf: %d", leaf)
		m[leaf] = values[i]
	}
	return &ExprEvaluator[T]{m: m}
}

// Evaluate evaluates expr to a concrete mask.
// Returns an error if a magic or unbound leaf is encountered.
func (ee *ExprEvaluator[T]) Evaluate(expr Expr[T]) (T, error) {
	switch expr := expr.(type) {
	case *BinaryExpr[T]:
		lhs, err := ee.Evaluate(expr.LHS)
		if err != nil {
			return 0, err
		}
		rhs, err := ee.Evaluate(expr.RHS)
		if err != nil {
			return 0, err
		}
		return apply(expr.Op, lhs, rhs), nil
	case *NotExpr[T]:
		v, err := ee.Evaluate(expr.Expr)
		if err != nil {
			return 0, err
		}
		return ^v, nil
	case *ExistExpr[T]:
		if ee.m == nil {
			return expr.Value, nil
		}
		v, ok := ee.m[expr.Value]
		if !ok {
			return 0, fmt.Errorf("leaf not bound: %d", expr.Value)
		}
		return v, nil
	case *MagicExpr[T]:
		return 0, ErrMagic
	default:
		return 0, fmt.Errorf("invalid expression type: %T", expr)
	}
}
