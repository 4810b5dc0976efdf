package makeup

import (
	log "github.com/sirupsen/logrus"
)

// DefaultMaxIterations is the default iteration cap for a Worklist.
const DefaultMaxIterations = 1 << 20

var _ Searcher[uint, uint8] = (*Worklist[uint, uint8])(nil)

// Worklist builds masks from factors with a breadth-first search.
//
// Masks are expanded in the order they are discovered. Each expansion
// registers every way of producing the mask from its candidates. A way fires
// once all of its operands are known, which in turn may complete the ways
// waiting on the new mask. The result is valid but not necessarily cheapest.
type Worklist[S Cost, T Mask] struct {
	factors []T
	flags   []T

	known   map[T]Step[S, T]
	seen    map[T]struct{}
	waiting map[T][]*route[T] // routes blocked on a mask
	queue   []T

	iterations int

	// Maximum number of masks expanded by a single call to Search().
	MaxIterations int
}

// route is a pending way of producing target from x (and y).
type route[T Mask] struct {
	target  T
	kind    MethodKind
	x, y    T
	pending int // unknown operands
}

// NewWorklist returns a new instance of Worklist with each factor known at zero cost.
func NewWorklist[S Cost, T Mask](factors []T) *Worklist[S, T] {
	w := &Worklist[S, T]{
		known:         make(map[T]Step[S, T]),
		seen:          make(map[T]struct{}),
		waiting:       make(map[T][]*route[T]),
		MaxIterations: DefaultMaxIterations,
	}

	for _, f := range factors {
		if _, ok := w.known[f]; ok {
			continue
		}
		w.factors = append(w.factors, f)
		w.known[f] = NewExistStep[S, T]()
		w.seen[f] = struct{}{}
	}
	w.flags = positionFlags(w.factors)

	return w
}

// Len returns the number of known masks, including factors.
func (w *Worklist[S, T]) Len() int {
	return len(w.known)
}

// Iterations returns the number of masks expanded by the last call to Search().
func (w *Worklist[S, T]) Iterations() int {
	return w.iterations
}

// Lookup returns the known step for target, if one exists.
func (w *Worklist[S, T]) Lookup(target T) (Step[S, T], bool) {
	step, ok := w.known[target]
	return step, ok
}

// GetExpr returns the expression tree for target.
// Masks that are not known are returned as MagicExpr.
func (w *Worklist[S, T]) GetExpr(target T) Expr[T] {
	return buildExpr[S](w.known, target)
}

// Make returns the step found for target, or a magic step if the search fails.
func (w *Worklist[S, T]) Make(target T) Step[S, T] {
	step, err := w.Search(target)
	if err != nil {
		return NewMagicStep[S, T]()
	}
	return step
}

// Search expands masks outward from target until target is known.
// Returns ErrUnreachable if every reachable mask has been expanded, or
// ErrIterationLimit if MaxIterations is reached first.
//
// Progress is kept between calls, so a later search may reuse earlier work.
func (w *Worklist[S, T]) Search(target T) (Step[S, T], error) {
	w.iterations = 0
	if step, ok := w.known[target]; ok {
		return step, nil
	}

	w.enqueue(target)
	for len(w.queue) > 0 {
		if w.MaxIterations > 0 && w.iterations >= w.MaxIterations {
			return NewMagicStep[S, T](), ErrIterationLimit
		}

		m := w.queue[0]
		w.queue = w.queue[1:]
		w.iterations++
		w.expand(m)

		if step, ok := w.known[target]; ok {
			return step, nil
		}
	}
	return NewMagicStep[S, T](), ErrUnreachable
}

// enqueue schedules m for expansion if it has not been seen before.
func (w *Worklist[S, T]) enqueue(m T) {
	if _, ok := w.seen[m]; ok {
		return
	}
	w.seen[m] = struct{}{}

	if !feasible(w.flags, m) {
		return
	}
	w.queue = append(w.queue, m)
}

// expand registers every route that produces m.
func (w *Worklist[S, T]) expand(m T) {
	if _, ok := w.known[m]; ok {
		return
	}

	w.addRoute(&route[T]{target: m, kind: Not, x: ^m})

	for _, kind := range []MethodKind{And, Or} {
		var candidates []T
		if kind == And {
			candidates = supersets(m, w.factors)
		} else {
			candidates = subsets(m, w.factors)
		}

		for i := range candidates {
			for j := 0; j < i; j++ {
				if combine(kind, candidates[i], candidates[j]) == m {
					w.addRoute(&route[T]{target: m, kind: kind, x: candidates[i], y: candidates[j]})
				}
			}
		}
	}
}

// addRoute waits on the unknown operands of r, or fires it immediately.
func (w *Worklist[S, T]) addRoute(r *route[T]) {
	operands := []T{r.x}
	if r.kind != Not {
		operands = append(operands, r.y)
	}

	for _, op := range operands {
		if _, ok := w.known[op]; ok {
			continue
		}
		r.pending++
		w.waiting[op] = append(w.waiting[op], r)
		w.enqueue(op)
	}

	if r.pending == 0 {
		w.fire(r)
	}
}

// fire marks the target of r as known and completes any routes it unblocks.
func (w *Worklist[S, T]) fire(r *route[T]) {
	ready := []*route[T]{r}
	for len(ready) > 0 {
		r := ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		if _, ok := w.known[r.target]; ok {
			continue
		}

		var step Step[S, T]
		if r.kind == Not {
			step = NewNotStep[S](w.known[r.x].Cost, r.x)
		} else {
			step = NewBinaryStep(r.kind, r.x, r.y, w.known[r.x].Cost, w.known[r.y].Cost)
		}
		w.known[r.target] = step
		log.Debugf("resolved %s", FormatMask(r.target))

		for _, other := range w.waiting[r.target] {
			if other.pending--; other.pending == 0 {
				ready = append(ready, other)
			}
		}
		delete(w.waiting, r.target)
	}
}
// combine applies an And or Or method to two masks.
func combine[T Mask](kind MethodKind, x, y T) T {
	if kind == And {
		return x & y
	}
	return x | y
}

// supersets returns the candidate operands for building target with AND.
//
// These are target with one more bit set, least significant first, followed
// by target merged with each factor and its complement.
func supersets[T Mask](target T, factors []T) []T {
	var a []T
	for bit := T(1); bit != 0; bit <<= 1 {
		if target&bit == 0 {
			a = append(a, target|bit)
		}
	}
	for _, f := range factors {
		a = appendCandidate(a, target, target|f)
		a = appendCandidate(a, target, target|^f)
	}
	return a
}

// subsets returns the candidate operands for building target with OR.
// It is the dual of supersets().
func subsets[T Mask](target T, factors []T) []T {
	var a []T
	for bit := T(1); bit != 0; bit <<= 1 {
		if target&bit != 0 {
			a = append(a, target&^bit)
		}
	}
	for _, f := range factors {
		a = appendCandidate(a, target, target&f)
		a = appendCandidate(a, target, target&^f)
	}
	return a
}

// appendCandidate appends c to a unless it equals target or is already listed.
func appendCandidate[T Mask](a []T, target, c T) []T {
	if c == target {
		return a
	}
	for _, v := range a {
		if v == c {
			return a
		}
	}
	return append(a, c)
}
