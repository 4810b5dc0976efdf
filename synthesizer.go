package makeup

import (
	"github.com/benbjohnson/immutable"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxSteps is the default expansion budget for a Synthesizer.
const DefaultMaxSteps = 1 << 12

// Searcher represents a strategy for building masks from a fixed factor set.
type Searcher[S Cost, T Mask] interface {
	// Returns the best step found for target. Returns a magic step if the
	// target could not be built.
	Make(target T) Step[S, T]

	// Returns the expression tree for a previously resolved target.
	GetExpr(target T) Expr[T]

	// Returns the cached step for a mask, if one exists.
	Lookup(target T) (Step[S, T], bool)
}

var _ Searcher[uint, uint8] = (*Synthesizer[uint, uint8])(nil)

// Synthesizer builds masks from factors at minimum cost.
//
// Masks are resolved cheapest first. Resolving a mask queues its NOT and its
// AND & OR with every mask resolved before it, so each mask is cached with
// its final cost and only refers to masks cached earlier. The search state
// is kept between calls to Make(). A Synthesizer is not safe for concurrent
// use.
type Synthesizer[S Cost, T Mask] struct {
	factors []T
	flags   []T // per-position feasibility flags of factors

	cache   map[T]Step[S, T]     // resolved masks
	steps   *immutable.SortedMap // sorted copy of cache
	pending map[T]Step[S, T]     // cheapest known step of unresolved masks
	queue   *immutable.SortedMap // queueKey to mask, cheapest first
	seq     uint64               // queue insertion counter

	expanded []T            // resolved masks whose combinations are queued
	done     map[T]struct{} // members of expanded

	exhausted bool // true if the last Make() ran out of budget

	stats Stats

	// Maximum number of masks expanded by a single call to Make().
	// Defaults to DefaultMaxSteps. Zero means unlimited.
	MaxSteps int
}

// Stats holds counters for a synthesizer.
type Stats struct {
	Expansions int // masks whose combinations were queued
	CacheHits  int // calls to Make() served from the cache
	Pruned     int // calls to Make() rejected by the feasibility test
	Updates    int // improvements to the step of an unresolved mask
	Stale      int // queue entries skipped for already expanded masks
}

// queueKey orders queued masks by cost, then by insertion.
type queueKey[S Cost] struct {
	cost S
	seq  uint64
}

// New returns a new instance of Synthesizer with each factor resolved at zero cost.
func New[S Cost, T Mask](factors []T) *Synthesizer[S, T] {
	s := &Synthesizer[S, T]{
		cache:    make(map[T]Step[S, T]),
		steps:    immutable.NewSortedMap(&maskComparer[T]{}),
		pending:  make(map[T]Step[S, T]),
		queue:    immutable.NewSortedMap(&queueComparer[S]{}),
		done:     make(map[T]struct{}),
		MaxSteps: DefaultMaxSteps,
	}

	for _, f := range factors {
		if _, ok := s.cache[f]; ok {
			continue
		}
		s.factors = append(s.factors, f)
		s.store(f, NewExistStep[S, T]())
		s.push(0, f)
	}
	s.flags = positionFlags(s.factors)

	return s
}

// Factors returns the distinct factors in the order they were given.
func (s *Synthesizer[S, T]) Factors() []T {
	return append([]T(nil), s.factors...)
}

// Len returns the number of resolved masks, including factors.
func (s *Synthesizer[S, T]) Len() int {
	return len(s.cache)
}

// Lookup returns the cached step for target, if one exists.
func (s *Synthesizer[S, T]) Lookup(target T) (Step[S, T], bool) {
	step, ok := s.cache[target]
	return step, ok
}

// Steps returns a sorted snapshot of every resolved mask, keyed by mask.
// Later calls to Make() do not affect a returned snapshot.
func (s *Synthesizer[S, T]) Steps() *immutable.SortedMap {
	return s.steps
}

// Stats returns statistics for the synthesizer.
func (s *Synthesizer[S, T]) Stats() Stats {
	return s.stats
}

// Check returns true if target can be built from the synthesizer's factors.
func (s *Synthesizer[S, T]) Check(target T) bool {
	return IsMakable(target, s.factors)
}

// CheckDetail returns the conflicts that prevent target from being built.
func (s *Synthesizer[S, T]) CheckDetail(target T) MaskSet[T] {
	return IsMakableDetail(target, s.factors)
}

// Make returns the minimum-cost step for target.
//
// Returns a magic step if target is infeasible, if every reachable mask has
// been resolved without finding it, or if MaxSteps masks were expanded first.
// An interrupted search resumes on the next call.
func (s *Synthesizer[S, T]) Make(target T) Step[S, T] {
	s.exhausted = false

	if step, ok := s.cache[target]; ok {
		s.stats.CacheHits++
		return step
	} else if !feasible(s.flags, target) {
		s.stats.Pruned++
		return NewMagicStep[S, T]()
	}

	for n := 0; ; n++ {
		if s.MaxSteps > 0 && n >= s.MaxSteps {
			s.exhausted = true
			return NewMagicStep[S, T]()
		}

		m, ok := s.next()
		if !ok {
			return NewMagicStep[S, T]()
		}
		s.expand(m)

		if m == target {
			return s.cache[target]
		}
	}
}

// Solve resolves target and returns its step & expression.
// Returns ErrStepLimit if the budget ran out or ErrUnreachable if the
// target could not be built.
func (s *Synthesizer[S, T]) Solve(target T) (Step[S, T], Expr[T], error) {
	step := s.Make(target)
	if step.IsMagic() {
		if s.exhausted {
			return step, nil, ErrStepLimit
		}
		return step, nil, ErrUnreachable
	}
	return step, s.GetExpr(target), nil
}

// GetExpr returns the expression tree for target from the cache.
// Masks that have not been resolved are returned as MagicExpr.
func (s *Synthesizer[S, T]) GetExpr(target T) Expr[T] {
	return buildExpr[S](s.cache, target)
}

// next removes the cheapest unexpanded mask from the queue, resolving it if
// it is still pending. Returns false if the queue is empty.
func (s *Synthesizer[S, T]) next() (T, bool) {
	for s.queue.Len() > 0 {
		k, v := s.queue.Iterator().Next()
		s.queue = s.queue.Delete(k)

		m := v.(T)
		if _, ok := s.done[m]; ok {
			s.stats.Stale++
			continue
		}

		if step, ok := s.pending[m]; ok {
			delete(s.pending, m)
			s.store(m, step)
			log.Debugf("resolved %s", FormatMask(m))
		}
		return m, true
	}
	return 0, false
}

// expand queues every mask that m produces with NOT, and with AND & OR
// against each mask expanded before it.
func (s *Synthesizer[S, T]) expand(m T) {
	s.stats.Expansions++
	cost := s.cache[m].Cost

	s.testNot(m, cost)
	for _, f := range s.expanded {
		s.testAnd(m, f, cost)
		s.testOr(m, f, cost)
	}

	s.expanded = append(s.expanded, m)
	s.done[m] = struct{}{}
}

// testAnd offers m & f, unless it is one of its operands.
func (s *Synthesizer[S, T]) testAnd(m, f T, cost S) {
	if x := m & f; x != m && x != f {
		s.offer(x, NewBinaryStep(And, m, f, cost, s.cache[f].Cost))
	}
}

// testOr offers m | f, unless it is one of its operands.
func (s *Synthesizer[S, T]) testOr(m, f T, cost S) {
	if x := m | f; x != m && x != f {
		s.offer(x, NewBinaryStep(Or, m, f, cost, s.cache[f].Cost))
	}
}

// testNot offers the complement of m.
func (s *Synthesizer[S, T]) testNot(m T, cost S) {
	s.offer(^m, NewNotStep[S](cost, m))
}

// offer records step as the way to build x if it beats the pending step.
// On equal cost AND beats NOT, which beats OR.
func (s *Synthesizer[S, T]) offer(x T, step Step[S, T]) {
	if _, ok := s.cache[x]; ok {
		return
	}

	prev, ok := s.pending[x]
	switch {
	case !ok || step.Less(prev):
		s.pending[x] = step
		s.push(step.Cost, x)
	case step.Cost == prev.Cost && priority(step.Method.Kind) < priority(prev.Method.Kind):
		s.pending[x] = step
	default:
		return
	}
	s.stats.Updates++
}

// push queues m at the given cost.
func (s *Synthesizer[S, T]) push(cost S, m T) {
	s.queue = s.queue.Set(queueKey[S]{cost: cost, seq: s.seq}, m)
	s.seq++
}

// store caches step for target. A mask is only ever stored once.
func (s *Synthesizer[S, T]) store(target T, step Step[S, T]) {
	_, ok := s.cache[target]
	assert(!ok, "mask already resolved: %s", FormatMask(target))
	s.cache[target] = step
	s.steps = s.steps.Set(target, step)
}

// priority returns the tie-break rank of a method kind. Lower wins.
func priority(kind MethodKind) int {
	switch kind {
	case And:
		return 0
	case Not:
		return 1
	default:
		return 2
	}
}

// buildExpr reconstructs the expression for target from resolved steps.
func buildExpr[S Cost, T Mask](cache map[T]Step[S, T], target T) Expr[T] {
	step, ok := cache[target]
	if !ok {
		return NewMagicExpr[T]()
	}

	switch step.Method.Kind {
	case Exist:
		return NewExistExpr(target)
	case Not:
		return NewNotExpr(buildExpr(cache, step.Method.X))
	case And:
		return NewBinaryExpr(AND, buildExpr(cache, step.Method.X), buildExpr(cache, step.Method.Y))
	case Or:
		return NewBinaryExpr(OR, buildExpr(cache, step.Method.X), buildExpr(cache, step.Method.Y))
	default:
		return NewMagicExpr[T]()
	}
}

// maskComparer compares two masks. Implements immutable.Comparer.
type maskComparer[T Mask] struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a T.
func (c *maskComparer[T]) Compare(a, b interface{}) int {
	if i, j := a.(T), b.(T); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}

// queueComparer orders queue keys by cost, then insertion. Implements immutable.Comparer.
type queueComparer[S Cost] struct{}

// Compare returns -1 if a sorts before b, returns 1 if a sorts after b, and
// returns 0 if they are equal.
func (c *queueComparer[S]) Compare(a, b interface{}) int {
	i, j := a.(queueKey[S]), b.(queueKey[S])
	if i.cost < j.cost {
		return -1
	} else if i.cost > j.cost {
		return 1
	} else if i.seq < j.seq {
		return -1
	} else if i.seq > j.seq {
		return 1
	}
	return 0
}
