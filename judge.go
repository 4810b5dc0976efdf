package makeup

import (
	"bytes"
	"slices"
)

// MaskSet represents an unordered set of masks.
type MaskSet[T Mask] map[T]struct{}

// Contains returns true if v is in the set.
func (s MaskSet[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Slice returns the members of the set in ascending order.
func (s MaskSet[T]) Slice() []T {
	a := make([]T, 0, len(s))
	for v := range s {
		a = append(a, v)
	}
	slices.Sort(a)
	return a
}

// String returns the members of the set in binary, in ascending order.
func (s MaskSet[T]) String() string {
	var buf bytes.Buffer
	buf.WriteRune('{')
	for i, v := range s.Slice() {
		if i > 0 {
			buf.WriteRune(' ')
		}
		buf.WriteString(FormatMask(v))
	}
	buf.WriteRune('}')
	return buf.String()
}

// IsMakable returns true if target can be built from factors using only
// bitwise AND, OR & NOT.
//
// Each bit position is tested on its own. The factors are aligned so that the
// position reads as one in all of them and then AND-reduced, leaving the set of
// positions that no factor can tell apart from it. The target is makable only
// if it agrees with itself across every such set.
func IsMakable[T Mask](target T, factors []T) bool {
	checker := T(1)
	for i := uint(0); i < Width[T](); i++ {
		if hasConflict(alignAll(factors, checker), target, checker) {
			return false
		}
		checker <<= 1
	}
	return true
}

// IsMakableDetail returns the conflicting position sets found while testing
// target against factors. The set is empty if target is makable.
func IsMakableDetail[T Mask](target T, factors []T) MaskSet[T] {
	detail := make(MaskSet[T])
	checker := T(1)
	for i := uint(0); i < Width[T](); i++ {
		flag := alignAll(factors, checker)
		if hasConflict(flag, target, checker) {
			detail[flag] = struct{}{}
		}
		checker <<= 1
	}
	return detail
}

// align returns n if the checker bit is set in n. Otherwise returns ^n.
func align[T Mask](n, checker T) T {
	if n|checker == n {
		return n
	}
	return ^n
}

// alignAll returns the AND of every factor aligned to checker.
func alignAll[T Mask](factors []T, checker T) T {
	flag := ^T(0)
	for _, f := range factors {
		flag &= align(f, checker)
	}
	return flag
}

// hasConflict returns true if flag covers a position where target differs
// from its value at the checker bit.
func hasConflict[T Mask](flag, target, checker T) bool {
	return ^(flag&align(target, checker))&flag != 0
}

// positionFlags returns the aligned reduction of factors for every bit
// position, least significant first.
func positionFlags[T Mask](factors []T) []T {
	flags := make([]T, Width[T]())
	checker := T(1)
	for i := range flags {
		flags[i] = alignAll(factors, checker)
		checker <<= 1
	}
	return flags
}

// feasible performs the IsMakable test against precomputed position flags.
func feasible[T Mask](flags []T, target T) bool {
	checker := T(1)
	for _, flag := range flags {
		if hasConflict(flag, target, checker) {
			return false
		}
		checker <<= 1
	}
	return true
}
