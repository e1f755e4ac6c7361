// Copyright 2024 The Rexsimplify Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sarg implements the range/search-argument engine's value
// model: a RangeSet is a disjoint, canonical union of intervals over a
// comparable domain; a Sarg pairs a RangeSet with a nullAs policy.
// Neither type knows about expression trees; the bridge between
// RangeSet/Sarg and Node lives in pkg/rexsimplify, so that this package
// stays a reusable value library, grounded on TiDB's pkg/util/ranger,
// which keeps Range/Ranges free of expression.Expression too.
package sarg

import (
	"fmt"
	"sort"

	"github.com/google/btree"
)

// Comparator orders two values of a domain; RangeSet is parameterized by
// one instead of Go's built-in ordering operators so it works uniformly
// over the Datum wrapper type (which is a struct, not an ordered
// primitive) as well as plain ints/strings/times in tests.
type Comparator[T any] func(a, b T) int

// Bound is one end of an interval. A nil *Bound means unbounded in that
// direction.
type Bound[T any] struct {
	Value     T
	Inclusive bool
}

// Interval is a single (possibly half- or fully-unbounded) interval.
type Interval[T any] struct {
	Lo *Bound[T]
	Hi *Bound[T]
}

// IsPoint reports whether the interval is a single closed point [v, v].
func (iv Interval[T]) IsPoint(cmp Comparator[T]) bool {
	return iv.Lo != nil && iv.Hi != nil && iv.Lo.Inclusive && iv.Hi.Inclusive &&
		cmp(iv.Lo.Value, iv.Hi.Value) == 0
}

func (iv Interval[T]) String() string {
	lo, hi := "(-inf", "+inf)"
	if iv.Lo != nil {
		b := "("
		if iv.Lo.Inclusive {
			b = "["
		}
		lo = fmt.Sprintf("%s%v", b, iv.Lo.Value)
	}
	if iv.Hi != nil {
		b := ")"
		if iv.Hi.Inclusive {
			b = "]"
		}
		hi = fmt.Sprintf("%v%s", iv.Hi.Value, b)
	}
	return lo + ", " + hi
}

// RangeSet is a canonical, disjoint, sorted union of intervals over T.
// Points goes through a btree.BTreeG-backed builder so that
// collecting many point intervals (the common case: a wide `IN (...)` list
// folded to a Sarg) costs O(n log n) rather than the O(n^2) an
// insertion-sorted slice would cost; the canonical storage itself is a
// plain sorted slice, since intervals must be merged/coalesced on every
// insert regardless of the backing structure.
type RangeSet[T any] struct {
	cmp       Comparator[T]
	intervals []Interval[T]
}

// Empty returns an empty RangeSet.
func Empty[T any](cmp Comparator[T]) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp}
}

// All returns a RangeSet spanning the entire domain.
func All[T any](cmp Comparator[T]) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{}}}
}

// Point returns a RangeSet containing a single closed point.
func Point[T any](cmp Comparator[T], v T) *RangeSet[T] {
	b := &Bound[T]{Value: v, Inclusive: true}
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{Lo: b, Hi: b}}}
}

// Points builds a RangeSet from many discrete points, deduplicated and
// sorted via an intermediate btree.BTreeG (the wide-IN-list workload that
// justifies this package's google/btree dependency, recorded in
// DESIGN.md).
func Points[T any](cmp Comparator[T], values ...T) *RangeSet[T] {
	less := func(a, b T) bool { return cmp(a, b) < 0 }
	tree := btree.NewG(32, less)
	for _, v := range values {
		tree.ReplaceOrInsert(v)
	}
	rs := Empty[T](cmp)
	tree.Ascend(func(v T) bool {
		rs.intervals = append(rs.intervals, pointInterval(v))
		return true
	})
	return rs
}

func pointInterval[T any](v T) Interval[T] {
	b := &Bound[T]{Value: v, Inclusive: true}
	return Interval[T]{Lo: b, Hi: b}
}

// LessThan / LessThanOrEqual / GreaterThan / GreaterThanOrEqual / Equal /
// NotEqual build a single-interval RangeSet for the corresponding
// comparison kind, per the per-kind range contribution table.
func LessThan[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{Hi: &Bound[T]{Value: v, Inclusive: false}}}}
}

func LessThanOrEqual[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{Hi: &Bound[T]{Value: v, Inclusive: true}}}}
}

func GreaterThan[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{Lo: &Bound[T]{Value: v, Inclusive: false}}}}
}

func GreaterThanOrEqual[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return &RangeSet[T]{cmp: cmp, intervals: []Interval[T]{{Lo: &Bound[T]{Value: v, Inclusive: true}}}}
}

func Equal[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return Point(cmp, v)
}

func NotEqual[T any](cmp Comparator[T], v T) *RangeSet[T] {
	return Equal(cmp, v).Complement()
}

// IsEmpty reports whether the set contains no values.
func (rs *RangeSet[T]) IsEmpty() bool { return len(rs.intervals) == 0 }

// IsAll reports whether the set spans the entire domain.
func (rs *RangeSet[T]) IsAll() bool {
	return len(rs.intervals) == 1 && rs.intervals[0].Lo == nil && rs.intervals[0].Hi == nil
}

// Intervals returns the canonical interval list (read-only; callers must
// not mutate the returned slice or its Bound pointers).
func (rs *RangeSet[T]) Intervals() []Interval[T] { return rs.intervals }

// Complexity is the endpoint count; Sarg.Complexity adds the +1 for
// nullAs≠FALSE.
func (rs *RangeSet[T]) Complexity() int {
	n := 0
	for _, iv := range rs.intervals {
		if iv.Lo != nil {
			n++
		}
		if iv.Hi != nil {
			n++
		}
	}
	return n
}

// IsPoints reports whether every interval is a single closed point.
func (rs *RangeSet[T]) IsPoints() bool {
	if len(rs.intervals) == 0 {
		return false
	}
	for _, iv := range rs.intervals {
		if !iv.IsPoint(rs.cmp) {
			return false
		}
	}
	return true
}

func cmpBoundsLo[T any](cmp Comparator[T], a, b *Bound[T]) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	c := cmp(a.Value, b.Value)
	if c != 0 {
		return c
	}
	if a.Inclusive == b.Inclusive {
		return 0
	}
	if a.Inclusive {
		return -1
	}
	return 1
}

// Union returns the canonical union of rs and other, merging/coalescing
// overlapping or touching intervals.
func (rs *RangeSet[T]) Union(other *RangeSet[T]) *RangeSet[T] {
	all := append(append([]Interval[T]{}, rs.intervals...), other.intervals...)
	return canonicalize(rs.cmp, all)
}

// Intersect returns the canonical intersection of rs and other. An empty
// result means the two ranges are disjoint.
func (rs *RangeSet[T]) Intersect(other *RangeSet[T]) *RangeSet[T] {
	var out []Interval[T]
	for _, a := range rs.intervals {
		for _, b := range other.intervals {
			if iv, ok := intersectOne(rs.cmp, a, b); ok {
				out = append(out, iv)
			}
		}
	}
	return canonicalize(rs.cmp, out)
}

func intersectOne[T any](cmp Comparator[T], a, b Interval[T]) (Interval[T], bool) {
	lo := a.Lo
	if cmpBoundsLo(cmp, b.Lo, a.Lo) > 0 {
		lo = b.Lo
	}
	hi := a.Hi
	if cmpBoundsHi(cmp, b.Hi, a.Hi) < 0 {
		hi = b.Hi
	}
	if lo != nil && hi != nil {
		c := cmp(lo.Value, hi.Value)
		if c > 0 || (c == 0 && !(lo.Inclusive && hi.Inclusive)) {
			return Interval[T]{}, false
		}
	}
	return Interval[T]{Lo: lo, Hi: hi}, true
}

func cmpBoundsHi[T any](cmp Comparator[T], a, b *Bound[T]) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	c := cmp(a.Value, b.Value)
	if c != 0 {
		return c
	}
	if a.Inclusive == b.Inclusive {
		return 0
	}
	if a.Inclusive {
		return 1
	}
	return -1
}

// Complement returns the set-complement of rs over the whole domain.
func (rs *RangeSet[T]) Complement() *RangeSet[T] {
	if len(rs.intervals) == 0 {
		return All(rs.cmp)
	}
	var out []Interval[T]
	prevHi := (*Bound[T])(nil)
	haveLowerGap := true
	for _, iv := range rs.intervals {
		if haveLowerGap {
			if iv.Lo != nil {
				out = append(out, Interval[T]{Hi: invert(iv.Lo)})
			}
		} else if iv.Lo != nil {
			out = append(out, Interval[T]{Lo: invert(prevHi), Hi: invert(iv.Lo)})
		}
		prevHi = iv.Hi
		haveLowerGap = false
		if prevHi == nil {
			// rs covers up to +inf on this interval; nothing more to
			// complement on the high side.
			return canonicalize(rs.cmp, out)
		}
	}
	out = append(out, Interval[T]{Lo: invert(prevHi)})
	return canonicalize(rs.cmp, out)
}

func invert[T any](b *Bound[T]) *Bound[T] {
	if b == nil {
		return nil
	}
	return &Bound[T]{Value: b.Value, Inclusive: !b.Inclusive}
}

// Contains reports whether v falls within rs.
func (rs *RangeSet[T]) Contains(v T) bool {
	for _, iv := range rs.intervals {
		if intervalContains(rs.cmp, iv, v) {
			return true
		}
	}
	return false
}

func intervalContains[T any](cmp Comparator[T], iv Interval[T], v T) bool {
	if iv.Lo != nil {
		c := cmp(v, iv.Lo.Value)
		if c < 0 || (c == 0 && !iv.Lo.Inclusive) {
			return false
		}
	}
	if iv.Hi != nil {
		c := cmp(v, iv.Hi.Value)
		if c > 0 || (c == 0 && !iv.Hi.Inclusive) {
			return false
		}
	}
	return true
}

func canonicalize[T any](cmp Comparator[T], intervals []Interval[T]) *RangeSet[T] {
	if len(intervals) == 0 {
		return Empty[T](cmp)
	}
	sort.Slice(intervals, func(i, j int) bool {
		return cmpBoundsLo(cmp, intervals[i].Lo, intervals[j].Lo) < 0
	})
	out := []Interval[T]{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &out[len(out)-1]
		if touchesOrOverlaps(cmp, *last, iv) {
			if cmpBoundsHi(cmp, iv.Hi, last.Hi) > 0 {
				last.Hi = iv.Hi
			}
		} else {
			out = append(out, iv)
		}
	}
	return &RangeSet[T]{cmp: cmp, intervals: out}
}

// touchesOrOverlaps reports whether b's low end is within or adjacent to
// a's span, so the two intervals coalesce into one in canonical form.
func touchesOrOverlaps[T any](cmp Comparator[T], a, b Interval[T]) bool {
	if a.Hi == nil || b.Lo == nil {
		return true
	}
	c := cmp(b.Lo.Value, a.Hi.Value)
	if c < 0 {
		return true
	}
	if c == 0 {
		return b.Lo.Inclusive || a.Hi.Inclusive
	}
	return false
}
