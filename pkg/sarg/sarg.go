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

package sarg

import "fmt"

// NullAs mirrors expression.UnknownAs's three states without importing
// pkg/expression (which would create an import cycle, since expression's
// Literal can box a *Sarg as its value); pkg/rexsimplify bridges the two
// (see DESIGN.md).
type NullAs uint8

const (
	NullAsUnknown NullAs = iota
	NullAsTrue
	NullAsFalse
)

// Join implements the lattice join of two nullAs states: UNKNOWN defers
// to the other side, and two different definite states give UNKNOWN.
func (n NullAs) Join(other NullAs) NullAs {
	if n == other {
		return n
	}
	if n == NullAsUnknown {
		return other
	}
	if other == NullAsUnknown {
		return n
	}
	return NullAsUnknown
}

func (n NullAs) String() string {
	switch n {
	case NullAsTrue:
		return "TRUE"
	case NullAsFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Sarg ("search argument") packages a RangeSet plus a NullAs classifier:
// the predicate `value ∈ ranges OR (value IS NULL AND nullAs = TRUE)`.
type Sarg[T any] struct {
	Ranges *RangeSet[T]
	NullAs NullAs
	cmp    Comparator[T]
}

// New builds a Sarg from a RangeSet and a NullAs classification.
func New[T any](cmp Comparator[T], ranges *RangeSet[T], nullAs NullAs) *Sarg[T] {
	return &Sarg[T]{Ranges: ranges, NullAs: nullAs, cmp: cmp}
}

// Complement returns a Sarg over the complement of s.Ranges, keeping
// NullAs unchanged.
func (s *Sarg[T]) Complement() *Sarg[T] {
	return &Sarg[T]{Ranges: s.Ranges.Complement(), NullAs: s.NullAs, cmp: s.cmp}
}

// Negate complements the ranges AND flips nullAs. This is the
// difference from Complement: NOT (x IN sarg) is Negate, not Complement,
// because NOT NULL is NULL, not a flip of "is it in the complement".
func (s *Sarg[T]) Negate() *Sarg[T] {
	flipped := s.NullAs
	switch s.NullAs {
	case NullAsTrue:
		flipped = NullAsFalse
	case NullAsFalse:
		flipped = NullAsTrue
	}
	return &Sarg[T]{Ranges: s.Ranges.Complement(), NullAs: flipped, cmp: s.cmp}
}

// IsPoints reports whether every range is a single point and NullAs is
// not TRUE (a plain IN-list shape).
func (s *Sarg[T]) IsPoints() bool {
	return s.Ranges.IsPoints() && s.NullAs != NullAsTrue
}

// IsComplementedPoints reports whether the complement is a points-shaped
// Sarg, i.e. this Sarg is a NOT-IN shape.
func (s *Sarg[T]) IsComplementedPoints() bool {
	return s.Complement().IsPoints()
}

// IsAll reports whether the ranges cover the whole domain and NullAs is
// TRUE, i.e. the Sarg matches every value including NULL.
func (s *Sarg[T]) IsAll() bool {
	return s.Ranges.IsAll() && s.NullAs == NullAsTrue
}

// IsNone reports whether the ranges are empty and NullAs is FALSE, i.e.
// the Sarg matches nothing, not even NULL.
func (s *Sarg[T]) IsNone() bool {
	return s.Ranges.IsEmpty() && s.NullAs == NullAsFalse
}

// Complexity is the endpoint count plus one if nullAs ≠ FALSE.
func (s *Sarg[T]) Complexity() int {
	n := s.Ranges.Complexity()
	if s.NullAs != NullAsFalse {
		n++
	}
	return n
}

// Point returns the single point value when the Sarg is exactly one
// closed point and NullAs is FALSE (used by SEARCH simplification's
// single-point expansion).
func (s *Sarg[T]) Point() (T, bool) {
	var zero T
	if s.NullAs != NullAsFalse {
		return zero, false
	}
	ivs := s.Ranges.Intervals()
	if len(ivs) != 1 || !ivs[0].IsPoint(s.cmp) {
		return zero, false
	}
	return ivs[0].Lo.Value, true
}

func (s *Sarg[T]) String() string {
	return fmt.Sprintf("Sarg[%v; nullAs=%s]", s.Ranges.Intervals(), s.NullAs)
}
