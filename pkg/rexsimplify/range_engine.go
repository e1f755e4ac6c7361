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

package rexsimplify

import (
	"github.com/nobigo/rexsimplify/pkg/expression"
	"github.com/nobigo/rexsimplify/pkg/sarg"
	"github.com/nobigo/rexsimplify/pkg/types"
)

// datumComparator is the Comparator[types.Datum] every Sarg/RangeSet built
// by this package uses. Datum.Compare already implements the natural
// total order; ties on incomparable kinds fall back to a stable string
// ordering so the RangeSet's underlying btree-backed construction (see
// pkg/sarg) never sees an inconsistent comparator.
func datumComparator(a, b types.Datum) int {
	if c, ok := a.Compare(b); ok {
		return c
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// sargEntry accumulates the combined range and null-handling for one
// reference across a flat AND- or OR-term list. typ is the reference type
// of the first contributing term; later terms do not widen it, and no
// least-restrictive type is computed across the terms.
type sargEntry struct {
	ref      expression.Node
	typ      types.FieldType
	ranges   *sarg.RangeSet[types.Datum]
	nullAs   sarg.NullAs
	merged   bool // true once a second term has contributed to this ref.
	firstIdx int
}

// rangeFromComparison returns the single-interval RangeSet the per-kind
// contribution table assigns to a comparison against d, and
// whether k is a recognized range-contributing comparison kind.
func rangeFromComparison(k expression.Kind, d types.Datum) (*sarg.RangeSet[types.Datum], bool) {
	switch k {
	case expression.LessThan:
		return sarg.LessThan(datumComparator, d), true
	case expression.LessThanOrEqual:
		return sarg.LessThanOrEqual(datumComparator, d), true
	case expression.GreaterThan:
		return sarg.GreaterThan(datumComparator, d), true
	case expression.GreaterThanOrEqual:
		return sarg.GreaterThanOrEqual(datumComparator, d), true
	case expression.Equals:
		return sarg.Equal(datumComparator, d), true
	case expression.NotEquals:
		return sarg.NotEqual(datumComparator, d), true
	default:
		return nil, false
	}
}

// rangeFromBetween returns the single-interval RangeSet `ref BETWEEN lo
// AND hi` contributes: the closed interval [lo, hi].
func rangeFromBetween(lo, hi types.Datum) *sarg.RangeSet[types.Datum] {
	return sarg.GreaterThanOrEqual(datumComparator, lo).Intersect(sarg.LessThanOrEqual(datumComparator, hi))
}

// refKey identifies the reference a Comparison/IsPredicate is against, for
// grouping into sargEntry buckets. CAST(ref) is treated as a valid
// reference slot in its own right, not unwrapped to its operand, since a
// SEARCH built over CAST(ref) is not interchangeable with one built over
// ref.
func refKey(ref expression.Node) string {
	return string(ref.HashCode())
}

// collectSarg scans terms for Comparison/IsPredicate/SEARCH shapes against
// a shared reference, folding each recognized term into a per-ref
// sargEntry via Intersect (conjunctive) or Union (disjunctive), and
// records which term indices were consumed. Unrecognized terms are left
// untouched for the caller to re-emit as-is.
func (s *Simplifier) collectSarg(terms []expression.Node, conjunctive bool) (entries map[string]*sargEntry, order []string, consumed map[int]bool) {
	entries = make(map[string]*sargEntry)
	consumed = make(map[int]bool)

	// A ref's entry is only marked consumed once a second term merges into
	// it; a ref seen exactly once is left for the caller to re-emit its
	// original term untouched (collectSarg never rebuilds a node it didn't
	// actually have to change).
	fold := func(key string, ref expression.Node, typ types.FieldType, r *sarg.RangeSet[types.Datum], nullAs sarg.NullAs, idx int) {
		e, ok := entries[key]
		if !ok {
			entries[key] = &sargEntry{ref: ref, typ: typ, ranges: r, nullAs: nullAs, firstIdx: idx}
			order = append(order, key)
			return
		}
		if !e.merged {
			consumed[e.firstIdx] = true
		}
		if conjunctive {
			e.ranges = e.ranges.Intersect(r)
			e.nullAs = andNullAs(e.nullAs, nullAs)
		} else {
			e.ranges = e.ranges.Union(r)
			e.nullAs = orNullAs(e.nullAs, nullAs)
		}
		e.merged = true
		consumed[idx] = true
	}

	for i, term := range terms {
		if cmp, ok := ComparisonOf(term); ok {
			d, ok := cmp.Literal.Datum()
			if !ok {
				continue // NULL literal comparisons are never folded.
			}
			r, ok := rangeFromComparison(cmp.Kind, d)
			if !ok {
				continue
			}
			// A bare comparison preserves NULL (x<>1 is NULL, not FALSE,
			// when x is NULL), so its null-row contribution is UNKNOWN,
			// not FALSE. FALSE is reserved for predicates that are
			// themselves never null (IS [NOT] NULL).
			fold(refKey(cmp.Ref), cmp.Ref, cmp.Ref.Type(), r, sarg.NullAsUnknown, i)
			continue
		}
		if bt, ok := BetweenOf(term); ok {
			lo, lok := bt.Lo.Datum()
			hi, hok := bt.Hi.Datum()
			if lok && hok {
				fold(refKey(bt.Ref), bt.Ref, bt.Ref.Type(), rangeFromBetween(lo, hi), sarg.NullAsUnknown, i)
			}
			continue
		}
		if isp, ok := IsPredicateOf(term); ok {
			switch isp.Kind {
			case expression.IsNull:
				fold(refKey(isp.Operand), isp.Operand, isp.Operand.Type(), sarg.Empty[types.Datum](datumComparator), sarg.NullAsTrue, i)
			case expression.IsNotNull:
				fold(refKey(isp.Operand), isp.Operand, isp.Operand.Type(), sarg.All[types.Datum](datumComparator), sarg.NullAsFalse, i)
			}
			continue
		}
		if c, ok := term.(*expression.CallExpr); ok && c.K == expression.Search && len(c.Operands) == 2 {
			if sv, typ, ok := searchSarg(c); ok {
				fold(refKey(c.Operands[0]), c.Operands[0], typ, sv.Ranges, sv.NullAs, i)
			}
		}
	}
	return entries, order, consumed
}

// andNullAs combines two null-row contributions the way three-valued AND
// does: FALSE dominates, TRUE needs both sides TRUE, anything else is
// UNKNOWN (NullAs.Join is deliberately not reused here: Join treats
// UNKNOWN as "defer to the other side", which is correct for merging two
// readings of the *same* predicate but wrong for AND/OR composition,
// where e.g. TRUE-and-UNKNOWN must stay UNKNOWN rather than collapse to
// TRUE).
func andNullAs(a, b sarg.NullAs) sarg.NullAs {
	if a == sarg.NullAsFalse || b == sarg.NullAsFalse {
		return sarg.NullAsFalse
	}
	if a == sarg.NullAsTrue && b == sarg.NullAsTrue {
		return sarg.NullAsTrue
	}
	return sarg.NullAsUnknown
}

// orNullAs is andNullAs's three-valued-OR counterpart.
func orNullAs(a, b sarg.NullAs) sarg.NullAs {
	if a == sarg.NullAsTrue || b == sarg.NullAsTrue {
		return sarg.NullAsTrue
	}
	if a == sarg.NullAsFalse && b == sarg.NullAsFalse {
		return sarg.NullAsFalse
	}
	return sarg.NullAsUnknown
}

// searchSarg unboxes a SEARCH call's literal Sarg operand, or ok=false if
// it is not the shape this module produces.
func searchSarg(c *expression.CallExpr) (*sarg.Sarg[types.Datum], types.FieldType, bool) {
	lit, ok := c.Operands[1].(*expression.LiteralExpr)
	if !ok {
		return nil, types.FieldType{}, false
	}
	sv, ok := lit.Value.(*sarg.Sarg[types.Datum])
	if !ok {
		return nil, types.FieldType{}, false
	}
	return sv, c.Operands[0].Type(), true
}

// simplifyRangeTerms implements the Range & Sarg engine's composition half
// of rule 5 / 7 (AND) and the Sarg-collection half of simplifyOr: it folds recognized comparison/IsPredicate/SEARCH terms
// into per-ref Sargs, detects the AND/OR short-circuit (a conjunctive
// Sarg that matches nothing, NULL included, or a disjunctive one that
// matches everything, NULL included), and re-expands
// survivors per the "Fix-up" rule. short is non-nil when the caller should
// short-circuit the whole AND/OR to that boolean literal.
func (s *Simplifier) simplifyRangeTerms(terms []expression.Node, conjunctive bool) (out []expression.Node, short *expression.LiteralExpr) {
	entries, order, consumed := s.collectSarg(terms, conjunctive)
	for i, t := range terms {
		if !consumed[i] {
			out = append(out, t)
		}
	}
	for _, key := range order {
		e := entries[key]
		sv := sarg.New(datumComparator, e.ranges, e.nullAs)
		if conjunctive && sv.IsNone() {
			return nil, expression.NewBoolLiteral(false)
		}
		if !conjunctive && sv.IsAll() {
			return nil, expression.NewBoolLiteral(true)
		}
		if !e.merged {
			// A single recognized term for this ref: nothing to fold,
			// leave the original term (already in out) untouched.
			continue
		}
		expanded := s.expandSarg(e.ref, sv, e.typ)
		if expanded != nil {
			out = append(out, expanded)
		}
	}
	return out, nil
}

// expandSarg re-materializes a merged Sarg as a Node: a vacuous Sarg (matches everything, including NULL) drops to
// nothing; one that matches everything except NULL collapses to
// `IS NOT NULL(ref)` (optionally OR'd with a NULL literal when the merge
// came from a disjunction, matching `x <> A OR x <> B → x IS NOT NULL OR
// NULL`); a single point collapses to `ref = point`; everything else
// becomes a SEARCH call.
func (s *Simplifier) expandSarg(ref expression.Node, sv *sarg.Sarg[types.Datum], typ types.FieldType) expression.Node {
	if sv.IsAll() {
		return nil
	}
	if sv.Ranges.IsAll() {
		isNotNull := s.makeIsNotNull(ref)
		if sv.NullAs == sarg.NullAsFalse {
			return isNotNull
		}
		return expression.NewCall(expression.Or, s.boolType(true), isNotNull, expression.NewNullLiteral(s.boolType(true)))
	}
	if pt, ok := sv.Point(); ok {
		return expression.NewCall(expression.Equals, s.boolType(ref.Type().Nullable), ref, expression.NewLiteral(pt, typ.WithNullable(false)))
	}
	// A single point with nullAs=UNKNOWN is exactly what a bare `ref =
	// point` already means (NULL in, NULL out), so no SEARCH wrapper is
	// needed, unlike the nullAs=TRUE/FALSE cases just above, which force
	// a definite value on a NULL ref that a bare Equals cannot express.
	if sv.NullAs == sarg.NullAsUnknown {
		if pt, ok := singlePoint(sv.Ranges); ok {
			return expression.NewCall(expression.Equals, s.boolType(ref.Type().Nullable), ref, expression.NewLiteral(pt, typ.WithNullable(false)))
		}
	}
	return expression.NewCall(expression.Search, s.boolType(ref.Type().Nullable), ref,
		s.builder.MakeSearchArgumentLiteral(sv, typ))
}

// singlePoint reports whether rs is exactly one closed point, returning it.
func singlePoint(rs *sarg.RangeSet[types.Datum]) (types.Datum, bool) {
	ivs := rs.Intervals()
	if len(ivs) != 1 || !ivs[0].IsPoint(datumComparator) {
		return types.Datum{}, false
	}
	return ivs[0].Lo.Value, true
}

// simplifySearch implements rule 17's standalone SEARCH handling: operands[0] is the reference, operands[1]
// a literal boxing the Sarg.
func (s *Simplifier) simplifySearch(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	ref, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	sv, typ, ok := searchSarg(c)
	if !ok {
		return c, nil
	}
	if sv.IsAll() {
		return s.boolFromNullAs(ref, sv.NullAs, m), nil
	}
	if sv.IsNone() {
		return expression.NewBoolLiteral(false), nil
	}
	if s.predicates.IsEffectivelyNotNull(ref, s.isStrictlyNotNullGiven) && sv.NullAs != sarg.NullAsUnknown {
		dropped := sarg.New(datumComparator, sv.Ranges, sarg.NullAsFalse)
		return s.simplifySearch(expression.NewCall(expression.Search, c.Typ, ref,
			s.builder.MakeSearchArgumentLiteral(dropped, typ)), m)
	}
	if pt, ok := sv.Point(); ok {
		return expression.NewCall(expression.Equals, s.boolType(ref.Type().Nullable), ref,
			expression.NewLiteral(pt, typ.WithNullable(false))), nil
	}
	if sv.Ranges.IsEmpty() && sv.NullAs == sarg.NullAsFalse {
		return expression.NewBoolLiteral(false), nil
	}
	if ref.Equal(c.Operands[0]) {
		return c, nil
	}
	return expression.NewCall(expression.Search, c.Typ, ref, c.Operands[1]), nil
}

// boolFromNullAs encodes "always matches, including NULL iff nullAs=TRUE"
// as a boolean result under the given UnknownAs use-site policy.
func (s *Simplifier) boolFromNullAs(ref expression.Node, nullAs sarg.NullAs, m expression.UnknownAs) expression.Node {
	if nullAs == sarg.NullAsTrue || !ref.Type().Nullable {
		return expression.NewBoolLiteral(true)
	}
	switch m {
	case expression.UnknownAsTrue:
		return expression.NewBoolLiteral(true)
	case expression.UnknownAsFalse:
		return expression.NewBoolLiteral(false)
	default:
		return s.makeIsNotNull(ref)
	}
}

// residueFor computes the intersection of ref's contributed range r with
// the constraints already known true from the predicate list on the
// same ref, and reduces the term accordingly: empty means it contradicts
// what is already known (FALSE); a single surviving point collapses to
// `ref = v`; an intersection that narrows nothing beyond what the known
// range already establishes means the term is redundant given that
// range (IS NOT NULL(ref), or plain TRUE when ref cannot be NULL);
// anything else is left for the caller to re-emit unchanged.
func (s *Simplifier) residueFor(ref expression.Node, r *sarg.RangeSet[types.Datum]) (expression.Node, bool) {
	if !s.cfg.PredicateElimination || s.predicates.Len() == 0 {
		return nil, false
	}
	entries, _, _ := s.collectSarg(s.predicates.PulledUpPredicates(), true)
	known, ok := entries[refKey(ref)]
	if !ok || known.ranges.IsAll() {
		return nil, false
	}
	narrowed := known.ranges.Intersect(r)
	if narrowed.IsEmpty() {
		return expression.NewBoolLiteral(false), true
	}
	if pt, ok := singlePoint(narrowed); ok {
		return expression.NewCall(expression.Equals, s.boolType(ref.Type().Nullable), ref,
			expression.NewLiteral(pt, known.typ.WithNullable(false))), true
	}
	if rangesEqual(narrowed, known.ranges) {
		if !ref.Type().Nullable {
			return expression.NewBoolLiteral(true), true
		}
		return s.makeIsNotNull(ref), true
	}
	return nil, false
}

// rangesEqual reports whether a and b contain exactly the same intervals.
// RangeSet has no Equal method of its own since comparing endpoint-by-
// endpoint is only useful to this residue check, not to the value
// library's own API surface.
func rangesEqual(a, b *sarg.RangeSet[types.Datum]) bool {
	ai, bi := a.Intervals(), b.Intervals()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if !boundsEqual(ai[i].Lo, bi[i].Lo) || !boundsEqual(ai[i].Hi, bi[i].Hi) {
			return false
		}
	}
	return true
}

func boundsEqual(a, b *sarg.Bound[types.Datum]) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Inclusive == b.Inclusive && datumComparator(a.Value, b.Value) == 0
}

// normalizeInLists rewrites each `ref IN (lit, ...)` / `ref NOT IN (lit,
// ...)` term in terms, when its list has at most max entries (max<=0
// means unbounded), into a SEARCH call over the equivalent points Sarg,
// mirroring the teacher's inListToOrList staging so collectSarg's
// existing SEARCH recognition folds the list the same way it folds any
// other range term instead of leaving it opaque. Equality disjunctions
// (`x = a OR x = b`) never need a separate folding pass: collectSarg
// already Unions their per-term Equals ranges into the same merged Sarg.
func (s *Simplifier) normalizeInLists(terms []expression.Node, max int) []expression.Node {
	out := make([]expression.Node, len(terms))
	copy(out, terms)
	for i, t := range terms {
		c, ok := t.(*expression.CallExpr)
		if !ok || (c.K != expression.In && c.K != expression.NotIn) || len(c.Operands) < 2 {
			continue
		}
		ref := c.Operands[0]
		if !isRefLike(ref) {
			continue
		}
		items := c.Operands[1:]
		if max > 0 && len(items) > max {
			continue
		}
		values := make([]types.Datum, 0, len(items))
		allLiteral := true
		for _, op := range items {
			lit, ok := op.(*expression.LiteralExpr)
			if !ok {
				allLiteral = false
				break
			}
			d, ok := lit.Datum()
			if !ok {
				allLiteral = false
				break
			}
			values = append(values, d)
		}
		if !allLiteral {
			continue
		}
		sv := sarg.New(datumComparator, sarg.Points(datumComparator, values...), sarg.NullAsUnknown)
		if c.K == expression.NotIn {
			sv = sv.Negate()
		}
		out[i] = expression.NewCall(expression.Search, s.boolType(ref.Type().Nullable), ref,
			s.builder.MakeSearchArgumentLiteral(sv, ref.Type()))
	}
	return out
}

// negateSearchLiteral builds the negated Sarg literal for NOT SEARCH(x, s)
// → SEARCH(x, s.negate()).
func (s *Simplifier) negateSearchLiteral(c *expression.CallExpr) (expression.Node, bool) {
	sv, typ, ok := searchSarg(c)
	if !ok {
		return nil, false
	}
	negated := sv.Negate()
	return expression.NewCall(expression.Search, c.Typ, c.Operands[0],
		s.builder.MakeSearchArgumentLiteral(negated, typ)), true
}
