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
	"golang.org/x/tools/container/intsets"
)

func (s *Simplifier) simplifyBoolean(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	if c.K == expression.And {
		return s.simplifyAnd(c, m)
	}
	return s.simplifyOr(c, m)
}

// simplifyNot implements rule 2's NOT handling: involution, De Morgan
// (pushed down as structural rewrites then handed back to simplify, which
// already knows how to re-simplify the result), negateNullSafe for
// comparisons and IS-predicates, and SEARCH negation. IN/NOT_IN are
// deliberately left unnegated.
func (s *Simplifier) simplifyNot(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	inner := c.Operands[0]
	ic, ok := inner.(*expression.CallExpr)
	if !ok {
		return s.simplifyNotGeneric(c, m)
	}

	switch ic.K {
	case expression.Not:
		return s.simplify(ic.Operands[0], m)

	case expression.And, expression.Or:
		flipped := expression.Or
		if ic.K == expression.Or {
			flipped = expression.And
		}
		negated := make([]expression.Node, len(ic.Operands))
		for i, op := range ic.Operands {
			negated[i] = s.makeNot(op)
		}
		return s.simplify(expression.NewCall(flipped, s.boolType(c.Typ.Nullable), negated...), m)

	case expression.Case:
		return s.simplifyNotCase(ic, m)

	case expression.Search:
		if negated, ok := s.negateSearchLiteral(ic); ok {
			return s.simplify(negated, m)
		}

	case expression.In, expression.NotIn:
		// Not negated per the range/set-membership carve-out; fall through
		// to generic recursion.

	default:
		if neg, ok := ic.K.NullSafeNegate(); ok && len(ic.Operands) > 0 {
			return s.simplify(expression.NewCall(neg, ic.Typ, ic.Operands...), m)
		}
	}
	return s.simplifyNotGeneric(c, m)
}

func (s *Simplifier) simplifyNotGeneric(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	simplifiedInner, err := s.simplify(c.Operands[0], m.Negate())
	if err != nil {
		return nil, err
	}
	if lit, ok := simplifiedInner.(*expression.LiteralExpr); ok {
		if lit.IsNull() {
			return s.builder.MakeNullLiteral(c.Typ), nil
		}
		if d, ok := lit.Datum(); ok {
			if bv, err := d.ToBool(); err == nil {
				return expression.NewBoolLiteral(!bv), nil
			}
		}
	}
	if simplifiedInner.Equal(c.Operands[0]) {
		return c, nil
	}
	return s.makeNot(simplifiedInner), nil
}

// simplifyAnd implements the simplifyAnd2 family: flatten,
// simplify each conjunct, split into positive terms and the operands of
// negated terms, detect contradictions (negated-term presence, strict-null
// forcing), fold comparisons into ranges, and re-emit.
func (s *Simplifier) simplifyAnd(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	terms := expression.Conjunctions(c)
	var positive, notTerms []expression.Node

	for _, t := range terms {
		st, err := s.simplify(t, m)
		if err != nil {
			return nil, err
		}
		if lit, ok := st.(*expression.LiteralExpr); ok {
			if lit.IsNull() {
				if m == expression.UnknownAsFalse {
					return expression.NewBoolLiteral(false), nil
				}
				positive = append(positive, st)
				continue
			}
			if d, ok := lit.Datum(); ok {
				if bv, err := d.ToBool(); err == nil {
					if !bv {
						return expression.NewBoolLiteral(false), nil
					}
					continue // TRUE: drop.
				}
			}
		}
		if nc, ok := st.(*expression.CallExpr); ok && nc.K == expression.Not && len(nc.Operands) == 1 {
			notTerms = append(notTerms, nc.Operands[0])
			continue
		}
		positive = append(positive, st)
	}
	notTerms = dedupeNodes(notTerms)

	// Rule 3 (simplified to exact-match subsets): a negated term whose
	// operand is itself asserted among the positive terms is a
	// contradiction.
	for _, d := range notTerms {
		if containsEqual(positive, d) {
			return expression.NewBoolLiteral(false), nil
		}
	}

	// Rule 6: negated-term detection via the comparison's own Negate kind.
	for _, t := range positive {
		cmp, ok := ComparisonOf(t)
		if !ok {
			continue
		}
		negKind, ok := cmp.Kind.Negate()
		if !ok {
			continue
		}
		negTerm := expression.NewCall(negKind, t.Type(), cmp.Ref, cmp.Literal)
		if containsEqual(positive, negTerm) {
			return expression.NewBoolLiteral(false), nil
		}
	}

	// Rule 7: strict-operand contradiction. Any IS_NULL(x) term forces x;
	// if that forces some other deterministic term non-true, contradiction.
	var mask intsets.Sparse
	for _, t := range positive {
		if isp, ok := IsPredicateOf(t); ok && isp.Kind == expression.IsNull {
			if ref, ok := isp.Operand.(*expression.InputRefExpr); ok {
				mask.Insert(ref.Index)
			}
		}
	}
	if mask.Len() > 0 {
		for _, t := range positive {
			if isp, ok := IsPredicateOf(t); ok && isp.Kind == expression.IsNull {
				continue
			}
			if c2, ok := t.(*expression.CallExpr); ok && c2.Deterministic() && IsNotTrue(t, &mask) {
				return expression.NewBoolLiteral(false), nil
			}
		}
	}

	positive = s.normalizeInLists(positive, s.cfg.MaxInListExpand)
	rangeTerms, short := s.simplifyRangeTerms(positive, true)
	if short != nil {
		return short, nil
	}
	positive = rangeTerms

	final := dedupeNodes(positive)
	for _, d := range notTerms {
		final = append(final, s.makeNot(d))
	}
	if len(final) == 0 {
		return expression.NewBoolLiteral(true), nil
	}
	result := expression.ComposeConjunction(final...)
	if result.Equal(c) {
		return c, nil
	}
	return result, nil
}

// simplifyOr implements simplifyOr: move IS_NULL terms to
// the head, fold comparisons into ranges (the disjunctive half of the
// range engine), detect `x <> A OR x <> B`, `x OR NOT x`, and
// `IS_NOT_TRUE(x) OR x`, and re-emit.
func (s *Simplifier) simplifyOr(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	terms := expression.Disjunctions(c)
	ordered := make([]expression.Node, 0, len(terms))
	var nullTerms, rest []expression.Node
	for _, t := range terms {
		if _, ok := IsPredicateOf(t); ok {
			nullTerms = append(nullTerms, t)
		} else {
			rest = append(rest, t)
		}
	}
	ordered = append(ordered, nullTerms...)
	ordered = append(ordered, rest...)

	var simplified []expression.Node
	cur := s
	for _, t := range ordered {
		st, err := cur.simplify(t, m)
		if err != nil {
			return nil, err
		}
		if lit, ok := st.(*expression.LiteralExpr); ok {
			if lit.IsNull() {
				if m == expression.UnknownAsTrue {
					return expression.NewBoolLiteral(true), nil
				}
				simplified = append(simplified, st)
				continue
			}
			if d, ok := lit.Datum(); ok {
				if bv, err := d.ToBool(); err == nil {
					if bv {
						return expression.NewBoolLiteral(true), nil
					}
					continue // FALSE: drop.
				}
			}
		}
		simplified = append(simplified, st)
		// A term not yet known FALSE becomes a predicate for the
		// remaining terms: if it turns out TRUE the whole OR is already
		// TRUE, so everything after it may assume it is not.
		cur = cur.WithPredicates(expression.NewPredicateList(cur.makeIsNotTrue(st)))
	}

	// x OR NOT x.
	for i, t := range simplified {
		nc, ok := t.(*expression.CallExpr)
		if !ok || nc.K != expression.Not {
			continue
		}
		inner := nc.Operands[0]
		for j, u := range simplified {
			if i == j {
				continue
			}
			if u.Equal(inner) {
				if !inner.Type().Nullable {
					return expression.NewBoolLiteral(true), nil
				}
				simplified[j] = s.makeIsNotNull(inner)
				simplified[i] = s.builder.MakeNullLiteral(s.boolType(true))
			}
		}
	}

	// IS_NOT_TRUE(x) OR x.
	for _, t := range simplified {
		c2, ok := t.(*expression.CallExpr)
		if !ok || c2.K != expression.IsNotTrue {
			continue
		}
		for _, u := range simplified {
			if u.Equal(c2.Operands[0]) && s.isSafeExpression(u) {
				return expression.NewBoolLiteral(true), nil
			}
		}
	}

	simplified = s.normalizeInLists(simplified, s.cfg.MaxInListExpand)
	rangeTerms, short := s.simplifyRangeTerms(simplified, false)
	if short != nil {
		return short, nil
	}
	final := dedupeNodes(rangeTerms)
	if len(final) == 0 {
		return expression.NewBoolLiteral(false), nil
	}
	result := expression.ComposeDisjunction(final...)
	if result.Equal(c) {
		return c, nil
	}
	return result, nil
}
