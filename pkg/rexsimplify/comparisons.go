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

import "github.com/nobigo/rexsimplify/pkg/expression"

// simplifyComparison simplifies both operands, then tries (in order) the
// reflexive identity `x op x`, the boolean-vs-boolean-literal rewrite
// `x = TRUE/FALSE` / `x <> TRUE/FALSE`, the residue check against the
// predicate list's known ranges, and constant folding through the
// Executor when both sides reduced to literals.
func (s *Simplifier) simplifyComparison(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	left, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	right, err := s.simplify(c.Operands[1], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}

	if left.Equal(right) && s.isSafeExpression(left) {
		if val, needsNotNull, ok := reflexiveComparison(c.K); ok {
			if !needsNotNull || !left.Type().Nullable || s.predicates.IsEffectivelyNotNull(left, s.isStrictlyNotNullGiven) {
				return expression.NewBoolLiteral(val), nil
			}
		}
	}

	if rewritten, ok := rewriteBooleanComparison(s, c.K, left, right); ok {
		return rewritten, nil
	}

	rebuilt := expression.Node(c)
	if !left.Equal(c.Operands[0]) || !right.Equal(c.Operands[1]) {
		rebuilt = expression.NewCall(c.K, c.Typ, left, right)
	}

	if cmp, ok := ComparisonOf(rebuilt); ok {
		if d, ok := cmp.Literal.Datum(); ok {
			if r, ok := rangeFromComparison(cmp.Kind, d); ok {
				if resolved, ok := s.residueFor(cmp.Ref, r); ok {
					return resolved, nil
				}
			}
		}
	}

	if isLiteralNode(left) && isLiteralNode(right) {
		reduced, rerr := s.executor.Reduce(s.builder, []expression.Node{rebuilt})
		if rerr != nil {
			return nil, rerr
		}
		if len(reduced) == 1 {
			return reduced[0], nil
		}
	}

	if rebuilt.Equal(c) {
		return c, nil
	}
	return rebuilt, nil
}

// simplifyBetween simplifies a BETWEEN's operands, then applies the same
// predicate-list residue check simplifyComparison applies to ordinary
// comparisons: a BETWEEN that contradicts, or is already implied by, a
// known range collapses to FALSE or IS NOT NULL(ref) respectively.
func (s *Simplifier) simplifyBetween(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	rebuilt, err := s.simplifyGenericNode(c, m)
	if err != nil {
		return nil, err
	}
	bc, ok := rebuilt.(*expression.CallExpr)
	if !ok {
		return rebuilt, nil
	}
	bt, ok := BetweenOf(bc)
	if !ok {
		return rebuilt, nil
	}
	lo, lok := bt.Lo.Datum()
	hi, hok := bt.Hi.Datum()
	if !lok || !hok {
		return rebuilt, nil
	}
	if resolved, ok := s.residueFor(bt.Ref, rangeFromBetween(lo, hi)); ok {
		return resolved, nil
	}
	return rebuilt, nil
}

func isLiteralNode(n expression.Node) bool {
	_, ok := n.(*expression.LiteralExpr)
	return ok
}

// reflexiveComparison gives `x op x`'s constant value, if one exists.
// IS [NOT] DISTINCT FROM is null-safe and always constant; the strict
// comparisons are constant only when x is known never to be NULL (a
// nullable x makes `x op x` evaluate to NULL rather than the listed
// value, which needsNotNull signals to the caller).
func reflexiveComparison(k expression.Kind) (value, needsNotNull, ok bool) {
	switch k {
	case expression.IsDistinctFrom:
		return false, false, true
	case expression.IsNotDistinctFrom:
		return true, false, true
	case expression.Equals, expression.LessThanOrEqual, expression.GreaterThanOrEqual:
		return true, true, true
	case expression.NotEquals, expression.LessThan, expression.GreaterThan:
		return false, true, true
	default:
		return false, false, false
	}
}

// rewriteBooleanComparison rewrites a boolean operand compared against a
// boolean literal into the operand itself or its negation. Both are
// exact, null-preserving identities (`x = TRUE` = x, `x = FALSE` = NOT x,
// `x <> TRUE` = NOT x, `x <> FALSE` = x, each checked against x
// NULL/TRUE/FALSE directly), unlike the non-null-preserving IS TRUE/IS
// FALSE family.
func rewriteBooleanComparison(s *Simplifier, k expression.Kind, left, right expression.Node) (expression.Node, bool) {
	if !left.Type().IsBoolean() {
		return nil, false
	}
	lit, ok := right.(*expression.LiteralExpr)
	if !ok || lit.IsNull() {
		return nil, false
	}
	d, ok := lit.Datum()
	if !ok {
		return nil, false
	}
	bv, err := d.ToBool()
	if err != nil {
		return nil, false
	}
	switch k {
	case expression.Equals:
		if bv {
			return left, true
		}
		return s.makeNot(left), true
	case expression.NotEquals:
		if bv {
			return s.makeNot(left), true
		}
		return left, true
	default:
		return nil, false
	}
}
