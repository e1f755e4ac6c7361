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
	"fmt"
	"strings"

	"github.com/nobigo/rexsimplify/pkg/expression"
	"github.com/nobigo/rexsimplify/pkg/types"
)

// simplifyCoalesce drops literal-NULL operands (they never contribute),
// stops at the first non-null literal (every operand after it is dead),
// and dedupes structurally-equal survivors.
func (s *Simplifier) simplifyCoalesce(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	var out []expression.Node
	for _, op := range c.Operands {
		so, err := s.simplify(op, expression.UnknownAsUnknown)
		if err != nil {
			return nil, err
		}
		if lit, ok := so.(*expression.LiteralExpr); ok && lit.IsNull() {
			continue
		}
		out = append(out, so)
		if isLiteralNode(so) {
			break
		}
	}
	out = dedupeNodes(out)
	if len(out) == 0 {
		return s.builder.MakeNullLiteral(c.Typ), nil
	}
	if len(out) == 1 {
		return out[0], nil
	}
	result := expression.NewCall(expression.Coalesce, c.Typ, out...)
	if result.Equal(c) {
		return c, nil
	}
	return result, nil
}

// simplifyLike recognizes only the exact one-character wildcard pattern
// "%" with no other operands (an open question left in the design: richer
// pattern analysis, e.g. stripping a literal prefix, is not attempted).
// `x LIKE '%'` is TRUE whenever x is non-null and NULL when x is null;
// preserved exactly as `x IS NOT NULL OR NULL` rather than collapsed to a
// bare `x IS NOT NULL`, which would silently turn a NULL input into FALSE.
func (s *Simplifier) simplifyLike(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	left, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	if len(c.Operands) == 2 && c.Extra["escape"] == nil {
		if lit, ok := c.Operands[1].(*expression.LiteralExpr); ok && !lit.IsNull() {
			if d, ok := lit.Datum(); ok && d.Kind() == types.KindString && d.StringValue() == "%" {
				if !left.Type().Nullable {
					return expression.NewBoolLiteral(true), nil
				}
				return expression.NewCall(expression.Or, s.boolType(true),
					s.makeIsNotNull(left), expression.NewNullLiteral(s.boolType(true))), nil
			}
		}
	}
	if left.Equal(c.Operands[0]) {
		return c, nil
	}
	newOperands := append([]expression.Node{left}, c.Operands[1:]...)
	return c.WithOperands(newOperands...), nil
}

// simplifyArithmetic simplifies both operands of a binary arithmetic call,
// folds a literal/literal pair through the Executor, and otherwise applies
// the additive/multiplicative identities (x+0, x-0, x*1, x/1, and x*0 when
// the non-zero side is provably non-null).
func (s *Simplifier) simplifyArithmetic(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	if len(c.Operands) != 2 {
		return s.simplifyGenericNode(c, m)
	}
	left, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	right, err := s.simplify(c.Operands[1], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}

	if isLiteralNode(left) && isLiteralNode(right) {
		rebuilt := expression.NewCall(c.K, c.Typ, left, right)
		reduced, rerr := s.executor.Reduce(s.builder, []expression.Node{rebuilt})
		if rerr != nil {
			return nil, rerr
		}
		if len(reduced) == 1 {
			return reduced[0], nil
		}
	}

	if identity, ok := s.arithmeticIdentity(c.K, c.Typ, left, right); ok {
		return identity, nil
	}

	rebuilt := expression.Node(c)
	if !left.Equal(c.Operands[0]) || !right.Equal(c.Operands[1]) {
		rebuilt = expression.NewCall(c.K, c.Typ, left, right)
	}
	if rebuilt.Equal(c) {
		return c, nil
	}
	return rebuilt, nil
}

func (s *Simplifier) arithmeticIdentity(k expression.Kind, typ types.FieldType, left, right expression.Node) (expression.Node, bool) {
	switch k {
	case expression.Plus, expression.CheckedPlus:
		if isLiteralNumber(right, 0) {
			return left, true
		}
		if isLiteralNumber(left, 0) {
			return right, true
		}
	case expression.Minus, expression.CheckedMinus:
		if isLiteralNumber(right, 0) {
			return left, true
		}
	case expression.Times, expression.CheckedTimes:
		if isLiteralNumber(right, 1) {
			return left, true
		}
		if isLiteralNumber(left, 1) {
			return right, true
		}
		if isLiteralNumber(right, 0) && s.predicates.IsEffectivelyNotNull(left, s.isStrictlyNotNullGiven) {
			return expression.NewLiteral(types.NewIntDatum(0), typ.WithNullable(false)), true
		}
		if isLiteralNumber(left, 0) && s.predicates.IsEffectivelyNotNull(right, s.isStrictlyNotNullGiven) {
			return expression.NewLiteral(types.NewIntDatum(0), typ.WithNullable(false)), true
		}
	case expression.Divide, expression.CheckedDivide:
		if isLiteralNumber(right, 1) {
			return left, true
		}
	}
	return nil, false
}

func isLiteralNumber(n expression.Node, target float64) bool {
	lit, ok := n.(*expression.LiteralExpr)
	if !ok || lit.IsNull() {
		return false
	}
	d, ok := lit.Datum()
	if !ok {
		return false
	}
	switch d.Kind() {
	case types.KindInt64:
		return float64(d.Int64()) == target
	case types.KindFloat64:
		return d.Float64() == target
	default:
		return false
	}
}

// simplifyUnary implements `+x → x` (unary plus is always identity) and
// `-(-x) → x` (double negation), plus literal folding through the
// Executor.
func (s *Simplifier) simplifyUnary(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	operand, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	if c.K == expression.PlusPrefix {
		return operand, nil
	}
	if inner, ok := operand.(*expression.CallExpr); ok && inner.K == expression.MinusPrefix && len(inner.Operands) == 1 {
		return inner.Operands[0], nil
	}
	if isLiteralNode(operand) {
		rebuilt := expression.NewCall(c.K, c.Typ, operand)
		reduced, rerr := s.executor.Reduce(s.builder, []expression.Node{rebuilt})
		if rerr != nil {
			return nil, rerr
		}
		if len(reduced) == 1 {
			return reduced[0], nil
		}
	}
	if operand.Equal(c.Operands[0]) {
		return c, nil
	}
	return expression.NewCall(c.K, c.Typ, operand), nil
}

// timeUnitRanks orders CEIL/FLOOR's rounding units from finest to
// coarsest, used by simplifyCeilFloor's unit roll-up.
var timeUnitRanks = map[string]int{
	"SECOND":  1,
	"MINUTE":  2,
	"HOUR":    3,
	"DAY":     4,
	"WEEK":    5,
	"MONTH":   6,
	"QUARTER": 7,
	"YEAR":    8,
}

func timeUnitRank(unit string) (int, bool) {
	r, ok := timeUnitRanks[strings.ToUpper(unit)]
	return r, ok
}

// simplifyCeilFloor collapses nested same-kind rounding to coarser-or-equal
// units: `FLOOR(FLOOR(t, HOUR), DAY) → FLOOR(t, DAY)`, since rounding to
// DAY after already rounding to HOUR is redundant. CEIL and FLOOR do not
// collapse into each other.
func (s *Simplifier) simplifyCeilFloor(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	if len(c.Operands) != 1 {
		return s.simplifyGenericNode(c, m)
	}
	val, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	unit, _ := c.Extra["unit"].(string)
	if inner, ok := val.(*expression.CallExpr); ok && inner.K == c.K && len(inner.Operands) == 1 {
		innerUnit, _ := inner.Extra["unit"].(string)
		if outerRank, ok1 := timeUnitRank(unit); ok1 {
			if innerRank, ok2 := timeUnitRank(innerUnit); ok2 && outerRank >= innerRank {
				collapsed := expression.NewCallWithExtra(c.K, c.Typ, c.Extra, inner.Operands[0])
				return s.simplify(collapsed, m)
			}
		}
	}
	if val.Equal(c.Operands[0]) {
		return c, nil
	}
	return c.WithOperands(val), nil
}

// simplifyTrim collapses `TRIM(TRIM(x, cutset), cutset) → TRIM(x, cutset)`
// (and the LTRIM/RTRIM equivalents) when both calls trim the same cutset;
// a mismatched cutset is left alone since the outer trim may still strip
// characters the inner one didn't.
func (s *Simplifier) simplifyTrim(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	val, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	if inner, ok := val.(*expression.CallExpr); ok && inner.K == c.K && sameCutset(c.Extra, inner.Extra) {
		return inner, nil
	}
	if val.Equal(c.Operands[0]) {
		return c, nil
	}
	return c.WithOperands(val), nil
}

func sameCutset(a, b map[string]any) bool {
	return fmt.Sprint(a["cutset"]) == fmt.Sprint(b["cutset"])
}

// simplifyM2V collapses a measure-to-value lift over a value-to-measure
// drop: `M2V(V2M(x)) → x`.
func (s *Simplifier) simplifyM2V(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	operand, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}
	if inner, ok := operand.(*expression.CallExpr); ok && inner.K == expression.V2M && len(inner.Operands) == 1 {
		return s.simplify(inner.Operands[0], m)
	}
	if operand.Equal(c.Operands[0]) {
		return c, nil
	}
	return expression.NewCall(c.K, c.Typ, operand), nil
}
