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

// simplifyCall dispatches on c.K. Each case owns recursing into its own operands
// under the contextual UnknownAs its rule requires; simplifyGenericNode
// is the uniform fallback for everything else.
func (s *Simplifier) simplifyCall(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	switch c.K {
	case expression.And, expression.Or:
		return s.simplifyBoolean(c, m)
	case expression.Not:
		return s.simplifyNot(c, m)
	case expression.Case:
		return s.simplifyCase(c, m)
	case expression.Coalesce:
		return s.simplifyCoalesce(c, m)
	case expression.Cast, expression.SafeCast:
		return s.simplifyCast(c, m)
	case expression.IsNull, expression.IsNotNull, expression.IsTrue, expression.IsNotTrue,
		expression.IsFalse, expression.IsNotFalse:
		return s.simplifyIsPredicate(c, m)
	case expression.Equals, expression.NotEquals, expression.LessThan, expression.LessThanOrEqual,
		expression.GreaterThan, expression.GreaterThanOrEqual, expression.IsDistinctFrom,
		expression.IsNotDistinctFrom:
		return s.simplifyComparison(c, m)
	case expression.Search:
		return s.simplifySearch(c, m)
	case expression.Like:
		return s.simplifyLike(c, m)
	case expression.Plus, expression.Minus, expression.Times, expression.Divide,
		expression.CheckedPlus, expression.CheckedMinus, expression.CheckedTimes, expression.CheckedDivide:
		return s.simplifyArithmetic(c, m)
	case expression.PlusPrefix, expression.MinusPrefix:
		return s.simplifyUnary(c, m)
	case expression.Ceil, expression.Floor:
		return s.simplifyCeilFloor(c, m)
	case expression.Trim, expression.LTrim, expression.RTrim:
		return s.simplifyTrim(c, m)
	case expression.M2V:
		return s.simplifyM2V(c, m)
	case expression.In, expression.NotIn:
		return s.simplifyGenericNode(c, m)
	case expression.Between:
		return s.simplifyBetween(c, m)
	default:
		return s.simplifyGenericNode(c, m)
	}
}

// simplifyGenericNode recursively simplifies operands under
// UnknownAs.UNKNOWN, returning the input node unchanged (identity
// preserved) if no operand changed.
func (s *Simplifier) simplifyGenericNode(c *expression.CallExpr, _ expression.UnknownAs) (expression.Node, error) {
	changed := false
	newOperands := make([]expression.Node, len(c.Operands))
	for i, op := range c.Operands {
		simplified, err := s.simplify(op, expression.UnknownAsUnknown)
		if err != nil {
			return nil, err
		}
		newOperands[i] = simplified
		if simplified != op && !simplified.Equal(op) {
			changed = true
		}
	}
	if !changed {
		return c, nil
	}
	return c.WithOperands(newOperands...), nil
}
