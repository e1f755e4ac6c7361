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

// simplifyIsPredicate simplifies the IS_NULL/IS_NOT_NULL/IS_TRUE/
// IS_NOT_TRUE/IS_FALSE/IS_NOT_FALSE family: folds a literal operand
// directly, flips across an inner NOT (`NOT x IS TRUE` → `x IS FALSE`),
// and pushes IS [NOT] NULL through a strict (Strong-null PolicyAny) call:
// IS NULL becomes the OR of IS NULL over that call's operands, and
// IS NOT NULL becomes the NOT of that OR.
func (s *Simplifier) simplifyIsPredicate(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	operand, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}

	if lit, ok := operand.(*expression.LiteralExpr); ok {
		if val, ok := evalIsPredicateLiteral(c.K, lit); ok {
			return expression.NewBoolLiteral(val), nil
		}
	}

	if inner, ok := operand.(*expression.CallExpr); ok {
		if inner.K == expression.Not && len(inner.Operands) == 1 {
			if flipped, ok := flipIsKindAcrossNot(c.K); ok {
				return s.simplify(expression.NewCall(flipped, c.Typ, inner.Operands[0]), m)
			}
		}
		if (c.K == expression.IsNull || c.K == expression.IsNotNull) && PolicyOf(inner) == PolicyAny {
			parts := make([]expression.Node, len(inner.Operands))
			for i, op := range inner.Operands {
				parts[i] = s.makeIsNull(op)
			}
			pushed := expression.ComposeDisjunction(parts...)
			if c.K == expression.IsNotNull {
				pushed = s.makeNot(pushed)
			}
			return s.simplify(pushed, m)
		}
	}

	if operand.Equal(c.Operands[0]) {
		return c, nil
	}
	return expression.NewCall(c.K, c.Typ, operand), nil
}

// evalIsPredicateLiteral folds an IS-predicate over a literal operand. The
// second result is false when IS [NOT] TRUE/FALSE meets a literal that is
// not a boolean-convertible Datum, or when k is not an IS-predicate.
func evalIsPredicateLiteral(k expression.Kind, lit *expression.LiteralExpr) (bool, bool) {
	if lit.IsNull() {
		switch k {
		case expression.IsNull:
			return true, true
		case expression.IsNotNull:
			return false, true
		case expression.IsTrue, expression.IsFalse:
			return false, true
		case expression.IsNotTrue, expression.IsNotFalse:
			return true, true
		}
		return false, false
	}
	switch k {
	case expression.IsNull:
		return false, true
	case expression.IsNotNull:
		return true, true
	}
	d, ok := lit.Datum()
	if !ok {
		return false, false
	}
	bv, err := d.ToBool()
	if err != nil {
		return false, false
	}
	switch k {
	case expression.IsTrue:
		return bv, true
	case expression.IsNotTrue:
		return !bv, true
	case expression.IsFalse:
		return !bv, true
	case expression.IsNotFalse:
		return bv, true
	default:
		return false, false
	}
}

// flipIsKindAcrossNot gives the IS-kind to use when its operand is itself
// a NOT: IS [NOT] NULL passes straight through (NOT doesn't change
// nullness), IS TRUE/IS FALSE and their NOT counterparts swap.
func flipIsKindAcrossNot(k expression.Kind) (expression.Kind, bool) {
	switch k {
	case expression.IsNull, expression.IsNotNull:
		return k, true
	case expression.IsTrue:
		return expression.IsFalse, true
	case expression.IsFalse:
		return expression.IsTrue, true
	case expression.IsNotTrue:
		return expression.IsNotFalse, true
	case expression.IsNotFalse:
		return expression.IsNotTrue, true
	default:
		return expression.UnknownKind, false
	}
}
