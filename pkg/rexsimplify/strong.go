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

// Policy classifies how an expression kind's nullability relates to its
// operands'.
type Policy uint8

const (
	// PolicyNotNull: the result is never null, regardless of operands.
	PolicyNotNull Policy = iota
	// PolicyAny: the result is null iff any operand is null (strict).
	PolicyAny
	// PolicyAsIs: unknown; conservatively assume it can be anything.
	PolicyAsIs
	// PolicyCustom: handled case-by-case (literals, CAST, CASE,
	// AND/OR/COALESCE/SEARCH/M2V/V2M all have independent, non-strict
	// nullability rules).
	PolicyCustom
)

var anyPolicyKinds = map[expression.Kind]bool{
	expression.Not:                true,
	expression.Equals:             true,
	expression.NotEquals:          true,
	expression.LessThan:           true,
	expression.LessThanOrEqual:    true,
	expression.GreaterThan:        true,
	expression.GreaterThanOrEqual: true,
	expression.Like:               true,
	expression.In:                 true,
	expression.NotIn:              true,
	expression.Plus:               true,
	expression.Minus:              true,
	expression.Times:              true,
	expression.Divide:             true,
	expression.CheckedPlus:        true,
	expression.CheckedMinus:       true,
	expression.CheckedTimes:       true,
	expression.CheckedDivide:      true,
	expression.PlusPrefix:         true,
	expression.MinusPrefix:        true,
	expression.Ceil:               true,
	expression.Floor:              true,
	expression.Trim:               true,
	expression.LTrim:              true,
	expression.RTrim:              true,
	expression.Between:            true,
}

var notNullPolicyKinds = map[expression.Kind]bool{
	expression.IsNull:             true,
	expression.IsNotNull:          true,
	expression.IsTrue:             true,
	expression.IsNotTrue:          true,
	expression.IsFalse:            true,
	expression.IsNotFalse:         true,
	expression.IsDistinctFrom:     true,
	expression.IsNotDistinctFrom:  true,
}

// PolicyOf implements the strong-null analyzer's kind classification.
// It is a pure function over the tagged variant, never dynamic
// dispatch.
func PolicyOf(e expression.Node) Policy {
	switch n := e.(type) {
	case *expression.LiteralExpr:
		return PolicyCustom // a literal checks its own value (IsNull()).
	case *expression.InputRefExpr, *expression.FieldAccessExpr:
		return PolicyAsIs
	case *expression.CallExpr:
		if notNullPolicyKinds[n.K] {
			return PolicyNotNull
		}
		if anyPolicyKinds[n.K] {
			return PolicyAny
		}
		switch n.K {
		case expression.Cast, expression.SafeCast, expression.Case,
			expression.Coalesce, expression.Search, expression.M2V, expression.V2M,
			expression.And, expression.Or:
			return PolicyCustom
		default:
			return PolicyAsIs
		}
	default:
		return PolicyAsIs
	}
}

// IsNull conservatively reports whether e is provably NULL:
// true only for a literal NULL, or a PolicyAny call all of whose
// strictness is triggered by a provably-NULL operand.
func IsNull(e expression.Node) bool {
	switch n := e.(type) {
	case *expression.LiteralExpr:
		return n.IsNull()
	case *expression.CallExpr:
		if PolicyOf(n) != PolicyAny {
			return false
		}
		for _, op := range n.Operands {
			if IsNull(op) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// forcedNull reports whether, with every InputRefExpr whose Index is in
// mask treated as evaluating to NULL, e is forced to evaluate to NULL.
func forcedNull(e expression.Node, mask *intsets.Sparse) bool {
	switch n := e.(type) {
	case *expression.LiteralExpr:
		return n.IsNull()
	case *expression.InputRefExpr:
		return mask.Has(n.Index)
	case *expression.FieldAccessExpr:
		return forcedNull(n.Parent, mask)
	case *expression.CallExpr:
		if PolicyOf(n) != PolicyAny {
			return false
		}
		for _, op := range n.Operands {
			if forcedNull(op, mask) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// isStrictlyNotNullGiven is the third leg of
// PredicateList.IsEffectivelyNotNull: e is a deterministic call whose
// strict structure forces non-null, given what is currently known about
// its operands.
func (s *Simplifier) isStrictlyNotNullGiven(e expression.Node) bool {
	c, ok := e.(*expression.CallExpr)
	if !ok || !c.Deterministic() || PolicyOf(c) != PolicyAny {
		return false
	}
	for _, op := range c.Operands {
		if !s.predicates.IsEffectivelyNotNull(op, s.isStrictlyNotNullGiven) {
			return false
		}
	}
	return true
}

// IsNotTrue reports whether, with every InputRefExpr whose Index is in
// mask treated as NULL, e is forced to be non-true (FALSE or NULL).
// AND/OR/NOT get their own
// short-circuit-aware treatment since their null propagation is not
// simply "result is null iff any operand is null".
func IsNotTrue(e expression.Node, mask *intsets.Sparse) bool {
	if c, ok := e.(*expression.CallExpr); ok {
		switch c.K {
		case expression.And:
			for _, op := range c.Operands {
				if IsNotTrue(op, mask) {
					return true
				}
			}
			return false
		case expression.Or:
			for _, op := range c.Operands {
				if !IsNotTrue(op, mask) {
					return false
				}
			}
			return len(c.Operands) > 0
		case expression.Not:
			// NOT x is non-true iff x is NULL (forced by mask) or x is
			// TRUE; this analyzer has no evaluator, so it only catches
			// the NULL-forcing case.
			return forcedNull(c.Operands[0], mask)
		}
	}
	if lit, ok := e.(*expression.LiteralExpr); ok {
		return lit.IsNull()
	}
	return forcedNull(e, mask)
}
