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

// Comparison is the shape classifier for `ref op literal` / `literal op
// ref`. Kind is already normalized to the ref-on-the-left
// form (reversed comparisons have their Kind flipped via Kind.Reverse).
type Comparison struct {
	Ref     expression.Node
	Kind    expression.Kind
	Literal *expression.LiteralExpr
}

// ComparisonOf recognizes e as a Comparison, or returns ok=false.
func ComparisonOf(e expression.Node) (Comparison, bool) {
	c, ok := e.(*expression.CallExpr)
	if !ok || !c.Kind().IsComparison() || len(c.Operands) != 2 {
		return Comparison{}, false
	}
	left, right := c.Operands[0], c.Operands[1]
	if lit, ok := right.(*expression.LiteralExpr); ok && isRefLike(left) {
		return Comparison{Ref: left, Kind: c.K, Literal: lit}, true
	}
	if lit, ok := left.(*expression.LiteralExpr); ok && isRefLike(right) {
		reversed, hasRev := c.K.Reverse()
		if !hasRev {
			return Comparison{}, false
		}
		return Comparison{Ref: right, Kind: reversed, Literal: lit}, true
	}
	return Comparison{}, false
}

// isRefLike reports whether e is usable as the "ref" side of a
// Comparison: an InputRef, a FieldAccess, or a deterministic call.
func isRefLike(e expression.Node) bool {
	switch e.Kind() {
	case expression.InputRef, expression.FieldAccess:
		return true
	default:
		return e.Deterministic() && e.Kind() != expression.Literal
	}
}

// Between is the shape classifier for `ref BETWEEN lo AND hi`, recognized
// only when lo and hi are both literals.
type Between struct {
	Ref expression.Node
	Lo  *expression.LiteralExpr
	Hi  *expression.LiteralExpr
}

// BetweenOf recognizes e as a Between, or returns ok=false.
func BetweenOf(e expression.Node) (Between, bool) {
	c, ok := e.(*expression.CallExpr)
	if !ok || c.K != expression.Between || len(c.Operands) != 3 {
		return Between{}, false
	}
	lo, lok := c.Operands[1].(*expression.LiteralExpr)
	hi, hok := c.Operands[2].(*expression.LiteralExpr)
	if !lok || !hok || !isRefLike(c.Operands[0]) {
		return Between{}, false
	}
	return Between{Ref: c.Operands[0], Lo: lo, Hi: hi}, true
}

// UsableAsOrPredicateRef reports whether ref may be used as a Comparison
// ref inside OR simplification: it must be non-nullable or
// effectively non-null per the predicate list, and any CAST on ref must
// be lossless.
func (s *Simplifier) UsableAsOrPredicateRef(ref expression.Node) bool {
	if c, ok := ref.(*expression.CallExpr); ok && (c.K == expression.Cast || c.K == expression.SafeCast) {
		if !s.isLosslessCast(c) {
			return false
		}
	}
	return s.predicates.IsEffectivelyNotNull(ref, s.isStrictlyNotNullGiven)
}

// IsPredicate is the shape classifier for `e IS NULL` / `e IS NOT NULL`.
type IsPredicate struct {
	Operand expression.Node
	Kind    expression.Kind // IsNull or IsNotNull
}

// IsPredicateOf recognizes e as an IsPredicate, or returns ok=false.
func IsPredicateOf(e expression.Node) (IsPredicate, bool) {
	c, ok := e.(*expression.CallExpr)
	if !ok || len(c.Operands) != 1 {
		return IsPredicate{}, false
	}
	if c.K != expression.IsNull && c.K != expression.IsNotNull {
		return IsPredicate{}, false
	}
	op := c.Operands[0]
	if !isRefOrAccessOrDeterministic(op) {
		return IsPredicate{}, false
	}
	return IsPredicate{Operand: op, Kind: c.K}, true
}

func isRefOrAccessOrDeterministic(e expression.Node) bool {
	switch e.Kind() {
	case expression.InputRef, expression.FieldAccess:
		return true
	default:
		return e.Deterministic()
	}
}

// safeCallKinds is the set of operator kinds isSafeExpression allows:
// arithmetic, comparisons, AND/OR/NOT, CASE, LIKE, COALESCE, trim
// variants, BETWEEN, IN, SEARCH, FLOOR, CEIL, the IS_* family. TIMESTAMP_ADD/TIMESTAMP_DIFF are covered under OtherCall by
// callers that construct them with Det=true; this module does not model
// them as distinct Kinds, to avoid growing the arithmetic surface beyond
// the operators this package actually simplifies.
var safeCallKinds = map[expression.Kind]bool{
	expression.And: true, expression.Or: true, expression.Not: true,
	expression.Case: true, expression.Like: true, expression.Coalesce: true,
	expression.Trim: true, expression.LTrim: true, expression.RTrim: true,
	expression.Between: true, expression.In: true, expression.NotIn: true,
	expression.Search: true, expression.Floor: true, expression.Ceil: true,
	expression.Equals: true, expression.NotEquals: true,
	expression.LessThan: true, expression.LessThanOrEqual: true,
	expression.GreaterThan: true, expression.GreaterThanOrEqual: true,
	expression.IsDistinctFrom: true, expression.IsNotDistinctFrom: true,
	expression.IsNull: true, expression.IsNotNull: true,
	expression.IsTrue: true, expression.IsNotTrue: true,
	expression.IsFalse: true, expression.IsNotFalse: true,
	expression.Plus: true, expression.Minus: true, expression.Times: true,
	expression.CheckedPlus: true, expression.CheckedMinus: true, expression.CheckedTimes: true,
	expression.PlusPrefix: true, expression.MinusPrefix: true,
}

// isSafeExpression reports whether e is free of partial operators: literals, input refs, field accesses, lossless casts, and
// operators flagged safe. DIVIDE/MOD (not modeled as a distinct Kind in
// this module beyond Divide/CheckedDivide) are safe only when the divisor
// is a non-null literal; window aggregates, subqueries, correlated
// variables, and dynamic parameters are unsafe.
func (s *Simplifier) isSafeExpression(e expression.Node) bool {
	switch n := e.(type) {
	case *expression.LiteralExpr, *expression.InputRefExpr:
		return true
	case *expression.FieldAccessExpr:
		return s.isSafeExpression(n.Parent)
	case *expression.CallExpr:
		switch n.K {
		case expression.Cast, expression.SafeCast:
			return s.isLosslessCast(n) && s.isSafeExpression(n.Operands[0])
		case expression.Divide, expression.CheckedDivide:
			if len(n.Operands) != 2 {
				return false
			}
			lit, ok := n.Operands[1].(*expression.LiteralExpr)
			if !ok || lit.IsNull() {
				return false
			}
			return s.isSafeExpression(n.Operands[0])
		default:
			if !safeCallKinds[n.K] {
				return false
			}
			for _, op := range n.Operands {
				if !s.isSafeExpression(op) {
					return false
				}
			}
			return true
		}
	default:
		// Over, SubQuery, DynamicParam, Lambda, and anything else opaque.
		return false
	}
}

// isLosslessCast reports whether a CAST/SAFE_CAST call is lossless: its
// source type embeds injectively into the target type. Delegated to the TypeCoercionRule collaborator when
// present; otherwise only a cast between identical SQL type kinds is
// treated as lossless.
func (s *Simplifier) isLosslessCast(c *expression.CallExpr) bool {
	if len(c.Operands) != 1 {
		return false
	}
	src := c.Operands[0].Type()
	dst := c.Typ
	if s.coercion != nil {
		return s.coercion.CanApplyFrom(src, dst)
	}
	if src.SQLKind == dst.SQLKind {
		return true
	}
	return false
}
