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
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

// Simplify rewrites e under the handle's default UnknownAs policy. If
// paranoid mode is on, the result is verified against e before being
// returned.
func (s *Simplifier) Simplify(e expression.Node) (expression.Node, error) {
	return s.SimplifyUnknownAs(e, s.cfg.DefaultUnknownAs)
}

// SimplifyUnknownAsFalse simplifies e assuming a boolean NULL result is
// interpreted as FALSE at the point of use (e.g. a WHERE clause).
func (s *Simplifier) SimplifyUnknownAsFalse(e expression.Node) (expression.Node, error) {
	return s.SimplifyUnknownAs(e, expression.UnknownAsFalse)
}

// SimplifyUnknownAs simplifies e under the given UnknownAs policy.
func (s *Simplifier) SimplifyUnknownAs(e expression.Node, m expression.UnknownAs) (expression.Node, error) {
	result, err := s.simplify(e, m)
	if err != nil {
		return nil, err
	}
	if s.cfg.Paranoid {
		if verr := s.verify(e, result, m); verr != nil {
			return nil, verr
		}
	}
	return result, nil
}

// SimplifyPreservingType simplifies e, re-wrapping the result in a CAST to
// e's original type if simplification would otherwise widen nullability.
// matchNullability, when true, additionally re-wraps if simplification
// *narrowed* nullability, so the result's nullability matches e's
// exactly rather than merely not widening it. This mirrors Calcite's
// RexSimplify.simplifyPreservingType overload set rather than collapsing
// the option into one boolean.
func (s *Simplifier) SimplifyPreservingType(e expression.Node, m expression.UnknownAs, matchNullability bool) (expression.Node, error) {
	result, err := s.SimplifyUnknownAs(e, m)
	if err != nil {
		return nil, err
	}
	orig := e.Type()
	got := result.Type()
	widened := got.Nullable && !orig.Nullable
	narrowed := !got.Nullable && orig.Nullable
	if widened || (matchNullability && narrowed) {
		return s.builder.MakeAbstractCast(orig, result), nil
	}
	return result, nil
}

// SimplifyFilterPredicates AND-combines preds, simplifies the conjunction
// under UnknownAs=FALSE, strips any nullability-only CAST, and returns nil
// iff the simplified expression is always false.
func (s *Simplifier) SimplifyFilterPredicates(preds []expression.Node) (expression.Node, error) {
	combined := expression.ComposeConjunction(preds...)
	simplified, err := s.SimplifyUnknownAs(combined, expression.UnknownAsFalse)
	if err != nil {
		return nil, err
	}
	simplified = stripNullabilityOnlyCast(simplified)
	if isAlwaysFalseLiteral(simplified) {
		return nil, nil
	}
	return simplified, nil
}

func stripNullabilityOnlyCast(e expression.Node) expression.Node {
	c, ok := e.(*expression.CallExpr)
	if !ok || (c.K != expression.Cast && c.K != expression.SafeCast) || len(c.Operands) != 1 {
		return e
	}
	inner := c.Operands[0]
	if inner.Type().EqualsSansNullability(c.Typ) {
		return inner
	}
	return e
}

func isAlwaysFalseLiteral(e expression.Node) bool {
	lit, ok := e.(*expression.LiteralExpr)
	if !ok {
		return false
	}
	d, ok := lit.Value.(interface{ IsNull() bool })
	if ok && d.IsNull() {
		return false
	}
	datum, ok := lit.Datum()
	if !ok {
		return false
	}
	b, err := datum.ToBool()
	return err == nil && !b
}

// simplify is the private, internal-contract dispatcher: structural over Kind, falling through to
// simplifyGenericNode. It logs nothing on the fast path; diagnostics only
// fire from the paranoid verifier (verify.go).
func (s *Simplifier) simplify(e expression.Node, m expression.UnknownAs) (expression.Node, error) {
	// Rule 1: strict-null pre-check.
	if s.isSafeExpression(e) && IsNull(e) {
		if e.Type().IsBoolean() {
			switch m {
			case expression.UnknownAsTrue:
				return expression.NewBoolLiteral(true), nil
			case expression.UnknownAsFalse:
				return expression.NewBoolLiteral(false), nil
			}
		}
		return s.builder.MakeNullLiteral(e.Type()), nil
	}

	// The PredicateList short-circuit: if the list already
	// asserts the exact IS_NULL/IS_NOT_NULL the query would compute,
	// short-circuit to TRUE.
	if _, ok := IsPredicateOf(e); ok && s.predicates.Asserts(e) {
		return expression.NewBoolLiteral(true), nil
	}

	switch n := e.(type) {
	case *expression.LiteralExpr:
		return n, nil
	case *expression.InputRefExpr, *expression.FieldAccessExpr, *expression.DynamicParamExpr,
		*expression.SubQueryExpr, *expression.LambdaExpr, *expression.OverExpr:
		return e, nil
	case *expression.CallExpr:
		result, err := s.simplifyCall(n, m)
		if err != nil {
			return nil, err
		}
		return result, nil
	default:
		return e, nil
	}
}

func logDiagnostic(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}
