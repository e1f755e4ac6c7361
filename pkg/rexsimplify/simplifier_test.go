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

package rexsimplify_test

import (
	"testing"

	"github.com/nobigo/rexsimplify/pkg/expression"
	"github.com/nobigo/rexsimplify/pkg/rexsimplify"
	"github.com/nobigo/rexsimplify/pkg/testutil"
	"github.com/nobigo/rexsimplify/pkg/types"
	"github.com/stretchr/testify/require"
)

func newSimplifier() *rexsimplify.Simplifier {
	return rexsimplify.NewSimplifier(
		expression.DefaultBuilder{},
		testutil.TypeFactory{},
		testutil.CoercionRule{},
		testutil.Executor{},
		rexsimplify.DefaultConfig(),
	)
}

func intRef(idx int, nullable bool) *expression.InputRefExpr {
	if nullable {
		return expression.NewInputRef(idx, types.NewNullable(types.Int))
	}
	return expression.NewInputRef(idx, types.New(types.Int))
}

func intLit(v int64) *expression.LiteralExpr {
	return expression.NewLiteral(types.NewIntDatum(v), types.New(types.Int))
}

func boolRef(idx int, nullable bool) *expression.InputRefExpr {
	if nullable {
		return expression.NewInputRef(idx, types.NewNullable(types.Boolean))
	}
	return expression.NewInputRef(idx, types.New(types.Boolean))
}

func boolTy(nullable bool) types.FieldType {
	return types.FieldType{SQLKind: types.Boolean, Nullable: nullable}
}

func TestSimplifyAndContradiction(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, false)
	eq1 := expression.NewCall(expression.Equals, boolTy(false), x, intLit(1))
	ne1 := expression.NewCall(expression.NotEquals, boolTy(false), x, intLit(1))
	and := expression.NewCall(expression.And, boolTy(false), eq1, ne1)

	got, err := s.Simplify(and)
	require.NoError(t, err)
	lit, ok := got.(*expression.LiteralExpr)
	require.True(t, ok, "expected a literal, got %s", got)
	d, ok := lit.Datum()
	require.True(t, ok)
	b, err := d.ToBool()
	require.NoError(t, err)
	require.False(t, b)
}

func TestSimplifyOrDedupesEqualTerms(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, false)
	eq1a := expression.NewCall(expression.Equals, boolTy(false), x, intLit(1))
	eq1b := expression.NewCall(expression.Equals, boolTy(false), x, intLit(1))
	or := expression.NewCall(expression.Or, boolTy(false), eq1a, eq1b)

	got, err := s.Simplify(or)
	require.NoError(t, err)
	require.True(t, eq1a.Equal(got), "expected %s, got %s", eq1a, got)
}

func TestSimplifyNotInvolution(t *testing.T) {
	s := newSimplifier()
	x := boolRef(0, false)
	notNotX := expression.NewCall(expression.Not, boolTy(false), expression.NewCall(expression.Not, boolTy(false), x))

	got, err := s.Simplify(notNotX)
	require.NoError(t, err)
	require.True(t, x.Equal(got), "expected %s, got %s", x, got)
}

func TestSimplifyDeMorganPushesNotThroughAnd(t *testing.T) {
	s := newSimplifier()
	a := boolRef(0, false)
	b := boolRef(1, false)
	and := expression.NewCall(expression.And, boolTy(false), a, b)
	not := expression.NewCall(expression.Not, boolTy(false), and)

	got, err := s.Simplify(not)
	require.NoError(t, err)
	c, ok := got.(*expression.CallExpr)
	require.True(t, ok)
	require.Equal(t, expression.Or, c.K)
}

// TestSimplifyOrOfTwoNotEqualsPreservesNull exercises the scenario that
// exposed the andNullAs/orNullAs fix: `x <> 1 OR x <> 2` over a nullable x
// must stay NULL when x is NULL, not collapse to a bare IS NOT NULL.
func TestSimplifyOrOfTwoNotEqualsPreservesNull(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, true)
	ne1 := expression.NewCall(expression.NotEquals, boolTy(true), x, intLit(1))
	ne2 := expression.NewCall(expression.NotEquals, boolTy(true), x, intLit(2))
	or := expression.NewCall(expression.Or, boolTy(true), ne1, ne2)

	got, err := s.Simplify(or)
	require.NoError(t, err)
	c, ok := got.(*expression.CallExpr)
	require.True(t, ok, "expected an OR call, got %s", got)
	require.Equal(t, expression.Or, c.K)
	require.Len(t, c.Operands, 2)

	isNotNull, ok := c.Operands[0].(*expression.CallExpr)
	require.True(t, ok)
	require.Equal(t, expression.IsNotNull, isNotNull.K)
	require.True(t, x.Equal(isNotNull.Operands[0]))

	nullLit, ok := c.Operands[1].(*expression.LiteralExpr)
	require.True(t, ok)
	require.True(t, nullLit.IsNull())
}

func TestSimplifyBooleanCaseFlattensToOr(t *testing.T) {
	s := newSimplifier()
	a := boolRef(0, false)
	b := boolRef(1, false)
	caseExpr := expression.NewCall(expression.Case, boolTy(false),
		a, expression.NewBoolLiteral(true),
		b, expression.NewBoolLiteral(true),
		expression.NewBoolLiteral(false))

	got, err := s.Simplify(caseExpr)
	require.NoError(t, err)
	require.True(t, expression.ComposeDisjunction(a, b).Equal(got), "expected a OR b, got %s", got)
}

func TestSimplifyCastDropsNoopNullabilityWiden(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, false)
	cast := expression.NewCall(expression.Cast, types.NewNullable(types.Int), x)

	got, err := s.Simplify(cast)
	require.NoError(t, err)
	require.True(t, x.Equal(got), "expected %s, got %s", x, got)
}

func TestSimplifyComparisonBooleanEqualsTrueIsIdentity(t *testing.T) {
	s := newSimplifier()
	x := boolRef(0, false)
	eqTrue := expression.NewCall(expression.Equals, boolTy(false), x, expression.NewBoolLiteral(true))

	got, err := s.Simplify(eqTrue)
	require.NoError(t, err)
	require.True(t, x.Equal(got), "expected %s, got %s", x, got)
}

func TestSimplifyComparisonBooleanEqualsFalseNegates(t *testing.T) {
	s := newSimplifier()
	x := boolRef(0, false)
	eqFalse := expression.NewCall(expression.Equals, boolTy(false), x, expression.NewBoolLiteral(false))

	got, err := s.Simplify(eqFalse)
	require.NoError(t, err)
	c, ok := got.(*expression.CallExpr)
	require.True(t, ok)
	require.Equal(t, expression.Not, c.K)
	require.True(t, x.Equal(c.Operands[0]))
}

func TestSimplifyArithmeticAdditiveIdentity(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, false)
	plusZero := expression.NewCall(expression.Plus, types.New(types.Int), x, intLit(0))

	got, err := s.Simplify(plusZero)
	require.NoError(t, err)
	require.True(t, x.Equal(got), "expected %s, got %s", x, got)
}

func TestSimplifyCoalesceDropsNullsAndKeepsFirstSurvivor(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, true)
	coalesce := expression.NewCall(expression.Coalesce, types.New(types.Int),
		expression.NewNullLiteral(types.New(types.Int)), x, expression.NewNullLiteral(types.New(types.Int)))

	got, err := s.Simplify(coalesce)
	require.NoError(t, err)
	require.True(t, x.Equal(got), "expected %s, got %s", x, got)
}

func TestSimplifyLikeAllWildcardPreservesNull(t *testing.T) {
	s := newSimplifier()
	x := expression.NewInputRef(0, types.NewNullable(types.VarChar))
	like := expression.NewCall(expression.Like, boolTy(true), x,
		expression.NewLiteral(types.NewStringDatum("%"), types.New(types.VarChar)))

	got, err := s.Simplify(like)
	require.NoError(t, err)
	c, ok := got.(*expression.CallExpr)
	require.True(t, ok, "expected an OR call, got %s", got)
	require.Equal(t, expression.Or, c.K)
}

func TestSimplifyUnknownAsFalseTurnsStrictNullIntoFalse(t *testing.T) {
	s := newSimplifier()
	x := intRef(0, true)
	eq := expression.NewCall(expression.Equals, boolTy(true), x, expression.NewNullLiteral(types.New(types.Int)))

	got, err := s.SimplifyUnknownAsFalse(eq)
	require.NoError(t, err)
	lit, ok := got.(*expression.LiteralExpr)
	require.True(t, ok)
	d, ok := lit.Datum()
	require.True(t, ok)
	b, err := d.ToBool()
	require.NoError(t, err)
	require.False(t, b)
}

func TestSimplifyParanoidAcceptsCorrectSimplification(t *testing.T) {
	s := newSimplifier().WithParanoid(true)
	x := intRef(0, false)
	plusZero := expression.NewCall(expression.Plus, types.New(types.Int), x, intLit(0))

	_, err := s.Simplify(plusZero)
	require.NoError(t, err)
}
