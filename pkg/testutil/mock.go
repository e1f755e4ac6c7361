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

// Package testutil is just for test only: minimal collaborator
// implementations (TypeFactory, TypeCoercionRule, Executor) that the
// rexsimplify test suite wires up in place of a real query engine.
package testutil

import (
	"github.com/nobigo/rexsimplify/pkg/expression"
	"github.com/nobigo/rexsimplify/pkg/types"
)

var _ expression.TypeFactory = TypeFactory{}

// TypeFactory is a mocked expression.TypeFactory backed directly by
// types.FieldType's own rules.
type TypeFactory struct{}

// LeastRestrictive implements TypeFactory's LeastRestrictive method.
func (TypeFactory) LeastRestrictive(a, b types.FieldType) types.FieldType {
	return types.LeastRestrictive(a, b)
}

// EqualSansNullability implements TypeFactory's EqualSansNullability method.
func (TypeFactory) EqualSansNullability(a, b types.FieldType) bool {
	return a.EqualsSansNullability(b)
}

// BooleanType implements TypeFactory's BooleanType method.
func (TypeFactory) BooleanType(nullable bool) types.FieldType {
	return types.FieldType{SQLKind: types.Boolean, Nullable: nullable}
}

// NullableOf implements TypeFactory's NullableOf method.
func (TypeFactory) NullableOf(t types.FieldType) types.FieldType {
	return t.WithNullable(true)
}

var _ expression.TypeCoercionRule = CoercionRule{}

// CoercionRule is a mocked expression.TypeCoercionRule: permissive among
// numerics and within the same type family, matching what a SQL engine's
// implicit-cast table would allow for a lossless widening.
type CoercionRule struct{}

// CanApplyFrom implements TypeCoercionRule's CanApplyFrom method.
func (CoercionRule) CanApplyFrom(src, dst types.FieldType) bool {
	if src.SQLKind == dst.SQLKind {
		return true
	}
	if src.SQLKind.IsNumeric() && dst.SQLKind.IsNumeric() {
		return true
	}
	return false
}

var _ expression.Executor = Executor{}

// Executor is a mocked expression.Executor: it folds a call whose operands
// are all literals by evaluating it directly, and leaves everything else
// untouched. It folds binary and unary arithmetic and the six comparisons;
// a CAST or any other call is returned as is. That is enough for a test
// double to exercise the simplify → Reduce handoff realistically.
type Executor struct{}

// Reduce implements Executor's Reduce method.
func (Executor) Reduce(builder expression.Builder, exprs []expression.Node) ([]expression.Node, error) {
	out := make([]expression.Node, len(exprs))
	for i, e := range exprs {
		reduced, ok := reduceLiteralCall(e)
		if !ok {
			out[i] = e
			continue
		}
		out[i] = builder.MakeLiteral(reduced, e.Type())
	}
	return out, nil
}

func reduceLiteralCall(e expression.Node) (types.Datum, bool) {
	c, ok := e.(*expression.CallExpr)
	if !ok {
		return types.Datum{}, false
	}
	operands := make([]types.Datum, len(c.Operands))
	for i, op := range c.Operands {
		lit, ok := op.(*expression.LiteralExpr)
		if !ok {
			return types.Datum{}, false
		}
		if lit.IsNull() {
			operands[i] = types.NewNullDatum()
			continue
		}
		d, ok := lit.Datum()
		if !ok {
			return types.Datum{}, false
		}
		operands[i] = d
	}
	for _, d := range operands {
		if d.IsNull() {
			return types.NewNullDatum(), true
		}
	}
	switch c.K {
	case expression.Plus, expression.CheckedPlus:
		return numericBinop(operands, func(a, b float64) float64 { return a + b })
	case expression.Minus, expression.CheckedMinus:
		return numericBinop(operands, func(a, b float64) float64 { return a - b })
	case expression.Times, expression.CheckedTimes:
		return numericBinop(operands, func(a, b float64) float64 { return a * b })
	case expression.Divide, expression.CheckedDivide:
		if len(operands) == 2 && datumFloat(operands[1]) == 0 {
			return types.Datum{}, false
		}
		return numericBinop(operands, func(a, b float64) float64 { return a / b })
	case expression.MinusPrefix:
		if len(operands) != 1 {
			return types.Datum{}, false
		}
		return numericUnop(operands[0], func(a float64) float64 { return -a })
	case expression.PlusPrefix:
		if len(operands) != 1 {
			return types.Datum{}, false
		}
		return operands[0], true
	case expression.Equals, expression.NotEquals, expression.LessThan, expression.LessThanOrEqual,
		expression.GreaterThan, expression.GreaterThanOrEqual:
		return compareBinop(c.K, operands)
	default:
		return types.Datum{}, false
	}
}

func datumFloat(d types.Datum) float64 {
	switch d.Kind() {
	case types.KindFloat64:
		return d.Float64()
	default:
		return float64(d.Int64())
	}
}

func isFloatDatum(ds []types.Datum) bool {
	for _, d := range ds {
		if d.Kind() == types.KindFloat64 {
			return true
		}
	}
	return false
}

func numericBinop(operands []types.Datum, f func(a, b float64) float64) (types.Datum, bool) {
	if len(operands) != 2 {
		return types.Datum{}, false
	}
	r := f(datumFloat(operands[0]), datumFloat(operands[1]))
	if isFloatDatum(operands) {
		return types.NewFloatDatum(r), true
	}
	return types.NewIntDatum(int64(r)), true
}

func numericUnop(d types.Datum, f func(a float64) float64) (types.Datum, bool) {
	r := f(datumFloat(d))
	if d.Kind() == types.KindFloat64 {
		return types.NewFloatDatum(r), true
	}
	return types.NewIntDatum(int64(r)), true
}

func compareBinop(k expression.Kind, operands []types.Datum) (types.Datum, bool) {
	if len(operands) != 2 {
		return types.Datum{}, false
	}
	cmp, ok := operands[0].Compare(operands[1])
	if !ok {
		return types.Datum{}, false
	}
	switch k {
	case expression.Equals:
		return types.NewBoolDatum(cmp == 0), true
	case expression.NotEquals:
		return types.NewBoolDatum(cmp != 0), true
	case expression.LessThan:
		return types.NewBoolDatum(cmp < 0), true
	case expression.LessThanOrEqual:
		return types.NewBoolDatum(cmp <= 0), true
	case expression.GreaterThan:
		return types.NewBoolDatum(cmp > 0), true
	case expression.GreaterThanOrEqual:
		return types.NewBoolDatum(cmp >= 0), true
	default:
		return types.Datum{}, false
	}
}
