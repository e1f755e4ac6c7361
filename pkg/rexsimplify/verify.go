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
	"github.com/nobigo/rexsimplify/pkg/types"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// maxVerifyAssignments bounds the paranoid verifier's enumeration so a
// query with many referenced columns cannot blow up into an exponential
// number of evaluations.
const maxVerifyAssignments = 512

// maxValuesPerVar caps how many candidate values (beyond NULL) each
// referenced column is tried with.
const maxValuesPerVar = 4

// verify implements the paranoid verifier (four steps: variable
// extraction, bounded enumeration, three-valued interpretation, and
// assertion-failure reporting). It is diagnostic-only plumbing enabled by
// Config.Paranoid: a failure here means simplify produced a node that
// disagrees with the original under some enumerated assignment, which is
// always a bug in this package, never in the caller's tree.
//
// The interpreter (evalTernary) only understands a useful subset of
// Kinds; an assignment it cannot evaluate for either side is silently
// skipped rather than failing the whole check, a known gap (no static
// guarantee every expression shape is covered) that's acceptable because
// this path only ever runs in paranoid/test mode, never in production.
func (s *Simplifier) verify(orig, simplified expression.Node, m expression.UnknownAs) error {
	// Two identical, cache-stable trees agree under every assignment by
	// construction: skip the enumeration outright rather than memoizing
	// per-assignment results. IsCacheSensitive gates this because a
	// parameter-marker-derived node can carry the same structure across
	// two calls while its runtime value differs, so a rerun still needs
	// checking even when nothing rewrote it.
	if orig.Equal(simplified) && !orig.IsCacheSensitive() && !simplified.IsCacheSensitive() {
		return nil
	}

	refs := make(map[int]types.FieldType)
	collectRefTypes(orig, refs)
	collectRefTypes(simplified, refs)

	if len(refs) == 0 {
		return s.verifyAssignment(orig, simplified, nil)
	}

	indices := maps.Keys(refs)
	slices.Sort(indices)

	lits := make(map[int][]types.Datum)
	collectLiteralsByRef(orig, lits)
	collectLiteralsByRef(simplified, lits)

	domains := make(map[int][]types.Datum, len(indices))
	for _, idx := range indices {
		domains[idx] = candidateValues(refs[idx], lits[idx])
	}

	assignments := enumerateAssignments(indices, domains, maxVerifyAssignments)
	for _, a := range assignments {
		if err := s.verifyAssignment(orig, simplified, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simplifier) verifyAssignment(orig, simplified expression.Node, a map[int]types.Datum) error {
	origVal, origOK := evalTernary(orig, a)
	if !origOK {
		return nil
	}
	simVal, simOK := evalTernary(simplified, a)
	if !simOK {
		return nil
	}
	if ternaryEqual(origVal, simVal) {
		return nil
	}
	log.Error("rexsimplify: paranoid verification mismatch",
		zap.String("original", orig.String()),
		zap.String("simplified", simplified.String()),
		zap.String("originalValue", origVal.String()),
		zap.String("simplifiedValue", simVal.String()))
	return errors.Errorf("rexsimplify: paranoid verification failed: %s simplified to %s but evaluates to %s, not %s, under assignment %v",
		orig, simplified, simVal, origVal, a)
}

func candidateValues(typ types.FieldType, fromLiterals []types.Datum) []types.Datum {
	vals := []types.Datum{types.NewNullDatum()}
	seen := map[string]bool{"NULL": true}
	add := func(d types.Datum) {
		key := d.String()
		if seen[key] || len(vals) >= maxValuesPerVar+1 {
			return
		}
		seen[key] = true
		vals = append(vals, d)
	}
	for _, d := range fromLiterals {
		add(d)
	}
	if len(vals) == 1 {
		if typ.IsBoolean() {
			add(types.NewBoolDatum(true))
			add(types.NewBoolDatum(false))
		} else {
			add(types.NewIntDatum(0))
			add(types.NewIntDatum(1))
		}
	}
	return vals
}

func enumerateAssignments(indices []int, domains map[int][]types.Datum, maxTotal int) []map[int]types.Datum {
	assignments := []map[int]types.Datum{{}}
	for _, idx := range indices {
		var next []map[int]types.Datum
		for _, base := range assignments {
			for _, v := range domains[idx] {
				if len(next) >= maxTotal {
					return next
				}
				extended := make(map[int]types.Datum, len(base)+1)
				for k, vv := range base {
					extended[k] = vv
				}
				extended[idx] = v
				next = append(next, extended)
			}
		}
		assignments = next
	}
	return assignments
}

func collectRefTypes(e expression.Node, into map[int]types.FieldType) {
	switch n := e.(type) {
	case *expression.InputRefExpr:
		into[n.Index] = n.Typ
	case *expression.FieldAccessExpr:
		collectRefTypes(n.Parent, into)
	case *expression.CallExpr:
		for _, op := range n.Operands {
			collectRefTypes(op, into)
		}
	}
}

func collectLiteralsByRef(e expression.Node, into map[int][]types.Datum) {
	var walk func(node expression.Node, nearestRef int, have bool)
	walk = func(node expression.Node, nearestRef int, have bool) {
		switch n := node.(type) {
		case *expression.InputRefExpr:
			return
		case *expression.LiteralExpr:
			if have {
				if d, ok := n.Datum(); ok {
					into[nearestRef] = append(into[nearestRef], d)
				}
			}
		case *expression.CallExpr:
			if cmp, ok := ComparisonOf(n); ok {
				if ref, ok := cmp.Ref.(*expression.InputRefExpr); ok {
					if d, ok := cmp.Literal.Datum(); ok {
						into[ref.Index] = append(into[ref.Index], d)
					}
				}
			}
			for _, op := range n.Operands {
				walk(op, nearestRef, have)
			}
		}
	}
	walk(e, 0, false)
}

// ternaryEqual compares two interpreted values the way the verifier needs
// to: NULL must equal NULL here (the check is "did simplification change
// the value", and NULL is a value), unlike SQL's own NULL-never-equals-
// anything equality.
func ternaryEqual(a, b types.Datum) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() == b.IsNull()
	}
	c, ok := a.Compare(b)
	return ok && c == 0
}

func datumNumeric(d types.Datum) (float64, bool) {
	switch d.Kind() {
	case types.KindInt64, types.KindBool:
		return float64(d.Int64()), true
	case types.KindFloat64:
		return d.Float64(), true
	default:
		return 0, false
	}
}

// evalTernary is the verifier's three-valued interpreter: a pure, total
// function from (node, assignment) to (value, ok), where ok=false means
// "this node shape isn't modeled" rather than "this node evaluates to an
// error".
func evalTernary(e expression.Node, a map[int]types.Datum) (types.Datum, bool) {
	switch n := e.(type) {
	case *expression.LiteralExpr:
		if n.IsNull() {
			return types.NewNullDatum(), true
		}
		return n.Datum()
	case *expression.InputRefExpr:
		d, ok := a[n.Index]
		return d, ok
	case *expression.CallExpr:
		return evalCall(n, a)
	default:
		return types.Datum{}, false
	}
}

func evalCall(c *expression.CallExpr, a map[int]types.Datum) (types.Datum, bool) {
	switch c.K {
	case expression.Not:
		v, ok := evalTernary(c.Operands[0], a)
		if !ok {
			return types.Datum{}, false
		}
		if v.IsNull() {
			return v, true
		}
		bv, err := v.ToBool()
		if err != nil {
			return types.Datum{}, false
		}
		return types.NewBoolDatum(!bv), true

	case expression.And, expression.Or:
		return evalAndOr(c.K == expression.And, c.Operands, a)

	case expression.IsNull, expression.IsNotNull, expression.IsTrue, expression.IsNotTrue,
		expression.IsFalse, expression.IsNotFalse:
		v, ok := evalTernary(c.Operands[0], a)
		if !ok {
			return types.Datum{}, false
		}
		lit := expression.NewLiteral(v, c.Operands[0].Type())
		if v.IsNull() {
			lit = expression.NewNullLiteral(c.Operands[0].Type())
		}
		bv, ok := evalIsPredicateLiteral(c.K, lit)
		if !ok {
			return types.Datum{}, false
		}
		return types.NewBoolDatum(bv), true

	case expression.Equals, expression.NotEquals, expression.LessThan, expression.LessThanOrEqual,
		expression.GreaterThan, expression.GreaterThanOrEqual:
		return evalComparison(c.K, c.Operands, a)

	case expression.IsDistinctFrom, expression.IsNotDistinctFrom:
		l, lok := evalTernary(c.Operands[0], a)
		r, rok := evalTernary(c.Operands[1], a)
		if !lok || !rok {
			return types.Datum{}, false
		}
		distinct := !ternaryEqual(l, r)
		if c.K == expression.IsNotDistinctFrom {
			distinct = !distinct
		}
		return types.NewBoolDatum(distinct), true

	case expression.Coalesce:
		for _, op := range c.Operands {
			v, ok := evalTernary(op, a)
			if !ok {
				return types.Datum{}, false
			}
			if !v.IsNull() {
				return v, true
			}
		}
		return types.NewNullDatum(), true

	case expression.Case:
		return evalCase(c, a)

	case expression.Plus, expression.Minus, expression.Times, expression.Divide,
		expression.CheckedPlus, expression.CheckedMinus, expression.CheckedTimes, expression.CheckedDivide:
		return evalArithmetic(c.K, c.Operands, a)

	case expression.PlusPrefix, expression.MinusPrefix:
		v, ok := evalTernary(c.Operands[0], a)
		if !ok || v.IsNull() {
			return v, ok
		}
		if c.K == expression.PlusPrefix {
			return v, true
		}
		n, ok := datumNumeric(v)
		if !ok {
			return types.Datum{}, false
		}
		return types.NewFloatDatum(-n), true

	default:
		return types.Datum{}, false
	}
}

func evalAndOr(isAnd bool, operands []expression.Node, a map[int]types.Datum) (types.Datum, bool) {
	sawNull := false
	for _, op := range operands {
		v, ok := evalTernary(op, a)
		if !ok {
			return types.Datum{}, false
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		bv, err := v.ToBool()
		if err != nil {
			return types.Datum{}, false
		}
		if isAnd && !bv {
			return types.NewBoolDatum(false), true
		}
		if !isAnd && bv {
			return types.NewBoolDatum(true), true
		}
	}
	if sawNull {
		return types.NewNullDatum(), true
	}
	return types.NewBoolDatum(isAnd), true
}

func evalComparison(k expression.Kind, operands []expression.Node, a map[int]types.Datum) (types.Datum, bool) {
	l, lok := evalTernary(operands[0], a)
	r, rok := evalTernary(operands[1], a)
	if !lok || !rok {
		return types.Datum{}, false
	}
	if l.IsNull() || r.IsNull() {
		return types.NewNullDatum(), true
	}
	cmp, ok := l.Compare(r)
	if !ok {
		return types.Datum{}, false
	}
	var result bool
	switch k {
	case expression.Equals:
		result = cmp == 0
	case expression.NotEquals:
		result = cmp != 0
	case expression.LessThan:
		result = cmp < 0
	case expression.LessThanOrEqual:
		result = cmp <= 0
	case expression.GreaterThan:
		result = cmp > 0
	case expression.GreaterThanOrEqual:
		result = cmp >= 0
	default:
		return types.Datum{}, false
	}
	return types.NewBoolDatum(result), true
}

func evalCase(c *expression.CallExpr, a map[int]types.Datum) (types.Datum, bool) {
	n := len(c.Operands)
	for i := 0; i+1 < n-1; i += 2 {
		cv, ok := evalTernary(c.Operands[i], a)
		if !ok {
			return types.Datum{}, false
		}
		if cv.IsNull() {
			continue
		}
		bv, err := cv.ToBool()
		if err != nil {
			return types.Datum{}, false
		}
		if bv {
			return evalTernary(c.Operands[i+1], a)
		}
	}
	return evalTernary(c.Operands[n-1], a)
}

func evalArithmetic(k expression.Kind, operands []expression.Node, a map[int]types.Datum) (types.Datum, bool) {
	l, lok := evalTernary(operands[0], a)
	r, rok := evalTernary(operands[1], a)
	if !lok || !rok {
		return types.Datum{}, false
	}
	if l.IsNull() || r.IsNull() {
		return types.NewNullDatum(), true
	}
	ln, lok2 := datumNumeric(l)
	rn, rok2 := datumNumeric(r)
	if !lok2 || !rok2 {
		return types.Datum{}, false
	}
	var result float64
	switch k {
	case expression.Plus, expression.CheckedPlus:
		result = ln + rn
	case expression.Minus, expression.CheckedMinus:
		result = ln - rn
	case expression.Times, expression.CheckedTimes:
		result = ln * rn
	case expression.Divide, expression.CheckedDivide:
		if rn == 0 {
			return types.Datum{}, false
		}
		result = ln / rn
	default:
		return types.Datum{}, false
	}
	if l.Kind() == types.KindFloat64 || r.Kind() == types.KindFloat64 {
		return types.NewFloatDatum(result), true
	}
	return types.NewIntDatum(int64(result)), true
}
