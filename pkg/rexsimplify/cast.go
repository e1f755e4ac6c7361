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

// simplifyCast simplifies the operand, then tries (in order): dropping a
// CAST that is a no-op modulo nullability, collapsing through a lossless
// nested CAST, and folding a CAST of a literal through the Executor.
// SAFE_CAST retains its own Kind throughout; a SAFE_CAST never becomes a
// plain CAST, since SAFE_CAST's no-exception contract is a property of
// the call itself, not of what it wraps.
func (s *Simplifier) simplifyCast(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	operand, err := s.simplify(c.Operands[0], expression.UnknownAsUnknown)
	if err != nil {
		return nil, err
	}

	if operand.Type().EqualsSansNullability(c.Typ) {
		if c.Typ.Nullable || !operand.Type().Nullable {
			return operand, nil
		}
		if s.predicates.IsEffectivelyNotNull(operand, s.isStrictlyNotNullGiven) {
			return operand, nil
		}
	}

	if inner, ok := operand.(*expression.CallExpr); ok &&
		(inner.K == expression.Cast || inner.K == expression.SafeCast) && len(inner.Operands) == 1 &&
		s.isLosslessCast(inner) {
		collapsed := expression.NewCall(c.K, c.Typ, inner.Operands[0])
		return s.simplifyCast(collapsed, m)
	}

	if lit, ok := operand.(*expression.LiteralExpr); ok {
		if lit.IsNull() {
			if c.K == expression.SafeCast || c.Typ.Nullable {
				return s.builder.MakeNullLiteral(c.Typ), nil
			}
			// CAST (not SAFE_CAST) of NULL into a non-nullable target is
			// malformed input; leave it for the Executor/caller to raise
			// rather than fabricating a value here.
		} else {
			rebuilt := expression.NewCall(c.K, c.Typ, operand)
			reduced, rerr := s.executor.Reduce(s.builder, []expression.Node{rebuilt})
			if rerr != nil {
				return nil, rerr
			}
			if len(reduced) == 1 {
				return reduced[0], nil
			}
		}
	}

	if operand.Equal(c.Operands[0]) {
		return c, nil
	}
	return expression.NewCall(c.K, c.Typ, operand), nil
}
