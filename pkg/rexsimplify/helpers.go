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
)

// boolType resolves a boolean FieldType of the given nullability, going
// through the injected TypeFactory when one is supplied so callers that
// care about a richer boolean representation (e.g. a session-specific
// collation-free boolean kind) get it, and falling back to the plain
// types.Boolean kind otherwise.
func (s *Simplifier) boolType(nullable bool) types.FieldType {
	if s.types != nil {
		return s.types.BooleanType(nullable)
	}
	if nullable {
		return types.NewNullable(types.Boolean)
	}
	return types.New(types.Boolean)
}

func (s *Simplifier) makeIsNull(e expression.Node) *expression.CallExpr {
	return expression.NewCall(expression.IsNull, s.boolType(false), e)
}

func (s *Simplifier) makeIsNotNull(e expression.Node) *expression.CallExpr {
	return expression.NewCall(expression.IsNotNull, s.boolType(false), e)
}

func (s *Simplifier) makeNot(e expression.Node) *expression.CallExpr {
	return expression.NewCall(expression.Not, s.boolType(e.Type().Nullable), e)
}

func (s *Simplifier) makeIsNotTrue(e expression.Node) *expression.CallExpr {
	return expression.NewCall(expression.IsNotTrue, s.boolType(false), e)
}

// sameNode reports structural equality between two potentially-nil nodes.
func sameNode(a, b expression.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// containsEqual reports whether n appears (by structural equality) in
// list.
func containsEqual(list []expression.Node, n expression.Node) bool {
	for _, e := range list {
		if e.Equal(n) {
			return true
		}
	}
	return false
}

// dedupeNodes drops structurally-duplicate entries, preserving the first
// occurrence's position; used when re-emitting AND/OR term lists and
// COALESCE operand lists.
func dedupeNodes(list []expression.Node) []expression.Node {
	out := make([]expression.Node, 0, len(list))
	for _, n := range list {
		if !containsEqual(out, n) {
			out = append(out, n)
		}
	}
	return out
}
