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

package expression

import "github.com/nobigo/rexsimplify/pkg/types"

// TypeFactory is consumed as a black box: least
// restrictive type computation, nullability-only equality, and
// construction of boolean/nullable-of types. The simplifier never
// second-guesses a TypeFactory's answer.
type TypeFactory interface {
	// LeastRestrictive returns a type wide enough to hold values of
	// either input type.
	LeastRestrictive(a, b types.FieldType) types.FieldType
	// EqualSansNullability reports type equality ignoring nullability.
	EqualSansNullability(a, b types.FieldType) bool
	// BooleanType returns the boolean type with the given nullability.
	BooleanType(nullable bool) types.FieldType
	// NullableOf returns t with Nullable set to true.
	NullableOf(t types.FieldType) types.FieldType
}

// TypeCoercionRule is consumed as a black box: whether a
// value of type src can be implicitly coerced to dst, used by CAST
// simplification to decide when stripping an inner
// or outer lossless CAST is sound.
type TypeCoercionRule interface {
	CanApplyFrom(src, dst types.FieldType) bool
}

// Builder is the expression factory collaborator. All
// "makeX" operations must preserve parser positions on rewrites; this
// module has no parser positions to preserve, so that responsibility is a
// caller concern layered on top via Extra metadata if needed.
type Builder interface {
	MakeLiteral(value any, typ types.FieldType) Node
	MakeNullLiteral(typ types.FieldType) Node
	MakeCall(k Kind, typ types.FieldType, operands ...Node) Node
	MakeCast(typ types.FieldType, operand Node, safe bool) Node
	MakeAbstractCast(typ types.FieldType, operand Node) Node
	// MakeSearchArgumentLiteral wraps a Sarg value (boxed as `any` to
	// avoid pkg/expression depending on pkg/sarg's generic type
	// parameter) as a literal of the given type.
	MakeSearchArgumentLiteral(sarg any, typ types.FieldType) Node
	MakeWindow(call *CallExpr, window any, typ types.FieldType) Node
}

// DefaultBuilder is a direct, allocation-based Builder backed by the Node
// constructors in this package, the minimal collaborator the simplifier
// needs when no richer builder (position-preserving, interned) is
// supplied. Production callers are expected to supply their own.
type DefaultBuilder struct{}

func (DefaultBuilder) MakeLiteral(value any, typ types.FieldType) Node {
	return NewLiteral(value, typ)
}

func (DefaultBuilder) MakeNullLiteral(typ types.FieldType) Node {
	return NewNullLiteral(typ)
}

func (DefaultBuilder) MakeCall(k Kind, typ types.FieldType, operands ...Node) Node {
	return NewCall(k, typ, operands...)
}

func (DefaultBuilder) MakeCast(typ types.FieldType, operand Node, safe bool) Node {
	k := Cast
	if safe {
		k = SafeCast
	}
	return NewCall(k, typ, operand)
}

func (DefaultBuilder) MakeAbstractCast(typ types.FieldType, operand Node) Node {
	return NewCall(Cast, typ, operand)
}

func (DefaultBuilder) MakeSearchArgumentLiteral(sarg any, typ types.FieldType) Node {
	return NewLiteral(sarg, typ)
}

func (DefaultBuilder) MakeWindow(call *CallExpr, window any, typ types.FieldType) Node {
	return &OverExpr{Call: call, Window: window, Typ: typ}
}
