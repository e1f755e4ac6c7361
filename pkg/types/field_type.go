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

package types

import "fmt"

// FieldType is the RelDataType analogue: a nominal SQL type plus a
// nullability flag. It is immutable; WithNullable returns a copy.
type FieldType struct {
	SQLKind   Kind
	Nullable  bool
	Precision int // meaningful for Decimal only; 0 means unset.
	Scale     int // meaningful for Decimal only.
}

// New builds a non-nullable FieldType of the given kind.
func New(k Kind) FieldType {
	return FieldType{SQLKind: k}
}

// NewNullable builds a nullable FieldType of the given kind.
func NewNullable(k Kind) FieldType {
	return FieldType{SQLKind: k, Nullable: true}
}

// NewDecimal builds a Decimal FieldType with explicit precision/scale.
func NewDecimal(precision, scale int, nullable bool) FieldType {
	return FieldType{SQLKind: Decimal, Nullable: nullable, Precision: precision, Scale: scale}
}

// WithNullable returns a copy of t with the given nullability.
func (t FieldType) WithNullable(nullable bool) FieldType {
	t.Nullable = nullable
	return t
}

// EqualsSansNullability reports whether t and other name the same SQL type,
// ignoring the Nullable flag. This is the minimal shape of the
// TypeFactory.equalSansNullability collaborator; a real
// TypeFactory would also compare precision/scale/charset for some kinds.
func (t FieldType) EqualsSansNullability(other FieldType) bool {
	if t.SQLKind != other.SQLKind {
		return false
	}
	if t.SQLKind == Decimal {
		return t.Precision == other.Precision && t.Scale == other.Scale
	}
	return true
}

// Equals reports whether t and other are identical, including nullability.
func (t FieldType) Equals(other FieldType) bool {
	return t.Nullable == other.Nullable && t.EqualsSansNullability(other)
}

// IsBoolean reports whether t's family is Boolean.
func (t FieldType) IsBoolean() bool {
	return t.SQLKind == Boolean
}

// String implements fmt.Stringer.
func (t FieldType) String() string {
	if t.Nullable {
		return fmt.Sprintf("%s NULL", t.SQLKind)
	}
	return fmt.Sprintf("%s NOT NULL", t.SQLKind)
}

// LeastRestrictive picks a FieldType wide enough to hold values of either
// input, the minimal behavior the simplifier needs from a TypeFactory when
// it must synthesize a type for a rebuilt comparison.
// It is deliberately conservative: numeric-vs-numeric widens to the wider
// kind and widens nullability to nullable iff either input is nullable;
// any other mismatch returns a itself unioned with b's nullability only.
func LeastRestrictive(a, b FieldType) FieldType {
	nullable := a.Nullable || b.Nullable
	if a.SQLKind == b.SQLKind {
		r := a
		r.Nullable = nullable
		return r
	}
	if a.SQLKind.IsNumeric() && b.SQLKind.IsNumeric() {
		wide := a.SQLKind
		if numericRank(b.SQLKind) > numericRank(a.SQLKind) {
			wide = b.SQLKind
		}
		return FieldType{SQLKind: wide, Nullable: nullable}
	}
	return FieldType{SQLKind: a.SQLKind, Nullable: nullable}
}

func numericRank(k Kind) int {
	switch k {
	case TinyInt:
		return 1
	case SmallInt:
		return 2
	case Int:
		return 3
	case BigInt:
		return 4
	case Decimal:
		return 5
	case Float:
		return 6
	case Double:
		return 7
	default:
		return 0
	}
}
