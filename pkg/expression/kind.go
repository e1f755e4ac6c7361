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

// Kind is a closed enum of node/operator shapes. It tags both the
// structural node variants (Literal, InputRef, ...) and the Call
// operators, the same way it is used for dispatch throughout
// pkg/rexsimplify: a single exhaustive switch, never open subclassing.
type Kind uint16

const (
	UnknownKind Kind = iota

	// Structural node kinds.
	Literal
	InputRef
	FieldAccess
	Over
	SubQuery
	DynamicParam
	Lambda

	// Boolean / logical.
	And
	Or
	Not

	// Conditional.
	Case
	Coalesce

	// Casts.
	Cast
	SafeCast

	// IS predicates.
	IsNull
	IsNotNull
	IsTrue
	IsNotTrue
	IsFalse
	IsNotFalse
	IsDistinctFrom
	IsNotDistinctFrom

	// Comparisons.
	Equals
	NotEquals
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual

	// Set/range membership.
	Search
	Like
	In
	NotIn
	Between

	// Arithmetic.
	Plus
	Minus
	Times
	Divide
	CheckedPlus
	CheckedMinus
	CheckedTimes
	CheckedDivide
	PlusPrefix
	MinusPrefix

	// Rounding / string.
	Ceil
	Floor
	Trim
	LTrim
	RTrim

	// Measure lifting.
	M2V
	V2M

	// Anything the simplifier treats opaquely (aggregate calls, UDFs, ...).
	OtherCall
)

var kindNames = map[Kind]string{
	UnknownKind:        "UNKNOWN",
	Literal:            "LITERAL",
	InputRef:           "INPUT_REF",
	FieldAccess:        "FIELD_ACCESS",
	Over:               "OVER",
	SubQuery:           "SUBQUERY",
	DynamicParam:       "DYNAMIC_PARAM",
	Lambda:             "LAMBDA",
	And:                "AND",
	Or:                 "OR",
	Not:                "NOT",
	Case:               "CASE",
	Coalesce:           "COALESCE",
	Cast:               "CAST",
	SafeCast:           "SAFE_CAST",
	IsNull:             "IS_NULL",
	IsNotNull:          "IS_NOT_NULL",
	IsTrue:             "IS_TRUE",
	IsNotTrue:          "IS_NOT_TRUE",
	IsFalse:            "IS_FALSE",
	IsNotFalse:         "IS_NOT_FALSE",
	IsDistinctFrom:     "IS_DISTINCT_FROM",
	IsNotDistinctFrom:  "IS_NOT_DISTINCT_FROM",
	Equals:             "EQUALS",
	NotEquals:          "NOT_EQUALS",
	LessThan:           "LESS_THAN",
	LessThanOrEqual:    "LESS_THAN_OR_EQUAL",
	GreaterThan:        "GREATER_THAN",
	GreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	Search:             "SEARCH",
	Like:               "LIKE",
	In:                 "IN",
	NotIn:              "NOT_IN",
	Between:            "BETWEEN",
	Plus:               "PLUS",
	Minus:              "MINUS",
	Times:              "TIMES",
	Divide:             "DIVIDE",
	CheckedPlus:        "CHECKED_PLUS",
	CheckedMinus:       "CHECKED_MINUS",
	CheckedTimes:       "CHECKED_TIMES",
	CheckedDivide:      "CHECKED_DIVIDE",
	PlusPrefix:         "PLUS_PREFIX",
	MinusPrefix:        "MINUS_PREFIX",
	Ceil:               "CEIL",
	Floor:              "FLOOR",
	Trim:               "TRIM",
	LTrim:              "LTRIM",
	RTrim:              "RTRIM",
	M2V:                "M2V",
	V2M:                "V2M",
	OtherCall:          "OTHER_CALL",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "OTHER_CALL"
}

// IsA reports whether k is one of the given kinds, mirroring Calcite's
// SqlKind.belongsTo / RexNode.isA convenience used pervasively by rewrite
// rules to test "is this any kind of comparison" etc.
func (k Kind) IsA(kinds ...Kind) bool {
	for _, o := range kinds {
		if k == o {
			return true
		}
	}
	return false
}

// comparisonKinds is the set tested by IsComparison.
var comparisonKinds = map[Kind]bool{
	Equals:             true,
	NotEquals:          true,
	LessThan:           true,
	LessThanOrEqual:    true,
	GreaterThan:        true,
	GreaterThanOrEqual: true,
	IsDistinctFrom:     true,
	IsNotDistinctFrom:  true,
}

// IsComparison reports whether k is a binary comparison operator.
func (k Kind) IsComparison() bool { return comparisonKinds[k] }

// reversalMap maps a comparison kind to what it becomes when its two
// operands are swapped.
var reversalMap = map[Kind]Kind{
	Equals:             Equals,
	NotEquals:          NotEquals,
	LessThan:           GreaterThan,
	LessThanOrEqual:    GreaterThanOrEqual,
	GreaterThan:        LessThan,
	GreaterThanOrEqual: LessThanOrEqual,
	IsDistinctFrom:     IsDistinctFrom,
	IsNotDistinctFrom:  IsNotDistinctFrom,
}

// Reverse returns the kind that results from swapping a comparison's
// operands, or UnknownKind (with ok=false) if k is not a comparison.
func (k Kind) Reverse() (Kind, bool) {
	r, ok := reversalMap[k]
	return r, ok
}

// negateMap implements Kind.Negate: the kind whose truth table is the
// logical complement, defined for every comparison and every IS-predicate.
var negateMap = map[Kind]Kind{
	Equals:             NotEquals,
	NotEquals:          Equals,
	LessThan:           GreaterThanOrEqual,
	LessThanOrEqual:    GreaterThan,
	GreaterThan:        LessThanOrEqual,
	GreaterThanOrEqual: LessThan,
	IsDistinctFrom:     IsNotDistinctFrom,
	IsNotDistinctFrom:  IsDistinctFrom,
	IsNull:             IsNotNull,
	IsNotNull:          IsNull,
	IsTrue:             IsNotTrue,
	IsNotTrue:          IsTrue,
	IsFalse:            IsNotFalse,
	IsNotFalse:         IsFalse,
}

// Negate returns k's logical complement kind, if one exists. For a strict
// comparison the complement is NULL exactly when the original is, so it
// also holds under 3VL; NullSafeNegate is the entry point used for
// NOT (x op y).
func (k Kind) Negate() (Kind, bool) {
	n, ok := negateMap[k]
	return n, ok
}

// NullSafeNegate is the subset of Negate that remains correct under 3VL
// without flipping on a NULL operand: strict comparisons flip to a
// different strict comparison, so NULL-in implies NULL-out is preserved
// both ways (x<y and x>=y both return NULL, not TRUE/FALSE, when either
// side is NULL; the comparisons themselves are never "null-safe equal").
// IN/NOT_IN are deliberately excluded: negating an IN-list changes which
// rows match on a NULL probe value, so it is never a safe rewrite.
func (k Kind) NullSafeNegate() (Kind, bool) {
	switch k {
	case In, NotIn:
		return UnknownKind, false
	default:
		return k.Negate()
	}
}
