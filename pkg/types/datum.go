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

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pingcap/errors"
)

// DatumKind tags the union stored in a Datum, the same role mysql type
// constants play for TiDB's types.Datum.
type DatumKind uint8

// Datum value kinds. KindNull is the SQL NULL sentinel; every other
// kind is a domain constant.
const (
	KindNull DatumKind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
)

// Datum is a typed constant value: the sentinel SQL NULL, or a domain
// constant. It is the value half of expression.Literal.
type Datum struct {
	k    DatumKind
	i    int64
	f    float64
	s    string
	byts []byte
}

// NewNullDatum returns the SQL NULL sentinel.
func NewNullDatum() Datum { return Datum{k: KindNull} }

// NewBoolDatum wraps a boolean constant.
func NewBoolDatum(b bool) Datum {
	v := int64(0)
	if b {
		v = 1
	}
	return Datum{k: KindBool, i: v}
}

// NewIntDatum wraps an integer constant.
func NewIntDatum(v int64) Datum { return Datum{k: KindInt64, i: v} }

// NewFloatDatum wraps a floating-point constant.
func NewFloatDatum(v float64) Datum { return Datum{k: KindFloat64, f: v} }

// NewStringDatum wraps a character-string constant.
func NewStringDatum(v string) Datum { return Datum{k: KindString, s: v} }

// NewBytesDatum wraps an opaque byte-string constant.
func NewBytesDatum(v []byte) Datum { return Datum{k: KindBytes, byts: v} }

// Kind returns the datum's value kind.
func (d Datum) Kind() DatumKind { return d.k }

// IsNull reports whether d is the SQL NULL sentinel.
func (d Datum) IsNull() bool { return d.k == KindNull }

// ToBool converts d to a boolean, as used by the boolean-vs-constant
// comparison rules. KindInt64 converts as non-zero = true. It errors on
// the other non-boolean kinds and on NULL; callers
// must special-case NULL before calling this.
func (d Datum) ToBool() (bool, error) {
	switch d.k {
	case KindBool:
		return d.i != 0, nil
	case KindInt64:
		return d.i != 0, nil
	case KindNull:
		return false, errors.New("ToBool: NULL has no boolean value")
	default:
		return false, errors.Errorf("ToBool: unsupported datum kind %v", d.k)
	}
}

// Int64 returns the underlying int64, valid for KindInt64/KindBool.
func (d Datum) Int64() int64 { return d.i }

// Float64 returns the underlying float64, valid for KindFloat64.
func (d Datum) Float64() float64 { return d.f }

// String returns a human-readable form, used in diagnostics and digests.
func (d Datum) String() string {
	switch d.k {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(d.i != 0)
	case KindInt64:
		return strconv.FormatInt(d.i, 10)
	case KindFloat64:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(d.s)
	case KindBytes:
		return fmt.Sprintf("x%x", d.byts)
	default:
		return "?"
	}
}

// StringValue returns the raw string payload of a KindString datum.
func (d Datum) StringValue() string { return d.s }

// Compare implements the "natural total order" referenced by the
// constant-comparison rule: -1, 0, or 1, with NULL
// never comparable (ok=false). Mixed numeric kinds compare as numbers;
// other kind mismatches are incomparable.
func (d Datum) Compare(other Datum) (cmp int, ok bool) {
	if d.k == KindNull || other.k == KindNull {
		return 0, false
	}
	if isNumericKind(d.k) && isNumericKind(other.k) {
		a, b := d.numeric(), other.numeric()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if d.k == KindString && other.k == KindString {
		switch {
		case d.s < other.s:
			return -1, true
		case d.s > other.s:
			return 1, true
		default:
			return 0, true
		}
	}
	if d.k == KindBytes && other.k == KindBytes {
		return bytes.Compare(d.byts, other.byts), true
	}
	if d.k != other.k {
		return 0, false
	}
	return 0, true
}

func isNumericKind(k DatumKind) bool {
	return k == KindInt64 || k == KindFloat64 || k == KindBool
}

func (d Datum) numeric() float64 {
	switch d.k {
	case KindFloat64:
		return d.f
	default:
		return float64(d.i)
	}
}

// Equal reports value equality; NULL is never equal to anything, including
// another NULL, matching SQL equality (callers wanting IS [NOT] DISTINCT
// FROM semantics compare IsNull() directly instead).
func (d Datum) Equal(other Datum) bool {
	c, ok := d.Compare(other)
	return ok && c == 0
}
