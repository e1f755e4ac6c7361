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

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/nobigo/rexsimplify/pkg/types"
)

// Node is an immutable, typed scalar expression tree node. It is a closed
// tagged union dispatched on Kind(), never an open class hierarchy:
// LiteralExpr, InputRefExpr, FieldAccessExpr, CallExpr, OverExpr,
// SubQueryExpr, DynamicParamExpr, and LambdaExpr are the only
// implementations the simplifier is expected to see; anything else falls
// through simplifyGenericNode untouched.
type Node interface {
	// Kind returns the node's structural/operator tag.
	Kind() Kind
	// Type returns the node's declared SQL type, including nullability.
	Type() types.FieldType
	// Equal reports structural equality (used for identity-on-no-op and
	// for idempotence checks).
	Equal(other Node) bool
	// HashCode returns a digest used for de-duplicating terms inside
	// AND/OR lists and CASE branches.
	HashCode() []byte
	// String renders the node for diagnostics.
	String() string
	// Deterministic reports whether repeated evaluation with the same
	// inputs always yields the same result.
	Deterministic() bool
	// IsCacheSensitive reports whether the node's value could change
	// across calls without its structure changing (e.g. it was derived
	// from a parameter marker). It never gates correctness; it is
	// consulted only by the paranoid verifier's memoization.
	IsCacheSensitive() bool
}

func hashBytes(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}

// ---- LiteralExpr ---------------------------------------------------------

// LiteralExpr is a domain constant or the SQL NULL sentinel.
// Value is either a types.Datum, or (for the SEARCH operator's second
// operand) a *sarg.Sarg-shaped value boxed as fmt.Stringer; rexsimplify
// knows which to expect from context.
type LiteralExpr struct {
	Value          any
	Typ            types.FieldType
	CacheSensitive bool
}

// NewLiteral builds a LiteralExpr node.
func NewLiteral(value any, typ types.FieldType) *LiteralExpr {
	return &LiteralExpr{Value: value, Typ: typ}
}

// NewNullLiteral builds a typed NULL literal of the given type, widened to
// nullable (a NULL of a non-nullable type is nonsensical).
func NewNullLiteral(typ types.FieldType) *LiteralExpr {
	return &LiteralExpr{Value: types.NewNullDatum(), Typ: typ.WithNullable(true)}
}

// NewBoolLiteral builds a TRUE/FALSE literal.
func NewBoolLiteral(b bool) *LiteralExpr {
	return &LiteralExpr{Value: types.NewBoolDatum(b), Typ: types.New(types.Boolean)}
}

func (l *LiteralExpr) Kind() Kind            { return Literal }
func (l *LiteralExpr) Type() types.FieldType { return l.Typ }
func (l *LiteralExpr) Deterministic() bool   { return true }
func (l *LiteralExpr) IsCacheSensitive() bool { return l.CacheSensitive }

// IsNull reports whether the literal is the SQL NULL sentinel.
func (l *LiteralExpr) IsNull() bool {
	d, ok := l.Value.(types.Datum)
	return ok && d.IsNull()
}

// Datum returns the literal's domain-constant payload; ok is false for
// NULL or for a non-Datum (Sarg) payload.
func (l *LiteralExpr) Datum() (types.Datum, bool) {
	d, ok := l.Value.(types.Datum)
	return d, ok && !d.IsNull()
}

func (l *LiteralExpr) Equal(other Node) bool {
	o, ok := other.(*LiteralExpr)
	if !ok {
		return false
	}
	if !l.Typ.Equals(o.Typ) {
		return false
	}
	ld, lok := l.Value.(types.Datum)
	od, ook := o.Value.(types.Datum)
	if lok && ook {
		if ld.IsNull() || od.IsNull() {
			return ld.IsNull() == od.IsNull()
		}
		return ld.Equal(od)
	}
	return fmt.Sprint(l.Value) == fmt.Sprint(o.Value)
}

func (l *LiteralExpr) HashCode() []byte {
	return hashBytes([]byte("LIT"), []byte(l.Typ.String()), []byte(fmt.Sprint(l.Value)))
}

func (l *LiteralExpr) String() string { return fmt.Sprint(l.Value) }

// ---- InputRefExpr -------------------------------------------------------

// InputRefExpr references a named input column by 0-based ordinal.
type InputRefExpr struct {
	Index int
	Typ   types.FieldType
}

func NewInputRef(index int, typ types.FieldType) *InputRefExpr {
	return &InputRefExpr{Index: index, Typ: typ}
}

func (r *InputRefExpr) Kind() Kind            { return InputRef }
func (r *InputRefExpr) Type() types.FieldType { return r.Typ }
func (r *InputRefExpr) Deterministic() bool   { return true }
func (r *InputRefExpr) IsCacheSensitive() bool { return false }
func (r *InputRefExpr) Equal(other Node) bool {
	o, ok := other.(*InputRefExpr)
	return ok && o.Index == r.Index && r.Typ.Equals(o.Typ)
}
func (r *InputRefExpr) HashCode() []byte {
	return hashBytes([]byte("REF"), []byte(fmt.Sprint(r.Index)))
}
func (r *InputRefExpr) String() string { return fmt.Sprintf("$%d", r.Index) }

// ---- FieldAccessExpr ----------------------------------------------------

// FieldAccessExpr is a structured field projection off a parent expression.
type FieldAccessExpr struct {
	Parent Node
	Field  string
	Typ    types.FieldType
}

func NewFieldAccess(parent Node, field string, typ types.FieldType) *FieldAccessExpr {
	return &FieldAccessExpr{Parent: parent, Field: field, Typ: typ}
}

func (f *FieldAccessExpr) Kind() Kind            { return FieldAccess }
func (f *FieldAccessExpr) Type() types.FieldType { return f.Typ }
func (f *FieldAccessExpr) Deterministic() bool   { return f.Parent.Deterministic() }
func (f *FieldAccessExpr) IsCacheSensitive() bool { return f.Parent.IsCacheSensitive() }
func (f *FieldAccessExpr) Equal(other Node) bool {
	o, ok := other.(*FieldAccessExpr)
	return ok && o.Field == f.Field && f.Parent.Equal(o.Parent)
}
func (f *FieldAccessExpr) HashCode() []byte {
	return hashBytes([]byte("FA"), []byte(f.Field), f.Parent.HashCode())
}
func (f *FieldAccessExpr) String() string { return fmt.Sprintf("%s.%s", f.Parent, f.Field) }

// ---- CallExpr ------------------------------------------------------------

// CallExpr is an operator application: a Kind tag, its operands, and a
// determinism flag.
type CallExpr struct {
	K        Kind
	Operands []Node
	Typ      types.FieldType
	// Det is false for nondeterministic/side-effecting operators (e.g.
	// RAND(), a UDF not marked pure); such calls are never duplicated by
	// boolean rewrites.
	Det bool
	// Extra carries operator-specific metadata the simplifier needs but
	// that does not fit the Kind/operand/type shape: CEIL/FLOOR's time
	// unit ("unit"), TRIM's trim characters ("cutset"), LIKE's escape
	// ("escape"). Keyed by a small set of well-known strings to avoid an
	// explosion of Node variants.
	Extra map[string]any
}

// NewCall builds a deterministic CallExpr.
func NewCall(k Kind, typ types.FieldType, operands ...Node) *CallExpr {
	return &CallExpr{K: k, Operands: operands, Typ: typ, Det: true}
}

// NewCallWithExtra builds a CallExpr carrying operator-specific metadata.
func NewCallWithExtra(k Kind, typ types.FieldType, extra map[string]any, operands ...Node) *CallExpr {
	return &CallExpr{K: k, Operands: operands, Typ: typ, Det: true, Extra: extra}
}

func (c *CallExpr) Kind() Kind            { return c.K }
func (c *CallExpr) Type() types.FieldType { return c.Typ }
func (c *CallExpr) Deterministic() bool {
	if !c.Det {
		return false
	}
	for _, op := range c.Operands {
		if !op.Deterministic() {
			return false
		}
	}
	return true
}
func (c *CallExpr) IsCacheSensitive() bool {
	for _, op := range c.Operands {
		if op.IsCacheSensitive() {
			return true
		}
	}
	return false
}
func (c *CallExpr) Equal(other Node) bool {
	o, ok := other.(*CallExpr)
	if !ok || o.K != c.K || len(o.Operands) != len(c.Operands) {
		return false
	}
	for i := range c.Operands {
		if !c.Operands[i].Equal(o.Operands[i]) {
			return false
		}
	}
	return true
}
func (c *CallExpr) HashCode() []byte {
	parts := [][]byte{[]byte("CALL"), []byte(c.K.String())}
	for _, op := range c.Operands {
		parts = append(parts, op.HashCode())
	}
	return hashBytes(parts...)
}
func (c *CallExpr) String() string {
	strs := make([]string, len(c.Operands))
	for i, op := range c.Operands {
		strs[i] = op.String()
	}
	return fmt.Sprintf("%s(%s)", c.K, strings.Join(strs, ", "))
}

// Arg returns the i-th operand, or nil if out of range.
func (c *CallExpr) Arg(i int) Node {
	if i < 0 || i >= len(c.Operands) {
		return nil
	}
	return c.Operands[i]
}

// WithOperands returns a copy of c with new operands and the same Kind,
// type and Extra; used pervasively by rewrite rules that change children
// but keep the operator.
func (c *CallExpr) WithOperands(operands ...Node) *CallExpr {
	return &CallExpr{K: c.K, Operands: operands, Typ: c.Typ, Det: c.Det, Extra: c.Extra}
}

// ---- OverExpr -------------------------------------------------------------

// OverExpr is a windowed aggregate: a Call plus an opaque window
// specification. The simplifier treats Window as opaque.
type OverExpr struct {
	Call   *CallExpr
	Window any
	Typ    types.FieldType
}

func (o *OverExpr) Kind() Kind            { return Over }
func (o *OverExpr) Type() types.FieldType { return o.Typ }
func (o *OverExpr) Deterministic() bool   { return false }
func (o *OverExpr) IsCacheSensitive() bool { return true }
func (o *OverExpr) Equal(other Node) bool {
	v, ok := other.(*OverExpr)
	return ok && o.Call.Equal(v.Call) && fmt.Sprint(o.Window) == fmt.Sprint(v.Window)
}
func (o *OverExpr) HashCode() []byte {
	return hashBytes([]byte("OVER"), o.Call.HashCode(), []byte(fmt.Sprint(o.Window)))
}
func (o *OverExpr) String() string { return fmt.Sprintf("%s OVER (%v)", o.Call, o.Window) }

// ---- Opaque node kinds ----------------------------------------------------

// SubQueryExpr, DynamicParamExpr, LambdaExpr are treated as opaque by the
// simplifier: they never get rewritten and are never counted
// safe.

type SubQueryExpr struct {
	Payload any
	Typ     types.FieldType
}

func (s *SubQueryExpr) Kind() Kind            { return SubQuery }
func (s *SubQueryExpr) Type() types.FieldType { return s.Typ }
func (s *SubQueryExpr) Deterministic() bool   { return false }
func (s *SubQueryExpr) IsCacheSensitive() bool { return true }
func (s *SubQueryExpr) Equal(other Node) bool { return s == other }
func (s *SubQueryExpr) HashCode() []byte      { return hashBytes([]byte("SUBQ"), []byte(fmt.Sprintf("%p", s))) }
func (s *SubQueryExpr) String() string        { return "(SUBQUERY)" }

type DynamicParamExpr struct {
	Index int
	Typ   types.FieldType
}

func (d *DynamicParamExpr) Kind() Kind            { return DynamicParam }
func (d *DynamicParamExpr) Type() types.FieldType { return d.Typ }
func (d *DynamicParamExpr) Deterministic() bool   { return true }
func (d *DynamicParamExpr) IsCacheSensitive() bool { return true }
func (d *DynamicParamExpr) Equal(other Node) bool {
	o, ok := other.(*DynamicParamExpr)
	return ok && o.Index == d.Index
}
func (d *DynamicParamExpr) HashCode() []byte {
	return hashBytes([]byte("PARAM"), []byte(fmt.Sprint(d.Index)))
}
func (d *DynamicParamExpr) String() string { return fmt.Sprintf("?%d", d.Index) }

type LambdaExpr struct {
	Params []string
	Body   Node
	Typ    types.FieldType
}

func (l *LambdaExpr) Kind() Kind            { return Lambda }
func (l *LambdaExpr) Type() types.FieldType { return l.Typ }
func (l *LambdaExpr) Deterministic() bool   { return l.Body.Deterministic() }
func (l *LambdaExpr) IsCacheSensitive() bool { return l.Body.IsCacheSensitive() }
func (l *LambdaExpr) Equal(other Node) bool {
	o, ok := other.(*LambdaExpr)
	if !ok || len(o.Params) != len(l.Params) {
		return false
	}
	for i := range l.Params {
		if l.Params[i] != o.Params[i] {
			return false
		}
	}
	return l.Body.Equal(o.Body)
}
func (l *LambdaExpr) HashCode() []byte {
	return hashBytes([]byte("LAMBDA"), l.Body.HashCode())
}
func (l *LambdaExpr) String() string {
	return fmt.Sprintf("(%s) -> %s", strings.Join(l.Params, ", "), l.Body)
}
