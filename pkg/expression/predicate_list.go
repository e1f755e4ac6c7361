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

// PredicateList is an ordered multiset of boolean expressions known to
// hold on the current inputs, typically pulled up from a
// relational metadata provider. It is immutable; Union appends and
// returns a new list.
type PredicateList struct {
	preds []Node
}

// NewPredicateList builds a PredicateList from the given predicates.
func NewPredicateList(preds ...Node) PredicateList {
	return PredicateList{preds: append([]Node(nil), preds...)}
}

// Union appends other's predicates after this list's, duplicate-preserving.
func (p PredicateList) Union(other PredicateList) PredicateList {
	merged := make([]Node, 0, len(p.preds)+len(other.preds))
	merged = append(merged, p.preds...)
	merged = append(merged, other.preds...)
	return PredicateList{preds: merged}
}

// With returns a copy of p with extra predicates appended.
func (p PredicateList) With(extra ...Node) PredicateList {
	merged := make([]Node, 0, len(p.preds)+len(extra))
	merged = append(merged, p.preds...)
	merged = append(merged, extra...)
	return PredicateList{preds: merged}
}

// PulledUpPredicates returns the predicate list's members, in order.
func (p PredicateList) PulledUpPredicates() []Node {
	return p.preds
}

// Len reports how many predicates are in the list.
func (p PredicateList) Len() int { return len(p.preds) }

// isNotNullOf recognizes `IS NOT NULL(target)` and returns target, ok.
func isNotNullOf(p Node) (Node, bool) {
	c, ok := p.(*CallExpr)
	if !ok || c.K != IsNotNull || len(c.Operands) != 1 {
		return nil, false
	}
	return c.Operands[0], true
}

func isNullOf(p Node) (Node, bool) {
	c, ok := p.(*CallExpr)
	if !ok || c.K != IsNull || len(c.Operands) != 1 {
		return nil, false
	}
	return c.Operands[0], true
}

// IsEffectivelyNotNull reports whether e is known to never evaluate to
// NULL: either e's static type is non-nullable, or
// `IS NOT NULL(e)` is asserted in the list, or e is a deterministic call
// whose own strict structure forces non-null given this list (that third
// leg is delegated to the caller via the strict parameter, since it
// requires the Strong-null analyzer which lives in pkg/rexsimplify to
// avoid an import cycle).
func (p PredicateList) IsEffectivelyNotNull(e Node, strict func(Node) bool) bool {
	if !e.Type().Nullable {
		return true
	}
	for _, pred := range p.preds {
		if target, ok := isNotNullOf(pred); ok && target.Equal(e) {
			return true
		}
	}
	if strict != nil && strict(e) {
		return true
	}
	return false
}

// Asserts reports whether the exact expression `want` (by structural
// equality) is present in the predicate list; used by the IsPredicate
// short-circuit that returns TRUE directly when the list already
// asserts IS_NULL(e) or IS_NOT_NULL(e) matching the query.
func (p PredicateList) Asserts(want Node) bool {
	for _, pred := range p.preds {
		if pred.Equal(want) {
			return true
		}
	}
	return false
}

// EquivalenceClasses groups InputRefExpr columns into equivalence classes
// from `a = b` predicates between two references. Each returned
// group has at least two members; singleton columns are omitted.
func (p PredicateList) EquivalenceClasses() [][]*InputRefExpr {
	adj := make(map[int][]*InputRefExpr)
	seen := make(map[int]*InputRefExpr)
	for _, pred := range p.preds {
		c, ok := pred.(*CallExpr)
		if !ok || c.K != Equals || len(c.Operands) != 2 {
			continue
		}
		lc, lok := c.Operands[0].(*InputRefExpr)
		rc, rok := c.Operands[1].(*InputRefExpr)
		if !lok || !rok {
			continue
		}
		adj[lc.Index] = append(adj[lc.Index], rc)
		adj[rc.Index] = append(adj[rc.Index], lc)
		seen[lc.Index] = lc
		seen[rc.Index] = rc
	}
	visited := make(map[int]bool)
	var classes [][]*InputRefExpr
	for id, col := range seen {
		if visited[id] {
			continue
		}
		stack := []*InputRefExpr{col}
		var group []*InputRefExpr
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[c.Index] {
				continue
			}
			visited[c.Index] = true
			group = append(group, c)
			for _, n := range adj[c.Index] {
				if !visited[n.Index] {
					stack = append(stack, n)
				}
			}
		}
		if len(group) > 1 {
			classes = append(classes, group)
		}
	}
	return classes
}

// SameEquivalenceClass reports whether a and b are known equal via an
// equivalence class derived from EquivalenceClasses.
func SameEquivalenceClass(a, b *InputRefExpr, classes [][]*InputRefExpr) bool {
	if a == nil || b == nil {
		return false
	}
	for _, group := range classes {
		foundA, foundB := false, false
		for _, c := range group {
			if c.Index == a.Index {
				foundA = true
			}
			if c.Index == b.Index {
				foundB = true
			}
		}
		if foundA && foundB {
			return true
		}
	}
	return false
}
