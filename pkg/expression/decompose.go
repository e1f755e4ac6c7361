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

// Conjunctions and Disjunctions flatten nested AND/OR trees into a flat
// term list, the Go analogue of Calcite's RexUtil.flatten /
// conjunctions / disjunctions, grounded on TiDB's
// SplitCNFItems/SplitDNFItems (rule_predicate_simplification.go).
// ComposeConjunction/ComposeDisjunction are their inverses, mirroring
// ComposeCNFCondition/ComposeDNFCondition.

// Conjunctions flattens e into its AND-connected top-level terms. A
// non-AND e returns []Node{e}.
func Conjunctions(e Node) []Node {
	return flatten(e, And)
}

// Disjunctions flattens e into its OR-connected top-level terms. A
// non-OR e returns []Node{e}.
func Disjunctions(e Node) []Node {
	return flatten(e, Or)
}

func flatten(e Node, k Kind) []Node {
	c, ok := e.(*CallExpr)
	if !ok || c.K != k {
		return []Node{e}
	}
	var out []Node
	for _, op := range c.Operands {
		out = append(out, flatten(op, k)...)
	}
	return out
}

// ComposeConjunction rebuilds a right-associated AND tree from terms.
// An empty terms list returns the TRUE literal; a single term returns it
// unwrapped rather than wrapped in a unary AND.
func ComposeConjunction(terms ...Node) Node {
	return compose(And, true, terms)
}

// ComposeDisjunction rebuilds a right-associated OR tree from terms. An
// empty terms list returns the FALSE literal.
func ComposeDisjunction(terms ...Node) Node {
	return compose(Or, false, terms)
}

func compose(k Kind, identity bool, terms []Node) Node {
	switch len(terms) {
	case 0:
		return NewBoolLiteral(identity)
	case 1:
		return terms[0]
	}
	result := terms[len(terms)-1]
	for i := len(terms) - 2; i >= 0; i-- {
		typ := result.Type()
		if terms[i].Type().Nullable {
			typ = typ.WithNullable(true)
		}
		result = NewCall(k, typ, terms[i], result)
	}
	return result
}
