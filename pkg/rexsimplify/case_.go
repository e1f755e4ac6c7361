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

// caseBranch is one WHEN/THEN pair of a CASE call, whose operands are laid
// out as [cond0, val0, cond1, val1, ..., elseVal] (the same flattening
// Calcite's RexCall uses for CASE).
type caseBranch struct {
	cond, val expression.Node
}

// simplifyCase drops branches whose condition simplifies to a provably
// untaken literal (FALSE or NULL, since a WHEN condition follows WHERE-like
// three-valued logic), short-circuits on the first provably-taken (literal
// TRUE) branch, merges consecutive branches with a structurally-equal
// value by OR-combining their conditions, collapses a single surviving
// branch whose value matches the ELSE value, and flattens an
// all-boolean-literal CASE into a plain OR/AND of its conditions.
func (s *Simplifier) simplifyCase(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	operands := c.Operands
	n := len(operands)
	if n == 0 {
		return c, nil
	}

	var branches []caseBranch
	var elseVal expression.Node
	settled := false

	for i := 0; i+1 < n-1; i += 2 {
		cond, err := s.simplify(operands[i], expression.UnknownAsFalse)
		if err != nil {
			return nil, err
		}
		if lit, ok := cond.(*expression.LiteralExpr); ok && !lit.IsNull() {
			if d, ok := lit.Datum(); ok {
				if bv, berr := d.ToBool(); berr == nil {
					if !bv {
						continue
					}
					val, verr := s.simplify(operands[i+1], m)
					if verr != nil {
						return nil, verr
					}
					elseVal = val
					settled = true
					break
				}
			}
		}
		val, err := s.simplify(operands[i+1], m)
		if err != nil {
			return nil, err
		}
		branches = append(branches, caseBranch{cond: cond, val: val})
	}
	if !settled {
		ev, err := s.simplify(operands[n-1], m)
		if err != nil {
			return nil, err
		}
		elseVal = ev
	}

	if len(branches) == 0 {
		return elseVal, nil
	}

	branches = mergeCaseBranches(s, branches)

	if len(branches) == 1 && branches[0].val.Equal(elseVal) {
		return branches[0].val, nil
	}

	if c.Typ.IsBoolean() && withinFanout(s.cfg.MaxCaseBranchFanout, len(branches)) {
		if flattened, ok := s.flattenBooleanCase(branches, elseVal); ok {
			return s.simplify(flattened, m)
		}
	}

	newOperands := make([]expression.Node, 0, len(branches)*2+1)
	for _, b := range branches {
		newOperands = append(newOperands, b.cond, b.val)
	}
	newOperands = append(newOperands, elseVal)
	result := expression.NewCall(expression.Case, c.Typ, newOperands...)
	if result.Equal(c) {
		return c, nil
	}
	return result, nil
}

func withinFanout(max, n int) bool {
	return max <= 0 || n <= max
}

// mergeCaseBranches folds adjacent branches sharing a structurally-equal
// value into one, OR-combining their conditions.
func mergeCaseBranches(s *Simplifier, branches []caseBranch) []caseBranch {
	merged := make([]caseBranch, 0, len(branches))
	for _, b := range branches {
		if last := len(merged) - 1; last >= 0 && merged[last].val.Equal(b.val) {
			merged[last].cond = expression.NewCall(expression.Or, s.boolType(true), merged[last].cond, b.cond)
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// flattenBooleanCase recognizes a CASE all of whose branch values (and the
// ELSE value) are boolean literals of one of the two trivial shapes,
// every branch TRUE with a FALSE else, or every branch FALSE with a TRUE
// else, and rewrites it to the OR, respectively AND-of-negations, of the
// branch conditions.
func (s *Simplifier) flattenBooleanCase(branches []caseBranch, elseVal expression.Node) (expression.Node, bool) {
	allTrue, allFalse := true, true
	for _, b := range branches {
		if !isBoolLiteral(b.val, true) {
			allTrue = false
		}
		if !isBoolLiteral(b.val, false) {
			allFalse = false
		}
	}
	if allTrue && isBoolLiteral(elseVal, false) {
		conds := make([]expression.Node, len(branches))
		for i, b := range branches {
			conds[i] = b.cond
		}
		return expression.ComposeDisjunction(conds...), true
	}
	if allFalse && isBoolLiteral(elseVal, true) {
		negs := make([]expression.Node, len(branches))
		for i, b := range branches {
			negs[i] = s.makeNot(b.cond)
		}
		return expression.ComposeConjunction(negs...), true
	}
	return nil, false
}

func isBoolLiteral(n expression.Node, want bool) bool {
	lit, ok := n.(*expression.LiteralExpr)
	if !ok || lit.IsNull() {
		return false
	}
	d, ok := lit.Datum()
	if !ok {
		return false
	}
	bv, err := d.ToBool()
	return err == nil && bv == want
}

// simplifyNotCase pushes a NOT through a CASE by negating every branch
// value and the ELSE value, then hands the rebuilt CASE back to simplify
// so simplifyCase's own rules (branch merging, boolean flattening) apply
// to the result.
func (s *Simplifier) simplifyNotCase(c *expression.CallExpr, m expression.UnknownAs) (expression.Node, error) {
	n := len(c.Operands)
	negated := make([]expression.Node, n)
	for i := 0; i+1 < n; i += 2 {
		negated[i] = c.Operands[i]
		negated[i+1] = s.makeNot(c.Operands[i+1])
	}
	negated[n-1] = s.makeNot(c.Operands[n-1])
	return s.simplify(expression.NewCall(expression.Case, s.boolType(c.Typ.Nullable), negated...), m)
}
