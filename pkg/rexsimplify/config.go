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

// Package rexsimplify implements the row-expression simplifier: a pure,
// single-threaded, kind-dispatched rewriter over pkg/expression.Node
// trees under three-valued logic.
package rexsimplify

import "github.com/nobigo/rexsimplify/pkg/expression"

// Config holds the knobs passed to NewSimplifier. There is no file or
// env-var configuration surface; every knob is an explicit constructor
// argument, matching TiDB's pkg/expression convention of threading
// configuration through an explicit sessionctx-shaped argument rather
// than reading ambient state.
type Config struct {
	// DefaultUnknownAs is used by Simplify (the unparameterized entry
	// point).
	DefaultUnknownAs expression.UnknownAs
	// Paranoid turns on the enumerated-assignment equivalence verifier
	// after every public simplification call.
	Paranoid bool
	// PredicateElimination gates whether the range engine is allowed to
	// drop a term entirely when it is implied by the predicate list (a
	// range that covers the whole domain reduces to IS NOT NULL(ref));
	// turning it off keeps terms even when
	// redundant, useful for callers that want predicates visible for
	// other purposes (e.g. explain plans).
	PredicateElimination bool
	// MaxCaseBranchFanout bounds the boolean CASE-to-OR flattening rule
	// so a CASE with many
	// branches does not blow up into a combinatorial OR tree; 0 means
	// unbounded.
	MaxCaseBranchFanout int
	// MaxInListExpand bounds IN-list → SEARCH normalization, mirroring
	// TiDB's maxInListToExpand guard in rule_predicate_simplification.go.
	MaxInListExpand int
}

// DefaultConfig returns the conservative defaults: UnknownAs=UNKNOWN,
// paranoid off, predicate elimination on.
func DefaultConfig() Config {
	return Config{
		DefaultUnknownAs:     expression.UnknownAsUnknown,
		PredicateElimination: true,
		MaxInListExpand:      50,
	}
}

// Simplifier is the immutable simplification handle: a builder, a
// predicate list, a default UnknownAs, flags, and an executor. All With*
// operations return a new handle; none of them mutate the receiver.
type Simplifier struct {
	builder   expression.Builder
	types     expression.TypeFactory
	coercion  expression.TypeCoercionRule
	executor  expression.Executor
	predicates expression.PredicateList
	cfg       Config
}

// NewSimplifier builds a Simplifier from its required collaborators.
func NewSimplifier(builder expression.Builder, types expression.TypeFactory, coercion expression.TypeCoercionRule, executor expression.Executor, cfg Config) *Simplifier {
	if builder == nil {
		builder = expression.DefaultBuilder{}
	}
	if executor == nil {
		executor = expression.NoopExecutor{}
	}
	return &Simplifier{builder: builder, types: types, coercion: coercion, executor: executor, cfg: cfg}
}

// WithPredicates returns a copy of s whose predicate list is the union of
// s's current list and preds.
func (s *Simplifier) WithPredicates(preds expression.PredicateList) *Simplifier {
	next := *s
	next.predicates = s.predicates.Union(preds)
	return &next
}

// WithParanoid returns a copy of s with the paranoid flag set.
func (s *Simplifier) WithParanoid(on bool) *Simplifier {
	next := *s
	next.cfg.Paranoid = on
	return &next
}

// WithPredicateElimination returns a copy of s with predicate elimination
// set.
func (s *Simplifier) WithPredicateElimination(on bool) *Simplifier {
	next := *s
	next.cfg.PredicateElimination = on
	return &next
}

// Predicates returns the handle's current predicate list.
func (s *Simplifier) Predicates() expression.PredicateList { return s.predicates }
