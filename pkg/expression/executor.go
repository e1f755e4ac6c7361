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

// Executor folds literal-only sub-trees to a literal:
// the constant-reduction engine, consumed as a black box. Reduce must be
// side-effect free; its only allowed failure mode is
// returning an error, which the simplifier propagates unchanged.
type Executor interface {
	// Reduce replaces each expr[i] that reduces to a constant with the
	// reduced literal in out[i]; entries that do not reduce are left as
	// the original expression (out[i] = expr[i]).
	Reduce(builder Builder, exprs []Node) (out []Node, err error)
}

// NoopExecutor never reduces anything; useful for tests and for callers
// that have no constant-folding engine wired up yet.
type NoopExecutor struct{}

func (NoopExecutor) Reduce(_ Builder, exprs []Node) ([]Node, error) {
	out := make([]Node, len(exprs))
	copy(out, exprs)
	return out, nil
}
