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

import (
	"fmt"
	"os"

	"github.com/pingcap/errors"
)

// ErrParanoidNotSupported is returned when paranoid mode is requested on
// an entry point that cannot support it.
var ErrParanoidNotSupported = errors.New("rexsimplify: paranoid verification is not supported on this entry point")

// assertf is a fail-fast, assertion-style abort helper for malformed
// input (wrong operator arity, a CASE with an even operand count, a nil
// required operand). No rule in this package calls it, so such trees are
// not rejected by the simplifier. It mirrors TiDB's
// pkg/util/intest.Assert, a panic, not an error return, because these
// represent programmer error in the caller-supplied tree, not a
// recoverable runtime condition. debugAssertions gates the check so
// release builds do not pay for it, matching intest's build-tag-gated
// no-op in production; this module defaults the gate to "on" since it has
// no release/debug build variant of its own.
var debugAssertions = os.Getenv("REXSIMPLIFY_NO_ASSERT") == ""

func assertf(cond bool, format string, args ...any) {
	if !debugAssertions || cond {
		return
	}
	panic(fmt.Sprintf("rexsimplify: assertion failed: "+format, args...))
}

// wrapExecutorErr annotates an Executor failure so it is identifiable at
// the call site without losing the original error.
func wrapExecutorErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Annotate(err, "rexsimplify: executor failed during constant reduction")
}
