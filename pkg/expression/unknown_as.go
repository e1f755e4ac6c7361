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

import "github.com/pingcap/errors"

// UnknownAs is the tri-state policy describing how a boolean NULL
// ("unknown") is interpreted at the point of use. It is the
// parameter threaded through every simplification entry point.
type UnknownAs uint8

const (
	// UnknownAsUnknown leaves a boolean NULL as NULL (e.g. SELECT list,
	// CASE WHEN condition evaluated outside a filter).
	UnknownAsUnknown UnknownAs = iota
	// UnknownAsTrue treats a boolean NULL as TRUE (e.g. NOT IN's ANY
	// sub-condition in some dialects, CHECK constraints).
	UnknownAsTrue
	// UnknownAsFalse treats a boolean NULL as FALSE (e.g. WHERE, ON, HAVING).
	UnknownAsFalse
)

// String implements fmt.Stringer.
func (m UnknownAs) String() string {
	switch m {
	case UnknownAsTrue:
		return "TRUE"
	case UnknownAsFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Negate returns the policy that results from wrapping the evaluation site
// in a logical NOT: negating UNKNOWN-as-TRUE/FALSE flips which boolean
// value NULL collapses to; UNKNOWN-as-UNKNOWN is its own negation since
// NOT NULL = NULL. Used to recurse through De Morgan distribution.
func (m UnknownAs) Negate() UnknownAs {
	switch m {
	case UnknownAsTrue:
		return UnknownAsFalse
	case UnknownAsFalse:
		return UnknownAsTrue
	default:
		return UnknownAsUnknown
	}
}

// ToBoolean returns the concrete boolean m maps NULL to. It is defined
// only for UnknownAsTrue/UnknownAsFalse; calling it under UnknownAsUnknown
// is a caller error.
func (m UnknownAs) ToBoolean() (bool, error) {
	switch m {
	case UnknownAsTrue:
		return true, nil
	case UnknownAsFalse:
		return false, nil
	default:
		return false, errors.New("UnknownAs.ToBoolean: undefined for UnknownAsUnknown")
	}
}
