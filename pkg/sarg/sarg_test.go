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

package sarg_test

import (
	"testing"

	"github.com/nobigo/rexsimplify/pkg/sarg"
	"github.com/stretchr/testify/require"
)

func TestSargNegateFlipsRangesAndNullAs(t *testing.T) {
	s := sarg.New(intCmp, sarg.LessThan(intCmp, 10), sarg.NullAsFalse)
	n := s.Negate()
	require.False(t, n.Ranges.Contains(5))
	require.True(t, n.Ranges.Contains(20))
	require.Equal(t, sarg.NullAsTrue, n.NullAs)
}

func TestSargComplementKeepsNullAs(t *testing.T) {
	s := sarg.New(intCmp, sarg.GreaterThan(intCmp, 0), sarg.NullAsTrue)
	c := s.Complement()
	require.Equal(t, sarg.NullAsTrue, c.NullAs)
	require.True(t, c.Ranges.Contains(-1))
}

func TestSargIsAllRequiresNullAsTrue(t *testing.T) {
	allRanges := sarg.New(intCmp, sarg.All[int](intCmp), sarg.NullAsFalse)
	require.False(t, allRanges.IsAll())
	allWithNull := sarg.New(intCmp, sarg.All[int](intCmp), sarg.NullAsTrue)
	require.True(t, allWithNull.IsAll())
}

func TestSargIsNoneRequiresNullAsFalse(t *testing.T) {
	emptyWithNull := sarg.New(intCmp, sarg.Empty[int](intCmp), sarg.NullAsTrue)
	require.False(t, emptyWithNull.IsNone())
	emptyNoNull := sarg.New(intCmp, sarg.Empty[int](intCmp), sarg.NullAsFalse)
	require.True(t, emptyNoNull.IsNone())
}

func TestSargPointRequiresNullAsFalseAndSingleClosedPoint(t *testing.T) {
	point := sarg.New(intCmp, sarg.Point(intCmp, 4), sarg.NullAsFalse)
	v, ok := point.Point()
	require.True(t, ok)
	require.Equal(t, 4, v)

	withNull := sarg.New(intCmp, sarg.Point(intCmp, 4), sarg.NullAsTrue)
	_, ok = withNull.Point()
	require.False(t, ok)
}

func TestSargComplexityCountsEndpointsPlusNullBit(t *testing.T) {
	s := sarg.New(intCmp, sarg.LessThan(intCmp, 5), sarg.NullAsFalse)
	require.Equal(t, 1, s.Complexity())
	withNull := sarg.New(intCmp, sarg.LessThan(intCmp, 5), sarg.NullAsTrue)
	require.Equal(t, 2, withNull.Complexity())
}

func TestNullAsJoinCollapsesToUnknownOnConflict(t *testing.T) {
	require.Equal(t, sarg.NullAsTrue, sarg.NullAsUnknown.Join(sarg.NullAsTrue))
	require.Equal(t, sarg.NullAsUnknown, sarg.NullAsTrue.Join(sarg.NullAsFalse))
	require.Equal(t, sarg.NullAsFalse, sarg.NullAsFalse.Join(sarg.NullAsFalse))
}
