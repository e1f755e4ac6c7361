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

func intCmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func TestRangeSetUnionCoalescesTouchingIntervals(t *testing.T) {
	a := sarg.LessThanOrEqual(intCmp, 5)
	b := sarg.GreaterThan(intCmp, 5)
	require.True(t, a.Union(b).IsAll())
}

func TestRangeSetIntersectEmptyWhenDisjoint(t *testing.T) {
	a := sarg.LessThan(intCmp, 0)
	b := sarg.GreaterThan(intCmp, 10)
	require.True(t, a.Intersect(b).IsEmpty())
}

func TestRangeSetComplementOfAllIsEmpty(t *testing.T) {
	require.True(t, sarg.All[int](intCmp).Complement().IsEmpty())
}

func TestRangeSetComplementRoundTrips(t *testing.T) {
	rs := sarg.GreaterThanOrEqual(intCmp, 3)
	require.True(t, rs.Complement().Complement().Union(rs.Complement()).IsAll())
	require.False(t, rs.Contains(2))
	require.True(t, rs.Contains(3))
}

func TestRangeSetPointsDedupesAndSorts(t *testing.T) {
	rs := sarg.Points(intCmp, 5, 1, 3, 1, 5)
	require.True(t, rs.IsPoints())
	require.Equal(t, 6, rs.Complexity()) // 3 distinct points * 2 endpoints each
	require.True(t, rs.Contains(3))
	require.False(t, rs.Contains(4))
}

func TestRangeSetNotEqualIsComplementOfPoint(t *testing.T) {
	rs := sarg.NotEqual(intCmp, 7)
	require.False(t, rs.Contains(7))
	require.True(t, rs.Contains(6))
	require.True(t, rs.Contains(8))
}

func TestRangeSetNotEqualUnionOfTwoDistinctValuesIsAll(t *testing.T) {
	a := sarg.NotEqual(intCmp, 1)
	b := sarg.NotEqual(intCmp, 2)
	require.True(t, a.Union(b).IsAll())
}
