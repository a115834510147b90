// Copyright (c) 2026 CoPla. All rights reserved.

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copla/copla/pkg/slice"
)

/*
TestMap keeps order and nil-ness.
*/
func TestMap(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, slice.Map([]string{"a", "b"}, strings.ToUpper))
	assert.Nil(t, slice.Map([]string(nil), strings.ToUpper))
	assert.Equal(t, []int{}, slice.Map([]string{}, func(s string) int { return len(s) }))
}

/*
TestFilter keeps matching elements in order.
*/
func TestFilter(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }

	assert.Equal(t, []int{2, 4}, slice.Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, slice.Filter([]int{1, 3}, even))
	assert.Nil(t, slice.Filter(nil, even))
}
