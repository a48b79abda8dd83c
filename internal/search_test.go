package internal

import "testing"

import "github.com/stretchr/testify/assert"

func TestFindFirst_GT(t *testing.T) {
	arr := []float64{1, 3, 5, 7, 9}
	assert.Equal(t, 0, FindFirst(arr, 0.0, InequalityGT))
	assert.Equal(t, 2, FindFirst(arr, 3.0, InequalityGT))
	assert.Equal(t, -1, FindFirst(arr, 9.0, InequalityGT))
	assert.Equal(t, -1, FindFirst(arr, 20.0, InequalityGT))
}

func TestFindFirst_GE(t *testing.T) {
	arr := []float64{1, 3, 5, 7, 9}
	assert.Equal(t, 1, FindFirst(arr, 3.0, InequalityGE))
	assert.Equal(t, 0, FindFirst(arr, 1.0, InequalityGE))
	assert.Equal(t, -1, FindFirst(arr, 9.5, InequalityGE))
}

func TestFindFirst_LTLE(t *testing.T) {
	arr := []float64{1, 3, 5, 7, 9}
	assert.Equal(t, 1, FindFirst(arr, 5.0, InequalityLT))
	assert.Equal(t, 2, FindFirst(arr, 5.0, InequalityLE))
	assert.Equal(t, -1, FindFirst(arr, 1.0, InequalityLT))
	assert.Equal(t, 4, FindFirst(arr, 100.0, InequalityLE))
}

func TestFindFirst_Empty(t *testing.T) {
	var arr []float64
	assert.Equal(t, -1, FindFirst(arr, 1.0, InequalityGT))
}
