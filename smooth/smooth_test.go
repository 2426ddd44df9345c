package smooth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockrg/goformfind/examples/cablenet"
	"github.com/blockrg/goformfind/network"
)

func lineModel(middle [3]float64) *network.SmoothModel {
	return cablenet.ThreeNodeLine(middle)
}

func TestLineCollapseE1(t *testing.T) {
	m := lineModel([3]float64{1, 0, 0})
	err := SmoothCentroid(m, 1, nil)
	assert.NoError(t, err)
	assert.Equal(t, [3]float64{0, 0, 0}, m.Vertices[0])
	assert.Equal(t, [3]float64{1, 0, 0}, m.Vertices[1])
	assert.Equal(t, [3]float64{2, 0, 0}, m.Vertices[2])
}

func TestMidpointMoveE2(t *testing.T) {
	m := lineModel([3]float64{1, 1, 0})
	err := SmoothCentroid(m, 1, nil)
	assert.NoError(t, err)
	assert.Equal(t, [3]float64{1, 0, 0}, m.Vertices[1])
}

func TestFixedVerticesUnchanged(t *testing.T) {
	m := lineModel([3]float64{1, 5, 0})
	before0, before2 := m.Vertices[0], m.Vertices[2]
	err := SmoothCentroid(m, 7, nil)
	assert.NoError(t, err)
	assert.Equal(t, before0, m.Vertices[0])
	assert.Equal(t, before2, m.Vertices[2])
}

func TestKmaxZeroIsNoop(t *testing.T) {
	m := lineModel([3]float64{1, 9, 0})
	before := m.Vertices[1]
	err := SmoothCentroid(m, 0, nil)
	assert.NoError(t, err)
	assert.Equal(t, before, m.Vertices[1])
}

func TestAllNeighborsFixedGivesExactCentroid(t *testing.T) {
	m := &network.SmoothModel{
		Vertices: [][3]float64{
			{0, 0, 0},
			{10, 10, 0},
			{5, 5, 5},
		},
		Nbrs:      []int{1, 1, 2},
		Neighbors: [][]int{{2}, {2}, {0, 1}},
		Fixed:     []int{1, 1, 0},
	}
	err := SmoothCentroid(m, 1, nil)
	assert.NoError(t, err)
	assert.Equal(t, [3]float64{5, 5, 0}, m.Vertices[2])
}

func TestFullyFixedGraphIdempotent(t *testing.T) {
	m := &network.SmoothModel{
		Vertices: [][3]float64{{1, 2, 3}, {4, 5, 6}},
		Nbrs:     []int{1, 1},
		Neighbors: [][]int{{1}, {0}},
		Fixed:    []int{1, 1},
	}
	before := append([][3]float64{}, m.Vertices...)
	err := SmoothCentroid(m, 50, nil)
	assert.NoError(t, err)
	assert.Equal(t, before, m.Vertices)
}

func TestZeroNeighborFreeVertexIsError(t *testing.T) {
	m := &network.SmoothModel{
		Vertices:  [][3]float64{{0, 0, 0}, {1, 1, 1}},
		Nbrs:      []int{0, 0},
		Neighbors: [][]int{{}, {}},
		Fixed:     []int{0, 1},
	}
	err := SmoothCentroid(m, 1, nil)
	assert.Error(t, err)
}

func TestOnStepCalledOncePerSweep(t *testing.T) {
	m := lineModel([3]float64{1, 1, 0})
	var calls []int
	err := SmoothCentroid(m, 3, func(k int) { calls = append(calls, k) })
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, calls)
}
