package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockrg/goformfind/config"
)

// TestScenarioToDRXConfigAppliesLoads exercises the CLI-to-solver wiring
// directly: a scenario's Loads must end up in the built Config.Vectors.P,
// not a zero slice, so an external force actually reaches the solver.
func TestScenarioToDRXConfigAppliesLoads(t *testing.T) {
	s := &config.Scenario{
		Vertices: [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Edges:    [][2]int{{0, 1}, {1, 2}},
		Fixed:    []int{0, 2},
		Loads:    [][3]float64{{0, 0, 0}, {0, 0, -5}, {0, 0, 0}},
	}
	x := []float64{0, 0, 0, 1, 0, 0, 2, 0, 0}

	cfg := scenarioToDRXConfig(s, x)

	assert.Equal(t, []float64{0, 0, 0, 0, 0, -5, 0, 0, 0}, cfg.Vectors.P)
}

// TestScenarioToDRXConfigUsesEdgeStiffnessNotQ makes sure DRX axial
// stiffness and prestress are read from EdgeStiffness/Prestress, never
// from Q, since Q is the fd solver's force-density field and means
// something different in a drx run.
func TestScenarioToDRXConfigUsesEdgeStiffnessNotQ(t *testing.T) {
	s := &config.Scenario{
		Vertices:      [][3]float64{{0, 0, 0}, {1, 0, 0}},
		Edges:         [][2]int{{0, 1}},
		Fixed:         []int{0},
		Q:             []float64{99},
		EdgeStiffness: []float64{4},
		Prestress:     []float64{2},
		RestLength:    []float64{0.5},
	}
	x := []float64{0, 0, 0, 1, 0, 0}

	cfg := scenarioToDRXConfig(s, x)

	assert.Equal(t, []float64{4}, cfg.Edges.K0)
	assert.Equal(t, []float64{2}, cfg.Edges.F0)
	assert.Equal(t, []float64{0.5}, cfg.Edges.L0)
}

// TestScenarioToDRXConfigDefaultsEdgeParameters covers a scenario that
// omits EdgeStiffness/Prestress/RestLength entirely: stiffness defaults
// to 1, prestress to 0, and rest length to the edge's length at the
// scenario's starting coordinates.
func TestScenarioToDRXConfigDefaultsEdgeParameters(t *testing.T) {
	s := &config.Scenario{
		Vertices: [][3]float64{{0, 0, 0}, {3, 0, 0}},
		Edges:    [][2]int{{0, 1}},
		Fixed:    []int{0},
	}
	x := []float64{0, 0, 0, 3, 0, 0}

	cfg := scenarioToDRXConfig(s, x)

	assert.Equal(t, []float64{1}, cfg.Edges.K0)
	assert.Equal(t, []float64{0}, cfg.Edges.F0)
	assert.Equal(t, []float64{3}, cfg.Edges.L0)
}

func TestFlattenLoadsPadsMissingVertices(t *testing.T) {
	got := flattenLoads([][3]float64{{1, 2, 3}}, 2)
	assert.Equal(t, []float64{1, 2, 3, 0, 0, 0}, got)
}
