package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScenario(t *testing.T) {
	data := []byte(`
title: square net
solver: fd
tol: 0.001
steps: 10
kmax: 5
vertices:
  - [0, 0, 0]
  - [1, 0, 0]
edges:
  - [0, 1]
free: [1]
fixed: [0]
q: [1]
loads:
  - [0, 0, 0]
  - [0, 0, -1]
`)
	s := &Scenario{}
	err := s.Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, "square net", s.Title)
	assert.Equal(t, "fd", s.Solver)
	assert.Equal(t, 0.001, s.Tol)
	assert.Equal(t, 10, s.Steps)
	assert.Equal(t, []int{1}, s.Free)
	assert.Equal(t, []int{0}, s.Fixed)
	assert.Equal(t, [][3]float64{{0, 0, 0}, {0, 0, -1}}, s.Loads)
}

func TestLoadReadsFileAndParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	err := os.WriteFile(path, []byte("title: from file\nsolver: drx\ntol: 0.01\nsteps: 3\n"), 0o644)
	assert.NoError(t, err)

	s, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "from file", s.Title)
	assert.Equal(t, "drx", s.Solver)
	assert.Equal(t, 0.01, s.Tol)
	assert.Equal(t, 3, s.Steps)
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	err := os.WriteFile(path, []byte("title: overridden\nsolver: drx\ntol: 0.01\nsteps: 3\nkmax: 1\nsummary: false\n"), 0o644)
	assert.NoError(t, err)

	os.Setenv("GOFORMFIND_TOL", "0.5")
	os.Setenv("GOFORMFIND_STEPS", "99")
	os.Setenv("GOFORMFIND_KMAX", "7")
	os.Setenv("GOFORMFIND_SUMMARY", "true")
	defer func() {
		os.Unsetenv("GOFORMFIND_TOL")
		os.Unsetenv("GOFORMFIND_STEPS")
		os.Unsetenv("GOFORMFIND_KMAX")
		os.Unsetenv("GOFORMFIND_SUMMARY")
	}()

	s, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 0.5, s.Tol)
	assert.Equal(t, 99, s.Steps)
	assert.Equal(t, 7, s.Kmax)
	assert.True(t, s.Summary)
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
