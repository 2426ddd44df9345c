/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"fmt"
	"math"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/blockrg/goformfind/config"
	"github.com/blockrg/goformfind/drx"
	"github.com/blockrg/goformfind/examples/cablenet"
	"github.com/blockrg/goformfind/fdm"
	"github.com/blockrg/goformfind/network"
	"github.com/blockrg/goformfind/smooth"
)

var (
	scenarioFile string
	cpuProfile   bool
	stopProfile  func()
)

var rootCmd = &cobra.Command{
	Use:   "goformfind",
	Short: "Force-density, dynamic relaxation and centroid smoothing for pin-jointed networks",
	Long: `
goformfind runs one of three form-finding solvers over a YAML-described
pin-jointed network: force-density direct solve (fd), dynamic relaxation
with kinetic damping (drx), or Laplacian centroid smoothing (smooth).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cpuProfile {
			stopProfile = profile.Start(profile.CPUProfile).Stop
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProfile != nil {
			stopProfile()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioFile, "scenario", "", "YAML scenario file (default is $HOME/.goformfind/scenario.yaml)")
	rootCmd.PersistentFlags().BoolVar(&cpuProfile, "cpuprofile", false, "write a CPU profile for the duration of the run")

	rootCmd.AddCommand(fdCmd)
	rootCmd.AddCommand(drxCmd)
	rootCmd.AddCommand(smoothCmd)
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoSolver, "solver", "fd", "which solver to demo: fd, drx or smooth")
}

var demoSolver string

// demoCmd runs one of the built-in worked examples with no scenario file,
// for a quick sanity check of the install.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a built-in worked example with no scenario file",
	Run: func(cmd *cobra.Command, args []string) {
		switch demoSolver {
		case "fd":
			model := cablenet.SquareFDModel()
			if err := fdm.Solve(model, nil); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			for i, v := range model.Vertices {
				fmt.Printf("vertex %d: %v\n", i, v)
			}
		case "drx":
			cfg := cablenet.TwoNodeSpring(1.0, 2.0)
			result, err := drx.Solve(cfg, nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			fmt.Printf("converged in %d steps, residual %g\n", result.Steps, result.Residual)
		case "smooth":
			model := cablenet.ThreeNodeLine([3]float64{1, 1, 0})
			if err := smooth.SmoothCentroid(model, 10, nil); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			for i, v := range model.Vertices {
				fmt.Printf("vertex %d: %v\n", i, v)
			}
		default:
			fmt.Fprintf(os.Stderr, "error: unknown demo solver %q (want fd, drx or smooth)\n", demoSolver)
			os.Exit(1)
		}
	},
}

func loadScenario() *config.Scenario {
	path := scenarioFile
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error: no --scenario given and could not resolve home directory:", err)
			os.Exit(1)
		}
		path = home + "/.goformfind/scenario.yaml"
	}
	s, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading scenario:", err)
		os.Exit(1)
	}
	s.Print()
	return s
}

var fdCmd = &cobra.Command{
	Use:   "fd",
	Short: "Run the force-density direct solve on the given scenario",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadScenario()
		model := &network.FDModel{
			Vertices: s.Vertices,
			Edges:    s.Edges,
			Loads:    s.Loads,
			Q:        s.Q,
			Free:     s.Free,
			Fixed:    s.Fixed,
		}
		if err := fdm.Solve(model, nil); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		for i, v := range model.Vertices {
			fmt.Printf("vertex %d: %v\n", i, v)
		}
	},
}

var drxCmd = &cobra.Command{
	Use:   "drx",
	Short: "Run dynamic relaxation with kinetic damping on the given scenario",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadScenario()
		n := len(s.Vertices)
		x := make([]float64, 3*n)
		for i, v := range s.Vertices {
			x[3*i], x[3*i+1], x[3*i+2] = v[0], v[1], v[2]
		}
		cfg := scenarioToDRXConfig(s, x)
		result, err := drx.Solve(cfg, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Printf("converged in %d steps, residual %g\n", result.Steps, result.Residual)
	},
}

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Run Laplacian centroid smoothing on the given scenario",
	Run: func(cmd *cobra.Command, args []string) {
		s := loadScenario()
		model := scenarioToSmoothModel(s)
		if err := smooth.SmoothCentroid(model, s.Kmax, nil); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		for i, v := range model.Vertices {
			fmt.Printf("vertex %d: %v\n", i, v)
		}
	},
}

// scenarioToDRXConfig builds a dynamic relaxation configuration from a
// scenario's edges and loads, treating fixed vertices as constrained via
// the B mask and every other vertex as free with unit mass. Edge axial
// stiffness and prestress come from the scenario's EdgeStiffness and
// Prestress fields (defaulting to 1 and 0), never from Q, since Q is the
// force-density field the fd solver uses and means something different.
func scenarioToDRXConfig(s *config.Scenario, x []float64) *drx.Config {
	n := len(s.Vertices)
	m := len(s.Edges)
	u := make([]int, m)
	v := make([]int, m)
	l0 := make([]float64, m)
	k0 := make([]float64, m)
	f0 := make([]float64, m)
	for i, e := range s.Edges {
		u[i], v[i] = e[0], e[1]
		k0[i] = 1
		if i < len(s.EdgeStiffness) {
			k0[i] = s.EdgeStiffness[i]
		}
		if i < len(s.Prestress) {
			f0[i] = s.Prestress[i]
		}
	}

	fixedMask := make(map[int]bool, len(s.Fixed))
	for _, idx := range s.Fixed {
		fixedMask[idx] = true
	}

	b := make([]float64, 3*n)
	mass := make([]float64, n)
	rows := make([]int, 0, 2*m)
	cols := make([]int, 0, 2*m)
	vals := make([]float64, 0, 2*m)
	for i := 0; i < n; i++ {
		mass[i] = 1
		bi := 1.0
		if fixedMask[i] {
			bi = 0
		}
		b[3*i], b[3*i+1], b[3*i+2] = bi, bi, bi
	}
	for k, e := range s.Edges {
		rows = append(rows, e[0], e[1])
		cols = append(cols, k, k)
		vals = append(vals, -1, 1)
		dx := x[3*e[1]] - x[3*e[0]]
		dy := x[3*e[1]+1] - x[3*e[0]+1]
		dz := x[3*e[1]+2] - x[3*e[0]+2]
		l0[k] = sqrt3(dx, dy, dz)
		if k < len(s.RestLength) {
			l0[k] = s.RestLength[k]
		}
	}

	return &drx.Config{
		Tol:      s.Tol,
		Steps:    s.Steps,
		Summary:  s.Summary,
		Factor:   s.Factor,
		Topology: network.Topology{U: u, V: v},
		Edges:    network.EdgeState{F0: f0, L0: l0, K0: k0},
		Vectors: network.NodeVectors{
			P: flattenLoads(s.Loads, n),
			S: make([]float64, 3*n),
			B: b,
			V: make([]float64, 3*n),
			M: mass,
		},
		Sparse: network.SparseTranspose{Rows: rows, Cols: cols, Vals: vals},
		X:      x,
	}
}

func scenarioToSmoothModel(s *config.Scenario) *network.SmoothModel {
	n := len(s.Vertices)
	adj := make([][]int, n)
	for _, e := range s.Edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	fixed := make([]int, n)
	for _, idx := range s.Fixed {
		fixed[idx] = 1
	}
	nbrs := make([]int, n)
	for i := range adj {
		nbrs[i] = len(adj[i])
	}
	return &network.SmoothModel{
		Vertices:  s.Vertices,
		Nbrs:      nbrs,
		Neighbors: adj,
		Fixed:     fixed,
	}
}

func sqrt3(dx, dy, dz float64) float64 {
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// flattenLoads interleaves a scenario's per-vertex load triples into the
// 3n-length layout drx.Config.Vectors.P expects, zero-filling any
// vertices beyond the given loads.
func flattenLoads(loads [][3]float64, n int) []float64 {
	p := make([]float64, 3*n)
	for i, l := range loads {
		if i >= n {
			break
		}
		p[3*i], p[3*i+1], p[3*i+2] = l[0], l[1], l[2]
	}
	return p
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
