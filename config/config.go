// Package config loads the YAML scenario files accepted by the
// goformfind command line: which solver to run, its convergence and
// iteration controls, and the network data it operates on.
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/spf13/viper"
)

// Scenario is the YAML description of a single form-finding run: the
// solver to invoke, its convergence/iteration controls, and the network
// data the solver operates on. Vertices, edges and fixity
// are expressed inline rather than via a separate mesh format, since the
// supported networks are small pin-jointed/smoothing graphs rather than
// volumetric meshes.
type Scenario struct {
	Title   string  `json:"title"`
	Solver  string  `json:"solver"` // "fd", "drx" or "smooth"
	Tol     float64 `json:"tol"`
	Steps   int     `json:"steps"`
	Kmax    int     `json:"kmax"`
	Factor  float64 `json:"factor"`
	Summary bool    `json:"summary"`
	Beams   bool    `json:"beams"`

	Vertices [][3]float64 `json:"vertices"`
	Edges    [][2]int     `json:"edges"`
	Free     []int        `json:"free"`
	Fixed    []int        `json:"fixed"`
	Q        []float64    `json:"q"`
	Loads    [][3]float64 `json:"loads"`

	// EdgeStiffness, Prestress and RestLength are the dynamic relaxation
	// analogues of Q: per-edge axial stiffness, prestress force and rest
	// length. They are distinct from Q (force density, FDM-only) since
	// drx's axial force model is f0 + k0*(l-l0) rather than q*l. A missing
	// RestLength entry defaults to the edge's length at the scenario's
	// starting coordinates, i.e. no initial elastic force from that edge.
	EdgeStiffness []float64 `json:"edge_stiffness"`
	Prestress     []float64 `json:"prestress"`
	RestLength    []float64 `json:"rest_length"`
}

// Parse unmarshals YAML scenario data into s.
func (s *Scenario) Parse(data []byte) error {
	return yaml.Unmarshal(data, s)
}

// Print writes a human-readable summary of the scenario, one labeled
// line each for the title, solver, Tol, Steps and Kmax, plus the vertex
// and edge counts. The other fields are not printed.
func (s *Scenario) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", s.Title)
	fmt.Printf("[%s]\t\t\t= Solver\n", s.Solver)
	fmt.Printf("%8.5g\t\t= Tol\n", s.Tol)
	fmt.Printf("%d\t\t\t= Steps\n", s.Steps)
	fmt.Printf("%d\t\t\t= Kmax\n", s.Kmax)
	fmt.Printf("%d\t\t\t= Vertices\n", len(s.Vertices))
	fmt.Printf("%d\t\t\t= Edges\n", len(s.Edges))
}

// Load reads and parses the scenario file at path, then applies any
// GOFORMFIND_-prefixed environment variable overrides for Tol, Steps,
// Kmax and Summary via viper, matching the override keys a deployment
// would set without editing the scenario file itself.
func Load(path string) (*Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading scenario file: %w", err)
	}
	s := &Scenario{}
	if err := s.Parse(data); err != nil {
		return nil, fmt.Errorf("config: parsing scenario file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("GOFORMFIND")
	v.AutomaticEnv()
	if v.IsSet("TOL") {
		s.Tol = v.GetFloat64("TOL")
	}
	if v.IsSet("STEPS") {
		s.Steps = v.GetInt("STEPS")
	}
	if v.IsSet("KMAX") {
		s.Kmax = v.GetInt("KMAX")
	}
	if v.IsSet("SUMMARY") {
		s.Summary = v.GetBool("SUMMARY")
	}
	return s, nil
}
