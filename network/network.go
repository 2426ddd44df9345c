// Package network holds the topology and per-node/per-edge state shared by
// the smoother, the force-density solver and the dynamic relaxation
// solver: node coordinates, edge endpoint arrays, fixity partitions and
// the derived per-edge/per-node arrays each solver mutates in place.
package network

import "fmt"

// Topology is the ordered pair of edge endpoint arrays u[0..m), v[0..m).
type Topology struct {
	U, V []int
}

// NumEdges returns m, the number of edges.
func (t Topology) NumEdges() int { return len(t.U) }

// Validate checks that U and V have equal length and that every index
// falls in [0, n).
func (t Topology) Validate(n int) error {
	if len(t.U) != len(t.V) {
		return fmt.Errorf("network: mismatched edge endpoint arrays: len(U)=%d len(V)=%d", len(t.U), len(t.V))
	}
	for i, u := range t.U {
		if u < 0 || u >= n {
			return fmt.Errorf("network: edge %d endpoint u=%d out of range [0,%d)", i, u, n)
		}
		if v := t.V[i]; v < 0 || v >= n {
			return fmt.Errorf("network: edge %d endpoint v=%d out of range [0,%d)", i, v, n)
		}
	}
	return nil
}

// Fixity partitions node indices [0, n) into disjoint Free and Fixed sets
// whose union is {0, ..., n-1}.
type Fixity struct {
	Free, Fixed []int
}

// Validate checks the disjoint-union invariant: every index in [0,n)
// appears in exactly one of Free or Fixed.
func (f Fixity) Validate(n int) error {
	if len(f.Free)+len(f.Fixed) != n {
		return fmt.Errorf("network: free(%d)+fixed(%d) != n(%d)", len(f.Free), len(f.Fixed), n)
	}
	seen := make([]bool, n)
	mark := func(idx []int, label string) error {
		for _, i := range idx {
			if i < 0 || i >= n {
				return fmt.Errorf("network: %s index %d out of range [0,%d)", label, i, n)
			}
			if seen[i] {
				return fmt.Errorf("network: index %d appears in both free and fixed sets", i)
			}
			seen[i] = true
		}
		return nil
	}
	if err := mark(f.Free, "free"); err != nil {
		return err
	}
	if err := mark(f.Fixed, "fixed"); err != nil {
		return err
	}
	return nil
}

// EdgeState holds the dynamic relaxation material/state arrays: prestress,
// rest length, axial stiffness, and the per-iteration derived axial force
// and Cartesian components.
type EdgeState struct {
	F0, L0, K0    []float64
	F, Fx, Fy, Fz []float64
}

// Unilateral names the tension-only and compression-only edge index
// lists. Indices fall in [0, m) and need not be disjoint.
type Unilateral struct {
	IndT, IndC []int
}

// NodeVectors holds the per-node dynamic relaxation arrays, all
// triple-interleaved ([x0,y0,z0,x1,y1,z1,...]) except M.
type NodeVectors struct {
	P, S, B, V []float64
	M          []float64
}

// SparseTranspose is the coordinate-format transpose of the branch-node
// connectivity matrix: rows[k] in [0,n), cols[k] in [0,m), each edge
// contributing exactly two entries of value ±1.
type SparseTranspose struct {
	Rows, Cols []int
	Vals       []float64
}

// BeamTriples names the optional bending-stiff beam elements: three node
// indices per triple (start, bending-evaluated middle, end) with
// per-triple flexural stiffnesses.
type BeamTriples struct {
	Inds, Indi, Indf []int
	EIx, EIy         []float64
}

// NumTriples returns nb.
func (b BeamTriples) NumTriples() int { return len(b.Inds) }

// AtTriple returns the three triple-interleaved node index offsets (into
// a 3n-length array) for triple i.
func (b BeamTriples) AtTriple(i int) (a, m, f int) {
	return 3 * b.Inds[i], 3 * b.Indi[i], 3 * b.Indf[i]
}

// SmoothModel is the data model for Laplacian centroid smoothing:
// vertex coordinates, neighbor counts, adjacency and the per-vertex
// fixity mask.
type SmoothModel struct {
	Vertices  [][3]float64
	Nbrs      []int
	Neighbors [][]int
	Fixed     []int
}

// Validate checks that nbrs[i] equals the logical length of
// neighbors[i], and that all slices are sized to the vertex count.
func (m *SmoothModel) Validate() error {
	n := len(m.Vertices)
	if len(m.Nbrs) != n || len(m.Neighbors) != n || len(m.Fixed) != n {
		return fmt.Errorf("network: SmoothModel arrays must all have length %d", n)
	}
	for i, nbrs := range m.Neighbors {
		if len(nbrs) != m.Nbrs[i] {
			return fmt.Errorf("network: vertex %d: nbrs=%d but len(neighbors)=%d", i, m.Nbrs[i], len(nbrs))
		}
		for _, j := range nbrs {
			if j < 0 || j >= n {
				return fmt.Errorf("network: vertex %d: neighbor index %d out of range [0,%d)", i, j, n)
			}
		}
	}
	return nil
}

// FDModel is the data model for force-density form-finding.
type FDModel struct {
	Vertices [][3]float64
	Edges    [][2]int
	Loads    [][3]float64
	Q        []float64
	Free     []int
	Fixed    []int
}

// Validate checks array-length consistency across the model.
func (m *FDModel) Validate() error {
	n := len(m.Vertices)
	if len(m.Loads) != n {
		return fmt.Errorf("network: FDModel: len(Loads)=%d != len(Vertices)=%d", len(m.Loads), n)
	}
	if len(m.Edges) != len(m.Q) {
		return fmt.Errorf("network: FDModel: len(Edges)=%d != len(Q)=%d", len(m.Edges), len(m.Q))
	}
	for i, e := range m.Edges {
		if e[0] < 0 || e[0] >= n || e[1] < 0 || e[1] >= n {
			return fmt.Errorf("network: FDModel: edge %d endpoints %v out of range [0,%d)", i, e, n)
		}
	}
	return Fixity{Free: m.Free, Fixed: m.Fixed}.Validate(n)
}
