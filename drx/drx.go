// Package drx implements dynamic relaxation with kinetic damping: an
// explicit pseudo-dynamic integrator that drives a pin-jointed (and
// optionally beam-stiffened) network toward static equilibrium by
// tracking its kinetic energy and zeroing nodal velocities every time
// that energy peaks.
package drx

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/james-bowman/sparse"

	"github.com/blockrg/goformfind/internal/partition"
	"github.com/blockrg/goformfind/network"
	"github.com/blockrg/goformfind/progress"
	"github.com/blockrg/goformfind/vec3"
)

// Config bundles the fixed topology and per-node/per-edge arrays a
// dynamic relaxation run operates on. X, Vectors.V and Vectors.S are
// mutated in place; Edges.F/Fx/Fy/Fz are (re)allocated by Solve if nil
// and left holding the final iteration's axial force state on return.
type Config struct {
	Tol     float64
	Steps   int
	Summary bool
	Factor  float64

	Topology   network.Topology
	Edges      network.EdgeState
	Unilateral network.Unilateral
	Vectors    network.NodeVectors
	Sparse     network.SparseTranspose

	Beams        network.BeamTriples
	BeamsEnabled bool

	X []float64
}

// Result reports the termination state of a Solve call.
type Result struct {
	Steps    int
	Residual float64
}

// Solve runs dynamic relaxation with kinetic damping on cfg until the
// mean nodal residual falls at or below cfg.Tol or cfg.Steps+1 iterations
// have elapsed (the loop runs while the zero-based iteration counter is at
// most cfg.Steps), mutating cfg.X and cfg.Vectors.V in place. onStep, if
// non-nil, is invoked once per completed iteration with the zero-based
// iteration index.
//
// Each iteration: axial forces are evaluated per edge (parallel fan-out
// over edges); unilateral edges whose axial force has the wrong sign for
// their tension-only/compression-only role have their force components
// zeroed; beam bending forces, if enabled, are accumulated into S;
// branch forces are scattered to nodal residuals via the fixed sparse
// topology; velocities and kinetic energy are updated (parallel fan-out
// over nodes); kinetic damping zeroes all velocities on any iteration whose
// kinetic energy is lower than the previous iteration's; positions are
// advanced by velocity.
func Solve(cfg *Config, onStep progress.OnStepFunc) (Result, error) {
	n := len(cfg.Vectors.M)
	m := cfg.Topology.NumEdges()

	if err := validate(cfg, n, m); err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{}, nil
	}

	if cfg.Edges.F == nil {
		cfg.Edges.F = make([]float64, m)
	}
	if cfg.Edges.Fx == nil {
		cfg.Edges.Fx = make([]float64, m)
	}
	if cfg.Edges.Fy == nil {
		cfg.Edges.Fy = make([]float64, m)
	}
	if cfg.Edges.Fz == nil {
		cfg.Edges.Fz = make([]float64, m)
	}

	ct := buildTranspose(cfg.Sparse, n, m)

	mass := make([]float64, n)
	for i, mi := range cfg.Vectors.M {
		mass[i] = mi * cfg.Factor
	}

	nodeParts := partition.Split(n, runtime.GOMAXPROCS(0))
	edgeParts := partition.Split(m, runtime.GOMAXPROCS(0))

	frx := make([]float64, n)
	fry := make([]float64, n)
	frz := make([]float64, n)

	uo := 0.0
	res := 1000 * cfg.Tol
	ts := 0

	for ts <= cfg.Steps && res > cfg.Tol {
		axialForces(cfg, edgeParts)
		applyUnilaterality(cfg)
		if cfg.BeamsEnabled {
			beamShears(cfg)
		}

		for i := range frx {
			frx[i], fry[i], frz[i] = 0, 0, 0
		}
		ct.MulVecTo(frx, false, cfg.Edges.Fx)
		ct.MulVecTo(fry, false, cfg.Edges.Fy)
		ct.MulVecTo(frz, false, cfg.Edges.Fz)

		rn, un := updateVelocities(cfg, mass, frx, fry, frz, nodeParts)

		if un < uo {
			for i := range cfg.Vectors.V {
				cfg.Vectors.V[i] = 0
			}
		}
		uo = un

		for i := 0; i < n; i++ {
			j := 3 * i
			cfg.X[j] += cfg.Vectors.V[j]
			cfg.X[j+1] += cfg.Vectors.V[j+1]
			cfg.X[j+2] += cfg.Vectors.V[j+2]
		}

		res = rn / float64(n)
		progress.Notify(onStep, ts)
		ts++
	}

	if cfg.Summary {
		fmt.Printf("Step: %d, Residual: %f\n", ts-1, res)
	}

	return Result{Steps: ts, Residual: res}, nil
}

func validate(cfg *Config, n, m int) error {
	if err := cfg.Topology.Validate(n); err != nil {
		return err
	}
	if len(cfg.X) != 3*n {
		return fmt.Errorf("drx: len(X)=%d != 3*n(%d)", len(cfg.X), 3*n)
	}
	if len(cfg.Edges.F0) != m || len(cfg.Edges.L0) != m || len(cfg.Edges.K0) != m {
		return fmt.Errorf("drx: edge state arrays must have length m=%d", m)
	}
	if len(cfg.Vectors.P) != 3*n || len(cfg.Vectors.S) != 3*n || len(cfg.Vectors.B) != 3*n || len(cfg.Vectors.V) != 3*n {
		return fmt.Errorf("drx: node vector arrays must have length 3n=%d", 3*n)
	}
	for _, idx := range cfg.Unilateral.IndT {
		if idx < 0 || idx >= m {
			return fmt.Errorf("drx: tension-only index %d out of range [0,%d)", idx, m)
		}
	}
	for _, idx := range cfg.Unilateral.IndC {
		if idx < 0 || idx >= m {
			return fmt.Errorf("drx: compression-only index %d out of range [0,%d)", idx, m)
		}
	}
	if len(cfg.Sparse.Cols) != len(cfg.Sparse.Rows) || len(cfg.Sparse.Vals) != len(cfg.Sparse.Rows) {
		return fmt.Errorf("drx: sparse transpose rows/cols/vals must have equal length")
	}
	for k, r := range cfg.Sparse.Rows {
		if r < 0 || r >= n {
			return fmt.Errorf("drx: sparse transpose row %d out of range [0,%d)", r, n)
		}
		if c := cfg.Sparse.Cols[k]; c < 0 || c >= m {
			return fmt.Errorf("drx: sparse transpose col %d out of range [0,%d)", c, m)
		}
	}
	if cfg.BeamsEnabled {
		for i := 0; i < cfg.Beams.NumTriples(); i++ {
			a, mi, f := cfg.Beams.AtTriple(i)
			if a < 0 || a+2 >= len(cfg.X) || mi < 0 || mi+2 >= len(cfg.X) || f < 0 || f+2 >= len(cfg.X) {
				return fmt.Errorf("drx: beam triple %d references an out-of-range node offset", i)
			}
		}
	}
	return nil
}

// buildTranspose converts the coordinate-format Cᵀ triples into a CSR
// matrix once per Solve call via a DOK intermediate, using
// james-bowman/sparse's own CSR.MulVecTo for the per-iteration scatter
// below so the cost stays proportional to the number of nonzeros rather
// than to n*m.
func buildTranspose(st network.SparseTranspose, n, m int) *sparse.CSR {
	dok := sparse.NewDOK(n, m)
	for k, r := range st.Rows {
		dok.Set(r, st.Cols[k], st.Vals[k])
	}
	return dok.ToCSR()
}

// axialForces evaluates, for every edge, the axial force and its
// Cartesian components from the current node positions, fanning the work
// out over edgeParts.
func axialForces(cfg *Config, edgeParts [][2]int) {
	var wg sync.WaitGroup
	for _, part := range edgeParts {
		lo, hi := part[0], part[1]
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				a := 3 * cfg.Topology.U[i]
				b := 3 * cfg.Topology.V[i]
				dx := cfg.X[b] - cfg.X[a]
				dy := cfg.X[b+1] - cfg.X[a+1]
				dz := cfg.X[b+2] - cfg.X[a+2]
				l := math.Sqrt(dx*dx + dy*dy + dz*dz)

				f := cfg.Edges.F0[i] + cfg.Edges.K0[i]*(l-cfg.Edges.L0[i])
				cfg.Edges.F[i] = f

				q := f / l
				cfg.Edges.Fx[i] = dx * q
				cfg.Edges.Fy[i] = dy * q
				cfg.Edges.Fz[i] = dz * q
			}
		}(lo, hi)
	}
	wg.Wait()
}

// applyUnilaterality zeroes the Cartesian force components of any
// tension-only edge currently in compression, and any compression-only
// edge currently in tension, indexing the just-evaluated force by the
// edge's own position rather than by its position within IndT/IndC.
func applyUnilaterality(cfg *Config) {
	for _, idx := range cfg.Unilateral.IndT {
		if cfg.Edges.F[idx] < 0 {
			cfg.Edges.Fx[idx], cfg.Edges.Fy[idx], cfg.Edges.Fz[idx] = 0, 0, 0
		}
	}
	for _, idx := range cfg.Unilateral.IndC {
		if cfg.Edges.F[idx] > 0 {
			cfg.Edges.Fx[idx], cfg.Edges.Fy[idx], cfg.Edges.Fz[idx] = 0, 0, 0
		}
	}
}

// beamShears accumulates the bending moment contribution of every beam
// triple into S, following the local-frame curvature construction of the
// reference dynamic relaxation kernel: edge vectors Qa/Qb/Qc span the
// triple, Qn is their local normal, the curvature is projected onto the
// in-plane axes ex/ey, and the resulting moment Mc is resolved into
// equivalent nodal shear forces ua/ub. A triple whose geometry produces a
// non-finite shear (a degenerate or near-collinear triple) contributes
// nothing rather than corrupting S.
func beamShears(cfg *Config) {
	s := cfg.Vectors.S
	for i := range s {
		s[i] = 0
	}

	var qa, qb, qc, qn, mu, ex, ey, ez, k, kx, ky, mc, ua, ub, c1, c2 [3]float64

	for i := 0; i < cfg.Beams.NumTriples(); i++ {
		a, mid, f := cfg.Beams.AtTriple(i)
		xs, xi, xf := cfg.X[a:a+3], cfg.X[mid:mid+3], cfg.X[f:f+3]

		vec3.Subtract(xi, xs, qa[:])
		vec3.Subtract(xf, xi, qb[:])
		vec3.Subtract(xf, xs, qc[:])
		vec3.Cross(qa[:], qb[:], qn[:])
		copy(mu[:], qc[:])
		vec3.Scale(mu[:], 0.5)

		la, lb, lc := vec3.Length(qa[:]), vec3.Length(qb[:]), vec3.Length(qc[:])
		lqn, lmu := vec3.Length(qn[:]), vec3.Length(mu[:])
		alpha := math.Acos((la*la + lb*lb - lc*lc) / (2 * la * lb))
		kappa := 2 * math.Sin(alpha) / lc

		copy(ex[:], qn[:])
		vec3.Scale(ex[:], 1/lqn)
		copy(ez[:], mu[:])
		vec3.Scale(ez[:], 1/lmu)
		vec3.Cross(ez[:], ex[:], ey[:])

		copy(k[:], qn[:])
		vec3.Scale(k[:], kappa/lqn)
		copy(kx[:], ex[:])
		vec3.Scale(kx[:], vec3.Dot(k[:], ex[:])*cfg.Beams.EIx[i])
		copy(ky[:], ey[:])
		vec3.Scale(ky[:], vec3.Dot(k[:], ey[:])*cfg.Beams.EIy[i])
		vec3.Add(kx[:], ky[:], mc[:])

		vec3.Cross(mc[:], qa[:], ua[:])
		vec3.Normalize(ua[:])
		vec3.Cross(mc[:], qb[:], ub[:])
		vec3.Normalize(ub[:])
		vec3.Cross(qa[:], ua[:], c1[:])
		vec3.Cross(qb[:], ub[:], c2[:])

		lc1, lc2 := vec3.Length(c1[:]), vec3.Length(c2[:])
		ms := vec3.LengthSquared(mc[:])
		vec3.Scale(ua[:], ms*lc1/(la*vec3.Dot(mc[:], c1[:])))
		vec3.Scale(ub[:], ms*lc2/(lb*vec3.Dot(mc[:], c2[:])))

		if !vec3.IsFinite(ua[:]) || !vec3.IsFinite(ub[:]) {
			continue
		}

		s[a] += ua[0]
		s[a+1] += ua[1]
		s[a+2] += ua[2]
		s[mid] -= ua[0] + ub[0]
		s[mid+1] -= ua[1] + ub[1]
		s[mid+2] -= ua[2] + ub[2]
		s[f] += ub[0]
		s[f+1] += ub[1]
		s[f+2] += ub[2]
	}
}

// updateVelocities advances V and returns the summed residual norm and
// kinetic energy across all nodes, fanning the per-node work out over
// nodeParts and reducing each partition's partial sums sequentially
// after they complete.
func updateVelocities(cfg *Config, mass, frx, fry, frz []float64, nodeParts [][2]int) (rn, un float64) {
	partials := make([][2]float64, len(nodeParts))
	var wg sync.WaitGroup
	for pi, part := range nodeParts {
		lo, hi := part[0], part[1]
		wg.Add(1)
		go func(pi, lo, hi int) {
			defer wg.Done()
			var localRn, localUn float64
			p, s, b, v := cfg.Vectors.P, cfg.Vectors.S, cfg.Vectors.B, cfg.Vectors.V
			for i := lo; i < hi; i++ {
				j := 3 * i
				rx := (p[j] - s[j] - frx[i]) * b[j]
				ry := (p[j+1] - s[j+1] - fry[i]) * b[j+1]
				rz := (p[j+2] - s[j+2] - frz[i]) * b[j+2]
				localRn += math.Sqrt(rx*rx + ry*ry + rz*rz)

				mi := mass[i]
				v[j] += rx / mi
				v[j+1] += ry / mi
				v[j+2] += rz / mi
				localUn += mi * (v[j]*v[j] + v[j+1]*v[j+1] + v[j+2]*v[j+2])
			}
			partials[pi] = [2]float64{localRn, localUn}
		}(pi, lo, hi)
	}
	wg.Wait()
	for _, p := range partials {
		rn += p[0]
		un += p[1]
	}
	return rn, un
}
