// Package fdm implements the force-density form-finding solver: given a
// pin-jointed network, prescribed edge force densities and nodal loads,
// it computes the equilibrium coordinates of the free nodes by a single
// dense linear solve over the reduced free-DOF block.
package fdm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/blockrg/goformfind/network"
	"github.com/blockrg/goformfind/progress"
)

// Solve mutates model.Vertices in place, assigning new coordinates to the
// free nodes such that the network is in equilibrium under model.Loads
// with the edge force densities model.Q. If there are no free nodes the
// call is a no-op. onStep, if non-nil, is invoked once after the solve
// with iteration index 0 (the solve is a single direct linear solve, not
// an iterative loop, so there is exactly one step to report).
func Solve(model *network.FDModel, onStep progress.OnStepFunc) error {
	if err := model.Validate(); err != nil {
		return err
	}
	n := len(model.Vertices)
	m := len(model.Edges)
	nFree := len(model.Free)
	nFix := len(model.Fixed)

	if nFree == 0 {
		return nil
	}

	// Step 1: branch-node connectivity matrix C, shape m x n.
	C := mat.NewDense(m, n, nil)
	for i, e := range model.Edges {
		C.Set(i, e[0], -1)
		C.Set(i, e[1], 1)
	}

	// Step 2: diagonal force-density matrix Q, shape m x m.
	Q := mat.NewDiagDense(m, model.Q)

	// Step 3: partition the columns of C by fixity.
	Ci := subCols(C, model.Free)
	Cf := subCols(C, model.Fixed)

	// Step 4: partition loads and vertices by fixity. The fixed rows of
	// loads play no further role in the algorithm below, so only Pi is
	// materialized.
	Pi := subRows3(model.Loads, model.Free)
	Xf := subRows3(model.Vertices, model.Fixed)

	// Step 5: A = Ci^T Q Ci (nFree x nFree); b = Pi - Ci^T Q Cf Xf.
	var QCi, A mat.Dense
	QCi.Mul(Q, Ci)
	A.Mul(Ci.T(), &QCi)

	var b mat.Dense
	b.CloneFrom(Pi)
	if nFix > 0 {
		var QCf, CitQCf, CitQCfXf mat.Dense
		QCf.Mul(Q, Cf)
		CitQCf.Mul(Ci.T(), &QCf)
		CitQCfXf.Mul(&CitQCf, Xf)
		b.Sub(Pi, &CitQCfXf)
	}

	// Step 6: solve A . Xi = b by QR; fall back to a rank-revealing SVD
	// least-squares solve if A is singular or ill-conditioned. A free
	// subgraph disconnected from any fixed support leaves A singular, and
	// the SVD path still returns its minimum-norm solution in that case.
	var Xi mat.Dense
	var qr mat.QR
	qr.Factorize(&A)
	if err := qr.SolveTo(&Xi, false, &b); err != nil {
		var svd mat.SVD
		if !svd.Factorize(&A, mat.SVDThin) {
			return fmt.Errorf("fdm: reduced stiffness matrix is singular and SVD factorization failed")
		}
		rank := svd.Rank(1e-12)
		if rank < 1 {
			return fmt.Errorf("fdm: unable to solve singular reduced system: rank-deficient to zero")
		}
		svd.SolveTo(&Xi, &b, rank)
	}

	// Step 7: write each row of Xi back to vertices[free[i]].
	for i, idx := range model.Free {
		model.Vertices[idx] = [3]float64{Xi.At(i, 0), Xi.At(i, 1), Xi.At(i, 2)}
	}

	progress.Notify(onStep, 0)
	return nil
}

// subCols returns the dense matrix formed from the given column indices
// of m, in the order given.
func subCols(m *mat.Dense, cols []int) *mat.Dense {
	nr, _ := m.Dims()
	out := mat.NewDense(nr, len(cols), nil)
	for j, c := range cols {
		out.SetCol(j, mat.Col(nil, c, m))
	}
	return out
}

// subRows3 returns the dense (len(rows) x 3) matrix formed by selecting
// rows from a [3]float64-per-node array.
func subRows3(rows [][3]float64, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), 3, nil)
	for i, r := range idx {
		out.SetRow(i, rows[r][:])
	}
	return out
}
