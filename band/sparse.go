// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"github.com/edp1096/sparse"
)

// spSol is the alternative backend built on the Sparse-1.3 LU factorisation.
// It rebuilds the sparse matrix from the coefficient store on every call and
// exists as an independent cross-check of the native band solver; large
// campaigns normally stay on the native backend.
type spSol struct {
	mat *sparse.Matrix
}

func init() {
	solverMakers["sparse"] = func() LinSol { return new(spSol) }
}

// Solve assembles and solves via sparse LU
func (o *spSol) Solve(sys *System) ([]float64, error) {

	idx := sys.idx
	n := idx.Size.Ntot

	// fresh matrix per solve: element values cannot be overwritten in place
	o.Free()
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}
	mat, err := sparse.Create(int64(n), config)
	if err != nil {
		return nil, newerr(ErrAllocation, "cannot create sparse matrix (n=%d): %v", n, err)
	}
	o.mat = mat

	// assemble in solve ordering; sparse rows/columns are 1-based
	rhs := make([]float64, n+1)
	for r := 0; r < n; r++ {
		nat := idx.Ino[r]
		o.mat.GetElement(int64(r+1), int64(r+1)).Real += sys.cc[nat]
		for k := 0; k < MaxCoupling; k++ {
			if lr := idx.Links[r][k]; lr != NoLink {
				o.mat.GetElement(int64(r+1), int64(lr+1)).Real += sys.tt[nat][k]
			}
		}
		rhs[r+1] = sys.src[nat]
	}

	// factor and solve
	err = o.mat.Factor()
	if err != nil {
		return nil, newerr(ErrSingular, "sparse factorisation failed (n=%d): %v", n, err)
	}
	sol, err := o.mat.Solve(rhs)
	if err != nil {
		return nil, newerr(ErrSingular, "sparse solve failed (n=%d): %v", n, err)
	}

	// translate back to natural node identifiers
	x := make([]float64, n)
	for r := 0; r < n; r++ {
		x[idx.Ino[r]] = sol[r+1]
	}
	return x, nil
}

// Free destroys the sparse matrix
func (o *spSol) Free() {
	if o.mat != nil {
		o.mat.Destroy()
		o.mat = nil
	}
}
