// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import "math"

// pivot tolerance: a pivot below tolPivot times the largest assembled
// diagonal magnitude (with an absolute floor) fails the solve as singular
const (
	tolPivot = 1e-14
	minPivot = 1e-300
)

// LinSol is a pluggable linear solver backend consuming one assembled System
type LinSol interface {
	Solve(sys *System) (x []float64, err error) // solution indexed by natural node id
	Free()
}

// solverMakers holds all available solver backends
var solverMakers = make(map[string]func() LinSol)

// GetSolver returns a new solver backend by name ("band", "sparse").
// Unknown names fall back to the native band solver.
func GetSolver(name string) LinSol {
	if maker, ok := solverMakers[name]; ok {
		return maker()
	}
	return bandSol{}
}

// bandSol is the native banded elimination backend
type bandSol struct{}

func (bandSol) Solve(sys *System) ([]float64, error) { return sys.eliminate() }
func (bandSol) Free()                                {}

func init() {
	solverMakers["band"] = func() LinSol { return bandSol{} }
}

// Solve runs the direct solve on the current coefficients and returns the
// solution vector indexed by natural node id. Valid from Assembled (or
// Solved, for re-solving the same variant); the coefficient store is left
// untouched so repeated solves are bit-reproducible.
func (o *System) Solve() ([]float64, error) {
	if o.state != Assembled && o.state != Solved {
		return nil, newerr(ErrLifecycle, "cannot solve: no assembled coefficients (state=%d)", o.state)
	}
	lis := o.lis
	if lis == nil {
		lis = bandSol{}
	}
	x, err := lis.Solve(o)
	if err != nil {
		return nil, err
	}
	o.state = Solved
	return x, nil
}

// eliminate performs the banded Gaussian elimination and back-substitution.
// Rows are processed in the fixed solve ordering; per-row work is bounded by
// the bandwidth, not the total equation count. The link table seeds each
// working row and the upper-band factor carries the fill-in inside the band.
func (o *System) eliminate() ([]float64, error) {

	idx := o.idx
	n := idx.Size.Ntot
	mb := idx.Size.Mband

	// pivot tolerance from the assembled diagonal magnitudes
	dmax := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(o.cc[i]); d > dmax {
			dmax = d
		}
	}
	tol := tolPivot * dmax
	if tol < minPivot {
		tol = minPivot
	}

	// right-hand side in solve ordering
	y := make([]float64, n)
	for r := 0; r < n; r++ {
		y[r] = o.src[idx.Ino[r]]
	}

	// forward elimination
	for r := 0; r < n; r++ {

		// seed the working row from the coefficient store via the link table
		nat := idx.Ino[r]
		o.row[r] = o.cc[nat]
		for k := 0; k < MaxCoupling; k++ {
			if lr := idx.Links[r][k]; lr != NoLink {
				o.row[lr] = o.tt[nat][k]
			}
		}

		// eliminate couplings to already-processed rows; zero slots are
		// skipped so the work stays proportional to the band population
		lo := r - mb
		if lo < 0 {
			lo = 0
		}
		for k := lo; k < r; k++ {
			if o.row[k] == 0 {
				continue
			}
			base := idx.Ibase[k]
			m := o.row[k] / o.upper[base]
			width := idx.Ibase[k+1] - base - 1
			for d := 1; d <= width; d++ {
				if u := o.upper[base+d]; u != 0 {
					o.row[k+d] -= m * u
				}
			}
			y[r] -= m * y[k]
			o.row[k] = 0
		}

		// pivot check
		base := idx.Ibase[r]
		width := idx.Ibase[r+1] - base - 1
		piv := o.row[r]
		if math.Abs(piv) < tol {
			// scrub the working row before surfacing the failure
			o.row[r] = 0
			for d := 1; d <= width; d++ {
				o.row[r+d] = 0
			}
			return nil, newerr(ErrSingular, "pivot %g of row %d (node %d) is below tolerance %g: system is singular", piv, r, nat, tol)
		}

		// store the factor row and reset the workspace
		o.upper[base] = piv
		o.row[r] = 0
		for d := 1; d <= width; d++ {
			o.upper[base+d] = o.row[r+d]
			o.row[r+d] = 0
		}
	}

	// back-substitution in reverse solve order
	for r := n - 1; r >= 0; r-- {
		base := idx.Ibase[r]
		width := idx.Ibase[r+1] - base - 1
		sum := y[r]
		for d := 1; d <= width; d++ {
			if u := o.upper[base+d]; u != 0 {
				sum -= u * y[r+d]
			}
		}
		y[r] = sum / o.upper[base]
	}

	// translate back to natural node identifiers
	x := make([]float64, n)
	for r := 0; r < n; r++ {
		x[idx.Ino[r]] = y[r]
	}
	return x, nil
}
