// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// assemblePoisson fills sys with the discrete Laplace operator over the given
// topology, holding the first grid column at pin and the last at pout
func assemblePoisson(tst *testing.T, sys *System, tpo *Topology, nx int, pin, pout float64) {
	for n := 0; n < tpo.Ntot(); n++ {
		var terms [MaxCoupling]float64
		var diag, src float64
		switch ix := n % nx; {
		case ix == 0: // inlet column: held pressure
			diag = 1
			src = pin
		case ix == nx-1: // outlet column: held pressure
			diag = 1
			src = pout
		default:
			diag = -float64(tpo.Degree(n))
			for k := 0; k < tpo.Degree(n); k++ {
				terms[k] = 1
			}
		}
		if err := sys.SetCoefficients(n, diag, terms); err != nil {
			tst.Fatalf("set coefficients failed:\n%v", err)
		}
		if err := sys.SetSource(n, src); err != nil {
			tst.Fatalf("set source failed:\n%v", err)
		}
	}
}

// denseSolve computes the reference solution by dense elimination with
// partial pivoting, assembling the full matrix from the same store
func denseSolve(tst *testing.T, sys *System) []float64 {
	idx := sys.idx
	n := idx.Size.Ntot
	A := make([][]float64, n)
	for i := range A {
		A[i] = make([]float64, n)
	}
	b := make([]float64, n)
	for nat := 0; nat < n; nat++ {
		r := idx.Inat[nat]
		A[r][r] = sys.cc[nat]
		for k := 0; k < MaxCoupling; k++ {
			if lr := idx.Links[r][k]; lr != NoLink {
				A[r][lr] = sys.tt[nat][k]
			}
		}
		b[r] = sys.src[nat]
	}
	for k := 0; k < n; k++ {
		p := k
		for i := k + 1; i < n; i++ {
			if math.Abs(A[i][k]) > math.Abs(A[p][k]) {
				p = i
			}
		}
		A[k], A[p] = A[p], A[k]
		b[k], b[p] = b[p], b[k]
		if A[k][k] == 0 {
			tst.Fatalf("dense reference is singular at column %d", k)
		}
		for i := k + 1; i < n; i++ {
			m := A[i][k] / A[k][k]
			if m == 0 {
				continue
			}
			for j := k; j < n; j++ {
				A[i][j] -= m * A[k][j]
			}
			b[i] -= m * b[k]
		}
	}
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= A[i][j] * b[j]
		}
		b[i] = sum / A[i][i]
	}
	x := make([]float64, n)
	for nat := 0; nat < n; nat++ {
		x[nat] = b[idx.Inat[nat]]
	}
	return x
}

func Test_solve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve01. 3x3 grid against dense reference")

	tpo := gridTopology(tst, 3, 3, false)
	idx, err := BuildIndexSet(tpo)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	sys, err := NewSystem(idx)
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	defer sys.Release()

	assemblePoisson(tst, sys, tpo, 3, 100, 0)
	x, err := sys.Solve()
	if err != nil {
		tst.Errorf("solve failed:\n%v", err)
		return
	}
	chk.IntAssert(int(sys.State()), int(Solved))

	// hand-known solution: uniform gradient across the columns
	for n := 0; n < 9; n++ {
		want := []float64{100, 50, 0}[n%3]
		chk.Float64(tst, "p", 1e-10, x[n], want)
	}

	// dense reference
	xref := denseSolve(tst, sys)
	chk.Array(tst, "x vs dense", 1e-10, x, xref)
}

func Test_solve02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve02. two-layer system and determinism")

	tpo := gridTopology(tst, 5, 4, true)
	idx, err := BuildIndexSet(tpo)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	sys, err := NewSystem(idx)
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	defer sys.Release()

	// fully asymmetric coefficients so the two layers differ and no
	// transmissibility repeats across slots
	for n := 0; n < tpo.Ntot(); n++ {
		var terms [MaxCoupling]float64
		diag := 0.0
		for k := 0; k < tpo.Degree(n); k++ {
			t := 1.0 + 0.13*float64((n*7+k*3)%11)
			terms[k] = t
			diag -= t
		}
		src := 0.0
		switch n % 9 {
		case 0:
			diag -= 3
			src = -3 * float64(50+n)
		case 6:
			diag -= 2
		}
		if err := sys.SetCoefficients(n, diag, terms); err != nil {
			tst.Fatalf("set coefficients failed:\n%v", err)
		}
		if err := sys.SetSource(n, src); err != nil {
			tst.Fatalf("set source failed:\n%v", err)
		}
	}

	x1, err := sys.Solve()
	if err != nil {
		tst.Errorf("first solve failed:\n%v", err)
		return
	}
	xref := denseSolve(tst, sys)
	chk.Array(tst, "x vs dense", 1e-9, x1, xref)

	// bit-for-bit reproducible without reallocation
	x2, err := sys.Solve()
	if err != nil {
		tst.Errorf("second solve failed:\n%v", err)
		return
	}
	for i := range x1 {
		if x1[i] != x2[i] {
			tst.Errorf("solution differs at %d: %v != %v", i, x1[i], x2[i])
			return
		}
	}
}

func Test_solve03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve03. singular system is rejected")

	tpo := gridTopology(tst, 3, 3, false)
	idx, err := BuildIndexSet(tpo)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	sys, err := NewSystem(idx)
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	defer sys.Release()

	// all-zero diagonal terms: degenerate system
	for n := 0; n < tpo.Ntot(); n++ {
		if err := sys.SetCoefficients(n, 0, [MaxCoupling]float64{}); err != nil {
			tst.Fatalf("set coefficients failed:\n%v", err)
		}
	}
	_, err = sys.Solve()
	if err == nil {
		tst.Errorf("singular system must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrSingular))

	// a failed solve must not poison a later valid assembly
	assemblePoisson(tst, sys, tpo, 3, 10, 0)
	x, err := sys.Solve()
	if err != nil {
		tst.Errorf("re-solve after failure failed:\n%v", err)
		return
	}
	chk.Float64(tst, "p(center)", 1e-10, x[4], 5)
}

func Test_solve04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve04. sparse backend agrees with the band solver")

	tpo := gridTopology(tst, 4, 4, false)
	idx, err := BuildIndexSet(tpo)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	sys, err := NewSystem(idx)
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}
	defer sys.Release()

	assemblePoisson(tst, sys, tpo, 4, 250, 50)
	xband, err := sys.Solve()
	if err != nil {
		tst.Errorf("band solve failed:\n%v", err)
		return
	}

	err = sys.UseSolver("sparse")
	if err != nil {
		tst.Errorf("backend selection failed:\n%v", err)
		return
	}
	xsp, err := sys.Solve()
	if err != nil {
		tst.Errorf("sparse solve failed:\n%v", err)
		return
	}
	chk.Array(tst, "band vs sparse", 1e-9, xband, xsp)
}
