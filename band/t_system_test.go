// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_sys01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sys01. allocate/release round trip")

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
	chk.IntAssert(int(sys.State()), int(Allocated))
	chk.IntAssert(sys.Size().Ntot, 9)

	// release then a second identical allocation must succeed
	sys.Release()
	chk.IntAssert(int(sys.State()), int(Unallocated))
	err = sys.Allocate(idx)
	if err != nil {
		tst.Errorf("re-allocation failed:\n%v", err)
		return
	}
	chk.IntAssert(int(sys.State()), int(Allocated))

	// repeated teardown is a no-op
	sys.Release()
	sys.Release()
	chk.IntAssert(int(sys.State()), int(Unallocated))
}

func Test_sys02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sys02. allocation guards")

	// invalid problem size
	var sys System
	err := sys.Allocate(nil)
	if err == nil {
		tst.Errorf("nil index set must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrAllocation))

	tpo := gridTopology(tst, 3, 3, false)
	idx, err := BuildIndexSet(tpo)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	err = sys.Allocate(idx)
	if err != nil {
		tst.Errorf("allocation failed:\n%v", err)
		return
	}

	// identical size: no-op, assembled coefficients survive
	err = sys.SetCoefficients(0, 1, [MaxCoupling]float64{})
	if err != nil {
		tst.Errorf("set failed:\n%v", err)
		return
	}
	err = sys.Allocate(idx)
	if err != nil {
		tst.Errorf("idempotent allocation failed:\n%v", err)
		return
	}
	chk.IntAssert(int(sys.State()), int(Assembled))

	// different size: old buffers are released first
	tpo2 := gridTopology(tst, 4, 4, false)
	idx2, err := BuildIndexSet(tpo2)
	if err != nil {
		tst.Errorf("build failed:\n%v", err)
		return
	}
	err = sys.Allocate(idx2)
	if err != nil {
		tst.Errorf("re-allocation failed:\n%v", err)
		return
	}
	chk.IntAssert(int(sys.State()), int(Allocated))
	chk.IntAssert(sys.Size().Ntot, 16)
	sys.Release()
}

func Test_sys03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sys03. coefficient write guards")

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

	// row == total count is out of range
	err = sys.SetCoefficients(9, 1, [MaxCoupling]float64{})
	if err == nil {
		tst.Errorf("out-of-range write must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrIndex))
	err = sys.SetCoefficients(-1, 1, [MaxCoupling]float64{})
	if err == nil {
		tst.Errorf("negative row must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrIndex))
	err = sys.SetSource(9, 1)
	if err == nil {
		tst.Errorf("out-of-range source must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrIndex))

	// solving without assembled coefficients
	_, err = sys.Solve()
	if err == nil {
		tst.Errorf("solve from allocated-but-empty must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrLifecycle))

	// operations on released buffers
	sys.Release()
	err = sys.SetCoefficients(0, 1, [MaxCoupling]float64{})
	if err == nil {
		tst.Errorf("write after release must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrLifecycle))
	_, err = sys.Solve()
	if err == nil {
		tst.Errorf("solve after release must fail")
		return
	}
	chk.IntAssert(int(Kind(err)), int(ErrLifecycle))
}
