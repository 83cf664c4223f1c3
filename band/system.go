// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

// State is the lifecycle state of one System's buffer set
type State int

const (

	// Unallocated means no buffers are held
	Unallocated State = iota

	// Allocated means buffers exist but no coefficients were written yet
	Allocated

	// Assembled means coefficients are in place and ready to solve
	Assembled

	// Solved means the last solve completed; coefficients are still in place
	Solved
)

// System owns the banded coefficient storage and scratch buffers for one
// problem topology. All buffers are allocated together and released together;
// repeated solves across a campaign of parameter variations reuse the same
// memory. A System must not be shared across concurrent solves: each worker
// owns its private instance.
type System struct {

	// index structure (owned; released with the buffers)
	idx *IndexSet

	// coefficient store, indexed by natural node id
	cc  []float64   // [ntot] diagonal coefficient of each equation (CC)
	tt  [][]float64 // [ntot][MaxCoupling] off-diagonal stencil terms (TT)
	src []float64   // [ntot] source term of each equation

	// elimination workspace, indexed by solve row
	upper []float64 // flattened upper-band factor: diagonal + superdiagonals per row (UPPER-D4)
	row   []float64 // one row's working coefficients during elimination (ROW)

	// lifecycle
	state State
	lis   LinSol // solver backend; native band solver when nil
}

// State returns the current lifecycle state
func (o *System) State() State { return o.state }

// Size returns the problem size of the current allocation.
// Zero value when unallocated.
func (o *System) Size() ProblemSize {
	if o.state == Unallocated {
		return ProblemSize{}
	}
	return o.idx.Size
}

// Index returns the owned index set. Nil when unallocated.
func (o *System) Index() *IndexSet { return o.idx }

// NewSystem returns an allocated System ready for assembly
func NewSystem(idx *IndexSet) (*System, error) {
	o := new(System)
	if err := o.Allocate(idx); err != nil {
		return nil, err
	}
	return o, nil
}

// Allocate sizes all buffers for the given index set. If the System is
// already allocated for an identical problem size this is a no-op; for a
// different size the old buffers are released first. Buffers are never
// resized in place: stale index arrays would desynchronise from new
// coefficients.
func (o *System) Allocate(idx *IndexSet) error {
	if idx == nil || idx.Size.Ntot <= 0 {
		return newerr(ErrAllocation, "cannot allocate buffers: invalid problem size (idx=%v)", idx)
	}
	if o.state != Unallocated {
		if o.idx.Size == idx.Size {
			return nil
		}
		o.Release()
	}
	ntot := idx.Size.Ntot
	o.idx = idx
	o.cc = make([]float64, ntot)
	o.tt = make([][]float64, ntot)
	for i := 0; i < ntot; i++ {
		o.tt[i] = make([]float64, MaxCoupling)
	}
	o.src = make([]float64, ntot)
	o.upper = make([]float64, idx.UpperLen())
	o.row = make([]float64, ntot)
	o.state = Allocated
	return nil
}

// Release frees all owned buffers, including the link table and index
// arrays, and returns the System to Unallocated. Releasing an unallocated
// System is a no-op so repeated teardown is safe.
func (o *System) Release() {
	if o.state == Unallocated {
		return
	}
	if o.lis != nil {
		o.lis.Free()
		o.lis = nil
	}
	o.idx = nil
	o.cc = nil
	o.tt = nil
	o.src = nil
	o.upper = nil
	o.row = nil
	o.state = Unallocated
}

// SetCoefficients overwrites one equation's diagonal and stencil terms.
// node is the natural node id. Moves the System to Assembled.
func (o *System) SetCoefficients(node int, diag float64, terms [MaxCoupling]float64) error {
	if o.state == Unallocated {
		return newerr(ErrLifecycle, "cannot set coefficients: buffers are unallocated")
	}
	if node < 0 || node >= o.idx.Size.Ntot {
		return newerr(ErrIndex, "coefficient write out of range: node=%d ntot=%d", node, o.idx.Size.Ntot)
	}
	o.cc[node] = diag
	copy(o.tt[node], terms[:])
	o.state = Assembled
	return nil
}

// SetSource overwrites one equation's source term. node is the natural
// node id. Moves the System to Assembled.
func (o *System) SetSource(node int, value float64) error {
	if o.state == Unallocated {
		return newerr(ErrLifecycle, "cannot set source: buffers are unallocated")
	}
	if node < 0 || node >= o.idx.Size.Ntot {
		return newerr(ErrIndex, "source write out of range: node=%d ntot=%d", node, o.idx.Size.Ntot)
	}
	o.src[node] = value
	o.state = Assembled
	return nil
}

// UseSolver selects the linear solver backend by name; see GetSolver.
// The default (never calling UseSolver) is the native band solver.
func (o *System) UseSolver(name string) error {
	maker, ok := solverMakers[name]
	if !ok {
		return newerr(ErrAllocation, "cannot find solver backend named %q", name)
	}
	if o.lis != nil {
		o.lis.Free()
	}
	o.lis = maker()
	return nil
}
