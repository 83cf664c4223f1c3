// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

// IndexSet holds the solve ordering and band structure derived once from a
// Topology. It is a pure function of the topology: identical input always
// yields the identical ordering, link table and bandwidth, so repeated
// campaign runs reproduce bit-identical eliminations. Immutable after build.
type IndexSet struct {

	// sizes
	Size ProblemSize // counts and maximum bandwidth

	// orderings: bijection over [0,Ntot)
	Inat []int // [ntot] natural node id → row in solve ordering (INAT)
	Ino  []int // [ntot] row in solve ordering → natural node id (INO)

	// band structure
	Links [][]int // [ntot][MaxCoupling] rows coupled to each row, in stencil slot order; NoLink fills unused slots
	Ibase []int   // [ntot+1] per-row base offset into the flattened upper-band storage
}

// BuildIndexSet derives the solve ordering and band structure from tpo.
// Rows are assigned grid-aligned: top-group nodes first in ascending natural
// order, then bottom-group nodes. For the four-neighbour stencil this keeps
// the bandwidth at the in-plane grid pitch of each group.
func BuildIndexSet(tpo *Topology) (*IndexSet, error) {

	// ordering: top block before bottom block
	ntot := tpo.Ntot()
	o := &IndexSet{
		Inat: make([]int, ntot),
		Ino:  make([]int, ntot),
	}
	irow := 0
	for _, g := range []NodeGroup{Top, Bottom} {
		for n := 0; n < ntot; n++ {
			if tpo.Group(n) == g {
				o.Inat[n] = irow
				o.Ino[irow] = n
				irow++
			}
		}
	}

	// link table in solve ordering and maximum bandwidth. Slot k of row r
	// corresponds to slot k of the coefficient store's stencil terms, so the
	// table and TT stay aligned by geometric neighbour direction.
	mband := 0
	o.Links = make([][]int, ntot)
	for r := 0; r < ntot; r++ {
		n := o.Ino[r]
		o.Links[r] = make([]int, MaxCoupling)
		for k := 0; k < MaxCoupling; k++ {
			o.Links[r][k] = NoLink
		}
		for k := 0; k < tpo.Degree(n); k++ {
			lr := o.Inat[tpo.Neighbour(n, k)]
			o.Links[r][k] = lr
			if d := r - lr; d > mband {
				mband = d
			} else if d := lr - r; d > mband {
				mband = d
			}
		}
	}

	// base offsets into the flattened upper-band storage: each row owns its
	// diagonal slot plus one slot per in-band superdiagonal column
	o.Ibase = make([]int, ntot+1)
	for r := 0; r < ntot; r++ {
		width := mband
		if rem := ntot - 1 - r; rem < width {
			width = rem
		}
		o.Ibase[r+1] = o.Ibase[r] + 1 + width
	}

	o.Size = ProblemSize{Ntop: tpo.Ntop(), Nbot: tpo.Nbot(), Ntot: ntot, Mband: mband}
	return o, nil
}

// UpperLen returns the length of the flattened upper-band storage
func (o *IndexSet) UpperLen() int { return o.Ibase[o.Size.Ntot] }
