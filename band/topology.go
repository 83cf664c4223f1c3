// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package band implements the banded coefficient storage and direct-solve
// kernel of the aperture-map flow model: topology validation, band index
// building, the coefficient store with its allocation lifecycle, and the
// elimination/back-substitution solver.
package band

// MaxCoupling is the stencil width: each equation couples to at most four
// geometric neighbours
const MaxCoupling = 4

// NoLink is the sentinel stored in link-table slots without a coupling
const NoLink = -1

// NodeGroup distinguishes the two node groups of the layered domain
type NodeGroup int

const (
	// Top marks nodes on the top surface
	Top NodeGroup = iota
	// Bottom marks nodes on the bottom surface
	Bottom
)

// ProblemSize holds the dimensions fixed once per mesh topology
type ProblemSize struct {
	Ntop  int // number of equations in the top group
	Nbot  int // number of equations in the bottom group
	Ntot  int // total number of equations == Ntop + Nbot
	Mband int // maximum bandwidth of the solve ordering
}

// Topology holds the fixed coupling structure of the mesh: which equation
// couples to which, independently of coefficient values. Couplings are
// undirected and at most MaxCoupling per node. Immutable after construction.
type Topology struct {
	ntop  int
	nbot  int
	group []NodeGroup // [ntot] group of each natural node id
	adj   [][]int     // [ntot][<=MaxCoupling] natural ids of coupled nodes
}

// NewTopology validates the node adjacency and returns a new Topology.
//  Input:
//   ntop      -- declared number of top-group nodes
//   nbot      -- declared number of bottom-group nodes
//   group     -- [ntot] group of each natural node id
//   adjacency -- [ntot][...] natural ids coupled to each node (undirected)
func NewTopology(ntop, nbot int, group []NodeGroup, adjacency [][]int) (*Topology, error) {

	// counts
	ntot := ntop + nbot
	if ntot < 1 {
		return nil, newerr(ErrTopology, "topology needs at least one node: ntop=%d nbot=%d", ntop, nbot)
	}
	if len(group) != ntot || len(adjacency) != ntot {
		return nil, newerr(ErrTopology, "top/bottom counts do not sum to the declared total: ntop=%d nbot=%d ngroup=%d nadj=%d", ntop, nbot, len(group), len(adjacency))
	}
	gtop, gbot := 0, 0
	for _, g := range group {
		if g == Top {
			gtop++
		} else {
			gbot++
		}
	}
	if gtop != ntop || gbot != nbot {
		return nil, newerr(ErrTopology, "group counts disagree with declared counts: ntop=%d (found %d), nbot=%d (found %d)", ntop, gtop, nbot, gbot)
	}

	// couplings
	for i, nbrs := range adjacency {
		if len(nbrs) > MaxCoupling {
			return nil, newerr(ErrTopology, "node %d declares %d couplings; the stencil allows at most %d", i, len(nbrs), MaxCoupling)
		}
		for _, j := range nbrs {
			if j < 0 || j >= ntot {
				return nil, newerr(ErrTopology, "node %d couples to out-of-range node %d (ntot=%d)", i, j, ntot)
			}
			if j == i {
				return nil, newerr(ErrTopology, "node %d couples to itself", i)
			}
		}
		for a := 0; a < len(nbrs); a++ {
			for b := a + 1; b < len(nbrs); b++ {
				if nbrs[a] == nbrs[b] {
					return nil, newerr(ErrTopology, "node %d declares coupling to node %d twice", i, nbrs[a])
				}
			}
		}
	}

	// symmetry: A↔B must be declared on both sides
	for i, nbrs := range adjacency {
		for _, j := range nbrs {
			if !contains(adjacency[j], i) {
				return nil, newerr(ErrTopology, "coupling %d→%d is not mirrored by %d→%d", i, j, j, i)
			}
		}
	}

	// deep copy: the topology must stay valid if the caller mutates its slices
	o := &Topology{ntop: ntop, nbot: nbot}
	o.group = make([]NodeGroup, ntot)
	copy(o.group, group)
	o.adj = make([][]int, ntot)
	for i, nbrs := range adjacency {
		o.adj[i] = make([]int, len(nbrs))
		copy(o.adj[i], nbrs)
	}
	return o, nil
}

// Ntop returns the number of top-group nodes
func (o *Topology) Ntop() int { return o.ntop }

// Nbot returns the number of bottom-group nodes
func (o *Topology) Nbot() int { return o.nbot }

// Ntot returns the total number of nodes
func (o *Topology) Ntot() int { return o.ntop + o.nbot }

// Group returns the group of natural node i
func (o *Topology) Group(i int) NodeGroup { return o.group[i] }

// Degree returns the number of couplings of natural node i
func (o *Topology) Degree(i int) int { return len(o.adj[i]) }

// Neighbour returns the k-th coupled natural node of node i
func (o *Topology) Neighbour(i, k int) int { return o.adj[i][k] }

// contains reports whether list holds val
func contains(list []int, val int) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}
