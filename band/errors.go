// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package band

import "github.com/cpmech/gosl/io"

// ErrKind distinguishes the failure classes of the kernel. None of these are
// transient; a failed operation must not be retried on the same buffers.
type ErrKind int

const (

	// ErrTopology means the node adjacency or the top/bottom counts are inconsistent
	ErrTopology ErrKind = iota + 1

	// ErrAllocation means the requested problem size cannot back a buffer set
	ErrAllocation

	// ErrIndex means a row/node index fell outside the allocated range
	ErrIndex

	// ErrSingular means a pivot vanished during elimination
	ErrSingular

	// ErrLifecycle means an operation was invoked in the wrong buffer state
	ErrLifecycle
)

// Error carries the failure class together with a formatted message
type Error struct {
	Kind ErrKind
	Msg  string
}

// Error returns the message
func (o *Error) Error() string { return o.Msg }

// newerr returns a new Error with formatted message
func newerr(kind ErrKind, msg string, prm ...interface{}) *Error {
	return &Error{Kind: kind, Msg: io.Sf(msg, prm...)}
}

// Kind returns the failure class of err, or 0 if err did not originate here
func Kind(err error) ErrKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
