/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package borrow materializes the shared/exclusive borrow protocol as
// an explicit runtime state machine.
//
// The protocol itself is the classic readers/writer discipline without
// any blocking: any number of shared borrows may be outstanding at
// once, an exclusive borrow tolerates no neighbors of either kind, and
// a rejected transition is a contract violation by the caller rather
// than contention to wait out. Owners embed one Flag and expose it as
// their apis.Gate.
//
// A Flag also has a terminal Closed state. Owners with an explicit
// teardown (pooled runtime identities, singleton registrations, scope
// exits) close their flag first, which guarantees a retired owner can
// never hand out access again even if a stale reference survives.
package borrow

import (
	"errors"
	"math"
	"sync/atomic"
)

var (
	// ErrConflict is returned when a borrow would violate exclusivity:
	// starting any borrow while an exclusive one is outstanding, or an
	// exclusive borrow while shared ones are outstanding.
	ErrConflict = errors.New("gatecell(borrow): conflicting borrow already outstanding")
	// ErrClosed is returned when borrowing through an owner that has
	// been retired.
	ErrClosed = errors.New("gatecell(borrow): owner is no longer live")
	// ErrBusy is returned by Close when borrows are still outstanding.
	ErrBusy = errors.New("gatecell(borrow): cannot close with borrows outstanding")
)

// Flag state encoding: 0 is Idle, n > 0 is SharedActive(n), -1 is
// ExclusiveActive and math.MinInt64 is Closed. All transitions are CAS
// loops, so a Flag is safe for concurrent use without a mutex.
const (
	idle      int64 = 0
	exclusive int64 = -1
	closed    int64 = math.MinInt64
)

// Flag is the runtime borrow gate embedded in every owner.
//
// The zero Flag is Idle and ready for use. A Flag must not be copied
// after first use.
type Flag struct {
	state atomic.Int64
}

// StartShared enters (or deepens) the shared-borrow state.
func (f *Flag) StartShared() error {
	for {
		s := f.state.Load()
		switch {
		case s == closed:
			return ErrClosed
		case s < 0:
			return ErrConflict
		}
		if f.state.CompareAndSwap(s, s+1) {
			return nil
		}
	}
}

// EndShared releases one shared borrow. Calling it without a matching
// successful StartShared is a protocol violation and panics.
func (f *Flag) EndShared() {
	for {
		s := f.state.Load()
		if s <= 0 {
			panic("gatecell(borrow): EndShared without outstanding shared borrow")
		}
		if f.state.CompareAndSwap(s, s-1) {
			return
		}
	}
}

// StartExclusive moves the gate from Idle to ExclusiveActive.
func (f *Flag) StartExclusive() error {
	for {
		s := f.state.Load()
		switch {
		case s == closed:
			return ErrClosed
		case s != idle:
			return ErrConflict
		}
		if f.state.CompareAndSwap(idle, exclusive) {
			return nil
		}
	}
}

// EndExclusive releases the exclusive borrow. Calling it without a
// matching successful StartExclusive is a protocol violation and
// panics.
func (f *Flag) EndExclusive() {
	if !f.state.CompareAndSwap(exclusive, idle) {
		panic("gatecell(borrow): EndExclusive without outstanding exclusive borrow")
	}
}

// Close retires the gate. It succeeds only from Idle — an owner with
// live borrows cannot be torn down — and is idempotent once closed.
func (f *Flag) Close() error {
	for {
		s := f.state.Load()
		switch {
		case s == closed:
			return nil
		case s != idle:
			return ErrBusy
		}
		if f.state.CompareAndSwap(idle, closed) {
			return nil
		}
	}
}

// Closed reports whether the gate has been retired.
func (f *Flag) Closed() bool {
	return f.state.Load() == closed
}
