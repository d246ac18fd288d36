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

// Package runtimeid implements the runtime-identity ownership domain:
// every owner gets a fresh, process-unique witness with no
// compile-time or registry machinery, and ownership checks are a
// single equality test.
//
// The witness source is chosen per owner by Policy (see WithPolicy);
// the default needs no teardown at all. Serials from the sequence
// policy are odd and serials from the pooled policy are even, so the
// two counter schemes cannot collide with each other, and handle
// identities carry a pointer payload that cannot collide with either.
package runtimeid

import (
	"sync"
	"sync/atomic"

	"dirpx.dev/gatecell/apis"
	"dirpx.dev/gatecell/borrow"
)

// seqCounter feeds PolicySeq. Add(2) keeps every issued serial odd.
var seqCounter atomic.Uint64

// pool feeds PolicyPooled with even serials, recycling closed ones.
var pool = struct {
	mu   sync.Mutex
	free []uint64
	next uint64
}{next: 2}

func leasePooled() uint64 {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	if n := len(pool.free); n > 0 {
		serial := pool.free[n-1]
		pool.free = pool.free[:n-1]
		return serial
	}
	serial := pool.next
	pool.next += 2
	return serial
}

func recyclePooled(serial uint64) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	pool.free = append(pool.free, serial)
}

// Owner is a runtime-identity admin for zero or more cells.
//
// An Owner (and cells created under it) may be used from any number of
// goroutines, subject to the borrow protocol and to the safety of the
// contained value types. Owners must not be copied.
type Owner struct {
	id     apis.ID
	serial uint64
	policy Policy
	flag   borrow.Flag
	// recycled ensures a pooled serial re-enters the pool exactly once
	// even if Close is called repeatedly.
	recycled atomic.Bool
}

var _ apis.Owner = (*Owner)(nil)

// New creates an owner with a fresh runtime identity. With no options
// it uses PolicyHandle; see WithPolicy for the alternatives.
func New(opts ...Option) *Owner {
	s := settings{policy: PolicyHandle}
	for _, opt := range opts {
		opt(&s)
	}
	o := &Owner{policy: s.policy}
	switch s.policy {
	case PolicySeq:
		o.serial = seqCounter.Add(2) - 1
		o.id = apis.SerialID(apis.KindRuntime, o.serial)
	case PolicyPooled:
		o.serial = leasePooled()
		o.id = apis.SerialID(apis.KindRuntime, o.serial)
	default:
		o.id = apis.HandleID(apis.KindRuntime)
	}
	return o
}

// ID returns the owner's witness. The result can create cells without
// a reference to the owner (gatecell.NewCell).
func (o *Owner) ID() apis.ID {
	return o.id
}

// Owns reports whether id is this owner's witness.
func (o *Owner) Owns(id apis.ID) bool {
	return id == o.id
}

// Gate returns the owner's borrow gate.
func (o *Owner) Gate() apis.Gate {
	return &o.flag
}

// Policy returns the identity-allocation policy the owner was built
// with.
func (o *Owner) Policy() Policy {
	return o.policy
}

// Close retires the owner. For PolicyPooled this also returns the
// identity to the pool for reuse. Close fails with borrow.ErrBusy
// while borrows are outstanding and is otherwise idempotent. Closing
// is optional for the other policies; a closed owner of any policy
// refuses all further borrows.
func (o *Owner) Close() error {
	if err := o.flag.Close(); err != nil {
		return err
	}
	if o.policy == PolicyPooled && o.recycled.CompareAndSwap(false, true) {
		recyclePooled(o.serial)
	}
	return nil
}
