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

// Package singleton implements the marker-singleton ownership domain:
// the witness is a caller-chosen apis.Marker, and a process-wide
// registry guarantees that at most one live owner holds a given
// marker at any instant.
//
// Construction comes in three flavors mirroring how callers want the
// exclusion to surface: New panics if the marker is taken (a
// programming-error signal), TryNew reports it, and WaitForNew blocks
// until the current holder is closed. Owners are expected to be
// relatively long-lived; if several goroutines need cells of one
// marker, share a single owner between them rather than cycling
// owners. WaitForNew exists mainly so that independently scheduled
// units of work (tests, most commonly) can reuse one marker
// sequentially.
//
// Owners must be released with Close; the registry has no other way
// to learn the holder is gone.
package singleton

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/gatecell/apis"
	"dirpx.dev/gatecell/borrow"
)

// ErrDomainActive is the panic value of New when the requested marker
// already has a live owner. It signals a programming error: two
// components believe they own the same domain at the same time.
var ErrDomainActive = errors.New("gatecell(singleton): marker already has a live owner")

// registry is the process-wide exclusion set. held contains every
// marker with a live owner; cond is broadcast on every release so
// WaitForNew callers can re-check.
var registry = struct {
	mu   sync.Mutex
	cond *sync.Cond
	held map[apis.Marker]struct{}
}{held: make(map[apis.Marker]struct{})}

func init() {
	registry.cond = sync.NewCond(&registry.mu)
}

// Owner is a marker-singleton admin for zero or more cells.
//
// The owner and its cells may be shared and used across goroutines
// (subject to the borrow protocol and the contained value types): the
// registry lookup happened at construction and every later check is a
// plain equality test, valid from any goroutine. Owners must not be
// copied.
type Owner struct {
	id     apis.ID
	flag   borrow.Flag
	closed atomic.Bool
}

var _ apis.Owner = (*Owner)(nil)

// New creates the singleton owner for marker m. There may be at most
// one live owner per marker in the whole process; New panics with
// ErrDomainActive if a second one is requested. Use TryNew or
// WaitForNew where concurrent claims are expected rather than a bug.
func New(m apis.Marker) *Owner {
	o, ok := TryNew(m)
	if !ok {
		panic(ErrDomainActive)
	}
	return o
}

// TryNew is New except that it reports an already-held marker with
// ok == false instead of panicking.
func TryNew(m apis.Marker) (o *Owner, ok bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, taken := registry.held[m]; taken {
		return nil, false
	}
	registry.held[m] = struct{}{}
	return &Owner{id: apis.MarkerID(apis.KindSingleton, m)}, true
}

// WaitForNew is New except that it blocks the calling goroutine until
// the marker's current owner (if any) is closed, then claims it. There
// is no timeout or cancellation; a caller needing bounded waiting must
// arrange it externally. Waiting for a marker whose owner the same
// goroutine holds deadlocks, as it must.
func WaitForNew(m apis.Marker) *Owner {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for {
		if _, taken := registry.held[m]; !taken {
			break
		}
		registry.cond.Wait()
	}
	registry.held[m] = struct{}{}
	return &Owner{id: apis.MarkerID(apis.KindSingleton, m)}
}

// ID returns the owner's witness.
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

// Marker returns the marker the owner was created for.
func (o *Owner) Marker() apis.Marker {
	return o.id.Marker()
}

// Close releases the marker, allowing a new owner to claim it, and
// wakes every goroutine blocked in WaitForNew. Close fails with
// borrow.ErrBusy while borrows are outstanding and is otherwise
// idempotent. A closed owner refuses all further borrows.
func (o *Owner) Close() error {
	if err := o.flag.Close(); err != nil {
		return err
	}
	if o.closed.CompareAndSwap(false, true) {
		registry.mu.Lock()
		delete(registry.held, o.id.Marker())
		registry.mu.Unlock()
		registry.cond.Broadcast()
	}
	return nil
}
