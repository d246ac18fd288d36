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

// Package local implements the goroutine-local marker-singleton
// ownership domain.
//
// It is package singleton with the exclusion scope shrunk from the
// process to the creating goroutine: the registry is keyed by
// (goroutine, marker), so two goroutines may each hold an owner for
// the same marker at the same time. In exchange, an owner only works
// on the goroutine that created it — every borrow re-checks the
// calling goroutine and fails with ErrWrongGoroutine elsewhere.
//
// Cells are not pinned the same way. A cell tagged with a local marker
// can be handed to another goroutine and accessed there, but only
// through that goroutine's own owner for the marker; the sender's
// owner is useless remotely. Handing a cell over while continuing to
// access it locally through your own owner defeats the exclusivity
// argument, exactly as sharing any non-synchronized value would —
// hand-off means giving the cell up.
//
// There is no blocking constructor here: waiting for your own
// goroutine to release a marker could only deadlock.
//
// Owners must be released with Close (callable from any goroutine).
package local

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/gatecell/apis"
	"dirpx.dev/gatecell/borrow"
	"dirpx.dev/gatecell/utils/goid"
)

var (
	// ErrDomainActive is the panic value of New when the calling
	// goroutine already holds a live owner for the requested marker.
	ErrDomainActive = errors.New("gatecell(local): marker already has a live owner on this goroutine")
	// ErrWrongGoroutine is returned when an owner is used for borrowing
	// from a goroutine other than the one that created it.
	ErrWrongGoroutine = errors.New("gatecell(local): owner used off its native goroutine")
)

// slot is one (goroutine, marker) claim in the registry.
type slot struct {
	gid    uint64
	marker apis.Marker
}

// registry holds every (goroutine, marker) pair with a live owner.
// One process-wide map keyed by goroutine stands in for true
// goroutine-local storage, which Go does not expose.
var registry = struct {
	mu   sync.Mutex
	held map[slot]struct{}
}{held: make(map[slot]struct{})}

// Owner is a goroutine-local marker-singleton admin for zero or more
// cells. It must only be used for borrowing on the goroutine that
// created it, and must not be copied.
type Owner struct {
	id     apis.ID
	gid    uint64
	flag   borrow.Flag
	closed atomic.Bool
}

var _ apis.Owner = (*Owner)(nil)

// New creates the calling goroutine's owner for marker m, panicking
// with ErrDomainActive if this goroutine already holds one. Another
// goroutine holding m is irrelevant.
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
	gid := goid.ID()
	s := slot{gid: gid, marker: m}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, taken := registry.held[s]; taken {
		return nil, false
	}
	registry.held[s] = struct{}{}
	return &Owner{id: apis.MarkerID(apis.KindLocal, m), gid: gid}, true
}

// ID returns the owner's witness. Cell tags carry only the marker, not
// the goroutine: a cell handed to another goroutine matches that
// goroutine's own owner for the same marker.
func (o *Owner) ID() apis.ID {
	return o.id
}

// Owns reports whether id is this owner's witness.
func (o *Owner) Owns(id apis.ID) bool {
	return id == o.id
}

// Gate returns the owner's borrow gate. The gate enforces goroutine
// nativeness in addition to the borrow protocol.
func (o *Owner) Gate() apis.Gate {
	return gate{o}
}

// Marker returns the marker the owner was created for.
func (o *Owner) Marker() apis.Marker {
	return o.id.Marker()
}

// Close releases the (goroutine, marker) claim so the native goroutine
// can create a fresh owner for m. Unlike borrowing, Close may be
// called from any goroutine. It fails with borrow.ErrBusy while
// borrows are outstanding and is otherwise idempotent.
func (o *Owner) Close() error {
	if err := o.flag.Close(); err != nil {
		return err
	}
	if o.closed.CompareAndSwap(false, true) {
		registry.mu.Lock()
		delete(registry.held, slot{gid: o.gid, marker: o.id.Marker()})
		registry.mu.Unlock()
	}
	return nil
}

// gate wraps the owner's flag with the native-goroutine precondition.
type gate struct {
	o *Owner
}

func (g gate) StartShared() error {
	if goid.ID() != g.o.gid {
		return ErrWrongGoroutine
	}
	return g.o.flag.StartShared()
}

func (g gate) EndShared() {
	g.o.flag.EndShared()
}

func (g gate) StartExclusive() error {
	if goid.ID() != g.o.gid {
		return ErrWrongGoroutine
	}
	return g.o.flag.StartExclusive()
}

func (g gate) EndExclusive() {
	g.o.flag.EndExclusive()
}
