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

package apis

// Marker is a caller-chosen identity for the singleton domains.
//
// A Marker plays the role a marker type plays in systems with reified
// type-level identity: it names a logical ownership domain at the call
// site ("sim.world", "render.tree") rather than generating one at
// runtime. Uniqueness of the owner behind a Marker is enforced by the
// domain's registry, not by the value itself.
//
// Markers compare by value. Two packages that pick the same Marker
// string share (and contend for) the same domain, which is sometimes
// exactly what is wanted and otherwise a coordination bug; prefix
// markers with a package or component name to avoid accidents.
type Marker string

// handleBlock is the allocation backing a handle-identity ID. Its
// address is the identity; the contents are never read.
type handleBlock struct {
	_ [2]byte
}

// ID is the witness value an Owner holds and a cell's tag is compared
// against.
//
// # Overview
//
// An ID is an opaque, comparable value. Every owner holds exactly one,
// fixed for the owner's whole life, and stamps it into each cell it
// creates. Access checks reduce to one == comparison between the
// owner's ID and the cell's tag.
//
// An ID is also the detachable identity token of its owner: it may be
// copied freely and passed to code that needs to create cells while
// the owner itself is busy elsewhere. Holding an ID grants no access;
// borrowing always goes through the live owner.
//
// # Identity payloads
//
// Each ID carries a Kind discriminant plus exactly one payload:
//
//   - serial — an integer drawn from a counter or pool
//     (runtime-identity and scope domains).
//   - handle — the address of a private allocation owned by the ID
//     (runtime-identity handle policy).
//   - marker — a caller-supplied Marker (singleton domains).
//
// Because the Kind participates in equality, witnesses produced by
// different schemes can never collide, regardless of how their
// payload spaces evolve.
//
// # Contract
//
//   - IDs MUST be compared with ==; there is no ordering.
//   - The zero ID is not a valid witness and never equals one
//     produced by a constructor.
//   - IDs are immutable and safe for concurrent use.
type ID struct {
	kind   Kind
	serial uint64
	handle *handleBlock
	marker Marker
}

// SerialID returns an ID of kind k identified by the integer n.
// Callers own the uniqueness argument for n within (k, serial) space.
func SerialID(k Kind, n uint64) ID {
	return ID{kind: k, serial: n}
}

// HandleID returns an ID of kind k identified by the address of a
// fresh private allocation. Two simultaneously live handle IDs can
// never be equal, and the allocation stays reachable for as long as
// any copy of the ID (including cell tags) exists, so the identity is
// temporally unique with no teardown protocol at all.
func HandleID(k Kind) ID {
	return ID{kind: k, handle: new(handleBlock)}
}

// MarkerID returns an ID of kind k identified by the marker m.
func MarkerID(k Kind, m Marker) ID {
	return ID{kind: k, marker: m}
}

// Kind returns the identity scheme this ID belongs to.
func (id ID) Kind() Kind {
	return id.kind
}

// Marker returns the marker payload, or "" for non-marker schemes.
func (id ID) Marker() Marker {
	return id.marker
}

// IsZero reports whether id is the zero ID (not a valid witness).
func (id ID) IsZero() bool {
	return id == ID{}
}
