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

// Owner is the admin object gating access to the cells of one
// ownership domain.
//
// # Overview
//
// An Owner holds exactly one witness ID for its entire life. Cells
// stamped with that ID can only be read or written through borrow
// calls made against this Owner, and those calls are additionally
// serialized by the Owner's Gate: any number of concurrent shared
// borrows, or one exclusive borrow, never both.
//
// Concrete Owners differ only in where their ID comes from and in
// what guarantees its temporal uniqueness (see packages runtimeid,
// singleton, local, and scoped). The borrow entry points in the root
// gatecell package work uniformly over this contract.
//
// # Contract
//
//   - An Owner MUST return the same ID for its whole life.
//   - At most one live Owner may hold a given ID at any instant;
//     each implementation documents the mechanism that guarantees it.
//   - Owner values MUST NOT be copied. All implementations are
//     pointer-shaped; dereferencing and re-assigning one duplicates
//     the witness and voids the exclusivity argument.
//   - Unless its package documents otherwise, an Owner MUST be safe
//     to use from multiple goroutines concurrently.
type Owner interface {
	// ID returns the owner's witness. The result is also the owner's
	// detachable identity token: it can create cells (gatecell.NewCell)
	// without a reference to the owner itself.
	ID() ID

	// Owns reports whether id is this owner's witness. This is the
	// access-gating check; it MUST be a pure equality test.
	Owns(id ID) bool

	// Gate returns the owner's borrow gate. Every borrow performs one
	// Start/End transition pair on it. Implementations normally return
	// an embedded *borrow.Flag, possibly wrapped with domain-specific
	// preconditions (package local prepends a native-goroutine check).
	Gate() Gate
}

// Gate is the runtime form of the shared/exclusive borrow protocol.
//
// A Gate is a state machine over Idle, SharedActive(n), ExclusiveActive
// and Closed. Start calls attempt a transition and report rejection as
// an error; End calls undo a previously granted transition and MUST
// only be called after the matching Start succeeded.
//
// The canonical implementation is borrow.Flag.
type Gate interface {
	// StartShared enters (or deepens) SharedActive. It fails if an
	// exclusive borrow is outstanding or the gate is closed.
	StartShared() error

	// EndShared releases one shared borrow.
	EndShared()

	// StartExclusive moves Idle to ExclusiveActive. It fails if any
	// borrow (shared or exclusive) is outstanding or the gate is
	// closed.
	StartExclusive() error

	// EndExclusive releases the exclusive borrow.
	EndExclusive()
}
