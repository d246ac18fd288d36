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

// Package gatecell provides containers whose access discipline is
// checked against a separate owner object instead of per-cell
// bookkeeping.
//
// A Cell[T] stores a value plus an immutable witness tag recorded at
// creation. All access goes through the owner (admin) holding the
// matching witness: any number of concurrent shared borrows, or one
// exclusive borrow, never both. Because many cells share one owner,
// the discipline is enforced once per owner rather than once per cell
// — one equality test and one gate transition per access, no per-cell
// locks, no per-cell reference counts.
//
// # Design
//
// The core of gatecell is the split between three small pieces:
//
//   - Cell[T] (this package): the container. Freely shareable, may
//     outlive its owner, tagged once at construction (apis.ID).
//
//   - apis.Owner: the gating object. Holds exactly one witness for its
//     whole life and a borrow gate (borrow.Flag) that materializes the
//     shared/exclusive state machine: Idle, SharedActive(n),
//     ExclusiveActive, and Closed for retired owners.
//
//   - The borrow entry points (Read, Write, Write2, Write3, WriteAll):
//     package-level generic functions that tie the two together. Every
//     call checks the witness first, then — for multi-cell calls —
//     verifies the cells are pairwise distinct (package distinct),
//     then performs one gate transition around the caller's closure.
//
// Borrows are closure-scoped: the borrowed pointers are valid exactly
// for the duration of the function passed in, and release is
// structural rather than a call the caller can forget.
//
// # Ownership domains
//
// Four identity schemes produce witnesses, trading construction cost
// against enforcement machinery:
//
//   - runtimeid: one fresh runtime identity per owner, from a private
//     heap allocation (default), a global sequence, or a reusing pool.
//     No registry; checks are pure equality.
//
//   - singleton: the witness is a caller-chosen marker; a process-wide
//     registry guarantees at most one live owner per marker, with
//     panicking, optional, and blocking constructors.
//
//   - local: like singleton but per goroutine — two goroutines may
//     hold the same marker at once, and an owner only works on the
//     goroutine that created it.
//
//   - scoped: one fresh witness per entry into a Run bracket; the
//     owner is retired on the way out.
//
// Witnesses from different schemes can never collide: the scheme kind
// participates in ID equality.
//
// # Concurrency model
//
// The library has no scheduler and, with one exception, never blocks:
// a rejected borrow is a contract violation reported as an error, not
// contention to wait out. The exception is singleton.WaitForNew, which
// parks the calling goroutine until a marker's current owner is
// closed.
//
// Owners from runtimeid, singleton and scoped may be used from any
// number of goroutines at once; the gate is a single atomic word.
// Owners from local are pinned to their creating goroutine. Cells
// follow the value they carry: sharing a *Cell across goroutines is
// safe whenever sharing a *T would be.
//
// # Errors
//
// All failures are loud and immediate: ErrWrongDomain and
// ErrDuplicateBorrow from the borrow entry points, borrow.ErrConflict
// and borrow.ErrClosed from the gate, and a panic from the strict
// singleton constructors. None of them is meant to be retried — each
// one marks a caller-side invariant violation that should be fixed,
// not handled.
//
// # Usage
//
// A typical graph of cells under one owner:
//
//	owner := runtimeid.New()
//	a := gatecell.New(owner, 100)
//	b := gatecell.New(owner, 200)
//
//	_ = gatecell.Write2(owner, a, b, func(x, y *int) {
//		*x, *y = *y, *x
//	})
//
//	total := 0
//	_ = gatecell.Read(owner, a, func(v *int) { total += *v })
//
// # Scope
//
// gatecell is intentionally small. It is not a lock (nothing blocks on
// conflict), not a scheduler, and not a store: no deadlock detection
// beyond the one documented blocking call, no distributed coordination,
// no persistence. It solves one job:
//
//	"Let many cells share one owner, so that aliasing discipline is
//	 checked once per access against the owner, at equality-test cost."
//
// Everything else belongs to higher layers.
package gatecell
