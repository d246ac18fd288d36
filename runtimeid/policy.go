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

package runtimeid

import "fmt"

// Policy selects how a runtime-identity owner obtains its witness.
//
// # Overview
//
// Policy is a small enumerated type trading allocation cost against
// teardown obligations. All three policies yield witnesses that are
// temporally unique (at most one live owner per witness at any
// instant); they differ in the mechanism carrying that argument.
//
// # Values
//
//   - PolicyHandle — identity is the address of a private allocation.
//   - PolicySeq    — identity is drawn from a global sequence.
//   - PolicyPooled — identity is leased from a reusing pool.
//
// # Contract
//
//   - Policy values MUST be treated as a stable, public API; adding
//     new values is allowed, existing ones MUST NOT change meaning.
//   - Policy values MUST be safe to use concurrently (plain integers).
type Policy int

const (
	// PolicyHandle derives the witness from the address of a private
	// heap block referenced by the ID itself. Two live handle IDs can
	// never coincide, and the garbage collector keeps the block alive
	// for as long as any cell tag carries the ID, so uniqueness needs
	// no registry and no teardown. This is the default.
	PolicyHandle Policy = iota

	// PolicySeq draws the witness from a monotonically increasing
	// global counter. Construction is a single atomic add and there is
	// nothing to release; identities are never reused. The documented
	// trade-off: a caller that creates enough owners to wrap a 64-bit
	// counter could force a collision. That is an intentional,
	// CPU-centuries-scale misuse, not something that happens by
	// accident, and is accepted in exchange for the cheapest possible
	// construction.
	PolicySeq

	// PolicyPooled leases the witness from a process-wide free list
	// and returns it for reuse on Close. Reuse is sound because Close
	// refuses while borrows are outstanding and retires the owner's
	// gate before the identity re-enters the pool, so at most one live
	// owner ever holds a given identity. Owners with this policy
	// should be closed when done (defer owner.Close()); leaking one
	// merely leaks the identity.
	PolicyPooled
)

// String returns a short, stable identifier for the Policy, suitable
// for diagnostics. Unknown values render as "Unknown(<n>)" rather than
// panicking.
func (p Policy) String() string {
	switch p {
	case PolicyHandle:
		return "Handle"
	case PolicySeq:
		return "Seq"
	case PolicyPooled:
		return "Pooled"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Option is a functional option that configures owner construction.
type Option func(*settings)

// settings carries resolved construction options.
type settings struct {
	policy Policy
}

// WithPolicy selects the identity-allocation policy for a new owner.
// Out-of-range values fall back to PolicyHandle.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		switch p {
		case PolicyHandle, PolicySeq, PolicyPooled:
			s.policy = p
		default:
			s.policy = PolicyHandle
		}
	}
}
