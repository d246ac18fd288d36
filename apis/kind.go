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

import "fmt"

// Kind identifies the identity scheme that produced a witness.
//
// # Overview
//
// Kind is a small enumerated type that partitions the witness space by
// ownership domain. It is part of ID equality: two IDs of different
// Kinds are never equal, so the per-scheme uniqueness arguments
// (counter monotonicity, allocation addresses, registry exclusion)
// only ever have to hold within a single Kind.
//
// # Contract
//
//   - Kind values MUST be treated as a stable, public API; adding new
//     values is allowed, but existing values MUST NOT change meaning.
//   - Kind values MUST be safe to use concurrently (plain integers).
type Kind int

const (
	// KindRuntime marks witnesses produced by the runtime-identity
	// domain (package runtimeid): fresh integer or allocation-address
	// identities with purely runtime ownership checks.
	KindRuntime Kind = iota

	// KindSingleton marks witnesses produced by the process-wide
	// marker-singleton domain (package singleton).
	KindSingleton

	// KindLocal marks witnesses produced by the goroutine-local
	// marker-singleton domain (package local).
	KindLocal

	// KindScoped marks witnesses produced by the scope domain
	// (package scoped): one fresh identity per bracket entry.
	KindScoped
)

// String returns a short, stable identifier for the Kind, suitable for
// diagnostics. Unknown values render as "Unknown(<n>)" rather than
// panicking, so corrupted values can still be surfaced safely.
func (k Kind) String() string {
	switch k {
	case KindRuntime:
		return "Runtime"
	case KindSingleton:
		return "Singleton"
	case KindLocal:
		return "Local"
	case KindScoped:
		return "Scoped"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}
