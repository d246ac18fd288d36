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

// Package goid identifies the calling goroutine.
//
// The runtime deliberately exposes no goroutine ID, so ID recovers it
// from the header line of a single-goroutine stack dump, which is
// formatted as "goroutine N [state]:". The number is stable for the
// goroutine's whole life and never reused while it runs, which is all
// the local ownership domain needs. The parse costs a small stack
// capture per call; callers that care cache the result per goroutine
// by construction (an owner captures it once).
package goid

import "runtime"

// ID returns the runtime's numeric identifier for the calling
// goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Skip "goroutine " and accumulate digits until the space before
	// the state bracket.
	const prefix = len("goroutine ")
	var id uint64
	for i := prefix; i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
