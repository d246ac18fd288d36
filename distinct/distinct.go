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

// Package distinct decides whether a batch of cell addresses is
// pairwise non-aliasing.
//
// It backs the multi-cell exclusive borrows: handing out N mutable
// views is only sound if the N cells are N different allocations. The
// check is a pure function over addresses; witness validation happens
// before it and access is granted (all of it or none of it) after.
package distinct

import "sort"

// sortThreshold is where sort-and-scan starts beating the nested loop.
// Chosen by prototype benchmark; the quadratic scan has much lower
// constant overhead and wins below this size.
const sortThreshold = 60

// Unique reports whether all addresses in addrs are pairwise distinct.
// Inputs of length 0 or 1 are trivially unique. The answer does not
// depend on where a duplicate sits in the input.
func Unique(addrs []uintptr) bool {
	switch {
	case len(addrs) < sortThreshold:
		return uniquePairwise(addrs)
	case len(addrs) < 256:
		return uniqueSortedByte(addrs)
	default:
		return uniqueSorted(addrs)
	}
}

// uniquePairwise compares every element against every later element.
// O(n²), but allocation-free and fastest in practice for small n.
func uniquePairwise(addrs []uintptr) bool {
	for i, a := range addrs {
		for _, b := range addrs[i+1:] {
			if a == b {
				return false
			}
		}
	}
	return true
}

// uniqueSortedByte sorts a parallel one-byte index array by address and
// scans adjacent pairs. O(n log n) with one byte of auxiliary storage
// per element; only valid for n < 256.
func uniqueSortedByte(addrs []uintptr) bool {
	idx := make([]uint8, len(addrs))
	for i := range idx {
		idx[i] = uint8(i)
	}
	sort.Slice(idx, func(i, j int) bool {
		return addrs[idx[i]] < addrs[idx[j]]
	})
	for i := 1; i < len(idx); i++ {
		if addrs[idx[i-1]] == addrs[idx[i]] {
			return false
		}
	}
	return true
}

// uniqueSorted is the same sort-and-scan with four-byte indices, for
// batches too large for uniqueSortedByte.
func uniqueSorted(addrs []uintptr) bool {
	idx := make([]int32, len(addrs))
	for i := range idx {
		idx[i] = int32(i)
	}
	sort.Slice(idx, func(i, j int) bool {
		return addrs[idx[i]] < addrs[idx[j]]
	})
	for i := 1; i < len(idx); i++ {
		if addrs[idx[i-1]] == addrs[idx[i]] {
			return false
		}
	}
	return true
}
