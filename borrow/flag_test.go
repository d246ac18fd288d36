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

package borrow_test

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"dirpx.dev/gatecell/borrow"
)

func TestSharedNestsAndReleases(t *testing.T) {
	var f borrow.Flag

	for i := 0; i < 3; i++ {
		if err := f.StartShared(); err != nil {
			t.Fatalf("StartShared #%d: unexpected error: %v", i, err)
		}
	}
	// Exclusive is rejected while shared borrows are out.
	if err := f.StartExclusive(); !errors.Is(err, borrow.ErrConflict) {
		t.Fatalf("StartExclusive during shared: got %v, want ErrConflict", err)
	}
	for i := 0; i < 3; i++ {
		f.EndShared()
	}
	// Fully released: exclusive succeeds now.
	if err := f.StartExclusive(); err != nil {
		t.Fatalf("StartExclusive after release: unexpected error: %v", err)
	}
	f.EndExclusive()
}

func TestExclusiveExcludesEverything(t *testing.T) {
	var f borrow.Flag

	if err := f.StartExclusive(); err != nil {
		t.Fatalf("StartExclusive: unexpected error: %v", err)
	}
	if err := f.StartExclusive(); !errors.Is(err, borrow.ErrConflict) {
		t.Fatalf("second StartExclusive: got %v, want ErrConflict", err)
	}
	if err := f.StartShared(); !errors.Is(err, borrow.ErrConflict) {
		t.Fatalf("StartShared during exclusive: got %v, want ErrConflict", err)
	}
	f.EndExclusive()
	if err := f.StartShared(); err != nil {
		t.Fatalf("StartShared after EndExclusive: unexpected error: %v", err)
	}
	f.EndShared()
}

func TestCloseSemantics(t *testing.T) {
	var f borrow.Flag

	if err := f.StartShared(); err != nil {
		t.Fatalf("StartShared: unexpected error: %v", err)
	}
	if err := f.Close(); !errors.Is(err, borrow.ErrBusy) {
		t.Fatalf("Close while shared: got %v, want ErrBusy", err)
	}
	f.EndShared()

	if err := f.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	if !f.Closed() {
		t.Fatalf("Closed() = false after Close")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("idempotent Close: unexpected error: %v", err)
	}
	if err := f.StartShared(); !errors.Is(err, borrow.ErrClosed) {
		t.Fatalf("StartShared after Close: got %v, want ErrClosed", err)
	}
	if err := f.StartExclusive(); !errors.Is(err, borrow.ErrClosed) {
		t.Fatalf("StartExclusive after Close: got %v, want ErrClosed", err)
	}
}

func TestUnbalancedEndPanics(t *testing.T) {
	t.Run("EndShared", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("EndShared on idle flag did not panic")
			}
		}()
		var f borrow.Flag
		f.EndShared()
	})
	t.Run("EndExclusive", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("EndExclusive on idle flag did not panic")
			}
		}()
		var f borrow.Flag
		f.EndExclusive()
	})
}

// TestConcurrentProtocol hammers one flag from many goroutines and
// checks the invariant directly: an exclusive borrow never observes a
// concurrent holder of any kind.
func TestConcurrentProtocol(t *testing.T) {
	var f borrow.Flag
	var holders atomic.Int64

	workers := runtime.GOMAXPROCS(0) * 4
	wg := sync.WaitGroup{}

	// Shared workers.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				if err := f.StartShared(); err != nil {
					if !errors.Is(err, borrow.ErrConflict) {
						t.Errorf("StartShared: got %v, want ErrConflict", err)
						return
					}
					continue
				}
				holders.Add(1)
				holders.Add(-1)
				f.EndShared()
			}
		}()
	}

	// Exclusive workers.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				if err := f.StartExclusive(); err != nil {
					if !errors.Is(err, borrow.ErrConflict) {
						t.Errorf("StartExclusive: got %v, want ErrConflict", err)
						return
					}
					continue
				}
				if n := holders.Load(); n != 0 {
					t.Errorf("exclusive borrow with %d concurrent holders", n)
				}
				f.EndExclusive()
			}
		}()
	}

	wg.Wait()
}
