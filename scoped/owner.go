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

// Package scoped implements the scope ownership domain: each dynamic
// entry into Run yields an owner with a witness never previously live,
// valid exactly for the duration of the bracket.
//
// Nested and sequential Run calls all get distinct witnesses, so cells
// of an inner scope can never be smuggled to an outer owner or a later
// re-entry. Uniqueness comes from a dedicated monotonic counter —
// scope witnesses are never reused — which trades a counter increment
// per entry for needing no enforcement machinery at all.
//
// On the way out of the bracket the owner is retired: a leaked *Owner
// (or a goroutine spawned inside that outlives the bracket) gets
// borrow.ErrClosed from then on. Cells may outlive the scope like any
// other cells; they just become permanently inaccessible.
package scoped

import (
	"sync/atomic"

	"dirpx.dev/gatecell/apis"
	"dirpx.dev/gatecell/borrow"
)

// scopeCounter feeds every Run entry with a fresh serial.
var scopeCounter atomic.Uint64

// Owner is a scope-bracket admin for zero or more cells. It is only
// handed out by Run, is valid until Run returns, and must not be
// copied. Within the bracket it may be shared across goroutines like
// a runtime-identity owner.
type Owner struct {
	id   apis.ID
	flag borrow.Flag
}

var _ apis.Owner = (*Owner)(nil)

// Run enters a new scope: it creates an owner with a fresh witness,
// calls f with it, and retires the owner before returning. Run returns
// f's error, or the teardown error if goroutines spawned by f still
// hold borrows when f returns (a contract violation by f).
//
// Create cells inside the bracket with gatecell.New(owner, value).
func Run(f func(o *Owner) error) error {
	o := &Owner{id: apis.SerialID(apis.KindScoped, scopeCounter.Add(1))}
	err := f(o)
	if cerr := o.flag.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
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
