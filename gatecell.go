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

package gatecell

import (
	"errors"
	"unsafe"

	"dirpx.dev/gatecell/apis"
	"dirpx.dev/gatecell/distinct"
)

var (
	// ErrWrongDomain is returned when a cell's tag does not match the
	// accessing owner's witness. This is always a programming error on
	// the caller's side; it is never retried internally.
	ErrWrongDomain = errors.New("gatecell: cell accessed with wrong owner")
	// ErrDuplicateBorrow is returned when two or more cells passed to a
	// multi-cell borrow denote the same memory.
	ErrDuplicateBorrow = errors.New("gatecell: same cell borrowed twice in one call")
	// ErrNilOwner is returned when a nil owner is provided.
	ErrNilOwner = errors.New("gatecell: nil owner provided")
	// ErrNilCell is returned when a nil cell is provided.
	ErrNilCell = errors.New("gatecell: nil cell provided")
	// ErrZeroID indicates an attempt to create a cell from the zero ID,
	// which is not a valid witness. Raised as a panic, since a cell
	// with an unownable tag could never be accessed at all.
	ErrZeroID = errors.New("gatecell: cell created from zero ID")
)

// Cell holds a value of type T plus the witness of the owner that
// gates access to it.
//
// The tag is fixed at construction. A *Cell may be shared freely, held
// in any container, and outlive the owner that created it; all of that
// is harmless because the value inside is only reachable through
// borrow calls against an owner whose witness matches the tag.
//
// Cells are compared by address for aliasing purposes: two *Cell
// values denote "the same cell" exactly when they are the same
// pointer.
type Cell[T any] struct {
	tag   apis.ID
	value T
}

// NewCell creates a cell tagged with the witness id. It needs no live
// owner — an apis.ID is a freely copyable identity token — which is
// useful when the owner is busy elsewhere. Panics with ErrZeroID if id
// is the zero ID.
func NewCell[T any](id apis.ID, value T) *Cell[T] {
	if id.IsZero() {
		panic(ErrZeroID)
	}
	return &Cell[T]{tag: id, value: value}
}

// New creates a cell owned by o. It is shorthand for
// NewCell(o.ID(), value) and is the construction path for domains
// whose cells require a live owner (package scoped).
func New[T any](o apis.Owner, value T) *Cell[T] {
	if o == nil {
		panic(ErrNilOwner)
	}
	return NewCell(o.ID(), value)
}

// ID returns the cell's tag: the witness of the domain it belongs to.
func (c *Cell[T]) ID() apis.ID {
	return c.tag
}

// Read borrows the cell shared (read-only) for the duration of f.
//
// Any number of Read borrows may be active at once from the same
// owner, including concurrently from several goroutines where the
// owner's domain permits that. f must treat the value as read-only;
// writing through the pointer during a shared borrow is a data race.
//
// Returns ErrWrongDomain if c was not created under o's witness, or
// the gate's error if an exclusive borrow is outstanding.
func Read[T any](o apis.Owner, c *Cell[T], f func(v *T)) error {
	if o == nil {
		return ErrNilOwner
	}
	if c == nil {
		return ErrNilCell
	}
	if !o.Owns(c.tag) {
		return ErrWrongDomain
	}
	g := o.Gate()
	if err := g.StartShared(); err != nil {
		return err
	}
	defer g.EndShared()
	f(&c.value)
	return nil
}

// Write borrows the cell exclusive (read-write) for the duration of f.
//
// Only one exclusive borrow may be derived from an owner at a time,
// and none while shared borrows are outstanding. Returns
// ErrWrongDomain if c was not created under o's witness, or the gate's
// error on a borrow conflict.
func Write[T any](o apis.Owner, c *Cell[T], f func(v *T)) error {
	if o == nil {
		return ErrNilOwner
	}
	if c == nil {
		return ErrNilCell
	}
	if !o.Owns(c.tag) {
		return ErrWrongDomain
	}
	g := o.Gate()
	if err := g.StartExclusive(); err != nil {
		return err
	}
	defer g.EndExclusive()
	f(&c.value)
	return nil
}

// Write2 borrows two cells exclusive in a single call. The cells may
// hold different value types but must belong to the same owner and
// must be distinct; ErrDuplicateBorrow is returned if both arguments
// denote the same cell. On failure no access is granted at all.
func Write2[T, U any](o apis.Owner, c1 *Cell[T], c2 *Cell[U], f func(v1 *T, v2 *U)) error {
	if o == nil {
		return ErrNilOwner
	}
	if c1 == nil || c2 == nil {
		return ErrNilCell
	}
	if !o.Owns(c1.tag) || !o.Owns(c2.tag) {
		return ErrWrongDomain
	}
	if cellAddr(c1) == cellAddr(c2) {
		return ErrDuplicateBorrow
	}
	g := o.Gate()
	if err := g.StartExclusive(); err != nil {
		return err
	}
	defer g.EndExclusive()
	f(&c1.value, &c2.value)
	return nil
}

// Write3 borrows three cells exclusive in a single call, with the same
// ownership and distinctness rules as Write2 applied to every pair.
func Write3[T, U, V any](o apis.Owner, c1 *Cell[T], c2 *Cell[U], c3 *Cell[V], f func(v1 *T, v2 *U, v3 *V)) error {
	if o == nil {
		return ErrNilOwner
	}
	if c1 == nil || c2 == nil || c3 == nil {
		return ErrNilCell
	}
	if !o.Owns(c1.tag) || !o.Owns(c2.tag) || !o.Owns(c3.tag) {
		return ErrWrongDomain
	}
	a1, a2, a3 := cellAddr(c1), cellAddr(c2), cellAddr(c3)
	if a1 == a2 || a2 == a3 || a3 == a1 {
		return ErrDuplicateBorrow
	}
	g := o.Gate()
	if err := g.StartExclusive(); err != nil {
		return err
	}
	defer g.EndExclusive()
	f(&c1.value, &c2.value, &c3.value)
	return nil
}

// WriteAll borrows any number of same-typed cells exclusive in a
// single call. f receives one pointer per cell, in input order. All
// cells must belong to o and be pairwise distinct; the whole call
// fails atomically otherwise.
//
// Distinctness is verified by the validator in package distinct, which
// switches between a pairwise scan and sort-and-scan by batch size.
func WriteAll[T any](o apis.Owner, cells []*Cell[T], f func(vs []*T)) error {
	if o == nil {
		return ErrNilOwner
	}
	addrs := make([]uintptr, len(cells))
	for i, c := range cells {
		if c == nil {
			return ErrNilCell
		}
		if !o.Owns(c.tag) {
			return ErrWrongDomain
		}
		addrs[i] = cellAddr(c)
	}
	if !distinct.Unique(addrs) {
		return ErrDuplicateBorrow
	}
	g := o.Gate()
	if err := g.StartExclusive(); err != nil {
		return err
	}
	defer g.EndExclusive()
	vs := make([]*T, len(cells))
	for i, c := range cells {
		vs[i] = &c.value
	}
	f(vs)
	return nil
}

// cellAddr reduces a cell reference to its address so that cells of
// different value types can be compared for aliasing.
func cellAddr[T any](c *Cell[T]) uintptr {
	return uintptr(unsafe.Pointer(c))
}
