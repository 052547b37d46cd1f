// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package asm

import "testing"

// TestSolveSizesWidensAcrossByteBoundary exercises the fixed-point widening loop at the
// exact PUSH1/PUSH2 boundary: a target label that would sit at PC 256 under the solver's
// initial width-1 assumption, which itself requires two bytes, nudging the label one byte
// further out to PC 257 — still two bytes, so the loop must settle rather than oscillate.
func TestSolveSizesWidensAcrossByteBoundary(t *testing.T) {
	const target = LabelID(0)
	filler := make([]byte, 253)
	sections := []Section{
		{Kind: SecPushRef, Target: target, Width: 1},
		{Kind: SecOpBytes, Bytes: []byte{0x56}}, // jump
		{Kind: SecOpBytes, Bytes: filler},
		{Kind: SecLabelMark, Label: target},
	}

	errs := newErrorList(0)
	solveSizes(sections, DefaultOptions(), errs)
	if !errs.ok() {
		t.Fatalf("unexpected errors: %v", errs.errs)
	}
	if sections[0].Width != 2 {
		t.Fatalf("Width = %d, want 2", sections[0].Width)
	}
	if pc := computePCs(sections)[target]; pc != 257 {
		t.Fatalf("target PC = %d, want 257", pc)
	}
}

// TestSolveSizesStaysNarrowJustBelowBoundary is the mirror case: a target one byte short
// of the boundary must stay at width 1, confirming the solver does not widen eagerly.
func TestSolveSizesStaysNarrowJustBelowBoundary(t *testing.T) {
	const target = LabelID(0)
	filler := make([]byte, 252)
	sections := []Section{
		{Kind: SecPushRef, Target: target, Width: 1},
		{Kind: SecOpBytes, Bytes: []byte{0x56}},
		{Kind: SecOpBytes, Bytes: filler},
		{Kind: SecLabelMark, Label: target},
	}

	errs := newErrorList(0)
	solveSizes(sections, DefaultOptions(), errs)
	if !errs.ok() {
		t.Fatalf("unexpected errors: %v", errs.errs)
	}
	if sections[0].Width != 1 {
		t.Fatalf("Width = %d, want 1", sections[0].Width)
	}
	if pc := computePCs(sections)[target]; pc != 255 {
		t.Fatalf("target PC = %d, want 255", pc)
	}
}

func TestWidthFor(t *testing.T) {
	cases := []struct {
		v    int
		want int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
	}
	for _, c := range cases {
		if got := widthFor(c.v); got != c.want {
			t.Errorf("widthFor(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}
