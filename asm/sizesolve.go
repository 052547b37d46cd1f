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

// computePCs walks sections left to right, returning the PC recorded for every
// LabelMark. OpBytes sections advance the PC by their length; PushRef sections advance
// it by 1 (the opcode byte) plus their current width; LabelMark sections advance it by
// zero and record the current PC for their label.
func computePCs(sections []Section) map[LabelID]int {
	pcs := make(map[LabelID]int)
	pc := 0
	for _, s := range sections {
		switch s.Kind {
		case SecOpBytes:
			pc += len(s.Bytes)
		case SecPushRef:
			pc += 1 + s.Width
		case SecLabelMark:
			pcs[s.Label] = pc
		}
	}
	return pcs
}

// widthFor returns the minimum number of bytes needed to represent v in [0, 2^256), at
// least 1 (this is push-offset sizing, which never uses PUSH0 — a zero address is still
// a real, referenceable PC and must be pushable as data, unlike a literal zero value).
func widthFor(v int) int {
	w := 1
	for n := v; n >= 256; n /= 256 {
		w++
	}
	return w
}

// solveSizes runs the fixed-point push-width widening loop of spec §4.6: start every
// PushRef at width 1, compute PCs, widen any push whose target no longer fits, and
// repeat until no width changes. Because widening can only push later labels forward,
// never backward, this converges monotonically without oscillation.
func solveSizes(sections []Section, opts CompileOptions, errs *errorList) {
	maxIterations := 32*len(sections) + 64
	for iter := 0; iter < maxIterations; iter++ {
		pcs := computePCs(sections)
		changed := false
		for i := range sections {
			s := &sections[i]
			if s.Kind != SecPushRef {
				continue
			}
			v, ok := pcs[s.Target]
			if !ok {
				continue
			}
			want := widthFor(v)
			if want <= s.Width {
				continue
			}
			if want > opts.MaxPushWidth {
				errs.addf(s.Pos, ecTableAddressTooLarge,
					"address %d requires %d bytes, exceeds max_push_width=%d", v, want, opts.MaxPushWidth)
				s.Width = opts.MaxPushWidth
				continue
			}
			s.Width = want
			changed = true
		}
		if !changed {
			return
		}
	}
}
