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

import (
	"math/big"

	"github.com/huffc/compiler/internal/evm"
)

// emitSections serializes the final, size-solved section list into bytes. LabelMarks
// contribute nothing; each PushRef emits its opcode followed by the target's PC
// encoded big-endian in exactly Width bytes.
func emitSections(sections []Section, arena *labelArena, errs *errorList) []byte {
	pcs := computePCs(sections)
	var out []byte
	for _, s := range sections {
		switch s.Kind {
		case SecOpBytes:
			out = append(out, s.Bytes...)
		case SecLabelMark:
			// contributes no bytes
		case SecPushRef:
			v, ok := pcs[s.Target]
			if !ok {
				errs.addf(s.Pos, ecUnresolvedLabel, "internal: push target has no recorded PC")
				continue
			}
			op, ok := evm.PushOp(s.Width)
			if !ok {
				errs.addf(s.Pos, ecPushDataOverflow, "invalid push width %d", s.Width)
				continue
			}
			out = append(out, op.Code)
			if s.Width > 0 {
				out = append(out, encodeBE(v, s.Width)...)
			}
		}
	}
	return out
}

// encodeBE encodes v as width big-endian bytes, truncating any excess high-order bytes.
// Truncation only happens after solveSizes has already reported TableAddressTooLarge for
// the section in question, so the result here is best-effort, not authoritative.
func encodeBE(v int, width int) []byte {
	buf := make([]byte, width)
	full := new(big.Int).SetInt64(int64(v)).Bytes()
	if len(full) > width {
		full = full[len(full)-width:]
	}
	copy(buf[width-len(full):], full)
	return buf
}

// pushInstrBytes returns the full PUSH instruction (opcode plus data) for pushing word
// with the given width, as chosen by minimumWidth.
func pushInstrBytes(word *big.Int, emitPush0 bool) []byte {
	width := minimumWidth(word, emitPush0)
	op, _ := evm.PushOp(width)
	out := []byte{op.Code}
	if width > 0 {
		data := make([]byte, width)
		word.FillBytes(data)
		out = append(out, data...)
	}
	return out
}

// wrapConstructor wraps runtime bytecode in a minimal deployer prelude that copies the
// runtime code out of its own calldata-free creation code and returns it, per spec
// §4.7: "PUSH(len) PUSH1 <offset> RETURNDATASIZE CODECOPY PUSH(len) RETURNDATASIZE
// RETURN <runtime>". RETURNDATASIZE is used as a cheap, always-zero operand since no
// call has happened yet when the constructor runs. <offset> is computed from the actual
// width chosen for the length push, so the prelude is correct for any runtime size.
func wrapConstructor(runtime []byte, opts CompileOptions) []byte {
	lenWord := new(big.Int).SetInt64(int64(len(runtime)))
	lenPush := pushInstrBytes(lenWord, opts.EmitPush0)

	returndatasize, _ := evm.OpByName("RETURNDATASIZE")
	codecopy, _ := evm.OpByName("CODECOPY")
	ret, _ := evm.OpByName("RETURN")
	push1, _ := evm.OpByName("PUSH1")

	offset := 2*len(lenPush) + 2 + 1 + 1 + 1 + 1

	out := make([]byte, 0, offset+len(runtime))
	out = append(out, lenPush...)
	out = append(out, push1.Code, byte(offset))
	out = append(out, returndatasize.Code)
	out = append(out, codecopy.Code)
	out = append(out, lenPush...)
	out = append(out, returndatasize.Code)
	out = append(out, ret.Code)
	out = append(out, runtime...)
	return out
}
