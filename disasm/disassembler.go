// Copyright 2024 The go-ethereum Authors
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

// Package disasm is a disassembler for compiled bytecode, used by the -disasm debug
// flag to let a caller inspect what the compiler actually produced.
package disasm

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/huffc/compiler/internal/evm"
)

// Disassembler turns EVM bytecode back into readable mnemonic text. It does not
// recover labels, macros or any other source-level structure; it only decodes opcodes
// and their immediate data.
type Disassembler struct {
	uppercase bool
	showPC    bool
	noBlanks  bool

	pcBuffer, pcHex []byte
}

// New creates a disassembler with default settings: lowercase mnemonics, no PC column,
// blank lines at jump-destination boundaries.
func New() *Disassembler {
	return new(Disassembler)
}

// SetUppercase toggles printing instruction names in uppercase.
func (d *Disassembler) SetUppercase(on bool) {
	d.uppercase = on
}

// SetShowPC toggles printing the program counter on each line.
func (d *Disassembler) SetShowPC(on bool) {
	d.showPC = on
}

// SetShowBlocks toggles printing of blank lines at block boundaries (after a JUMP or
// JUMPI, and before a JUMPDEST).
func (d *Disassembler) SetShowBlocks(on bool) {
	d.noBlanks = !on
}

// Disassemble is the main entry point: it walks bytecode start to end and writes one
// line of text per instruction to outW.
func (d *Disassembler) Disassemble(bytecode []byte, outW io.Writer) error {
	d.pcBuffer = make([]byte, digitsOfPC(len(bytecode)))
	d.pcHex = make([]byte, hex.EncodedLen(len(d.pcBuffer)))
	out := bufio.NewWriter(outW)

	var prevOp *evm.Op
	for pc := 0; pc < len(bytecode); pc++ {
		op, ok := evm.OpByCode(bytecode[pc])
		d.newline(out, prevOp, op)
		if !ok {
			d.printInvalid(out, bytecode[pc])
			prevOp = nil
			continue
		}
		d.printPrefix(out, pc)
		d.printOp(out, op)
		if op.Push {
			size := op.PushSize()
			if len(bytecode)-1-pc < size {
				d.newline(out, op, nil)
				return fmt.Errorf("bytecode truncated, ends within %s", op.Name)
			}
			data := bytecode[pc+1 : pc+size+1]
			d.printPushData(out, data)
			pc += size
		}
		prevOp = op
	}
	d.newline(out, prevOp, nil)
	return out.Flush()
}

func (d *Disassembler) printPrefix(out io.Writer, pc int) {
	if d.showPC {
		for i := 0; i < len(d.pcBuffer); i++ {
			d.pcBuffer[len(d.pcBuffer)-1-i] = byte(pc >> (8 * i))
		}
		hex.Encode(d.pcHex, d.pcBuffer)
		fmt.Fprintf(out, "%s: ", d.pcHex)
	}
}

func (d *Disassembler) printInvalid(out io.Writer, b byte) {
	fmt.Fprintf(out, "<invalid %#x>\n", b)
}

func (d *Disassembler) printOp(out io.Writer, op *evm.Op) {
	name := op.Name
	if !d.uppercase {
		name = strings.ToLower(op.Name)
	}
	fmt.Fprint(out, name)
}

func (d *Disassembler) printPushData(out io.Writer, data []byte) {
	fmt.Fprintf(out, " %#x", data)
}

func (d *Disassembler) newline(out io.Writer, prevOp *evm.Op, nextOp *evm.Op) {
	if prevOp == nil {
		return
	}
	out.Write([]byte{'\n'})
	if d.noBlanks || nextOp == nil {
		return
	}
	if prevOp.Jump || nextOp.JumpDest {
		out.Write([]byte{'\n'})
	}
}

func digitsOfPC(codesize int) int {
	switch {
	case codesize < (1<<16 - 1):
		return 2
	case codesize < (1<<24 - 1):
		return 3
	case codesize < (1<<32 - 1):
		return 4
	default:
		return 8
	}
}
