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

package ast

import "math/big"

// Root is the toplevel of a parsed Huff source file: an ordered sequence of
// top-level definitions.
type Root struct {
	Definitions []Definition
}

// Definition is a toplevel #define'd entity: macro, constant, table, or one of
// the Solidity-shaped declarations used by the ABI builtins.
type Definition interface {
	Position() Position
	DefName() string
	definition()
}

// MacroDef is '#define macro NAME(params) = takes(n) returns(m) { ...body... }'.
type MacroDef struct {
	Pos            Position
	Name           string
	Params         []string
	HasStackEffect bool
	Takes, Returns int
	Body           []MacroStatement
}

// ConstantDef is '#define constant NAME = 0x...'.
type ConstantDef struct {
	Pos   Position
	Name  string
	Value *big.Int
}

// TableDef is '#define table NAME { ...raw bytes... }'.
type TableDef struct {
	Pos  Position
	Name string
	Data []byte
}

// SolArg is one argument of a Solidity-shaped function/event/error declaration.
// Only the textual type is kept; full Solidity type parsing is out of scope.
type SolArg struct {
	Type    string
	Indexed bool // only meaningful for SolEventDef
}

// SolFunctionDef is '#define function NAME(args) [view|payable|...] returns (rets)'.
type SolFunctionDef struct {
	Pos     Position
	Name    string
	Args    []SolArg
	Returns []SolArg
}

// SolEventDef is '#define event NAME(args)'.
type SolEventDef struct {
	Pos  Position
	Name string
	Args []SolArg
}

// SolErrorDef is '#define error NAME(args)'.
type SolErrorDef struct {
	Pos  Position
	Name string
	Args []SolArg
}

func (d *MacroDef) Position() Position       { return d.Pos }
func (d *ConstantDef) Position() Position    { return d.Pos }
func (d *TableDef) Position() Position       { return d.Pos }
func (d *SolFunctionDef) Position() Position { return d.Pos }
func (d *SolEventDef) Position() Position    { return d.Pos }
func (d *SolErrorDef) Position() Position    { return d.Pos }

func (d *MacroDef) DefName() string       { return d.Name }
func (d *ConstantDef) DefName() string    { return d.Name }
func (d *TableDef) DefName() string       { return d.Name }
func (d *SolFunctionDef) DefName() string { return d.Name }
func (d *SolEventDef) DefName() string    { return d.Name }
func (d *SolErrorDef) DefName() string    { return d.Name }

func (d *MacroDef) definition()       {}
func (d *ConstantDef) definition()    {}
func (d *TableDef) definition()       {}
func (d *SolFunctionDef) definition() {}
func (d *SolEventDef) definition()    {}
func (d *SolErrorDef) definition()    {}

// DefKind names the kind of a Definition, for duplicate-definition diagnostics.
func DefKind(d Definition) string {
	switch d.(type) {
	case *MacroDef:
		return "macro"
	case *ConstantDef:
		return "constant"
	case *TableDef:
		return "table"
	case *SolFunctionDef:
		return "function"
	case *SolEventDef:
		return "event"
	case *SolErrorDef:
		return "error"
	default:
		return "definition"
	}
}

// MacroStatement is one statement inside a macro body: a label definition, a plain
// instruction, or an invocation (user macro call or builtin).
type MacroStatement interface {
	Position() Position
	macroStatement()
}

// LabelDefSt is 'name:' inside a macro body.
type LabelDefSt struct {
	Pos  Position
	Name string
}

func (s *LabelDefSt) Position() Position { return s.Pos }
func (s *LabelDefSt) macroStatement()    {}

// Instruction is one of Op, PushLiteral, LabelRef, MacroArgRef, ConstantRef. It is used
// both as a bare macro-body statement and as an actual argument to a macro invocation.
type Instruction interface {
	MacroStatement
	instruction()
}

// OpInstr is a bare opcode mnemonic with no immediate argument, e.g. ADD, DUP1, JUMP.
type OpInstr struct {
	Pos  Position
	Name string // canonicalized uppercase mnemonic
}

// PushLiteralInstr is 'push<n> <word>' or a bare number literal '<word>' (n inferred
// from minimal size at emission time when Width == 0).
type PushLiteralInstr struct {
	Pos   Position
	Width int // 0 means "infer minimal width"; 1..32 for explicit pushN
	Word  *big.Int
}

// LabelRefInstr is a bare identifier naming a label, used as a value (e.g. to be jumped to).
type LabelRefInstr struct {
	Pos  Position
	Name string
}

// MacroArgRefInstr is '<name>', a reference to a macro's formal parameter.
type MacroArgRefInstr struct {
	Pos  Position
	Name string
}

// ConstantRefInstr is '[NAME]', a reference to a top-level constant.
type ConstantRefInstr struct {
	Pos  Position
	Name string
}

func (i *OpInstr) Position() Position           { return i.Pos }
func (i *PushLiteralInstr) Position() Position  { return i.Pos }
func (i *LabelRefInstr) Position() Position     { return i.Pos }
func (i *MacroArgRefInstr) Position() Position  { return i.Pos }
func (i *ConstantRefInstr) Position() Position  { return i.Pos }

func (i *OpInstr) macroStatement()          {}
func (i *PushLiteralInstr) macroStatement() {}
func (i *LabelRefInstr) macroStatement()    {}
func (i *MacroArgRefInstr) macroStatement() {}
func (i *ConstantRefInstr) macroStatement() {}

func (i *OpInstr) instruction()          {}
func (i *PushLiteralInstr) instruction() {}
func (i *LabelRefInstr) instruction()    {}
func (i *MacroArgRefInstr) instruction() {}
func (i *ConstantRefInstr) instruction() {}

// BuiltinKind identifies which named builtin a BuiltinCallSt calls.
type BuiltinKind int

const (
	BuiltinTableStart BuiltinKind = iota
	BuiltinTableSize
	BuiltinCodeSize
	BuiltinCodeOffset
	BuiltinFuncSig
	BuiltinEventHash
	BuiltinError
)

func (k BuiltinKind) String() string {
	switch k {
	case BuiltinTableStart:
		return "__tablestart"
	case BuiltinTableSize:
		return "__tablesize"
	case BuiltinCodeSize:
		return "__codesize"
	case BuiltinCodeOffset:
		return "__codeoffset"
	case BuiltinFuncSig:
		return "__FUNC_SIG"
	case BuiltinEventHash:
		return "__EVENT_HASH"
	case BuiltinError:
		return "__ERROR"
	default:
		return "<unknown builtin>"
	}
}

// MacroCallSt is 'NAME(actual, actual, ...)', a user-macro invocation.
type MacroCallSt struct {
	Pos  Position
	Name string
	Args []Instruction
}

func (s *MacroCallSt) Position() Position { return s.Pos }
func (s *MacroCallSt) macroStatement()    {}

// BuiltinCallSt is an invocation of one of the named builtins, each of which takes
// exactly one identifier argument.
type BuiltinCallSt struct {
	Pos   Position
	Kind  BuiltinKind
	Ident string
}

func (s *BuiltinCallSt) Position() Position { return s.Pos }
func (s *BuiltinCallSt) macroStatement()    {}
