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

	"github.com/huffc/compiler/internal/ast"
	"github.com/huffc/compiler/internal/evm"
	"github.com/huffc/compiler/internal/set"
)

// SectionKind identifies what a Section contributes to the final byte string.
type SectionKind int

const (
	SecOpBytes SectionKind = iota
	SecLabelMark
	SecPushRef
)

// Section is one entry of the flattened, linear program: a run of fixed bytes, a
// PC-only placeholder marking where a label sits, or a push of a not-yet-sized offset.
type Section struct {
	Kind   SectionKind
	Bytes  []byte      // valid for SecOpBytes
	Label  LabelID     // valid for SecLabelMark
	Target LabelID     // valid for SecPushRef: the label whose PC is being pushed
	Width  int         // valid for SecPushRef: current byte width of the pushed value
	Pos    ast.Position // valid for SecPushRef: source position, for size/overflow diagnostics
}

// auxTracker is shared by every sectionBuilder involved in one compilation, including
// the nested builders spun up by compileAux for __codesize/__codeoffset. Sharing it
// (rather than giving each nested builder its own) is what lets mutual __codesize/
// __codeoffset references between two macros be detected as RecursiveMacro instead of
// recursing until the stack overflows.
type auxTracker struct {
	stack set.Set[*ast.MacroDef]
	bytes map[*ast.MacroDef][]byte
}

func newAuxTracker() *auxTracker {
	return &auxTracker{stack: make(set.Set[*ast.MacroDef]), bytes: make(map[*ast.MacroDef][]byte)}
}

// sectionBuilder flattens one invocation tree into an ordered []Section, evaluating
// builtins and constant references along the way. Each isolated auxiliary unit
// (compiled for __codesize/__codeoffset) gets its own sectionBuilder — with its own
// tail-append bookkeeping for tables/aux-blobs it references — but all builders in a
// compilation share the same aux tracker.
type sectionBuilder struct {
	st    *SymbolTable
	arena *labelArena
	opts  CompileOptions
	errs  *errorList
	aux   *auxTracker

	sections []Section

	tableLabel map[string]LabelID // table name -> label marking its appended start
	tableOrder []string           // tables in first-referenced order

	auxLabel map[*ast.MacroDef]LabelID // label marking an appended __codeoffset blob
	auxOrder []*ast.MacroDef
}

func newSectionBuilder(st *SymbolTable, arena *labelArena, opts CompileOptions, errs *errorList, aux *auxTracker) *sectionBuilder {
	return &sectionBuilder{
		st:         st,
		arena:      arena,
		opts:       opts,
		errs:       errs,
		aux:        aux,
		tableLabel: make(map[string]LabelID),
		auxLabel:   make(map[*ast.MacroDef]LabelID),
	}
}

// buildSections flattens root (and transitively all tables/aux blobs it references)
// into a final ordered section list, per spec §4.5: main tree first, then referenced
// code tables and __codeoffset blobs appended at the tail in first-reference order.
func buildSections(root *InvocationNode, st *SymbolTable, arena *labelArena, opts CompileOptions, errs *errorList) []Section {
	b := newSectionBuilder(st, arena, opts, errs, newAuxTracker())
	return b.flattenUnit(root)
}

func (b *sectionBuilder) flattenUnit(root *InvocationNode) []Section {
	b.emitNode(root)
	for _, name := range b.tableOrder {
		t, _ := b.st.Lookup(name)
		table := t.(*ast.TableDef)
		b.sections = append(b.sections, Section{Kind: SecLabelMark, Label: b.tableLabel[name]})
		b.sections = append(b.sections, Section{Kind: SecOpBytes, Bytes: table.Data})
	}
	for _, m := range b.auxOrder {
		bytes := b.aux.bytes[m]
		b.sections = append(b.sections, Section{Kind: SecLabelMark, Label: b.auxLabel[m]})
		b.sections = append(b.sections, Section{Kind: SecOpBytes, Bytes: bytes})
	}
	return b.sections
}

func (b *sectionBuilder) emitNode(node *InvocationNode) {
	for _, stmt := range node.Macro.Body {
		switch s := stmt.(type) {
		case *ast.LabelDefSt:
			b.sections = append(b.sections, Section{Kind: SecLabelMark, Label: node.Labels[s.Name]})
		case *ast.MacroCallSt:
			if child := node.ChildOf(s); child != nil {
				b.emitNode(child)
			}
		case *ast.BuiltinCallSt:
			b.emitBuiltin(node, s)
		case ast.Instruction:
			b.emitInstruction(node, s)
		}
	}
}

func (b *sectionBuilder) emitInstruction(node *InvocationNode, instr ast.Instruction) {
	switch i := instr.(type) {
	case *ast.OpInstr:
		op, ok := evm.OpByName(i.Name)
		if !ok {
			b.errs.addf(i.Pos, ecUnresolvedLabel, "unknown opcode %q", i.Name)
			return
		}
		b.sections = append(b.sections, Section{Kind: SecOpBytes, Bytes: []byte{op.Code}})

	case *ast.PushLiteralInstr:
		b.emitPushLiteral(i)

	case *ast.LabelRefInstr:
		id, ok := resolveLabelRef(node, i.Name)
		if !ok {
			b.errs.addf(i.Pos, ecUnresolvedLabel, "unresolved label %q", i.Name)
			return
		}
		b.sections = append(b.sections, Section{Kind: SecPushRef, Target: id, Width: 1, Pos: i.Pos})

	case *ast.ConstantRefInstr:
		word, ok := resolveConstantRef(b.st, i.Name)
		if !ok {
			b.errs.addf(i.Pos, ecUnknownEntry, "undefined constant %q", i.Name)
			return
		}
		b.emitMinimumPush(i.Pos, word)

	case *ast.MacroArgRefInstr:
		bound, ok := node.Args[i.Name]
		if !ok {
			b.errs.addf(i.Pos, ecUnknownMacroArg, "macro argument <%s> is not bound", i.Name)
			return
		}
		b.emitInstruction(bound.Scope, bound.Instr)

	default:
		b.errs.addf(instr.Position(), ecUnresolvedLabel, "unsupported instruction")
	}
}

func (b *sectionBuilder) emitPushLiteral(i *ast.PushLiteralInstr) {
	if i.Word.BitLen() > 256 {
		b.errs.addf(i.Pos, ecWordOverflow, "literal %s overflows 256 bits", i.Word.String())
		return
	}
	width := i.Width
	if width == 0 {
		b.emitMinimumPush(i.Pos, i.Word)
		return
	}
	if i.Word.Sign() < 0 || i.Word.BitLen() > width*8 {
		b.errs.addf(i.Pos, ecPushDataOverflow, "value %s does not fit in PUSH%d", i.Word.String(), width)
		return
	}
	op, ok := evm.PushOp(width)
	if !ok {
		b.errs.addf(i.Pos, ecPushDataOverflow, "invalid push width %d", width)
		return
	}
	data := make([]byte, width)
	i.Word.FillBytes(data)
	b.sections = append(b.sections, Section{Kind: SecOpBytes, Bytes: append([]byte{op.Code}, data...)})
}

// emitMinimumPush emits the narrowest PUSH (PUSH0 if enabled and the value is zero,
// otherwise the fewest data bytes needed) that can hold word.
func (b *sectionBuilder) emitMinimumPush(pos ast.Position, word *big.Int) {
	if word.Sign() < 0 || word.BitLen() > 256 {
		b.errs.addf(pos, ecWordOverflow, "value %s overflows 256 bits", word.String())
		return
	}
	width := minimumWidth(word, b.opts.EmitPush0)
	op, ok := evm.PushOp(width)
	if !ok {
		b.errs.addf(pos, ecPushDataOverflow, "invalid push width %d", width)
		return
	}
	bytes := []byte{op.Code}
	if width > 0 {
		data := make([]byte, width)
		word.FillBytes(data)
		bytes = append(bytes, data...)
	}
	b.sections = append(b.sections, Section{Kind: SecOpBytes, Bytes: bytes})
}

// minimumWidth returns the fewest data bytes needed to hold word: 0 (PUSH0) for a zero
// value when emitPush0 is enabled, otherwise ceil(bitlen/8) clamped to at least 1.
func minimumWidth(word *big.Int, emitPush0 bool) int {
	if word.Sign() == 0 {
		if emitPush0 {
			return 0
		}
		return 1
	}
	w := (word.BitLen() + 7) / 8
	if w < 1 {
		w = 1
	}
	return w
}

func (b *sectionBuilder) emitBuiltin(node *InvocationNode, call *ast.BuiltinCallSt) {
	switch call.Kind {
	case ast.BuiltinTableStart:
		table, ok := resolveTableArg(b.st, call, b.errs)
		if !ok {
			return
		}
		id := b.tableLabelID(table.Name)
		b.sections = append(b.sections, Section{Kind: SecPushRef, Target: id, Width: 1, Pos: call.Pos})

	case ast.BuiltinTableSize:
		table, ok := resolveTableArg(b.st, call, b.errs)
		if !ok {
			return
		}
		b.tableLabelID(table.Name) // a size-only reference still appends the table
		b.emitMinimumPush(call.Pos, big.NewInt(int64(len(table.Data))))

	case ast.BuiltinCodeSize:
		m, ok := resolveMacroArg(b.st, call, b.errs)
		if !ok {
			return
		}
		aux, ok := b.compileAux(call.Pos, m)
		if !ok {
			return
		}
		b.emitMinimumPush(call.Pos, big.NewInt(int64(len(aux))))

	case ast.BuiltinCodeOffset:
		m, ok := resolveMacroArg(b.st, call, b.errs)
		if !ok {
			return
		}
		if _, ok := b.compileAux(call.Pos, m); !ok {
			return
		}
		id := b.auxLabelID(m)
		b.sections = append(b.sections, Section{Kind: SecPushRef, Target: id, Width: 1, Pos: call.Pos})

	case ast.BuiltinFuncSig, ast.BuiltinEventHash, ast.BuiltinError:
		def, ok := resolveSolArg(b.st, call, b.errs)
		if !ok {
			return
		}
		data, err := evalBuiltinSol(call.Kind, def)
		if err != nil {
			b.errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %v", call.Kind, err)
			return
		}
		b.emitMinimumPush(call.Pos, new(big.Int).SetBytes(data))

	default:
		b.errs.addf(call.Pos, ecBuiltinKindMismatch, "unknown builtin")
	}
}

func (b *sectionBuilder) tableLabelID(name string) LabelID {
	if id, ok := b.tableLabel[name]; ok {
		return id
	}
	id := b.arena.alloc(name, nil, ast.Position{})
	b.tableLabel[name] = id
	b.tableOrder = append(b.tableOrder, name)
	return id
}

func (b *sectionBuilder) auxLabelID(m *ast.MacroDef) LabelID {
	if id, ok := b.auxLabel[m]; ok {
		return id
	}
	id := b.arena.alloc(m.Name, nil, m.Pos)
	b.auxLabel[m] = id
	b.auxOrder = append(b.auxOrder, m)
	return id
}

// compileAux compiles m as an isolated auxiliary unit, per the __codesize/__codeoffset
// rule in spec §4.5. A macro that (transitively) requests its own __codesize/
// __codeoffset while already being compiled as an auxiliary unit is mutual recursion,
// reported as RecursiveMacro rather than recursing forever.
func (b *sectionBuilder) compileAux(pos ast.Position, m *ast.MacroDef) ([]byte, bool) {
	if bytes, ok := b.aux.bytes[m]; ok {
		return bytes, true
	}
	if b.aux.stack.Includes(m) {
		b.errs.addf(pos, ecRecursiveMacro, "mutual __codesize/__codeoffset reference to macro %q", m.Name)
		return nil, false
	}
	b.aux.stack.Add(m)
	defer delete(b.aux.stack, m)

	auxArena := &labelArena{}
	auxRoot := newInvocationNode(m, nil, nil)
	expandChildren(auxRoot, b.st, b.errs)
	scopeLabels(auxRoot, auxArena, b.errs)

	auxBuilder := newSectionBuilder(b.st, auxArena, b.opts, b.errs, b.aux)
	auxSections := auxBuilder.flattenUnit(auxRoot)
	solveSizes(auxSections, b.opts, b.errs)
	bytes := emitSections(auxSections, auxArena, b.errs)
	b.aux.bytes[m] = bytes
	return bytes, true
}
