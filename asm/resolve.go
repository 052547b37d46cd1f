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
)

// resolveLabelRef implements the up-only, shadowing label lookup: it searches node's own
// label scope first, then its parent, then the parent's parent, and so on to the root.
// It never descends into a node's children — a reference cannot see a label defined by
// a macro that node itself invokes.
func resolveLabelRef(node *InvocationNode, name string) (LabelID, bool) {
	for n := node; n != nil; n = n.Parent {
		if id, ok := n.Labels[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// resolveConstantRef looks up name as a top-level constant.
func resolveConstantRef(st *SymbolTable, name string) (*big.Int, bool) {
	def, ok := st.Lookup(name)
	if !ok {
		return nil, false
	}
	c, ok := def.(*ast.ConstantDef)
	if !ok {
		return nil, false
	}
	return c.Value, true
}

// resolveTableArg resolves a table-kind builtin's argument against the symbol table.
func resolveTableArg(st *SymbolTable, call *ast.BuiltinCallSt, errs *errorList) (*ast.TableDef, bool) {
	def, ok := st.Lookup(call.Ident)
	if !ok {
		errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %q is not defined", call.Kind, call.Ident)
		return nil, false
	}
	t, ok := def.(*ast.TableDef)
	if !ok {
		errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %q is a %s, not a table", call.Kind, call.Ident, ast.DefKind(def))
		return nil, false
	}
	return t, true
}

// resolveMacroArg resolves a __codesize/__codeoffset builtin's argument against the
// symbol table.
func resolveMacroArg(st *SymbolTable, call *ast.BuiltinCallSt, errs *errorList) (*ast.MacroDef, bool) {
	def, ok := st.Lookup(call.Ident)
	if !ok {
		errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %q is not defined", call.Kind, call.Ident)
		return nil, false
	}
	m, ok := def.(*ast.MacroDef)
	if !ok {
		errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %q is a %s, not a macro", call.Kind, call.Ident, ast.DefKind(def))
		return nil, false
	}
	return m, true
}

// resolveSolArg resolves a Sol-kind builtin's argument (__FUNC_SIG, __EVENT_HASH,
// __ERROR) against the symbol table, returning the definition as ast.Definition so the
// caller can type-switch on the expected kind.
func resolveSolArg(st *SymbolTable, call *ast.BuiltinCallSt, errs *errorList) (ast.Definition, bool) {
	def, ok := st.Lookup(call.Ident)
	if !ok {
		errs.addf(call.Pos, ecBuiltinKindMismatch, "%s: %q is not defined", call.Kind, call.Ident)
		return nil, false
	}
	return def, true
}
