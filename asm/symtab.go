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
	"github.com/huffc/compiler/internal/ast"
)

// SymbolTable is the flat namespace of all top-level #define'd names in a program: it
// does not care about the invocation tree, only about what a name denotes globally.
type SymbolTable struct {
	defs map[string]ast.Definition
}

// buildSymbolTable registers every top-level definition in root, reporting
// DuplicateDefinition for names re-used across any definition kind.
func buildSymbolTable(root *ast.Root, errs *errorList) *SymbolTable {
	st := &SymbolTable{defs: make(map[string]ast.Definition)}
	for _, def := range root.Definitions {
		name := def.DefName()
		if prior, ok := st.defs[name]; ok {
			errs.addf(def.Position(), ecDuplicateDefinition,
				"%s %q already defined as %s at %v", ast.DefKind(def), name, ast.DefKind(prior), prior.Position())
			continue
		}
		st.defs[name] = def
	}
	return st
}

// Lookup returns the definition for name, if any.
func (st *SymbolTable) Lookup(name string) (ast.Definition, bool) {
	d, ok := st.defs[name]
	return d, ok
}

// Macro returns the macro definition for name. ok is false both when name is undefined
// and when it is defined as something other than a macro; no error is reported.
func (st *SymbolTable) Macro(name string) (*ast.MacroDef, bool) {
	d, ok := st.defs[name]
	if !ok {
		return nil, false
	}
	m, ok := d.(*ast.MacroDef)
	return m, ok
}
