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

// InvocationNode represents one expansion of one macro in the invocation tree. The same
// macro invoked from two different call sites (or twice from the same one) produces two
// distinct nodes, each with its own label scope.
type InvocationNode struct {
	Macro  *ast.MacroDef
	Parent *InvocationNode

	// Args holds, for every formal parameter of Macro, the concrete instruction bound
	// to it by the invoking call site, together with the node whose label scope that
	// instruction's text belongs to. By the time a node exists, every binding here has
	// already been resolved past any MacroArgRef chain: looking it up is a single map
	// access, never a walk.
	Args map[string]boundArg

	// childForCall maps each macro-call statement appearing directly in Macro.Body to
	// the child node it expanded into.
	childForCall map[*ast.MacroCallSt]*InvocationNode

	// Labels is filled in by the label scoper (asm/scope.go).
	Labels map[string]LabelID
}

// boundArg is an actual argument bound to a formal parameter. Scope is the node whose
// label-scope chain resolves any LabelRef found inside Instr — the node where that
// expression was textually written, which, after forwarding through one or more levels
// of <arg> passthrough, may be an ancestor several levels removed from where it is
// finally used.
type boundArg struct {
	Instr ast.Instruction
	Scope *InvocationNode
}

func newInvocationNode(m *ast.MacroDef, parent *InvocationNode, args map[string]boundArg) *InvocationNode {
	return &InvocationNode{
		Macro:        m,
		Parent:       parent,
		Args:         args,
		childForCall: make(map[*ast.MacroCallSt]*InvocationNode),
	}
}

// ChildOf returns the node that the given call statement (which must belong to this
// node's macro body) expanded into, or nil if expansion failed (an error was already
// reported in that case).
func (n *InvocationNode) ChildOf(call *ast.MacroCallSt) *InvocationNode {
	return n.childForCall[call]
}

// buildInvocationTree expands the entry macro into a fully materialized invocation
// tree, resolving macro-argument bindings and detecting arity mismatches and recursion
// along the way.
func buildInvocationTree(st *SymbolTable, entryName string, errs *errorList) *InvocationNode {
	entryDef, ok := st.Lookup(entryName)
	if !ok {
		errs.add(compilerError(ecUnknownEntry))
		return nil
	}
	entry, ok := entryDef.(*ast.MacroDef)
	if !ok {
		errs.addf(entryDef.Position(), ecNotAMacro, "entry %q is not a macro", entryName)
		return nil
	}
	if len(entry.Params) != 0 {
		errs.addf(entry.Pos, ecArgCountMismatch, "entry macro %q must take no arguments, has %d", entryName, len(entry.Params))
		return nil
	}
	root := newInvocationNode(entry, nil, nil)
	expandChildren(root, st, errs)
	return root
}

// expandChildren builds a child InvocationNode for every macro-call statement directly
// inside node's body.
func expandChildren(node *InvocationNode, st *SymbolTable, errs *errorList) {
	for _, stmt := range node.Macro.Body {
		call, ok := stmt.(*ast.MacroCallSt)
		if !ok {
			continue
		}
		child := buildChild(node, call, st, errs)
		if child != nil {
			node.childForCall[call] = child
		}
	}
}

func buildChild(parent *InvocationNode, call *ast.MacroCallSt, st *SymbolTable, errs *errorList) *InvocationNode {
	def, ok := st.Lookup(call.Name)
	if !ok {
		errs.addf(call.Pos, ecNotAMacro, "undefined macro %q", call.Name)
		return nil
	}
	callee, ok := def.(*ast.MacroDef)
	if !ok {
		errs.addf(call.Pos, ecNotAMacro, "%q is not a macro, it is a %s", call.Name, ast.DefKind(def))
		return nil
	}
	if ancestor := findAncestor(parent, callee); ancestor != nil {
		errs.addf(call.Pos, ecRecursiveMacro, "recursive invocation of macro %q", call.Name)
		return nil
	}
	if len(call.Args) != len(callee.Params) {
		errs.addf(call.Pos, ecArgCountMismatch, "macro %q takes %d argument(s), got %d", call.Name, len(callee.Params), len(call.Args))
		return nil
	}

	args := make(map[string]boundArg, len(callee.Params))
	for i, param := range callee.Params {
		args[param] = resolveArgInstr(call.Args[i], parent, errs)
	}

	child := newInvocationNode(callee, parent, args)
	expandChildren(child, st, errs)
	return child
}

// findAncestor walks the node and its ancestors looking for one instantiating m. This
// implements the invocation-tree recursion check: a macro may not (transitively) invoke
// itself along a single path, even though it may legitimately be invoked from multiple
// independent call sites.
func findAncestor(node *InvocationNode, m *ast.MacroDef) *InvocationNode {
	for n := node; n != nil; n = n.Parent {
		if n.Macro == m {
			return n
		}
	}
	return nil
}

// resolveArgInstr substitutes a MacroArgRef actual argument with the binding already
// held by the invoking node, so that every InvocationNode.Args entry is, by
// construction, free of further MacroArgRef indirection. Any other instruction kind is
// bound as-is, scoped to the invoker (the node whose body textually contains it).
func resolveArgInstr(actual ast.Instruction, invoker *InvocationNode, errs *errorList) boundArg {
	ref, ok := actual.(*ast.MacroArgRefInstr)
	if !ok {
		return boundArg{Instr: actual, Scope: invoker}
	}
	if invoker == nil {
		errs.addf(ref.Pos, ecUnknownMacroArg, "macro argument <%s> used outside of a macro", ref.Name)
		return boundArg{Instr: actual, Scope: invoker}
	}
	bound, ok := invoker.Args[ref.Name]
	if !ok {
		errs.addf(ref.Pos, ecUnknownMacroArg, "macro argument <%s> is not a parameter of %q", ref.Name, invoker.Macro.Name)
		return boundArg{Instr: actual, Scope: invoker}
	}
	return bound
}
