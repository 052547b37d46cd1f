// Copyright 2025 The go-ethereum Authors
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
	"github.com/huffc/compiler/internal/evm"
)

// checkStackEffects verifies every macro in the invocation tree that carries an
// explicit takes()/returns() annotation against what its body actually does to the
// stack. A macro without the annotation is not checked directly, but its body is still
// walked (via effectFor) whenever something else invokes it, so that the caller's own
// check accounts for it correctly.
func checkStackEffects(root *InvocationNode, errs *errorList) {
	var walk func(node *InvocationNode)
	walk = func(node *InvocationNode) {
		if node.Macro.HasStackEffect {
			minReq, net := walkBody(node)
			declaredNet := node.Macro.Returns - node.Macro.Takes
			if minReq > node.Macro.Takes {
				errs.addf(node.Macro.Pos, ecStackUnderflow,
					"macro %q body needs at least %d stack item(s), but declares takes(%d)",
					node.Macro.Name, minReq, node.Macro.Takes)
			} else if net != declaredNet {
				errs.addf(node.Macro.Pos, ecStackEffectMismatch,
					"macro %q body leaves a net stack change of %d, but declares takes(%d) returns(%d)",
					node.Macro.Name, net, node.Macro.Takes, node.Macro.Returns)
			}
		}
		for _, stmt := range node.Macro.Body {
			if call, ok := stmt.(*ast.MacroCallSt); ok {
				if child := node.ChildOf(call); child != nil {
					walk(child)
				}
			}
		}
	}
	walk(root)
}

// effectFor returns the (minimum required starting depth, net stack change) of
// invoking node. A macro with a declared stack effect is trusted at its contract,
// regardless of whether the contract actually matches its body — that mismatch, if
// any, is reported separately by checkStackEffects for that macro's own node.
func effectFor(node *InvocationNode) (minReq, net int) {
	if node.Macro.HasStackEffect {
		return node.Macro.Takes, node.Macro.Returns - node.Macro.Takes
	}
	return walkBody(node)
}

// walkBody computes the minimum starting stack depth node's body needs to never
// underflow, and the net stack height change it leaves behind, by walking its
// statements in source order and accumulating the running depth.
func walkBody(node *InvocationNode) (minReq, net int) {
	depth := 0
	for _, stmt := range node.Macro.Body {
		var need, delta int
		switch s := stmt.(type) {
		case *ast.LabelDefSt:
			continue
		case *ast.MacroCallSt:
			child := node.ChildOf(s)
			if child == nil {
				continue
			}
			need, delta = effectFor(child)
		case *ast.BuiltinCallSt:
			need, delta = 0, 1
		case ast.Instruction:
			need, delta = instrEffect(node, s)
		default:
			continue
		}
		if depth < need {
			deficit := need - depth
			minReq += deficit
			depth += deficit
		}
		depth += delta
	}
	return minReq, depth
}

// instrEffect returns the (minimum required depth, net stack change) of a single
// instruction. MacroArgRef recurses into the bound argument's own scope, since an
// argument forwarded through one or more levels of <arg> passthrough may itself be any
// kind of instruction, not just a literal.
func instrEffect(node *InvocationNode, instr ast.Instruction) (minReq, net int) {
	switch i := instr.(type) {
	case *ast.OpInstr:
		op, ok := evm.OpByName(i.Name)
		if !ok {
			return 0, 0
		}
		pop, push := evm.StackEffect(op)
		return pop, push - pop
	case *ast.MacroArgRefInstr:
		bound, ok := node.Args[i.Name]
		if !ok {
			return 0, 0
		}
		return instrEffect(bound.Scope, bound.Instr)
	default:
		// PushLiteralInstr, LabelRefInstr, ConstantRefInstr all resolve to exactly
		// one pushed value.
		return 0, 1
	}
}
