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

import "github.com/huffc/compiler/internal/ast"

// scopeLabels walks the invocation tree pre-order, assigning each node the set of
// LabelIDs defined directly in its macro body (not inside any invoked child's body).
// Two label definitions sharing a name within the same body are a DuplicateLabel error;
// the first definition wins and keeps its ID.
func scopeLabels(node *InvocationNode, arena *labelArena, errs *errorList) {
	node.Labels = make(map[string]LabelID)
	for _, stmt := range node.Macro.Body {
		switch s := stmt.(type) {
		case *ast.LabelDefSt:
			if firstID, exists := node.Labels[s.Name]; exists {
				errs.addf(s.Pos, ecDuplicateLabel,
					"label %q already defined in this macro body (first definition: %v)",
					s.Name, arena.records[firstID].pos)
				continue
			}
			node.Labels[s.Name] = arena.alloc(s.Name, node, s.Pos)
		case *ast.MacroCallSt:
			if child := node.ChildOf(s); child != nil {
				scopeLabels(child, arena, errs)
			}
		}
	}
}
