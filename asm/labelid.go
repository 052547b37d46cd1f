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

// LabelID is an opaque identifier for one label definition, unique across the whole
// invocation tree. Using a flat arena of small integers instead of pointers keeps the
// resolver's output trivially comparable and avoids reference cycles between nodes,
// labels and the PC table built by the size solver.
type LabelID int

type labelRecord struct {
	name string
	node *InvocationNode
	pos  ast.Position
}

// labelArena is the central table backing every LabelID handed out during scoping.
type labelArena struct {
	records []labelRecord
}

func (a *labelArena) alloc(name string, node *InvocationNode, pos ast.Position) LabelID {
	id := LabelID(len(a.records))
	a.records = append(a.records, labelRecord{name: name, node: node, pos: pos})
	return id
}

func (a *labelArena) name(id LabelID) string { return a.records[id].name }
