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

package ast

import "testing"

func parseOK(t *testing.T, src string) *Root {
	t.Helper()
	root, errs := NewParser("test.huff", []byte(src)).Parse()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return root
}

func TestParseMacroDef(t *testing.T) {
	root := parseOK(t, `
#define macro MAIN(a, b) = takes(1) returns(2) {
    <a> <b> add
}
`)
	if len(root.Definitions) != 1 {
		t.Fatalf("got %d definitions, want 1", len(root.Definitions))
	}
	m, ok := root.Definitions[0].(*MacroDef)
	if !ok {
		t.Fatalf("got %T, want *MacroDef", root.Definitions[0])
	}
	if m.Name != "MAIN" {
		t.Errorf("Name = %q, want MAIN", m.Name)
	}
	if len(m.Params) != 2 || m.Params[0] != "a" || m.Params[1] != "b" {
		t.Errorf("Params = %v, want [a b]", m.Params)
	}
	if !m.HasStackEffect || m.Takes != 1 || m.Returns != 2 {
		t.Errorf("stack effect = (%v, %d, %d), want (true, 1, 2)", m.HasStackEffect, m.Takes, m.Returns)
	}
	if len(m.Body) != 3 {
		t.Fatalf("got %d body statements, want 3", len(m.Body))
	}
	if _, ok := m.Body[0].(*MacroArgRefInstr); !ok {
		t.Errorf("Body[0] = %T, want *MacroArgRefInstr", m.Body[0])
	}
	op, ok := m.Body[2].(*OpInstr)
	if !ok || op.Name != "ADD" {
		t.Errorf("Body[2] = %v, want OpInstr{ADD}", m.Body[2])
	}
}

func TestParseMacroNoStackEffect(t *testing.T) {
	root := parseOK(t, `
#define macro HELPER() {
    stop
}
`)
	m := root.Definitions[0].(*MacroDef)
	if m.HasStackEffect {
		t.Error("macro with no takes()/returns() annotation should have HasStackEffect = false")
	}
}

func TestParseLabelsAndJumps(t *testing.T) {
	root := parseOK(t, `
#define macro MAIN() = takes(0) returns(0) {
    target jump
  target:
    jumpdest
}
`)
	m := root.Definitions[0].(*MacroDef)
	if len(m.Body) != 4 {
		t.Fatalf("got %d body statements, want 4", len(m.Body))
	}
	ref, ok := m.Body[0].(*LabelRefInstr)
	if !ok || ref.Name != "target" {
		t.Errorf("Body[0] = %v, want LabelRefInstr{target}", m.Body[0])
	}
	if _, ok := m.Body[1].(*OpInstr); !ok {
		t.Errorf("Body[1] = %T, want *OpInstr (jump)", m.Body[1])
	}
	def, ok := m.Body[2].(*LabelDefSt)
	if !ok || def.Name != "target" {
		t.Errorf("Body[2] = %v, want LabelDefSt{target}", m.Body[2])
	}
}

func TestParsePushLiterals(t *testing.T) {
	root := parseOK(t, `
#define macro MAIN() = takes(0) returns(0) {
    0x2a push1 0x01 push0 push32 0x00
}
`)
	m := root.Definitions[0].(*MacroDef)
	if len(m.Body) != 4 {
		t.Fatalf("got %d body statements, want 4", len(m.Body))
	}
	lit, ok := m.Body[0].(*PushLiteralInstr)
	if !ok || lit.Width != 0 || lit.Word.Int64() != 0x2a {
		t.Errorf("Body[0] = %v, want PushLiteralInstr{width 0, 0x2a}", m.Body[0])
	}
	explicit, ok := m.Body[1].(*PushLiteralInstr)
	if !ok || explicit.Width != 1 || explicit.Word.Int64() != 1 {
		t.Errorf("Body[1] = %v, want PushLiteralInstr{width 1, 1}", m.Body[1])
	}
	push0, ok := m.Body[2].(*OpInstr)
	if !ok || push0.Name != "PUSH0" {
		t.Errorf("Body[2] = %v, want OpInstr{PUSH0}", m.Body[2])
	}
	push32, ok := m.Body[3].(*PushLiteralInstr)
	if !ok || push32.Width != 32 {
		t.Errorf("Body[3] = %v, want PushLiteralInstr{width 32}", m.Body[3])
	}
}

func TestParseMacroCallAndConstantRef(t *testing.T) {
	root := parseOK(t, `
#define constant FOO = 0x01
#define macro CHILD(x) = takes(0) returns(1) {
    <x>
}
#define macro MAIN() = takes(0) returns(0) {
    CHILD([FOO])
    pop
}
`)
	main := root.Definitions[2].(*MacroDef)
	call, ok := main.Body[0].(*MacroCallSt)
	if !ok || call.Name != "CHILD" {
		t.Fatalf("Body[0] = %v, want MacroCallSt{CHILD}", main.Body[0])
	}
	if len(call.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(call.Args))
	}
	if _, ok := call.Args[0].(*ConstantRefInstr); !ok {
		t.Errorf("Args[0] = %T, want *ConstantRefInstr", call.Args[0])
	}
}

func TestParseBuiltinCall(t *testing.T) {
	root := parseOK(t, `
#define table DATA { 0x0102 }
#define macro MAIN() = takes(0) returns(0) {
    __tablestart(DATA)
    __tablesize(DATA)
}
`)
	main := root.Definitions[1].(*MacroDef)
	b0, ok := main.Body[0].(*BuiltinCallSt)
	if !ok || b0.Kind != BuiltinTableStart || b0.Ident != "DATA" {
		t.Errorf("Body[0] = %v, want BuiltinCallSt{__tablestart, DATA}", main.Body[0])
	}
}

func TestParseTableDef(t *testing.T) {
	root := parseOK(t, `
#define table DATA {
    0x0102030405
    "ab"
}
`)
	table := root.Definitions[0].(*TableDef)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 'a', 'b'}
	if !bytesEqual(table.Data, want) {
		t.Errorf("Data = %x, want %x", table.Data, want)
	}
}

func TestParseSolDeclarations(t *testing.T) {
	root := parseOK(t, `
#define function transfer(address,uint256) nonpayable returns (bool)
#define event Transfer(address indexed from, address indexed to, uint256 amount)
#define error InsufficientBalance(uint256 available, uint256 required)
`)
	fn := root.Definitions[0].(*SolFunctionDef)
	if fn.Name != "transfer" || len(fn.Args) != 2 || len(fn.Returns) != 1 {
		t.Errorf("function def = %+v", fn)
	}
	ev := root.Definitions[1].(*SolEventDef)
	if ev.Name != "Transfer" || len(ev.Args) != 3 || !ev.Args[0].Indexed || ev.Args[2].Indexed {
		t.Errorf("event def = %+v", ev)
	}
	er := root.Definitions[2].(*SolErrorDef)
	if er.Name != "InsufficientBalance" || len(er.Args) != 2 {
		t.Errorf("error def = %+v", er)
	}
}

func TestParseDuplicateDefinitionDoesNotPanic(t *testing.T) {
	root, errs := NewParser("test.huff", []byte(`
#define macro MAIN() = takes(0) returns(0) { stop }
#define macro MAIN() = takes(0) returns(0) { stop }
`)).Parse()
	if len(errs) != 0 {
		t.Fatalf("parser itself should not flag duplicate definitions, got %v", errs)
	}
	if len(root.Definitions) != 2 {
		t.Fatalf("got %d definitions, want 2 (duplicate detection is a later compiler pass)", len(root.Definitions))
	}
}

func TestParseUnexpectedTokenRecovers(t *testing.T) {
	_, errs := NewParser("test.huff", []byte(`
#define macro BROKEN( = takes(0) returns(0) { stop }
#define macro MAIN() = takes(0) returns(0) { stop }
`)).Parse()
	if len(errs) == 0 {
		t.Fatal("expected a parse error for the malformed BROKEN definition")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
