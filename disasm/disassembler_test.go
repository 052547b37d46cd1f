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

package disasm

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestDisassembleBasic(t *testing.T) {
	bytecode, err := hex.DecodeString("60018060015760025b00")
	if err != nil {
		t.Fatal(err)
	}
	expected := strings.TrimSpace(`
push1 0x01
dup1
push1 0x01
jumpi

push1 0x02

jumpdest
stop
`)
	var buf strings.Builder
	d := New()
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Fatalf("wrong output:\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestDisassembleJumpdestBlocks(t *testing.T) {
	bytecode, err := hex.DecodeString("565b00")
	if err != nil {
		t.Fatal(err)
	}
	expected := strings.TrimSpace(`
jump

jumpdest
stop
`)
	var buf strings.Builder
	d := New()
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Fatalf("wrong output:\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestDisassembleNoBlanks(t *testing.T) {
	bytecode, err := hex.DecodeString("565b00")
	if err != nil {
		t.Fatal(err)
	}
	expected := "jump\njumpdest\nstop"
	var buf strings.Builder
	d := New()
	d.SetShowBlocks(false)
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Fatalf("wrong output:\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestDisassembleUppercase(t *testing.T) {
	bytecode, err := hex.DecodeString("00")
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	d := New()
	d.SetUppercase(true)
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "STOP" {
		t.Fatalf("wrong output: %s", got)
	}
}

func TestDisassembleShowPC(t *testing.T) {
	bytecode, err := hex.DecodeString("6001600200")
	if err != nil {
		t.Fatal(err)
	}
	expected := strings.TrimSpace(`
0000: push1 0x01
0002: push1 0x02
0004: stop
`)
	var buf strings.Builder
	d := New()
	d.SetShowBlocks(false)
	d.SetShowPC(true)
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Fatalf("wrong output:\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestDisassembleInvalidOpcode(t *testing.T) {
	bytecode, err := hex.DecodeString("0c00")
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	d := New()
	d.SetShowBlocks(false)
	if err := d.Disassemble(bytecode, &buf); err != nil {
		t.Fatal(err)
	}
	expected := "<invalid 0xc>\nstop"
	if got := strings.TrimSpace(buf.String()); got != expected {
		t.Fatalf("wrong output:\ngot:\n%s\nwant:\n%s", got, expected)
	}
}

func TestDisassembleTruncatedPush(t *testing.T) {
	bytecode, err := hex.DecodeString("61ff")
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	d := New()
	if err := d.Disassemble(bytecode, &buf); err == nil {
		t.Fatal("expected error on truncated push data")
	}
}
