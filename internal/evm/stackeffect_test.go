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

package evm

import "testing"

func TestStackEffectFixed(t *testing.T) {
	cases := []struct {
		name     string
		pop      int
		push     int
	}{
		{"STOP", 0, 0},
		{"ADD", 2, 1},
		{"ADDMOD", 3, 1},
		{"POP", 1, 0},
		{"JUMP", 1, 0},
		{"JUMPI", 2, 0},
		{"JUMPDEST", 0, 0},
		{"CALL", 7, 1},
		{"REVERT", 2, 0},
	}
	for _, c := range cases {
		op, ok := OpByName(c.name)
		if !ok {
			t.Fatalf("%s: not found", c.name)
		}
		pop, push := StackEffect(op)
		if pop != c.pop || push != c.push {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", c.name, pop, push, c.pop, c.push)
		}
	}
}

func TestStackEffectPush(t *testing.T) {
	for _, name := range []string{"PUSH0", "PUSH1", "PUSH32"} {
		op, ok := OpByName(name)
		if !ok {
			t.Fatalf("%s: not found", name)
		}
		pop, push := StackEffect(op)
		if pop != 0 || push != 1 {
			t.Errorf("%s: got (%d, %d), want (0, 1)", name, pop, push)
		}
	}
}

func TestStackEffectDup(t *testing.T) {
	dup3, ok := OpByName("DUP3")
	if !ok {
		t.Fatal("DUP3 not found")
	}
	pop, push := StackEffect(dup3)
	if pop != 3 || push != 4 {
		t.Errorf("DUP3: got (%d, %d), want (3, 4)", pop, push)
	}
}

func TestStackEffectSwap(t *testing.T) {
	swap5, ok := OpByName("SWAP5")
	if !ok {
		t.Fatal("SWAP5 not found")
	}
	pop, push := StackEffect(swap5)
	if pop != 6 || push != 6 {
		t.Errorf("SWAP5: got (%d, %d), want (6, 6)", pop, push)
	}
}
