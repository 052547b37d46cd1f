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
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// compilerTestCase is one entry of testdata/compiler-tests.yaml. A case either expects a
// successful compilation (bytecode set) or a fixed sequence of errors (errors set), never
// both.
type compilerTestCase struct {
	Code            string   `yaml:"code"`
	Entry           string   `yaml:"entry"`
	WrapConstructor bool     `yaml:"wrapConstructor"`
	Bytecode        string   `yaml:"bytecode"`
	Errors          []string `yaml:"errors"`
}

func TestCompiler(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "compiler-tests.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var tests map[string]compilerTestCase
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&tests); err != nil {
		t.Fatal(err)
	}

	names := make([]string, 0, len(tests))
	for name := range tests {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		test := tests[name]
		t.Run(name, func(t *testing.T) {
			entry := test.Entry
			if entry == "" {
				entry = "MAIN"
			}
			opts := DefaultOptions()
			opts.WrapConstructor = test.WrapConstructor

			bytecode, errs := NewCompiler(opts).CompileString("test.huff", []byte(test.Code), entry)

			if len(test.Errors) > 0 {
				checkErrors(t, errs, test.Errors)
				return
			}
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			want, err := hex.DecodeString(test.Bytecode)
			if err != nil {
				t.Fatalf("bad expected bytecode in test data: %v", err)
			}
			if !bytes.Equal(bytecode, want) {
				t.Errorf("got  %x\nwant %x", bytecode, want)
			}
		})
	}
}

func checkErrors(t *testing.T, got []error, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d error(s), want %d\ngot: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if !strings.Contains(got[i].Error(), w) {
			t.Errorf("error %d: got %q, want substring %q", i, got[i].Error(), w)
		}
	}
}
