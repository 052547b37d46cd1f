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

// Command huffc compiles macro-assembly source into EVM bytecode.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/huffc/compiler/asm"
	"github.com/huffc/compiler/disasm"
)

var t2s = strings.NewReplacer("\t", "  ")

func usage() {
	fmt.Fprint(os.Stderr, t2s.Replace(`
Usage: huffc [options...] <input-file> <entry-macro>

	-f, --default-constructor  wrap output in a minimal deployer prelude
	-disasm                    print a disassembly of the result instead of hex
	-emit-push0                enable the PUSH0 opcode (default true)
	-max-push-width N          maximum byte width for a resolved offset push (default 32)
	-o <file>                  output file name (default stdout)
	-h                         show this help

`))
}

func main() {
	var (
		defaultConstructor bool
		disasmFlag         bool
		emitPush0          = true
		maxPushWidth       = 32
		outputFile         string
	)
	flag.Usage = usage
	flag.BoolVar(&defaultConstructor, "f", false, "")
	flag.BoolVar(&defaultConstructor, "default-constructor", false, "")
	flag.BoolVar(&disasmFlag, "disasm", false, "")
	flag.BoolVar(&emitPush0, "emit-push0", true, "")
	flag.IntVar(&maxPushWidth, "max-push-width", 32, "")
	flag.StringVar(&outputFile, "o", "", "")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	inputFile, entry := args[0], args[1]

	opts := asm.CompileOptions{
		EmitPush0:       emitPush0,
		MaxPushWidth:    maxPushWidth,
		WrapConstructor: defaultConstructor,
	}
	src, err := os.ReadFile(inputFile)
	if err != nil {
		exit(2, err)
	}
	bytecode, errs := asm.NewCompiler(opts).CompileString(inputFile, src, entry)
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}

	output, err := openOutput(outputFile)
	if err != nil {
		exit(2, err)
	}
	defer output.Close()

	if disasmFlag {
		err = disasm.New().Disassemble(bytecode, output)
	} else {
		_, err = fmt.Fprintf(output, "%x\n", bytecode)
	}
	if err != nil {
		exit(2, err)
	}
}

func openOutput(name string) (*os.File, error) {
	if name == "" {
		return os.Stdout, nil
	}
	return os.OpenFile(name, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
}

func exit(code int, err error) {
	if err == nil || err == flag.ErrHelp {
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(code)
}
