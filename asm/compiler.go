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

// Package asm implements the macro-assembly compiler: parsing is handled by
// internal/ast, everything from symbol resolution through final byte emission lives
// here.
package asm

import (
	"fmt"
	"os"

	"github.com/huffc/compiler/internal/ast"
)

// CompileOptions controls the optional, non-semantic knobs of a compilation.
type CompileOptions struct {
	// EmitPush0 enables PUSH0 (introduced in Shanghai) instead of PUSH1 0x00 for zero
	// literals, constants, table sizes and builtin results. It does not apply to pushes
	// of label, table-start or code-offset addresses: those always use at least PUSH1,
	// even when the address is 0.
	EmitPush0 bool

	// MaxPushWidth bounds how many bytes a resolved offset push may widen to. Must be
	// in [1, 32]; values above what a program actually needs just never get reached by
	// the size solver.
	MaxPushWidth int

	// WrapConstructor, if set, wraps the compiled output in a minimal deployer prelude
	// that returns it as init-code runtime, instead of returning the runtime bytecode
	// directly.
	WrapConstructor bool

	// MaxErrors bounds how many errors accumulate before compilation gives up early.
	// Zero selects a sensible default.
	MaxErrors int
}

// DefaultOptions returns the compiler's default knob settings: PUSH0 enabled, 32-byte
// maximum push width, no constructor wrapper.
func DefaultOptions() CompileOptions {
	return CompileOptions{EmitPush0: true, MaxPushWidth: 32, WrapConstructor: false, MaxErrors: 200}
}

func (o CompileOptions) validate() error {
	if o.MaxPushWidth < 1 || o.MaxPushWidth > 32 {
		return fmt.Errorf("max push width must be between 1 and 32, got %d", o.MaxPushWidth)
	}
	return nil
}

// Compiler holds the options for a sequence of compilations. It is safe to reuse across
// multiple calls to CompileString/CompileFile; it holds no per-compilation state.
type Compiler struct {
	Options CompileOptions
}

// NewCompiler creates a Compiler with the given options.
func NewCompiler(opts CompileOptions) *Compiler {
	return &Compiler{Options: opts}
}

// CompileFile reads path and compiles the entry macro entryName out of it.
func (c *Compiler) CompileFile(path string, entryName string) ([]byte, []error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{err}
	}
	return c.CompileString(path, src, entryName)
}

// CompileString compiles src (with file used only for position reporting) down to the
// bytecode reachable from entryName, which must be a zero-argument macro. It never
// touches stdio; callers own all input/output.
func (c *Compiler) CompileString(file string, src []byte, entryName string) ([]byte, []error) {
	if err := c.Options.validate(); err != nil {
		return nil, []error{err}
	}
	errs := newErrorList(c.Options.MaxErrors)
	out, bailed := c.run(file, src, entryName, errs)
	if bailed || !errs.ok() {
		return nil, errs.errs
	}
	return out, nil
}

// run does the actual work, recovering from the errCancelCompilation panic that
// errorList.add raises once the error count reaches MaxErrors. bailed is true whenever
// compilation gave up before reaching the emitter, whether by that panic, by hitting
// a nil intermediate result, or because errors had accumulated by the end of size
// solving; in every case out is meaningless and errs.errs holds the full story.
func (c *Compiler) run(file string, src []byte, entryName string, errs *errorList) (out []byte, bailed bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == errCancelCompilation {
				bailed = true
				return
			}
			panic(r)
		}
	}()

	p := ast.NewParser(file, src)
	root, perrs := p.Parse()
	for _, pe := range perrs {
		errs.add(pe)
	}
	if root == nil {
		return nil, true
	}

	st := buildSymbolTable(root, errs)
	tree := buildInvocationTree(st, entryName, errs)
	if tree == nil {
		return nil, true
	}

	arena := &labelArena{}
	scopeLabels(tree, arena, errs)
	checkStackEffects(tree, errs)
	sections := buildSections(tree, st, arena, c.Options, errs)
	solveSizes(sections, c.Options, errs)
	if !errs.ok() {
		return nil, true
	}

	bytecode := emitSections(sections, arena, errs)
	if c.Options.WrapConstructor {
		bytecode = wrapConstructor(bytecode, c.Options)
	}
	return bytecode, false
}

// CompileFile is a convenience wrapper that compiles path with DefaultOptions.
func CompileFile(path string, entryName string) ([]byte, []error) {
	return NewCompiler(DefaultOptions()).CompileFile(path, entryName)
}

// CompileString is a convenience wrapper that compiles src with DefaultOptions.
func CompileString(file string, src []byte, entryName string) ([]byte, []error) {
	return NewCompiler(DefaultOptions()).CompileString(file, src, entryName)
}
