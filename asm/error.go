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
	"errors"
	"fmt"

	"github.com/huffc/compiler/internal/ast"
)

// errCancelCompilation is a panic sentinel used to unwind out of the compiler once the
// error count has reached maxErrors.
var errCancelCompilation = errors.New("end compilation")

// PositionError is implemented by errors that carry a source position.
type PositionError interface {
	error
	Position() ast.Position
}

// compilerError enumerates the kinds of semantic error the resolver/assembler can
// detect. Each has a fixed message; call-site context (name, position) is added by
// wrapping it in an astError.
type compilerError int

const (
	ecDuplicateDefinition compilerError = iota
	ecDuplicateLabel
	ecUnknownEntry
	ecUnknownMacroArg
	ecNotAMacro
	ecBuiltinKindMismatch
	ecUnresolvedLabel
	ecArgCountMismatch
	ecRecursiveMacro
	ecPushDataOverflow
	ecWordOverflow
	ecTableAddressTooLarge
	ecStackUnderflow
	ecStackEffectMismatch
)

func (e compilerError) Error() string {
	switch e {
	case ecDuplicateDefinition:
		return "duplicate definition"
	case ecDuplicateLabel:
		return "duplicate label"
	case ecUnknownEntry:
		return "unknown entry macro"
	case ecUnknownMacroArg:
		return "unknown macro argument"
	case ecNotAMacro:
		return "not a macro"
	case ecBuiltinKindMismatch:
		return "builtin argument has the wrong kind of definition"
	case ecUnresolvedLabel:
		return "unresolved label"
	case ecArgCountMismatch:
		return "wrong number of macro arguments"
	case ecRecursiveMacro:
		return "recursive macro invocation"
	case ecPushDataOverflow:
		return "push data does not fit in the declared push width"
	case ecWordOverflow:
		return "constant value overflows 256 bits"
	case ecTableAddressTooLarge:
		return "address does not fit in max_push_width bytes"
	case ecStackUnderflow:
		return "macro body underflows its declared takes()"
	case ecStackEffectMismatch:
		return "macro body's net stack effect does not match its declared returns()"
	default:
		return fmt.Sprintf("invalid error code %d", e)
	}
}

// astError attaches a source position to an error.
type astError struct {
	pos ast.Position
	err error
}

func posErrorf(pos ast.Position, code compilerError, format string, args ...any) *astError {
	return &astError{pos: pos, err: fmt.Errorf("%w: %s", code, fmt.Sprintf(format, args...))}
}

func (e *astError) Position() ast.Position { return e.pos }
func (e *astError) Unwrap() error          { return e.err }
func (e *astError) Error() string          { return fmt.Sprintf("%v: %s", e.pos, e.err.Error()) }

// errorList accumulates compile errors up to a maximum, then panics with
// errCancelCompilation to unwind the compiler. This mirrors the teacher's accumulate-
// then-report discipline: callers never need to check an error return from every
// single resolution step, just call add/addf and keep going until the panic recovery
// catches it at the top.
type errorList struct {
	errs     []error
	maxCount int
}

func newErrorList(max int) *errorList {
	if max <= 0 {
		max = 200
	}
	return &errorList{maxCount: max}
}

func (l *errorList) add(err error) {
	l.errs = append(l.errs, err)
	if len(l.errs) >= l.maxCount {
		panic(errCancelCompilation)
	}
}

func (l *errorList) addf(pos ast.Position, code compilerError, format string, args ...any) {
	l.add(posErrorf(pos, code, format, args...))
}

func (l *errorList) ok() bool { return len(l.errs) == 0 }
