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
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/huffc/compiler/internal/ast"
	"golang.org/x/crypto/sha3"
)

// canonicalSignature builds the Solidity canonical signature text ("name(type,type,...)")
// used as input to the keccak hash underlying __FUNC_SIG, __EVENT_HASH and __ERROR.
// "indexed" is a log-topic annotation, not part of an event's type signature, so it is
// dropped here.
func canonicalSignature(name string, args []ast.SolArg) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(types, ","))
}

func keccak256(data []byte) []byte {
	w := sha3.NewLegacyKeccak256()
	w.Write(data)
	return w.Sum(nil)
}

// funcSelector computes the 4-byte selector for a function or error signature, as used
// by __FUNC_SIG and __ERROR.
func funcSelector(sig string) ([]byte, error) {
	if _, err := abi.ParseSelector(sig); err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}
	return keccak256([]byte(sig))[:4], nil
}

// eventHash computes the full 32-byte topic0 hash for an event signature, as used by
// __EVENT_HASH.
func eventHash(sig string) []byte {
	return keccak256([]byte(sig))
}

// evalBuiltinSol evaluates a Sol-kind builtin (__FUNC_SIG, __EVENT_HASH, __ERROR)
// eagerly into compile-time bytes, per the def's declared kind. The returned bytes are
// always padded/truncated to the convention for that builtin (4 bytes for selectors,
// 32 for event hashes); callers push the minimum width that represents the resulting
// big-endian value, which for a selector is fewer than 4 bytes only when its leading
// byte(s) are zero.
func evalBuiltinSol(kind ast.BuiltinKind, def ast.Definition) ([]byte, error) {
	switch kind {
	case ast.BuiltinFuncSig:
		fn, ok := def.(*ast.SolFunctionDef)
		if !ok {
			return nil, fmt.Errorf("__FUNC_SIG requires a function declaration")
		}
		return funcSelector(canonicalSignature(fn.Name, fn.Args))
	case ast.BuiltinError:
		er, ok := def.(*ast.SolErrorDef)
		if !ok {
			return nil, fmt.Errorf("__ERROR requires an error declaration")
		}
		return funcSelector(canonicalSignature(er.Name, er.Args))
	case ast.BuiltinEventHash:
		ev, ok := def.(*ast.SolEventDef)
		if !ok {
			return nil, fmt.Errorf("__EVENT_HASH requires an event declaration")
		}
		return eventHash(canonicalSignature(ev.Name, ev.Args)), nil
	default:
		return nil, fmt.Errorf("not a Sol-kind builtin")
	}
}
