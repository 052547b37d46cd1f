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

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/huffc/compiler/internal/evm"
)

// Parser performs recursive-descent parsing of the Huff token stream.
type Parser struct {
	in     <-chan token
	buffer []token
	file   string
	errors []*ParseError
}

// NewParser creates a parser for the given source file content.
func NewParser(file string, content []byte) *Parser {
	return &Parser{
		in:   runLexer(content, false),
		file: file,
	}
}

func (p *Parser) next() token {
	if len(p.buffer) > 0 {
		t := p.buffer[len(p.buffer)-1]
		p.buffer = p.buffer[:len(p.buffer)-1]
		return t
	}
	return <-p.in
}

func (p *Parser) unread(t token) {
	p.buffer = append(p.buffer, t)
}

func (p *Parser) drainLexer() {
	for p.next().typ != eof {
	}
}

func (p *Parser) pos(tok token) Position {
	return Position{File: p.file, Line: tok.line}
}

// throwError records a parse error and unwinds to the start of the next line.
func (p *Parser) throwError(tok token, format string, args ...any) {
	err := &ParseError{Pos: p.pos(tok), Err: fmt.Errorf(format, args...)}
	p.errors = append(p.errors, err)
	for {
		if tok.typ == lineEnd || tok.typ == eof {
			panic(err)
		}
		tok = p.next()
	}
}

func (p *Parser) unexpected(tok token) {
	p.throwError(tok, "unexpected %v %q", tok.typ, tok.text)
}

// Parse runs the parser to completion and returns the resulting AST together with any
// errors encountered. Parsing always continues past an error to the next top-level
// definition, so callers see as many errors as possible in one pass.
func (p *Parser) Parse() (*Root, []*ParseError) {
	defer p.drainLexer()
	root := &Root{}
	for {
		def, done := p.parseTopLevel()
		if done {
			return root, p.errors
		}
		if def != nil {
			root.Definitions = append(root.Definitions, def)
		}
	}
}

func (p *Parser) parseTopLevel() (def Definition, done bool) {
	defer func() {
		if err := recover(); err != nil {
			if _, ok := err.(*ParseError); !ok {
				panic(err)
			}
		}
	}()
	for {
		switch tok := p.next(); tok.typ {
		case eof:
			return nil, true
		case lineStart, lineEnd:
			continue
		case directive:
			return p.parseDirective(tok), false
		default:
			p.unexpected(tok)
		}
	}
}

func (p *Parser) parseDirective(tok token) Definition {
	if tok.text != "#define" {
		p.throwError(tok, "unknown top-level directive %q", tok.text)
		return nil
	}
	kind := p.next()
	if kind.typ != identifier {
		p.unexpected(kind)
	}
	switch kind.text {
	case "macro":
		return p.parseMacroDef()
	case "constant":
		return p.parseConstantDef()
	case "table":
		return p.parseTableDef()
	case "function":
		return p.parseSolFunctionDef()
	case "event":
		return p.parseSolEventDef()
	case "error":
		return p.parseSolErrorDef()
	default:
		p.throwError(kind, "unknown #define kind %q", kind.text)
		return nil
	}
}

// ---- macro definitions ----

func (p *Parser) parseMacroDef() *MacroDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	def := &MacroDef{Pos: p.pos(name), Name: name.text}
	def.Params = p.parseNameList()

	// Optional "= takes(n) returns(m)" stack-effect annotation.
	for {
		switch tok := p.next(); tok.typ {
		case equals:
			continue
		case identifier:
			switch tok.text {
			case "takes":
				def.HasStackEffect = true
				def.Takes = p.parseParenInt()
				continue
			case "returns":
				def.HasStackEffect = true
				def.Returns = p.parseParenInt()
				continue
			default:
				p.unexpected(tok)
			}
		case openBrace:
			def.Body = p.parseMacroBody()
			return def
		case lineStart, lineEnd:
			continue
		default:
			p.unexpected(tok)
		}
	}
}

func (p *Parser) parseParenInt() int {
	if tok := p.next(); tok.typ != openParen {
		p.unexpected(tok)
	}
	tok := p.next()
	if tok.typ != numberLiteral {
		p.unexpected(tok)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil {
		p.throwError(tok, "invalid integer %q", tok.text)
	}
	if end := p.next(); end.typ != closeParen {
		p.unexpected(end)
	}
	return n
}

// parseNameList parses a parenthesized, comma-separated list of identifiers. An absent
// parenthesis pair (e.g. a macro with no params) yields an empty list.
func (p *Parser) parseNameList() []string {
	tok := p.next()
	if tok.typ != openParen {
		p.unread(tok)
		return nil
	}
	var names []string
	for {
		tok := p.next()
		switch tok.typ {
		case closeParen:
			return names
		case identifier:
			names = append(names, tok.text)
		default:
			p.unexpected(tok)
		}
		if p.parseListEnd() {
			return names
		}
	}
}

func (p *Parser) parseListEnd() bool {
	for {
		switch tok := p.next(); tok.typ {
		case comma:
			return false
		case lineStart, lineEnd:
			continue
		case closeParen:
			return true
		default:
			p.unexpected(tok)
			return true
		}
	}
}

var builtinNames = map[string]BuiltinKind{
	"__tablestart":  BuiltinTableStart,
	"__tablesize":   BuiltinTableSize,
	"__codesize":    BuiltinCodeSize,
	"__codeoffset":  BuiltinCodeOffset,
	"__FUNC_SIG":    BuiltinFuncSig,
	"__EVENT_HASH":  BuiltinEventHash,
	"__ERROR":       BuiltinError,
}

var pushRE = regexp.MustCompile(`(?i)^push([0-9]{1,2})$`)

func (p *Parser) parseMacroBody() []MacroStatement {
	var body []MacroStatement
	for {
		switch tok := p.next(); tok.typ {
		case closeBrace:
			return body
		case lineStart, lineEnd:
			continue
		case label:
			body = append(body, &LabelDefSt{Pos: p.pos(tok), Name: tok.text})
		case numberLiteral:
			body = append(body, p.parsePushLiteral(tok, 0))
		case macroArgRef:
			body = append(body, &MacroArgRefInstr{Pos: p.pos(tok), Name: tok.text})
		case constantRef:
			body = append(body, &ConstantRefInstr{Pos: p.pos(tok), Name: tok.text})
		case identifier:
			body = append(body, p.parseIdentStatement(tok))
		case eof:
			p.throwError(tok, "unexpected end of file inside macro body")
		default:
			p.unexpected(tok)
		}
	}
}

func (p *Parser) parsePushLiteral(tok token, width int) *PushLiteralInstr {
	word, err := parseNumberLiteral(tok.text)
	if err != nil {
		p.throwError(tok, "invalid number literal %q: %v", tok.text, err)
	}
	return &PushLiteralInstr{Pos: p.pos(tok), Width: width, Word: word}
}

func (p *Parser) parseIdentStatement(tok token) MacroStatement {
	if kind, ok := builtinNames[tok.text]; ok {
		return p.parseBuiltinCall(tok, kind)
	}
	if m := pushRE.FindStringSubmatch(tok.text); m != nil {
		width, _ := strconv.Atoi(m[1])
		if width == 0 {
			// "push0" names the PUSH0 opcode itself, not an explicit-width push of a
			// literal; it takes no argument.
			return &OpInstr{Pos: p.pos(tok), Name: "PUSH0"}
		}
		if width > 32 {
			p.throwError(tok, "push width %d out of range", width)
		}
		arg := p.next()
		if arg.typ != numberLiteral {
			p.unexpected(arg)
		}
		return p.parsePushLiteral(arg, width)
	}
	upper := strings.ToUpper(tok.text)
	if evm.IsKnownMnemonic(upper) {
		return &OpInstr{Pos: p.pos(tok), Name: upper}
	}

	// Not an opcode: either a user-macro call or a bare label reference.
	next := p.next()
	if next.typ == openParen {
		return p.parseMacroCall(tok)
	}
	p.unread(next)
	return &LabelRefInstr{Pos: p.pos(tok), Name: tok.text}
}

func (p *Parser) parseBuiltinCall(tok token, kind BuiltinKind) *BuiltinCallSt {
	st := &BuiltinCallSt{Pos: p.pos(tok), Kind: kind}
	if open := p.next(); open.typ != openParen {
		p.unexpected(open)
	}
	arg := p.next()
	if arg.typ != identifier {
		p.unexpected(arg)
	}
	st.Ident = arg.text
	if close := p.next(); close.typ != closeParen {
		p.unexpected(close)
	}
	return st
}

func (p *Parser) parseMacroCall(tok token) *MacroCallSt {
	st := &MacroCallSt{Pos: p.pos(tok), Name: tok.text}
	for {
		t := p.next()
		switch t.typ {
		case closeParen:
			return st
		case numberLiteral:
			st.Args = append(st.Args, p.parsePushLiteral(t, 0))
		case macroArgRef:
			st.Args = append(st.Args, &MacroArgRefInstr{Pos: p.pos(t), Name: t.text})
		case constantRef:
			st.Args = append(st.Args, &ConstantRefInstr{Pos: p.pos(t), Name: t.text})
		case identifier:
			switch stmt := p.parseIdentStatement(t).(type) {
			case Instruction:
				st.Args = append(st.Args, stmt)
			default:
				p.throwError(t, "invalid macro argument")
			}
		default:
			p.unexpected(t)
		}
		if tok := p.next(); tok.typ == comma {
			continue
		} else if tok.typ == closeParen {
			return st
		} else {
			p.unexpected(tok)
		}
	}
}

// ---- constant / table definitions ----

func (p *Parser) parseConstantDef() *ConstantDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	if eq := p.next(); eq.typ != equals {
		p.unexpected(eq)
	}
	val := p.next()
	if val.typ != numberLiteral {
		p.unexpected(val)
	}
	word, err := parseNumberLiteral(val.text)
	if err != nil {
		p.throwError(val, "invalid number literal %q: %v", val.text, err)
	}
	return &ConstantDef{Pos: p.pos(name), Name: name.text, Value: word}
}

func (p *Parser) parseTableDef() *TableDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	if open := p.next(); open.typ != openBrace {
		p.unexpected(open)
	}
	def := &TableDef{Pos: p.pos(name), Name: name.text}
	for {
		switch tok := p.next(); tok.typ {
		case closeBrace:
			return def
		case lineStart, lineEnd:
			continue
		case numberLiteral:
			b, err := parseHexBytes(tok.text)
			if err != nil {
				p.throwError(tok, "invalid table data %q: %v", tok.text, err)
			}
			def.Data = append(def.Data, b...)
		case stringLiteral:
			def.Data = append(def.Data, []byte(tok.text)...)
		case eof:
			p.throwError(tok, "unexpected end of file inside table body")
		default:
			p.unexpected(tok)
		}
	}
}

// ---- Solidity-shaped declarations ----

func (p *Parser) parseSolFunctionDef() *SolFunctionDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	def := &SolFunctionDef{Pos: p.pos(name), Name: name.text}
	def.Args = p.parseSolArgList(false)

	// Optional mutability keywords and return types; both are optional and unordered
	// enough in practice that we just scan tokens until end of line.
	for {
		switch tok := p.next(); tok.typ {
		case lineEnd, eof:
			p.unread(tok)
			return def
		case identifier:
			switch tok.text {
			case "view", "payable", "nonpayable", "pure":
				continue
			case "returns":
				def.Returns = p.parseSolArgList(false)
			default:
				p.throwError(tok, "unexpected token %q in function definition", tok.text)
			}
		default:
			p.unexpected(tok)
		}
	}
}

func (p *Parser) parseSolEventDef() *SolEventDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	def := &SolEventDef{Pos: p.pos(name), Name: name.text}
	def.Args = p.parseSolArgList(true)
	return def
}

func (p *Parser) parseSolErrorDef() *SolErrorDef {
	name := p.next()
	if name.typ != identifier {
		p.unexpected(name)
	}
	def := &SolErrorDef{Pos: p.pos(name), Name: name.text}
	def.Args = p.parseSolArgList(false)
	return def
}

// parseSolArgList parses a parenthesized, comma-separated list of Solidity argument
// types, e.g. "(uint256, address indexed)". allowIndexed enables the "indexed" keyword
// used by event declarations.
func (p *Parser) parseSolArgList(allowIndexed bool) []SolArg {
	if open := p.next(); open.typ != openParen {
		p.unexpected(open)
	}
	var args []SolArg
	for {
		tok := p.next()
		if tok.typ == closeParen {
			return args
		}
		if tok.typ != identifier {
			p.unexpected(tok)
		}
		arg := SolArg{Type: tok.text}
		// Look ahead for "indexed" and/or a discarded argument name.
		for {
			next := p.next()
			if allowIndexed && next.typ == identifier && next.text == "indexed" {
				arg.Indexed = true
				continue
			}
			if next.typ == identifier {
				// Discard a named parameter, e.g. "uint256 amount".
				continue
			}
			p.unread(next)
			break
		}
		args = append(args, arg)
		if p.parseListEnd() {
			return args
		}
	}
}

// ---- number literal helpers ----

func parseNumberLiteral(text string) (*big.Int, error) {
	v := new(big.Int)
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		if _, ok := v.SetString(text[2:], 16); !ok {
			return nil, fmt.Errorf("malformed hex literal")
		}
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		if _, ok := v.SetString(text[2:], 2); !ok {
			return nil, fmt.Errorf("malformed binary literal")
		}
	default:
		if _, ok := v.SetString(text, 10); !ok {
			return nil, fmt.Errorf("malformed decimal literal")
		}
	}
	return v, nil
}

// parseHexBytes converts a "0x..."-prefixed hex literal into raw bytes, for use inside
// table bodies. An odd number of hex digits is padded with a leading zero.
func parseHexBytes(text string) ([]byte, error) {
	if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		return nil, fmt.Errorf("table data must be hex-encoded")
	}
	digits := text[2:]
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		b, err := strconv.ParseUint(digits[2*i:2*i+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}
