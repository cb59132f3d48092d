// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package styx

// This file implements the lexical tokenization of Styx. Unlike a
// classical line/column scanner, spans here are plain byte offsets into
// the source, so the lexer only needs to track a single byte cursor.
// Source is assumed to be valid UTF-8; bytes that are not part of the
// small fixed set of ASCII special characters are copied through
// untouched, so multi-byte runes never need decoding except for the
// character that follows a backslash inside a quoted string.

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	lbrace = '{'
	rbrace = '}'
	lparen = '('
	rparen = ')'
	comma  = ','
	gt     = '>'
	at     = '@'
	dquote = '"'
)

func isSpecial(b byte) bool {
	switch b {
	case lbrace, rbrace, lparen, rparen, comma, dquote, gt, ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isTagStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isTagChar(b byte) bool {
	return isTagStart(b) || (b >= '0' && b <= '9') || b == '-'
}

func isUpperASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// Lexer is a hand-written, single-pass, pull-based scanner over Styx
// source text. Its only state is the source and a byte cursor.
type Lexer struct {
	src string
	pos int
}

// NewLexer returns a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) atEOF() bool { return l.pos >= len(l.src) }

// byteAt returns the byte offset bytes ahead of the cursor, or 0 if that
// position is past the end of the source.
func (l *Lexer) byteAt(offset int) byte {
	idx := l.pos + offset
	if idx < 0 || idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

func (l *Lexer) advanceByte() byte {
	b := l.src[l.pos]
	l.pos++
	return b
}

// advanceRune consumes and returns the next full rune (which may be
// multiple bytes), used only where Styx semantics distinguish "the next
// character" from "the next byte" (reading the escape character after a
// backslash in a quoted string).
func (l *Lexer) advanceRune() rune {
	if l.atEOF() {
		return utf8.RuneError
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return r
}

func (l *Lexer) skipWhitespaceAndComments() (hadWhitespace, hadNewline bool) {
	for !l.atEOF() {
		switch l.byteAt(0) {
		case ' ', '\t', '\r':
			hadWhitespace = true
			l.pos++
		case '\n':
			hadWhitespace = true
			hadNewline = true
			l.pos++
		case '/':
			if l.byteAt(1) == '/' {
				hadWhitespace = true
				for !l.atEOF() && l.byteAt(0) != '\n' {
					l.pos++
				}
				continue
			}
			return hadWhitespace, hadNewline
		default:
			return hadWhitespace, hadNewline
		}
	}
	return hadWhitespace, hadNewline
}

// NextToken returns the next token from the input. It never returns a
// malformed token: on any lexical failure it panics with a *ParseError
// instead; ParseString recovers this into a returned error.
func (l *Lexer) NextToken() *token {
	hadWhitespace, hadNewline := l.skipWhitespaceAndComments()

	start := l.pos
	if l.atEOF() {
		return &token{typ: tEOF, span: Span{start, start}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
	}

	mk := func(typ TokenType, text string) *token {
		return &token{typ: typ, text: text, span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
	}

	switch b := l.byteAt(0); b {
	case lbrace:
		l.pos++
		return mk(tLBrace, "{")
	case rbrace:
		l.pos++
		return mk(tRBrace, "}")
	case lparen:
		l.pos++
		return mk(tLParen, "(")
	case rparen:
		l.pos++
		return mk(tRParen, ")")
	case comma:
		l.pos++
		return mk(tComma, ",")
	case gt:
		l.pos++
		return mk(tGT, ">")
	case at:
		l.pos++
		if isTagStart(l.byteAt(0)) {
			nameStart := l.pos
			for isTagChar(l.byteAt(0)) {
				l.pos++
			}
			return mk(tTag, l.src[nameStart:l.pos])
		}
		return mk(tAt, "@")
	case dquote:
		return l.readQuoted(start, hadWhitespace, hadNewline)
	}

	if l.byteAt(0) == 'r' && (l.byteAt(1) == '"' || l.byteAt(1) == '#') {
		return l.readRaw(start, hadWhitespace, hadNewline)
	}

	if l.byteAt(0) == '<' && l.byteAt(1) == '<' {
		if isUpperASCII(l.byteAt(2)) {
			return l.readHeredoc(start, hadWhitespace, hadNewline)
		}
		l.pos += 2
		errEnd := l.pos
		for !l.atEOF() && l.byteAt(0) != '\n' {
			l.pos++
		}
		panic(newError(Span{start, errEnd}, "unexpected token"))
	}

	return l.readBareScalar(start, hadWhitespace, hadNewline)
}

func (l *Lexer) readQuoted(start int, hadWhitespace, hadNewline bool) *token {
	l.pos++ // opening "
	var text strings.Builder

	for !l.atEOF() {
		switch b := l.byteAt(0); b {
		case '"':
			l.pos++
			return &token{typ: tQuoted, text: text.String(), span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
		case '\\':
			escapeStart := l.pos
			l.pos++ // backslash
			escaped := l.advanceRune()
			switch escaped {
			case 'n':
				text.WriteByte('\n')
			case 'r':
				text.WriteByte('\r')
			case 't':
				text.WriteByte('\t')
			case '\\':
				text.WriteByte('\\')
			case '"':
				text.WriteByte('"')
			case 'u':
				text.WriteRune(l.readUnicodeEscape(escapeStart))
			default:
				panic(newError(Span{escapeStart, l.pos}, "invalid escape sequence: \\%c", escaped))
			}
		case '\n', '\r':
			l.pos++
			if b == '\r' && l.byteAt(0) == '\n' {
				l.pos++
			}
			panic(newError(Span{start, l.pos}, "unexpected token"))
		default:
			text.WriteByte(l.advanceByte())
		}
	}

	panic(newError(Span{start, l.pos}, "unexpected token"))
}

// readUnicodeEscape reads the hex digits of a \u{HEX...} or \uHHHH escape
// (the leading \u has already been consumed) and returns the decoded code
// point. escapeStart anchors the error span if the hex digits do not form
// a valid code point.
func (l *Lexer) readUnicodeEscape(escapeStart int) rune {
	var hex strings.Builder
	if l.byteAt(0) == '{' {
		l.pos++
		for !l.atEOF() && l.byteAt(0) != '}' {
			hex.WriteByte(l.advanceByte())
		}
		if !l.atEOF() {
			l.pos++ // closing }
		}
	} else {
		for i := 0; i < 4 && !l.atEOF(); i++ {
			hex.WriteByte(l.advanceByte())
		}
	}
	cp, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil || !utf8.ValidRune(rune(cp)) {
		panic(newError(Span{escapeStart, l.pos}, "invalid escape sequence: \\u%s", hex.String()))
	}
	return rune(cp)
}

func (l *Lexer) readRaw(start int, hadWhitespace, hadNewline bool) *token {
	l.pos++ // r
	hashes := 0
	for l.byteAt(0) == '#' {
		l.pos++
		hashes++
	}
	l.pos++ // opening "

	closePattern := "\"" + strings.Repeat("#", hashes)
	textStart := l.pos
	for !l.atEOF() {
		if strings.HasPrefix(l.src[l.pos:], closePattern) {
			text := l.src[textStart:l.pos]
			l.pos += len(closePattern)
			return &token{typ: tRaw, text: text, span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
		}
		l.pos++
	}
	panic(newError(Span{start, l.pos}, "unclosed raw string"))
}

func (l *Lexer) readHeredoc(start int, hadWhitespace, hadNewline bool) *token {
	l.pos += 2 // <<

	delimStart := l.pos
	for !l.atEOF() && l.byteAt(0) != '\n' {
		l.pos++
	}
	delimiter := l.src[delimStart:l.pos]
	if !l.atEOF() {
		l.pos++ // newline
	}
	contentStart := l.pos

	bareDelimiter := delimiter
	if i := strings.IndexByte(delimiter, ','); i >= 0 {
		bareDelimiter = delimiter[:i]
	}

	var text strings.Builder
	for !l.atEOF() {
		lineStart := l.pos
		for !l.atEOF() && l.byteAt(0) != '\n' {
			l.pos++
		}
		line := l.src[lineStart:l.pos]

		if line == bareDelimiter {
			return &token{typ: tHeredoc, text: text.String(), span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
		}

		stripped := strings.TrimLeft(line, " \t")
		if stripped == bareDelimiter {
			indentLen := len(line) - len(stripped)
			result := dedentHeredoc(text.String(), indentLen)
			return &token{typ: tHeredoc, text: result, span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
		}

		text.WriteString(line)
		if !l.atEOF() && l.byteAt(0) == '\n' {
			l.pos++
			text.WriteByte('\n')
		}
	}

	panic(newError(Span{contentStart, l.pos}, "unexpected token"))
}

// dedentHeredoc strips up to indentLen leading space/tab bytes from each
// line of content (fewer if a line has less leading whitespace).
func dedentHeredoc(content string, indentLen int) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		stripped := 0
		for stripped < len(line) && stripped < indentLen {
			if line[stripped] != ' ' && line[stripped] != '\t' {
				break
			}
			stripped++
		}
		lines[i] = line[stripped:]
	}
	return strings.Join(lines, "\n")
}

func (l *Lexer) readBareScalar(start int, hadWhitespace, hadNewline bool) *token {
	for !l.atEOF() && !isSpecial(l.byteAt(0)) {
		l.pos++
	}
	return &token{typ: tScalar, text: l.src[start:l.pos], span: Span{start, l.pos}, hadWhitespaceBefore: hadWhitespace, hadNewlineBefore: hadNewline}
}
