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

// This file implements Parse, a recursive-descent consumer of the Lexer's
// token stream that builds an immutable Document tree. Like the lexer,
// the parser never returns a partially built tree on error: any grammar
// violation panics with a *ParseError, which Parse/ParseString recover
// into a returned error. This mirrors how other recursive-descent Go
// parsers in the standard library (text/template, go/parser's internal
// scanner) use panic/recover to unwind out of arbitrarily deep recursion
// in one motion rather than threading an error return through every call.

import "strings"

// Parser holds the current token plus one token of lookahead over a
// single source string.
type Parser struct {
	source  string
	lexer   *Lexer
	current *token
	peeked  *token
}

// NewParser returns a Parser positioned at the first token of source.
func NewParser(source string) *Parser {
	p := &Parser{source: source, lexer: NewLexer(source)}
	p.current = p.lexer.NextToken()
	return p
}

func (p *Parser) advance() *token {
	prev := p.current
	if p.peeked != nil {
		p.current = p.peeked
		p.peeked = nil
	} else {
		p.current = p.lexer.NextToken()
	}
	return prev
}

func (p *Parser) peek() *token {
	if p.peeked == nil {
		p.peeked = p.lexer.NextToken()
	}
	return p.peeked
}

func (p *Parser) check(types ...TokenType) bool {
	return p.current.is(types...)
}

func (p *Parser) expect(typ TokenType) *token {
	if p.current.typ != typ {
		panic(newError(p.current.span, "expected %s, got %s", typ, p.current.typ))
	}
	return p.advance()
}

// Parse parses a complete Document from the parser's source.
func (p *Parser) Parse() Document {
	return p.parseDocument()
}

// Parse parses source as a Styx document.
func Parse(source []byte) (*Document, error) {
	return ParseString(string(source))
}

// ParseString parses source as a Styx document. On any lexical or
// grammatical error it returns a nil Document and a *ParseError.
func ParseString(source string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			doc, err = nil, pe
		}
	}()
	d := NewParser(source).Parse()
	return &d, nil
}

func (p *Parser) parseDocument() Document {
	var entries []Entry
	start := p.current.span.Start
	ps := newPathState()

	for p.check(tComma) {
		p.advance()
	}

	if p.check(tLBrace) {
		obj := p.parseObject()
		unitKey := unitValue(synthetic)
		entries = append(entries, Entry{Key: unitKey, Value: objectValue(obj)})

		for p.check(tComma) {
			p.advance()
		}

		if !p.check(tEOF) {
			trailingStart := p.current.span.Start
			for !p.check(tEOF) {
				p.advance()
			}
			trailingEnd := p.current.span.Start
			panic(newError(Span{trailingStart, trailingEnd}, "trailing content after explicit root object"))
		}

		return Document{Entries: entries, Span: Span{start, p.current.span.End}}
	}

	for !p.check(tEOF) {
		if entry := p.parseEntryWithPathCheck(ps); entry != nil {
			entries = append(entries, *entry)
		}
	}

	return Document{Entries: entries, Span: Span{start, p.current.span.End}}
}

// objectInKeyPosition handles the shared "object appeared where a key was
// expected" rule: the entry's real key becomes a synthetic unit, and the
// object becomes the value. A further value on the same line is parsed
// and discarded (tolerant recovery of `"name" { ... } rest`-style input).
func (p *Parser) objectInKeyPosition(key Value) *Entry {
	if !p.current.hadNewlineBefore && !p.check(tEOF, tRBrace, tComma) {
		p.parseValue()
	}
	return &Entry{Key: unitValue(synthetic), Value: key}
}

func (p *Parser) parseEntryWithPathCheck(ps *pathState) *Entry {
	for p.check(tComma) {
		p.advance()
	}
	if p.check(tGT) {
		panic(newError(p.current.span, "expected a value"))
	}
	if p.check(tEOF, tRBrace) {
		return nil
	}

	key := p.parseValue()

	if key.Payload != nil && key.Payload.Object != nil {
		return p.objectInKeyPosition(key)
	}

	if key.Payload != nil && key.Payload.Scalar != nil && key.Payload.Scalar.Kind == Bare {
		if text := key.Payload.Scalar.Text; strings.Contains(text, ".") {
			entry := p.expandDottedPathWithState(text, key.Span, ps)
			return &entry
		}
	}

	keyText, hasKeyText := getKeyText(key)
	p.validateKey(key)

	if p.current.hadNewlineBefore || p.check(tEOF, tRBrace) {
		if hasKeyText {
			ps.checkAndUpdate([]string{keyText}, key.Span, pathTerminal)
		}
		return &Entry{Key: key, Value: unitValue(key.Span)}
	}

	value := p.parseValue()

	if hasKeyText {
		kind := pathTerminal
		if value.Payload != nil && value.Payload.Object != nil {
			kind = pathObject
		}
		ps.checkAndUpdate([]string{keyText}, key.Span, kind)
	}

	return &Entry{Key: key, Value: value}
}

func (p *Parser) parseEntryWithDupCheck(seen map[string]Span) *Entry {
	for p.check(tComma) {
		p.advance()
	}
	if p.check(tGT) {
		panic(newError(p.current.span, "expected a value"))
	}
	if p.check(tEOF, tRBrace) {
		return nil
	}

	key := p.parseValue()

	if key.Payload != nil && key.Payload.Object != nil {
		return p.objectInKeyPosition(key)
	}

	if key.Payload != nil && key.Payload.Scalar != nil && key.Payload.Scalar.Kind == Bare {
		if text := key.Payload.Scalar.Text; strings.Contains(text, ".") {
			return p.expandDottedPath(text, key.Span, seen)
		}
	}

	if keyText, ok := getKeyText(key); ok {
		if _, dup := seen[keyText]; dup {
			panic(newError(key.Span, "duplicate key"))
		}
		seen[keyText] = key.Span
	}

	p.validateKey(key)

	if p.current.hadNewlineBefore || p.check(tEOF, tRBrace) {
		return &Entry{Key: key, Value: unitValue(key.Span)}
	}

	value := p.parseValue()
	return &Entry{Key: key, Value: value}
}

// getKeyText returns the text used to test uniqueness for key: a scalar's
// literal text (of any kind), or "@name" for a tag-only key. Keys with no
// stable text representation (units, tagged payloads) are not checked.
func getKeyText(key Value) (string, bool) {
	if key.Payload != nil && key.Payload.Scalar != nil {
		return key.Payload.Scalar.Text, true
	}
	if key.Tag != nil && key.Payload == nil {
		return "@" + key.Tag.Name, true
	}
	return "", false
}

func (p *Parser) validateKey(key Value) {
	if key.Payload == nil {
		return
	}
	if key.Payload.Sequence != nil {
		panic(newError(key.Span, "invalid key"))
	}
	if key.Payload.Scalar != nil && key.Payload.Scalar.Kind == Heredoc {
		panic(newError(p.heredocStartSpan(key.Payload.Scalar.Span), "invalid key"))
	}
}

// heredocStartSpan narrows a heredoc's full span down to just its opening
// marker line (`<<TAG\n`), used when a heredoc is rejected as a key.
func (p *Parser) heredocStartSpan(span Span) Span {
	text := p.source[span.Start:span.End]
	end := len(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		end = idx + 1
	}
	return Span{span.Start, span.Start + end}
}

func segmentSpans(segments []string, start int) []Span {
	spans := make([]Span, len(segments))
	offset := start
	for i, seg := range segments {
		spans[i] = Span{offset, offset + len(seg)}
		offset += len(seg) + 1
	}
	return spans
}

func segmentKeyValue(seg string, span Span) Value {
	return Value{Span: span, Payload: &Payload{Scalar: &Scalar{Text: seg, Kind: Bare, Span: span}}}
}

// expandDottedPathWithState expands a document-level dotted key such as
// `a.b.c` into nested single-entry objects `a -> { b -> { c -> value } }`,
// validating the full segment list against the document's PathState.
func (p *Parser) expandDottedPathWithState(text string, span Span, ps *pathState) Entry {
	segments := strings.Split(text, ".")
	for _, s := range segments {
		if s == "" {
			panic(newError(span, "invalid key"))
		}
	}
	spans := segmentSpans(segments, span.Start)

	value := p.parseValue()
	kind := pathTerminal
	if value.Payload != nil && value.Payload.Object != nil {
		kind = pathObject
	}
	ps.checkAndUpdate(segments, span, kind)

	lastKeyEnd := spans[len(spans)-1].End
	result := value
	for i := len(segments) - 1; i >= 1; i-- {
		key := segmentKeyValue(segments[i], spans[i])
		objSpan := Span{spans[i-1].Start, lastKeyEnd}
		result = Value{Span: objSpan, Payload: &Payload{Object: &Object{
			Entries: []Entry{{Key: key, Value: result}},
			Span:    objSpan,
		}}}
	}

	return Entry{Key: segmentKeyValue(segments[0], spans[0]), Value: result}
}

// expandDottedPath expands an object-level dotted key. Only the first
// segment is checked for duplication against the enclosing object's
// seen_keys of the enclosing object; the
// synthesized inner-Object spans reuse the original key's full span
// rather than the finer per-segment arithmetic used at document level.
func (p *Parser) expandDottedPath(text string, span Span, seen map[string]Span) *Entry {
	segments := strings.Split(text, ".")
	for _, s := range segments {
		if s == "" {
			panic(newError(span, "invalid key"))
		}
	}
	if _, dup := seen[segments[0]]; dup {
		panic(newError(span, "duplicate key"))
	}
	seen[segments[0]] = span

	spans := segmentSpans(segments, span.Start)
	value := p.parseValue()

	result := value
	for i := len(segments) - 1; i >= 1; i-- {
		key := segmentKeyValue(segments[i], spans[i])
		result = Value{Span: span, Payload: &Payload{Object: &Object{
			Entries: []Entry{{Key: key, Value: result}},
			Span:    span,
		}}}
	}

	entry := Entry{Key: segmentKeyValue(segments[0], spans[0]), Value: result}
	return &entry
}

func (p *Parser) parseAttributeValue() Value {
	switch {
	case p.check(tLBrace):
		return objectValue(p.parseObject())
	case p.check(tLParen):
		return sequenceValue(p.parseSequence())
	case p.check(tTag):
		return p.parseTagValue()
	case p.check(tAt):
		return unitValue(p.advance().span)
	}
	return scalarValue(p.parseScalar())
}

// parseTagValue parses a TAG token with its optional adjacent payload.
func (p *Parser) parseTagValue() Value {
	start := p.current.span.Start
	tagTok := p.advance()
	tag := &Tag{Name: tagTok.text, Span: tagTok.span}

	if !p.current.hadWhitespaceBefore {
		switch {
		case p.check(tLBrace):
			obj := p.parseObject()
			return Value{Span: obj.Span, Tag: tag, Payload: &Payload{Object: &obj}}
		case p.check(tLParen):
			seq := p.parseSequence()
			return Value{Span: seq.Span, Tag: tag, Payload: &Payload{Sequence: &seq}}
		case p.check(tQuoted, tRaw, tHeredoc):
			scalar := p.parseScalar()
			return Value{Span: scalar.Span, Tag: tag, Payload: &Payload{Scalar: &scalar}}
		case p.check(tAt):
			atTok := p.advance()
			return Value{Span: atTok.span, Tag: tag}
		default:
			if !p.check(tEOF, tRBrace, tRParen, tComma) {
				panic(newError(Span{start, p.current.span.End}, "invalid tag name"))
			}
		}
	}

	return Value{Span: Span{start, tagTok.span.End}, Tag: tag}
}

// parseValue parses a single Value.
func (p *Parser) parseValue() Value {
	if p.check(tAt) {
		atTok := p.advance()
		if !p.current.hadWhitespaceBefore && !p.check(tEOF, tRBrace, tRParen, tComma, tLBrace, tLParen) {
			panic(newError(Span{atTok.span.Start, p.current.span.End}, "invalid tag name"))
		}
		return Value{Span: atTok.span}
	}

	if p.check(tTag) {
		return p.parseTagValue()
	}
	if p.check(tLBrace) {
		return objectValue(p.parseObject())
	}
	if p.check(tLParen) {
		return sequenceValue(p.parseSequence())
	}

	if p.check(tScalar) {
		scalarTok := p.advance()
		next := p.current
		if next.typ == tGT && !next.hadWhitespaceBefore && !p.peek().hadNewlineBefore && p.peek().typ != tEOF {
			return p.parseAttributesStartingWith(scalarTok)
		}
		return Value{Span: scalarTok.span, Payload: &Payload{Scalar: &Scalar{
			Text: scalarTok.text, Kind: Bare, Span: scalarTok.span,
		}}}
	}

	return scalarValue(p.parseScalar())
}

// parseAttributesStartingWith parses the `k1>v1 k2>v2 ...` attribute
// shorthand, given the already-consumed first key token.
func (p *Parser) parseAttributesStartingWith(firstKeyTok *token) Value {
	var attrs []Entry
	startSpan := firstKeyTok.span

	p.expect(tGT)
	firstValue := p.parseAttributeValue()
	attrs = append(attrs, Entry{Key: segmentKeyValue(firstKeyTok.text, firstKeyTok.span), Value: firstValue})
	endSpan := firstValue.Span

	for p.check(tScalar) && !p.current.hadNewlineBefore {
		keyTok := p.current
		next := p.peek()
		if next.typ != tGT || next.hadWhitespaceBefore {
			break
		}
		p.advance() // key
		p.advance() // >

		attrValue := p.parseAttributeValue()
		attrs = append(attrs, Entry{Key: segmentKeyValue(keyTok.text, keyTok.span), Value: attrValue})
		endSpan = attrValue.Span
	}

	obj := Object{Entries: attrs, Span: Span{startSpan.Start, endSpan.End}}
	return objectValue(obj)
}

func (p *Parser) parseScalar() Scalar {
	tok := p.current
	var kind ScalarKind
	switch tok.typ {
	case tScalar:
		kind = Bare
	case tQuoted:
		kind = Quoted
	case tRaw:
		kind = Raw
	case tHeredoc:
		kind = Heredoc
	default:
		panic(newError(tok.span, "expected scalar, got %s", tok.typ))
	}
	p.advance()
	return Scalar{Text: tok.text, Kind: kind, Span: tok.span}
}

func (p *Parser) parseObject() Object {
	openBrace := p.expect(tLBrace)
	start := openBrace.span.Start
	var entries []Entry
	seen := make(map[string]Span)

	for !p.check(tRBrace, tEOF) {
		if entry := p.parseEntryWithDupCheck(seen); entry != nil {
			entries = append(entries, *entry)
		}
		if p.check(tComma) {
			p.advance()
		}
	}

	if p.check(tEOF) {
		panic(newError(openBrace.span, "unclosed object (missing `}`)"))
	}

	end := p.expect(tRBrace).span.End
	return Object{Entries: entries, Span: Span{start, end}}
}

func (p *Parser) parseSequence() Sequence {
	openParen := p.expect(tLParen)
	start := openParen.span.Start
	var items []Value

	for !p.check(tRParen, tEOF) {
		if p.check(tComma) {
			panic(newError(p.current.span, "unexpected `,` in sequence (sequences are whitespace-separated, not comma-separated)"))
		}
		items = append(items, p.parseValue())
	}

	if p.check(tEOF) {
		panic(newError(openParen.span, "unclosed sequence (missing `)`)"))
	}

	end := p.expect(tRParen).span.End
	return Sequence{Items: items, Span: Span{start, end}}
}
