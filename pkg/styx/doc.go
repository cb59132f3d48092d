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

// Package styx implements the lexer and parser for the Styx configuration
// language: objects, sequences, tagged values, bare/quoted/raw/heredoc
// string literals, dotted-path keys, attribute shorthand, and implicit
// unit values.
//
// The lexer (Lexer) is a pull-based, single-pass scanner: callers drive it
// by calling NextToken repeatedly. The parser (Parser) drives the lexer
// itself and is not meant to be used concurrently with a caller pulling
// tokens from the same Lexer.
//
//	doc, err := styx.ParseString(src)
//	if err != nil {
//		var perr *styx.ParseError
//		if errors.As(err, &perr) {
//			// perr.Span is a byte range into src
//		}
//	}
//
// Parse performs no semantic validation beyond the structural rules of the
// language (duplicate keys, dotted-path reopening, key-kind validity,
// heredoc framing). It does not preserve comments, coerce scalar types, or
// support incremental reparse.
package styx
