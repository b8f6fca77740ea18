// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements the Soil assembler: lexer/parser, label table
// and patch list, emitter, and the driver that sequences the code,
// data and debug-info sections (spec.md §4.1–§4.4).
package asm

import (
	"fmt"
)

// Scanner reads Soil assembly source byte-by-byte with a single
// character of lookahead, the way wast.Scanner reads .wast source
// rune-by-rune.
type Scanner struct {
	src  []byte
	pos  int
	line int

	ch  byte
	eof bool
}

const eofByte = 0

// NewScanner creates a Scanner over src, a whole source file's bytes.
func NewScanner(src []byte) *Scanner {
	s := &Scanner{src: src, line: 1}
	s.advance()
	return s
}

// Line returns the current 1-based line number, for diagnostics.
func (s *Scanner) Line() int { return s.line }

func (s *Scanner) advance() {
	if s.pos >= len(s.src) {
		s.eof = true
		s.ch = eofByte
		return
	}
	s.ch = s.src[s.pos]
	s.pos++
}

// skipWhitespace consumes spaces, newlines and `|` line comments.
func (s *Scanner) skipWhitespace() {
	for !s.eof {
		switch {
		case s.ch == ' ':
			s.advance()
		case s.ch == '\n':
			s.line++
			s.advance()
		case s.ch == '|':
			for !s.eof && s.ch != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

// TryConsume skips whitespace, then consumes ch if it is the current
// character, reporting whether it did (spec.md §4.1
// try-consume-character).
func (s *Scanner) TryConsume(ch byte) bool {
	s.skipWhitespace()
	if !s.eof && s.ch == ch {
		s.advance()
		return true
	}
	return false
}

// AtEnd reports whether the scanner has consumed the whole source
// (ignoring trailing whitespace/comments).
func (s *Scanner) AtEnd() bool {
	s.skipWhitespace()
	return s.eof
}

// ErrUnterminatedString is returned by ParseQuotedString when the
// source ends before the closing quote.
var ErrUnterminatedString = fmt.Errorf("asm: unterminated string literal")

// ParseQuotedString reads the bytes up to (not including) the matching
// `"`. The opening quote must already have been consumed.
func (s *Scanner) ParseQuotedString() (string, error) {
	var out []byte
	for {
		if s.eof {
			return "", ErrUnterminatedString
		}
		if s.ch == '"' {
			s.advance()
			return string(out), nil
		}
		out = append(out, s.ch)
		s.advance()
	}
}

// ErrUnexpectedEOF is returned when a token was expected but the
// source ended.
var ErrUnexpectedEOF = fmt.Errorf("asm: unexpected end of input")

func isNameByte(ch byte) bool {
	return ch != ' ' && ch != '\n' && ch != ':' && ch != eofByte
}

// ParseName reads a run of non-whitespace, non-`:` bytes, or — if the
// name begins with `"` — a quoted string (spec.md §4.1 "Name").
func (s *Scanner) ParseName() (string, error) {
	s.skipWhitespace()
	if s.eof {
		return "", ErrUnexpectedEOF
	}
	if s.ch == '"' {
		s.advance()
		return s.ParseQuotedString()
	}

	start := s.pos - 1
	for !s.eof && isNameByte(s.ch) {
		s.advance()
	}
	end := s.pos - 1
	if s.eof {
		end = len(s.src)
	}
	if start == end {
		return "", ErrUnexpectedEOF
	}
	return string(s.src[start:end]), nil
}

// PeekIsColon reports whether, ignoring no whitespace, the very next
// byte (immediately following an already-scanned name) is `:` — used
// by the driver to distinguish a label definition from a reference.
func (s *Scanner) PeekIsColon() bool {
	return !s.eof && s.ch == ':'
}

// ConsumeColon consumes a `:` immediately following a scanned name
// (no intervening whitespace skip, since `:` can't be preceded by
// space in a label definition).
func (s *Scanner) ConsumeColon() bool {
	if !s.eof && s.ch == ':' {
		s.advance()
		return true
	}
	return false
}

// PeekByte reports the next significant (post-whitespace/comment)
// byte without consuming it, or 0 at end of input.
func (s *Scanner) PeekByte() byte {
	s.skipWhitespace()
	if s.eof {
		return eofByte
	}
	return s.ch
}
