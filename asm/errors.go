// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// ParseError wraps an underlying error with the source line it
// occurred on, the way the original assembler's panic() prefixed every
// diagnostic with "Line %d: %s".
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (s *Scanner) wrap(err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Line: s.Line(), Err: err}
}
