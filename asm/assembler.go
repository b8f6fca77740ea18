// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/soilvm/soil/container"
	"github.com/soilvm/soil/isa"
)

// debug is a package-level tracer in the style of wagon's wasm.logger:
// discarded by default, switched to stderr by SetDebugMode.
var debug = log.New(ioutil.Discard, "asm: ", 0)

// SetDebugMode turns the step-by-step assembler trace on or off.
func SetDebugMode(on bool) {
	if on {
		debug.SetOutput(os.Stderr)
	} else {
		debug.SetOutput(ioutil.Discard)
	}
}

const dataDirective = "@data"

// Assemble reads Soil assembly source and produces the corresponding
// Container: a code section, an optional initial-memory section, and a
// debug-info section carrying the code section's labels (spec.md §4.4).
func Assemble(src []byte) (*container.Container, error) {
	s := NewScanner(src)
	code := NewEmitter()

	if err := assembleCode(s, code); err != nil {
		return nil, err
	}
	if err := code.Close(); err != nil {
		return nil, s.wrap(err)
	}

	c := &container.Container{Code: code.Bytes()}
	for _, l := range code.Labels.Labels() {
		c.Debug = append(c.Debug, container.Label{Pos: l.Pos, Name: l.Name})
	}

	if !s.AtEnd() {
		data := NewEmitter()
		if err := assembleData(s, data); err != nil {
			return nil, err
		}
		if err := data.Close(); err != nil {
			return nil, s.wrap(err)
		}
		c.Memory = data.Bytes()
	}

	return c, nil
}

// assembleCode consumes mnemonics and label definitions until it sees
// @data or end-of-input (spec.md §4.4 "code section").
func assembleCode(s *Scanner, e *Emitter) error {
	for {
		if s.AtEnd() {
			return nil
		}

		name, err := s.ParseName()
		if err != nil {
			return s.wrap(err)
		}

		if s.PeekIsColon() {
			s.ConsumeColon()
			if _, err := e.DefineLabel(name); err != nil {
				return s.wrap(err)
			}
			continue
		}

		if name == dataDirective {
			return nil
		}

		if err := assembleInstruction(s, e, name); err != nil {
			return err
		}
	}
}

func assembleInstruction(s *Scanner, e *Emitter, mnemonic string) error {
	info, err := isa.LookupMnemonic(mnemonic)
	if err != nil {
		return s.wrap(err)
	}

	debug.Printf("line %d: %#x %s", s.Line(), e.Pos(), mnemonic)
	e.EmitByte(byte(info.Op))
	switch info.Shape {
	case isa.ShapeNone:
		// no operands
	case isa.ShapeReg1:
		r, err := parseRegister(s)
		if err != nil {
			return err
		}
		e.EmitReg(r)
	case isa.ShapeReg2:
		r1, err := parseRegister(s)
		if err != nil {
			return err
		}
		r2, err := parseRegister(s)
		if err != nil {
			return err
		}
		e.EmitRegs(r1, r2)
	case isa.ShapeReg1Word:
		r, err := parseRegister(s)
		if err != nil {
			return err
		}
		e.EmitReg(r)
		if err := parseWordOperand(s, e); err != nil {
			return err
		}
	case isa.ShapeReg1Byte:
		r, err := parseRegister(s)
		if err != nil {
			return err
		}
		e.EmitReg(r)
		n, err := s.ParseNumber()
		if err != nil {
			return s.wrap(err)
		}
		e.EmitByte(byte(n))
	case isa.ShapeWord:
		if err := parseWordOperand(s, e); err != nil {
			return err
		}
	case isa.ShapeByte:
		n, err := s.ParseNumber()
		if err != nil {
			return s.wrap(err)
		}
		e.EmitByte(byte(n))
	}
	return nil
}

func parseRegister(s *Scanner) (isa.Reg, error) {
	name, err := s.ParseName()
	if err != nil {
		return 0, s.wrap(err)
	}
	r, err := isa.LookupRegister(name)
	if err != nil {
		return 0, s.wrap(err)
	}
	return r, nil
}

// parseWordOperand reads a "W" operand: a numeric literal if the next
// significant byte is a digit, otherwise a label reference (used by
// jump/cjump/call/movei and by the data section's word directive). A
// label reference resolves only against labels of the section it
// appears in.
func parseWordOperand(s *Scanner, e *Emitter) error {
	if isDigitByte(s.PeekByte()) {
		n, err := s.ParseNumber()
		if err != nil {
			return s.wrap(err)
		}
		e.EmitWord(n)
		return nil
	}
	name, err := s.ParseName()
	if err != nil {
		return s.wrap(err)
	}
	if err := e.EmitLabelRef(name); err != nil {
		return s.wrap(err)
	}
	return nil
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

// assembleData consumes the `str`/`byte`/`word` directives and label
// definitions that make up the data section (spec.md §4.4 "data
// section").
func assembleData(s *Scanner, e *Emitter) error {
	for !s.AtEnd() {
		name, err := s.ParseName()
		if err != nil {
			return s.wrap(err)
		}

		if s.PeekIsColon() {
			s.ConsumeColon()
			if _, err := e.DefineLabel(name); err != nil {
				return s.wrap(err)
			}
			continue
		}

		switch name {
		case "str":
			str, err := s.ParseName()
			if err != nil {
				return s.wrap(err)
			}
			e.EmitStr(str)
		case "byte":
			n, err := s.ParseNumber()
			if err != nil {
				return s.wrap(err)
			}
			e.EmitByte(byte(n))
		case "word":
			if err := parseWordOperand(s, e); err != nil {
				return err
			}
		default:
			return s.wrap(fmt.Errorf("asm: unknown data directive %q", name))
		}
	}
	return nil
}
