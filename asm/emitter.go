// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/binary"

	"github.com/soilvm/soil/isa"
)

// Emitter accumulates one section's output bytes and routes label
// operands through a LabelTable (spec.md §4.3). A fresh Emitter/
// LabelTable pair is created per section; neither leaks across a
// section boundary (spec.md "Lifecycles").
type Emitter struct {
	buf    []byte
	Labels *LabelTable
}

// NewEmitter creates an emitter for a new section.
func NewEmitter() *Emitter {
	return &Emitter{Labels: NewLabelTable()}
}

// Bytes returns the section's output so far.
func (e *Emitter) Bytes() []byte { return e.buf }

// Pos returns the current write offset within the section.
func (e *Emitter) Pos() uint64 { return uint64(len(e.buf)) }

// EmitByte appends a single byte.
func (e *Emitter) EmitByte(b byte) {
	e.buf = append(e.buf, b)
}

// EmitWord appends w as 8 little-endian bytes.
func (e *Emitter) EmitWord(w uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], w)
	e.buf = append(e.buf, b[:]...)
}

// EmitStr appends the raw bytes of s, unterminated.
func (e *Emitter) EmitStr(s string) {
	e.buf = append(e.buf, s...)
}

// OverwriteWord patches an already-emitted 8-byte slot at pos.
func (e *Emitter) OverwriteWord(pos, w uint64) {
	binary.LittleEndian.PutUint64(e.buf[pos:pos+8], w)
}

// EmitReg writes a single register index in a full byte, high nibble
// zero (spec.md §4.3 emit_reg).
func (e *Emitter) EmitReg(r isa.Reg) {
	e.EmitByte(isa.EncodeRegs(r, 0))
}

// EmitRegs writes a register-pair operand byte.
func (e *Emitter) EmitRegs(r1, r2 isa.Reg) {
	e.EmitByte(isa.EncodeRegs(r1, r2))
}

// EmitLabelRef globalizes name, appends an 8-byte zero placeholder,
// and records a patch for it (spec.md §4.3 emit_label_ref).
func (e *Emitter) EmitLabelRef(name string) error {
	where := e.Pos()
	if _, err := e.Labels.AddPatch(name, where); err != nil {
		return err
	}
	e.EmitWord(0)
	return nil
}

// DefineLabel globalizes name, records {name, current offset} in the
// label table, and updates "last label" (spec.md §4.3 define_label).
func (e *Emitter) DefineLabel(name string) (string, error) {
	return e.Labels.Define(name, e.Pos())
}

// Close resolves every outstanding patch against the label table. An
// unresolved patch is a fatal assembly error (spec.md §4.3, §8
// "Patch closure").
func (e *Emitter) Close() error {
	return e.Labels.Resolve(e.OverwriteWord)
}
