// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm turns a Soil code section back into a readable
// instruction listing, resolving jump/call/cjump targets to labels
// from the container's debug info where available.
package disasm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/soilvm/soil/container"
	"github.com/soilvm/soil/isa"
)

// Instr is one decoded instruction: its address, opcode, and operands
// rendered as assembly-source text.
type Instr struct {
	Pos     uint64
	Op      isa.Op
	Text    string // e.g. "moveib a 5" or "jump outer.other"
}

var endian = binary.LittleEndian

// Disassemble decodes code into a sequence of Instr, using labels (may
// be nil) to render jump/call/cjump targets by name instead of raw
// offset.
func Disassemble(code []byte, labels []container.Label) ([]Instr, error) {
	byPos := make(map[uint64]string, len(labels))
	for _, l := range labels {
		byPos[l.Pos] = l.Name
	}

	var out []Instr
	pos := uint64(0)
	for pos < uint64(len(code)) {
		op := isa.Op(code[pos])
		info, err := isa.Lookup(op)
		if err != nil {
			return out, fmt.Errorf("disasm: at %#x: %w", pos, err)
		}

		length := uint64(info.Shape.Len())
		if pos+length > uint64(len(code)) {
			return out, fmt.Errorf("disasm: at %#x: instruction %s truncated", pos, info.Mnemonic)
		}

		text, err := render(info, code[pos:pos+length], byPos)
		if err != nil {
			return out, fmt.Errorf("disasm: at %#x: %w", pos, err)
		}

		out = append(out, Instr{Pos: pos, Op: op, Text: text})
		pos += length
	}
	return out, nil
}

func render(info isa.Info, raw []byte, byPos map[uint64]string) (string, error) {
	var b bytes.Buffer
	b.WriteString(info.Mnemonic)

	switch info.Shape {
	case isa.ShapeNone:
	case isa.ShapeReg1:
		r, _ := isa.DecodeRegs(raw[1])
		fmt.Fprintf(&b, " %s", r)
	case isa.ShapeReg2:
		r1, r2 := isa.DecodeRegs(raw[1])
		fmt.Fprintf(&b, " %s %s", r1, r2)
	case isa.ShapeReg1Word:
		r, _ := isa.DecodeRegs(raw[1])
		w := endian.Uint64(raw[2:10])
		fmt.Fprintf(&b, " %s %s", r, renderWord(w, byPos))
	case isa.ShapeReg1Byte:
		r, _ := isa.DecodeRegs(raw[1])
		fmt.Fprintf(&b, " %s %d", r, raw[2])
	case isa.ShapeWord:
		w := endian.Uint64(raw[1:9])
		fmt.Fprintf(&b, " %s", renderWord(w, byPos))
	case isa.ShapeByte:
		fmt.Fprintf(&b, " %d", raw[1])
	}
	return b.String(), nil
}

func renderWord(w uint64, byPos map[uint64]string) string {
	if name, ok := byPos[w]; ok {
		return name
	}
	return fmt.Sprintf("%d", w)
}
