// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"testing"

	"github.com/soilvm/soil/asm"
	"github.com/soilvm/soil/disasm"
	"github.com/soilvm/soil/isa"
)

func TestDisassembleRoundTrip(t *testing.T) {
	src := []byte(`
outer:
.inner:
  jump .target
.target:
  nop
`)
	c, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	instrs, err := disasm.Disassemble(c.Code, c.Debug)
	if err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if instrs[0].Op != isa.Jump {
		t.Errorf("instrs[0].Op = %v, want Jump", instrs[0].Op)
	}
	if instrs[0].Text != "jump outer.target" {
		t.Errorf("instrs[0].Text = %q, want %q", instrs[0].Text, "jump outer.target")
	}
	if instrs[1].Text != "nop" {
		t.Errorf("instrs[1].Text = %q, want %q", instrs[1].Text, "nop")
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	_, err := disasm.Disassemble([]byte{0x7f}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
}

func TestDisassembleRawOperand(t *testing.T) {
	src := []byte(`moveib a 5`)
	c, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	instrs, err := disasm.Disassemble(c.Code, c.Debug)
	if err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	if instrs[0].Text != "moveib a 5" {
		t.Errorf("instrs[0].Text = %q, want %q", instrs[0].Text, "moveib a 5")
	}
}
