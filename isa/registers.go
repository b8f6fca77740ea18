// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "fmt"

// Reg is a 4-bit register index, as encoded in a register-pair operand
// byte (spec.md §3 "Registers").
type Reg byte

const (
	SP Reg = iota
	ST
	A
	B
	C
	D
	E
	F
)

// NumRegs is the number of addressable register slots.
const NumRegs = 8

var regNames = [NumRegs]string{"sp", "st", "a", "b", "c", "d", "e", "f"}

// String returns the register's assembly-source name.
func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("r%d", byte(r))
}

// ErrUnknownRegister is returned when a name doesn't match a register.
type ErrUnknownRegister string

func (e ErrUnknownRegister) Error() string {
	return fmt.Sprintf("isa: unknown register %q", string(e))
}

// LookupRegister resolves a register name to its slot index.
func LookupRegister(name string) (Reg, error) {
	for i, n := range regNames {
		if n == name {
			return Reg(i), nil
		}
	}
	return 0, ErrUnknownRegister(name)
}

// EncodeRegs packs two register indices into one operand byte, low
// nibble first (spec.md §3, §4.3 emit_regs).
func EncodeRegs(r1, r2 Reg) byte {
	return byte(r1&0x0f) | byte(r2&0x0f)<<4
}

// DecodeRegs unpacks a register-pair operand byte.
func DecodeRegs(b byte) (r1, r2 Reg) {
	return Reg(b & 0x0f), Reg(b >> 4)
}
