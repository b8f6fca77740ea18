// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"fmt"

	"github.com/soilvm/soil/isa"
)

// Trap is returned by Run when the interpreter cannot continue:
// an illegal instruction, a bounds violation, or an explicit panic
// instruction (spec.md §7 "Runtime faults"). It carries enough state
// for a stack dump at the point of failure.
type Trap struct {
	Reason    error
	IP        uint64
	Registers [isa.NumRegs]uint64
	CallStack []uint64
}

func (t *Trap) Error() string {
	return fmt.Sprintf("trap at ip=%#x: %v", t.IP, t.Reason)
}

func (t *Trap) Unwrap() error { return t.Reason }

// newTrap builds a *Trap from whatever recover() produced: either one
// of the typed errors below, panicked via this package's own checks,
// or an isa error bubbled up from step's dispatch.
func (vm *VM) newTrap(r interface{}) *Trap {
	var reason error
	switch v := r.(type) {
	case error:
		reason = v
	default:
		reason = fmt.Errorf("exec: unexpected panic: %v", v)
	}
	return &Trap{
		Reason:    reason,
		IP:        vm.ip,
		Registers: vm.regs,
		CallStack: vm.CallStack(),
	}
}

// ErrCodeOutOfRange is trapped when ip (or a multi-byte operand read)
// runs past the end of the bytecode buffer.
var ErrCodeOutOfRange = fmt.Errorf("exec: instruction pointer out of code bounds")

// ErrReservedOpcode is trapped when the dispatch loop decodes an
// opcode the assembler can emit but no interpreter gives meaning to
// yet (spec.md §9).
type ErrReservedOpcode isa.Op

func (e ErrReservedOpcode) Error() string {
	info, err := isa.Lookup(isa.Op(e))
	if err != nil {
		return fmt.Sprintf("exec: reserved opcode 0x%02x", byte(e))
	}
	return fmt.Sprintf("exec: reserved opcode %s not implemented", info.Mnemonic)
}

// ErrPanicked is trapped when the program executes the panic
// instruction itself (spec.md §4.6).
var ErrPanicked = fmt.Errorf("exec: program executed panic instruction")

// ErrDivisionByZero is trapped by div when the divisor register is 0.
var ErrDivisionByZero = fmt.Errorf("exec: division by zero")

// ErrOutOfBoundsMemoryAccess is trapped by any load/store whose
// address range extends past the memory arena (spec.md §4.6 "Memory
// bounds").
type ErrOutOfBoundsMemoryAccess struct {
	Addr  uint64
	Width uint64
}

func (e ErrOutOfBoundsMemoryAccess) Error() string {
	return fmt.Sprintf("exec: out-of-bounds memory access at %#x (width %d)", e.Addr, e.Width)
}

// ErrCallStackOverflow is trapped by call when the native call stack
// is already at its fixed capacity (spec.md §5 "Budget").
var ErrCallStackOverflow = fmt.Errorf("exec: call stack overflow")

// ErrCallStackUnderflow is trapped by ret with no matching call.
var ErrCallStackUnderflow = fmt.Errorf("exec: call stack underflow")

// ErrInvalidSyscall is trapped when a syscall instruction names a
// number with no handler (spec.md §4.7).
type ErrInvalidSyscall byte

func (e ErrInvalidSyscall) Error() string {
	return fmt.Sprintf("exec: invalid syscall number %d", byte(e))
}
