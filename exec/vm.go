// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exec implements the Soil interpreter: registers, the linear
// memory arena, the native call stack, and the opcode dispatch loop
// (spec.md §3, §4.6, §4.7).
package exec

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/soilvm/soil/container"
	"github.com/soilvm/soil/isa"
)

// MemorySize is the fixed size of the linear memory arena (spec.md §3).
const MemorySize = 0x1000000

// CallStackDepth is the fixed capacity of the native call stack
// (spec.md §3, §5 "Budget").
const CallStackDepth = 1024

var debug = log.New(ioutil.Discard, "exec: ", 0)

// SetDebugMode turns the step-by-step dispatch trace on or off.
func SetDebugMode(on bool) {
	if on {
		debug.SetOutput(os.Stderr)
	} else {
		debug.SetOutput(ioutil.Discard)
	}
}

// State is one of the interpreter's three lifecycle states (spec.md
// §4.6 "State machine").
type State int

const (
	Running State = iota
	Trapped
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Trapped:
		return "trapped"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

var endian = binary.LittleEndian

// VM is the execution context for a single Soil program run. All of
// its state — registers, memory, call stack, open file handles — is
// owned exclusively by this value and never shared (spec.md §5).
type VM struct {
	regs [isa.NumRegs]uint64
	ip   uint64

	code  []byte // immutable bytecode buffer, distinct from mem (spec.md §3)
	arena mmap.MMap

	callStack []uint64

	state    State
	started  bool
	exitCode int

	handles  *handleTable
	hostArgs []string

	debugInfo []container.Label
}

// New creates an interpreter for c, with hostArgs visible to the
// program through syscalls 9 (argc) and 10 (arg).
func New(c *container.Container, hostArgs []string) (*VM, error) {
	arena, err := mmap.MapRegion(nil, MemorySize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("exec: allocating memory arena: %w", err)
	}
	if len(c.Memory) > 0 {
		copy(arena, c.Memory)
	}

	vm := &VM{
		code:      append([]byte(nil), c.Code...),
		arena:     arena,
		callStack: make([]uint64, 0, CallStackDepth),
		handles:   newHandleTable(),
		hostArgs:  hostArgs,
		debugInfo: c.Debug,
	}
	vm.regs[isa.SP] = MemorySize
	return vm, nil
}

// Close releases the memory arena and any open file handles. Safe to
// call more than once.
func (vm *VM) Close() error {
	vm.handles.closeAll()
	if vm.arena != nil {
		err := vm.arena.Unmap()
		vm.arena = nil
		return err
	}
	return nil
}

// GetState reports the interpreter's current lifecycle state.
func (vm *VM) GetState() State { return vm.state }

// ExitCode is meaningful once GetState() == Halted: the program's exit
// syscall argument (spec.md §6.3).
func (vm *VM) ExitCode() int { return vm.exitCode }

// Registers returns a snapshot of the register file, in isa.Reg slot
// order, for diagnostics (spec.md §7 "register snapshot").
func (vm *VM) Registers() [isa.NumRegs]uint64 { return vm.regs }

// IP returns the current program counter.
func (vm *VM) IP() uint64 { return vm.ip }

// CallStack returns a snapshot of the native call stack (return
// addresses), bottom first, for a post-trap stack dump (spec.md §7).
func (vm *VM) CallStack() []uint64 {
	return append([]uint64(nil), vm.callStack...)
}

// Run executes instructions until the interpreter halts or traps. It
// always returns (never panics): a runtime trap is reported as a
// *Trap error, not a Go panic escaping to the caller.
func (vm *VM) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			vm.state = Trapped
			err = vm.newTrap(r)
		}
	}()

	if !vm.started {
		vm.started = true
		vm.state = Running
	}

	for vm.state == Running {
		vm.step()
	}
	return nil
}

// step decodes and executes a single instruction. Any fault panics
// with a typed error, recovered by Run.
func (vm *VM) step() {
	if vm.ip >= uint64(len(vm.code)) {
		panic(ErrCodeOutOfRange)
	}
	op := isa.Op(vm.code[vm.ip])

	info, err := isa.Lookup(op)
	if err != nil {
		panic(err)
	}
	if isa.Reserved(op) {
		panic(ErrReservedOpcode(op))
	}

	debug.Printf("ip=%#x op=%s", vm.ip, info.Mnemonic)

	switch op {
	case isa.Nop:
		vm.ip++
	case isa.Panic:
		panic(ErrPanicked)
	case isa.Move:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r2))
		vm.ip += 2
	case isa.MoveI:
		r1 := vm.regAt(vm.ip + 1)
		vm.setReg(r1, vm.wordAt(vm.ip+2))
		vm.ip += 10
	case isa.MoveIB:
		r1 := vm.regAt(vm.ip + 1)
		vm.setReg(r1, uint64(vm.code[vm.ip+2]))
		vm.ip += 3
	case isa.Load:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.loadWord(vm.reg(r2)))
		vm.ip += 2
	case isa.LoadB:
		r1, r2 := vm.regPair()
		vm.setReg(r1, uint64(vm.loadByte(vm.reg(r2))))
		vm.ip += 2
	case isa.Store:
		r1, r2 := vm.regPair()
		vm.storeWord(vm.reg(r1), vm.reg(r2))
		vm.ip += 2
	case isa.StoreB:
		r1, r2 := vm.regPair()
		vm.storeByte(vm.reg(r1), byte(vm.reg(r2)))
		vm.ip += 2
	case isa.Push:
		r1 := vm.regAt(vm.ip + 1)
		vm.push(vm.reg(r1))
		vm.ip += 2
	case isa.Pop:
		r1 := vm.regAt(vm.ip + 1)
		vm.setReg(r1, vm.pop())
		vm.ip += 2
	case isa.Jump:
		vm.ip = vm.wordAt(vm.ip + 1)
	case isa.CJump:
		target := vm.wordAt(vm.ip + 1)
		if vm.regs[isa.ST] != 0 {
			vm.ip = target
		} else {
			vm.ip += 9
		}
	case isa.Call:
		target := vm.wordAt(vm.ip + 1)
		vm.pushReturn(vm.ip + 9)
		vm.ip = target
	case isa.Ret:
		vm.ip = vm.popReturn()
	case isa.Syscall:
		n := vm.code[vm.ip+1]
		vm.dispatchSyscall(n)
		vm.ip += 2
	case isa.Cmp:
		r1, r2 := vm.regPair()
		vm.regs[isa.ST] = vm.reg(r1) - vm.reg(r2)
		vm.ip += 2
	case isa.IsEqual:
		vm.setFlag(int64(vm.regs[isa.ST]) == 0)
	case isa.IsLess:
		vm.setFlag(int64(vm.regs[isa.ST]) < 0)
	case isa.IsGreater:
		vm.setFlag(int64(vm.regs[isa.ST]) > 0)
	case isa.IsLessEqual:
		vm.setFlag(int64(vm.regs[isa.ST]) <= 0)
	case isa.IsGreaterEqual:
		vm.setFlag(int64(vm.regs[isa.ST]) >= 0)
	case isa.Add:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)+vm.reg(r2))
		vm.ip += 2
	case isa.Sub:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)-vm.reg(r2))
		vm.ip += 2
	case isa.Mul:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)*vm.reg(r2))
		vm.ip += 2
	case isa.Div:
		r1, r2 := vm.regPair()
		divisor := vm.reg(r2)
		if divisor == 0 {
			panic(ErrDivisionByZero)
		}
		vm.setReg(r1, vm.reg(r1)/divisor)
		vm.ip += 2
	case isa.And:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)&vm.reg(r2))
		vm.ip += 2
	case isa.Or:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)|vm.reg(r2))
		vm.ip += 2
	case isa.Xor:
		r1, r2 := vm.regPair()
		vm.setReg(r1, vm.reg(r1)^vm.reg(r2))
		vm.ip += 2
	case isa.Negate:
		r1 := vm.regAt(vm.ip + 1)
		vm.setReg(r1, ^vm.reg(r1))
		vm.ip += 2
	default:
		panic(isa.ErrUnknownOpcode(op))
	}
}

func (vm *VM) setFlag(cond bool) {
	if cond {
		vm.regs[isa.ST] = 1
	} else {
		vm.regs[isa.ST] = 0
	}
	vm.ip++
}

// regPair decodes the register-pair operand byte following the
// current opcode.
func (vm *VM) regPair() (r1, r2 isa.Reg) {
	return isa.DecodeRegs(vm.code[vm.ip+1])
}

// regAt decodes only the low-nibble register from the operand byte at
// pos (spec.md §4.3 emit_reg: "high nibble zero").
func (vm *VM) regAt(pos uint64) isa.Reg {
	r, _ := isa.DecodeRegs(vm.code[pos])
	return r
}

func (vm *VM) wordAt(pos uint64) uint64 {
	if pos+8 > uint64(len(vm.code)) {
		panic(ErrCodeOutOfRange)
	}
	return endian.Uint64(vm.code[pos : pos+8])
}

func (vm *VM) reg(r isa.Reg) uint64        { return vm.regs[r] }
func (vm *VM) setReg(r isa.Reg, v uint64) { vm.regs[r] = v }
