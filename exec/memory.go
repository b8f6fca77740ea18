// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import "github.com/soilvm/soil/isa"

const wordSize = 8

// loadWord reads a little-endian 64-bit word at addr, trapping if any
// of its 8 bytes fall outside the arena (spec.md §4.6 "Memory bounds:
// an address a with a > MEMORY_SIZE - width traps before any byte is
// touched").
func (vm *VM) loadWord(addr uint64) uint64 {
	vm.checkBounds(addr, wordSize)
	return endian.Uint64(vm.arena[addr : addr+wordSize])
}

func (vm *VM) storeWord(addr, value uint64) {
	vm.checkBounds(addr, wordSize)
	endian.PutUint64(vm.arena[addr:addr+wordSize], value)
}

func (vm *VM) loadByte(addr uint64) byte {
	vm.checkBounds(addr, 1)
	return vm.arena[addr]
}

func (vm *VM) storeByte(addr uint64, value byte) {
	vm.checkBounds(addr, 1)
	vm.arena[addr] = value
}

// checkBounds panics with ErrOutOfBoundsMemoryAccess if the width-byte
// access starting at addr would read or write past the arena. It never
// touches vm.arena itself, so a failing check leaves memory untouched.
func (vm *VM) checkBounds(addr, width uint64) {
	if addr > MemorySize-width {
		panic(ErrOutOfBoundsMemoryAccess{Addr: addr, Width: width})
	}
}

// push/pop implement the "stack" register convention (spec.md §3): sp
// points at the most recently pushed word (initially one past the end
// of the arena) and grows downward through the same linear memory
// arena that load/store address.
func (vm *VM) push(v uint64) {
	sp := vm.regs[isa.SP] - wordSize
	vm.storeWord(sp, v)
	vm.regs[isa.SP] = sp
}

func (vm *VM) pop() uint64 {
	sp := vm.regs[isa.SP]
	v := vm.loadWord(sp)
	vm.regs[isa.SP] = sp + wordSize
	return v
}

// pushReturn/popReturn implement the native call stack backing
// call/ret: a fixed-depth stack held outside linear memory (spec.md
// §3, §5 "Budget").
func (vm *VM) pushReturn(addr uint64) {
	if len(vm.callStack) >= CallStackDepth {
		panic(ErrCallStackOverflow)
	}
	vm.callStack = append(vm.callStack, addr)
}

func (vm *VM) popReturn() uint64 {
	if len(vm.callStack) == 0 {
		panic(ErrCallStackUnderflow)
	}
	top := vm.callStack[len(vm.callStack)-1]
	vm.callStack = vm.callStack[:len(vm.callStack)-1]
	return top
}
