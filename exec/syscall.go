// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/soilvm/soil/isa"
)

// handleTable maps the opaque 64-bit handles the program sees to real
// platform file descriptors (spec.md §4.7 "Handles are opaque 64-bit
// values ... they never appear as memory addresses"). Handle 0 is
// never issued, so it doubles as an invalid/error indicator.
type handleTable struct {
	fds map[uint64]int
	next uint64
}

func newHandleTable() *handleTable {
	return &handleTable{fds: make(map[uint64]int), next: 1}
}

func (t *handleTable) add(fd int) uint64 {
	h := t.next
	t.next++
	t.fds[h] = fd
	return h
}

func (t *handleTable) get(h uint64) (int, bool) {
	fd, ok := t.fds[h]
	return fd, ok
}

func (t *handleTable) remove(h uint64) {
	delete(t.fds, h)
}

func (t *handleTable) closeAll() {
	for h, fd := range t.fds {
		unix.Close(fd)
		delete(t.fds, h)
	}
}

// syscallTable is the fixed-size vector of syscall handlers spec.md
// §4.7 calls for, the same shape as the original
// toolchain's `void (*devices[256])()` and the teacher's own
// `funcTable [256]func()` (exec/vm.go) indexed directly by opcode
// byte. Unpopulated slots are nil and trap as an invalid syscall.
var syscallTable [256]func(*VM)

func init() {
	syscallTable[0] = (*VM).syscallExit
	syscallTable[1] = (*VM).syscallPrint
	syscallTable[2] = (*VM).syscallLog
	syscallTable[3] = (*VM).syscallCreate
	syscallTable[4] = (*VM).syscallOpenRead
	syscallTable[5] = (*VM).syscallOpenWrite
	syscallTable[6] = (*VM).syscallRead
	syscallTable[7] = (*VM).syscallWrite
	syscallTable[8] = (*VM).syscallClose
	syscallTable[9] = (*VM).syscallArgc
	syscallTable[10] = (*VM).syscallArg
}

// dispatchSyscall executes the handler named by n against the
// register contract in spec.md §4.7. A host-level I/O failure is not a
// trap: open reports handle 0 and read a count of 0, while write and
// close report nothing. An invalid syscall number, an out-of-range arg
// index, or an out-of-bounds memory access by a handler traps.
func (vm *VM) dispatchSyscall(n byte) {
	h := syscallTable[n]
	if h == nil {
		panic(ErrInvalidSyscall(n))
	}
	h(vm)
}

func (vm *VM) syscallExit() {
	vm.exitCode = int(int64(vm.regs[isa.A]))
	vm.state = Halted
}

func (vm *VM) syscallPrint() {
	vm.writeBytes(os.Stdout, vm.regs[isa.A], vm.regs[isa.B])
}

func (vm *VM) syscallLog() {
	vm.writeBytes(os.Stderr, vm.regs[isa.A], vm.regs[isa.B])
}

func (vm *VM) syscallCreate() {
	vm.openFile(unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0644)
}

func (vm *VM) syscallOpenRead() {
	vm.openFile(unix.O_RDONLY, 0)
}

func (vm *VM) syscallOpenWrite() {
	vm.openFile(unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0644)
}

func (vm *VM) syscallClose() {
	if fd, ok := vm.handles.get(vm.regs[isa.A]); ok {
		unix.Close(fd)
		vm.handles.remove(vm.regs[isa.A])
	}
}

func (vm *VM) syscallArgc() {
	vm.regs[isa.A] = uint64(len(vm.hostArgs))
}

func (vm *VM) filename(addr, length uint64) string {
	name := make([]byte, length)
	for i := uint64(0); i < length; i++ {
		name[i] = vm.loadByte(addr + i)
	}
	return string(name)
}

func (vm *VM) openFile(flags int, mode uint32) {
	name := vm.filename(vm.regs[isa.A], vm.regs[isa.B])
	fd, err := unix.Open(name, flags, mode)
	if err != nil {
		vm.regs[isa.A] = 0
		return
	}
	vm.regs[isa.A] = vm.handles.add(fd)
}

func (vm *VM) writeBytes(f *os.File, addr, length uint64) {
	buf := make([]byte, length)
	for i := uint64(0); i < length; i++ {
		buf[i] = vm.loadByte(addr + i)
	}
	f.Write(buf)
}

func (vm *VM) syscallRead() {
	fd, ok := vm.handles.get(vm.regs[isa.A])
	if !ok {
		vm.regs[isa.A] = 0
		return
	}
	n := vm.regs[isa.C]
	buf := make([]byte, n)
	got, err := unix.Read(fd, buf)
	if err != nil || got < 0 {
		vm.regs[isa.A] = 0
		return
	}
	for i := 0; i < got; i++ {
		vm.storeByte(vm.regs[isa.B]+uint64(i), buf[i])
	}
	vm.regs[isa.A] = uint64(got)
}

func (vm *VM) syscallWrite() {
	fd, ok := vm.handles.get(vm.regs[isa.A])
	if !ok {
		return
	}
	n := vm.regs[isa.C]
	buf := make([]byte, n)
	for i := uint64(0); i < n; i++ {
		buf[i] = vm.loadByte(vm.regs[isa.B] + i)
	}
	unix.Write(fd, buf)
}

// syscallArg copies the a-th host argument into memory at b, up to c
// bytes, returning the number copied in a. An out-of-range index
// traps (spec.md §4.7).
func (vm *VM) syscallArg() {
	idx := vm.regs[isa.A]
	if idx >= uint64(len(vm.hostArgs)) {
		panic(fmt.Errorf("exec: arg index %d out of range (argc=%d)", idx, len(vm.hostArgs)))
	}
	arg := vm.hostArgs[idx]
	max := vm.regs[isa.C]
	n := uint64(len(arg))
	if n > max {
		n = max
	}
	for i := uint64(0); i < n; i++ {
		vm.storeByte(vm.regs[isa.B]+i, arg[i])
	}
	vm.regs[isa.A] = n
}
