// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec_test

import (
	"testing"

	"github.com/soilvm/soil/asm"
	"github.com/soilvm/soil/container"
	"github.com/soilvm/soil/exec"
	"github.com/soilvm/soil/isa"
)

func mustAssemble(t *testing.T, src string) *container.Container {
	t.Helper()
	c, err := asm.Assemble([]byte(src))
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return c
}

// TestFibonacci runs the loop body exactly 10 times (via a counted
// register, not part of the core instruction sequence quoted in
// spec.md's scenario) and checks the resulting a/b/c values match the
// tenth step of the 0,1,1,2,3,5,8,13,21,34,55 sequence.
func TestFibonacci(t *testing.T) {
	src := `
  moveib a 0
  moveib b 1
  moveib d 10
  moveib f 0
loop:
  move c b
  add b a
  move a c
  moveib e 1
  sub d e
  cmp d f
  isequal
  cjump done
  jump loop
done:
  syscall 0
`
	c := mustAssemble(t, src)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	regs := vm.Registers()
	if regs[isa.A] != 55 || regs[isa.B] != 89 || regs[isa.C] != 55 {
		t.Errorf("after 10 iterations: a=%d b=%d c=%d, want a=55 b=89 c=55", regs[isa.A], regs[isa.B], regs[isa.C])
	}
}

func TestBoundsCheckTraps(t *testing.T) {
	c := mustAssemble(t, `movei a 16777216
loadb c a`)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	err = vm.Run()
	if err == nil {
		t.Fatal("expected a trap")
	}
	trap, ok := err.(*exec.Trap)
	if !ok {
		t.Fatalf("err = %T, want *exec.Trap", err)
	}
	if _, ok := trap.Reason.(exec.ErrOutOfBoundsMemoryAccess); !ok {
		t.Errorf("trap.Reason = %v (%T), want ErrOutOfBoundsMemoryAccess", trap.Reason, trap.Reason)
	}
	if vm.GetState() != exec.Trapped {
		t.Errorf("state = %v, want Trapped", vm.GetState())
	}
}

func TestUnknownOpcodeTraps(t *testing.T) {
	vm, err := exec.New(&container.Container{Code: []byte{0x7f}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err == nil {
		t.Fatal("expected a trap")
	}
}

func TestCallRetBalance(t *testing.T) {
	src := `
  call fn
  syscall 0
fn:
  ret
`
	c := mustAssemble(t, src)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if vm.GetState() != exec.Halted {
		t.Fatalf("state = %v, want Halted", vm.GetState())
	}
	if len(vm.CallStack()) != 0 {
		t.Errorf("call stack depth = %d after matched call/ret, want 0", len(vm.CallStack()))
	}
}

func TestRetWithEmptyCallStackTraps(t *testing.T) {
	c := mustAssemble(t, `ret`)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	err = vm.Run()
	trap, ok := err.(*exec.Trap)
	if !ok {
		t.Fatalf("err = %v, want *exec.Trap", err)
	}
	if trap.Reason != exec.ErrCallStackUnderflow {
		t.Errorf("trap.Reason = %v, want ErrCallStackUnderflow", trap.Reason)
	}
}

func TestDivisionByZeroTraps(t *testing.T) {
	c := mustAssemble(t, `
  moveib a 1
  moveib b 0
  div a b
`)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	err = vm.Run()
	trap, ok := err.(*exec.Trap)
	if !ok {
		t.Fatalf("err = %v, want *exec.Trap", err)
	}
	if trap.Reason != exec.ErrDivisionByZero {
		t.Errorf("trap.Reason = %v, want ErrDivisionByZero", trap.Reason)
	}
}

func TestReservedOpcodeTraps(t *testing.T) {
	c := mustAssemble(t, `fadd a b`)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err == nil {
		t.Fatal("expected a trap on a reserved opcode")
	}
}
