// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exec_test

import (
	"os"
	"testing"

	"github.com/soilvm/soil/exec"
)

// TestEchoViaSyscalls is the container analogue of spec.md's echo
// scenario: load a string from initial memory, print it, then exit.
func TestEchoViaSyscalls(t *testing.T) {
	c := mustAssemble(t, `
  movei a 0
  moveib b 5
  syscall 1
  moveib a 0
  syscall 0
@data
hello: str "hello"
`)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()

	origStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = origStdout }()

	vm, err := exec.New(c, nil)
	if err != nil {
		w.Close()
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	runErr := vm.Run()
	w.Close()
	os.Stdout = origStdout
	if runErr != nil {
		t.Fatalf("Run: %v", runErr)
	}
	if vm.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", vm.ExitCode())
	}

	buf := make([]byte, 5)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("stdout = %q, want %q", buf, "hello")
	}
}

func TestArgcArg(t *testing.T) {
	c := mustAssemble(t, `
  syscall 9
  move b a
  moveib a 0
  moveib c 64
  syscall 10
  moveib a 0
  syscall 0
`)
	vm, err := exec.New(c, []string{"first", "second"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestArgOutOfRangeTraps(t *testing.T) {
	c := mustAssemble(t, `
  moveib a 5
  moveib b 0
  moveib c 8
  syscall 10
`)
	vm, err := exec.New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	err = vm.Run()
	if _, ok := err.(*exec.Trap); !ok {
		t.Fatalf("err = %v, want *exec.Trap", err)
	}
}

