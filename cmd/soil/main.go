// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/soilvm/soil/container"
	"github.com/soilvm/soil/disasm"
	"github.com/soilvm/soil/exec"
)

func main() {
	log.SetPrefix("soil: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose mode")

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	exec.SetDebugMode(*verbose)

	os.Exit(run(flag.Arg(0), flag.Args()[1:]))
}

func run(fname string, progArgs []string) int {
	f, err := os.Open(fname)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	c, err := container.Read(f, exec.MemorySize)
	if err != nil {
		log.Fatalf("could not read container: %v", err)
	}

	vm, err := exec.New(c, progArgs)
	if err != nil {
		log.Fatalf("could not create VM: %v", err)
	}
	defer vm.Close()

	if err := vm.Run(); err != nil {
		reportTrap(err, c)
		return 1
	}

	return vm.ExitCode()
}

// reportTrap prints a register snapshot and a stack dump resolved
// through debug info, if present, the way a fatal runtime fault is
// surfaced to the operator (spec.md §7 "the interpreter may emit a
// stack dump ... and a register snapshot before terminating").
func reportTrap(err error, c *container.Container) {
	trap, ok := err.(*exec.Trap)
	if !ok {
		fmt.Fprintf(os.Stderr, "soil: %v\n", err)
		return
	}

	fmt.Fprintf(os.Stderr, "soil: %v\n", trap)
	fmt.Fprintf(os.Stderr, "registers: %v\n", trap.Registers)

	fmt.Fprintln(os.Stderr, "call stack:")
	for i := len(trap.CallStack) - 1; i >= 0; i-- {
		addr := trap.CallStack[i]
		// Resolve to the nearest label at or below addr.
		name, ok, best := "", false, uint64(0)
		for _, l := range c.Debug {
			if l.Pos <= addr && (!ok || l.Pos >= best) {
				name, ok, best = l.Name, true, l.Pos
			}
		}
		if ok {
			fmt.Fprintf(os.Stderr, "  %#x (%s)\n", addr, name)
		} else {
			fmt.Fprintf(os.Stderr, "  %#x\n", addr)
		}
	}

	if instrs, err := disasm.Disassemble(c.Code, c.Debug); err == nil {
		for _, in := range instrs {
			if in.Pos == trap.IP {
				fmt.Fprintf(os.Stderr, "at: %#x %s\n", in.Pos, in.Text)
				break
			}
		}
	}
}
