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
	log.SetPrefix("soil-dump: ")
	log.SetFlags(0)

	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	c, err := container.Read(f, exec.MemorySize)
	if err != nil {
		log.Fatalf("could not read container: %v", err)
	}

	fmt.Printf("code: %d bytes, memory: %d bytes, labels: %d\n", len(c.Code), len(c.Memory), len(c.Debug))

	instrs, err := disasm.Disassemble(c.Code, c.Debug)
	if err != nil {
		log.Printf("disassembly stopped: %v", err)
	}
	for _, in := range instrs {
		fmt.Printf("%#08x  %s\n", in.Pos, in.Text)
	}
}
