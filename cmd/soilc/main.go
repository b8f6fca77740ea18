// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/soilvm/soil/asm"
	"github.com/soilvm/soil/container"
)

func main() {
	log.SetPrefix("soilc: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose mode")
	out := flag.String("o", "", "output path (default: input with .soil extension)")

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	asm.SetDebugMode(*verbose)

	src := flag.Arg(0)
	dst := *out
	if dst == "" {
		dst = withExt(src, ".soil")
	}

	if err := assembleFile(src, dst); err != nil {
		log.Fatal(err)
	}
}

func withExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}

func assembleFile(src, dst string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return err
	}

	c, err := asm.Assemble(data)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	return container.Write(f, c)
}
