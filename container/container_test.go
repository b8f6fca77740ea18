// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package container

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	in := &Container{
		Code:   []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		Memory: []byte("hello"),
		Debug:  []Label{{Pos: 0, Name: "main"}, {Pos: 4, Name: "main.loop"}},
	}

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := Read(&buf, 0x1000000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if !bytes.Equal(out.Code, in.Code) {
		t.Fatalf("code mismatch: got %x want %x", out.Code, in.Code)
	}
	if !bytes.Equal(out.Memory, in.Memory) {
		t.Fatalf("memory mismatch: got %q want %q", out.Memory, in.Memory)
	}
	if len(out.Debug) != len(in.Debug) {
		t.Fatalf("debug label count mismatch: got %d want %d", len(out.Debug), len(in.Debug))
	}
	for i := range in.Debug {
		if out.Debug[i] != in.Debug[i] {
			t.Fatalf("debug[%d] = %+v, want %+v", i, out.Debug[i], in.Debug[i])
		}
	}
}

func TestInvalidMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("nope")), 0x1000000)
	if err != ErrInvalidMagic {
		t.Fatalf("got %v, want ErrInvalidMagic", err)
	}
}

// TestSkipUnknownSection exercises spec.md §8 scenario 6: a container
// with an unrecognized section type between code and debug loads fine,
// and the unknown section is preserved but otherwise ignored.
func TestSkipUnknownSection(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	mustWriteSection(t, &buf, SectionCode, make([]byte, 8)) // 8 nops
	mustWriteSection(t, &buf, 7, make([]byte, 16))          // unknown type
	mustWriteSection(t, &buf, SectionDebug, encodeDebug(nil))

	c, err := Read(&buf, 0x1000000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(c.Code) != 8 {
		t.Fatalf("code length = %d, want 8", len(c.Code))
	}
	if len(c.Other) != 1 || c.Other[0].Type != 7 || len(c.Other[0].Payload) != 16 {
		t.Fatalf("unexpected Other sections: %+v", c.Other)
	}
}

func TestMemoryTooLarge(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	mustWriteSection(t, &buf, SectionData, make([]byte, 16))

	_, err := Read(&buf, 16)
	if _, ok := err.(ErrMemoryTooLarge); !ok {
		t.Fatalf("got %v (%T), want ErrMemoryTooLarge", err, err)
	}
}

func mustWriteSection(t *testing.T, buf *bytes.Buffer, typ SectionType, payload []byte) {
	t.Helper()
	if err := writeSection(buf, typ, payload); err != nil {
		t.Fatalf("writeSection: %v", err)
	}
}
