// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package container

import (
	"bytes"
	"io"
)

// readWord reads a little-endian 8-byte unsigned integer from r, the
// way wasm/leb128.ReadVarUint32 reads its own wire format one byte at a
// time.
func readWord(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	var w uint64
	for i := 7; i >= 0; i-- {
		w = (w << 8) | uint64(b[i])
	}
	return w, nil
}

// newByteReader wraps a payload slice so decodeDebug can reuse readWord.
func newByteReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
