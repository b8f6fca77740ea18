// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// Label is an entry in the Label Table (spec.md §3): a globalized name
// and the byte offset, relative to the start of its section, where it
// was defined.
type Label struct {
	Name string
	Pos  uint64
}

// patch is a deferred write of a resolved label offset into a
// previously emitted 8-byte placeholder (spec.md §3 "Patch entry").
type patch struct {
	Name  string
	Where uint64
}

// LabelTable is the per-section label table and patch list. It is
// created fresh for each section and discarded at end-of-section
// (spec.md "Lifecycles"), matching the teacher's preference for
// per-instance state over package-level globals (spec.md §9).
type LabelTable struct {
	labels []Label
	patches []patch
	last    string
}

// NewLabelTable creates an empty label table for a new section.
func NewLabelTable() *LabelTable {
	return &LabelTable{}
}

// ErrTooManyDots is raised by Globalize when a reference has more
// leading dots than the current "last label" has components
// (spec.md §4.2 step 3).
type ErrTooManyDots struct {
	Ref  string
	Last string
}

func (e ErrTooManyDots) Error() string {
	return fmt.Sprintf("asm: too many leading dots in %q relative to last label %q", e.Ref, e.Last)
}

// Globalize expands a dotted label reference relative to the table's
// current "last label", per the algorithm in spec.md §4.2.
func (t *LabelTable) Globalize(label string) (string, error) {
	return globalize(label, t.last)
}

// globalize walks last left to right, consuming one leading dot of
// label per '.' encountered, and splits last at the position where
// the count reaches zero. Running off the end of last with exactly
// one dot left to consume is accepted as "append a new leaf" (the
// common case of a single-dot local under an undotted global); any
// other shortfall is too many dots.
func globalize(label, last string) (string, error) {
	n := 0
	for n < len(label) && label[n] == '.' {
		n++
	}
	tail := label[n:]

	if n == 0 {
		return label, nil
	}

	sharedPrefix := 0
	for {
		if sharedPrefix >= len(last) {
			if n == 1 {
				break
			}
			return "", ErrTooManyDots{Ref: label, Last: last}
		}
		if last[sharedPrefix] == '.' {
			n--
			if n == 0 {
				break
			}
		}
		sharedPrefix++
	}

	return last[:sharedPrefix] + "." + tail, nil
}

// ErrDuplicateLabel is raised by Define when name (after globalizing)
// was already defined in this section.
type ErrDuplicateLabel string

func (e ErrDuplicateLabel) Error() string {
	return fmt.Sprintf("asm: duplicate label %q", string(e))
}

// Define globalizes name, records {name, pos} in the label table, and
// updates the "last label" (spec.md §4.3 define_label).
func (t *LabelTable) Define(name string, pos uint64) (string, error) {
	full, err := t.Globalize(name)
	if err != nil {
		return "", err
	}
	for _, l := range t.labels {
		if l.Name == full {
			return "", ErrDuplicateLabel(full)
		}
	}
	t.labels = append(t.labels, Label{Name: full, Pos: pos})
	t.last = full
	return full, nil
}

// AddPatch records a pending write of an 8-byte absolute offset at
// where, to be filled once name resolves.
func (t *LabelTable) AddPatch(name string, where uint64) (string, error) {
	full, err := t.Globalize(name)
	if err != nil {
		return "", err
	}
	t.patches = append(t.patches, patch{Name: full, Where: where})
	return full, nil
}

// lookup returns the position of a globalized label name, if defined.
func (t *LabelTable) lookup(full string) (uint64, bool) {
	for _, l := range t.labels {
		if l.Name == full {
			return l.Pos, true
		}
	}
	return 0, false
}

// Labels returns the defined labels, in insertion order (spec.md §3:
// "iteration order is insertion order").
func (t *LabelTable) Labels() []Label {
	return append([]Label(nil), t.labels...)
}

// ErrUnresolvedLabel is raised at end-of-section when a patch's label
// was never defined.
type ErrUnresolvedLabel string

func (e ErrUnresolvedLabel) Error() string {
	return fmt.Sprintf("asm: undefined label %q", string(e))
}

// Resolve walks the patch list and calls overwrite for each pending
// patch, looking up its resolved position. It is an error for any
// patch to remain unresolved (spec.md §4.3 "Patch closure").
func (t *LabelTable) Resolve(overwrite func(where, value uint64)) error {
	for _, p := range t.patches {
		pos, ok := t.lookup(p.Name)
		if !ok {
			return ErrUnresolvedLabel(p.Name)
		}
		overwrite(p.Where, pos)
	}
	t.patches = nil
	return nil
}
