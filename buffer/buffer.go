// Package buffer implements the input-text buffer: it holds the original
// text, the rewritten ("modified") text produced by the rewrite pipeline,
// and a byte-offset bijection between the two so that downstream
// morphemes can be reported against the caller's original coordinates
// regardless of what normalization did to the text in between.
//
// Buffers are reused across analyses; Reset rewinds a Buffer onto a new
// original text without discarding its backing arrays.
package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/sudachigo/sudachigo/dic/category"
	"github.com/sudachigo/sudachigo/dicerrors"
)

// Edit describes one rewrite transaction entry: replace
// modified[Start:End] with Replacement. Start and End are byte offsets into
// the buffer's current modified text, i.e. the text as of the start of the
// Commit call that applies this edit.
type Edit struct {
	Start, End  int
	Replacement []byte
}

// Buffer holds the original text, the modified text after zero or more
// Commit calls, and the m2o/o2m byte-offset bijection between them.
type Buffer struct {
	original []byte
	modified []byte

	// m2o[i] is the original-text byte offset corresponding to modified
	// byte offset i; len(m2o) == len(modified)+1, with m2o[len(modified)]
	// == len(original) as the trailing boundary.
	m2o []int
	// o2m[i] is the modified-text byte offset corresponding to original
	// byte offset i; len(o2m) == len(original)+1 with the same trailing
	// boundary convention.
	o2m []int

	cats  *category.Table
	catOf []category.Category // per modified-text byte, the category of the rune starting there (0 elsewhere)
}

// New creates a Buffer over original with the identity mapping (no rewrites
// applied yet). cats may be nil if category lookups will not be needed.
func New(original []byte, cats *category.Table) *Buffer {
	b := &Buffer{cats: cats}
	b.Reset(original)
	return b
}

// Reset rewinds the buffer onto a new original text, discarding any
// previously committed edits, while keeping its backing arrays for reuse.
func (b *Buffer) Reset(original []byte) {
	b.original = append(b.original[:0], original...)
	b.modified = append(b.modified[:0], original...)
	n := len(original)
	if cap(b.m2o) < n+1 {
		b.m2o = make([]int, n+1)
	} else {
		b.m2o = b.m2o[:n+1]
	}
	if cap(b.o2m) < n+1 {
		b.o2m = make([]int, n+1)
	} else {
		b.o2m = b.o2m[:n+1]
	}
	for i := 0; i <= n; i++ {
		b.m2o[i] = i
		b.o2m[i] = i
	}
	b.recategorize()
}

// Original returns the original text.
func (b *Buffer) Original() []byte { return b.original }

// Modified returns the current modified text.
func (b *Buffer) Modified() []byte { return b.modified }

// ModifiedToOriginal maps a byte offset in the modified text back to the
// corresponding offset in the original text.
func (b *Buffer) ModifiedToOriginal(i int) int { return b.m2o[i] }

// OriginalToModified maps a byte offset in the original text forward to the
// corresponding offset in the modified text.
func (b *Buffer) OriginalToModified(i int) int { return b.o2m[i] }

// CategoryAt returns the character category mask of the rune starting at
// modified-text byte offset i, or 0 if i is not a rune boundary or no
// category table was supplied.
func (b *Buffer) CategoryAt(i int) category.Category {
	if i < 0 || i >= len(b.catOf) {
		return 0
	}
	return b.catOf[i]
}

// Commit applies a non-overlapping, increasing-order sequence of edits to
// the modified text and recomputes m2o/o2m:
//
//   - unedited regions keep the identity mapping plus the running
//     length delta introduced by prior edits;
//   - within an edit, every byte of the replacement maps (in m2o) to the
//     first original byte of the replaced range; o2m maps the first
//     original byte of the replaced range to the first replacement byte,
//     and every subsequent original byte in the replaced range to that
//     same replacement-start target (m2o[o2m[i]]==i holds exactly at
//     every such first-byte boundary; interior original
//     bytes of a collapsed range are, by construction, not boundaries
//     any caller can observe independently of their range's start).
func (b *Buffer) Commit(edits []Edit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i].Start < edits[i-1].End {
			return fmt.Errorf("edits out of order or overlapping at index %d: %w", i, dicerrors.ErrInvalidInput)
		}
	}
	for i, e := range edits {
		if e.Start < 0 || e.End > len(b.modified) || e.Start > e.End {
			return fmt.Errorf("edit %d out of range [0,%d]: %w", i, len(b.modified), dicerrors.ErrInvalidInput)
		}
	}

	newModified := make([]byte, 0, len(b.modified))
	newM2O := make([]int, 0, len(b.modified)+1)

	cursor := 0
	for _, e := range edits {
		// Unedited span before this edit: identity-copy with the existing
		// mapping (which already accounts for any earlier commits' delta).
		for i := cursor; i < e.Start; i++ {
			newModified = append(newModified, b.modified[i])
			newM2O = append(newM2O, b.m2o[i])
		}
		originalAnchor := b.m2o[e.Start]
		for range e.Replacement {
			newM2O = append(newM2O, originalAnchor)
		}
		newModified = append(newModified, e.Replacement...)
		cursor = e.End
	}
	for i := cursor; i < len(b.modified); i++ {
		newModified = append(newModified, b.modified[i])
		newM2O = append(newM2O, b.m2o[i])
	}
	newM2O = append(newM2O, b.m2o[len(b.modified)])

	b.modified = newModified
	b.m2o = newM2O
	b.rebuildO2M()
	b.recategorize()
	return nil
}

// rebuildO2M derives o2m from the just-rebuilt m2o: each original offset's
// target is the first modified offset that maps back to it (first-seen
// wins), with any original offset inside a collapsed/replaced range
// carrying the preceding resolved target forward, so every original byte
// of the range maps to the range's first replacement byte and o2m stays
// total.
func (b *Buffer) rebuildO2M() {
	n := len(b.original)
	if cap(b.o2m) < n+1 {
		b.o2m = make([]int, n+1)
	} else {
		b.o2m = b.o2m[:n+1]
	}
	for i := range b.o2m {
		b.o2m[i] = -1
	}
	for mi, oi := range b.m2o {
		if b.o2m[oi] == -1 {
			b.o2m[oi] = mi
		}
	}
	last := 0
	for oi := 0; oi <= n; oi++ {
		if b.o2m[oi] == -1 {
			b.o2m[oi] = last
		} else {
			last = b.o2m[oi]
		}
	}
}

func (b *Buffer) recategorize() {
	if cap(b.catOf) < len(b.modified) {
		b.catOf = make([]category.Category, len(b.modified))
	} else {
		b.catOf = b.catOf[:len(b.modified)]
		for i := range b.catOf {
			b.catOf[i] = 0
		}
	}
	if b.cats == nil {
		return
	}
	for i := 0; i < len(b.modified); {
		r, size := utf8.DecodeRune(b.modified[i:])
		b.catOf[i] = b.cats.CategoriesOf(r)
		i += size
	}
}
