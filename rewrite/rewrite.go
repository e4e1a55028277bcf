// Package rewrite implements the input-text rewriting pipeline: a fixed,
// ordered chain of Rewriters that runs once per analysis before lattice
// construction, each contributing buffer.Edit transactions that
// buffer.Buffer.Commit folds into the modified text and its offset
// bijection.
//
// Rewriters are a closed, tagged-variant set rather than an open plugin
// interface: DefaultNormalizer, ProlongedSoundMark, and IgnoreYomigana are
// the only implementations, and they always run in that order.
package rewrite

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic/category"
)

// Rewriter computes the edits one pass of the rewrite pipeline wants to
// apply to buf's current modified text. Implementations must not mutate
// buf themselves; the caller commits the returned edits.
type Rewriter interface {
	Edits(buf *buffer.Buffer) []buffer.Edit
}

// Pipeline runs a fixed sequence of Rewriters against a buffer, committing
// each stage's edits before computing the next stage's (so later stages
// see earlier stages' output).
type Pipeline struct {
	stages []Rewriter
}

// NewPipeline builds the fixed-order rewrite pipeline: default
// normalization, then prolonged-sound-mark collapse, then yomigana
// removal.
func NewPipeline(normalizer *DefaultNormalizer, prolonged *ProlongedSoundMark, yomigana *IgnoreYomigana) *Pipeline {
	return &Pipeline{stages: []Rewriter{normalizer, prolonged, yomigana}}
}

// Run applies every stage in order, committing each stage's edits to buf
// before computing the next.
func (p *Pipeline) Run(buf *buffer.Buffer) error {
	for _, stage := range p.stages {
		edits := stage.Edits(buf)
		if len(edits) == 0 {
			continue
		}
		if err := buf.Commit(edits); err != nil {
			return err
		}
	}
	return nil
}

// DefaultNormalizer applies NFKC normalization followed by case folding to
// lower case, skipping any rune present in the dictionary-provided skip
// set.
type DefaultNormalizer struct {
	skip  map[rune]bool
	caser cases.Caser
}

// NewDefaultNormalizer builds a DefaultNormalizer. skip lists code points
// that must pass through untouched by either NFKC or case folding (e.g.
// symbols the system dictionary deliberately preserves case for).
func NewDefaultNormalizer(skip []rune) *DefaultNormalizer {
	m := make(map[rune]bool, len(skip))
	for _, r := range skip {
		m[r] = true
	}
	return &DefaultNormalizer{skip: m, caser: cases.Fold()}
}

// Edits computes a single edit per maximal run of non-skipped runes,
// replacing each run with its NFKC+casefolded form; skipped runes split
// runs so they are never fed to the normalizer.
func (n *DefaultNormalizer) Edits(buf *buffer.Buffer) []buffer.Edit {
	mod := buf.Modified()
	var edits []buffer.Edit
	i := 0
	for i < len(mod) {
		r, size := utf8.DecodeRune(mod[i:])
		if n.skip[r] {
			i += size
			continue
		}
		start := i
		for i < len(mod) {
			r2, size2 := utf8.DecodeRune(mod[i:])
			if n.skip[r2] {
				break
			}
			i += size2
		}
		run := mod[start:i]
		normalized := n.caser.Bytes(norm.NFKC.Bytes(run))
		if string(normalized) == string(run) {
			continue
		}
		edits = append(edits, buffer.Edit{Start: start, End: i, Replacement: normalized})
	}
	return edits
}

// prolongedSoundMarks is the fixed set of characters treated as a
// prolonged-sound mark when collapsing runs: ー (U+30FC, the
// katakana-hiragana prolonged sound mark), ~ (ASCII tilde), and 〜
// (U+301C, wave dash), all three of which appear interchangeably in
// casual Japanese text to stretch the preceding vowel.
var prolongedSoundMarks = map[rune]bool{'ー': true, '~': true, '〜': true}

const canonicalProlongedMark = "ー"

// prolongedTriggerCategories is the set of categories after which a run of
// prolonged-sound marks collapses.
const prolongedTriggerCategories = category.Alpha | category.Hiragana | category.Katakana

// ProlongedSoundMark collapses a run of two or more prolonged-sound-mark
// characters immediately following an ALPHA/HIRAGANA/KATAKANA character
// into a single canonical ー.
type ProlongedSoundMark struct{}

// Edits scans the modified text for runs of prolongedSoundMarks preceded
// by a triggering category and emits a collapsing edit for each run longer
// than one character.
func (ProlongedSoundMark) Edits(buf *buffer.Buffer) []buffer.Edit {
	mod := buf.Modified()
	var edits []buffer.Edit
	i := 0
	prevTrigger := false
	for i < len(mod) {
		r, size := utf8.DecodeRune(mod[i:])
		if prolongedSoundMarks[r] && prevTrigger {
			start := i
			count := 1
			i += size
			for i < len(mod) {
				r2, size2 := utf8.DecodeRune(mod[i:])
				if !prolongedSoundMarks[r2] {
					break
				}
				i += size2
				count++
			}
			if count > 1 {
				edits = append(edits, buffer.Edit{Start: start, End: i, Replacement: []byte(canonicalProlongedMark)})
			}
			prevTrigger = false
			continue
		}
		prevTrigger = buf.CategoryAt(i)&prolongedTriggerCategories != 0
		i += size
	}
	return edits
}

// yomiganaOpen, yomiganaClose delimit the parenthetical reading-gloss this
// rewriter strips, e.g. "（かな）" (fullwidth parens around kana).
const yomiganaOpen, yomiganaClose = "（", "）"

// IgnoreYomigana removes a trailing "（...）" reading gloss that
// immediately follows a KANJI character, when the gloss's content is no
// longer than MaxLength code points.
type IgnoreYomigana struct {
	MaxLength int
}

// NewIgnoreYomigana builds an IgnoreYomigana rewriter with the given
// maximum gloss length in code points.
func NewIgnoreYomigana(maxLength int) *IgnoreYomigana {
	return &IgnoreYomigana{MaxLength: maxLength}
}

// Edits finds every "（gloss）" span directly preceded by a KANJI
// character and, if the gloss is short enough, emits an edit deleting the
// whole parenthetical.
func (r *IgnoreYomigana) Edits(buf *buffer.Buffer) []buffer.Edit {
	mod := buf.Modified()
	var edits []buffer.Edit
	i := 0
	for i < len(mod) {
		if !hasPrefixAt(mod, i, yomiganaOpen) {
			i += 1
			continue
		}
		if i == 0 || buf.CategoryAt(prevRuneStart(mod, i))&category.Kanji == 0 {
			i += len(yomiganaOpen)
			continue
		}
		contentStart := i + len(yomiganaOpen)
		j := contentStart
		length := 0
		closed := -1
		for j < len(mod) {
			if hasPrefixAt(mod, j, yomiganaClose) {
				closed = j
				break
			}
			_, size := utf8.DecodeRune(mod[j:])
			j += size
			length++
		}
		if closed == -1 || length > r.MaxLength {
			i += len(yomiganaOpen)
			continue
		}
		end := closed + len(yomiganaClose)
		edits = append(edits, buffer.Edit{Start: i, End: end, Replacement: nil})
		i = end
	}
	return edits
}

func hasPrefixAt(s []byte, i int, prefix string) bool {
	if i+len(prefix) > len(s) {
		return false
	}
	return string(s[i:i+len(prefix)]) == prefix
}

func prevRuneStart(s []byte, i int) int {
	_, size := utf8.DecodeLastRune(s[:i])
	return i - size
}
