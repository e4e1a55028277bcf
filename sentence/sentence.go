// Package sentence implements the lazy, restartable sentence splitter
// over UTF-8 text: it segments at sentence-ending punctuation,
// suppressing a split when the terminator is immediately followed by a
// closing bracket, and yields only non-empty chunks.
package sentence

import "unicode/utf8"

// terminators is the fixed set of sentence-ending punctuation marks:
// 。！？ (Japanese full stop, exclamation, question mark) and the
// ASCII .!?.
var terminators = map[rune]bool{'。': true, '！': true, '？': true, '.': true, '!': true, '?': true}

// suppressingBrackets is the fixed set of closing brackets that, appearing
// immediately after a terminator, suppress the split there: scanning
// continues past the bracket to the next terminator, so a sentence ending
// mid-quote or mid-parenthetical stays part of the sentence around it.
var suppressingBrackets = map[rune]bool{')': true, '）': true, '」': true, '』': true, '】': true, '〉': true, '》': true, '"': true, '\'': true}

// Splitter is a lazy, restartable iterator over sentence-terminated chunks
// of UTF-8 byte ranges.
type Splitter struct {
	text []byte
	pos  int
}

// New builds a Splitter starting at byte offset 0 of text.
func New(text []byte) *Splitter {
	return &Splitter{text: text}
}

// NewAt builds a Splitter restarting at byte offset from of text.
func NewAt(text []byte, from int) *Splitter {
	return &Splitter{text: text, pos: from}
}

// Next returns the next non-empty sentence as a [start,end) byte range
// into text, advancing the splitter past it. Returns ok=false once the
// remaining text is exhausted.
func (s *Splitter) Next() (start, end int, ok bool) {
	if s.pos >= len(s.text) {
		return 0, 0, false
	}

	start = s.pos
	i := s.pos
	for i < len(s.text) {
		r, size := utf8.DecodeRune(s.text[i:])
		i += size
		if !terminators[r] {
			continue
		}
		// A run of terminators (e.g. "!?", "...") ends the sentence
		// together; keep consuming while the next rune is also a
		// terminator before checking for a suppressing bracket.
		for i < len(s.text) {
			r2, size2 := utf8.DecodeRune(s.text[i:])
			if !terminators[r2] {
				break
			}
			i += size2
		}
		if i < len(s.text) {
			r2, _ := utf8.DecodeRune(s.text[i:])
			if suppressingBrackets[r2] {
				continue
			}
		}
		break
	}
	s.pos = i
	return start, i, true
}
