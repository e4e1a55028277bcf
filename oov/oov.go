// Package oov implements out-of-vocabulary node providers: a closed set
// of strategies (Simple, MeCab-style category-driven, regex-driven)
// invoked by the lattice builder at every byte position of the buffer to
// synthesize nodes the lexicon itself did not produce.
package oov

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dic/category"
	"github.com/sudachigo/sudachigo/dicerrors"
)

// Node is one OOV candidate: it spans buf.Modified()[pos:pos+Length]
// (Length in bytes) and carries the word-parameter fields the lattice needs
// directly, since an OOV node's "word id" is synthetic rather than a real
// lexicon index.
type Node struct {
	Length      int
	WordID      dic.WordID
	Cost        int16
	Left, Right int16
	POSID       int
}

// Provider synthesizes OOV nodes at one byte position of buf. Returns nil
// or an empty slice if it has nothing to contribute at pos.
type Provider interface {
	Apply(buf *buffer.Buffer, pos int) []Node
}

// synthTable hands out sequential low-28-bit synthetic indices for one
// provider's OOV word ids. Each Provider owns one, so two providers'
// synthetic indices never collide within the lattice's per-provider
// bookkeeping even though the bit pattern alone cannot distinguish them
// (callers keep Node.WordID scoped to the Provider that produced it).
type synthTable struct{ next uint32 }

func (t *synthTable) issue() dic.WordID {
	id := dic.NewOOVWordID(t.next)
	t.next++
	return id
}

// SimpleOov emits one node covering exactly one character at every
// position, tagged with a single configured part of speech.
type SimpleOov struct {
	POSID             int
	Left, Right, Cost int16
	synth             synthTable
}

// NewSimpleOov builds a SimpleOov provider with the given fixed word
// parameters.
func NewSimpleOov(posID int, left, right, cost int16) *SimpleOov {
	return &SimpleOov{POSID: posID, Left: left, Right: right, Cost: cost}
}

func (p *SimpleOov) Apply(buf *buffer.Buffer, pos int) []Node {
	mod := buf.Modified()
	if pos >= len(mod) {
		return nil
	}
	_, size := utf8.DecodeRune(mod[pos:])
	return []Node{{
		Length: size, WordID: p.synth.issue(), Cost: p.Cost, Left: p.Left, Right: p.Right, POSID: p.POSID,
	}}
}

// MeCabOov reproduces the MeCab-style unknown-word heuristic:
// for the category of the character at pos, if that category's Invoke flag
// is set, or the lexicon produced nothing at pos, it emits a length-1 node,
// a maximal-same-category-run node if Group is set, and nodes of every
// length 1..Length. KANJINUMERIC category falls back to KANJI's
// definition when it has none of its own.
type MeCabOov struct {
	cats  *category.Table
	words map[category.Category][]wordEntry
	synth synthTable
}

type wordEntry struct {
	POSID             int
	Left, Right, Cost int16
}

// NewMeCabOov builds a MeCabOov provider over a parsed character-category
// table. Callers populate its per-category word entries with AddWord, as
// would be parsed from a MeCab-style unk.def word file.
func NewMeCabOov(cats *category.Table) *MeCabOov {
	return &MeCabOov{cats: cats, words: make(map[category.Category][]wordEntry)}
}

// AddWord registers one unknown-word entry for the given category, as
// would be parsed from a MeCab-style unk.def word file.
func (p *MeCabOov) AddWord(cat category.Category, posID int, left, right, cost int16) {
	if p.words == nil {
		p.words = make(map[category.Category][]wordEntry)
	}
	p.words[cat] = append(p.words[cat], wordEntry{POSID: posID, Left: left, Right: right, Cost: cost})
}

// ReadWordDef loads a MeCab-style unknown-word file (unk.def): one CSV
// line per entry, "CATEGORY,left_id,right_id,cost,POS1,...,POS6". posID
// resolves each entry's POS tuple against the dictionary's POS table.
// Comment lines start with '#'.
func (p *MeCabOov) ReadWordDef(r io.Reader, posID func(pos [6]string) (int, bool)) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 10 {
			return fmt.Errorf("unk.def line %d: want 10 fields, got %d: %w", lineNo, len(fields), dicerrors.ErrConfig)
		}
		cat, ok := category.ByName(fields[0])
		if !ok {
			return fmt.Errorf("unk.def line %d: unknown category %q: %w", lineNo, fields[0], dicerrors.ErrConfig)
		}
		left, err1 := strconv.ParseInt(fields[1], 10, 16)
		right, err2 := strconv.ParseInt(fields[2], 10, 16)
		cost, err3 := strconv.ParseInt(fields[3], 10, 16)
		if err1 != nil || err2 != nil || err3 != nil {
			return fmt.Errorf("unk.def line %d: malformed word parameters: %w", lineNo, dicerrors.ErrConfig)
		}
		var tuple [6]string
		copy(tuple[:], fields[4:10])
		id, ok := posID(tuple)
		if !ok {
			return fmt.Errorf("unk.def line %d: POS %v not in dictionary: %w", lineNo, tuple, dicerrors.ErrConfig)
		}
		p.AddWord(cat, id, int16(left), int16(right), int16(cost))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unk.def read: %w", err)
	}
	return nil
}

// Apply emits OOV nodes at pos if the position's category has Invoke set;
// callers that already know the lexicon produced nothing at pos should use
// ApplyForced instead, since MeCabOov has no lexicon access of its own.
func (p *MeCabOov) Apply(buf *buffer.Buffer, pos int) []Node {
	return p.apply(buf, pos, false)
}

// ApplyForced behaves like Apply but ignores the category's Invoke flag,
// treating the position as though invocation were forced (used by the
// lattice builder when the lexicon produced zero matches at pos, since a
// position the lexicon cannot cover still needs candidate nodes).
func (p *MeCabOov) ApplyForced(buf *buffer.Buffer, pos int) []Node {
	return p.apply(buf, pos, true)
}

func (p *MeCabOov) apply(buf *buffer.Buffer, pos int, forceInvoke bool) []Node {
	mod := buf.Modified()
	if pos >= len(mod) {
		return nil
	}
	mask := buf.CategoryAt(pos)
	if mask == 0 {
		mask = category.Default
	}
	def := p.cats.DefOf(mask)
	if !def.Invoke && !forceInvoke {
		return nil
	}

	wordCat := category.Primary(mask)
	if wordCat == category.KanjiNumeric {
		if _, ok := p.words[wordCat]; !ok {
			wordCat = category.Kanji
		}
	}
	entries := p.words[wordCat]
	if len(entries) == 0 {
		return nil
	}

	var nodes []Node
	emit := func(length int) {
		for _, e := range entries {
			nodes = append(nodes, Node{
				Length: length, WordID: p.synth.issue(), Cost: e.Cost, Left: e.Left, Right: e.Right, POSID: e.POSID,
			})
		}
	}

	_, firstSize := utf8.DecodeRune(mod[pos:])
	emit(firstSize)

	if def.Group {
		end := pos + firstSize
		for end < len(mod) {
			r, size := utf8.DecodeRune(mod[end:])
			if p.cats.CategoriesOf(r)&mask == 0 {
				break
			}
			end += size
		}
		if end > pos+firstSize {
			emit(end - pos)
		}
	}

	if def.Length > 1 {
		end := pos + firstSize
		for n := 2; n <= def.Length && end < len(mod); n++ {
			_, size := utf8.DecodeRune(mod[end:])
			end += size
			emit(end - pos)
		}
	}
	return nodes
}

// RegexOov applies a configured regular expression at the current
// position; on a match anchored at pos, it emits one node spanning the
// match. Patterns are RE2: no backreferences, no backtracking, linear
// scan time in the input.
type RegexOov struct {
	re                *regexp.Regexp
	maxLength         int // in code points, not bytes
	POSID             int
	Left, Right, Cost int16
	synth             synthTable
}

// NewRegexOov compiles pattern (which must be anchored with a leading ^ by
// the caller, since Apply always matches at pos) and builds a RegexOov
// provider with the given maximum match length in code points.
func NewRegexOov(pattern string, maxLength int, posID int, left, right, cost int16) (*RegexOov, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile OOV regex %q: %w: %w", pattern, dicerrors.ErrConfig, err)
	}
	return &RegexOov{re: re, maxLength: maxLength, POSID: posID, Left: left, Right: right, Cost: cost}, nil
}

func (p *RegexOov) Apply(buf *buffer.Buffer, pos int) []Node {
	mod := buf.Modified()
	if pos >= len(mod) {
		return nil
	}
	loc := p.re.FindIndex(mod[pos:])
	if loc == nil || loc[0] != 0 {
		return nil
	}
	matched := mod[pos : pos+loc[1]]
	if utf8.RuneCount(matched) > p.maxLength {
		return nil
	}
	return []Node{{
		Length: loc[1], WordID: p.synth.issue(), Cost: p.Cost, Left: p.Left, Right: p.Right, POSID: p.POSID,
	}}
}
