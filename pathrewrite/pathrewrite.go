// Package pathrewrite implements the fixed-order path rewriters applied to
// the best path recovered from the lattice: JoinNumeric,
// JoinKatakanaOov, then InhibitConnection. Like the rewrite and oov
// packages, this is a closed, tagged-variant pipeline rather than an open
// plugin registry.
package pathrewrite

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dic/category"
	"github.com/sudachigo/sudachigo/lattice"
)

// Rewriter transforms a best path into a (possibly shorter) rewritten
// path. Implementations must not assume CategoryAt/surface lookups are
// cheap across calls; Pipeline runs each stage exactly once.
type Rewriter interface {
	Rewrite(path []lattice.Node, ctx *Context) []lattice.Node
}

// Context bundles the lookups path rewriters need: category classification
// of the modified buffer bytes and dictionary word info/surface access.
type Context struct {
	Buf      Surfacer
	Lookup   SurfaceLookup
	Inhibits map[[2]int16]bool // InhibitConnection's (left_id,right_id) deny-list
}

// Surfacer exposes the modified-text bytes and per-byte category a path
// rewriter needs to classify node spans without re-deriving them.
type Surfacer interface {
	Modified() []byte
	CategoryAt(i int) category.Category
}

// SurfaceLookup resolves a node's surface form and POS id, the minimum a
// path rewriter needs beyond raw byte spans.
type SurfaceLookup interface {
	WordInfo(id dic.WordID, subset dic.WordInfoSubset) (dic.WordInfo, bool)
}

// Pipeline runs JoinNumeric, then JoinKatakanaOov, then InhibitConnection,
// in that fixed order.
type Pipeline struct {
	numeric  *JoinNumeric
	katakana *JoinKatakanaOov
	inhibit  *InhibitConnection
}

// NewPipeline builds the fixed path-rewrite pipeline.
func NewPipeline(numeric *JoinNumeric, katakana *JoinKatakanaOov, inhibit *InhibitConnection) *Pipeline {
	return &Pipeline{numeric: numeric, katakana: katakana, inhibit: inhibit}
}

// Run applies all three stages in order.
func (p *Pipeline) Run(path []lattice.Node, ctx *Context) []lattice.Node {
	path = p.numeric.Rewrite(path, ctx)
	path = p.katakana.Rewrite(path, ctx)
	path = p.inhibit.Rewrite(path, ctx)
	return path
}

// JoinNumeric merges adjacent NUMERIC/KANJINUMERIC nodes whose concatenated
// surface parses as a valid number into a single node carrying the
// canonical arabic-numeral normalized form.
type JoinNumeric struct {
	POSID             int
	Left, Right, Cost int16
}

// NewJoinNumeric builds a JoinNumeric rewriter tagging merged numeral nodes
// with the given POS and word parameters.
func NewJoinNumeric(posID int, left, right, cost int16) *JoinNumeric {
	return &JoinNumeric{POSID: posID, Left: left, Right: right, Cost: cost}
}

func (r *JoinNumeric) Rewrite(path []lattice.Node, ctx *Context) []lattice.Node {
	var out []lattice.Node
	i := 0
	for i < len(path) {
		if !isNumericNode(path[i], ctx) {
			out = append(out, path[i])
			i++
			continue
		}
		j := i + 1
		for j < len(path) && isNumericNode(path[j], ctx) {
			j++
		}
		run := path[i:j]
		surface := joinedSurface(run, ctx)
		if canonical, ok := parseNumeral(surface); ok && j > i+1 {
			out = append(out, lattice.Node{
				Begin: run[0].Begin, End: run[len(run)-1].End,
				Left: r.Left, Right: r.Right, Cost: r.Cost,
				IsOOV: true, POSID: r.POSID, WordID: dic.NewOOVWordID(0),
				NormalizedForm: canonical,
			})
		} else {
			out = append(out, run...)
		}
		i = j
	}
	return out
}

func isNumericNode(n lattice.Node, ctx *Context) bool {
	if n.Begin >= n.End {
		return false
	}
	cat := ctx.Buf.CategoryAt(n.Begin)
	return cat.Has(category.Numeric) || cat.Has(category.KanjiNumeric)
}

func joinedSurface(nodes []lattice.Node, ctx *Context) string {
	var b strings.Builder
	mod := ctx.Buf.Modified()
	for _, n := range nodes {
		b.Write(mod[n.Begin:n.End])
	}
	return b.String()
}

// numeral parser states.
type numState int

const (
	numStart numState = iota
	numInt
	numDot
	numFrac
	numCommaExpect3
	numKanjiSmall
	numKanjiMult
)

var kanjiDigits = map[rune]int{'〇': 0, '一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9}
var kanjiMultipliers = map[rune]bool{'十': true, '百': true, '千': true, '万': true, '億': true, '兆': true}

// parseNumeral runs the numeral parser state machine:
// accepts decimal integers/fractions, comma-grouped thousands (each group
// after the first comma must be exactly 3 digits), and kanji digit strings
// mixing digits 一..九 with multipliers 十/百/千/万/億/兆. Accepts only if
// the final state is INT, FRAC, or KANJI_MULT.
func parseNumeral(s string) (string, bool) {
	state := numStart
	commaDigits := 0
	grouped := false // a comma has been seen; further digits only via 3-digit groups
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', isFullwidthDigit(r):
			switch state {
			case numStart, numInt:
				if grouped {
					return "", false
				}
				state = numInt
			case numCommaExpect3:
				commaDigits++
				if commaDigits == 3 {
					state = numInt
					commaDigits = 0
				}
			case numDot, numFrac:
				state = numFrac
			default:
				return "", false
			}
		case r == '.', r == '．':
			if state != numInt {
				return "", false
			}
			state = numDot
		case r == ',', r == '，':
			if state != numInt {
				return "", false
			}
			state = numCommaExpect3
			commaDigits = 0
			grouped = true
		case kanjiDigitOK(r, state):
			if _, ok := kanjiMultipliers[r]; ok {
				state = numKanjiMult
			} else {
				state = numKanjiSmall
			}
		default:
			return "", false
		}
	}
	switch state {
	case numInt, numFrac, numKanjiMult:
		return normalizeArabic(s), true
	}
	return "", false
}

func kanjiDigitOK(r rune, state numState) bool {
	if state != numStart && state != numKanjiSmall && state != numKanjiMult {
		return false
	}
	_, isDigit := kanjiDigits[r]
	_, isMult := kanjiMultipliers[r]
	return isDigit || isMult
}

func isFullwidthDigit(r rune) bool { return r >= '０' && r <= '９' }

// normalizeArabic produces the canonical arabic-numeral normalized form
// for a validated numeral string: fullwidth digits and punctuation fold to
// ASCII, thousands separators are dropped, and kanji numerals evaluate to
// their decimal value.
func normalizeArabic(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case isFullwidthDigit(r):
			b.WriteRune('0' + (r - '０'))
		case r == '.', r == '．':
			b.WriteByte('.')
		case r == ',', r == '，':
			// thousands separators are dropped from the canonical form
		default:
			return strconv.FormatInt(kanjiValue(s), 10)
		}
	}
	return b.String()
}

var kanjiSmallMultipliers = map[rune]int64{'十': 10, '百': 100, '千': 1000}
var kanjiBigMultipliers = map[rune]int64{'万': 1e4, '億': 1e8, '兆': 1e12}

// kanjiValue evaluates a kanji numeral already validated by parseNumeral:
// 十/百/千 scale the preceding digit (or an implicit 一) within a section,
// 万/億/兆 close the section and scale the accumulated value.
func kanjiValue(s string) int64 {
	var total, section, digit int64
	for _, r := range s {
		switch {
		case isKanjiDigit(r):
			digit = int64(kanjiDigits[r])
		case kanjiSmallMultipliers[r] != 0:
			if digit == 0 {
				digit = 1
			}
			section += digit * kanjiSmallMultipliers[r]
			digit = 0
		case kanjiBigMultipliers[r] != 0:
			section += digit
			if section == 0 {
				section = 1
			}
			total += section * kanjiBigMultipliers[r]
			section, digit = 0, 0
		}
	}
	return total + section + digit
}

func isKanjiDigit(r rune) bool {
	_, ok := kanjiDigits[r]
	return ok
}

// JoinKatakanaOov merges runs of katakana OOV nodes at least MinLength
// bytes long into a single OOV node tagged with the configured POS.
type JoinKatakanaOov struct {
	MinLength         int
	POSID             int
	Left, Right, Cost int16
}

// NewJoinKatakanaOov builds a JoinKatakanaOov rewriter.
func NewJoinKatakanaOov(minLength, posID int, left, right, cost int16) *JoinKatakanaOov {
	return &JoinKatakanaOov{MinLength: minLength, POSID: posID, Left: left, Right: right, Cost: cost}
}

func (r *JoinKatakanaOov) Rewrite(path []lattice.Node, ctx *Context) []lattice.Node {
	var out []lattice.Node
	i := 0
	for i < len(path) {
		if !isKatakanaOov(path[i], ctx) {
			out = append(out, path[i])
			i++
			continue
		}
		j := i + 1
		for j < len(path) && isKatakanaOov(path[j], ctx) {
			j++
		}
		run := path[i:j]
		length := run[len(run)-1].End - run[0].Begin
		if length >= r.MinLength && len(run) > 1 {
			out = append(out, lattice.Node{
				Begin: run[0].Begin, End: run[len(run)-1].End,
				Left: r.Left, Right: r.Right, Cost: r.Cost,
				IsOOV: true, POSID: r.POSID, WordID: dic.NewOOVWordID(0),
			})
		} else {
			out = append(out, run...)
		}
		i = j
	}
	return out
}

func isKatakanaOov(n lattice.Node, ctx *Context) bool {
	if !n.IsOOV || n.Begin >= n.End {
		return false
	}
	for i := n.Begin; i < n.End; {
		cat := ctx.Buf.CategoryAt(i)
		if !cat.Has(category.Katakana) {
			return false
		}
		_, size := utf8.DecodeRune(ctx.Buf.Modified()[i:])
		i += size
	}
	return true
}

// InhibitConnection finds adjacent pairs in the path whose (left_id,
// right_id) connection appears in the configured deny list; its Rewrite
// returns the path unchanged and Violations lists the pairs. Since the path has
// already been finalized by the time rewriters run, this stage reports the
// violation rather than silently repairing the path: callers that want
// automatic re-selection should re-run the lattice search with the pair
// added to its own inhibited-connections set and retry, which is the
// approach the analyzer orchestrator takes.
type InhibitConnection struct {
	Pairs map[[2]int16]bool
}

// NewInhibitConnection builds an InhibitConnection rewriter over a set of
// denied (left_id, right_id) pairs.
func NewInhibitConnection(pairs [][2]int16) *InhibitConnection {
	m := make(map[[2]int16]bool, len(pairs))
	for _, p := range pairs {
		m[p] = true
	}
	return &InhibitConnection{Pairs: m}
}

// Violations reports the indices i such that the connection between
// path[i-1] and path[i] is inhibited. Safe to call on a nil *InhibitConnection
// (reports no violations), so a Pipeline built without an inhibit stage
// needs no special-casing by its caller.
func (r *InhibitConnection) Violations(path []lattice.Node) []int {
	if r == nil {
		return nil
	}
	var out []int
	for i := 1; i < len(path); i++ {
		if r.Pairs[[2]int16{path[i-1].Right, path[i].Left}] {
			out = append(out, i)
		}
	}
	return out
}

// PairsOrNil returns the configured deny list, or nil for a nil
// *InhibitConnection, for callers building a Context without special-casing
// an analyzer configured with no InhibitConnection stage.
func (r *InhibitConnection) PairsOrNil() map[[2]int16]bool {
	if r == nil {
		return nil
	}
	return r.Pairs
}

// Rewrite is a no-op pass-through: InhibitConnection's actual effect (force
// re-selection of the next-best predecessor) happens at the lattice-search
// level, driven by Violations; it has no local rewrite to apply to an
// already-finalized path.
func (r *InhibitConnection) Rewrite(path []lattice.Node, ctx *Context) []lattice.Node {
	return path
}
