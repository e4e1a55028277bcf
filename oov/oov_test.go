package oov

import (
	"strings"
	"testing"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic/category"
)

func newCatBuffer(text string, defs map[category.Category]category.Def) *buffer.Buffer {
	tbl := category.NewTable(defs, []category.Range{
		{Lo: 0x30A1, Hi: 0x30FA, Mask: category.Katakana},
		{Lo: 0x4E00, Hi: 0x9FFF, Mask: category.Kanji},
	})
	return buffer.New([]byte(text), tbl)
}

func TestSimpleOovOneCharacter(t *testing.T) {
	b := newCatBuffer("阿quei", map[category.Category]category.Def{category.Default: {}})
	p := NewSimpleOov(5, 1, 2, 100)
	nodes := p.Apply(b, 0)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if got := nodes[0].Length; got != len("阿") {
		t.Errorf("Length = %d, want %d", got, len("阿"))
	}
	if !nodes[0].WordID.IsOOV() {
		t.Error("SimpleOov word id must be OOV")
	}
}

func TestSimpleOovIssuesDistinctIDs(t *testing.T) {
	b := newCatBuffer("ab", map[category.Category]category.Def{category.Default: {}})
	p := NewSimpleOov(0, 0, 0, 0)
	n0 := p.Apply(b, 0)
	n1 := p.Apply(b, 1)
	if n0[0].WordID == n1[0].WordID {
		t.Error("successive SimpleOov nodes must carry distinct synthetic ids")
	}
}

func TestMeCabOovForcedAndGroup(t *testing.T) {
	defs := map[category.Category]category.Def{
		category.Default:  {},
		category.Katakana: {Invoke: false, Group: true, Length: 1},
	}
	b := newCatBuffer("カツ丼", defs)
	cats := category.NewTable(defs, []category.Range{
		{Lo: 0x30A1, Hi: 0x30FA, Mask: category.Katakana},
		{Lo: 0x4E00, Hi: 0x9FFF, Mask: category.Kanji},
	})
	p := NewMeCabOov(cats)
	p.AddWord(category.Katakana, 7, 1, 2, 50)

	// not invoked, lexicon found nothing -> Apply (non-forced) yields nothing
	if nodes := p.Apply(b, 0); len(nodes) != 0 {
		t.Errorf("Apply() without force = %v, want empty (Invoke=false)", nodes)
	}

	nodes := p.ApplyForced(b, 0)
	if len(nodes) == 0 {
		t.Fatal("ApplyForced() returned no nodes")
	}
	// one length-1 node for カ
	foundLen1 := false
	foundGroup := false
	for _, n := range nodes {
		if n.Length == len("カ") {
			foundLen1 = true
		}
		if n.Length == len("カツ") {
			foundGroup = true
		}
	}
	if !foundLen1 {
		t.Error("expected a length-1 node")
	}
	if !foundGroup {
		t.Error("expected a maximal-run group node spanning カツ")
	}
}

func TestMeCabOovKanjiNumericFallsBackToKanji(t *testing.T) {
	defs := map[category.Category]category.Def{
		category.Default: {},
		category.Kanji:   {Invoke: true, Group: false, Length: 1},
	}
	cats := category.NewTable(defs, []category.Range{
		{Lo: 0x4E00, Hi: 0x4E02, Mask: category.KanjiNumeric}, // implies Kanji too
	})
	b := buffer.New([]byte("一"), cats)
	p := NewMeCabOov(cats)
	p.AddWord(category.Kanji, 9, 0, 0, 10) // only a KANJI entry, no KANJINUMERIC entry

	nodes := p.ApplyForced(b, 0)
	if len(nodes) == 0 {
		t.Fatal("expected KANJINUMERIC to fall back to KANJI's word entries")
	}
}

func TestReadWordDef(t *testing.T) {
	defs := map[category.Category]category.Def{
		category.Default:  {},
		category.Katakana: {Invoke: true, Group: true, Length: 2},
	}
	cats := category.NewTable(defs, []category.Range{
		{Lo: 0x30A1, Hi: 0x30FA, Mask: category.Katakana},
	})
	p := NewMeCabOov(cats)

	unkDef := `# unknown word entries
KATAKANA,5,5,4700,名詞,普通名詞,一般,*,*,*
DEFAULT,5,5,5000,補助記号,一般,*,*,*,*
`
	posID := func(pos [6]string) (int, bool) {
		switch pos[0] {
		case "名詞":
			return 3, true
		case "補助記号":
			return 4, true
		}
		return 0, false
	}
	if err := p.ReadWordDef(strings.NewReader(unkDef), posID); err != nil {
		t.Fatalf("ReadWordDef: %v", err)
	}

	b := newCatBuffer("カツ", defs)
	nodes := p.Apply(b, 0)
	if len(nodes) == 0 {
		t.Fatal("expected nodes from the loaded KATAKANA entry")
	}
	if nodes[0].POSID != 3 || nodes[0].Cost != 4700 {
		t.Errorf("node = %+v, want POSID 3 cost 4700", nodes[0])
	}
}

func TestReadWordDefRejectsUnknownPOS(t *testing.T) {
	cats := category.NewTable(map[category.Category]category.Def{category.Default: {}}, nil)
	p := NewMeCabOov(cats)
	err := p.ReadWordDef(strings.NewReader("DEFAULT,1,1,100,未知,*,*,*,*,*\n"), func([6]string) (int, bool) { return 0, false })
	if err == nil {
		t.Fatal("expected error for a POS tuple the dictionary does not know")
	}
}

func TestRegexOovMaxLengthInCodePoints(t *testing.T) {
	p, err := NewRegexOov(`^[0-9]+`, 3, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("NewRegexOov: %v", err)
	}
	b := newCatBuffer("12345", map[category.Category]category.Def{category.Default: {}})
	if nodes := p.Apply(b, 0); len(nodes) != 0 {
		t.Errorf("expected no match because 5 code points exceeds max_length=3, got %v", nodes)
	}

	p2, err := NewRegexOov(`^[0-9]+`, 10, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("NewRegexOov: %v", err)
	}
	nodes := p2.Apply(b, 0)
	if len(nodes) != 1 || nodes[0].Length != len("12345") {
		t.Errorf("RegexOov match = %v, want single node spanning 12345", nodes)
	}
}

func TestRegexOovOnlyMatchesAtPosition(t *testing.T) {
	p, err := NewRegexOov(`^x`, 10, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("NewRegexOov: %v", err)
	}
	b := newCatBuffer("abcx", map[category.Category]category.Def{category.Default: {}})
	if nodes := p.Apply(b, 0); len(nodes) != 0 {
		t.Errorf("expected no anchored match, got %v", nodes)
	}
}
