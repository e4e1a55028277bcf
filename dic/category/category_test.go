package category

import (
	"strings"
	"testing"
)

const fixtureCharDef = `# comment line, ignored
DEFAULT 0 1 0
KANJI 0 0 0
KANJINUMERIC 0 0 0
HIRAGANA 0 1 0
KATAKANA 1 1 2
NUMERIC 1 0 0
SPACE 0 0 0

0x3041..0x3096 HIRAGANA
0x30A1..0x30FA KATAKANA
0x4E00..0x9FFF KANJI
0x4E00..0x4E02 KANJINUMERIC
0x0030..0x0039 NUMERIC
0x0020 SPACE
`

func TestParseCharDef(t *testing.T) {
	tbl, err := ParseCharDef(strings.NewReader(fixtureCharDef))
	if err != nil {
		t.Fatalf("ParseCharDef: %v", err)
	}

	if got := tbl.CategoriesOf('あ'); !got.Has(Hiragana) {
		t.Errorf("'あ' categories = %v, want HIRAGANA", got)
	}
	if got := tbl.CategoriesOf('ア'); !got.Has(Katakana) {
		t.Errorf("'ア' categories = %v, want KATAKANA", got)
	}
	if got := tbl.CategoriesOf('9'); !got.Has(Numeric) {
		t.Errorf("'9' categories = %v, want NUMERIC", got)
	}
	// mandatory fallback
	if got := tbl.CategoriesOf('🙂'); got != Default {
		t.Errorf("unmapped rune categories = %v, want DEFAULT", got)
	}
}

func TestKanjiNumericImpliesKanji(t *testing.T) {
	tbl, err := ParseCharDef(strings.NewReader(fixtureCharDef))
	if err != nil {
		t.Fatalf("ParseCharDef: %v", err)
	}
	got := tbl.CategoriesOf('一') // U+4E00, in the KANJINUMERIC range
	if !got.Has(KanjiNumeric) || !got.Has(Kanji) {
		t.Errorf("KANJINUMERIC rune categories = %v, want both KANJINUMERIC and KANJI", got)
	}
}

func TestDefOf(t *testing.T) {
	tbl, err := ParseCharDef(strings.NewReader(fixtureCharDef))
	if err != nil {
		t.Fatalf("ParseCharDef: %v", err)
	}
	def := tbl.DefOf(Katakana)
	if !def.Invoke || !def.Group || def.Length != 2 {
		t.Errorf("DefOf(KATAKANA) = %+v, want {Invoke:true Group:true Length:2}", def)
	}
	def = tbl.DefOf(Default)
	if def.Invoke || !def.Group {
		t.Errorf("DefOf(DEFAULT) = %+v, want {Invoke:false Group:true}", def)
	}
}

func TestParseCharDefMissingDefault(t *testing.T) {
	_, err := ParseCharDef(strings.NewReader("KANJI 0 0 0\n0x4E00 KANJI\n"))
	if err == nil {
		t.Fatal("expected error for missing mandatory DEFAULT definition")
	}
}

func TestParseCharDefMalformed(t *testing.T) {
	cases := []string{
		"DEFAULT notabool 1 0\n",
		"0xZZZZ KANJI\nDEFAULT 0 1 0\n",
		"0x4E00 UNKNOWNCAT\nDEFAULT 0 1 0\n",
	}
	for _, c := range cases {
		if _, err := ParseCharDef(strings.NewReader(c)); err == nil {
			t.Errorf("ParseCharDef(%q) expected error, got nil", c)
		}
	}
}

func TestNewTableExportRoundTrip(t *testing.T) {
	defs := map[Category]Def{Default: {}, Kanji: {Invoke: true}}
	ranges := []Range{{Lo: 0x4E00, Hi: 0x9FFF, Mask: Kanji}}
	tbl := NewTable(defs, ranges)

	exportedDefs := tbl.ExportDefs()
	if exportedDefs[Kanji] != (Def{Invoke: true}) {
		t.Errorf("ExportDefs()[Kanji] = %+v, want {Invoke:true}", exportedDefs[Kanji])
	}
	exportedRanges := tbl.ExportRanges()
	if len(exportedRanges) != 1 || exportedRanges[0].Lo != 0x4E00 {
		t.Errorf("ExportRanges() = %+v", exportedRanges)
	}

	rebuilt := NewTable(exportedDefs, exportedRanges)
	if rebuilt.CategoriesOf('漢') != tbl.CategoriesOf('漢') {
		t.Error("rebuilt table disagrees with original on a mapped rune")
	}
}

func FuzzParseCharDef(f *testing.F) {
	f.Add(fixtureCharDef)
	f.Add("")
	f.Add("DEFAULT 0 1 0\n")
	f.Fuzz(func(t *testing.T, s string) {
		tbl, err := ParseCharDef(strings.NewReader(s))
		if err != nil {
			return
		}
		// must never panic on any rune, mapped or not
		for _, r := range "hello世界🙂\x00" {
			_ = tbl.CategoriesOf(r)
		}
	})
}
