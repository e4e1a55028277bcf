package dic

import (
	"testing"

	"github.com/sudachigo/sudachigo/dic/category"
)

func smallFixture() (*Grammar, *Lexicon, *category.Table) {
	pos := []POS{
		{"名詞", "普通名詞", "一般", "*", "*", "*"},
		{"助詞", "格助詞", "*", "*", "*", "*"},
	}
	grammar, err := NewGrammar(pos, 2, 2, []int16{0, 1, 1, 0})
	if err != nil {
		panic(err)
	}

	idInu := NewWordID(0, 0)
	idGa := NewWordID(0, 1)
	trie := BuildTrie(map[string][]WordID{
		"犬": {idInu},
		"が": {idGa},
	})
	lex := NewLexicon(trie,
		[]WordParam{{Left: 0, Right: 0, Cost: 100}, {Left: 1, Right: 1, Cost: 50}},
		[]WordInfo{
			{Surface: "犬", HeadWordLength: len("犬"), POSID: 0, NormalizedForm: "犬", ReadingForm: "イヌ", DictionaryFormWordID: idInu},
			{Surface: "が", HeadWordLength: len("が"), POSID: 1, NormalizedForm: "が", ReadingForm: "ガ", DictionaryFormWordID: idGa},
		},
	)

	cat := category.NewTable(
		map[category.Category]category.Def{category.Default: {Invoke: true, Length: 1}},
		[]category.Range{{Lo: 0x4E00, Hi: 0x9FFF, Mask: category.Kanji}},
	)
	return grammar, lex, cat
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	grammar, lex, cat := smallFixture()
	raw, err := Encode(VersionSystem2, "test system dictionary", grammar, lex, cat)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	d, err := LoadBytes(raw)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	defer d.Close()

	if d.Version() != VersionSystem2 {
		t.Errorf("Version() = %v, want VersionSystem2", d.Version())
	}
	if d.Description() != "test system dictionary" {
		t.Errorf("Description() = %q", d.Description())
	}
	if d.Grammar() == nil {
		t.Fatal("Grammar() = nil, want non-nil for a system dictionary")
	}
	if d.Category() == nil {
		t.Fatal("Category() = nil, want non-nil")
	}

	matches := d.Lexicon().Trie().CommonPrefixSearch([]byte("犬が"), 0)
	if len(matches) != 1 || matches[0].Length != len("犬") {
		t.Fatalf("CommonPrefixSearch(犬が) = %+v, want one match of length %d", matches, len("犬"))
	}

	table := d.POSTable()
	if len(table) != 2 || table[0][0] != "名詞" || table[1][0] != "助詞" {
		t.Errorf("POSTable() = %v, want the two fixture tuples in order", table)
	}
}

func TestLoadBytesRejectsBadMagic(t *testing.T) {
	if _, err := LoadBytes([]byte("not a dictionary at all, way too short")); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

func TestLoadBytesRejectsUserDictionaryWithGrammar(t *testing.T) {
	grammar, lex, _ := smallFixture()
	raw, err := Encode(VersionUser1, "bad user dict", grammar, lex, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := LoadBytes(raw); err == nil {
		t.Fatal("expected an error: user dictionaries must not carry a grammar block")
	}
}

func TestDictionarySetStacksUserOverSystem(t *testing.T) {
	grammar, lex, cat := smallFixture()
	sysRaw, err := Encode(VersionSystem2, "system", grammar, lex, cat)
	if err != nil {
		t.Fatalf("Encode system: %v", err)
	}
	sysDict, err := LoadBytes(sysRaw)
	if err != nil {
		t.Fatalf("LoadBytes system: %v", err)
	}

	idNeko := NewWordID(0, 0)
	userTrie := BuildTrie(map[string][]WordID{"猫": {idNeko}})
	userLex := NewLexicon(userTrie,
		[]WordParam{{Left: 0, Right: 0, Cost: 80}},
		[]WordInfo{{Surface: "猫", HeadWordLength: len("猫"), POSID: 0, NormalizedForm: "猫", ReadingForm: "ネコ", DictionaryFormWordID: idNeko}},
	)
	userRaw, err := Encode(VersionUser1, "user", nil, userLex, nil)
	if err != nil {
		t.Fatalf("Encode user: %v", err)
	}
	userDict, err := LoadBytes(userRaw)
	if err != nil {
		t.Fatalf("LoadBytes user: %v", err)
	}

	ds, err := NewDictionarySet(sysDict, userDict)
	if err != nil {
		t.Fatalf("NewDictionarySet: %v", err)
	}
	defer ds.Close()

	matches := ds.CommonPrefixSearch([]byte("猫"), 0)
	if len(matches) != 1 {
		t.Fatalf("CommonPrefixSearch(猫) = %+v, want one match from the user dictionary", matches)
	}
	if matches[0].WordID.DictIndex() != 1 {
		t.Errorf("matched word id dict index = %d, want 1 (user)", matches[0].WordID.DictIndex())
	}
	info, ok := ds.WordInfo(matches[0].WordID, SubsetSurface)
	if !ok || info.Surface != "猫" {
		t.Errorf("WordInfo(猫 match) = %+v, ok=%v", info, ok)
	}

	// Connection costs always resolve against the system grammar.
	if got := ds.ConnectCost(0, 0); got != 0 {
		t.Errorf("ConnectCost(0,0) = %d, want 0", got)
	}

	if got := userDict.POSTable(); got != nil {
		t.Errorf("user dictionary POSTable() = %v, want nil (no grammar block)", got)
	}
}

func TestDictionarySetRejectsTooManyUserDictionaries(t *testing.T) {
	grammar, lex, cat := smallFixture()
	sysRaw, _ := Encode(VersionSystem2, "system", grammar, lex, cat)
	sysDict, _ := LoadBytes(sysRaw)

	users := make([]*Dictionary, maxUserDictionaries+1)
	for i := range users {
		users[i] = sysDict // identity doesn't matter for this bound check
	}
	if _, err := NewDictionarySet(sysDict, users...); err == nil {
		t.Fatal("expected an error for exceeding maxUserDictionaries")
	}
}
