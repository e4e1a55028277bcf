package lattice

import (
	"errors"
	"testing"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dicerrors"
	"github.com/sudachigo/sudachigo/oov"
)

// fakeLookup is a hand-built Lookup/WordInfoLookup over a small fixed
// vocabulary, standing in for a *dic.DictionarySet in tests.
type fakeLookup struct {
	// entries maps a surface string to the word ids it produces.
	entries map[string][]dic.WordID
	params  map[dic.WordID]dic.WordParam
	infos   map[dic.WordID]dic.WordInfo
	connect func(left, right int16) int16
}

func (f *fakeLookup) CommonPrefixSearch(s []byte, from int) []dic.Match {
	var out []dic.Match
	text := string(s[from:])
	for surf, ids := range f.entries {
		if len(surf) <= len(text) && text[:len(surf)] == surf {
			for _, id := range ids {
				out = append(out, dic.Match{WordID: id, Length: len(surf)})
			}
		}
	}
	return out
}

func (f *fakeLookup) Param(id dic.WordID) (dic.WordParam, bool) {
	p, ok := f.params[id]
	return p, ok
}

func (f *fakeLookup) ConnectCost(left, right int16) int16 {
	if f.connect != nil {
		return f.connect(left, right)
	}
	return 0
}

func (f *fakeLookup) WordInfo(id dic.WordID, subset dic.WordInfoSubset) (dic.WordInfo, bool) {
	info, ok := f.infos[id]
	return info, ok
}

func TestBuildPicksMinimumCostPath(t *testing.T) {
	// "ab" can be read as one two-char word (cost 100) or two one-char
	// words (cost 10 each, total 20 plus connect costs); the DP must
	// prefer the cheaper two-word split.
	idAB := dic.NewWordID(0, 0)
	idA := dic.NewWordID(0, 1)
	idB := dic.NewWordID(0, 2)
	lk := &fakeLookup{
		entries: map[string][]dic.WordID{
			"ab": {idAB},
			"a":  {idA},
			"b":  {idB},
		},
		params: map[dic.WordID]dic.WordParam{
			idAB: {Left: 1, Right: 1, Cost: 100},
			idA:  {Left: 1, Right: 1, Cost: 10},
			idB:  {Left: 1, Right: 1, Cost: 10},
		},
	}
	buf := buffer.New([]byte("ab"), nil)
	l := New()
	if err := Build(buf, lk, nil, l); err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := l.BestPath()
	if len(path) != 2 {
		t.Fatalf("BestPath() = %v, want 2 nodes (a, b)", path)
	}
	if path[0].WordID != idA || path[1].WordID != idB {
		t.Errorf("BestPath() word ids = %v,%v want %v,%v", path[0].WordID, path[1].WordID, idA, idB)
	}
}

func TestBuildTieBreakPrefersLongerPredecessor(t *testing.T) {
	// Two predecessors reach a node with identical total cost; the
	// tie-break prefers the longer predecessor node.
	idShort := dic.NewWordID(0, 0) // length 1, "x"
	idLong := dic.NewWordID(0, 1)  // length 2, "xa" ending at same boundary as a competing 1-char run
	idTail := dic.NewWordID(0, 2)
	lk := &fakeLookup{
		entries: map[string][]dic.WordID{
			"x":  {idShort},
			"xa": {idLong},
			"a":  {idTail}, // placed so "x"+"a" and "xa" both reach position 2
		},
		params: map[dic.WordID]dic.WordParam{
			idShort: {Cost: 5},
			idLong:  {Cost: 10}, // x(5) + a(?) vs xa(10): arranged so totals tie
			idTail:  {Cost: 5},
		},
	}
	buf := buffer.New([]byte("xa"), nil)
	l := New()
	if err := Build(buf, lk, nil, l); err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := l.BestPath()
	if len(path) != 1 || path[0].WordID != idLong {
		t.Errorf("BestPath() = %v, want single longer node %v (tie-break)", path, idLong)
	}
}

func TestBuildEosNotReachableWithoutOOV(t *testing.T) {
	lk := &fakeLookup{entries: map[string][]dic.WordID{}}
	buf := buffer.New([]byte("zz"), nil)
	l := New()
	err := Build(buf, lk, nil, l)
	if !errors.Is(err, dicerrors.ErrEosNotReachable) {
		t.Fatalf("Build() error = %v, want ErrEosNotReachable", err)
	}
}

func TestBuildFallsBackToOOVProvider(t *testing.T) {
	lk := &fakeLookup{entries: map[string][]dic.WordID{}}
	buf := buffer.New([]byte("zz"), nil)
	l := New()
	p := oov.NewSimpleOov(1, 0, 0, 5)
	if err := Build(buf, lk, []oov.Provider{p}, l); err != nil {
		t.Fatalf("Build with OOV provider: %v", err)
	}
	path := l.BestPath()
	if len(path) != 2 {
		t.Fatalf("BestPath() = %v, want 2 OOV nodes", path)
	}
	for _, n := range path {
		if !n.IsOOV {
			t.Error("expected all nodes to be OOV")
		}
	}
}

func TestExpandPathSplitsModeA(t *testing.T) {
	parent := dic.NewWordID(0, 0)
	child1 := dic.NewWordID(0, 1)
	child2 := dic.NewWordID(0, 2)
	lk := &fakeLookup{
		infos: map[dic.WordID]dic.WordInfo{
			parent: {SplitsA: []dic.WordID{child1, child2}},
			child1: {HeadWordLength: 2},
			child2: {HeadWordLength: 1},
		},
	}
	path := []Node{{Begin: 0, End: 3, WordID: parent}}
	out, err := ExpandPath(path, ModeA, lk)
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("ExpandPath() = %v, want 2 children", out)
	}
	if out[0].Begin != 0 || out[0].End != 2 || out[1].Begin != 2 || out[1].End != 3 {
		t.Errorf("ExpandPath() spans = %+v, want [0,2) [2,3)", out)
	}
}

func TestExpandPathModeCNoOp(t *testing.T) {
	path := []Node{{Begin: 0, End: 3, WordID: dic.NewWordID(0, 0)}}
	out, err := ExpandPath(path, ModeC, &fakeLookup{})
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if len(out) != 1 || out[0] != path[0] {
		t.Errorf("ExpandPath(ModeC) = %v, want unchanged path", out)
	}
}

func TestExpandPathInvalidSplitSpanMismatch(t *testing.T) {
	parent := dic.NewWordID(0, 0)
	child1 := dic.NewWordID(0, 1)
	lk := &fakeLookup{
		infos: map[dic.WordID]dic.WordInfo{
			parent: {SplitsB: []dic.WordID{child1}},
			child1: {HeadWordLength: 1}, // parent spans 3 bytes, child covers only 1
		},
	}
	path := []Node{{Begin: 0, End: 3, WordID: parent}}
	_, err := ExpandPath(path, ModeB, lk)
	if !errors.Is(err, dicerrors.ErrInvalidSplit) {
		t.Fatalf("ExpandPath() error = %v, want ErrInvalidSplit", err)
	}
}

func TestExpandPathSkipsOOVNodes(t *testing.T) {
	path := []Node{{Begin: 0, End: 1, IsOOV: true}}
	out, err := ExpandPath(path, ModeA, &fakeLookup{})
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if len(out) != 1 || !out[0].IsOOV {
		t.Errorf("ExpandPath() should pass OOV nodes through unchanged, got %v", out)
	}
}

func TestInhibitingLookupForcesAlternatePath(t *testing.T) {
	idAB := dic.NewWordID(0, 0)
	idA := dic.NewWordID(0, 1)
	idB := dic.NewWordID(0, 2)
	lk := &fakeLookup{
		entries: map[string][]dic.WordID{
			"ab": {idAB},
			"a":  {idA},
			"b":  {idB},
		},
		params: map[dic.WordID]dic.WordParam{
			idAB: {Left: 1, Right: 2, Cost: 1}, // cheapest absent inhibition
			idA:  {Left: 5, Right: 6, Cost: 50},
			idB:  {Left: 6, Right: 1, Cost: 50},
		},
	}
	buf := buffer.New([]byte("ab"), nil)
	l := New()
	if err := Build(buf, lk, nil, l); err != nil {
		t.Fatalf("Build (uninhibited): %v", err)
	}
	path := l.BestPath()
	if len(path) != 1 || path[0].WordID != idAB {
		t.Fatalf("expected uninhibited path to pick single node ab, got %v", path)
	}

	inhibited := map[[2]int16]bool{{0, 1}: true} // BOS(right=0) -> ab(left=1) forbidden; idA's left=5 is unaffected
	wrapped := InhibitingLookup{Lookup: lk, Inhibited: inhibited}
	l2 := New()
	if err := Build(buf, wrapped, nil, l2); err != nil {
		t.Fatalf("Build (inhibited): %v", err)
	}
	path2 := l2.BestPath()
	if len(path2) != 2 {
		t.Fatalf("expected inhibited path to reselect a(+)b split, got %v", path2)
	}
}
