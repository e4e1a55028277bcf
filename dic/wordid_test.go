package dic

import "testing"

func TestWordIDRoundTrip(t *testing.T) {
	cases := []struct {
		dictIdx uint8
		inIdx   uint32
	}{
		{0, 0},
		{0, 12345},
		{1, 0},
		{14, 1<<28 - 1},
	}
	for _, c := range cases {
		id := NewWordID(c.dictIdx, c.inIdx)
		if id.IsOOV() {
			t.Fatalf("NewWordID(%d,%d) reported IsOOV", c.dictIdx, c.inIdx)
		}
		if got := id.DictIndex(); got != c.dictIdx {
			t.Errorf("DictIndex() = %d, want %d", got, c.dictIdx)
		}
		if got := id.InDictIndex(); got != c.inIdx {
			t.Errorf("InDictIndex() = %d, want %d", got, c.inIdx)
		}
	}
}

func TestOOVWordID(t *testing.T) {
	id := NewOOVWordID(42)
	if !id.IsOOV() {
		t.Fatal("NewOOVWordID should report IsOOV")
	}
	if got := id.InDictIndex(); got != 42 {
		t.Errorf("InDictIndex() = %d, want 42", got)
	}
}

func TestWordIDOOVOnlyForSyntheticIDs(t *testing.T) {
	if NewWordID(0, 0).IsOOV() {
		t.Error("system dictionary word id 0 must not be OOV")
	}
	if !NewOOVWordID(0).IsOOV() {
		t.Error("synthetic word id 0 must be OOV")
	}
}
