package dic

// WordParam is the (left_id, right_id, cost) triple stored per word id in
// the word-parameter table.
type WordParam struct {
	Left, Right, Cost int16
}

// WordInfoSubset is a bit mask selecting which string fields WordInfo
// should populate, allowing callers to skip decoding fields they will not
// use.
type WordInfoSubset uint8

const (
	SubsetSurface WordInfoSubset = 1 << iota
	SubsetNormalizedForm
	SubsetReadingForm
	SubsetSplits
	SubsetWordStructure
	SubsetSynonymGroups

	SubsetAll = SubsetSurface | SubsetNormalizedForm | SubsetReadingForm |
		SubsetSplits | SubsetWordStructure | SubsetSynonymGroups
)

// WordInfo is one lexicon entry's full record. Of the fields a
// WordInfoSubset selects, those not requested are left at their zero
// value; HeadWordLength, POSID and DictionaryFormWordID are always filled.
type WordInfo struct {
	Surface              string
	HeadWordLength       int // byte length of the head word's surface
	POSID                int
	NormalizedForm       string
	DictionaryFormWordID WordID
	ReadingForm          string
	SplitsA              []WordID
	SplitsB              []WordID
	WordStructure        []WordID
	SynonymGroupIDs      []int32
}

// lexiconEntry is the full, eagerly-decoded record backing WordInfo; the
// Lexicon keeps one per word id and WordInfo() projects the requested
// subset out of it. A real binary dictionary would decode this lazily
// field-by-field straight off the mmap'd bytes; since Non-goals exclude the
// CSV->binary builder, this module's own on-disk record layout only needs
// to round-trip through its own Load, so entries are parsed once at load
// time and the "lazy skip" contract is honored at the WordInfo() call
// boundary instead of at the byte-decode boundary.
type lexiconEntry struct {
	WordInfo
	Param WordParam
}

// Lexicon is the trie + word-parameter + word-info triple for one
// dictionary.
type Lexicon struct {
	trie    *Trie
	entries []lexiconEntry
}

// NewLexicon assembles a Lexicon from its three parallel tables. len(params)
// must equal len(infos).
func NewLexicon(trie *Trie, params []WordParam, infos []WordInfo) *Lexicon {
	entries := make([]lexiconEntry, len(infos))
	for i, wi := range infos {
		entries[i] = lexiconEntry{WordInfo: wi, Param: params[i]}
	}
	return &Lexicon{trie: trie, entries: entries}
}

// Size returns the number of word ids in this lexicon.
func (l *Lexicon) Size() int { return len(l.entries) }

// Trie exposes the underlying trie for common-prefix search.
func (l *Lexicon) Trie() *Trie { return l.trie }

// Param returns the (left, right, cost) triple for an in-dictionary index.
func (l *Lexicon) Param(inDictIndex uint32) (WordParam, bool) {
	if int(inDictIndex) >= len(l.entries) {
		return WordParam{}, false
	}
	return l.entries[inDictIndex].Param, true
}

// WordInfo returns the requested subset of fields for an in-dictionary
// index. Fields outside subset are left zero-valued.
func (l *Lexicon) WordInfo(inDictIndex uint32, subset WordInfoSubset) (WordInfo, bool) {
	if int(inDictIndex) >= len(l.entries) {
		return WordInfo{}, false
	}
	full := l.entries[inDictIndex].WordInfo
	out := WordInfo{HeadWordLength: full.HeadWordLength, POSID: full.POSID, DictionaryFormWordID: full.DictionaryFormWordID}
	if subset&SubsetSurface != 0 {
		out.Surface = full.Surface
	}
	if subset&SubsetNormalizedForm != 0 {
		out.NormalizedForm = full.NormalizedForm
	}
	if subset&SubsetReadingForm != 0 {
		out.ReadingForm = full.ReadingForm
	}
	if subset&SubsetSplits != 0 {
		out.SplitsA = full.SplitsA
		out.SplitsB = full.SplitsB
	}
	if subset&SubsetWordStructure != 0 {
		out.WordStructure = full.WordStructure
	}
	if subset&SubsetSynonymGroups != 0 {
		out.SynonymGroupIDs = full.SynonymGroupIDs
	}
	return out, true
}
