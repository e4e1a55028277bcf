package dic

// WordID is a 32-bit composite identifier: the high
// 4 bits select a dictionary within a DictionarySet (0 = system, 1..14 =
// user, in load order), the low 28 bits index within that dictionary's
// lexicon. A word id synthesized by an OOV provider carries the reserved
// dictionary index 15 (all four top bits set, so the value is negative) and
// a provider-local index in its low 28 bits.
type WordID int32

const (
	dictIndexShift  = 28
	inDictIndexMask = (1 << dictIndexShift) - 1
	oovDictIndex    = 0xF // dictionary index reserved for OOV-provider ids
)

// NewWordID packs a dictionary index (0..14) and an in-dictionary lexicon
// index into a WordID.
func NewWordID(dictIndex uint8, inDictIndex uint32) WordID {
	return WordID(uint32(dictIndex)<<dictIndexShift | (inDictIndex & inDictIndexMask))
}

// NewOOVWordID packs a per-provider synthetic index under the reserved
// dictionary index 15, giving a negative WordID.
func NewOOVWordID(syntheticIndex uint32) WordID {
	return WordID(int32(uint32(oovDictIndex)<<dictIndexShift | (syntheticIndex & inDictIndexMask)))
}

// IsOOV reports whether id was synthesized by an OOV provider rather than
// looked up in a dictionary's lexicon: its dictionary index is the reserved
// value 15, which no DictionarySet assigns. Dictionary indices 8..14 also
// set the sign bit (see the word-id note in DESIGN.md), so a negative id is
// not by itself OOV.
func (id WordID) IsOOV() bool { return id.DictIndex() == oovDictIndex }

// DictIndex returns the dictionary index component; only meaningful when
// !IsOOV().
func (id WordID) DictIndex() uint8 { return uint8(uint32(id) >> dictIndexShift) }

// InDictIndex returns the in-dictionary lexicon index, or (for an OOV id)
// the provider-local synthetic index.
func (id WordID) InDictIndex() uint32 { return uint32(id) & inDictIndexMask }
