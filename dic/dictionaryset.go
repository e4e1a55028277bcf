package dic

import (
	"fmt"

	"github.com/sudachigo/sudachigo/dicerrors"
)

// maxUserDictionaries is the largest number of user dictionaries a
// DictionarySet may stack on top of its system dictionary: the word-id
// space reserves 4 bits for the dictionary index, with index 0 fixed to
// the system dictionary, 1..14 available to user dictionaries, and the
// all-ones value 15 reserved for OOV-provider word ids.
const maxUserDictionaries = 14

// DictionarySet stacks one system dictionary with zero or more user
// dictionaries. Word ids are partitioned by their top 4 bits:
// index 0 is the system dictionary, indices 1..len(user) are the user
// dictionaries in the order they were added. Lookups search every
// dictionary in the stack, system first, and return all of their matches:
// a user dictionary's entry for a surface form sits beside the system's or
// an earlier user dictionary's entry and does not shadow it. Connection
// costs always come from the system dictionary's grammar: user
// dictionaries carry no grammar block of their own.
type DictionarySet struct {
	system *Dictionary
	user   []*Dictionary
}

// NewDictionarySet assembles a DictionarySet from one system dictionary and
// up to maxUserDictionaries user dictionaries. A user dictionary's lexicon
// entries index their POSID directly into the system grammar's POS table:
// user dictionaries append their POS entries onto the system table at
// build time, so no separate offset bookkeeping is needed here.
func NewDictionarySet(system *Dictionary, user ...*Dictionary) (*DictionarySet, error) {
	if system == nil || system.grammar == nil {
		return nil, fmt.Errorf("dictionary set requires a system dictionary with a grammar: %w", dicerrors.ErrConfig)
	}
	if len(user) > maxUserDictionaries {
		return nil, fmt.Errorf("too many user dictionaries (%d > %d): %w", len(user), maxUserDictionaries, dicerrors.ErrConfig)
	}
	for i, u := range user {
		if u == nil {
			return nil, fmt.Errorf("nil user dictionary at index %d: %w", i, dicerrors.ErrConfig)
		}
	}
	return &DictionarySet{system: system, user: append([]*Dictionary(nil), user...)}, nil
}

// System returns the system dictionary backing this set.
func (ds *DictionarySet) System() *Dictionary { return ds.system }

// User returns the user dictionaries stacked on top of the system
// dictionary, in the order they were added (dictionary index 1 first).
func (ds *DictionarySet) User() []*Dictionary { return ds.user }

// dictAt returns the dictionary for a 4-bit dictionary index (0 = system,
// 1..len(user) = user dictionaries).
func (ds *DictionarySet) dictAt(idx uint8) (*Dictionary, bool) {
	if idx == 0 {
		return ds.system, true
	}
	i := int(idx) - 1
	if i < 0 || i >= len(ds.user) {
		return nil, false
	}
	return ds.user[i], true
}

// CommonPrefixSearch runs CommonPrefixSearch against every dictionary in
// the stack, system first then each user dictionary in the order added, and
// tags each resulting WordID with its originating dictionary index so
// downstream lookups (Param, WordInfo) can find the right table.
func (ds *DictionarySet) CommonPrefixSearch(s []byte, from int) []Match {
	var out []Match
	appendFrom := func(dictIdx uint8, d *Dictionary) {
		for _, m := range d.lexicon.Trie().CommonPrefixSearch(s, from) {
			out = append(out, Match{WordID: NewWordID(dictIdx, m.WordID.InDictIndex()), Length: m.Length})
		}
	}
	appendFrom(0, ds.system)
	for i, u := range ds.user {
		appendFrom(uint8(i+1), u)
	}
	return out
}

// Param returns the word-parameter triple for a composite WordID, resolved
// against whichever dictionary in the stack its top 4 bits select.
func (ds *DictionarySet) Param(id WordID) (WordParam, bool) {
	d, ok := ds.dictAt(id.DictIndex())
	if !ok {
		return WordParam{}, false
	}
	return d.lexicon.Param(id.InDictIndex())
}

// WordInfo returns the requested subset of fields for a composite WordID,
// resolved against whichever dictionary in the stack its top 4 bits select.
func (ds *DictionarySet) WordInfo(id WordID, subset WordInfoSubset) (WordInfo, bool) {
	d, ok := ds.dictAt(id.DictIndex())
	if !ok {
		return WordInfo{}, false
	}
	return d.lexicon.WordInfo(id.InDictIndex(), subset)
}

// POS returns the part-of-speech tuple for a POS id, always resolved
// against the system grammar's table (user dictionaries carry no grammar
// of their own; their lexicon entries' POSID indexes the same table).
func (ds *DictionarySet) POS(posID int) POS { return ds.system.grammar.POSOf(posID) }

// ConnectCost returns the connection cost between a left and right id,
// always from the system grammar.
func (ds *DictionarySet) ConnectCost(left, right int16) int16 {
	return ds.system.grammar.ConnectCost(left, right)
}

// Close closes every dictionary in the set (system then each user
// dictionary), returning the first error encountered, if any.
func (ds *DictionarySet) Close() error {
	var firstErr error
	if err := ds.system.Close(); err != nil {
		firstErr = err
	}
	for _, u := range ds.user {
		if err := u.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
