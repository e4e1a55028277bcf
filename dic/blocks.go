package dic

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/sudachigo/sudachigo/dic/category"
	"github.com/sudachigo/sudachigo/dicerrors"
)

// Dictionary blocks are gzip-compressed gob: pack a self-describing Go
// value, gzip it, record offset+size in the header. There are four blobs:
// grammar, trie (with each key's word-id list), lexicon (the
// word-parameter and word-info tables together) and character-category
// table, so a caller that only needs e.g. the category table does not have
// to decode the word-info table too.
type grammarBlock struct {
	POS       []POS
	LeftSize  int
	RightSize int
	ConnCost  []int16
}

type trieBlock struct {
	Nodes    []trieNode
	Edges    []trieEdge
	Payloads []WordID
}

type wordInfoRecord struct {
	Surface              string
	HeadWordLength       int
	POSID                int
	NormalizedForm       string
	DictionaryFormWordID WordID
	ReadingForm          string
	SplitsA              []WordID
	SplitsB              []WordID
	WordStructure        []WordID
	SynonymGroupIDs      []int32
}

type lexiconBlock struct {
	Params []WordParam
	Infos  []wordInfoRecord
}

type categoryBlock struct {
	Defs   map[category.Category]category.Def
	Ranges []category.Range
}

func encodeBlock(v any) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, fmt.Errorf("encode block: %w", err)
	}
	var out bytes.Buffer
	gz := gzip.NewWriter(&out)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress block: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress block: %w", err)
	}
	return out.Bytes(), nil
}

func decodeBlock(b []byte, v any) error {
	gz, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("decompress block: %w: %w", dicerrors.ErrInvalidDictionary, err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("decompress block: %w: %w", dicerrors.ErrInvalidDictionary, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("decode block: %w: %w", dicerrors.ErrInvalidDictionary, err)
	}
	return nil
}

func wordInfoFromRecord(r wordInfoRecord) WordInfo {
	return WordInfo{
		Surface:              r.Surface,
		HeadWordLength:       r.HeadWordLength,
		POSID:                r.POSID,
		NormalizedForm:       r.NormalizedForm,
		DictionaryFormWordID: r.DictionaryFormWordID,
		ReadingForm:          r.ReadingForm,
		SplitsA:              r.SplitsA,
		SplitsB:              r.SplitsB,
		WordStructure:        r.WordStructure,
		SynonymGroupIDs:      r.SynonymGroupIDs,
	}
}

func recordFromWordInfo(w WordInfo) wordInfoRecord {
	return wordInfoRecord{
		Surface:              w.Surface,
		HeadWordLength:       w.HeadWordLength,
		POSID:                w.POSID,
		NormalizedForm:       w.NormalizedForm,
		DictionaryFormWordID: w.DictionaryFormWordID,
		ReadingForm:          w.ReadingForm,
		SplitsA:              w.SplitsA,
		SplitsB:              w.SplitsB,
		WordStructure:        w.WordStructure,
		SynonymGroupIDs:      w.SynonymGroupIDs,
	}
}
