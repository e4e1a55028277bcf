// Package dic implements the binary dictionary reader: header validation,
// the grammar (POS table + connection matrix), the character category
// table, and the lexicon (double-array trie + word-parameter + word-info
// tables), plus the runtime DictionarySet that stacks a system dictionary
// with up to 14 user dictionaries.
//
// LoadFile mmaps the whole file read-only so the OS pages it in lazily,
// reads a fixed header straight off the mapped bytes, and decodes the
// remaining blocks by their header-declared offsets. Dictionaries are
// immutable after load and safe for concurrent use by any number of
// goroutines; only the owning Close unmaps them.
package dic

import (
	"fmt"
	"os"
	"time"

	"github.com/edsrzf/mmap-go"

	"github.com/sudachigo/sudachigo/dic/category"
	"github.com/sudachigo/sudachigo/dicerrors"
)

// Dictionary is one loaded system or user dictionary: its grammar (nil
// for user dictionaries), its lexicon, and its character
// category table (decoded from any dictionary file that carries a category
// block; nil when the file carries none).
type Dictionary struct {
	version     Version
	createdAt   time.Time
	description string

	grammar  *Grammar // nil for user dictionaries
	lexicon  *Lexicon
	category *category.Table // nil unless this dictionary carries one

	raw      []byte
	mmapFile mmap.MMap // non-nil only when loaded via LoadFile; Close unmaps it
}

// LoadFile opens path, memory-maps it read-only, and decodes it as a
// dictionary. The returned Dictionary keeps the mapping alive until Close.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w: %w", path, dicerrors.ErrIO, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap dictionary %s: %w: %w", path, dicerrors.ErrIO, err)
	}

	d, err := decode([]byte(m))
	if err != nil {
		_ = m.Unmap()
		return nil, err
	}
	d.mmapFile = m
	return d, nil
}

// LoadBytes decodes a dictionary already resident in memory (e.g. supplied
// by an embed.FS, or assembled in a test) without performing its own mmap.
// Callers that mmap'd the bytes themselves are responsible for keeping the
// mapping alive for as long as the returned Dictionary is in use.
func LoadBytes(b []byte) (*Dictionary, error) {
	return decode(b)
}

func decode(b []byte) (*Dictionary, error) {
	h, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}

	d := &Dictionary{
		version:     h.Version,
		createdAt:   h.CreatedAt,
		description: h.Description,
		raw:         b,
	}

	if h.GrammarSize > 0 {
		if h.Version.IsUser() {
			return nil, fmt.Errorf("user dictionary must not carry a grammar block: %w", dicerrors.ErrInvalidDictionary)
		}
		var gb grammarBlock
		if err := decodeBlock(b[h.GrammarOffset:h.GrammarOffset+h.GrammarSize], &gb); err != nil {
			return nil, err
		}
		g, err := NewGrammar(gb.POS, gb.LeftSize, gb.RightSize, gb.ConnCost)
		if err != nil {
			return nil, err
		}
		d.grammar = g
	} else if h.Version.IsSystem() {
		return nil, fmt.Errorf("system dictionary missing grammar block: %w", dicerrors.ErrInvalidDictionary)
	}

	if h.CategorySize > 0 {
		var cb categoryBlock
		if err := decodeBlock(b[h.CategoryOffset:h.CategoryOffset+h.CategorySize], &cb); err != nil {
			return nil, err
		}
		d.category = category.NewTable(cb.Defs, cb.Ranges)
	}

	var tb trieBlock
	if err := decodeBlock(b[h.TrieOffset:h.TrieOffset+h.TrieSize], &tb); err != nil {
		return nil, err
	}
	trie := NewTrie(tb.Nodes, tb.Edges, tb.Payloads)

	var lb lexiconBlock
	if err := decodeBlock(b[h.WordInfoOffset:h.WordInfoOffset+h.WordInfoSize], &lb); err != nil {
		return nil, err
	}
	infos := make([]WordInfo, len(lb.Infos))
	for i, r := range lb.Infos {
		infos[i] = wordInfoFromRecord(r)
	}
	d.lexicon = NewLexicon(trie, lb.Params, infos)

	return d, nil
}

// Close unmaps the dictionary's backing file, if it was loaded via
// LoadFile. Safe to call on a dictionary loaded via LoadBytes (no-op).
func (d *Dictionary) Close() error {
	if d.mmapFile != nil {
		return d.mmapFile.Unmap()
	}
	return nil
}

// POSTable returns the dictionary's full POS table, or nil for a user
// dictionary (user dictionaries carry no grammar block).
func (d *Dictionary) POSTable() []POS {
	if d.grammar == nil {
		return nil
	}
	return d.grammar.POSTable()
}

func (d *Dictionary) Version() Version         { return d.version }
func (d *Dictionary) CreatedAt() time.Time     { return d.createdAt }
func (d *Dictionary) Description() string      { return d.description }
func (d *Dictionary) Grammar() *Grammar        { return d.grammar }
func (d *Dictionary) Lexicon() *Lexicon        { return d.lexicon }
func (d *Dictionary) Category() *category.Table { return d.category }

// Encode serializes a system or user dictionary to bytes in this module's
// native binary layout, for use by test fixtures and by callers embedding
// a prebuilt dictionary. The full CSV-to-binary dictionary builder lives
// outside this module; this is the minimal encoder needed to round-trip
// Dictionary values through LoadBytes.
func Encode(version Version, description string, grammar *Grammar, lexicon *Lexicon, cat *category.Table) ([]byte, error) {
	h := header{
		Version:     version,
		CreatedAt:   time.Unix(0, 0).UTC(),
		Description: description,
	}

	var grammarBytes []byte
	if grammar != nil {
		var err error
		grammarBytes, err = encodeBlock(grammarBlock{
			POS: grammar.pos, LeftSize: grammar.leftSize, RightSize: grammar.rightSize, ConnCost: grammar.connCost,
		})
		if err != nil {
			return nil, err
		}
	}

	var categoryBytes []byte
	if cat != nil {
		var err error
		categoryBytes, err = encodeBlock(categoryBlock{Defs: cat.ExportDefs(), Ranges: cat.ExportRanges()})
		if err != nil {
			return nil, err
		}
	}

	trieBytes, err := encodeBlock(trieBlock{
		Nodes: lexicon.trie.nodes, Edges: lexicon.trie.edges, Payloads: lexicon.trie.payloads,
	})
	if err != nil {
		return nil, err
	}

	records := make([]wordInfoRecord, len(lexicon.entries))
	params := make([]WordParam, len(lexicon.entries))
	for i, e := range lexicon.entries {
		records[i] = recordFromWordInfo(e.WordInfo)
		params[i] = e.Param
	}
	wordInfoBytes, err := encodeBlock(lexiconBlock{Params: params, Infos: records})
	if err != nil {
		return nil, err
	}

	cursor := int64(headerSize)
	place := func(size int) (off, sz int64) {
		off, sz = cursor, int64(size)
		cursor += int64(size)
		return
	}

	h.GrammarOffset, h.GrammarSize = place(len(grammarBytes))
	h.TrieOffset, h.TrieSize = place(len(trieBytes))
	h.WordInfoOffset, h.WordInfoSize = place(len(wordInfoBytes))
	h.CategoryOffset, h.CategorySize = place(len(categoryBytes))

	out := make([]byte, 0, cursor)
	out = append(out, encodeHeader(h)...)
	out = append(out, grammarBytes...)
	out = append(out, trieBytes...)
	out = append(out, wordInfoBytes...)
	out = append(out, categoryBytes...)
	return out, nil
}
