package dic

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/sudachigo/sudachigo/dicerrors"
)

// Version identifies one of the closed set of binary dictionary formats
// this reader understands.
type Version uint32

const (
	VersionSystem1 Version = 1
	VersionSystem2 Version = 2
	VersionUser1   Version = 101
	VersionUser2   Version = 102
	VersionUser3   Version = 103
)

// IsUser reports whether v denotes a user dictionary (no grammar block).
func (v Version) IsUser() bool { return v == VersionUser1 || v == VersionUser2 || v == VersionUser3 }

// IsSystem reports whether v denotes a system dictionary.
func (v Version) IsSystem() bool { return v == VersionSystem1 || v == VersionSystem2 }

var magic = [8]byte{'S', 'U', 'D', 'A', 'C', 'H', 'I', '1'}

const (
	headerMagicSize       = 8
	headerReservedSize    = 64 - headerMagicSize - 4 // pad magic+version to a fixed 64-byte block
	headerDescriptionSize = 256
)

// header is the binary dictionary header: a 64-byte magic+version
// block, a u64 creation timestamp, a 256-byte zero-padded UTF-8
// description, then offset+size pairs for the grammar block and each
// lexicon table. All integers are little-endian.
type header struct {
	Version     Version
	CreatedAt   time.Time
	Description string

	GrammarOffset, GrammarSize         int64
	TrieOffset, TrieSize               int64
	WordIDTableOffset, WordIDTableSize int64
	ParamOffset, ParamSize             int64
	WordInfoOffset, WordInfoSize       int64
	CategoryOffset, CategorySize       int64
}

// headerSize is the fixed byte length of the encoded header, independent of
// the variable-length blocks that follow it.
const headerSize = 64 + 8 + headerDescriptionSize + 8*2*6

// decodeHeader validates and decodes the fixed-size header from the start
// of a dictionary's raw bytes.
func decodeHeader(b []byte) (header, error) {
	var h header
	if len(b) < headerSize {
		return h, fmt.Errorf("dictionary shorter than header (%d < %d): %w", len(b), headerSize, dicerrors.ErrInvalidDictionary)
	}
	if string(b[:headerMagicSize]) != string(magic[:]) {
		return h, fmt.Errorf("bad magic: %w", dicerrors.ErrInvalidDictionary)
	}
	off := headerMagicSize
	ver := Version(binary.LittleEndian.Uint32(b[off:]))
	off += 4 + headerReservedSize
	switch ver {
	case VersionSystem1, VersionSystem2, VersionUser1, VersionUser2, VersionUser3:
	default:
		return h, fmt.Errorf("version %d: %w", ver, dicerrors.ErrUnsupportedVersion)
	}
	h.Version = ver

	created := binary.LittleEndian.Uint64(b[off:])
	h.CreatedAt = time.Unix(int64(created), 0).UTC()
	off += 8

	desc := b[off : off+headerDescriptionSize]
	h.Description = strings.TrimRight(string(desc), "\x00")
	off += headerDescriptionSize

	readPair := func() (int64, int64) {
		o := int64(binary.LittleEndian.Uint64(b[off:]))
		off += 8
		s := int64(binary.LittleEndian.Uint64(b[off:]))
		off += 8
		return o, s
	}
	h.GrammarOffset, h.GrammarSize = readPair()
	h.TrieOffset, h.TrieSize = readPair()
	h.WordIDTableOffset, h.WordIDTableSize = readPair()
	h.ParamOffset, h.ParamSize = readPair()
	h.WordInfoOffset, h.WordInfoSize = readPair()
	h.CategoryOffset, h.CategorySize = readPair()

	for _, blk := range [][2]int64{
		{h.GrammarOffset, h.GrammarSize}, {h.TrieOffset, h.TrieSize},
		{h.WordIDTableOffset, h.WordIDTableSize}, {h.ParamOffset, h.ParamSize},
		{h.WordInfoOffset, h.WordInfoSize}, {h.CategoryOffset, h.CategorySize},
	} {
		if blk[0] < 0 || blk[1] < 0 || blk[0]+blk[1] > int64(len(b)) {
			return h, fmt.Errorf("block offset out of bounds: %w", dicerrors.ErrInvalidDictionary)
		}
	}
	return h, nil
}

// encodeHeader is the inverse of decodeHeader, used by the in-process
// dictionary encoder that test fixtures and embedders use to produce a
// byte slice Load can consume.
func encodeHeader(h header) []byte {
	b := make([]byte, headerSize)
	copy(b, magic[:])
	off := headerMagicSize
	binary.LittleEndian.PutUint32(b[off:], uint32(h.Version))
	off += 4 + headerReservedSize
	binary.LittleEndian.PutUint64(b[off:], uint64(h.CreatedAt.Unix()))
	off += 8
	copy(b[off:off+headerDescriptionSize], h.Description)
	off += headerDescriptionSize

	writePair := func(o, s int64) {
		binary.LittleEndian.PutUint64(b[off:], uint64(o))
		off += 8
		binary.LittleEndian.PutUint64(b[off:], uint64(s))
		off += 8
	}
	writePair(h.GrammarOffset, h.GrammarSize)
	writePair(h.TrieOffset, h.TrieSize)
	writePair(h.WordIDTableOffset, h.WordIDTableSize)
	writePair(h.ParamOffset, h.ParamSize)
	writePair(h.WordInfoOffset, h.WordInfoSize)
	writePair(h.CategoryOffset, h.CategorySize)
	return b
}
