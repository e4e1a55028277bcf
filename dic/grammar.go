package dic

import (
	"fmt"

	"github.com/sudachigo/sudachigo/dicerrors"
)

// POS is the ordered six-tuple of part-of-speech strings.
type POS [6]string

// Grammar holds the POS table and connection-cost matrix decoded from a
// system dictionary's grammar block. DictionarySet assembly does not add
// user-dictionary POS entries to it; user lexicon entries index this table
// directly.
type Grammar struct {
	pos       []POS
	leftSize  int
	rightSize int
	connCost  []int16 // flattened leftSize*rightSize, row-major by left_id
}

// NewGrammar constructs a Grammar from a decoded POS table and connection
// matrix. leftSize*rightSize must equal len(connCost).
func NewGrammar(pos []POS, leftSize, rightSize int, connCost []int16) (*Grammar, error) {
	if leftSize*rightSize != len(connCost) {
		return nil, fmt.Errorf("connection matrix size mismatch (%dx%d != %d): %w", leftSize, rightSize, len(connCost), dicerrors.ErrInvalidDictionary)
	}
	return &Grammar{pos: pos, leftSize: leftSize, rightSize: rightSize, connCost: connCost}, nil
}

// POSCount returns the number of entries in the POS table.
func (g *Grammar) POSCount() int { return len(g.pos) }

// POSTable returns the full POS table, one tuple per pos id. The returned
// slice is a copy; mutating it does not affect the grammar.
func (g *Grammar) POSTable() []POS {
	return append([]POS(nil), g.pos...)
}

// POSOf returns the POS tuple for posID. Returns the zero tuple if posID is
// out of range; callers that need strict bounds should check POSCount.
func (g *Grammar) POSOf(posID int) POS {
	if posID < 0 || posID >= len(g.pos) {
		return POS{}
	}
	return g.pos[posID]
}

// AppendPOS appends entries (from a user dictionary) to a grammar's POS
// table and returns the base id the first new entry was assigned.
func (g *Grammar) AppendPOS(entries []POS) int {
	base := len(g.pos)
	g.pos = append(g.pos, entries...)
	return base
}

// ConnectCost returns the connection cost for transitioning from a left
// context id to a right context id. BOS/EOS use the fixed ids 0.
func (g *Grammar) ConnectCost(left, right int16) int16 {
	if int(left) < 0 || int(left) >= g.leftSize || int(right) < 0 || int(right) >= g.rightSize {
		return 0
	}
	return g.connCost[int(left)*g.rightSize+int(right)]
}

// LeftSize and RightSize report the connection matrix dimensions declared
// in the grammar header.
func (g *Grammar) LeftSize() int  { return g.leftSize }
func (g *Grammar) RightSize() int { return g.rightSize }
