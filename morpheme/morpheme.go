// Package morpheme defines the analyzer's output types: a single Morpheme
// and the MorphemeList produced by one tokenize call, plus the
// projection view that lets a configured word-info field stand in for
// "surface" in Surface().
package morpheme

import (
	"fmt"

	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dicerrors"
)

// Projection selects which WordInfo field Morpheme.Surface reports.
type Projection int

const (
	ProjectionSurface Projection = iota
	ProjectionNormalized
	ProjectionReading
	ProjectionDictionaryForm
)

// Morpheme is one segment of an analysis: its byte span in both the
// modified and original buffers, its dictionary identity, and enough
// dictionary-resolved info to answer every output column without a
// second dictionary round-trip.
type Morpheme struct {
	BeginMod, EndMod   int // byte span in the modified buffer
	BeginOrig, EndOrig int // byte span in the original buffer

	WordID dic.WordID
	IsOOV  bool
	POSID  int

	info               dic.WordInfo
	normalizedOverride string // set for path-rewriter-synthesized nodes (e.g. JoinNumeric); see lattice.Node.NormalizedForm
	projection         Projection
}

// New builds a Morpheme. info should already reflect whatever
// WordInfoSubset the caller needs; normalizedOverride is the path
// rewriter's synthesized NormalizedForm, or "" to use info's.
func New(beginMod, endMod, beginOrig, endOrig int, id dic.WordID, isOOV bool, posID int, info dic.WordInfo, normalizedOverride string, projection Projection) Morpheme {
	return Morpheme{
		BeginMod: beginMod, EndMod: endMod, BeginOrig: beginOrig, EndOrig: endOrig,
		WordID: id, IsOOV: isOOV, POSID: posID,
		info: info, normalizedOverride: normalizedOverride, projection: projection,
	}
}

// Surface returns the configured projection's field, falling back to the
// dictionary surface form when that field is empty. Whenever
// normalizedOverride is set (a node synthesized by a path rewriter), Surface
// returns it regardless of the projection.
func (m Morpheme) Surface() string {
	if m.normalizedOverride != "" {
		return m.normalizedOverride
	}
	switch m.projection {
	case ProjectionNormalized:
		if m.info.NormalizedForm != "" {
			return m.info.NormalizedForm
		}
	case ProjectionReading:
		if m.info.ReadingForm != "" {
			return m.info.ReadingForm
		}
	case ProjectionDictionaryForm:
		// The dictionary form is itself a WordID; callers needing its
		// surface must resolve DictionaryFormWordID separately (see
		// DictionaryFormWordID()). Falling back to surface here keeps
		// Surface() total without a lookup dependency.
	}
	return m.info.Surface
}

// NormalizedForm returns the dictionary entry's normalized form, or the
// path rewriter's synthesized override if set.
func (m Morpheme) NormalizedForm() string {
	if m.normalizedOverride != "" {
		return m.normalizedOverride
	}
	return m.info.NormalizedForm
}

// ReadingForm returns the dictionary entry's reading form.
func (m Morpheme) ReadingForm() string { return m.info.ReadingForm }

// DictionaryFormWordID returns the word id of this entry's dictionary
// (lemma) form.
func (m Morpheme) DictionaryFormWordID() dic.WordID { return m.info.DictionaryFormWordID }

// SynonymGroupIDs returns the dictionary entry's synonym group ids.
func (m Morpheme) SynonymGroupIDs() []int32 { return m.info.SynonymGroupIDs }

// DictionaryID returns the dictionary index this morpheme's word id came
// from (0=system, >=1=user), or -1 for a synthesized OOV node.
func (m Morpheme) DictionaryID() int {
	if m.IsOOV {
		return -1
	}
	return int(m.WordID.DictIndex())
}

// SplitMode selects which split table Split expands against.
type SplitMode int

const (
	SplitModeA SplitMode = iota
	SplitModeB
)

// WordInfoLookup is the dictionary access Split needs to resolve each
// split child's own WordInfo.
type WordInfoLookup interface {
	WordInfo(id dic.WordID, subset dic.WordInfoSubset) (dic.WordInfo, bool)
}

// Split expands this morpheme on demand into its splits_a/splits_b
// children, returning a MorphemeList that aliases this morpheme's buffer
// coordinates rather than copying them: reusing the parent analyzer's
// buffer invalidates any MorphemeList obtained this way. If this morpheme
// has no split table for
// mode (OOV nodes, or a lexicon entry with an empty list), the returned
// list contains this morpheme unchanged.
func (m Morpheme) Split(mode SplitMode, lookup WordInfoLookup) (*MorphemeList, error) {
	if m.IsOOV {
		return NewMorphemeList([]Morpheme{m}), nil
	}
	splits := m.info.SplitsB
	if mode == SplitModeA {
		splits = m.info.SplitsA
	}
	if len(splits) == 0 {
		return NewMorphemeList([]Morpheme{m}), nil
	}

	children := make([]Morpheme, 0, len(splits))
	curMod, curOrig := m.BeginMod, m.BeginOrig
	for _, childID := range splits {
		info, ok := lookup.WordInfo(childID, dic.SubsetAll)
		if !ok {
			return nil, fmt.Errorf("split child word id %v has no word info: %w", childID, dicerrors.ErrInvalidSplit)
		}
		endMod := curMod + info.HeadWordLength
		endOrig := curOrig + info.HeadWordLength
		children = append(children, Morpheme{
			BeginMod: curMod, EndMod: endMod, BeginOrig: curOrig, EndOrig: endOrig,
			WordID: childID, POSID: info.POSID, info: info, projection: m.projection,
		})
		curMod, curOrig = endMod, endOrig
	}
	if curMod != m.EndMod {
		return nil, fmt.Errorf("split children do not cover parent span: %w", dicerrors.ErrInvalidSplit)
	}
	return &MorphemeList{morphemes: children}, nil
}

// MorphemeList is the result of one tokenize call: an ordered, contiguous
// (in original-buffer coordinates) sequence of Morphemes. A list returned
// by Morpheme.Split reports coordinates into its parent analyzer's buffer
// rather than owning a copy of the text; callers must not retain a split
// MorphemeList past the next call that reuses the parent analyzer's
// buffer.
type MorphemeList struct {
	morphemes []Morpheme
}

// NewMorphemeList wraps a slice of Morphemes produced by one analysis.
func NewMorphemeList(ms []Morpheme) *MorphemeList {
	return &MorphemeList{morphemes: ms}
}

// Reset clears the list for reuse, keeping its backing array's capacity.
func (l *MorphemeList) Reset() {
	l.morphemes = l.morphemes[:0]
}

// Append adds m to the list, for callers filling a reused MorphemeList.
func (l *MorphemeList) Append(m Morpheme) {
	l.morphemes = append(l.morphemes, m)
}

// Len returns the number of morphemes.
func (l *MorphemeList) Len() int { return len(l.morphemes) }

// At returns the i'th morpheme.
func (l *MorphemeList) At(i int) Morpheme { return l.morphemes[i] }

// All returns the list's morphemes as a slice. Callers must not retain it
// across a Reset.
func (l *MorphemeList) All() []Morpheme { return l.morphemes }

// Wakati returns the list's surfaces space-joined, matching the -w CLI
// output mode.
func (l *MorphemeList) Wakati() string {
	var out []byte
	for i, m := range l.morphemes {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, m.Surface()...)
	}
	return string(out)
}
