// Package analyzer orchestrates the whole analysis pipeline: rewrite the
// input buffer, build the candidate lattice against the dictionary and OOV
// providers, rewrite the best path, expand it for split modes A/B, then
// map each surviving node's byte span back to the caller's original text
// to produce a MorphemeList.
//
// A JapaneseAnalyzer owns one reusable buffer.Buffer and lattice.Lattice,
// kept resident across calls rather than reallocated. It is not safe for
// concurrent use by more than one goroutine at a time; Factory hands out
// one JapaneseAnalyzer per worker.
package analyzer

import (
	"fmt"
	"unicode/utf8"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dicerrors"
	"github.com/sudachigo/sudachigo/lattice"
	"github.com/sudachigo/sudachigo/morpheme"
	"github.com/sudachigo/sudachigo/oov"
	"github.com/sudachigo/sudachigo/pathrewrite"
	"github.com/sudachigo/sudachigo/rewrite"
	"github.com/sudachigo/sudachigo/sentence"
)

// maxInhibitAttempts bounds how many times the analyzer will re-run
// lattice search with a growing inhibited-connection set before giving up.
// One attempt per distinct inhibited pair actually found on a best path is
// normally enough; this bound only guards against a pathological
// dictionary where no path avoids every inhibited pair.
const maxInhibitAttempts = 8

// JapaneseAnalyzer is the per-thread orchestrator: its mode is frozen at
// construction, and it owns the mutable buffer/lattice state one tokenize
// call needs, reused across calls.
type JapaneseAnalyzer struct {
	dict *dic.DictionarySet
	mode lattice.Mode

	rewriters *rewrite.Pipeline
	providers []oov.Provider
	pathRW    *pathrewrite.Pipeline
	inhibit   *pathrewrite.InhibitConnection

	projection morpheme.Projection

	buf *buffer.Buffer
	lat *lattice.Lattice
}

// New builds a JapaneseAnalyzer over a shared, immutable DictionarySet.
// mode is frozen for the life of the analyzer. pathRW's
// InhibitConnection stage (if any) is
// also used directly by the orchestrator to drive lattice re-selection;
// passing a Pipeline built with NewPipeline(..., inhibit) keeps the two in
// sync.
func New(dict *dic.DictionarySet, mode lattice.Mode, rewriters *rewrite.Pipeline, providers []oov.Provider, pathRW *pathrewrite.Pipeline, inhibit *pathrewrite.InhibitConnection, projection morpheme.Projection) *JapaneseAnalyzer {
	return &JapaneseAnalyzer{
		dict: dict, mode: mode,
		rewriters: rewriters, providers: providers, pathRW: pathRW, inhibit: inhibit,
		projection: projection,
		buf:        buffer.New(nil, dict.System().Category()),
		lat:        lattice.New(),
	}
}

// Tokenize analyzes text as a single unit and returns its morphemes.
// mode, if supplied, overrides the analyzer's frozen mode for this one
// call; at most one override may be given. The per-call override is
// retained for callers migrating from older APIs and slated for removal;
// build a second analyzer (or Factory) per mode instead.
func (a *JapaneseAnalyzer) Tokenize(text string, mode ...lattice.Mode) (*morpheme.MorphemeList, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("input is not valid UTF-8: %w", dicerrors.ErrInvalidInput)
	}
	m := a.mode
	if len(mode) > 0 {
		m = mode[0]
	}
	return a.tokenizeOnto(text, m)
}

// TokenizeSentences splits text into sentences and tokenizes each
// independently, returning one MorphemeList per sentence in order.
func (a *JapaneseAnalyzer) TokenizeSentences(text string) ([]*morpheme.MorphemeList, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("input is not valid UTF-8: %w", dicerrors.ErrInvalidInput)
	}
	raw := []byte(text)
	splitter := sentence.New(raw)
	var out []*morpheme.MorphemeList
	for {
		start, end, ok := splitter.Next()
		if !ok {
			break
		}
		list, err := a.tokenizeOnto(string(raw[start:end]), a.mode)
		if err != nil {
			return nil, err
		}
		out = append(out, list)
	}
	return out, nil
}

// Wakati returns text's surface-only segmentation, one string per
// morpheme, matching the CLI's -w output mode.
func (a *JapaneseAnalyzer) Wakati(text string) ([]string, error) {
	list, err := a.Tokenize(text)
	if err != nil {
		return nil, err
	}
	out := make([]string, list.Len())
	for i := 0; i < list.Len(); i++ {
		out[i] = list.At(i).Surface()
	}
	return out, nil
}

// tokenizeOnto runs the full pipeline over a.buf reset to text and returns
// the resulting morphemes, retrying lattice search with a growing
// inhibited-connection set when the best path violates the configured
// InhibitConnection deny list.
func (a *JapaneseAnalyzer) tokenizeOnto(text string, mode lattice.Mode) (*morpheme.MorphemeList, error) {
	a.buf.Reset([]byte(text))
	if err := a.rewriters.Run(a.buf); err != nil {
		return nil, err
	}

	inhibited := map[[2]int16]bool{}
	var path []lattice.Node
	for attempt := 0; ; attempt++ {
		var lookup lattice.Lookup = a.dict
		if len(inhibited) > 0 {
			lookup = lattice.InhibitingLookup{Lookup: a.dict, Inhibited: inhibited}
		}
		if err := lattice.Build(a.buf, lookup, a.providers, a.lat); err != nil {
			return nil, err
		}
		path = a.lat.BestPath()

		if a.inhibit == nil {
			break
		}
		violations := a.inhibit.Violations(path)
		if len(violations) == 0 {
			break
		}
		if attempt >= maxInhibitAttempts {
			return nil, fmt.Errorf("could not find a path avoiding %d inhibited connections after %d attempts: %w", len(violations), attempt, dicerrors.ErrEosNotReachable)
		}
		for _, vi := range violations {
			inhibited[[2]int16{path[vi-1].Right, path[vi].Left}] = true
		}
	}

	rewritten := a.pathRW.Run(path, &pathrewrite.Context{Buf: a.buf, Lookup: a.dict, Inhibits: a.inhibit.PairsOrNil()})
	expanded, err := lattice.ExpandPath(rewritten, mode, a.dict)
	if err != nil {
		return nil, err
	}

	return a.toMorphemes(expanded)
}

func (a *JapaneseAnalyzer) toMorphemes(path []lattice.Node) (*morpheme.MorphemeList, error) {
	ms := make([]morpheme.Morpheme, 0, len(path))
	for _, n := range path {
		var info dic.WordInfo
		if !n.IsOOV {
			var ok bool
			info, ok = a.dict.WordInfo(n.WordID, dic.SubsetAll)
			if !ok {
				return nil, fmt.Errorf("no word info for word id %v: %w", n.WordID, dicerrors.ErrInvalidInput)
			}
		} else {
			info.POSID = n.POSID
			info.Surface = string(a.buf.Modified()[n.Begin:n.End])
		}
		beginOrig, endOrig := a.buf.ModifiedToOriginal(n.Begin), a.buf.ModifiedToOriginal(n.End)
		ms = append(ms, morpheme.New(n.Begin, n.End, beginOrig, endOrig, n.WordID, n.IsOOV, info.POSID, info, n.NormalizedForm, a.projection))
	}
	return morpheme.NewMorphemeList(ms), nil
}

// Dictionary returns the DictionarySet this analyzer reads from.
func (a *JapaneseAnalyzer) Dictionary() *dic.DictionarySet { return a.dict }

// Mode returns the analyzer's frozen split-mode granularity.
func (a *JapaneseAnalyzer) Mode() lattice.Mode { return a.mode }
