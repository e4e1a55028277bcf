// Package lattice builds the candidate lattice over a rewritten buffer and
// runs the Viterbi-style shortest-path search that selects a minimum-cost
// segmentation, then expands the winning path for split modes A and B.
//
// A Lattice is reused across analyses: reset truncates the node slices in
// place instead of reallocating, so repeated tokenize calls on one
// analyzer stay allocation-quiet.
package lattice

import (
	"fmt"
	"sort"

	"github.com/sudachigo/sudachigo/buffer"
	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/dicerrors"
	"github.com/sudachigo/sudachigo/oov"
)

// BOS/EOS use fixed sentinel left/right connection ids, both 0.
const bosEosConnID = 0

// Node is one lattice node: a candidate morpheme spanning
// [Begin,End) bytes in the modified buffer, with its connection ids and
// intrinsic cost, plus the DP bookkeeping the search fills in.
type Node struct {
	Begin, End  int
	WordID      dic.WordID
	Left, Right int16
	Cost        int16
	IsOOV       bool

	// POSID is only meaningful for OOV nodes; lexicon nodes resolve POS
	// via WordInfo.
	POSID int

	// NormalizedForm is set by a path rewriter that synthesizes a node
	// without a dictionary entry (JoinNumeric's canonical arabic form);
	// empty otherwise, in which case the morpheme layer falls back to
	// WordInfo's NormalizedForm.
	NormalizedForm string

	bestPrev  int // index into the lattice's flat node slice, or -1
	totalCost int64
	hasPrev   bool
}

// Lookup abstracts the merged lexicon's common-prefix search and word
// parameter access, satisfied by *dic.DictionarySet.
type Lookup interface {
	CommonPrefixSearch(s []byte, from int) []dic.Match
	Param(id dic.WordID) (dic.WordParam, bool)
	ConnectCost(left, right int16) int16
}

// InhibitingLookup wraps a Lookup so its ConnectCost treats any
// (left,right) pair in Inhibited as prohibitively expensive. An inhibited
// connection then never wins the search unless no alternative predecessor
// exists at all, in which case the failure surfaces as EosNotReachable
// further down the path.
type InhibitingLookup struct {
	Lookup
	Inhibited map[[2]int16]bool
}

func (l InhibitingLookup) ConnectCost(left, right int16) int16 {
	if l.Inhibited[[2]int16{left, right}] {
		return 1<<15 - 1
	}
	return l.Lookup.ConnectCost(left, right)
}

// Lattice holds every node constructed for one buffer, indexed by end byte
// position, plus the BOS/EOS sentinels and the recovered best path.
type Lattice struct {
	nodes   []Node // flat storage; index 0 is BOS, last is EOS once built
	byEnd   map[int][]int
	byBegin map[int][]int
}

// New creates an empty, reusable Lattice.
func New() *Lattice {
	return &Lattice{byEnd: make(map[int][]int), byBegin: make(map[int][]int)}
}

// reset truncates the lattice's bookkeeping for reuse over a new buffer,
// without discarding the backing node slice's capacity.
func (l *Lattice) reset() {
	l.nodes = l.nodes[:0]
	for k := range l.byEnd {
		delete(l.byEnd, k)
	}
	for k := range l.byBegin {
		delete(l.byBegin, k)
	}
}

// Build constructs the lattice over buf's modified text using lookup as
// the merged lexicon and providers as the configured OOV providers, then
// runs the Viterbi search.
func Build(buf *buffer.Buffer, lookup Lookup, providers []oov.Provider, l *Lattice) error {
	mod := buf.Modified()
	n := len(mod)
	l.reset()

	l.nodes = append(l.nodes, Node{Begin: 0, End: 0, Left: bosEosConnID, Right: bosEosConnID, hasPrev: true, totalCost: 0})
	bosIdx := 0
	l.byEnd[0] = []int{bosIdx}

	reachable := make([]bool, n+1)
	reachable[0] = true

	for p := 0; p < n; p++ {
		if !reachable[p] {
			continue
		}

		lexMatches := lookup.CommonPrefixSearch(mod, p)
		for _, m := range lexMatches {
			param, ok := lookup.Param(m.WordID)
			if !ok {
				continue
			}
			l.addNode(Node{
				Begin: p, End: p + m.Length, WordID: m.WordID,
				Left: param.Left, Right: param.Right, Cost: param.Cost,
			})
			reachable[p+m.Length] = true
		}

		needOOV := len(lexMatches) == 0
		for _, prov := range providers {
			var ovNodes []oov.Node
			if mc, ok := prov.(interface {
				ApplyForced(buf *buffer.Buffer, pos int) []oov.Node
			}); ok && needOOV {
				ovNodes = mc.ApplyForced(buf, p)
			} else {
				ovNodes = prov.Apply(buf, p)
			}
			for _, on := range ovNodes {
				l.addNode(Node{
					Begin: p, End: p + on.Length, WordID: on.WordID,
					Left: on.Left, Right: on.Right, Cost: on.Cost, IsOOV: true, POSID: on.POSID,
				})
				reachable[p+on.Length] = true
			}
		}
	}

	if !reachable[n] {
		return fmt.Errorf("no node reaches end of buffer: %w", dicerrors.ErrEosNotReachable)
	}

	l.nodes = append(l.nodes, Node{Begin: n, End: n, Left: bosEosConnID, Right: bosEosConnID})
	eosIdx := len(l.nodes) - 1
	l.byBegin[n] = append(l.byBegin[n], eosIdx)

	return l.search(lookup, bosIdx, eosIdx)
}

func (l *Lattice) addNode(n Node) int {
	idx := len(l.nodes)
	l.nodes = append(l.nodes, n)
	l.byEnd[n.End] = append(l.byEnd[n.End], idx)
	l.byBegin[n.Begin] = append(l.byBegin[n.Begin], idx)
	return idx
}

// search runs the Viterbi DP over the constructed nodes, visiting
// nodes in increasing Begin order (equivalently increasing End order of
// their predecessors) so every predecessor is finalized before use.
func (l *Lattice) search(lookup Lookup, bosIdx, eosIdx int) error {
	order := make([]int, 0, len(l.nodes))
	for i := range l.nodes {
		if i == bosIdx {
			continue
		}
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		if l.nodes[order[a]].Begin != l.nodes[order[b]].Begin {
			return l.nodes[order[a]].Begin < l.nodes[order[b]].Begin
		}
		return order[a] < order[b]
	})

	for _, idx := range order {
		n := &l.nodes[idx]
		preds := l.byEnd[n.Begin]
		best := int64(0)
		bestPrev := -1
		hasBest := false
		for _, pIdx := range preds {
			prev := &l.nodes[pIdx]
			if !prev.hasPrev {
				continue
			}
			connect := int64(lookup.ConnectCost(prev.Right, n.Left))
			candidate := prev.totalCost + connect + int64(n.Cost)
			if !hasBest || better(candidate, idx, pIdx, best, bestPrev, l) {
				best = candidate
				bestPrev = pIdx
				hasBest = true
			}
		}
		if !hasBest {
			continue
		}
		n.totalCost = best
		n.bestPrev = bestPrev
		n.hasPrev = true
	}

	if !l.nodes[eosIdx].hasPrev {
		return fmt.Errorf("no path reaches end of sentence: %w", dicerrors.ErrEosNotReachable)
	}
	return nil
}

// better reports whether candidate (arriving at node idx via predecessor
// pIdx) beats the current best (best, bestPrev): lower cost wins; on equal
// cost, prefer the longer predecessor node, then the predecessor with the
// smaller word id.
func better(candidate int64, idx, pIdx int, best int64, bestPrev int, l *Lattice) bool {
	if candidate != best {
		return candidate < best
	}
	a, b := l.nodes[pIdx], l.nodes[bestPrev]
	lenA, lenB := a.End-a.Begin, b.End-b.Begin
	if lenA != lenB {
		return lenA > lenB
	}
	return a.WordID < b.WordID
}

// BestPath recovers the winning path from BOS to EOS as an ordered slice of
// copies of its nodes (excluding BOS/EOS).
func (l *Lattice) BestPath() []Node {
	eosIdx := len(l.nodes) - 1
	var reversed []Node
	cur := l.nodes[eosIdx].bestPrev
	for cur != 0 {
		n := l.nodes[cur]
		reversed = append(reversed, n)
		cur = l.nodes[cur].bestPrev
	}
	path := make([]Node, len(reversed))
	for i, n := range reversed {
		path[len(reversed)-1-i] = n
	}
	return path
}

// Mode selects the segmentation granularity: A is finest, B is middle, C
// is coarsest (no expansion).
type Mode int

const (
	ModeC Mode = iota // coarsest: the path as constructed, no split expansion
	ModeB             // middle granularity: splits_b
	ModeA             // finest granularity: splits_a
)

// WordInfoLookup is the subset of dic.DictionarySet's WordInfo method this
// package needs to expand a path node into its configured sub-units.
type WordInfoLookup interface {
	WordInfo(id dic.WordID, subset dic.WordInfoSubset) (dic.WordInfo, bool)
}

// ExpandPath expands every node of path according to mode: for
// ModeA/ModeB, a node whose dictionary entry has a non-empty A/B split
// list is replaced by one child node per split entry, with byte offsets
// derived from each child's HeadWordLength summed left-to-right; the sum
// must equal the parent's span or InvalidSplit is returned. OOV nodes
// carry no split table and pass through unchanged, as does the whole path
// for ModeC.
func ExpandPath(path []Node, mode Mode, lookup WordInfoLookup) ([]Node, error) {
	if mode == ModeC {
		return path, nil
	}
	var out []Node
	for _, n := range path {
		if n.IsOOV {
			out = append(out, n)
			continue
		}
		info, ok := lookup.WordInfo(n.WordID, dic.SubsetSplits)
		if !ok {
			out = append(out, n)
			continue
		}
		splits := info.SplitsB
		if mode == ModeA {
			splits = info.SplitsA
		}
		if len(splits) == 0 {
			out = append(out, n)
			continue
		}
		children, err := expandSplits(n, splits, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func expandSplits(parent Node, splits []dic.WordID, lookup WordInfoLookup) ([]Node, error) {
	children := make([]Node, 0, len(splits))
	cursor := parent.Begin
	for _, childID := range splits {
		childInfo, ok := lookup.WordInfo(childID, dic.SubsetSurface)
		if !ok {
			return nil, fmt.Errorf("split child word id %v has no word info: %w", childID, dicerrors.ErrInvalidSplit)
		}
		end := cursor + childInfo.HeadWordLength
		children = append(children, Node{
			Begin: cursor, End: end, WordID: childID,
			Left: parent.Left, Right: parent.Right, Cost: 0,
		})
		cursor = end
	}
	if cursor != parent.End {
		return nil, fmt.Errorf("split children span %d..%d does not cover parent span %d..%d: %w",
			parent.Begin, cursor, parent.Begin, parent.End, dicerrors.ErrInvalidSplit)
	}
	return children, nil
}
