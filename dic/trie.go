package dic

import (
	"sort"
)

// trieNode and trieEdge are the flat, pointer-free representation of a
// double-array trie node: instead of recursive pointers, every node
// stores an index+length window into global edge and payload arrays, so
// the whole trie can live in one contiguous (and, once loaded from a
// dictionary file, mmap-backed) allocation.
//
// Edges are keyed by byte, not rune: common-prefix search runs directly
// over the modified buffer's UTF-8 bytes without a rune-decode pass per
// node.
type trieNode struct {
	PayloadIdx, EdgesIdx uint32
	PayloadLen, EdgesLen uint16
	IsFinal              bool
}

type trieEdge struct {
	Byte   byte
	NodeID uint32
}

// Trie is a double-array trie over byte-sequence keys, mapping each key to
// a list of WordIDs (homographs sharing one surface form). payloads is a
// single flat array; each final node's word-id list is the window
// payloads[PayloadIdx : PayloadIdx+PayloadLen].
type Trie struct {
	nodes    []trieNode
	edges    []trieEdge
	payloads []WordID
}

// NewTrie builds a Trie from flat node/edge arrays and a flat payload
// array. Used both by the dictionary loader (decoding a binary trie block)
// and by tests constructing small fixture trie instances directly.
func NewTrie(nodes []trieNode, edges []trieEdge, payloads []WordID) *Trie {
	return &Trie{nodes: nodes, edges: edges, payloads: payloads}
}

// Match is one result of CommonPrefixSearch: a word id found at the
// searched position, with the byte length of the surface it matched.
type Match struct {
	WordID WordID
	Length int
}

// child performs a binary search over nodeIndex's sorted outgoing edges.
func (t *Trie) child(nodeIndex uint32, b byte) (uint32, bool) {
	node := t.nodes[nodeIndex]
	if node.EdgesLen == 0 {
		return 0, false
	}
	window := t.edges[node.EdgesIdx : node.EdgesIdx+uint32(node.EdgesLen)]
	i := sort.Search(len(window), func(i int) bool { return window[i].Byte >= b })
	if i < len(window) && window[i].Byte == b {
		return window[i].NodeID, true
	}
	return 0, false
}

// CommonPrefixSearch enumerates every dictionary entry that is a prefix of
// s[from:], returning one Match per (entry, homograph word id) pair.
// Results are in increasing length order.
func (t *Trie) CommonPrefixSearch(s []byte, from int) []Match {
	if len(t.nodes) == 0 {
		return nil
	}
	var results []Match
	node := uint32(0)
	for i := from; i < len(s); i++ {
		child, ok := t.child(node, s[i])
		if !ok {
			break
		}
		node = child
		if t.nodes[node].IsFinal {
			n := t.nodes[node]
			for _, wid := range t.payloads[n.PayloadIdx : n.PayloadIdx+uint32(n.PayloadLen)] {
				results = append(results, Match{WordID: wid, Length: i + 1 - from})
			}
		}
	}
	return results
}

// BuildTrie compiles a map of byte-string keys to their word ids into a
// Trie. Exported for use by dictionary builders/tests that have the full
// key set in memory; a real binary dictionary instead decodes the trie
// block directly into the flat arrays via NewTrie.
func BuildTrie(entries map[string][]WordID) *Trie {
	type edgeBuild struct {
		b    byte
		next int
	}
	type nodeBuild struct {
		children []edgeBuild
		final    bool
		payload  []WordID
	}
	nodes := []nodeBuild{{}}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cur := 0
		for i := 0; i < len(k); i++ {
			b := k[i]
			idx := -1
			for _, e := range nodes[cur].children {
				if e.b == b {
					idx = e.next
					break
				}
			}
			if idx == -1 {
				nodes = append(nodes, nodeBuild{})
				idx = len(nodes) - 1
				nodes[cur].children = append(nodes[cur].children, edgeBuild{b: b, next: idx})
			}
			cur = idx
		}
		nodes[cur].final = true
		nodes[cur].payload = append(nodes[cur].payload, entries[k]...)
	}

	flatNodes := make([]trieNode, len(nodes))
	var flatEdges []trieEdge
	var flatPayloads []WordID
	for i, n := range nodes {
		sort.Slice(n.children, func(a, b int) bool { return n.children[a].b < n.children[b].b })
		flatNodes[i] = trieNode{
			EdgesIdx:   uint32(len(flatEdges)),
			EdgesLen:   uint16(len(n.children)),
			PayloadIdx: uint32(len(flatPayloads)),
			PayloadLen: uint16(len(n.payload)),
			IsFinal:    n.final,
		}
		for _, e := range n.children {
			flatEdges = append(flatEdges, trieEdge{Byte: e.b, NodeID: uint32(e.next)})
		}
		flatPayloads = append(flatPayloads, n.payload...)
	}
	return NewTrie(flatNodes, flatEdges, flatPayloads)
}
