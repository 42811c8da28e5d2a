// Package trie implements the Codepoint Trie View (spec §4.2): it
// presents one or more lexicons as a single codepoint-labeled trie,
// collapsing multi-byte UTF-8 continuation bytes into single-codepoint
// children and letting callers group same-codepoint children across
// lexicons. Grounded on the original decoder's codepoint-node.{h,cc}.
package trie

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

// Node is a view over one backing lexicon node, annotated with the
// codepoint that led to it and its inherited prefix log-probability.
type Node struct {
	LexiconID  int
	lex        lexicon.Lexicon
	backing    lexicon.NodeRef
	Codepoint  rune
	PrefixLogP float32
}

// View composes multiple lexicons into one codepoint trie and caches
// each node's expanded children, since GetChildCodepoints is on the
// hot path of the search loop's per-touch-index expansion.
type View struct {
	lexicons []lexicon.Lexicon

	// childCache maps a (lexiconID, backing node identity) key to its
	// already-expanded, codepoint-collapsed children. Session-scoped:
	// a fresh View (and cache) is built per Decode (spec §5).
	childCache *lru.Cache[childCacheKey, []Node]
}

type childCacheKey struct {
	lexiconID int
	node      lexicon.NodeRef
}

// defaultCacheSize bounds the per-Decode child cache; a single stroke
// rarely visits more than a few thousand distinct trie nodes.
const defaultCacheSize = 4096

// New builds a View over lexicons, indexed in the order given;
// RootNodes and Node.LexiconID refer to lexicons by that index.
func New(lexicons []lexicon.Lexicon) *View {
	cache, _ := lru.New[childCacheKey, []Node](defaultCacheSize)
	return &View{lexicons: lexicons, childCache: cache}
}

// RootNodes returns one codepoint-less root node per lexicon.
func (v *View) RootNodes() []Node {
	roots := make([]Node, len(v.lexicons))
	for i, lex := range v.lexicons {
		roots[i] = Node{
			LexiconID: i,
			lex:       lex,
			backing:   lex.Root(),
			Codepoint: 0,
		}
	}
	return roots
}

// Children returns node's codepoint-collapsed children. Children with
// the same codepoint, possibly drawn from different lexicons, are
// returned as distinct Node values; callers group them by codepoint as
// needed.
func (v *View) Children(node Node) []Node {
	key := childCacheKey{lexiconID: node.LexiconID, node: node.backing}
	if cached, ok := v.childCache.Get(key); ok {
		return cached
	}

	edges := node.lex.Children(node.backing)
	var children []Node
	if node.lex.EncodesCodepoints() {
		for _, e := range edges {
			children = append(children, v.newChild(node, e.Node, e.Label))
		}
	} else {
		children = v.expandUTF8(node, edges)
	}

	if node.lex.HasPrefixProbabilities() {
		for i := range children {
			if logp, ok := node.lex.PrefixLogP(children[i].backing); ok {
				children[i].PrefixLogP = logp
			} else {
				children[i].PrefixLogP = node.PrefixLogP
			}
		}
	}

	v.childCache.Add(key, children)
	return children
}

func (v *View) newChild(parent Node, backing lexicon.NodeRef, codepoint rune) Node {
	return Node{
		LexiconID:  parent.LexiconID,
		lex:        parent.lex,
		backing:    backing,
		Codepoint:  codepoint,
		PrefixLogP: parent.PrefixLogP,
	}
}

// expandUTF8 walks byte-labeled edges, decoding each leading byte's
// declared continuation length and recursively descending until the
// full codepoint has been consumed (mirrors ExpandUTF8Node).
func (v *View) expandUTF8(parent Node, edges []lexicon.ChildEdge) []Node {
	var out []Node
	for _, e := range edges {
		b := byte(e.Label)
		codepoint, remaining, ok := utf8LeadByte(b)
		if !ok {
			continue
		}
		child := v.newChild(parent, e.Node, codepoint)
		if remaining == 0 {
			out = append(out, child)
			continue
		}
		out = append(out, v.expandContinuations(child, remaining)...)
	}
	return out
}

func (v *View) expandContinuations(node Node, remaining int) []Node {
	edges := node.lex.Children(node.backing)
	var out []Node
	for _, e := range edges {
		b := byte(e.Label)
		codepoint := (node.Codepoint << 6) | rune(b&0x3f)
		child := Node{
			LexiconID:  node.LexiconID,
			lex:        node.lex,
			backing:    e.Node,
			Codepoint:  codepoint,
			PrefixLogP: node.PrefixLogP,
		}
		if remaining == 1 {
			out = append(out, child)
		} else {
			out = append(out, v.expandContinuations(child, remaining-1)...)
		}
	}
	return out
}

// utf8LeadByte decodes a UTF-8 lead byte into its initial codepoint
// bits and the number of continuation bytes still required.
func utf8LeadByte(b byte) (codepoint rune, remaining int, ok bool) {
	switch {
	case b <= 0x7f:
		return rune(b), 0, true
	case b <= 0xbf:
		return 0, 0, false // continuation byte can't lead a node
	case b <= 0xdf:
		return rune(b & 0x1f), 1, true
	case b <= 0xef:
		return rune(b & 0x0f), 2, true
	default:
		return rune(b & 0x07), 3, true
	}
}

// ID returns the opaque identity of node's backing lexicon node, for
// use as part of a DecoderState hash key.
func (n Node) ID() lexicon.NodeRef { return n.backing }

// TermLogP returns node's complete-term log probability, if any.
func (v *View) TermLogP(node Node) (float32, bool) {
	return node.lex.TermLogP(node.backing)
}

// KeyString returns the UTF-8 concatenation of codepoints from root to
// node.
func (v *View) KeyString(node Node) string {
	return node.lex.Key(node.backing)
}
