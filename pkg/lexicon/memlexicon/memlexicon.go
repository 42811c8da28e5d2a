// Package memlexicon is the in-memory reference Lexicon and
// LanguageModel implementation (SPEC_FULL.md's MODULE LAYOUT): a plain
// Go rune-trie over a word → unigram log-probability table, used by
// tests and by the decode-cli tool, whose pkg/config Loader builds
// every lexicon with it. Grounded on pkg/lexicon.Lexicon/LanguageModel and the
// teacher's small, data-driven collaborator style (pkg/charops).
package memlexicon

import (
	"math"
	"sort"

	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

var negInf = float32(math.Inf(-1))

type node struct {
	parent   *node
	codepoint rune
	children map[rune]*node

	hasTerm  bool
	termLogP float32

	hasPrefix  bool
	prefixLogP float32
}

// Lexicon is an in-memory word list with unigram and prefix
// log-probabilities, built once from a term→logp table via New.
type Lexicon struct {
	root *node
}

var _ lexicon.Lexicon = (*Lexicon)(nil)

// New builds a Lexicon from terms: a map of word to its unigram log
// probability. Prefix log-probabilities are derived as the best
// (highest) term log-probability reachable through each prefix node,
// computed once at construction (spec §6.2's PrefixLogP contract).
func New(terms map[string]float32) *Lexicon {
	root := &node{children: make(map[rune]*node)}
	for term, logp := range terms {
		cur := root
		for _, r := range term {
			child, ok := cur.children[r]
			if !ok {
				child = &node{parent: cur, codepoint: r, children: make(map[rune]*node)}
				cur.children[r] = child
			}
			cur = child
		}
		cur.hasTerm = true
		cur.termLogP = logp
	}
	computePrefixLogP(root)
	return &Lexicon{root: root}
}

// computePrefixLogP fills in prefixLogP bottom-up as the max of a
// node's own termLogP (if any) and its children's prefixLogP.
func computePrefixLogP(n *node) float32 {
	best := negInf
	if n.hasTerm {
		best = n.termLogP
	}
	for _, child := range n.children {
		if cp := computePrefixLogP(child); cp > best {
			best = cp
		}
	}
	if best > negInf {
		n.hasPrefix = true
		n.prefixLogP = best
	}
	return best
}

// Root returns the lexicon's root node.
func (l *Lexicon) Root() lexicon.NodeRef { return l.root }

// Children returns node's direct children, one codepoint-labeled edge
// per child.
func (l *Lexicon) Children(ref lexicon.NodeRef) []lexicon.ChildEdge {
	n := ref.(*node)
	edges := make([]lexicon.ChildEdge, 0, len(n.children))
	for r, child := range n.children {
		edges = append(edges, lexicon.ChildEdge{Label: r, Node: child})
	}
	return edges
}

// Key returns the string spelled out from the root to node.
func (l *Lexicon) Key(ref lexicon.NodeRef) string {
	n := ref.(*node)
	var runes []rune
	for cur := n; cur.parent != nil; cur = cur.parent {
		runes = append(runes, cur.codepoint)
	}
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// TermLogP returns node's complete-term log probability, if any.
func (l *Lexicon) TermLogP(ref lexicon.NodeRef) (float32, bool) {
	n := ref.(*node)
	return n.termLogP, n.hasTerm
}

// PrefixLogP returns node's precomputed best reachable term
// log-probability.
func (l *Lexicon) PrefixLogP(ref lexicon.NodeRef) (float32, bool) {
	n := ref.(*node)
	return n.prefixLogP, n.hasPrefix
}

// HasPrefixProbabilities always reports true: New precomputes one for
// every node reachable from a term.
func (l *Lexicon) HasPrefixProbabilities() bool { return true }

// EncodesCodepoints reports true: Children's labels are already full
// runes, not raw UTF-8 bytes.
func (l *Lexicon) EncodesCodepoints() bool { return true }

// LanguageModel is a unigram-only lexicon.LanguageModel backed by the
// same term table a Lexicon was built from.
type LanguageModel struct {
	terms map[string]float32
	order []string
}

var _ lexicon.LanguageModel = (*LanguageModel)(nil)

// NewLanguageModel builds a unigram model from terms, ranking
// PredictNext candidates by log-probability once up front.
func NewLanguageModel(terms map[string]float32) *LanguageModel {
	order := make([]string, 0, len(terms))
	for t := range terms {
		order = append(order, t)
	}
	sort.Slice(order, func(i, j int) bool { return terms[order[i]] > terms[order[j]] })
	return &LanguageModel{terms: terms, order: order}
}

// NewScorer returns a scorer over this model's unigram table; the
// unigram model ignores preceding/following context, since it has no
// notion of conditioning beyond "is this term in the vocabulary".
func (m *LanguageModel) NewScorer(preceding, following []string) (lexicon.Scorer, error) {
	return &unigramScorer{model: m}, nil
}

// IsInVocabulary reports whether term has a unigram entry.
func (m *LanguageModel) IsInVocabulary(term string) bool {
	_, ok := m.terms[term]
	return ok
}

type unigramScorer struct {
	model *LanguageModel
}

var _ lexicon.Scorer = (*unigramScorer)(nil)

// TermsLogP sums each term's unigram log probability independently
// (no joint model), returning -Inf if any term is out of vocabulary.
func (s *unigramScorer) TermsLogP(terms []string) float32 {
	var sum float32
	for _, t := range terms {
		logp, ok := s.model.terms[t]
		if !ok {
			return negInf
		}
		sum += logp
	}
	return sum
}

// TermsConditionalLogP returns the unigram log-probability of the
// last term in terms: a unigram model has no conditioning context.
func (s *unigramScorer) TermsConditionalLogP(terms []string) float32 {
	if len(terms) == 0 {
		return negInf
	}
	last := terms[len(terms)-1]
	logp, ok := s.model.terms[last]
	if !ok {
		return negInf
	}
	return logp
}

// PredictNext returns up to max vocabulary terms ranked by
// unigram log-probability, independent of terms (a unigram model
// can't condition on context); callers filter by prefix.
func (s *unigramScorer) PredictNext(terms []string, max int) []lexicon.Prediction {
	n := max
	if n > len(s.model.order) {
		n = len(s.model.order)
	}
	out := make([]lexicon.Prediction, 0, n)
	for _, term := range s.model.order[:n] {
		out = append(out, lexicon.Prediction{Term: term, LogP: s.model.terms[term]})
	}
	return out
}
