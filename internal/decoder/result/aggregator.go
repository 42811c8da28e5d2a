// Package result implements the Result Aggregator (C7): it walks the
// tokens resident at the final touch index, separates complete terms
// from open prefixes, scores and merges prefix completions, applies
// the spatial score adjustment, and returns the final ranked
// suggestion list. Grounded on the original decoder's
// GestureDecoder::ProcessEndOfInput, ExtractEndOfInputTerminal,
// ProcessPrefixCompletions, ApplyScoreAdjustments and
// SuppressUppercaseResults.
package result

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/scorer"
	"github.com/cognicore/swipedecoder/internal/decoder/search"
	"github.com/cognicore/swipedecoder/internal/decoder/trie"
)

var negInf = float32(math.Inf(-1))

// Result is the DecoderResult from spec §3: a ranked suggestion with
// its spatial and language-model score components kept separate so
// callers can re-weight or explain a suggestion.
type Result struct {
	Word         string
	SpatialScore float32
	LMScore      float32
}

// Score is SpatialScore + LMScore, the value suggestions are ranked
// by.
func (r Result) Score() float32 { return r.SpatialScore + r.LMScore }

// Aggregator is C7. A fresh Aggregator is built per Decode call,
// sharing the View and Interpolated scorer that the rest of the
// search used.
type Aggregator struct {
	view   *trie.View
	scorer *scorer.Interpolated
	params params.Params
}

// New builds an Aggregator.
func New(view *trie.View, sc *scorer.Interpolated, p params.Params) *Aggregator {
	return &Aggregator{view: view, scorer: sc, params: p}
}

// Aggregate walks space for every token whose Index() is lastIndex and
// returns the final ranked, deduplicated, uppercase-suppressed
// suggestion list (spec §4.7).
func (a *Aggregator) Aggregate(space *search.Space, lastIndex int) []Result {
	var results []Result
	var prefixes []*search.Token

	for _, h := range space.Handles() {
		t := space.Token(h)
		if t.Index() != lastIndex || t.HasPrevTerms() {
			continue
		}
		if t.IsTerminal(a.view) {
			if r, ok := a.extractTerminal(t); ok {
				results = addResultIfBetter(results, r)
			}
		}
		if len(t.Children(a.view)) > 0 {
			prefixes = append(prefixes, t)
		}
	}

	sort.Slice(prefixes, func(i, j int) bool { return prefixes[i].TotalScore() > prefixes[j].TotalScore() })
	if len(prefixes) > int(a.params.PrefixBeamWidth) {
		prefixes = prefixes[:a.params.PrefixBeamWidth]
	}

	results = a.processPrefixCompletions(prefixes, results)
	a.applyScoreAdjustments(results)

	sort.Slice(results, func(i, j int) bool { return results[i].Score() > results[j].Score() })
	if n := int(a.params.NumSuggestionsToReturn); len(results) > n {
		results = results[:n]
	}

	return suppressUppercase(results, a.params.UppercaseSuppressionScoreThreshold)
}

// extractTerminal builds a Result for a token that completes a term at
// the last touch index, using the key string of its last node (the
// original decoder's ExtractEndOfInputTerminal takes nodes().back()
// unconditionally rather than the specific terminal node, and this
// matches it).
func (a *Aggregator) extractTerminal(t *search.Token) (Result, bool) {
	if len(t.Nodes) == 0 {
		return Result{}, false
	}
	last := t.Nodes[len(t.Nodes)-1]
	term := a.view.KeyString(last)

	spatial := t.Cur.AlignScore
	lm := a.conditionalLMScore(term, t) + t.PrevLMScore
	if spatial <= negInf || lm <= negInf {
		return Result{}, false
	}
	return Result{Word: term, SpatialScore: spatial, LMScore: lm}, true
}

// conditionalLMScore is GetConditionalLanguageModelScore: prefer the
// scorer's conditional log-probability for term; if no scorer reports
// one, fall back to the token's own unigram term log-probability, with
// a lexicon-unigram backoff penalty applied whenever at least one
// scorer was loaded (a loaded LM that stays silent on term is weaker
// evidence than having no LM at all).
func (a *Aggregator) conditionalLMScore(term string, t *search.Token) float32 {
	if logp := a.scorer.TermsConditionalLogP([]string{term}); logp > negInf {
		return logp
	}
	unigram := a.unigramScore(t)
	if a.scorer.HasScorers() {
		unigram += a.params.LexiconUnigramBackoff
	}
	return unigram
}

// unigramScore is GetUnigramScore: the best TermLogP across every node
// the token spans (a token can span more than one lexicon).
func (a *Aggregator) unigramScore(t *search.Token) float32 {
	best := negInf
	for _, n := range t.Nodes {
		if logp, ok := a.view.TermLogP(n); ok && logp > best {
			best = logp
		}
	}
	return best
}

// processPrefixCompletions implements spec §4.7's prefix-completion
// step: each surviving open-prefix token is matched against the
// scorer's next-word predictions, then, if fewer than MinCompletions
// matched, supplemented with a best-first trie expansion scored by
// term log-probability. Grounded on ProcessPrefixCompletions and
// GetBestCompletionsForNode.
func (a *Aggregator) processPrefixCompletions(prefixes []*search.Token, results []Result) []Result {
	if len(prefixes) == 0 {
		return results
	}
	predictions := a.scorer.PredictNext(nil, int(a.params.MaxNextWordPredictions))

	for _, p := range prefixes {
		prefixTerm := a.view.KeyString(p.Nodes[0])
		spatial := p.Cur.AlignScore + a.params.CompletionScore

		matched := 0
		for _, pred := range predictions {
			if strings.HasPrefix(pred.Term, prefixTerm) {
				results = addResultIfBetter(results, Result{Word: pred.Term, SpatialScore: spatial, LMScore: pred.LogP})
				matched++
			}
		}

		if matched >= int(a.params.MinCompletions) {
			continue
		}
		for _, node := range p.Nodes {
			for term, rawLogp := range a.bestCompletions(node, int(a.params.CompletionBeamSize)) {
				lm := a.scorer.TermsConditionalLogP([]string{term})
				if rawLogp > lm {
					lm = rawLogp
				}
				lm += a.params.LexiconUnigramBackoff
				results = addResultIfBetter(results, Result{Word: term, SpatialScore: spatial, LMScore: lm})
			}
		}
	}
	return results
}

// bestCompletions runs a best-first expansion of the trie rooted at
// start, bounded to maxCompletions active branches per round, and
// returns up to maxCompletions complete terms keyed by their raw term
// log-probability. Grounded on GetBestCompletionsForNode's bounded
// active-node / completion-set pair.
func (a *Aggregator) bestCompletions(start trie.Node, maxCompletions int) map[string]float32 {
	completions := make(map[string]float32)
	scoreToBeat := negInf
	active := []trie.Node{start}

	for len(active) > 0 {
		sort.Slice(active, func(i, j int) bool { return active[i].PrefixLogP > active[j].PrefixLogP })
		if len(active) > maxCompletions {
			active = active[:maxCompletions]
		}

		var next []trie.Node
		for _, node := range active {
			if node.PrefixLogP <= scoreToBeat {
				continue
			}
			if logp, ok := a.view.TermLogP(node); ok {
				completions[a.view.KeyString(node)] = logp
				if len(completions) > maxCompletions {
					dropWorst(completions)
				}
				if len(completions) == maxCompletions {
					scoreToBeat = worstScore(completions)
				}
			}
			for _, child := range a.view.Children(node) {
				if child.PrefixLogP > scoreToBeat {
					next = append(next, child)
				}
			}
		}
		active = next
	}
	return completions
}

func worstScore(m map[string]float32) float32 {
	worst := float32(math.Inf(1))
	for _, logp := range m {
		if logp < worst {
			worst = logp
		}
	}
	return worst
}

func dropWorst(m map[string]float32) {
	var worstTerm string
	worst := float32(math.Inf(1))
	for term, logp := range m {
		if logp < worst {
			worst, worstTerm = logp, term
		}
	}
	delete(m, worstTerm)
}

// applyScoreAdjustments scales each result's spatial score toward
// MaxImprecisematchPenalty as the original score falls below
// PreciseMatchThreshold, linearly between 0 at a perfect (0) score and
// the full penalty at or below the threshold. Grounded on
// ApplyScoreAdjustments's gesture-input branch.
func (a *Aggregator) applyScoreAdjustments(results []Result) {
	threshold := a.params.PreciseMatchThreshold
	maxPenalty := a.params.MaxImprecisematchPenalty
	for i := range results {
		adjustment := maxPenalty
		if results[i].SpatialScore > threshold {
			adjustment = (results[i].SpatialScore / threshold) * maxPenalty
		}
		results[i].SpatialScore += adjustment
	}
}

// addResultIfBetter merges r into results, keeping whichever scoring
// of a duplicate word is higher (spec §4.7's word-uniqueness
// invariant).
func addResultIfBetter(results []Result, r Result) []Result {
	for i := range results {
		if results[i].Word == r.Word {
			if r.Score() > results[i].Score() {
				results[i] = r
			}
			return results
		}
	}
	return append(results, r)
}

// suppressUppercase drops an uppercase/mixed-case result when it has a
// plain-lowercase twin in results and its score falls more than
// threshold below the twin's (threshold is negative, so this only
// fires on a large gap). Applied after sorting and truncation, mirroring
// the original's in-place resize-then-suppress ordering.
func suppressUppercase(results []Result, threshold float32) []Result {
	lowerScore := make(map[string]float32, len(results))
	for _, r := range results {
		lower := strings.ToLower(r.Word)
		if lower != r.Word {
			continue
		}
		if sc, ok := lowerScore[lower]; !ok || r.Score() > sc {
			lowerScore[lower] = r.Score()
		}
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		lower := strings.ToLower(r.Word)
		if lower == r.Word {
			out = append(out, r)
			continue
		}
		twinScore, hasTwin := lowerScore[lower]
		if !hasTwin || r.Score()-twinScore >= threshold {
			out = append(out, r)
		}
	}
	return out
}
