// Package scorer implements the Interpolated Scorer (spec §4.3): a
// linear interpolation, in probability space, across an ordered list
// of per-LM scorers. Grounded on the original decoder's
// languageModel/interpolated-lm.{h,cc}.
package scorer

import (
	"math"
	"sort"

	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

// WeightedModel pairs a language model with its interpolation weight.
type WeightedModel struct {
	Model  lexicon.LanguageModel
	Weight float32
}

// Interpolated is a lexicon.Scorer that combines per-LM scorers,
// constructed fresh for each Decode call per spec §5 ("per-LM scorers
// are not thread-safe and must be reconstructed per Decode").
type Interpolated struct {
	weightedScorers []weightedScorer
}

type weightedScorer struct {
	scorer lexicon.Scorer
	weight float32
}

// New builds an Interpolated scorer over models, seeding each
// constituent scorer with (preceding, following) and normalizing
// weights to sum to 1. Models whose NewScorer fails are skipped, and
// the remaining weights are normalized among themselves.
func New(models []WeightedModel, preceding, following []string) *Interpolated {
	var sumWeights float32
	in := &Interpolated{}
	for _, m := range models {
		s, err := m.Model.NewScorer(preceding, following)
		if err != nil {
			continue
		}
		in.weightedScorers = append(in.weightedScorers, weightedScorer{
			scorer: s,
			weight: m.Weight,
		})
		sumWeights += m.Weight
	}
	if sumWeights == 0 {
		sumWeights = 1
	}
	for i := range in.weightedScorers {
		in.weightedScorers[i].weight /= sumWeights
	}
	return in
}

var negInf = float32(math.Inf(-1))

// HasScorers reports whether at least one constituent LM scorer was
// successfully constructed. Callers use this to decide whether a
// missing conditional score should fall back to a lexicon-unigram
// backoff penalty (spec §4.7) or be left unpenalized (no LMs loaded at
// all).
func (in *Interpolated) HasScorers() bool { return len(in.weightedScorers) > 0 }

// TermsLogP returns log(Σ_i w_i · exp(scorer_i.TermsLogP(terms))).
func (in *Interpolated) TermsLogP(terms []string) float32 {
	return in.interpolate(func(s lexicon.Scorer) float32 {
		return s.TermsLogP(terms)
	})
}

// TermsConditionalLogP returns
// log(Σ_i w_i · exp(scorer_i.TermsConditionalLogP(terms))).
func (in *Interpolated) TermsConditionalLogP(terms []string) float32 {
	return in.interpolate(func(s lexicon.Scorer) float32 {
		return s.TermsConditionalLogP(terms)
	})
}

func (in *Interpolated) interpolate(logp func(lexicon.Scorer) float32) float32 {
	var sum float64
	for _, ws := range in.weightedScorers {
		sum += math.Exp(float64(logp(ws.scorer))) * float64(ws.weight)
	}
	if sum == 0 {
		return negInf
	}
	return float32(math.Log(sum))
}

// PredictNext returns the union of each scorer's next-term
// predictions, mixed into true interpolated probabilities: a
// prediction surfaced by only some scorers is rescored on the
// remaining scorers via TermsConditionalLogP before being reported,
// rather than reported as a partial, under-weighted sum.
func (in *Interpolated) PredictNext(terms []string, max int) []lexicon.Prediction {
	type accum struct {
		prob    float64
		scorers map[int]bool
	}
	byTerm := make(map[string]*accum)
	order := make([]string, 0, max)

	for i, ws := range in.weightedScorers {
		for _, p := range ws.scorer.PredictNext(terms, max) {
			a, ok := byTerm[p.Term]
			if !ok {
				a = &accum{scorers: make(map[int]bool)}
				byTerm[p.Term] = a
				order = append(order, p.Term)
			}
			a.prob += math.Exp(float64(p.LogP)) * float64(ws.weight)
			a.scorers[i] = true
		}
	}

	results := make([]lexicon.Prediction, 0, len(order))
	for _, term := range order {
		a := byTerm[term]
		prob := a.prob
		if len(in.weightedScorers) > 1 {
			extended := append(append([]string{}, terms...), term)
			for i, ws := range in.weightedScorers {
				if a.scorers[i] {
					continue
				}
				logp := ws.scorer.TermsConditionalLogP(extended)
				prob += math.Exp(float64(logp)) * float64(ws.weight)
			}
		}
		results = append(results, lexicon.Prediction{Term: term, LogP: float32(math.Log(prob))})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].LogP > results[j].LogP })
	if len(results) > max {
		results = results[:max]
	}
	return results
}
