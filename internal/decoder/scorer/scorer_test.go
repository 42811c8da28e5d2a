package scorer

import (
	"math"
	"testing"

	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

type fakeModel struct {
	logp        map[string]float32
	predictions []lexicon.Prediction
}

type fakeScorer struct{ m *fakeModel }

func (m *fakeModel) NewScorer(preceding, following []string) (lexicon.Scorer, error) {
	return fakeScorer{m}, nil
}
func (m *fakeModel) IsInVocabulary(term string) bool { return true }

func (s fakeScorer) TermsLogP(terms []string) float32 { return s.TermsConditionalLogP(terms) }
func (s fakeScorer) TermsConditionalLogP(terms []string) float32 {
	if len(terms) == 0 {
		return float32(math.Inf(-1))
	}
	if logp, ok := s.m.logp[terms[len(terms)-1]]; ok {
		return logp
	}
	return float32(math.Inf(-1))
}
func (s fakeScorer) PredictNext(terms []string, max int) []lexicon.Prediction {
	if max < len(s.m.predictions) {
		return s.m.predictions[:max]
	}
	return s.m.predictions
}

func TestTermsConditionalLogPInterpolatesAcrossModels(t *testing.T) {
	a := &fakeModel{logp: map[string]float32{"cat": -1.0}}
	b := &fakeModel{logp: map[string]float32{"cat": -3.0}}

	in := New([]WeightedModel{{Model: a, Weight: 0.5}, {Model: b, Weight: 0.5}}, nil, nil)
	got := in.TermsConditionalLogP([]string{"cat"})

	want := math.Log(0.5*math.Exp(-1.0) + 0.5*math.Exp(-3.0))
	if math.Abs(float64(got)-want) > 1e-4 {
		t.Errorf("TermsConditionalLogP = %v, want %v", got, want)
	}
}

func TestTermsConditionalLogPAllNegInfReturnsNegInf(t *testing.T) {
	a := &fakeModel{logp: map[string]float32{}}
	in := New([]WeightedModel{{Model: a, Weight: 1}}, nil, nil)
	got := in.TermsConditionalLogP([]string{"unknown"})
	if !math.IsInf(float64(got), -1) {
		t.Errorf("TermsConditionalLogP = %v, want -Inf", got)
	}
}

func TestPredictNextRescoresMissingScorers(t *testing.T) {
	a := &fakeModel{
		logp:        map[string]float32{"cats": -2.0},
		predictions: []lexicon.Prediction{{Term: "cats", LogP: -1.0}},
	}
	b := &fakeModel{logp: map[string]float32{"cats": -4.0}}

	in := New([]WeightedModel{{Model: a, Weight: 0.5}, {Model: b, Weight: 0.5}}, nil, nil)
	preds := in.PredictNext([]string{"the"}, 10)
	if len(preds) != 1 || preds[0].Term != "cats" {
		t.Fatalf("PredictNext = %+v, want one prediction for 'cats'", preds)
	}

	want := math.Log(0.5*math.Exp(-1.0) + 0.5*math.Exp(-4.0))
	if math.Abs(float64(preds[0].LogP)-want) > 1e-4 {
		t.Errorf("PredictNext logp = %v, want %v (rescored on missing scorer b)", preds[0].LogP, want)
	}
}
