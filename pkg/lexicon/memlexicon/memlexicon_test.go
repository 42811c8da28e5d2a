package memlexicon

import (
	"math"
	"testing"
)

func TestRootToLeafSpellsWord(t *testing.T) {
	lex := New(map[string]float32{"cat": -2.0, "car": -3.0})

	root := lex.Root()
	var node = root
	for _, r := range "cat" {
		var next interface{}
		for _, edge := range lex.Children(node) {
			if edge.Label == r {
				next = edge.Node
				break
			}
		}
		if next == nil {
			t.Fatalf("no child for rune %q from node %q", r, lex.Key(node))
		}
		node = next
	}
	if got := lex.Key(node); got != "cat" {
		t.Errorf("Key() = %q, want \"cat\"", got)
	}
	logp, ok := lex.TermLogP(node)
	if !ok || logp != -2.0 {
		t.Errorf("TermLogP() = (%v, %v), want (-2.0, true)", logp, ok)
	}
}

func TestPrefixLogPIsBestReachableTerm(t *testing.T) {
	lex := New(map[string]float32{"cat": -2.0, "cats": -5.0, "car": -1.0})

	root := lex.Root()
	var cNode interface{}
	for _, edge := range lex.Children(root) {
		if edge.Label == 'c' {
			cNode = edge.Node
		}
	}
	if cNode == nil {
		t.Fatal("no child for 'c'")
	}
	logp, ok := lex.PrefixLogP(cNode)
	if !ok {
		t.Fatal("PrefixLogP() ok = false, want true")
	}
	if logp != -1.0 {
		t.Errorf("PrefixLogP(\"c\") = %v, want -1.0 (best of cat/cats/car)", logp)
	}
}

func TestNonTermNodeHasNoTermLogP(t *testing.T) {
	lex := New(map[string]float32{"cats": -1.0})
	root := lex.Root()
	var node interface{} = root
	for _, r := range "cat" {
		var next interface{}
		for _, edge := range lex.Children(node) {
			if edge.Label == r {
				next = edge.Node
			}
		}
		node = next
	}
	if _, ok := lex.TermLogP(node); ok {
		t.Error("TermLogP() ok = true for strict-prefix node \"cat\" of \"cats\", want false")
	}
}

func TestLanguageModelPredictNextRanksByLogP(t *testing.T) {
	lm := NewLanguageModel(map[string]float32{"the": -0.5, "a": -1.5, "an": -2.5})
	scorer, err := lm.NewScorer(nil, nil)
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	preds := scorer.PredictNext(nil, 2)
	if len(preds) != 2 {
		t.Fatalf("len(PredictNext()) = %d, want 2", len(preds))
	}
	if preds[0].Term != "the" || preds[1].Term != "a" {
		t.Errorf("PredictNext() = %+v, want [the a] in that order", preds)
	}
}

func TestScorerOutOfVocabularyIsNegInf(t *testing.T) {
	lm := NewLanguageModel(map[string]float32{"cat": -1.0})
	scorer, _ := lm.NewScorer(nil, nil)
	if got := scorer.TermsConditionalLogP([]string{"dog"}); !math.IsInf(float64(got), -1) {
		t.Errorf("TermsConditionalLogP(\"dog\") = %v, want -Inf", got)
	}
}
