package sqlitelexicon

import (
	"context"
	"math"
	"testing"
)

func openTestLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { lex.Close() })
	return lex
}

func childByLabel(t *testing.T, lex *Lexicon, node interface{}, r rune) interface{} {
	t.Helper()
	for _, edge := range lex.Children(node) {
		if edge.Label == r {
			return edge.Node
		}
	}
	t.Fatalf("no child for rune %q from node %q", r, lex.Key(node))
	return nil
}

func TestRootToLeafSpellsWord(t *testing.T) {
	lex := openTestLexicon(t)
	if err := lex.Ingest(context.Background(), map[string]float32{"cat": -2.0, "car": -3.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	node := lex.Root()
	for _, r := range "cat" {
		node = childByLabel(t, lex, node, r)
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
	lex := openTestLexicon(t)
	if err := lex.Ingest(context.Background(), map[string]float32{"cat": -2.0, "cats": -5.0, "car": -1.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	cNode := childByLabel(t, lex, lex.Root(), 'c')
	logp, ok := lex.PrefixLogP(cNode)
	if !ok {
		t.Fatal("PrefixLogP() ok = false, want true")
	}
	if logp != -1.0 {
		t.Errorf("PrefixLogP(\"c\") = %v, want -1.0 (best of cat/cats/car)", logp)
	}
}

func TestIngestUpdatesExistingTermLogP(t *testing.T) {
	lex := openTestLexicon(t)
	ctx := context.Background()
	if err := lex.Ingest(ctx, map[string]float32{"cat": -2.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := lex.Ingest(ctx, map[string]float32{"cat": -9.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	node := lex.Root()
	for _, r := range "cat" {
		node = childByLabel(t, lex, node, r)
	}
	logp, ok := lex.TermLogP(node)
	if !ok || logp != -9.0 {
		t.Errorf("TermLogP() = (%v, %v), want (-9.0, true) after re-ingest", logp, ok)
	}
}

func TestLanguageModelPredictNextRanksByLogP(t *testing.T) {
	lex := openTestLexicon(t)
	if err := lex.Ingest(context.Background(), map[string]float32{"the": -0.5, "a": -1.5, "an": -2.5}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	lm := NewLanguageModel(lex)
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
	lex := openTestLexicon(t)
	if err := lex.Ingest(context.Background(), map[string]float32{"cat": -1.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	lm := NewLanguageModel(lex)
	scorer, _ := lm.NewScorer(nil, nil)
	if got := scorer.TermsConditionalLogP([]string{"dog"}); !math.IsInf(float64(got), -1) {
		t.Errorf("TermsConditionalLogP(\"dog\") = %v, want -Inf", got)
	}
}

func TestIsInVocabulary(t *testing.T) {
	lex := openTestLexicon(t)
	if err := lex.Ingest(context.Background(), map[string]float32{"cat": -1.0}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	lm := NewLanguageModel(lex)
	if !lm.IsInVocabulary("cat") {
		t.Error("IsInVocabulary(\"cat\") = false, want true")
	}
	if lm.IsInVocabulary("dog") {
		t.Error("IsInVocabulary(\"dog\") = true, want false")
	}
}
