package search

import (
	"testing"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/decoder/touch"
	"github.com/cognicore/swipedecoder/pkg/charops"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

func twoKeyKeyboard(t *testing.T) *keyboard.Keyboard {
	t.Helper()
	kb, err := keyboard.New(keyboard.Layout{
		MostCommonKeyWidth:  1,
		MostCommonKeyHeight: 1,
		KeyboardWidth:       2,
		KeyboardHeight:      1,
		Keys: []keyboard.Key{
			{Codepoint: 'a', X: 0, Y: 0, Width: 1, Height: 1},
			{Codepoint: 'b', X: 1, Y: 0, Width: 1, Height: 1},
		},
	}, nil)
	if err != nil {
		t.Fatalf("keyboard.New() error = %v", err)
	}
	return kb
}

func TestPassTokenFirstPointUsesFirstPointWeight(t *testing.T) {
	kb := twoKeyKeyboard(t)
	p := params.Default()

	seq := touch.New(0)
	if err := seq.AddPoint(touch.RawPoint{X: 0, Y: 0, TimeMs: 0}, true); err != nil {
		t.Fatalf("AddPoint() error = %v", err)
	}
	seq.UpdateProperties(kb, p)

	e := NewExpander(NewSpace(p), nil, kb, charops.Default, p)

	child := &Token{AlignedKey: kb.KeyIndex('a'), PrevAlignedKey: keyboard.InvalidKeyId}
	child.Next.Invalidate()

	if !e.passToken(child, child, seq, 0) {
		t.Fatal("passToken() = false, want true (first point always improves from -Inf)")
	}

	want := seq.AlignScore(0, kb.KeyIndex('a')) * p.FirstPointWeight
	if child.Next.AlignScore != want {
		t.Errorf("Next.AlignScore = %v, want %v (point align score * FirstPointWeight)", child.Next.AlignScore, want)
	}
	if child.Next.TransitScore != negInf {
		t.Errorf("Next.TransitScore = %v, want -Inf for a root-to-first-key pass", child.Next.TransitScore)
	}
}

func TestPassTokenDoesNotRegressOnWorseAlignment(t *testing.T) {
	kb := twoKeyKeyboard(t)
	p := params.Default()
	e := NewExpander(NewSpace(p), nil, kb, charops.Default, p)

	seq := touch.New(0)
	seq.AddPoint(touch.RawPoint{X: 0, Y: 0, TimeMs: 0}, true)
	seq.UpdateProperties(kb, p)

	tok := &Token{AlignedKey: kb.KeyIndex('a'), PrevAlignedKey: keyboard.InvalidKeyId}
	tok.Next = Alignment{Index: 0, AlignScore: 1000, TransitScore: negInf} // unrealistically high, must not be beaten

	improved := e.passToken(tok, tok, seq, 0)
	if improved {
		t.Error("passToken() = true, want false (existing Next already beats the new candidate)")
	}
	if tok.Next.AlignScore != 1000 {
		t.Errorf("Next.AlignScore = %v, want unchanged 1000", tok.Next.AlignScore)
	}
}

func TestShouldExpandChildrenAllowsRootAlways(t *testing.T) {
	kb := twoKeyKeyboard(t)
	p := params.Default()
	e := NewExpander(NewSpace(p), nil, kb, charops.Default, p)

	seq := touch.New(0)
	seq.AddPoint(touch.RawPoint{X: 0, Y: 0, TimeMs: 0}, true)
	seq.UpdateProperties(kb, p)

	root := &Token{AlignedKey: keyboard.InvalidKeyId}
	if !e.shouldExpandChildren(root, seq) {
		t.Error("shouldExpandChildren(root) = false, want true")
	}
}

func TestChildScoreExceedsBoundFalseForRoot(t *testing.T) {
	p := params.Default()
	e := NewExpander(NewSpace(p), nil, nil, charops.Default, p)
	root := &Token{AlignedKey: keyboard.InvalidKeyId}
	if e.childScoreExceedsBound(root, 0) {
		t.Error("childScoreExceedsBound(root) = true, want false (root has no key to bound)")
	}
}
