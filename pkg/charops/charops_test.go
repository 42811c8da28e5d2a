package charops

import "testing"

func TestToBaseLowerStripsDiacritics(t *testing.T) {
	cases := map[rune]rune{
		'É': 'e',
		'ñ': 'n',
		'A': 'a',
		'z': 'z',
	}
	for in, want := range cases {
		if got := Default.ToBaseLower(in); got != want {
			t.Errorf("ToBaseLower(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDigraphForKnownLigature(t *testing.T) {
	first, second, ok := Default.DigraphFor('æ')
	if !ok || first != 'a' || second != 'e' {
		t.Errorf("DigraphFor('æ') = (%q, %q, %v), want (a, e, true)", first, second, ok)
	}
}

func TestDigraphForUnknownRune(t *testing.T) {
	if _, _, ok := Default.DigraphFor('x'); ok {
		t.Error("DigraphFor('x') ok = true, want false")
	}
}

func TestIsSkippable(t *testing.T) {
	if !Default.IsSkippable('\'') || !Default.IsSkippable('-') {
		t.Error("IsSkippable should report true for apostrophe and hyphen")
	}
	if Default.IsSkippable('a') {
		t.Error("IsSkippable('a') = true, want false")
	}
}
