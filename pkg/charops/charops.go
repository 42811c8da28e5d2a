// Package charops implements the CharOps external collaborator from
// spec §6.3: base-lowercasing, digraph and skippable-rune lookups. It
// holds no UTF-8 scanning helpers. It deliberately stays tiny
// and data-driven, the way the teacher's ingest.Tokenizer keeps its
// rune classification inline rather than pulling in a text-processing
// framework.
package charops

import "unicode"

// CharOps is the capability the decoder core depends on for
// character-class questions. A production build would back this with
// full Unicode case-folding and locale-specific digraph tables; the
// reference implementation here covers Latin script plus the digraphs
// exercised by the spec's worked examples.
type CharOps interface {
	ToBaseLower(r rune) rune
	DigraphFor(r rune) (first, second rune, ok bool)
	IsSkippable(r rune) bool
}

// digraphs maps a (lowercased) codepoint to the two keys that jointly
// produce it, e.g. a ligature typed as two keystrokes on some layouts.
var digraphs = map[rune][2]rune{
	'æ': {'a', 'e'},
	'œ': {'o', 'e'},
	'ß': {'s', 's'},
}

// baseLower strips common Latin diacritics after lowercasing, so that
// "É" and "e" align to the same base key.
var baseLower = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ñ': 'n', 'ç': 'c', 'ý': 'y',
}

// Default is the package-level CharOps used when callers don't need a
// custom locale table.
var Default CharOps = defaultOps{}

type defaultOps struct{}

// ToBaseLower lowercases r and then strips the diacritic, if any,
// mapping it to the plain Latin letter used as the base key.
func (defaultOps) ToBaseLower(r rune) rune {
	lower := unicode.ToLower(r)
	if base, ok := baseLower[lower]; ok {
		return base
	}
	return lower
}

// DigraphFor reports the two keystrokes that form r's ligature, if r
// (lowercased) is a known digraph.
func (defaultOps) DigraphFor(r rune) (rune, rune, bool) {
	pair, ok := digraphs[unicode.ToLower(r)]
	if !ok {
		return 0, 0, false
	}
	return pair[0], pair[1], true
}

// IsSkippable reports whether r may be omitted from a gesture without
// penalty (apostrophes and hyphens inside words).
func (defaultOps) IsSkippable(r rune) bool {
	return r == '\'' || r == '-'
}
