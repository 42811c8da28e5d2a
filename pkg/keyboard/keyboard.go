// Package keyboard implements the Keyboard external collaborator from
// spec §6.1. Keyboard-layout construction from raw key arrays is out
// of scope for the decoding core (spec §1); this package supplies the
// minimal concrete implementation the core needs to run end to end,
// grounded on the original decoder's keyboard.{h,cc}.
package keyboard

import (
	"fmt"
	"math"
	"unicode"

	"github.com/cognicore/swipedecoder/internal/internalerr"
	"github.com/cognicore/swipedecoder/pkg/charops"
)

var errNoKeys = fmt.Errorf("keyboard layout has no keys: %w", internalerr.ErrInvalidInput)

// KeyId identifies a key on a Keyboard. -1 (InvalidKeyId) means none.
type KeyId int16

// InvalidKeyId is the sentinel for "no key".
const InvalidKeyId KeyId = -1

// Key is one physical key: a codepoint and its on-screen rectangle.
type Key struct {
	Codepoint rune
	X, Y      float32
	Width     float32
	Height    float32
}

// Layout is the raw, serializable description of a keyboard: the
// construction-from-raw-arrays step spec §1 declares out of scope.
// Callers build a Keyboard from a Layout via New.
type Layout struct {
	MostCommonKeyWidth  float32
	MostCommonKeyHeight float32
	KeyboardWidth       float32
	KeyboardHeight      float32
	Keys                []Key
}

// Keyboard is the read-only geometric/lookup view over a Layout that
// the decoder core consumes (spec §6.1).
type Keyboard struct {
	charOps charops.CharOps

	mostCommonKeyWidth  float32
	mostCommonKeyHeight float32
	keyboardWidth       float32
	keyboardHeight      float32

	codepoints []rune
	centerXs   []float32
	centerYs   []float32
	widths     []float32
	heights    []float32

	codeToKey map[rune]KeyId

	keyDistances  [][]float32
	keyDirections [][]float32
}

// New builds a Keyboard from a Layout, or returns an error if the
// layout has no keys (mirrors CreateKeyboardOrNull's "0 valid keys"
// rejection).
func New(layout Layout, ops charops.CharOps) (*Keyboard, error) {
	if len(layout.Keys) == 0 {
		return nil, errNoKeys
	}
	if ops == nil {
		ops = charops.Default
	}

	kb := &Keyboard{
		charOps:             ops,
		mostCommonKeyWidth:  layout.MostCommonKeyWidth,
		mostCommonKeyHeight: layout.MostCommonKeyHeight,
		keyboardWidth:       layout.KeyboardWidth,
		keyboardHeight:      layout.KeyboardHeight,
		codeToKey:           make(map[rune]KeyId, len(layout.Keys)),
	}
	for _, k := range layout.Keys {
		kb.addKey(k)
	}
	kb.updateGeometricProperties()
	return kb, nil
}

func (kb *Keyboard) addKey(k Key) {
	id := KeyId(len(kb.codepoints))
	kb.codepoints = append(kb.codepoints, k.Codepoint)
	kb.centerXs = append(kb.centerXs, k.X)
	kb.centerYs = append(kb.centerYs, k.Y)
	kb.widths = append(kb.widths, k.Width)
	kb.heights = append(kb.heights, k.Height)
	if _, exists := kb.codeToKey[k.Codepoint]; !exists {
		kb.codeToKey[k.Codepoint] = id
	}
}

func (kb *Keyboard) updateGeometricProperties() {
	n := kb.NumKeys()
	kb.keyDistances = make([][]float32, n)
	kb.keyDirections = make([][]float32, n)
	for i := 0; i < n; i++ {
		kb.keyDistances[i] = make([]float32, n)
		kb.keyDirections[i] = make([]float32, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			kb.keyDistances[i][j] = dist(kb.centerXs[i], kb.centerYs[i], kb.centerXs[j], kb.centerYs[j])
			kb.keyDirections[i][j] = angle(kb.centerXs[i], kb.centerYs[i], kb.centerXs[j], kb.centerYs[j])
		}
	}
}

// NumKeys returns the number of keys on the keyboard.
func (kb *Keyboard) NumKeys() int { return len(kb.codepoints) }

// MostCommonKeyWidth returns the typical key width.
func (kb *Keyboard) MostCommonKeyWidth() float32 { return kb.mostCommonKeyWidth }

// MostCommonKeyHeight returns the typical key height.
func (kb *Keyboard) MostCommonKeyHeight() float32 { return kb.mostCommonKeyHeight }

// IsValidKeyIndex reports whether key is a real key on this keyboard.
func (kb *Keyboard) IsValidKeyIndex(key KeyId) bool {
	return key >= 0 && int(key) < kb.NumKeys()
}

// KeyCode returns the codepoint for the key id.
func (kb *Keyboard) KeyCode(key KeyId) rune {
	if !kb.IsValidKeyIndex(key) {
		return 0
	}
	return kb.codepoints[key]
}

// KeyIndex returns the key id for codepoint, or InvalidKeyId.
func (kb *Keyboard) KeyIndex(code rune) KeyId {
	if id, ok := kb.codeToKey[code]; ok {
		return id
	}
	return InvalidKeyId
}

// NearestKeyCode returns the codepoint of the key whose center is
// nearest (x, y).
func (kb *Keyboard) NearestKeyCode(x, y float32) rune {
	var (
		best     rune
		bestDist = float32(math.Inf(1))
	)
	for i := 0; i < kb.NumKeys(); i++ {
		d := dist(x, y, kb.centerXs[i], kb.centerYs[i])
		if d < bestDist {
			bestDist = d
			best = kb.codepoints[i]
		}
	}
	return best
}

// KeyToKeyDistance returns the raw center-to-center distance between
// two keys (0 for the same key).
func (kb *Keyboard) KeyToKeyDistance(i, j KeyId) float32 {
	if i == j {
		return 0
	}
	if !kb.IsValidKeyIndex(i) || !kb.IsValidKeyIndex(j) {
		return 0
	}
	return kb.keyDistances[i][j]
}

// KeyToKeyDirection returns the direction (radians) of the line from
// key i to key j.
func (kb *Keyboard) KeyToKeyDirection(i, j KeyId) float32 {
	if !kb.IsValidKeyIndex(i) || !kb.IsValidKeyIndex(j) {
		return 0
	}
	return kb.keyDirections[i][j]
}

// PointToKeyDistance computes the distance from (x, y) to key,
// handling wide keys (> 2x the common width) via point-to-segment
// distance to the key's centre axis, per spec §4.1.
func (kb *Keyboard) PointToKeyDistance(x, y float32, key KeyId) float32 {
	if !kb.IsValidKeyIndex(key) {
		return float32(math.Inf(1))
	}
	width := kb.widths[key]
	if width <= kb.mostCommonKeyWidth*2 {
		return dist(x, y, kb.centerXs[key], kb.centerYs[key])
	}
	span := (width - kb.mostCommonKeyWidth) / 2
	leftX := kb.centerXs[key] - span
	rightX := kb.centerXs[key] + span
	cy := kb.centerYs[key]
	return float32(math.Sqrt(float64(pointToSegmentDistSq(x, y, leftX, cy, rightX, cy))))
}

// CodeAlignsToKey reports whether code's base-lowered form maps to
// key: used to decide whether a token mid-digraph is still allowed to
// branch into its normal (non-digraph) children.
func (kb *Keyboard) CodeAlignsToKey(code rune, key KeyId) bool {
	lower := kb.charOps.ToBaseLower(code)
	return kb.KeyIndex(lower) == key
}

// KeysForCode returns the deduplicated, ordered set of keys that
// could produce codepoint code: the base-lower key, the first key of
// code's digraph (if any and distinct), and a dedicated locale key for
// code's plain-lowercased form (if distinct from the base-lower key),
// per spec §6.1.
func (kb *Keyboard) KeysForCode(code rune) []KeyId {
	var possible []KeyId
	baseLower := kb.charOps.ToBaseLower(code)
	baseLowerKey := kb.KeyIndex(baseLower)

	if baseLowerKey != InvalidKeyId {
		possible = append(possible, baseLowerKey)
	}

	if first, _, ok := kb.charOps.DigraphFor(baseLower); ok {
		if firstKey := kb.KeyIndex(first); firstKey != InvalidKeyId && firstKey != baseLowerKey {
			possible = append(possible, firstKey)
		}
	}

	// Dedicated locale key for the plain-lowercased (not base-folded)
	// form, e.g. Spanish 'ñ' alongside plain 'n'.
	if lowerKey := kb.KeyIndex(unicode.ToLower(code)); lowerKey != InvalidKeyId && lowerKey != baseLowerKey {
		possible = append(possible, lowerKey)
	}
	return possible
}

// SecondDigraphKey returns the second key of code's digraph if
// alignedKey is that digraph's first key.
func (kb *Keyboard) SecondDigraphKey(code rune, alignedKey KeyId) (KeyId, bool) {
	first, second, ok := kb.charOps.DigraphFor(kb.charOps.ToBaseLower(code))
	if !ok {
		return InvalidKeyId, false
	}
	firstKey := kb.KeyIndex(first)
	if alignedKey != firstKey {
		return InvalidKeyId, false
	}
	secondKey := kb.KeyIndex(second)
	if secondKey == InvalidKeyId {
		return InvalidKeyId, false
	}
	return secondKey, true
}

func dist(x1, y1, x2, y2 float32) float32 {
	dx, dy := x2-x1, y2-y1
	return float32(math.Hypot(float64(dx), float64(dy)))
}

func angle(x1, y1, x2, y2 float32) float32 {
	dx, dy := x2-x1, y2-y1
	if dx == 0 && dy == 0 {
		return 0
	}
	return float32(math.Atan2(float64(dy), float64(dx)))
}

func pointToSegmentDistSq(px, py, ax, ay, bx, by float32) float32 {
	abx, aby := bx-ax, by-ay
	apx, apy := px-ax, py-ay
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return apx*apx + apy*apy
	}
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx := ax + t*abx
	cy := ay + t*aby
	dx, dy := px-cx, py-cy
	return dx*dx + dy*dy
}
