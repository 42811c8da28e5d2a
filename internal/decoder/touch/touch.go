// Package touch implements the Touch Sequence component (spec §4.1):
// distance-based resampling of a raw gesture stroke plus the derived
// geometric features and spatial score tables the search loop reads
// on every touch index. Grounded on the original decoder's
// touch-sequence.{h,cc}.
package touch

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/internal/internalerr"
	"github.com/cognicore/swipedecoder/pkg/charops"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

var (
	errNaN        = fmt.Errorf("touch sample has non-finite coordinates: %w", internalerr.ErrInvalidInput)
	errNotUpdated = fmt.Errorf("features read before UpdateProperties: %w", internalerr.ErrInvariantViolation)
)

// RawPoint is one sample off the touch sensor, before resampling.
type RawPoint struct {
	X, Y   float32
	TimeMs int32
}

// Sequence holds a resampled stroke and its derived per-point features
// and spatial score tables.
type Sequence struct {
	xs, ys    []float32
	times     []int32
	lengths   []float32

	directions []float32
	curvatures []float32
	durations  []float32
	isCorner   []bool
	isPause    []bool
	nearestKey []rune

	// alignScores[i][k] = align_score(i, k); transitScores[i][k1*numKeys+k2]
	// = transit_score(i, k1, k2).
	alignScores   [][]float32
	transitScores [][]float32
	numKeys       int

	lastUpdateSize int
	updated        bool
	terminated     bool

	sampleDist float32
}

// New creates an empty Sequence that resamples incoming points at
// sampleDist apart (spec §4.1's resampling contract). sampleDist == 0
// disables resampling (every point is retained).
func New(sampleDist float32) *Sequence {
	return &Sequence{sampleDist: sampleDist}
}

// AddPoint appends a raw sample, applying the resampling contract: if
// the sequence is non-empty and the new point is closer than
// sampleDist to the last retained point, it is dropped unless isUp is
// set, in which case the last retained point is replaced.
func (s *Sequence) AddPoint(p RawPoint, isUp bool) error {
	if math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y)) {
		return errNaN
	}
	if isUp {
		s.terminated = true
	}
	n := len(s.xs)
	if n > 0 {
		last := n - 1
		d := dist(p.X, p.Y, s.xs[last], s.ys[last])
		length := s.lengths[last] + d
		if d < s.sampleDist {
			if isUp {
				s.xs[last], s.ys[last], s.times[last], s.lengths[last] = p.X, p.Y, p.TimeMs, length
			}
			return nil
		}
		s.xs = append(s.xs, p.X)
		s.ys = append(s.ys, p.Y)
		s.times = append(s.times, p.TimeMs)
		s.lengths = append(s.lengths, length)
		return nil
	}
	s.xs = append(s.xs, p.X)
	s.ys = append(s.ys, p.Y)
	s.times = append(s.times, p.TimeMs)
	s.lengths = append(s.lengths, 0)
	return nil
}

// Size returns the number of resampled points currently held.
func (s *Sequence) Size() int { return len(s.xs) }

// TotalLength returns the resampled stroke's cumulative path length.
func (s *Sequence) TotalLength() float32 {
	if len(s.lengths) == 0 {
		return 0
	}
	return s.lengths[len(s.lengths)-1]
}

// Point returns the i'th resampled point's coordinates and time.
func (s *Sequence) Point(i int) (x, y float32, timeMs int32) {
	return s.xs[i], s.ys[i], s.times[i]
}

// IsMidGesture reports whether the stroke has started but has not yet
// received the point that ends it (isUp in AddPoint).
func (s *Sequence) IsMidGesture() bool {
	return len(s.xs) > 0 && !s.terminated
}

// UpdateProperties recomputes derived features and spatial score
// tables after new points have been appended. Only the trailing
// params.PointsToRecompute points are recomputed, per spec §4.1.
func (s *Sequence) UpdateProperties(kb *keyboard.Keyboard, pp params.Params) {
	n := len(s.xs)
	growTo(&s.directions, n)
	growTo(&s.curvatures, n)
	growTo(&s.durations, n)
	growBoolTo(&s.isCorner, n)
	growBoolTo(&s.isPause, n)
	growRuneTo(&s.nearestKey, n)
	s.numKeys = kb.NumKeys()

	start := s.lastUpdateSize - pp.PointsToRecompute
	if start < 0 {
		start = 0
	}

	for i := start; i < n; i++ {
		s.nearestKey[i] = kb.NearestKeyCode(s.xs[i], s.ys[i])
	}

	s.updateGeometry(start, pp)
	s.updateScores(kb, pp, start)

	s.lastUpdateSize = n
	s.updated = true
}

func (s *Sequence) updateGeometry(start int, pp params.Params) {
	n := len(s.xs)
	if n < 2 {
		return
	}
	from := start
	if from < 1 {
		from = 1
	}
	for i := from; i < n-1; i++ {
		s.directions[i] = angle(s.xs[i-1], s.ys[i-1], s.xs[i+1], s.ys[i+1])
	}
	s.directions[0] = s.directions[1]
	s.directions[n-1] = s.directions[n-2]

	for i := from; i < n-1; i++ {
		s.curvatures[i] = angleDiff(s.directions[i-1], s.directions[i+1])
	}

	for i := from; i < n-1; i++ {
		s.durations[i] = float32(s.times[i+1] - s.times[i-1])
	}

	fromCorner := start
	if fromCorner < 2 {
		fromCorner = 2
	}
	for i := fromCorner; i < n-1; i++ {
		s.isPause[i] = s.durations[i] >= pp.PauseDurationInMillis &&
			s.durations[i] > s.durations[i-1] &&
			s.durations[i] >= s.durations[i+1]
		s.isCorner[i] = s.curvatures[i] >= pp.MinCurvatureForCorner &&
			s.curvatures[i] > s.curvatures[i-1] &&
			s.curvatures[i] >= s.curvatures[i+1]
	}
}

func (s *Sequence) updateScores(kb *keyboard.Keyboard, pp params.Params, start int) {
	n := len(s.xs)
	numKeys := s.numKeys
	keyWidth := kb.MostCommonKeyWidth()

	growScoreTableTo(&s.alignScores, n, numKeys)
	growScoreTableTo(&s.transitScores, n, numKeys*numKeys)

	distanceWeight := 0.7 / (keyWidth * pp.KeyErrorSigma)
	rootDirectionWeight := 1 / (pp.DirectionErrorSigma * pp.DirectionErrorSigma)
	directionWeightScale := rootDirectionWeight / keyWidth

	for i := start; i < n; i++ {
		x, y := s.xs[i], s.ys[i]
		row := s.alignScores[i]
		for k := 0; k < numKeys; k++ {
			d := kb.PointToKeyDistance(x, y, keyboard.KeyId(k))
			row[k] = -sqr(d * distanceWeight)
		}

		var directionWeight float32
		if i == 0 {
			directionWeight = rootDirectionWeight
		} else {
			directionWeight = (s.lengths[i] - s.lengths[i-1]) * directionWeightScale
		}
		pauseScore := float32(0)
		if s.isPause[i] {
			pauseScore = pp.SkipPauseScore
		}
		cornerScore := float32(0)
		if s.isCorner[i] {
			cornerScore = s.curvatures[i] * pp.SkipCornerScore
		}

		trow := s.transitScores[i]
		for k1 := 0; k1 < numKeys; k1++ {
			for k2 := 0; k2 < numKeys; k2++ {
				if k1 == k2 {
					continue
				}
				ideal := kb.KeyToKeyDirection(keyboard.KeyId(k1), keyboard.KeyId(k2))
				directionError := angleDiff(s.directions[i], ideal)
				if directionError > math.Pi/4 {
					directionError = math.Pi / 4
				}
				directionScore := -sqr(directionError) * directionWeight
				trow[k1*numKeys+k2] = directionScore + pauseScore + cornerScore
			}
		}
	}
}

// AlignScore returns align_score(i, k): the score assuming the point
// at touch index i is the final alignment to key k.
func (s *Sequence) AlignScore(i int, k keyboard.KeyId) float32 {
	s.mustBeUpdated()
	return s.alignScores[i][k]
}

// TransitScore returns transit_score(i, k1, k2) for k1 != k2; the
// score assuming the point at touch index i is still in transit from
// k1 toward k2.
func (s *Sequence) TransitScore(i int, k1, k2 keyboard.KeyId) float32 {
	s.mustBeUpdated()
	return s.transitScores[i][int(k1)*s.numKeys+int(k2)]
}

// NearestKey returns nearest_key[i].
func (s *Sequence) NearestKey(i int) rune {
	s.mustBeUpdated()
	return s.nearestKey[i]
}

// IsCorner reports is_corner[i].
func (s *Sequence) IsCorner(i int) bool {
	s.mustBeUpdated()
	return s.isCorner[i]
}

// IsPause reports is_pause[i].
func (s *Sequence) IsPause(i int) bool {
	s.mustBeUpdated()
	return s.isPause[i]
}

// Duration returns duration[i].
func (s *Sequence) Duration(i int) float32 {
	s.mustBeUpdated()
	return s.durations[i]
}

// Direction returns direction[i].
func (s *Sequence) Direction(i int) float32 {
	s.mustBeUpdated()
	return s.directions[i]
}

// GetLiteralCodes returns the base-lowercased codepoint sequence
// implied by the stroke's nearest keys: corner and pause points (plus
// the first and last point) contribute a code, other in-transit
// points are skipped, and a code repeated by consecutive contributing
// points collapses to one.
func (s *Sequence) GetLiteralCodes(ops charops.CharOps) []rune {
	s.mustBeUpdated()
	n := len(s.nearestKey)
	var literals []rune
	var prevCode rune
	for i := 0; i < n; i++ {
		if !s.isCorner[i] && !s.isPause[i] && i != 0 && i != n-1 {
			continue
		}
		code := s.nearestKey[i]
		if code <= 0 {
			continue
		}
		base := ops.ToBaseLower(code)
		if base != prevCode {
			literals = append(literals, base)
		}
		prevCode = base
	}
	return literals
}

// DebugString renders one line per resampled point: its coordinates,
// timestamp, and, once UpdateProperties has run, its derived nearest
// key/direction/curvature/duration/pause/corner features.
func (s *Sequence) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TouchSequence: (%d)\n", len(s.xs))
	hasProperties := s.updated && len(s.directions) == len(s.xs)
	for i := range s.xs {
		if hasProperties {
			fmt.Fprintf(&b, "    %d\t%c (%4.4f, %4.4f), time: %d, dir: %4.4f, cur: %4.4f, dur: %4.4f (%d, %d)\n",
				i, s.nearestKey[i], s.xs[i], s.ys[i], s.times[i],
				s.directions[i], s.curvatures[i], s.durations[i],
				boolToInt(s.isPause[i]), boolToInt(s.isCorner[i]))
		} else {
			fmt.Fprintf(&b, "    %d\t(%4.4f, %4.4f), time: %d, length: %4.4f\n",
				i, s.xs[i], s.ys[i], s.times[i], s.lengths[i])
		}
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Sequence) mustBeUpdated() {
	if !s.updated {
		panic(errNotUpdated)
	}
}

func growTo(dst *[]float32, n int) {
	if len(*dst) < n {
		grown := make([]float32, n)
		copy(grown, *dst)
		*dst = grown
	}
}

func growBoolTo(dst *[]bool, n int) {
	if len(*dst) < n {
		grown := make([]bool, n)
		copy(grown, *dst)
		*dst = grown
	}
}

func growRuneTo(dst *[]rune, n int) {
	if len(*dst) < n {
		grown := make([]rune, n)
		copy(grown, *dst)
		*dst = grown
	}
}

func growScoreTableTo(dst *[][]float32, n, width int) {
	if len(*dst) < n {
		grown := make([][]float32, n)
		copy(grown, *dst)
		*dst = grown
	}
	for i := 0; i < n; i++ {
		if len((*dst)[i]) != width {
			(*dst)[i] = make([]float32, width)
		}
	}
}

func sqr(x float32) float32 { return x * x }

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

func angleDiff(a1, a2 float32) float32 {
	diff := float32(math.Abs(float64(a1 - a2)))
	if diff >= math.Pi {
		return 2*math.Pi - diff
	}
	return diff
}
