// Package params collects the tunable constants the decoder core and
// its subpackages read (spec §6.5). It lives apart from the decoder
// facade package so that internal components (touch, trie, search,
// result) can depend on it without importing the facade.
package params

import "math"

// Params collects every tunable constant the decoder core reads.
// Values mirror the design constants the original gesture decoder
// shipped with (DecoderParams.h); callers load overrides via
// pkg/config.
type Params struct {
	TokenPoolCapacity      int32
	ActiveBeamWidth        int32
	PrefixBeamWidth        int32
	NumSuggestionsToReturn int32

	ScoreToBeatOffset     float32
	ScoreToBeatAbsolute   float32
	MinAlignKeyScore      float32
	FirstPointWeight      float32
	OmissionScore         float32
	CompletionScore       float32
	LexiconUnigramBackoff float32
	PrefixLMWeight        float32

	KeyErrorSigma         float32
	DirectionErrorSigma   float32
	SkipPauseScore        float32
	SkipCornerScore       float32
	MinCurvatureForCorner float32
	PauseDurationInMillis float32

	MaxImprecisematchPenalty           float32
	PreciseMatchThreshold              float32
	UppercaseSuppressionScoreThreshold float32

	MinCompletions          int32
	CompletionBeamSize      int32
	MaxNextWordPredictions  int32
	PruneWhenFreeRatioBelow float32
	PruneRatio              float32

	// PointsToRecompute bounds how many trailing points have their
	// spatial scores rebuilt when the stroke grows (spec §4.1, "K ≈ 3").
	PointsToRecompute int
}

// Default returns the design defaults from spec §6.5.
func Default() Params {
	return Params{
		TokenPoolCapacity:      1000,
		ActiveBeamWidth:        100,
		PrefixBeamWidth:        3,
		NumSuggestionsToReturn: 20,

		ScoreToBeatOffset:     -12.0,
		ScoreToBeatAbsolute:   float32(math.Inf(-1)),
		MinAlignKeyScore:      -8.0,
		FirstPointWeight:      2.0,
		OmissionScore:         -5.0,
		CompletionScore:       -4.0,
		LexiconUnigramBackoff: -5.0,
		PrefixLMWeight:        0.5,

		KeyErrorSigma:         0.9,
		DirectionErrorSigma:   0.7,
		SkipPauseScore:        -2.0,
		SkipCornerScore:       -4.0,
		MinCurvatureForCorner: float32(math.Pi / 4),
		PauseDurationInMillis: 200,

		MaxImprecisematchPenalty:           -4.0,
		PreciseMatchThreshold:              -2.0,
		UppercaseSuppressionScoreThreshold: -100.0,

		MinCompletions:          3,
		CompletionBeamSize:      20,
		MaxNextWordPredictions:  100,
		PruneWhenFreeRatioBelow: 0.10,
		PruneRatio:              0.50,

		PointsToRecompute: 3,
	}
}
