// Package config loads the decoder's on-disk configuration: the
// DecoderParams tuning file, a keyboard layout, and one or more
// lexicon word lists, all as YAML via gopkg.in/yaml.v3. Grounded on
// pkg/korel/config/config.go's plain os.ReadFile + yaml.Unmarshal
// loaders.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
)

// ParamsFile is the YAML shape for a DecoderParams override file.
// Every field is a pointer so an absent key leaves the corresponding
// params.Default() value untouched.
type ParamsFile struct {
	TokenPoolCapacity      *int32 `yaml:"token_pool_capacity"`
	ActiveBeamWidth        *int32 `yaml:"active_beam_width"`
	PrefixBeamWidth        *int32 `yaml:"prefix_beam_width"`
	NumSuggestionsToReturn *int32 `yaml:"num_suggestions_to_return"`

	ScoreToBeatOffset     *float32 `yaml:"score_to_beat_offset"`
	ScoreToBeatAbsolute   *float32 `yaml:"score_to_beat_absolute"`
	MinAlignKeyScore      *float32 `yaml:"min_align_key_score"`
	FirstPointWeight      *float32 `yaml:"first_point_weight"`
	OmissionScore         *float32 `yaml:"omission_score"`
	CompletionScore       *float32 `yaml:"completion_score"`
	LexiconUnigramBackoff *float32 `yaml:"lexicon_unigram_backoff"`
	PrefixLMWeight        *float32 `yaml:"prefix_lm_weight"`

	KeyErrorSigma         *float32 `yaml:"key_error_sigma"`
	DirectionErrorSigma   *float32 `yaml:"direction_error_sigma"`
	SkipPauseScore        *float32 `yaml:"skip_pause_score"`
	SkipCornerScore       *float32 `yaml:"skip_corner_score"`
	MinCurvatureForCorner *float32 `yaml:"min_curvature_for_corner"`
	PauseDurationInMillis *float32 `yaml:"pause_duration_in_millis"`

	MaxImprecisematchPenalty           *float32 `yaml:"max_imprecise_match_penalty"`
	PreciseMatchThreshold              *float32 `yaml:"precise_match_threshold"`
	UppercaseSuppressionScoreThreshold *float32 `yaml:"uppercase_suppression_score_threshold"`

	MinCompletions          *int32   `yaml:"min_completions"`
	CompletionBeamSize      *int32   `yaml:"completion_beam_size"`
	MaxNextWordPredictions  *int32   `yaml:"max_next_word_predictions"`
	PruneWhenFreeRatioBelow *float32 `yaml:"prune_when_free_ratio_below"`
	PruneRatio              *float32 `yaml:"prune_ratio"`

	PointsToRecompute *int `yaml:"points_to_recompute"`
}

// LoadParams reads a DecoderParams YAML override file and applies it
// on top of params.Default(). A missing path is not an error: callers
// that pass "" get the defaults untouched.
func LoadParams(path string) (params.Params, error) {
	p := params.Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("load decoder params: %w", err)
	}
	var f ParamsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return p, fmt.Errorf("load decoder params: %w", err)
	}
	f.applyTo(&p)
	return p, nil
}

func (f *ParamsFile) applyTo(p *params.Params) {
	setInt32(&p.TokenPoolCapacity, f.TokenPoolCapacity)
	setInt32(&p.ActiveBeamWidth, f.ActiveBeamWidth)
	setInt32(&p.PrefixBeamWidth, f.PrefixBeamWidth)
	setInt32(&p.NumSuggestionsToReturn, f.NumSuggestionsToReturn)

	setFloat32(&p.ScoreToBeatOffset, f.ScoreToBeatOffset)
	setFloat32(&p.ScoreToBeatAbsolute, f.ScoreToBeatAbsolute)
	setFloat32(&p.MinAlignKeyScore, f.MinAlignKeyScore)
	setFloat32(&p.FirstPointWeight, f.FirstPointWeight)
	setFloat32(&p.OmissionScore, f.OmissionScore)
	setFloat32(&p.CompletionScore, f.CompletionScore)
	setFloat32(&p.LexiconUnigramBackoff, f.LexiconUnigramBackoff)
	setFloat32(&p.PrefixLMWeight, f.PrefixLMWeight)

	setFloat32(&p.KeyErrorSigma, f.KeyErrorSigma)
	setFloat32(&p.DirectionErrorSigma, f.DirectionErrorSigma)
	setFloat32(&p.SkipPauseScore, f.SkipPauseScore)
	setFloat32(&p.SkipCornerScore, f.SkipCornerScore)
	setFloat32(&p.MinCurvatureForCorner, f.MinCurvatureForCorner)
	setFloat32(&p.PauseDurationInMillis, f.PauseDurationInMillis)

	setFloat32(&p.MaxImprecisematchPenalty, f.MaxImprecisematchPenalty)
	setFloat32(&p.PreciseMatchThreshold, f.PreciseMatchThreshold)
	setFloat32(&p.UppercaseSuppressionScoreThreshold, f.UppercaseSuppressionScoreThreshold)

	setInt32(&p.MinCompletions, f.MinCompletions)
	setInt32(&p.CompletionBeamSize, f.CompletionBeamSize)
	setInt32(&p.MaxNextWordPredictions, f.MaxNextWordPredictions)
	setFloat32(&p.PruneWhenFreeRatioBelow, f.PruneWhenFreeRatioBelow)
	setFloat32(&p.PruneRatio, f.PruneRatio)

	if f.PointsToRecompute != nil {
		p.PointsToRecompute = *f.PointsToRecompute
	}
}

func setInt32(dst *int32, src *int32) {
	if src != nil {
		*dst = *src
	}
}

func setFloat32(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

// KeyFile is one key's YAML shape within a KeyboardFile.
type KeyFile struct {
	Codepoint string  `yaml:"codepoint"`
	X         float32 `yaml:"x"`
	Y         float32 `yaml:"y"`
	Width     float32 `yaml:"width"`
	Height    float32 `yaml:"height"`
}

// KeyboardFile is the YAML shape for a keyboard layout file.
type KeyboardFile struct {
	MostCommonKeyWidth  float32   `yaml:"most_common_key_width"`
	MostCommonKeyHeight float32   `yaml:"most_common_key_height"`
	KeyboardWidth       float32   `yaml:"keyboard_width"`
	KeyboardHeight      float32   `yaml:"keyboard_height"`
	Keys                []KeyFile `yaml:"keys"`
}

// LoadKeyboardLayout reads a keyboard layout YAML file into a
// keyboard.Layout, ready to pass to keyboard.New.
func LoadKeyboardLayout(path string) (keyboard.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return keyboard.Layout{}, fmt.Errorf("load keyboard layout: %w", err)
	}
	var f KeyboardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return keyboard.Layout{}, fmt.Errorf("load keyboard layout: %w", err)
	}

	layout := keyboard.Layout{
		MostCommonKeyWidth:  f.MostCommonKeyWidth,
		MostCommonKeyHeight: f.MostCommonKeyHeight,
		KeyboardWidth:       f.KeyboardWidth,
		KeyboardHeight:      f.KeyboardHeight,
		Keys:                make([]keyboard.Key, len(f.Keys)),
	}
	for i, k := range f.Keys {
		runes := []rune(k.Codepoint)
		if len(runes) == 0 {
			return keyboard.Layout{}, fmt.Errorf("load keyboard layout: key %d has empty codepoint", i)
		}
		layout.Keys[i] = keyboard.Key{
			Codepoint: runes[0],
			X:         k.X,
			Y:         k.Y,
			Width:     k.Width,
			Height:    k.Height,
		}
	}
	return layout, nil
}

// LexiconFile is the YAML shape for a word-list file: a flat map of
// term to its unigram log probability.
type LexiconFile struct {
	Terms map[string]float32 `yaml:"terms"`
}

// LoadLexicon reads a lexicon YAML file into a term→logp map, for use
// with memlexicon.New or sqlitelexicon.Lexicon.Ingest.
func LoadLexicon(path string) (map[string]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	var f LexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return f.Terms, nil
}
