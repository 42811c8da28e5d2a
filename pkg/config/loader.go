package config

import (
	"fmt"

	"github.com/cognicore/swipedecoder/internal/decoder/params"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
	"github.com/cognicore/swipedecoder/pkg/lexicon"
	"github.com/cognicore/swipedecoder/pkg/lexicon/memlexicon"
)

// Loader loads all configuration files and constructs the decoder's
// collaborators, mirroring pkg/korel/config.Loader's
// paths-in/Components-out shape.
type Loader struct {
	ParamsPath   string
	KeyboardPath string
	LexiconPaths []string
}

// Components holds every collaborator a decoder.Session needs,
// assembled from Loader.Load.
type Components struct {
	Params   params.Params
	Keyboard *keyboard.Keyboard
	Lexicons []lexicon.Lexicon
}

// Load reads every configured file and returns initialized
// components. KeyboardPath is required; ParamsPath and LexiconPaths
// are optional (missing params fall back to params.Default(), and a
// decoder with no lexicons degrades gracefully per spec §7).
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	p, err := LoadParams(l.ParamsPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	comp.Params = p

	if l.KeyboardPath == "" {
		return nil, fmt.Errorf("load config: keyboard path is required")
	}
	layout, err := LoadKeyboardLayout(l.KeyboardPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	kb, err := keyboard.New(layout, nil)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	comp.Keyboard = kb

	for _, path := range l.LexiconPaths {
		terms, err := LoadLexicon(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		comp.Lexicons = append(comp.Lexicons, memlexicon.New(terms))
	}

	return comp, nil
}
