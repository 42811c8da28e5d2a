package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadParamsAppliesOverridesOnTopOfDefaults(t *testing.T) {
	path := writeFile(t, "active_beam_width: 50\nmin_align_key_score: -3.5\n")
	p, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams() error = %v", err)
	}
	if p.ActiveBeamWidth != 50 {
		t.Errorf("ActiveBeamWidth = %v, want 50", p.ActiveBeamWidth)
	}
	if p.MinAlignKeyScore != -3.5 {
		t.Errorf("MinAlignKeyScore = %v, want -3.5", p.MinAlignKeyScore)
	}
	// Untouched fields keep their spec default.
	if p.PrefixBeamWidth != 3 {
		t.Errorf("PrefixBeamWidth = %v, want 3 (default, untouched by override)", p.PrefixBeamWidth)
	}
}

func TestLoadParamsEmptyPathReturnsDefaults(t *testing.T) {
	p, err := LoadParams("")
	if err != nil {
		t.Fatalf("LoadParams(\"\") error = %v", err)
	}
	if p.TokenPoolCapacity != 1000 {
		t.Errorf("TokenPoolCapacity = %v, want 1000 (spec default)", p.TokenPoolCapacity)
	}
}

func TestLoadKeyboardLayoutParsesKeys(t *testing.T) {
	path := writeFile(t, `
most_common_key_width: 1
most_common_key_height: 1
keyboard_width: 3
keyboard_height: 1
keys:
  - codepoint: "c"
    x: 0
    y: 0
    width: 1
    height: 1
  - codepoint: "a"
    x: 1
    y: 0
    width: 1
    height: 1
`)
	layout, err := LoadKeyboardLayout(path)
	if err != nil {
		t.Fatalf("LoadKeyboardLayout() error = %v", err)
	}
	if len(layout.Keys) != 2 {
		t.Fatalf("len(Keys) = %d, want 2", len(layout.Keys))
	}
	if layout.Keys[0].Codepoint != 'c' || layout.Keys[1].Codepoint != 'a' {
		t.Errorf("Keys = %+v, want codepoints c, a", layout.Keys)
	}
}

func TestLoadLexiconParsesTermTable(t *testing.T) {
	path := writeFile(t, "terms:\n  cat: -1.5\n  dog: -2.5\n")
	terms, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon() error = %v", err)
	}
	if terms["cat"] != -1.5 || terms["dog"] != -2.5 {
		t.Errorf("terms = %+v, want cat=-1.5, dog=-2.5", terms)
	}
}

func TestLoaderLoadBuildsKeyboardAndLexicons(t *testing.T) {
	kbPath := writeFile(t, `
most_common_key_width: 1
most_common_key_height: 1
keyboard_width: 1
keyboard_height: 1
keys:
  - codepoint: "a"
    x: 0
    y: 0
    width: 1
    height: 1
`)
	lexPath := writeFile(t, "terms:\n  a: -1.0\n")

	loader := Loader{KeyboardPath: kbPath, LexiconPaths: []string{lexPath}}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if comp.Keyboard == nil {
		t.Fatal("Keyboard is nil")
	}
	if comp.Keyboard.NumKeys() != 1 {
		t.Errorf("NumKeys() = %d, want 1", comp.Keyboard.NumKeys())
	}
	if len(comp.Lexicons) != 1 {
		t.Errorf("len(Lexicons) = %d, want 1", len(comp.Lexicons))
	}
}

func TestLoaderLoadRequiresKeyboardPath(t *testing.T) {
	loader := Loader{}
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with no KeyboardPath error = nil, want error")
	}
}
