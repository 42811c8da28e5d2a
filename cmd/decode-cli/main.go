// Command decode-cli is a CLI front-end for the gesture decoder,
// mirroring cmd/chat-cli's shape: flag-based setup, a one-shot mode
// for scripting, and an interactive stdin mode for manual testing.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/swipedecoder/internal/decoder"
	"github.com/cognicore/swipedecoder/pkg/config"
)

func main() {
	var (
		keyboardPath = flag.String("keyboard", "", "Keyboard layout YAML file (required)")
		lexiconPaths = flag.String("lexicon", "", "Comma-separated lexicon YAML files (required)")
		paramsPath   = flag.String("params", "", "DecoderParams override YAML file (optional)")
		stroke       = flag.String("stroke", "", "One-shot stroke, \"x,y,t;x,y,t;...\" (non-interactive mode)")
		topK         = flag.Int("topk", 10, "Number of suggestions to print")
	)
	flag.Parse()

	if *keyboardPath == "" {
		log.Fatal("--keyboard required")
	}
	if *lexiconPaths == "" {
		log.Fatal("--lexicon required")
	}

	session, err := buildSession(*keyboardPath, *lexiconPaths, *paramsPath)
	if err != nil {
		log.Fatal(err)
	}

	if *stroke != "" {
		points, err := parseStroke(*stroke)
		if err != nil {
			log.Fatal(err)
		}
		if err := decodeAndPrint(session, points, *topK); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Println("===========================================")
	fmt.Println("  Gesture Decoder CLI")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Enter \"x,y,t\" points one per line, a blank line to decode the")
	fmt.Println("stroke so far (Ctrl+D to exit):")
	fmt.Println()

	var points []decoder.Stroke
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if len(points) == 0 {
				continue
			}
			if len(points) > 0 {
				points[len(points)-1].Up = true
			}
			if err := decodeAndPrint(session, points, *topK); err != nil {
				fmt.Println("Error:", err)
			}
			points = nil
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		points = append(points, p)
	}

	fmt.Println("\nGoodbye!")
}

func buildSession(keyboardPath, lexiconPathsCSV, paramsPath string) (*decoder.Session, error) {
	loader := config.Loader{
		KeyboardPath: keyboardPath,
		LexiconPaths: strings.Split(lexiconPathsCSV, ","),
		ParamsPath:   paramsPath,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	return decoder.New(comp.Keyboard, comp.Lexicons, nil, comp.Params), nil
}

func decodeAndPrint(session *decoder.Session, points []decoder.Stroke, topK int) error {
	results, err := session.Decode(points, nil, nil)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No suggestions.")
		fmt.Println()
		return nil
	}
	n := topK
	if n > len(results) {
		n = len(results)
	}
	for i, r := range results[:n] {
		fmt.Printf("%2d. %-20s  total=%.2f  spatial=%.2f  lm=%.2f\n",
			i+1, r.Word, r.Score(), r.SpatialScore, r.LMScore)
	}
	fmt.Println()
	return nil
}

func parseStroke(s string) ([]decoder.Stroke, error) {
	parts := strings.Split(s, ";")
	points := make([]decoder.Stroke, 0, len(parts))
	for i, part := range parts {
		p, err := parsePoint(part)
		if err != nil {
			return nil, fmt.Errorf("parse stroke point %d: %w", i, err)
		}
		points = append(points, p)
	}
	if len(points) > 0 {
		points[len(points)-1].Up = true
	}
	return points, nil
}

func parsePoint(s string) (decoder.Stroke, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) < 3 {
		return decoder.Stroke{}, fmt.Errorf("expected \"x,y,t\", got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 32)
	if err != nil {
		return decoder.Stroke{}, fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32)
	if err != nil {
		return decoder.Stroke{}, fmt.Errorf("parse y: %w", err)
	}
	t, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return decoder.Stroke{}, fmt.Errorf("parse t: %w", err)
	}
	return decoder.Stroke{X: float32(x), Y: float32(y), TimeMs: int32(t)}, nil
}
