// Package sqlitelexicon is the disk-backed Lexicon and LanguageModel
// implementation (SPEC_FULL.md's DOMAIN STACK): it stands in for the
// LOUDS trie format spec.md declares opaque/out-of-scope (§1, §6.2),
// storing the same (word, unigram logp, prefix logp) rows the
// in-memory backend holds but queried from a modernc.org/sqlite
// database instead of a Go map. Grounded on
// pkg/korel/store/sqlite/sqlite.go's OpenSQLite/WAL-pragma/initSchema
// shape.
package sqlitelexicon

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

var negInf = float32(math.Inf(-1))

// Lexicon is a sqlite-backed lexicon.Lexicon. Its NodeRef dynamic type
// is string: the prefix spelled out from root to that node, which
// doubles as Key(node) with no further lookup needed.
type Lexicon struct {
	db *sql.DB
}

var _ lexicon.Lexicon = (*Lexicon)(nil)

// Open opens (creating if absent) a sqlite lexicon database at path,
// enabling WAL mode and initializing its schema.
func Open(ctx context.Context, path string) (*Lexicon, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite lexicon: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite lexicon: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite lexicon: %w", err)
	}
	return &Lexicon{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS terms (
	term TEXT PRIMARY KEY,
	unigram_logp REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS prefixes (
	prefix TEXT PRIMARY KEY,
	prefix_logp REAL NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database connection.
func (l *Lexicon) Close() error { return l.db.Close() }

// Ingest upserts terms into the terms table and recomputes
// prefix_logp for every prefix of every term currently stored (not
// just the ones just inserted, since a new low-scoring term can never
// raise an existing prefix's best score, but a full recompute keeps
// this simple and correct for a reference backend's ingest path).
func (l *Lexicon) Ingest(ctx context.Context, terms map[string]float32) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	defer tx.Rollback()

	for term, logp := range terms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO terms(term, unigram_logp) VALUES (?, ?)
			 ON CONFLICT(term) DO UPDATE SET unigram_logp=excluded.unigram_logp`,
			term, logp); err != nil {
			return fmt.Errorf("ingest term %q: %w", term, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT term, unigram_logp FROM terms`)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	prefixBest := make(map[string]float32)
	for rows.Next() {
		var term string
		var logp float32
		if err := rows.Scan(&term, &logp); err != nil {
			rows.Close()
			return fmt.Errorf("ingest: %w", err)
		}
		runes := []rune(term)
		for i := 0; i <= len(runes); i++ {
			prefix := string(runes[:i])
			if cur, ok := prefixBest[prefix]; !ok || logp > cur {
				prefixBest[prefix] = logp
			}
		}
	}
	rows.Close()

	for prefix, logp := range prefixBest {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO prefixes(prefix, prefix_logp) VALUES (?, ?)
			 ON CONFLICT(prefix) DO UPDATE SET prefix_logp=excluded.prefix_logp`,
			prefix, logp); err != nil {
			return fmt.Errorf("ingest prefix %q: %w", prefix, err)
		}
	}
	return tx.Commit()
}

// Root returns the empty-string prefix node.
func (l *Lexicon) Root() lexicon.NodeRef { return "" }

// Children returns node's direct children: every stored prefix exactly
// one rune longer than node that shares node as its own prefix.
func (l *Lexicon) Children(ref lexicon.NodeRef) []lexicon.ChildEdge {
	parent := ref.(string)
	plen := len([]rune(parent))

	rows, err := l.db.Query(
		`SELECT prefix FROM prefixes WHERE length(prefix) = ? AND substr(prefix, 1, ?) = ?`,
		plen+1, plen, parent)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var edges []lexicon.ChildEdge
	for rows.Next() {
		var childPrefix string
		if err := rows.Scan(&childPrefix); err != nil {
			continue
		}
		runes := []rune(childPrefix)
		edges = append(edges, lexicon.ChildEdge{Label: runes[len(runes)-1], Node: childPrefix})
	}
	return edges
}

// Key returns node's prefix string directly: it already is the key.
func (l *Lexicon) Key(ref lexicon.NodeRef) string { return ref.(string) }

// TermLogP looks up node's complete-term log probability.
func (l *Lexicon) TermLogP(ref lexicon.NodeRef) (float32, bool) {
	term := ref.(string)
	var logp float32
	if err := l.db.QueryRow(`SELECT unigram_logp FROM terms WHERE term = ?`, term).Scan(&logp); err != nil {
		return 0, false
	}
	return logp, true
}

// PrefixLogP looks up node's precomputed best reachable term
// log-probability.
func (l *Lexicon) PrefixLogP(ref lexicon.NodeRef) (float32, bool) {
	prefix := ref.(string)
	var logp float32
	if err := l.db.QueryRow(`SELECT prefix_logp FROM prefixes WHERE prefix = ?`, prefix).Scan(&logp); err != nil {
		return 0, false
	}
	return logp, true
}

// HasPrefixProbabilities always reports true: Ingest computes one for
// every stored prefix.
func (l *Lexicon) HasPrefixProbabilities() bool { return true }

// EncodesCodepoints reports true: Children's labels are runes decoded
// from TEXT columns, not raw UTF-8 bytes.
func (l *Lexicon) EncodesCodepoints() bool { return true }

// LanguageModel is a unigram lexicon.LanguageModel reading from the
// same terms table a Lexicon was built from.
type LanguageModel struct {
	db *sql.DB
}

var _ lexicon.LanguageModel = (*LanguageModel)(nil)

// NewLanguageModel builds a unigram model over lex's database.
func NewLanguageModel(lex *Lexicon) *LanguageModel {
	return &LanguageModel{db: lex.db}
}

// NewScorer returns a scorer over this model's terms table; a unigram
// model has no use for preceding/following context.
func (m *LanguageModel) NewScorer(preceding, following []string) (lexicon.Scorer, error) {
	return &unigramScorer{db: m.db}, nil
}

// IsInVocabulary reports whether term has a row in the terms table.
func (m *LanguageModel) IsInVocabulary(term string) bool {
	var exists int
	return m.db.QueryRow(`SELECT 1 FROM terms WHERE term = ?`, term).Scan(&exists) == nil
}

type unigramScorer struct {
	db *sql.DB
}

var _ lexicon.Scorer = (*unigramScorer)(nil)

func (s *unigramScorer) lookup(term string) (float32, bool) {
	var logp float32
	if err := s.db.QueryRow(`SELECT unigram_logp FROM terms WHERE term = ?`, term).Scan(&logp); err != nil {
		return 0, false
	}
	return logp, true
}

// TermsLogP sums each term's unigram log probability, returning -Inf
// if any term is out of vocabulary.
func (s *unigramScorer) TermsLogP(terms []string) float32 {
	var sum float32
	for _, t := range terms {
		logp, ok := s.lookup(t)
		if !ok {
			return negInf
		}
		sum += logp
	}
	return sum
}

// TermsConditionalLogP returns the unigram log-probability of the
// last term in terms.
func (s *unigramScorer) TermsConditionalLogP(terms []string) float32 {
	if len(terms) == 0 {
		return negInf
	}
	logp, ok := s.lookup(terms[len(terms)-1])
	if !ok {
		return negInf
	}
	return logp
}

// PredictNext returns up to max terms ranked by unigram
// log-probability, independent of terms.
func (s *unigramScorer) PredictNext(terms []string, max int) []lexicon.Prediction {
	rows, err := s.db.Query(`SELECT term, unigram_logp FROM terms ORDER BY unigram_logp DESC LIMIT ?`, max)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []lexicon.Prediction
	for rows.Next() {
		var term string
		var logp float32
		if err := rows.Scan(&term, &logp); err != nil {
			continue
		}
		out = append(out, lexicon.Prediction{Term: term, LogP: logp})
	}
	return out
}
