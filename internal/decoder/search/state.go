package search

import (
	"github.com/cognicore/swipedecoder/internal/decoder/trie"
	"github.com/cognicore/swipedecoder/pkg/keyboard"
	"github.com/cognicore/swipedecoder/pkg/lexicon"
)

// State is the DecoderState hash key (spec §3): the 4-tuple that
// uniquely identifies a search position. Equality is tuple equality;
// Go's comparable-struct map keys give us the combined hash for free.
type State struct {
	LexiconID     int
	NodeID        lexicon.NodeRef
	WordHistoryID int32
	AlignedKey    keyboard.KeyId
}

// StateFor builds the DecoderState for a token keyed on node (always
// the first of the token's per-lexicon nodes, per
// GetDecoderStateForNode), its word history and its aligned key.
func StateFor(node trie.Node, wordHistoryID int32, alignedKey keyboard.KeyId) State {
	return State{
		LexiconID:     node.LexiconID,
		NodeID:        node.ID(),
		WordHistoryID: wordHistoryID,
		AlignedKey:    alignedKey,
	}
}
