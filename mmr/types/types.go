package types

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Node is a single entry of the accumulator: a leaf (height 0) or an interior node
type Node struct {
	Position uint64      `meddler:"position"`
	Hash     common.Hash `meddler:"hash,hash"`
}

func (n Node) String() string {
	return fmt.Sprintf("Node{Position: %d, Hash: %s}", n.Position, n.Hash.Hex())
}

// Peak is the root of one of the perfect binary trees of the forest
type Peak struct {
	Position uint64      `json:"position"`
	Height   uint64      `json:"height"`
	Hash     common.Hash `json:"hash"`
}

// Checkpoint bootstraps an accumulator from a non zero leaf index. Peaks are
// the peak nodes of the forest holding leaves [0, StartLeafIndex) and are
// ordered by ascending position.
type Checkpoint struct {
	StartLeafIndex uint64 `json:"startLeafIndex"`
	Peaks          []Node `json:"peaks"`
}

// MarshalJSON encodes the node as a [position, "0x..."] pair
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{n.Position, n.Hash.Hex()})
}

// UnmarshalJSON decodes a [position, "hash"] pair. The hash may be given with
// or without the 0x prefix but must be exactly 32 bytes long.
func (n *Node) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("node must be a [position, hash] pair: %w", err)
	}
	if len(pair) != 2 { //nolint:mnd
		return fmt.Errorf("node must be a [position, hash] pair, got %d elements", len(pair))
	}
	var (
		pos     uint64
		hashStr string
	)
	if err := json.Unmarshal(pair[0], &pos); err != nil {
		return fmt.Errorf("invalid node position %s: %w", string(pair[0]), err)
	}
	if err := json.Unmarshal(pair[1], &hashStr); err != nil {
		return fmt.Errorf("invalid node hash %s: %w", string(pair[1]), err)
	}
	hash, err := ParseHash(hashStr)
	if err != nil {
		return err
	}
	n.Position = pos
	n.Hash = hash
	return nil
}

// ParseHash decodes a 32 bytes hash given as hex text, with or without the 0x prefix
func ParseHash(s string) (common.Hash, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash %q: expected %d bytes, got %d", s, common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
