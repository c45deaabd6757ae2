package types

import (
	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/ethereum/go-ethereum/common"
)

type Node struct {
	Position uint64      `json:"position"`
	Hash     common.Hash `json:"hash"`
}

// Peaks is the state of the accumulator after the last processed block
type Peaks struct {
	MMRSize uint64 `json:"mmrSize"`
	// LeafIndex of the last appended leaf, nil if the forest is empty
	LeafIndex *uint64         `json:"leafIndex"`
	Peaks     []mmrtypes.Peak `json:"peaks"`
}
