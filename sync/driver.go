package sync

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInconsistentState = errors.New("state is inconsistent, try again later once the state is consolidated")

// Block is handed to processors once per block, in strictly increasing order
type Block struct {
	Num        uint64
	Hash       common.Hash
	ParentHash common.Hash
}
