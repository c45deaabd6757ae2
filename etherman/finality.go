package etherman

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockNumberFinality selects the block tag used to learn the chain head
type BlockNumberFinality string

const (
	FinalizedBlock = BlockNumberFinality("FinalizedBlock")
	SafeBlock      = BlockNumberFinality("SafeBlock")
	PendingBlock   = BlockNumberFinality("PendingBlock")
	LatestBlock    = BlockNumberFinality("LatestBlock")
	EarliestBlock  = BlockNumberFinality("EarliestBlock")
)

// ToBlockNum returns the block number argument for HeaderByNumber
func (b *BlockNumberFinality) ToBlockNum() (*big.Int, error) {
	switch *b {
	case FinalizedBlock:
		return big.NewInt(int64(rpc.FinalizedBlockNumber)), nil
	case SafeBlock:
		return big.NewInt(int64(rpc.SafeBlockNumber)), nil
	case PendingBlock:
		return big.NewInt(int64(rpc.PendingBlockNumber)), nil
	case LatestBlock:
		return big.NewInt(int64(rpc.LatestBlockNumber)), nil
	case EarliestBlock:
		return big.NewInt(int64(rpc.EarliestBlockNumber)), nil
	default:
		return nil, fmt.Errorf("invalid finality keyword: %s", string(*b))
	}
}
