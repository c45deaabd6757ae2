package rpc

import (
	"context"

	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
)

type MMRSyncer interface {
	GetNode(ctx context.Context, position uint64) (mmrtypes.Node, error)
	GetLeaf(ctx context.Context, blockNum uint64) (mmrtypes.Node, error)
	GetPeaks(ctx context.Context) (uint64, []mmrtypes.Peak, error)
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
}
