package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/0xPolygon/cdk-mmr/mmr"
	"github.com/0xPolygon/cdk-mmr/rpc/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MMR is the namespace of the mmr service
	MMR       = "mmr"
	meterName = "github.com/0xPolygon/cdk-mmr/rpc"
)

// MMREndpoints contains implementations for the "mmr" RPC endpoints
type MMREndpoints struct {
	logger      *log.Logger
	meter       metric.Meter
	readTimeout time.Duration
	syncer      MMRSyncer
}

// NewMMREndpoints returns MMREndpoints
func NewMMREndpoints(logger *log.Logger, readTimeout time.Duration, syncer MMRSyncer) *MMREndpoints {
	return &MMREndpoints{
		logger:      logger,
		meter:       otel.Meter(meterName),
		readTimeout: readTimeout,
		syncer:      syncer,
	}
}

func (m *MMREndpoints) count(ctx context.Context, name string) {
	c, err := m.meter.Int64Counter(name)
	if err != nil {
		m.logger.Warnf("failed to create %s counter: %s", name, err)
		return
	}
	c.Add(ctx, 1)
}

// GetNode returns the hash stored at the given position of the accumulator
func (m *MMREndpoints) GetNode(position uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.readTimeout)
	defer cancel()
	m.count(ctx, "get_node")

	node, err := m.syncer.GetNode(ctx, position)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get node at position %d, error: %s", position, err))
	}
	return types.Node{Position: node.Position, Hash: node.Hash}, nil
}

// GetLeaf returns the leaf holding the hash of the given block
func (m *MMREndpoints) GetLeaf(blockNum uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.readTimeout)
	defer cancel()
	m.count(ctx, "get_leaf")

	node, err := m.syncer.GetLeaf(ctx, blockNum)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get leaf of block %d, error: %s", blockNum, err))
	}
	return types.Node{Position: node.Position, Hash: node.Hash}, nil
}

// GetPeaks returns the peaks of the accumulator, in decreasing height order
func (m *MMREndpoints) GetPeaks() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.readTimeout)
	defer cancel()
	m.count(ctx, "get_peaks")

	size, peaks, err := m.syncer.GetPeaks(ctx)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get peaks, error: %s", err))
	}
	res := types.Peaks{MMRSize: size, Peaks: peaks}
	if leafCount := mmr.LeafCount(size); leafCount > 0 {
		lastLeaf := leafCount - 1
		res.LeafIndex = &lastLeaf
	}
	return res, nil
}

// GetLastProcessedBlock returns the number of the last block appended
func (m *MMREndpoints) GetLastProcessedBlock() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.readTimeout)
	defer cancel()
	m.count(ctx, "get_last_processed_block")

	num, err := m.syncer.GetLastProcessedBlock(ctx)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode,
			fmt.Sprintf("failed to get last processed block, error: %s", err))
	}
	return num, nil
}
