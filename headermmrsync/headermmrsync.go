package headermmrsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/etherman"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/0xPolygon/cdk-mmr/mmr"
	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/0xPolygon/cdk-mmr/sync"
)

const (
	syncerID                  = "headermmrsync"
	defaultDownloadBufferSize = 1000
)

var (
	ErrNotFound = errors.New("headermmrsync: not found")
)

// HeaderMMRSync accumulates the hashes of the block headers of a chain into a
// merkle mountain range, leaf index = block number
type HeaderMMRSync struct {
	processor *processor
	driver    *sync.EVMDriver
}

// New creates a syncer that appends every block of the chain served by
// client, starting at cfg.StartLeafIndex
func New(ctx context.Context, cfg Config, client sync.EthClienter) (*HeaderMMRSync, error) {
	logger := log.WithFields("syncer", syncerID)

	merge, err := mmr.MergeFuncByName(cfg.MergeFunction)
	if err != nil {
		return nil, err
	}
	checkpoint, err := cfg.Checkpoint()
	if err != nil {
		return nil, err
	}
	builder, err := mmr.NewBuilder(mmr.BuilderConfig{
		StartLeafIndex: cfg.StartLeafIndex,
		Checkpoint:     checkpoint,
		Merge:          merge,
	}, logger)
	if err != nil {
		return nil, err
	}

	processor, err := newProcessor(cfg.DBPath, cfg.NodeStore, builder, logger)
	if err != nil {
		return nil, err
	}
	lastProcessedBlock, err := processor.GetLastProcessedBlock(ctx)
	switch {
	case errors.Is(err, db.ErrNotFound):
	case err != nil:
		return nil, err
	case lastProcessedBlock >= cfg.StartLeafIndex:
		builder.SetLastLeafIndex(lastProcessedBlock)
	}

	rh := &sync.RetryHandler{
		RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod.Duration,
		MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
	}
	downloader, err := sync.NewEVMDownloader(
		syncerID,
		client,
		etherman.BlockNumberFinality(cfg.BlockFinality),
		cfg.WaitForNewBlocksPeriod.Duration,
		rh,
	)
	if err != nil {
		return nil, err
	}

	bufferSize := cfg.DownloadBufferSize
	if bufferSize <= 0 {
		bufferSize = defaultDownloadBufferSize
	}
	driver := sync.NewEVMDriver(syncerID, processor, downloader, cfg.StartLeafIndex, bufferSize, rh)

	return &HeaderMMRSync{
		processor: processor,
		driver:    driver,
	}, nil
}

// Start starts the synchronization process. It returns when ctx is done or
// when the accumulator can't make progress anymore.
func (s *HeaderMMRSync) Start(ctx context.Context) error {
	return s.driver.Sync(ctx)
}

// Close releases the databases
func (s *HeaderMMRSync) Close() error {
	return s.processor.close()
}

func translateError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// GetNode returns the node stored at position
func (s *HeaderMMRSync) GetNode(ctx context.Context, position uint64) (mmrtypes.Node, error) {
	if s.processor.halted.Load() {
		return mmrtypes.Node{}, sync.ErrInconsistentState
	}
	node, err := s.processor.GetNode(ctx, position)
	return node, translateError(err)
}

// GetLeaf returns the leaf of the given block
func (s *HeaderMMRSync) GetLeaf(ctx context.Context, blockNum uint64) (mmrtypes.Node, error) {
	return s.GetNode(ctx, mmr.LeafIndexToPos(blockNum))
}

// GetPeaks returns the current mmr size and its peaks
func (s *HeaderMMRSync) GetPeaks(ctx context.Context) (uint64, []mmrtypes.Peak, error) {
	if s.processor.halted.Load() {
		return 0, nil, sync.ErrInconsistentState
	}
	size, peaks, err := s.processor.GetPeaks(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading peaks: %w", translateError(err))
	}
	return size, peaks, nil
}

// GetLastProcessedBlock return the last processed block
func (s *HeaderMMRSync) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	if s.processor.halted.Load() {
		return 0, sync.ErrInconsistentState
	}
	num, err := s.processor.GetLastProcessedBlock(ctx)
	return num, translateError(err)
}
