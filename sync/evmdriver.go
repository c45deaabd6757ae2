package sync

import (
	"context"
	"errors"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/log"
)

type downloader interface {
	Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlockHeader)
}

type processorInterface interface {
	// GetLastProcessedBlock returns db.ErrNotFound if no block has been processed
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
	ProcessBlock(ctx context.Context, block Block) error
}

// EVMDriver feeds the downloaded blocks to the processor, in order
type EVMDriver struct {
	processor          processorInterface
	downloader         downloader
	firstBlock         uint64
	downloadBufferSize int
	rh                 *RetryHandler
	log                *log.Logger
}

func NewEVMDriver(
	syncerID string,
	processor processorInterface,
	downloader downloader,
	firstBlock uint64,
	downloadBufferSize int,
	rh *RetryHandler,
) *EVMDriver {
	return &EVMDriver{
		processor:          processor,
		downloader:         downloader,
		firstBlock:         firstBlock,
		downloadBufferSize: downloadBufferSize,
		rh:                 rh,
		log:                log.WithFields("syncer", syncerID),
	}
}

// Sync runs until ctx is done, returning its error, or until the processor
// reports ErrInconsistentState
func (d *EVMDriver) Sync(ctx context.Context) error {
	var (
		fromBlock uint64
		attempts  int
	)
	for {
		lastProcessedBlock, err := d.processor.GetLastProcessedBlock(ctx)
		if errors.Is(err, db.ErrNotFound) {
			fromBlock = d.firstBlock
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempts++
			d.log.Error("error getting last processed block: ", err)
			d.rh.Handle("Sync", attempts)
			continue
		}
		fromBlock = lastProcessedBlock + 1
		break
	}
	cancellableCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.log.Infof("starting sync from block %d", fromBlock)
	downloadCh := make(chan EVMBlockHeader, d.downloadBufferSize)
	go d.downloader.Download(cancellableCtx, fromBlock, downloadCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-downloadCh:
			if !ok {
				return ctx.Err()
			}
			d.log.Debug("handleNewBlock: ", b.Num, b.Hash)
			if err := d.handleNewBlock(ctx, b); err != nil {
				return err
			}
		}
	}
}

func (d *EVMDriver) handleNewBlock(ctx context.Context, b EVMBlockHeader) error {
	attempts := 0
	for {
		err := d.processor.ProcessBlock(ctx, Block{
			Num:        b.Num,
			Hash:       b.Hash,
			ParentHash: b.ParentHash,
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrInconsistentState) {
			d.log.Errorf("processor halted on block %d: %v", b.Num, err)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempts++
		d.log.Errorf("error processing block %d, err: %v", b.Num, err)
		d.rh.Handle("handleNewBlock", attempts)
	}
}
