package sync

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/0xPolygon/cdk-mmr/etherman"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	DefaultWaitPeriodBlockNotFound = time.Millisecond * 100
)

type EthClienter interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

type EVMDownloaderInterface interface {
	WaitForNewBlocks(ctx context.Context, lastBlockSeen uint64) (newLastBlock uint64)
	GetBlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool)
}

// EVMDownloader streams every block header, one by one, up to the last block
// with the configured finality
type EVMDownloader struct {
	EVMDownloaderInterface
	log *log.Logger
}

func NewEVMDownloader(
	syncerID string,
	ethClient EthClienter,
	blockFinalityType etherman.BlockNumberFinality,
	waitForNewBlocksPeriod time.Duration,
	rh *RetryHandler,
) (*EVMDownloader, error) {
	logger := log.WithFields("syncer", syncerID)
	finality, err := blockFinalityType.ToBlockNum()
	if err != nil {
		return nil, err
	}
	return &EVMDownloader{
		log: logger,
		EVMDownloaderInterface: &EVMDownloaderImplementation{
			ethClient:              ethClient,
			blockFinality:          finality,
			waitForNewBlocksPeriod: waitForNewBlocksPeriod,
			rh:                     rh,
			log:                    logger,
		},
	}, nil
}

// Download sends the headers of blocks fromBlock, fromBlock+1, ... to
// downloadedCh until ctx is done. The channel is closed on return.
func (d *EVMDownloader) Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlockHeader) {
	defer close(downloadedCh)
	lastBlock := d.WaitForNewBlocks(ctx, 0)
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("closing channel")
			return
		default:
		}
		if fromBlock > lastBlock {
			d.log.Debugf(
				"waiting for new blocks, last block downloaded: %d, last block seen: %d",
				fromBlock-1, lastBlock,
			)
			lastBlock = d.WaitForNewBlocks(ctx, fromBlock-1)
			continue
		}
		header, isCanceled := d.GetBlockHeader(ctx, fromBlock)
		if isCanceled {
			return
		}
		d.log.Debugf("sending block %d to the driver", header.Num)
		select {
		case downloadedCh <- header:
		case <-ctx.Done():
			return
		}
		fromBlock++
	}
}

type EVMDownloaderImplementation struct {
	ethClient              EthClienter
	blockFinality          *big.Int
	waitForNewBlocksPeriod time.Duration
	rh                     *RetryHandler
	log                    *log.Logger
}

func NewEVMDownloaderImplementation(
	syncerID string,
	ethClient EthClienter,
	blockFinality *big.Int,
	waitForNewBlocksPeriod time.Duration,
	rh *RetryHandler,
) *EVMDownloaderImplementation {
	logger := log.WithFields("syncer", syncerID)
	return &EVMDownloaderImplementation{
		ethClient:              ethClient,
		blockFinality:          blockFinality,
		waitForNewBlocksPeriod: waitForNewBlocksPeriod,
		rh:                     rh,
		log:                    logger,
	}
}

func (d *EVMDownloaderImplementation) WaitForNewBlocks(
	ctx context.Context, lastBlockSeen uint64,
) (newLastBlock uint64) {
	attempts := 0
	ticker := time.NewTicker(d.waitForNewBlocksPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Info("context cancelled")
			return lastBlockSeen
		case <-ticker.C:
			header, err := d.ethClient.HeaderByNumber(ctx, d.blockFinality)
			if err != nil {
				if ctx.Err() == nil {
					attempts++
					d.log.Error("error getting last block num from eth client: ", err)
					d.rh.Handle("waitForNewBlocks", attempts)
				} else {
					d.log.Warn("context has been canceled while trying to get header by number")
				}
				continue
			}
			if header.Number.Uint64() > lastBlockSeen {
				return header.Number.Uint64()
			}
		}
	}
}

func (d *EVMDownloaderImplementation) GetBlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool) {
	attempts := 0
	for {
		header, err := d.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNum))
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				// context is canceled, we don't want to fatal on max attempts in this case
				return EVMBlockHeader{}, true
			}
			if errors.Is(err, ethereum.NotFound) {
				// the node may be lagging behind the head it reported
				d.log.Warnf("block %d not found on the ethereum client: %v", blockNum, err)
				if d.rh.RetryAfterErrorPeriod != 0 {
					time.Sleep(d.rh.RetryAfterErrorPeriod)
				} else {
					time.Sleep(DefaultWaitPeriodBlockNotFound)
				}
				continue
			}

			attempts++
			d.log.Errorf("error getting block header for block %d, err: %v", blockNum, err)
			d.rh.Handle("getBlockHeader", attempts)
			continue
		}
		return EVMBlockHeader{
			Num:        header.Number.Uint64(),
			Hash:       header.Hash(),
			ParentHash: header.ParentHash,
			Timestamp:  header.Time,
		}, false
	}
}
