package headermmrsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/headermmrsync/migrations"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/0xPolygon/cdk-mmr/mmr"
	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/0xPolygon/cdk-mmr/sync"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ledgerwatch/erigon-lib/kv"
	"github.com/russross/meddler"
	"github.com/syndtr/goleveldb/leveldb"
)

// processedBlock is the bookkeeping row of every block handed to the accumulator
type processedBlock struct {
	Num     uint64         `meddler:"num"`
	Hash    ethCommon.Hash `meddler:"hash,hash"`
	MMRSize uint64         `meddler:"mmr_size"`
}

type processor struct {
	db      *sql.DB
	ldb     *leveldb.DB
	mdbx    kv.RwDB
	builder *mmr.Builder
	halted  atomic.Bool
	log     *log.Logger
}

func newProcessor(dbPath string, storeCfg NodeStoreConfig, builder *mmr.Builder, logger *log.Logger) (*processor, error) {
	err := migrations.RunMigrations(dbPath)
	if err != nil {
		return nil, err
	}
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	p := &processor{
		db:      database,
		builder: builder,
		log:     logger,
	}
	switch storeCfg.Backend {
	case "", NodeStoreSQLite:
	case NodeStoreLevelDB:
		p.ldb, err = mmr.OpenLevelDB(storeCfg.LevelDBPath)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("error opening leveldb at %s: %w", storeCfg.LevelDBPath, err)
		}
	case NodeStoreMDBX:
		p.mdbx, err = mmr.OpenMDBX(storeCfg.MDBXPath, "")
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("error opening mdbx at %s: %w", storeCfg.MDBXPath, err)
		}
	default:
		database.Close()
		return nil, fmt.Errorf("unknown node store backend %q", storeCfg.Backend)
	}
	return p, nil
}

func (p *processor) close() error {
	if p.mdbx != nil {
		p.mdbx.Close()
	}
	if p.ldb != nil {
		if err := p.ldb.Close(); err != nil {
			return err
		}
	}
	return p.db.Close()
}

// GetLastProcessedBlock returns the last processed block, or db.ErrNotFound
// if no block has been processed yet
func (p *processor) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	return p.getLastProcessedBlockWithTx(p.db)
}

func (p *processor) getLastProcessedBlockWithTx(tx db.Querier) (uint64, error) {
	var lastProcessedBlock uint64
	row := tx.QueryRow("SELECT num FROM block ORDER BY num DESC LIMIT 1;")
	err := row.Scan(&lastProcessedBlock)
	return lastProcessedBlock, db.ReturnErrNotFound(err)
}

func (p *processor) getBlockWithTx(tx db.Querier, num uint64) (*processedBlock, error) {
	b := &processedBlock{}
	err := meddler.QueryRow(tx, b, "SELECT * FROM block WHERE num = $1;", num)
	return b, db.ReturnErrNotFound(err)
}

func (p *processor) getLastBlockWithTx(tx db.Querier) (*processedBlock, error) {
	b := &processedBlock{}
	err := meddler.QueryRow(tx, b, "SELECT * FROM block ORDER BY num DESC LIMIT 1;")
	return b, db.ReturnErrNotFound(err)
}

// ProcessBlock appends the block hash as the leaf with index block.Num. The
// nodes and the bookkeeping row are committed together.
func (p *processor) ProcessBlock(ctx context.Context, block sync.Block) error {
	if p.halted.Load() {
		return sync.ErrInconsistentState
	}
	tx, err := db.NewTx(ctx, p.db)
	if err != nil {
		return err
	}
	shouldRollback := true
	defer func() {
		if shouldRollback {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				p.log.Errorf("error while rolling back tx %v", errRllbck)
			}
		}
	}()

	last, err := p.getLastBlockWithTx(tx)
	switch {
	case errors.Is(err, db.ErrNotFound):
	case err != nil:
		return err
	case block.Num <= last.Num:
		return p.checkReplayedBlock(tx, block)
	case block.Num != last.Num+1:
		return p.halt(fmt.Errorf("block %d received after block %d", block.Num, last.Num))
	case block.ParentHash != last.Hash:
		return p.halt(fmt.Errorf("block %d parent hash %s doesn't match the hash of block %d %s",
			block.Num, block.ParentHash.Hex(), last.Num, last.Hash.Hex()))
	}

	if lastLeaf, ok := p.builder.LastLeafIndex(); ok {
		tx.AddRollbackCallback(func() { p.builder.SetLastLeafIndex(lastLeaf) })
	} else {
		tx.AddRollbackCallback(p.builder.ClearLastLeafIndex)
	}

	store, commitStore, discardStore, err := p.writeStore(ctx, tx)
	if err != nil {
		return err
	}
	defer discardStore()

	nodes, err := p.builder.Append(ctx, store, block.Num, block.Hash)
	if err != nil {
		if mmr.IsFatal(err) {
			return p.halt(err)
		}
		return err
	}

	var mmrSize uint64
	if block.Num >= p.builder.StartLeafIndex() {
		mmrSize = mmr.LeafIndexToMMRSize(block.Num)
	}
	if err = meddler.Insert(tx, "block", &processedBlock{
		Num:     block.Num,
		Hash:    block.Hash,
		MMRSize: mmrSize,
	}); err != nil {
		return err
	}

	if err = commitStore(); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	shouldRollback = false

	p.log.Debugf("block %d appended, %d nodes written, mmr size %d", block.Num, len(nodes), mmrSize)
	return nil
}

// checkReplayedBlock accepts a block that was already processed as long as its hash didn't change
func (p *processor) checkReplayedBlock(tx db.Querier, block sync.Block) error {
	stored, err := p.getBlockWithTx(tx, block.Num)
	if errors.Is(err, db.ErrNotFound) {
		p.log.Debugf("ignoring block %d, it precedes the first processed block", block.Num)
		return nil
	}
	if err != nil {
		return err
	}
	if stored.Hash != block.Hash {
		return p.halt(fmt.Errorf("block %d was processed with hash %s, now received with hash %s",
			block.Num, stored.Hash.Hex(), block.Hash.Hex()))
	}
	p.log.Debugf("block %d already processed", block.Num)
	return nil
}

// writeStore returns the node store to use within tx. With the leveldb and
// mdbx backends the nodes go to a transaction of their own that must be
// committed before tx.
func (p *processor) writeStore(
	ctx context.Context, tx db.Querier,
) (mmr.NodeStore, func() error, func(), error) {
	if p.mdbx != nil {
		return p.mdbxWriteStore(ctx)
	}
	if p.ldb == nil {
		return mmr.NewSQLNodeStore(tx, ""), func() error { return nil }, func() {}, nil
	}
	ltx, err := p.ldb.OpenTransaction()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error opening leveldb transaction: %w", err)
	}
	committed := false
	commit := func() error {
		if err := ltx.Commit(); err != nil {
			return fmt.Errorf("error committing leveldb transaction: %w", err)
		}
		committed = true
		return nil
	}
	discard := func() {
		if !committed {
			ltx.Discard()
		}
	}
	return mmr.NewLevelDBNodeStore(ltx), commit, discard, nil
}

func (p *processor) mdbxWriteStore(ctx context.Context) (mmr.NodeStore, func() error, func(), error) {
	mtx, err := p.mdbx.BeginRw(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error opening mdbx transaction: %w", err)
	}
	done := false
	commit := func() error {
		done = true
		if err := mtx.Commit(); err != nil {
			return fmt.Errorf("error committing mdbx transaction: %w", err)
		}
		return nil
	}
	discard := func() {
		if !done {
			mtx.Rollback()
		}
	}
	return mmr.NewMDBXNodeStore(p.mdbx, "").WithTx(mtx), commit, discard, nil
}

func (p *processor) readStore() mmr.NodeStore {
	if p.mdbx != nil {
		return mmr.NewMDBXNodeStore(p.mdbx, "")
	}
	if p.ldb == nil {
		return mmr.NewSQLNodeStore(p.db, "")
	}
	return mmr.NewLevelDBNodeStore(p.ldb)
}

func (p *processor) halt(err error) error {
	p.log.Errorf("halting the accumulator: %v", err)
	p.halted.Store(true)
	return fmt.Errorf("%w: %w", sync.ErrInconsistentState, err)
}

// GetNode returns the node stored at position
func (p *processor) GetNode(ctx context.Context, position uint64) (mmrtypes.Node, error) {
	return p.readStore().GetNode(ctx, position)
}

// GetMMRSize returns the number of nodes after the last processed block
func (p *processor) GetMMRSize(ctx context.Context) (uint64, error) {
	var size uint64
	err := p.db.QueryRow("SELECT mmr_size FROM block ORDER BY num DESC LIMIT 1;").Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return size, err
}

// GetPeaks returns the current peaks and the size of the forest they belong to
func (p *processor) GetPeaks(ctx context.Context) (uint64, []mmrtypes.Peak, error) {
	size, err := p.GetMMRSize(ctx)
	if err != nil {
		return 0, nil, err
	}
	peaks, err := mmr.GetPeaks(ctx, p.readStore(), size)
	return size, peaks, err
}
