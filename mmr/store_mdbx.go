package mmr

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/common"
	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ledgerwatch/erigon-lib/kv"
	"github.com/ledgerwatch/erigon-lib/kv/mdbx"
)

// MDBXNodeStore stores the nodes in an mdbx table keyed by the big endian
// position. Without a transaction every call runs in its own one.
type MDBXNodeStore struct {
	db    kv.RwDB
	tx    kv.RwTx
	table string
}

// AddMDBXTables adds the node table for the given prefix to cfg
func AddMDBXTables(cfg kv.TableCfg, tablePrefix string) {
	cfg[tablePrefix+nodeTable] = kv.TableCfgItem{}
}

// OpenMDBX opens or creates the mdbx environment at path holding the node table
func OpenMDBX(path, tablePrefix string) (kv.RwDB, error) {
	tableCfgFunc := func(defaultBuckets kv.TableCfg) kv.TableCfg {
		cfg := kv.TableCfg{}
		AddMDBXTables(cfg, tablePrefix)
		return cfg
	}
	return mdbx.NewMDBX(nil).
		Path(path).
		WithTableCfg(tableCfgFunc).
		Open()
}

// NewMDBXNodeStore returns a store over the node table of rwDB
func NewMDBXNodeStore(rwDB kv.RwDB, tablePrefix string) *MDBXNodeStore {
	return &MDBXNodeStore{
		db:    rwDB,
		table: tablePrefix + nodeTable,
	}
}

// WithTx returns a store that reads and writes within tx. Nothing is visible
// to other transactions until tx is committed.
func (s *MDBXNodeStore) WithTx(tx kv.RwTx) *MDBXNodeStore {
	return &MDBXNodeStore{
		db:    s.db,
		tx:    tx,
		table: s.table,
	}
}

func (s *MDBXNodeStore) GetNode(ctx context.Context, position uint64) (types.Node, error) {
	if s.tx != nil {
		return s.getNode(s.tx, position)
	}
	var node types.Node
	err := s.db.View(ctx, func(tx kv.Tx) error {
		var err error
		node, err = s.getNode(tx, position)
		return err
	})
	return node, err
}

func (s *MDBXNodeStore) SaveNode(ctx context.Context, node types.Node) error {
	if s.tx != nil {
		return s.saveNode(s.tx, node)
	}
	return s.db.Update(ctx, func(tx kv.RwTx) error {
		return s.saveNode(tx, node)
	})
}

func (s *MDBXNodeStore) getNode(tx kv.Getter, position uint64) (types.Node, error) {
	value, err := tx.GetOne(s.table, common.Uint64ToBytes(position))
	if err != nil {
		return types.Node{}, fmt.Errorf("error reading node at position %d: %w", position, err)
	}
	if value == nil {
		return types.Node{}, fmt.Errorf("node at position %d: %w", position, db.ErrNotFound)
	}
	if len(value) != ethCommon.HashLength {
		return types.Node{}, fmt.Errorf("corrupt node at position %d: expected %d bytes, got %d",
			position, ethCommon.HashLength, len(value))
	}
	return types.Node{Position: position, Hash: ethCommon.BytesToHash(value)}, nil
}

func (s *MDBXNodeStore) saveNode(tx kv.RwTx, node types.Node) error {
	stored, err := s.getNode(tx, node.Position)
	switch {
	case err == nil:
		return checkRewrite(stored, node)
	case !errors.Is(err, db.ErrNotFound):
		return err
	}
	if err := tx.Put(s.table, common.Uint64ToBytes(node.Position), node.Hash.Bytes()); err != nil {
		return fmt.Errorf("error writing node at position %d: %w", node.Position, err)
	}
	return nil
}
