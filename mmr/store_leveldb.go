package mmr

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/common"
	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// nodeKeyPrefix is the table space of the nodes, keys are followed by the
// big endian position so iteration follows position order
const nodeKeyPrefix byte = 'N'

// LevelDB contains the methods shared by *leveldb.DB and *leveldb.Transaction
type LevelDB interface {
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)
	Put(key, value []byte, wo *opt.WriteOptions) error
}

// LevelDBNodeStore stores the nodes in LevelDB
type LevelDBNodeStore struct {
	ldb LevelDB
}

// NewLevelDBNodeStore returns a store backed by a LevelDB database or an open transaction
func NewLevelDBNodeStore(ldb LevelDB) *LevelDBNodeStore {
	return &LevelDBNodeStore{ldb: ldb}
}

// OpenLevelDB opens or creates the LevelDB database at path
func OpenLevelDB(path string) (*leveldb.DB, error) {
	return leveldb.OpenFile(path, &opt.Options{})
}

func nodeKey(position uint64) []byte {
	return append([]byte{nodeKeyPrefix}, common.Uint64ToBytes(position)...)
}

func (s *LevelDBNodeStore) GetNode(ctx context.Context, position uint64) (types.Node, error) {
	value, err := s.ldb.Get(nodeKey(position), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return types.Node{}, fmt.Errorf("node at position %d: %w", position, db.ErrNotFound)
		}
		return types.Node{}, fmt.Errorf("error reading node at position %d: %w", position, err)
	}
	if len(value) != ethCommon.HashLength {
		return types.Node{}, fmt.Errorf("corrupt node at position %d: expected %d bytes, got %d",
			position, ethCommon.HashLength, len(value))
	}
	return types.Node{Position: position, Hash: ethCommon.BytesToHash(value)}, nil
}

func (s *LevelDBNodeStore) SaveNode(ctx context.Context, node types.Node) error {
	stored, err := s.GetNode(ctx, node.Position)
	switch {
	case err == nil:
		return checkRewrite(stored, node)
	case !errors.Is(err, db.ErrNotFound):
		return err
	}
	if err := s.ldb.Put(nodeKey(node.Position), node.Hash.Bytes(), nil); err != nil {
		return fmt.Errorf("error writing node at position %d: %w", node.Position, err)
	}
	return nil
}
