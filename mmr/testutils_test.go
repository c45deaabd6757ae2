package mmr

import (
	"math/big"
	"path"
	"testing"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/migrations"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
)

type storeFactory func(t *testing.T) NodeStore

var storeFactories = map[string]storeFactory{
	"memory": func(t *testing.T) NodeStore {
		t.Helper()
		return NewMemoryNodeStore()
	},
	"sqlite": func(t *testing.T) NodeStore {
		t.Helper()
		dbPath := path.Join(t.TempDir(), "mmr.sqlite")
		require.NoError(t, migrations.RunMigrations(dbPath, ""))
		database, err := db.NewSQLiteDB(dbPath)
		require.NoError(t, err)
		t.Cleanup(func() { database.Close() })
		return NewSQLNodeStore(database, "")
	},
	"leveldb": func(t *testing.T) NodeStore {
		t.Helper()
		ldb, err := leveldb.OpenFile(t.TempDir(), nil)
		require.NoError(t, err)
		t.Cleanup(func() { ldb.Close() })
		return NewLevelDBNodeStore(ldb)
	},
	"mdbx": func(t *testing.T) NodeStore {
		t.Helper()
		rwDB, err := OpenMDBX(t.TempDir(), "")
		require.NoError(t, err)
		t.Cleanup(rwDB.Close)
		return NewMDBXNodeStore(rwDB, "")
	},
}

func leafHash(i uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(i + 1))
}

// naiveRoot computes the root of a perfect tree over leaves recursively
func naiveRoot(merge MergeFunc, leaves []common.Hash) common.Hash {
	if len(leaves) == 1 {
		return leaves[0]
	}
	half := len(leaves) / 2
	return merge(naiveRoot(merge, leaves[:half]), naiveRoot(merge, leaves[half:]))
}
