package mmr

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/russross/meddler"
)

const nodeTable = "mmr_node"

// SQLNodeStore stores the nodes in the mmr_node table. Querier can be either
// a *sql.DB or a transaction, so several appends can be grouped atomically.
type SQLNodeStore struct {
	q     db.Querier
	table string
}

// NewSQLNodeStore returns a store over the node table created by the
// migrations of mmr/migrations with the given prefix
func NewSQLNodeStore(q db.Querier, tablePrefix string) *SQLNodeStore {
	return &SQLNodeStore{
		q:     q,
		table: tablePrefix + nodeTable,
	}
}

func (s *SQLNodeStore) GetNode(ctx context.Context, position uint64) (types.Node, error) {
	node := &types.Node{}
	err := meddler.QueryRow(s.q, node, `SELECT * FROM `+s.table+` WHERE position = $1;`, position)
	if err != nil {
		err = db.ReturnErrNotFound(err)
		if errors.Is(err, db.ErrNotFound) {
			return types.Node{}, fmt.Errorf("node at position %d: %w", position, db.ErrNotFound)
		}
		return types.Node{}, fmt.Errorf("error reading node at position %d: %w", position, err)
	}
	return *node, nil
}

func (s *SQLNodeStore) SaveNode(ctx context.Context, node types.Node) error {
	stored, err := s.GetNode(ctx, node.Position)
	switch {
	case err == nil:
		return checkRewrite(stored, node)
	case !errors.Is(err, db.ErrNotFound):
		return err
	}
	if err := meddler.Insert(s.q, s.table, &node); err != nil {
		if db.IsUniqueConstraintErr(err) {
			return fmt.Errorf("position %d written concurrently: %w", node.Position, err)
		}
		return fmt.Errorf("error inserting node at position %d: %w", node.Position, err)
	}
	return nil
}
