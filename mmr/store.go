package mmr

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
)

// NodeStore persists the nodes of the forest by position
type NodeStore interface {
	// GetNode returns db.ErrNotFound if nothing is stored at position
	GetNode(ctx context.Context, position uint64) (types.Node, error)
	// SaveNode stores node. Saving the same hash twice at a position is a no-op,
	// saving a different one fails with *DuplicatePositionError.
	SaveNode(ctx context.Context, node types.Node) error
}

// checkRewrite decides what SaveNode does when position is already taken
func checkRewrite(stored, attempted types.Node) error {
	if stored.Hash == attempted.Hash {
		return nil
	}
	return &DuplicatePositionError{
		Position:  attempted.Position,
		Stored:    stored.Hash,
		Attempted: attempted.Hash,
	}
}

// MemoryNodeStore keeps the nodes in a map
type MemoryNodeStore struct {
	mu    sync.RWMutex
	nodes map[uint64]types.Node
}

// NewMemoryNodeStore returns an empty in-memory store
func NewMemoryNodeStore() *MemoryNodeStore {
	return &MemoryNodeStore{nodes: make(map[uint64]types.Node)}
}

func (s *MemoryNodeStore) GetNode(ctx context.Context, position uint64) (types.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[position]
	if !ok {
		return types.Node{}, fmt.Errorf("node at position %d: %w", position, db.ErrNotFound)
	}
	return node, nil
}

func (s *MemoryNodeStore) SaveNode(ctx context.Context, node types.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.nodes[node.Position]; ok {
		return checkRewrite(stored, node)
	}
	s.nodes[node.Position] = node
	return nil
}

// Len returns the number of stored nodes
func (s *MemoryNodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
