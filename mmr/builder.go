package mmr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/ethereum/go-ethereum/common"
)

// BuilderConfig parameterises a Builder
type BuilderConfig struct {
	// StartLeafIndex is the first leaf accepted. Lower leaves are ignored.
	StartLeafIndex uint64
	// Checkpoint holds the peaks preceding StartLeafIndex. Required when
	// StartLeafIndex is not 0.
	Checkpoint *types.Checkpoint
	// Merge computes a parent from its children. Defaults to MergeBlake2b256.
	Merge MergeFunc
}

// Builder appends leaves to a forest persisted in a NodeStore
type Builder struct {
	startLeafIndex uint64
	checkpoint     *types.Checkpoint
	merge          MergeFunc

	mu            sync.Mutex
	lastLeafIndex uint64
	hasLastLeaf   bool

	log *log.Logger
}

// NewBuilder returns a Builder with no appended leaf. The first Append must be
// for cfg.StartLeafIndex unless SetLastLeafIndex restores a previous run.
func NewBuilder(cfg BuilderConfig, logger *log.Logger) (*Builder, error) {
	if cfg.Merge == nil {
		cfg.Merge = MergeBlake2b256
	}
	if cfg.StartLeafIndex > 0 && cfg.Checkpoint == nil {
		return nil, fmt.Errorf("%w: start leaf %d requires checkpoint peaks", ErrInvalidCheckpoint, cfg.StartLeafIndex)
	}
	if cfg.Checkpoint != nil {
		if cfg.Checkpoint.StartLeafIndex != cfg.StartLeafIndex {
			return nil, fmt.Errorf("%w: checkpoint starts at leaf %d but builder starts at leaf %d",
				ErrInvalidCheckpoint, cfg.Checkpoint.StartLeafIndex, cfg.StartLeafIndex)
		}
		if err := ValidateCheckpoint(*cfg.Checkpoint); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = log.WithFields("module", "mmr")
	}
	return &Builder{
		startLeafIndex: cfg.StartLeafIndex,
		checkpoint:     cfg.Checkpoint,
		merge:          cfg.Merge,
		log:            logger,
	}, nil
}

// StartLeafIndex returns the first leaf index the builder accepts
func (b *Builder) StartLeafIndex() uint64 {
	return b.startLeafIndex
}

// SetLastLeafIndex tells the builder which leaf was appended last, so that
// ordering is enforced across restarts
func (b *Builder) SetLastLeafIndex(index uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastLeafIndex = index
	b.hasLastLeaf = true
}

// ClearLastLeafIndex forgets the last appended leaf, so the next append is
// not checked for gaps
func (b *Builder) ClearLastLeafIndex() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastLeafIndex = 0
	b.hasLastLeaf = false
}

// LastLeafIndex returns the last appended leaf index, if any
func (b *Builder) LastLeafIndex() (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLeafIndex, b.hasLastLeaf
}

// Append adds the leaf to the forest and computes every ancestor it completes.
// It returns the nodes written, in write order. Leaves below the start leaf
// are ignored. Appending an already appended leaf again is a no-op.
func (b *Builder) Append(
	ctx context.Context, store NodeStore, leafIndex uint64, leafHash common.Hash,
) ([]types.Node, error) {
	if leafIndex < b.startLeafIndex {
		b.log.Debugf("ignoring leaf %d, below start leaf %d", leafIndex, b.startLeafIndex)
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasLastLeaf && leafIndex > b.lastLeafIndex+1 {
		return nil, fmt.Errorf("%w: leaf %d appended after leaf %d", ErrLeafIndexGap, leafIndex, b.lastLeafIndex)
	}
	// the first leaf of a fresh forest is the start leaf, which also loads the checkpoint
	if !b.hasLastLeaf && leafIndex > b.startLeafIndex {
		return nil, fmt.Errorf("%w: first leaf %d appended, expected start leaf %d",
			ErrLeafIndexGap, leafIndex, b.startLeafIndex)
	}

	var written []types.Node
	if leafIndex == b.startLeafIndex && b.checkpoint != nil {
		peaks, err := LoadCheckpoint(ctx, store, *b.checkpoint)
		if err != nil {
			return nil, err
		}
		b.log.Infof("loaded %d checkpoint peaks for start leaf %d", len(peaks), b.startLeafIndex)
		written = append(written, peaks...)
	}

	nodes, err := b.appendLeaf(ctx, store, leafIndex, leafHash)
	if err != nil {
		return nil, err
	}
	written = append(written, nodes...)

	if !b.hasLastLeaf || leafIndex > b.lastLeafIndex {
		b.lastLeafIndex = leafIndex
		b.hasLastLeaf = true
	}
	return written, nil
}

func (b *Builder) appendLeaf(
	ctx context.Context, store NodeStore, leafIndex uint64, leafHash common.Hash,
) ([]types.Node, error) {
	pos := LeafIndexToPos(leafIndex)
	leaf := types.Node{Position: pos, Hash: leafHash}
	if err := store.SaveNode(ctx, leaf); err != nil {
		return nil, fmt.Errorf("error saving leaf %d: %w", leafIndex, err)
	}
	written := []types.Node{leaf}

	// a node at a greater height right after pos means pos closed a pair
	var height uint64
	for PosHeightInTree(pos+1) > height {
		pos++
		leftPos := pos - ParentOffset(height)
		rightPos := leftPos + SiblingOffset(height)
		left, err := b.getChild(ctx, store, pos, leftPos)
		if err != nil {
			return nil, err
		}
		right, err := b.getChild(ctx, store, pos, rightPos)
		if err != nil {
			return nil, err
		}
		parent := types.Node{Position: pos, Hash: b.merge(left.Hash, right.Hash)}
		if err := store.SaveNode(ctx, parent); err != nil {
			return nil, fmt.Errorf("error saving parent of leaf %d: %w", leafIndex, err)
		}
		written = append(written, parent)
		height++
	}
	return written, nil
}

func (b *Builder) getChild(ctx context.Context, store NodeStore, parent, child uint64) (types.Node, error) {
	node, err := store.GetNode(ctx, child)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return types.Node{}, &MissingChildError{Parent: parent, Child: child}
		}
		return types.Node{}, err
	}
	return node, nil
}

// GetPeaks reads the current peaks of a forest of mmrSize nodes from store
func GetPeaks(ctx context.Context, store NodeStore, mmrSize uint64) ([]types.Peak, error) {
	positions := Peaks(mmrSize)
	if positions == nil && mmrSize != 0 {
		return nil, fmt.Errorf("%d is not a valid mmr size", mmrSize)
	}
	peaks := make([]types.Peak, 0, len(positions))
	for _, pos := range positions {
		node, err := store.GetNode(ctx, pos)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, types.Peak{
			Position: pos,
			Height:   PosHeightInTree(pos),
			Hash:     node.Hash,
		})
	}
	return peaks, nil
}
