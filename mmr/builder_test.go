package mmr

import (
	"context"
	"errors"
	"testing"

	"github.com/0xPolygon/cdk-mmr/db"
	"github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var mainnetCheckpoint = types.Checkpoint{
	StartLeafIndex: 4440001,
	Peaks: []types.Node{
		{Position: 8388606, Hash: common.HexToHash("0xfc94dd28d893d7628d0c7769d2cc0a51354944305cb522570f2bb67fb5b0d37b")},
		{Position: 8650749, Hash: common.HexToHash("0xb455faf965a951664448fe99f0ea45a648eb8de54e3316117118ccc9ce74ab28")},
		{Position: 8781820, Hash: common.HexToHash("0x99d876fb6d5075d71eae37af3bc0fb5ef61778f165051a3fcab6a5280a503064")},
		{Position: 8847355, Hash: common.HexToHash("0xe3fceb92b0a5873f70565c39521d50f1c8ceb4e6777e7b8566c9b188385c0a74")},
		{Position: 8863738, Hash: common.HexToHash("0x3223d5c83f0ee5b8e8f0b5dddf67698a093eac85bff6b54825cdc29830b07998")},
		{Position: 8871929, Hash: common.HexToHash("0x260449d7515136c7be2ef1a986ed11b0cc1d07d5197fa2042d82170c0555678f")},
		{Position: 8876024, Hash: common.HexToHash("0x2d03c3e8ded5a20ca3f2a46fae604b08cec120320e8fb7842fdc3eabc28464b5")},
		{Position: 8878071, Hash: common.HexToHash("0x671938886a0e29b696195fdaa96ad7b2fc6388fad7021676f2986d9edb4beaaf")},
		{Position: 8879094, Hash: common.HexToHash("0x1a019c54adb3c54e3e05c697e50a2bbfe666c0e5ef4da41be93f3fcac79106d6")},
		{Position: 8879605, Hash: common.HexToHash("0x24d5078f478594c5947660ee053cf84faf9cab1659f550283ab0981f92e7a11e")},
		{Position: 8879860, Hash: common.HexToHash("0xc092063067166c75d9c547b86222844b5a8d0f06c1cbc747b5139b90aed8cd88")},
		{Position: 8879987, Hash: common.HexToHash("0x04820a61e808323ab1ed36fbefe4f3ad0a691f7eb8ac40d85108c244c1f60ff9")},
		{Position: 8879988, Hash: common.HexToHash("0x7b0bc8add08a714c68e59899ac630258caa0b511171b995d32ec83cbe1acb1a6")},
	},
}

func newTestBuilder(t *testing.T, cfg BuilderConfig) *Builder {
	t.Helper()
	b, err := NewBuilder(cfg, nil)
	require.NoError(t, err)
	return b
}

func requireNode(t *testing.T, store NodeStore, pos uint64, expected common.Hash) {
	t.Helper()
	node, err := store.GetNode(context.Background(), pos)
	require.NoError(t, err, "position %d", pos)
	require.Equal(t, expected, node.Hash, "position %d", pos)
}

func TestAppendThreeLeaves(t *testing.T) {
	for name, newStore := range storeFactories {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			b := newTestBuilder(t, BuilderConfig{})
			h0, h1, h2 := leafHash(0), leafHash(1), leafHash(2)

			written, err := b.Append(ctx, store, 0, h0)
			require.NoError(t, err)
			require.Equal(t, []types.Node{{Position: 0, Hash: h0}}, written)

			written, err = b.Append(ctx, store, 1, h1)
			require.NoError(t, err)
			parent := MergeBlake2b256(h0, h1)
			require.Equal(t, []types.Node{{Position: 1, Hash: h1}, {Position: 2, Hash: parent}}, written)

			written, err = b.Append(ctx, store, 2, h2)
			require.NoError(t, err)
			require.Equal(t, []types.Node{{Position: 3, Hash: h2}}, written)

			requireNode(t, store, 0, h0)
			requireNode(t, store, 1, h1)
			requireNode(t, store, 2, parent)
			requireNode(t, store, 3, h2)
			_, err = store.GetNode(ctx, 4)
			require.ErrorIs(t, err, db.ErrNotFound)

			peaks, err := GetPeaks(ctx, store, LeafIndexToMMRSize(2))
			require.NoError(t, err)
			require.Equal(t, []types.Peak{
				{Position: 2, Height: 1, Hash: parent},
				{Position: 3, Height: 0, Hash: h2},
			}, peaks)
		})
	}
}

func TestAppendMatchesPerfectTrees(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	b := newTestBuilder(t, BuilderConfig{Merge: MergeKeccak256})

	const numLeaves = 100
	leaves := make([]common.Hash, 0, numLeaves)
	for i := uint64(0); i < numLeaves; i++ {
		leaves = append(leaves, leafHash(i))
		_, err := b.Append(ctx, store, i, leafHash(i))
		require.NoError(t, err)
	}
	size := LeafIndexToMMRSize(numLeaves - 1)
	require.Equal(t, int(size), store.Len())

	// every peak is the root of the perfect tree over its range of leaves
	peaks, err := GetPeaks(ctx, store, size)
	require.NoError(t, err)
	first := 0
	for _, peak := range peaks {
		width := 1 << peak.Height
		require.Equal(t, naiveRoot(MergeKeccak256, leaves[first:first+width]), peak.Hash)
		first += width
	}
	require.Equal(t, numLeaves, first)
}

func TestAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	b := newTestBuilder(t, BuilderConfig{})
	for i := uint64(0); i < 4; i++ {
		_, err := b.Append(ctx, store, i, leafHash(i))
		require.NoError(t, err)
	}
	require.Equal(t, 7, store.Len())

	written, err := b.Append(ctx, store, 3, leafHash(3))
	require.NoError(t, err)
	require.Equal(t, []types.Node{
		{Position: 4, Hash: leafHash(3)},
		{Position: 5, Hash: MergeBlake2b256(leafHash(2), leafHash(3))},
		{Position: 6, Hash: MergeBlake2b256(MergeBlake2b256(leafHash(0), leafHash(1)), MergeBlake2b256(leafHash(2), leafHash(3)))},
	}, written)
	require.Equal(t, 7, store.Len())
}

func TestAppendConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	b := newTestBuilder(t, BuilderConfig{})
	_, err := b.Append(ctx, store, 0, leafHash(0))
	require.NoError(t, err)

	_, err = b.Append(ctx, store, 0, leafHash(100))
	var duplicate *DuplicatePositionError
	require.ErrorAs(t, err, &duplicate)
	require.Equal(t, uint64(0), duplicate.Position)
	require.Equal(t, leafHash(0), duplicate.Stored)
	require.Equal(t, leafHash(100), duplicate.Attempted)
	require.True(t, IsFatal(err))
	requireNode(t, store, 0, leafHash(0))
}

func TestAppendMissingChild(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	// leaf 1 without leaf 0, as if leaf 0 was lost
	b := newTestBuilder(t, BuilderConfig{})
	b.SetLastLeafIndex(0)
	_, err := b.Append(ctx, store, 1, leafHash(1))
	var missing *MissingChildError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, uint64(2), missing.Parent)
	require.Equal(t, uint64(0), missing.Child)
	require.True(t, IsFatal(err))
}

func TestAppendGap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	b := newTestBuilder(t, BuilderConfig{})
	_, err := b.Append(ctx, store, 0, leafHash(0))
	require.NoError(t, err)
	_, err = b.Append(ctx, store, 2, leafHash(2))
	require.ErrorIs(t, err, ErrLeafIndexGap)
	require.Equal(t, 1, store.Len())

	b.ClearLastLeafIndex()
	_, ok := b.LastLeafIndex()
	require.False(t, ok)
}

func TestAppendFirstLeafMustBeStartLeaf(t *testing.T) {
	ctx := context.Background()

	store := NewMemoryNodeStore()
	b := newTestBuilder(t, BuilderConfig{})
	_, err := b.Append(ctx, store, 2, leafHash(2))
	require.ErrorIs(t, err, ErrLeafIndexGap)
	require.True(t, IsFatal(err))
	require.Equal(t, 0, store.Len())
	_, ok := b.LastLeafIndex()
	require.False(t, ok)

	// 3 leaves: peaks at 2 and 3
	cp := types.Checkpoint{
		StartLeafIndex: 3,
		Peaks: []types.Node{
			{Position: 2, Hash: MergeBlake2b256(leafHash(0), leafHash(1))},
			{Position: 3, Hash: leafHash(2)},
		},
	}
	store = NewMemoryNodeStore()
	b = newTestBuilder(t, BuilderConfig{StartLeafIndex: 3, Checkpoint: &cp})
	_, err = b.Append(ctx, store, 4, leafHash(4))
	require.ErrorIs(t, err, ErrLeafIndexGap)
	require.Equal(t, 0, store.Len())

	// the start leaf loads the checkpoint, then the next leaf is accepted
	written, err := b.Append(ctx, store, 3, leafHash(3))
	require.NoError(t, err)
	require.Len(t, written, 5)
	_, err = b.Append(ctx, store, 4, leafHash(4))
	require.NoError(t, err)
	requireNode(t, store, 6, MergeBlake2b256(cp.Peaks[0].Hash, MergeBlake2b256(leafHash(2), leafHash(3))))

	// a restarted builder continues after the restored last leaf
	restarted := newTestBuilder(t, BuilderConfig{StartLeafIndex: 3, Checkpoint: &cp})
	restarted.SetLastLeafIndex(4)
	_, err = restarted.Append(ctx, store, 5, leafHash(5))
	require.NoError(t, err)
}

func TestAppendStoreError(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(t, BuilderConfig{})
	errDisk := errors.New("disk full")
	_, err := b.Append(ctx, &failingStore{err: errDisk}, 0, leafHash(0))
	require.ErrorIs(t, err, errDisk)
	require.False(t, IsFatal(err))
}

type failingStore struct {
	err error
}

func (s *failingStore) GetNode(ctx context.Context, position uint64) (types.Node, error) {
	return types.Node{}, s.err
}

func (s *failingStore) SaveNode(ctx context.Context, node types.Node) error {
	return s.err
}

func TestAppendWithCheckpoint(t *testing.T) {
	for name, newStore := range storeFactories {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			cp := mainnetCheckpoint
			b := newTestBuilder(t, BuilderConfig{
				StartLeafIndex: cp.StartLeafIndex,
				Checkpoint:     &cp,
			})

			// below the start leaf nothing happens
			written, err := b.Append(ctx, store, 4440000, leafHash(4440000))
			require.NoError(t, err)
			require.Empty(t, written)
			_, err = store.GetNode(ctx, cp.Peaks[0].Position)
			require.ErrorIs(t, err, db.ErrNotFound)

			leaf := leafHash(4440001)
			written, err = b.Append(ctx, store, 4440001, leaf)
			require.NoError(t, err)
			// 13 peaks, the leaf and its parent with the last peak
			require.Len(t, written, 15)
			for _, peak := range cp.Peaks {
				requireNode(t, store, peak.Position, peak.Hash)
			}
			requireNode(t, store, 8879989, leaf)
			requireNode(t, store, 8879990, MergeBlake2b256(cp.Peaks[12].Hash, leaf))

			for i := uint64(4440002); i < 4440010; i++ {
				_, err = b.Append(ctx, store, i, leafHash(i))
				require.NoError(t, err)
			}
			peaks, err := GetPeaks(ctx, store, LeafIndexToMMRSize(4440009))
			require.NoError(t, err)
			require.Equal(t, uint64(4440010), LeafCount(LeafIndexToMMRSize(4440009)))
			require.Equal(t, cp.Peaks[0], types.Node{Position: peaks[0].Position, Hash: peaks[0].Hash})
		})
	}
}

func TestCheckpointReloadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryNodeStore()
	cp := mainnetCheckpoint
	_, err := LoadCheckpoint(ctx, store, cp)
	require.NoError(t, err)
	_, err = LoadCheckpoint(ctx, store, cp)
	require.NoError(t, err)
	require.Equal(t, len(cp.Peaks), store.Len())

	tampered := types.Checkpoint{StartLeafIndex: cp.StartLeafIndex, Peaks: append([]types.Node{}, cp.Peaks...)}
	tampered.Peaks[3].Hash = common.HexToHash("0xbad")
	_, err = LoadCheckpoint(ctx, store, tampered)
	var duplicate *DuplicatePositionError
	require.ErrorAs(t, err, &duplicate)
	require.Equal(t, cp.Peaks[3].Position, duplicate.Position)
}

func TestValidateCheckpoint(t *testing.T) {
	require.NoError(t, ValidateCheckpoint(mainnetCheckpoint))
	require.NoError(t, ValidateCheckpoint(types.Checkpoint{}))

	missingPeak := types.Checkpoint{
		StartLeafIndex: mainnetCheckpoint.StartLeafIndex,
		Peaks:          mainnetCheckpoint.Peaks[:12],
	}
	require.ErrorIs(t, ValidateCheckpoint(missingPeak), ErrInvalidCheckpoint)

	wrongStart := types.Checkpoint{
		StartLeafIndex: mainnetCheckpoint.StartLeafIndex + 1,
		Peaks:          mainnetCheckpoint.Peaks,
	}
	require.ErrorIs(t, ValidateCheckpoint(wrongStart), ErrInvalidCheckpoint)

	// 3 leaves: peaks at 2 and 3
	require.NoError(t, ValidateCheckpoint(types.Checkpoint{
		StartLeafIndex: 3,
		Peaks:          []types.Node{{Position: 2}, {Position: 3}},
	}))
	require.ErrorIs(t, ValidateCheckpoint(types.Checkpoint{
		StartLeafIndex: 3,
		Peaks:          []types.Node{{Position: 3}, {Position: 2}},
	}), ErrInvalidCheckpoint)
}

func TestNewBuilderRequiresCheckpoint(t *testing.T) {
	_, err := NewBuilder(BuilderConfig{StartLeafIndex: 10}, nil)
	require.ErrorIs(t, err, ErrInvalidCheckpoint)

	cp := mainnetCheckpoint
	_, err = NewBuilder(BuilderConfig{StartLeafIndex: 10, Checkpoint: &cp}, nil)
	require.ErrorIs(t, err, ErrInvalidCheckpoint)
}

func TestCheckpointThenContinueMatchesFullBuild(t *testing.T) {
	ctx := context.Background()
	const start, end = 11, 40

	full := NewMemoryNodeStore()
	fullBuilder := newTestBuilder(t, BuilderConfig{})
	for i := uint64(0); i < end; i++ {
		_, err := fullBuilder.Append(ctx, full, i, leafHash(i))
		require.NoError(t, err)
	}

	cp := types.Checkpoint{StartLeafIndex: start}
	for _, pos := range Peaks(LeafIndexToMMRSize(start - 1)) {
		node, err := full.GetNode(ctx, pos)
		require.NoError(t, err)
		cp.Peaks = append(cp.Peaks, node)
	}
	partial := NewMemoryNodeStore()
	partialBuilder := newTestBuilder(t, BuilderConfig{StartLeafIndex: start, Checkpoint: &cp})
	for i := uint64(start); i < end; i++ {
		_, err := partialBuilder.Append(ctx, partial, i, leafHash(i))
		require.NoError(t, err)
	}

	fullPeaks, err := GetPeaks(ctx, full, LeafIndexToMMRSize(end-1))
	require.NoError(t, err)
	partialPeaks, err := GetPeaks(ctx, partial, LeafIndexToMMRSize(end-1))
	require.NoError(t, err)
	require.Equal(t, fullPeaks, partialPeaks)
}
