package mmr

import (
	"context"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/mmr/types"
)

// ValidateCheckpoint checks that the peak positions of cp are the peaks of the
// forest holding leaves [0, cp.StartLeafIndex). Hashes are trusted as given.
func ValidateCheckpoint(cp types.Checkpoint) error {
	if cp.StartLeafIndex == 0 {
		if len(cp.Peaks) != 0 {
			return fmt.Errorf("%w: no peaks expected before leaf 0, got %d", ErrInvalidCheckpoint, len(cp.Peaks))
		}
		return nil
	}
	expected := Peaks(LeafIndexToMMRSize(cp.StartLeafIndex - 1))
	if len(cp.Peaks) != len(expected) {
		return fmt.Errorf("%w: expected %d peaks for start leaf %d, got %d",
			ErrInvalidCheckpoint, len(expected), cp.StartLeafIndex, len(cp.Peaks))
	}
	for i, peak := range cp.Peaks {
		if peak.Position != expected[i] {
			return fmt.Errorf("%w: peak %d at position %d, expected position %d",
				ErrInvalidCheckpoint, i, peak.Position, expected[i])
		}
	}
	return nil
}

// LoadCheckpoint writes the checkpoint peaks into store. Loading it again is a
// no-op.
func LoadCheckpoint(ctx context.Context, store NodeStore, cp types.Checkpoint) ([]types.Node, error) {
	written := make([]types.Node, 0, len(cp.Peaks))
	for _, peak := range cp.Peaks {
		if err := store.SaveNode(ctx, peak); err != nil {
			return written, fmt.Errorf("error loading checkpoint peak at position %d: %w", peak.Position, err)
		}
		written = append(written, peak)
	}
	return written, nil
}
