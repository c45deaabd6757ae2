package mmr

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidCheckpoint is returned when the checkpoint peaks don't match
	// the shape of the forest preceding its start leaf
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
	// ErrLeafIndexGap is returned when a leaf is appended before its predecessor
	ErrLeafIndexGap = errors.New("leaf index gap")
	// ErrUnknownMergeFunction is returned for an unsupported merge function name
	ErrUnknownMergeFunction = errors.New("unknown merge function")
)

// MissingChildError means a parent could not be computed because one of its
// children is not stored. The forest is corrupt.
type MissingChildError struct {
	Parent uint64
	Child  uint64
}

func (e *MissingChildError) Error() string {
	return fmt.Sprintf("missing child at position %d while computing parent at position %d", e.Child, e.Parent)
}

// DuplicatePositionError means a position already holds a different hash.
// Positions are write once, so the forest diverged.
type DuplicatePositionError struct {
	Position  uint64
	Stored    common.Hash
	Attempted common.Hash
}

func (e *DuplicatePositionError) Error() string {
	return fmt.Sprintf(
		"position %d already stores %s, refusing to overwrite it with %s",
		e.Position, e.Stored.Hex(), e.Attempted.Hex(),
	)
}

// IsFatal reports whether err means the accumulator can't make progress
// without manual intervention
func IsFatal(err error) bool {
	var (
		missing   *MissingChildError
		duplicate *DuplicatePositionError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &duplicate) ||
		errors.Is(err, ErrLeafIndexGap) ||
		errors.Is(err, ErrInvalidCheckpoint)
}
