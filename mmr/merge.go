package mmr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
	"golang.org/x/crypto/blake2b"
)

const (
	// MergeNameBlake2b256 is the config name of MergeBlake2b256
	MergeNameBlake2b256 = "blake2b256"
	// MergeNameKeccak256 is the config name of MergeKeccak256
	MergeNameKeccak256 = "keccak256"
)

// MergeFunc combines the hashes of two sibling nodes into the hash of their parent
type MergeFunc func(left, right common.Hash) common.Hash

// EncodePair is the canonical encoding of an ordered pair of hashes: both
// fixed size fields back to back, left first, with no length prefix
func EncodePair(left, right common.Hash) []byte {
	encoded := make([]byte, 0, 2*common.HashLength) //nolint:mnd
	encoded = append(encoded, left[:]...)
	return append(encoded, right[:]...)
}

// MergeBlake2b256 hashes the encoded pair with blake2b-256
func MergeBlake2b256(left, right common.Hash) common.Hash {
	return blake2b.Sum256(EncodePair(left, right))
}

// MergeKeccak256 hashes the encoded pair with keccak256
func MergeKeccak256(left, right common.Hash) common.Hash {
	return common.BytesToHash(keccak256.Hash(EncodePair(left, right)))
}

// MergeFuncByName returns the merge function registered under name. An empty
// name selects blake2b256.
func MergeFuncByName(name string) (MergeFunc, error) {
	switch name {
	case "", MergeNameBlake2b256:
		return MergeBlake2b256, nil
	case MergeNameKeccak256:
		return MergeKeccak256, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMergeFunction, name)
	}
}
