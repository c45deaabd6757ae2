package mmr

import "math/bits"

// Positions are zero based indices into the flat, append only node sequence
// of the forest. Leaf indices count only leaves. Example with 11 nodes:
//
//	2        6
//	       /   \
//	1     2     5      9
//	     / \   / \    / \
//	0   0   1 3   4  7   8  10

// LeafIndexToMMRSize returns the number of nodes of the forest right after the
// leaf with the given index has been appended and all its ancestors computed
func LeafIndexToMMRSize(index uint64) uint64 {
	leaves := index + 1
	return 2*leaves - uint64(bits.OnesCount64(leaves))
}

// LeafIndexToPos returns the position of the leaf with the given index
func LeafIndexToPos(index uint64) uint64 {
	return LeafIndexToMMRSize(index) - uint64(bits.TrailingZeros64(index+1)) - 1
}

// PosHeightInTree returns the height of the node at the given position.
// Leaves have height 0.
func PosHeightInTree(pos uint64) uint64 {
	p := pos + 1
	for !AllOnes(p) {
		p = JumpLeft(p)
	}
	return BitLength(p) - 1
}

// JumpLeft moves a one based position to the node with the same height in the
// left most perfect tree that can hold it
func JumpLeft(p uint64) uint64 {
	mostSignificant := uint64(1) << (BitLength(p) - 1)
	return p - (mostSignificant - 1)
}

// AllOnes reports whether num is of the form 2^k - 1, k > 0
func AllOnes(num uint64) bool {
	return num != 0 && num&(num+1) == 0
}

// BitLength returns the minimum number of bits needed to represent num
func BitLength(num uint64) uint64 {
	return uint64(bits.Len64(num))
}

// ParentOffset is the distance from the left child at height h to its parent
func ParentOffset(height uint64) uint64 {
	return 2 << height
}

// SiblingOffset is the distance from the left child at height h to its right sibling
func SiblingOffset(height uint64) uint64 {
	return (2 << height) - 1
}

// Peaks returns the positions of the peaks of a forest with mmrSize nodes, in
// ascending order. The first one is the highest. It returns nil if mmrSize is
// not the size of a complete forest (a node waiting for its parent).
func Peaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 {
		return nil
	}
	var (
		peaks      []uint64
		offset     uint64
		remaining  = mmrSize
		prevHeight = uint64(bits.UintSize)
	)
	for remaining > 0 {
		height := BitLength(remaining+1) - 1
		treeSize := (uint64(1) << height) - 1
		if height >= prevHeight {
			return nil
		}
		peaks = append(peaks, offset+treeSize-1)
		offset += treeSize
		remaining -= treeSize
		prevHeight = height
	}
	return peaks
}

// LeafCount returns the number of leaves of a forest with mmrSize nodes
func LeafCount(mmrSize uint64) uint64 {
	var leaves uint64
	for _, peak := range Peaks(mmrSize) {
		leaves += uint64(1) << PosHeightInTree(peak)
	}
	return leaves
}
