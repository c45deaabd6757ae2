package headermmrsync

import (
	"fmt"

	"github.com/0xPolygon/cdk-mmr/config/types"
	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
)

const (
	NodeStoreSQLite  = "sqlite"
	NodeStoreLevelDB = "leveldb"
	NodeStoreMDBX    = "mdbx"
)

type Config struct {
	// DBPath is the sqlite file holding the processed blocks (and the nodes with the sqlite backend)
	DBPath string `mapstructure:"DBPath"`
	// URLRPC is the JSON RPC endpoint of the chain whose headers are accumulated
	URLRPC string `mapstructure:"URLRPC"`
	// BlockFinality indicates the status of the blocks that will be queried in order to sync.
	// Appended leaves can't be undone, so anything but FinalizedBlock risks a halt on reorg
	BlockFinality              string         `jsonschema:"enum=LatestBlock,enum=SafeBlock,enum=PendingBlock,enum=FinalizedBlock,enum=EarliestBlock" mapstructure:"BlockFinality"` //nolint:lll
	WaitForNewBlocksPeriod     types.Duration `mapstructure:"WaitForNewBlocksPeriod"`
	RetryAfterErrorPeriod      types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	MaxRetryAttemptsAfterError int            `mapstructure:"MaxRetryAttemptsAfterError"`
	DownloadBufferSize         int            `mapstructure:"DownloadBufferSize"`
	// MergeFunction hashes two siblings into their parent
	MergeFunction string `jsonschema:"enum=blake2b256,enum=keccak256" mapstructure:"MergeFunction"`
	// StartLeafIndex is the first block accumulated. When it's not 0, CheckpointPeaks must hold
	// the peaks of the forest of all the previous blocks
	StartLeafIndex uint64 `mapstructure:"StartLeafIndex"`
	// CheckpointFile is a JSON file with the checkpoint, overrides StartLeafIndex and CheckpointPeaks
	CheckpointFile  string          `mapstructure:"CheckpointFile"`
	CheckpointPeaks []PeakConfig    `mapstructure:"CheckpointPeaks"`
	NodeStore       NodeStoreConfig `mapstructure:"NodeStore"`
}

type PeakConfig struct {
	Position uint64 `mapstructure:"Position"`
	// Hash in hex, the 0x prefix is optional
	Hash string `mapstructure:"Hash"`
}

type NodeStoreConfig struct {
	Backend     string `jsonschema:"enum=sqlite,enum=leveldb,enum=mdbx" mapstructure:"Backend"`
	LevelDBPath string `mapstructure:"LevelDBPath"`
	MDBXPath    string `mapstructure:"MDBXPath"`
}

// Checkpoint returns the checkpoint described by StartLeafIndex and
// CheckpointPeaks, or nil if the accumulator starts at leaf 0
func (c Config) Checkpoint() (*mmrtypes.Checkpoint, error) {
	if c.StartLeafIndex == 0 && len(c.CheckpointPeaks) == 0 {
		return nil, nil
	}
	cp := &mmrtypes.Checkpoint{
		StartLeafIndex: c.StartLeafIndex,
		Peaks:          make([]mmrtypes.Node, 0, len(c.CheckpointPeaks)),
	}
	for _, peak := range c.CheckpointPeaks {
		hash, err := mmrtypes.ParseHash(peak.Hash)
		if err != nil {
			return nil, fmt.Errorf("checkpoint peak at position %d: %w", peak.Position, err)
		}
		cp.Peaks = append(cp.Peaks, mmrtypes.Node{Position: peak.Position, Hash: hash})
	}
	return cp, nil
}

// SetCheckpoint replaces StartLeafIndex and CheckpointPeaks with cp
func (c *Config) SetCheckpoint(cp mmrtypes.Checkpoint) {
	c.StartLeafIndex = cp.StartLeafIndex
	c.CheckpointPeaks = make([]PeakConfig, 0, len(cp.Peaks))
	for _, peak := range cp.Peaks {
		c.CheckpointPeaks = append(c.CheckpointPeaks, PeakConfig{
			Position: peak.Position,
			Hash:     peak.Hash.Hex(),
		})
	}
}
