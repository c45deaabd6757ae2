package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/0xPolygon/cdk-mmr/mmr"
	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
)

// LoadCheckpointFile reads a JSON checkpoint:
//
//	{"startLeafIndex": 4440001, "peaks": [[8388606, "0x..."], ...]}
//
// The peak positions are validated against the start leaf index
func LoadCheckpointFile(path string) (*mmrtypes.Checkpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading checkpoint file %s: %w", path, err)
	}
	cp := &mmrtypes.Checkpoint{}
	if err := json.Unmarshal(content, cp); err != nil {
		return nil, fmt.Errorf("error decoding checkpoint file %s: %w", path, err)
	}
	if err := mmr.ValidateCheckpoint(*cp); err != nil {
		return nil, fmt.Errorf("checkpoint file %s: %w", path, err)
	}
	return cp, nil
}

// applyCheckpointFile replaces the inline checkpoint of the syncer with the
// one stored in HeaderMMRSync.CheckpointFile, if any
func applyCheckpointFile(cfg *Config) error {
	if cfg.HeaderMMRSync.CheckpointFile == "" {
		return nil
	}
	cp, err := LoadCheckpointFile(cfg.HeaderMMRSync.CheckpointFile)
	if err != nil {
		return err
	}
	cfg.HeaderMMRSync.SetCheckpoint(*cp)
	return nil
}
