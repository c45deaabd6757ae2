package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-mmr/rpc/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
)

type MMRClientInterface interface {
	GetNode(position uint64) (*types.Node, error)
	GetLeaf(blockNum uint64) (*types.Node, error)
	GetPeaks() (*types.Peaks, error)
	GetLastProcessedBlock() (uint64, error)
}

// GetNode returns the hash stored at the given position of the accumulator
func (c *Client) GetNode(position uint64) (*types.Node, error) {
	var result types.Node
	if err := c.call(&result, "mmr_getNode", position); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLeaf returns the leaf holding the hash of the given block
func (c *Client) GetLeaf(blockNum uint64) (*types.Node, error) {
	var result types.Node
	if err := c.call(&result, "mmr_getLeaf", blockNum); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPeaks returns the peaks of the accumulator
func (c *Client) GetPeaks() (*types.Peaks, error) {
	var result types.Peaks
	if err := c.call(&result, "mmr_getPeaks"); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLastProcessedBlock returns the number of the last block appended
func (c *Client) GetLastProcessedBlock() (uint64, error) {
	var result uint64
	return result, c.call(&result, "mmr_getLastProcessedBlock")
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	response, err := rpc.JSONRPCCall(c.url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return json.Unmarshal(response.Result, result)
}
