package sync

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type mockConstructorTestingT interface {
	mock.TestingT
	Cleanup(func())
}

// ProcessorMock is a mock of processorInterface
type ProcessorMock struct {
	mock.Mock
}

func NewProcessorMock(t mockConstructorTestingT) *ProcessorMock {
	m := &ProcessorMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ProcessorMock) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(uint64), ret.Error(1) //nolint:forcetypeassert
}

func (m *ProcessorMock) ProcessBlock(ctx context.Context, block Block) error {
	ret := m.Called(ctx, block)
	return ret.Error(0)
}

// DownloaderMock is a mock of downloader
type DownloaderMock struct {
	mock.Mock
}

func NewDownloaderMock(t mockConstructorTestingT) *DownloaderMock {
	m := &DownloaderMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DownloaderMock) Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlockHeader) {
	m.Called(ctx, fromBlock, downloadedCh)
}

// EVMDownloaderMock is a mock of EVMDownloaderInterface
type EVMDownloaderMock struct {
	mock.Mock
}

func NewEVMDownloaderMock(t mockConstructorTestingT) *EVMDownloaderMock {
	m := &EVMDownloaderMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EVMDownloaderMock) WaitForNewBlocks(ctx context.Context, lastBlockSeen uint64) uint64 {
	ret := m.Called(ctx, lastBlockSeen)
	return ret.Get(0).(uint64) //nolint:forcetypeassert
}

func (m *EVMDownloaderMock) GetBlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool) {
	ret := m.Called(ctx, blockNum)
	return ret.Get(0).(EVMBlockHeader), ret.Bool(1) //nolint:forcetypeassert
}

// EthClienterMock is a mock of EthClienter
type EthClienterMock struct {
	mock.Mock
}

func NewEthClienterMock(t mockConstructorTestingT) *EthClienterMock {
	m := &EthClienterMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EthClienterMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ret := m.Called(ctx, number)
	var header *types.Header
	if h := ret.Get(0); h != nil {
		header = h.(*types.Header) //nolint:forcetypeassert
	}
	return header, ret.Error(1)
}
