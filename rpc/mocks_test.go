package rpc

import (
	"context"

	mmrtypes "github.com/0xPolygon/cdk-mmr/mmr/types"
	"github.com/stretchr/testify/mock"
)

// MMRSyncerMock is a mock of MMRSyncer
type MMRSyncerMock struct {
	mock.Mock
}

func NewMMRSyncerMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MMRSyncerMock {
	m := &MMRSyncerMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MMRSyncerMock) GetNode(ctx context.Context, position uint64) (mmrtypes.Node, error) {
	ret := m.Called(ctx, position)
	return ret.Get(0).(mmrtypes.Node), ret.Error(1) //nolint:forcetypeassert
}

func (m *MMRSyncerMock) GetLeaf(ctx context.Context, blockNum uint64) (mmrtypes.Node, error) {
	ret := m.Called(ctx, blockNum)
	return ret.Get(0).(mmrtypes.Node), ret.Error(1) //nolint:forcetypeassert
}

func (m *MMRSyncerMock) GetPeaks(ctx context.Context) (uint64, []mmrtypes.Peak, error) {
	ret := m.Called(ctx)
	var peaks []mmrtypes.Peak
	if ret.Get(1) != nil {
		peaks = ret.Get(1).([]mmrtypes.Peak) //nolint:forcetypeassert
	}
	return ret.Get(0).(uint64), peaks, ret.Error(2) //nolint:forcetypeassert
}

func (m *MMRSyncerMock) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(uint64), ret.Error(1) //nolint:forcetypeassert
}
