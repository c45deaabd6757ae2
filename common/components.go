package common

const (
	// HEADER_MMR_SYNC name to identify the header accumulator syncer component
	HEADER_MMR_SYNC = "headermmrsync" //nolint:stylecheck
	// RPC name to identify the rpc component, it serves the nodes stored by headermmrsync
	RPC = "rpc"
)
