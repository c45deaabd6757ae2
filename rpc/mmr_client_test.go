package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type jsonRPCRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newJSONRPCServer answers every call to method with result, or with an error
// if result is nil
func newJSONRPCServer(t *testing.T, method string, result string) (*httptest.Server, *[]json.RawMessage) {
	t.Helper()
	var params []json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		params = req.Params
		w.Header().Set("Content-Type", "application/json")
		if req.Method != method || result == "" {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &params
}

func TestClientGetNode(t *testing.T) {
	srv, params := newJSONRPCServer(t, "mmr_getNode",
		`{"position":8879988,"hash":"0x00000000000000000000000000000000000000000000000000000000000000ff"}`)
	node, err := NewClient(srv.URL).GetNode(8879988)
	require.NoError(t, err)
	require.Equal(t, uint64(8879988), node.Position)
	require.Equal(t, byte(0xff), node.Hash[31])
	require.Len(t, *params, 1)
	require.JSONEq(t, "8879988", string((*params)[0]))
}

func TestClientGetLeaf(t *testing.T) {
	srv, params := newJSONRPCServer(t, "mmr_getLeaf",
		`{"position":3,"hash":"0x0000000000000000000000000000000000000000000000000000000000000001"}`)
	node, err := NewClient(srv.URL).GetLeaf(2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), node.Position)
	require.JSONEq(t, "2", string((*params)[0]))
}

func TestClientGetPeaks(t *testing.T) {
	srv, _ := newJSONRPCServer(t, "mmr_getPeaks", `{"mmrSize":4,"leafIndex":2,"peaks":[`+
		`{"position":2,"height":1,"hash":"0x0000000000000000000000000000000000000000000000000000000000000002"},`+
		`{"position":3,"height":0,"hash":"0x0000000000000000000000000000000000000000000000000000000000000003"}]}`)
	peaks, err := NewClient(srv.URL).GetPeaks()
	require.NoError(t, err)
	require.Equal(t, uint64(4), peaks.MMRSize)
	require.NotNil(t, peaks.LeafIndex)
	require.Equal(t, uint64(2), *peaks.LeafIndex)
	require.Len(t, peaks.Peaks, 2)
	require.Equal(t, uint64(1), peaks.Peaks[0].Height)
	require.Equal(t, uint64(3), peaks.Peaks[1].Position)
}

func TestClientGetLastProcessedBlock(t *testing.T) {
	srv, _ := newJSONRPCServer(t, "mmr_getLastProcessedBlock", `4440001`)
	num, err := NewClient(srv.URL).GetLastProcessedBlock()
	require.NoError(t, err)
	require.Equal(t, uint64(4440001), num)
}

func TestClientError(t *testing.T) {
	srv, _ := newJSONRPCServer(t, "mmr_getPeaks", "")
	var factory ClientFactoryInterface = &ClientFactory{}
	_, err := factory.NewClient(srv.URL).GetPeaks()
	require.ErrorContains(t, err, "boom")
}
