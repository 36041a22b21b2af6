package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"chordkv/internal/chordnode"
	"chordkv/internal/membership"
	"chordkv/internal/peer"
	"chordkv/internal/ring"
	"chordkv/internal/store"
)

const testM = 16

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	self := ring.NewNodeDescriptor("127.0.0.1", 16000, testM)
	table := membership.New(self)
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	node := chordnode.New(self, testM, st, table, peer.NewClient())

	router := gin.New()
	router.Use(Logger(), Recovery())
	NewHandler(node).Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHTTPPutGetDelete(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/put", map[string]string{"key": "alpha", "value": "1"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "success", body["status"])
	require.Equal(t, "alpha", body["key"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/get/alpha", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "1", body["value"])

	status, body = doJSON(t, http.MethodDelete, srv.URL+"/delete/alpha", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "deleted", body["status"])

	status, body = doJSON(t, http.MethodGet, srv.URL+"/get/alpha", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Key not found", body["message"])
}

func TestHTTPDeleteMissingKeyIsIdempotent(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodDelete, srv.URL+"/delete/never-existed", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "deleted", body["status"])
}

func TestHTTPClusterNodesListsSelf(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/cluster/nodes", nil)
	require.Equal(t, http.StatusOK, status)
	nodes, ok := body["nodes"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
}
