package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// NodeInfo mirrors ring.NodeDescriptor's wire shape without importing the
// server-side package, keeping the SDK usable standalone.
type NodeInfo struct {
	ID   uint64 `json:"node_id"`
	Host string `json:"ip"`
	Port int    `json:"port"`
}

// ClusterNodes lists every node the target knows about, as reported by
// its own membership table.
func (c *Client) ClusterNodes(ctx context.Context) ([]NodeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/cluster/nodes", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cluster nodes request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body struct {
		Nodes []NodeInfo `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode cluster nodes response: %w", err)
	}
	return body.Nodes, nil
}

// ClusterJoin asks the target node to send a register_node handshake to
// seedAddr ("host:port"), the same handshake a node performs automatically
// at startup (see cmd/chordkvd). There is no ClusterLeave: membership never
// shrinks in this system (spec §3).
func (c *Client) ClusterJoin(ctx context.Context, seedAddr string) error {
	body, err := json.Marshal(map[string]string{"seed": seedAddr})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/cluster/join", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cluster join request failed: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
