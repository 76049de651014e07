package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *brownian.Process) {
	t.Helper()
	cfg := config.Default()
	cfg.ModelPath = "../../../models/redgreen.txt"
	cfg.Seed = 5
	p, err := brownian.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return NewServer(p, "test"), p
}

// call sends one JSON-RPC message and decodes the response.
func call(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Nil(t, out["error"], string(data))
	return out["result"].(map[string]any)
}

func TestServer_ListTools(t *testing.T) {
	s, _ := newServer(t)
	res := call(t, s, "tools/list", map[string]any{})

	var names []string
	for _, tool := range res["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"get_schema", "initial_state", "update"}, names)
}

func TestServer_InitialStateTool(t *testing.T) {
	s, _ := newServer(t)
	res := call(t, s, "tools/call", map[string]any{"name": "initial_state", "arguments": map[string]any{}})

	content := res["content"].([]any)[0].(map[string]any)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(content["text"].(string)), &state))
	green := state[domain.PortMolecules].(map[string]any)["green"].(map[string]any)
	assert.EqualValues(t, 5, green["count"])
}

func TestServer_HandleUpdate(t *testing.T) {
	s, p := newServer(t)
	initial, err := p.InitialState()
	require.NoError(t, err)

	res, err := s.handleUpdate(context.Background(), mcpRequest(), UpdateArgs{State: initial, Interval: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 0.05, res.Interval)
	red := res.Update[domain.PortMolecules].(domain.Tree)["red"].(domain.Tree)
	assert.Equal(t, 0, red["count"])

	_, err = s.handleUpdate(context.Background(), mcpRequest(), UpdateArgs{State: initial, Interval: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func mcpRequest() mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "update"
	return req
}
