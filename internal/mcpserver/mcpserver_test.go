package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fast-ide/symindex/internal/langs/godef"
	"github.com/fast-ide/symindex/internal/types"
	"github.com/fast-ide/symindex/internal/workspace"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	src := "package demo\n\ntype Widget struct{}\n\nfunc (w Widget) Area() int { return 0 }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte(src), 0o644))

	frontend, err := godef.Open(dir)
	require.NoError(t, err)

	host, err := workspace.NewHost(frontend)
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })

	return New(host, []types.CrateID{1}, nil)
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	var handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)
	switch name {
	case "workspace_symbol":
		handler = s.handleWorkspaceSymbol
	case "crate_symbol":
		handler = s.handleCrateSymbol
	case "index_resolve":
		handler = s.handleIndexResolve
	}
	require.NotNil(t, handler, "unknown tool %s", name)

	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	return result
}

func textOf(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, r.Content, 1)
	tc, ok := r.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestWorkspaceSymbolFindsDeclaration(t *testing.T) {
	s := newTestServer(t)
	result := callTool(t, s, "workspace_symbol", workspaceSymbolParams{Query: "widget"})
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Widget")
}

func TestCrateSymbolScopesToOneCrate(t *testing.T) {
	s := newTestServer(t)
	result := callTool(t, s, "crate_symbol", crateSymbolParams{Crate: 1, Query: "widget"})
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Widget")
}

func TestIndexResolveMissSuggestsClosestName(t *testing.T) {
	s := newTestServer(t)
	result := callTool(t, s, "index_resolve", indexResolveParams{Crate: 1, Name: "Widgit"})
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Widget")
}

func TestIndexResolveInvalidParamsReturnsErrorResult(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleIndexResolve(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`not-json`)},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
