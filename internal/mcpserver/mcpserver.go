// Package mcpserver exposes internal/workspace's Host over the Model
// Context Protocol: three tools, workspace_symbol, crate_symbol and
// index_resolve, each a thin caller of the Host facade with no index
// logic of its own.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fast-ide/symindex/internal/query"
	"github.com/fast-ide/symindex/internal/types"
	"github.com/fast-ide/symindex/internal/workspace"
)

// Server wraps a workspace.Host with the fixed set of crates and
// library roots this process was started against.
type Server struct {
	host      *workspace.Host
	crates    []types.CrateID
	libraries map[types.SourceRootID]string

	server *mcp.Server
}

// New builds an mcp.Server wired to host, scoped to crates and
// libraries (a library root id -> directory map, as built from
// config.Config.Libraries by the caller).
func New(host *workspace.Host, crates []types.CrateID, libraries map[types.SourceRootID]string) *Server {
	s := &Server{host: host, crates: crates, libraries: libraries}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "symindex-mcp-server",
		Version: "0.1.0",
	}, nil)

	s.server.AddTool(&mcp.Tool{
		Name:        "workspace_symbol",
		Description: "Fuzzy subsequence search for a declaration name across every crate (and, if libs is true, every library root) in the workspace.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":      {Type: "string", Description: "Name fragment to search for"},
				"exact":      {Type: "boolean", Description: "Require an exact name match instead of fuzzy subsequence"},
				"only_types": {Type: "boolean", Description: "Restrict to type-introducing declarations (struct/enum/union/trait/type alias)"},
				"libs":       {Type: "boolean", Description: "Also search library (dependency) source roots"},
				"limit":      {Type: "integer", Description: "Maximum number of results, 0 for unlimited"},
			},
			Required: []string{"query"},
		},
	}, s.handleWorkspaceSymbol)

	s.server.AddTool(&mcp.Tool{
		Name:        "crate_symbol",
		Description: "Fuzzy subsequence search for a declaration name within a single crate.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"crate":      {Type: "integer", Description: "Crate id to search within"},
				"query":      {Type: "string", Description: "Name fragment to search for"},
				"exact":      {Type: "boolean", Description: "Require an exact name match instead of fuzzy subsequence"},
				"only_types": {Type: "boolean", Description: "Restrict to type-introducing declarations"},
				"limit":      {Type: "integer", Description: "Maximum number of results, 0 for unlimited"},
			},
			Required: []string{"crate", "query"},
		},
	}, s.handleCrateSymbol)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_resolve",
		Description: "Resolve a declaration name to exactly one declaration within a crate. On a miss, offers Jaro-Winkler \"did you mean\" suggestions from that crate's known names.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"crate": {Type: "integer", Description: "Crate id to resolve within"},
				"name":  {Type: "string", Description: "Exact declaration name to resolve"},
			},
			Required: []string{"crate", "name"},
		},
	}, s.handleIndexResolve)

	return s
}

// Start runs the server over stdio until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

type workspaceSymbolParams struct {
	Query     string `json:"query"`
	Exact     bool   `json:"exact"`
	OnlyTypes bool   `json:"only_types"`
	Libs      bool   `json:"libs"`
	Limit     int    `json:"limit"`
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p workspaceSymbolParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("workspace_symbol: invalid parameters: %v", err)
	}

	q := buildQuery(p.Query, p.Exact, p.OnlyTypes, p.Libs, p.Limit)
	results, err := s.host.WorldSymbols(ctx, s.crates, s.libraries, q)
	if err != nil {
		return errorResult("workspace_symbol: %v", err)
	}
	return jsonResult(results)
}

type crateSymbolParams struct {
	Crate     types.CrateID `json:"crate"`
	Query     string        `json:"query"`
	Exact     bool          `json:"exact"`
	OnlyTypes bool          `json:"only_types"`
	Limit     int           `json:"limit"`
}

func (s *Server) handleCrateSymbol(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p crateSymbolParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("crate_symbol: invalid parameters: %v", err)
	}

	q := buildQuery(p.Query, p.Exact, p.OnlyTypes, false, p.Limit)
	results, err := s.host.CrateSymbols(ctx, p.Crate, q)
	if err != nil {
		return errorResult("crate_symbol: %v", err)
	}
	return jsonResult(results)
}

type indexResolveParams struct {
	Crate types.CrateID `json:"crate"`
	Name  string        `json:"name"`
}

func (s *Server) handleIndexResolve(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p indexResolveParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("index_resolve: invalid parameters: %v", err)
	}

	result, err := s.host.ResolveInCrate(ctx, p.Crate, p.Name)
	if err != nil {
		return errorResult("index_resolve: %v", err)
	}
	return jsonResult(result)
}

func buildQuery(name string, exact, onlyTypes, libs bool, limit int) query.Query {
	q := query.New(name)
	if exact {
		q = q.Exact()
	}
	if onlyTypes {
		q = q.OnlyTypes()
	}
	if libs {
		q = q.Libs()
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: marshaling response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

func errorResult(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}, nil
}
