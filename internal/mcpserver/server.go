// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes resmerge capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/erraggy/resmerge"
	"github.com/erraggy/resmerge/resource"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `resmerge MCP server: merges layered resource trees into one output folder, keeps it up to date incrementally and inspects merge snapshots.

Resource sets are listed lowest priority first. Each set has a name and one or more source roots laid out as <root>/<folder>[-<qualifiers>]/<file>.

Configuration: defaults are configurable via RESMERGE_* environment variables set in your MCP client config.

Key settings:
- RESMERGE_INCREMENTAL (default: true): resume from the snapshot when it matches the sets
- RESMERGE_CLEAN (default: true): empty the output folder before a full merge
- RESMERGE_PARALLEL_LOAD (default: GOMAXPROCS): sets loaded concurrently
- RESMERGE_MERGE_TIMEOUT (default: 5m): upper bound for one merge or update
- RESMERGE_VALUES_FILE_NAME (default: values.xml): merged value document name
- RESMERGE_SNAPSHOT_NAME (default: merger.yaml): snapshot file name in the blob folder
- RESMERGE_INSPECT_LIMIT (default: 100): default result limit for inspect
- RESMERGE_MAX_LIMIT (default: 1000): hard cap for inspect limits`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "resmerge", Version: resmerge.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge",
		Description: "Merge ordered resource sets into an output folder. Sets are listed lowest priority first; a later set overrides resources with the same type, qualifiers and name. When blob is given the merge state is saved there, and later calls resume incrementally and only rewrite outputs whose winner changed. Returns the written and deleted output paths.",
	}, handleMerge)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update",
		Description: "Apply explicit file change events (NEW, CHANGED, REMOVED) on top of the snapshot in blob and write the minimal set of output changes. The sets must match the ones the snapshot was written with. Use merge instead when you do not know which files changed.",
	}, handleUpdate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect",
		Description: "List the winning resource for every key stored in a merge snapshot: key, kind (file or value), contributing set, source file and how many lower-priority instances it shadows. Filter by key glob (e.g. string/*), type or set. Use offset/limit to paginate; the default limit is configurable via RESMERGE_INSPECT_LIMIT.",
	}, handleInspect)
}

// toolLogger routes engine logs to the process default slog logger, which
// writes to stderr and so stays off the stdio transport.
func toolLogger(tool string) resource.Logger {
	return resource.NewSlogAdapter(slog.Default()).With("tool", tool)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.InspectLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.InspectLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
