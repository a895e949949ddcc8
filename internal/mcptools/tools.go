// Package mcptools exposes the chunking pipeline as MCP tools
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// NewServer creates an MCP server with every chunkviz tool registered
func NewServer(svc pipeline.Service, version string) *server.MCPServer {
	mcpServer := server.NewMCPServer("chunkviz", version)
	RegisterTools(mcpServer, svc)
	return mcpServer
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(mcpServer *server.MCPServer, svc pipeline.Service) {
	mcpServer.AddTool(computeChunksTool(), computeChunksHandler(svc))
	mcpServer.AddTool(chunkStatisticsTool(), chunkStatisticsHandler(svc))
	mcpServer.AddTool(listSeparatorsTool(), listSeparatorsHandler(svc))
}

func chunkingOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to chunk"),
		),
		mcp.WithNumber("chunk_size",
			mcp.Description("Maximum chunk length in characters (default: server configuration)"),
		),
		mcp.WithNumber("chunk_overlap",
			mcp.Description("Characters shared by consecutive chunks, must be < chunk_size"),
		),
		mcp.WithString("splitter",
			mcp.Description("Splitting strategy"),
			mcp.Enum(string(types.SplitterFixed), string(types.SplitterRecursive)),
		),
		mcp.WithString("content_type",
			mcp.Description("Content type selecting the separator set for the recursive splitter (e.g. text, markdown, go)"),
		),
	}
}

func computeChunksTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Split text into chunks and return the chunks, their offsets in the original text, highlight markup and statistics."),
	}, chunkingOptions()...)
	return mcp.NewTool("compute_chunks", opts...)
}

func chunkStatisticsTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Split text into chunks and return only the chunk size statistics."),
	}, chunkingOptions()...)
	return mcp.NewTool("chunk_statistics", opts...)
}

func listSeparatorsTool() mcp.Tool {
	return mcp.NewTool("list_separators",
		mcp.WithDescription("List the ordered separators the recursive splitter uses for a content type, or all content types when none is given."),
		mcp.WithString("content_type",
			mcp.Description("Content type to list separators for"),
		),
	)
}

func computeChunksHandler(svc pipeline.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, errResult := parseComputeRequest(request)
		if errResult != nil {
			return errResult, nil
		}

		res, err := svc.Compute(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute chunks: %v", err)), nil
		}
		return jsonResult(res)
	}
}

func chunkStatisticsHandler(svc pipeline.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, errResult := parseComputeRequest(request)
		if errResult != nil {
			return errResult, nil
		}

		res, err := svc.Compute(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute chunks: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"params":                  res.Params,
			"statistics":              res.Statistics,
			"boundary_mismatch_count": res.Highlight.BoundaryMismatchCount,
			"truncated":               res.Truncated,
		})
	}
}

func listSeparatorsHandler(svc pipeline.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		ct, _ := args["content_type"].(string)
		if ct == "" {
			all := make(map[types.ContentType][]string)
			for _, t := range svc.ContentTypes() {
				seps, err := svc.Separators(t)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				all[t] = seps
			}
			return jsonResult(all)
		}

		seps, err := svc.Separators(types.ContentType(ct))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{
			"content_type": ct,
			"separators":   seps,
		})
	}
}

// parseComputeRequest reads chunking arguments. Numbers arrive as float64 from JSON.
func parseComputeRequest(request mcp.CallToolRequest) (types.ComputeRequest, *mcp.CallToolResult) {
	args := request.GetArguments()

	text, ok := args["text"].(string)
	if !ok {
		return types.ComputeRequest{}, mcp.NewToolResultError("text parameter is required")
	}

	req := types.ComputeRequest{Text: text}
	if v, ok := args["chunk_size"].(float64); ok {
		req.Params.ChunkSize = int(v)
	}
	if v, ok := args["chunk_overlap"].(float64); ok {
		req.Params.ChunkOverlap = int(v)
	}
	if v, ok := args["splitter"].(string); ok {
		req.Params.Splitter = types.SplitterKind(v)
	}
	if v, ok := args["content_type"].(string); ok {
		req.Params.ContentType = types.ContentType(v)
	}
	return req, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
