package tasks_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/taskbridge/internal/endpoints"
	"github.com/teemow/taskbridge/internal/server"
	"github.com/teemow/taskbridge/internal/tools/common"
)

const reauthorizeDescription = "Run the interactive Google authorization flow again and replace the stored credential. " +
	"Use this when calls keep failing with authentication errors or after changing scopes."

// RegisterTasksTools registers all Tasks tools with the MCP server.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	s.AddTools(Tools(sc)...)
}

// Tools builds the tool set for sc, honoring read-only mode.
func Tools(sc *server.ServerContext) []mcpserver.ServerTool {
	var out []mcpserver.ServerTool
	for _, def := range sc.Dispatcher().Registry().Definitions() {
		if sc.ReadOnly() && !def.ReadOnly {
			continue
		}
		out = append(out, mcpserver.ServerTool{
			Tool:    NewTool(def),
			Handler: common.InstrumentedToolHandler(def.ToolName(), sc, dispatchHandler(sc, def.ToolName())),
		})
	}

	out = append(out, mcpserver.ServerTool{
		Tool: mcp.NewTool(endpoints.ReauthorizeTool,
			mcp.WithDescription(reauthorizeDescription),
		),
		Handler: common.InstrumentedToolHandler(endpoints.ReauthorizeTool, sc,
			dispatchHandler(sc, endpoints.ReauthorizeTool)),
	})
	return out
}

// NewTool builds the MCP tool schema of def.
func NewTool(def endpoints.Definition) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(def.Description),
		mcp.WithReadOnlyHintAnnotation(def.ReadOnly),
		mcp.WithDestructiveHintAnnotation(!def.ReadOnly),
	}

	for _, p := range def.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.Kind {
		case endpoints.KindBool:
			opts = append(opts, mcp.WithBoolean(p.Name, propOpts...))
		case endpoints.KindNumber:
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	if def.UsesBody {
		opts = append(opts, mcp.WithObject(endpoints.BodyParam,
			mcp.Required(),
			mcp.Description(def.BodyDescription),
		))
	}

	return mcp.NewTool(def.ToolName(), opts...)
}

func dispatchHandler(sc *server.ServerContext, name string) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := sc.Dispatcher().Dispatch(ctx, endpoints.Invocation{
			Name:      name,
			Arguments: request.GetArguments(),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}
