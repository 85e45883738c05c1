package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/taskbridge/internal/endpoints"
	"github.com/teemow/taskbridge/internal/server"
)

func newToolsCmd() *cobra.Command {
	var (
		outputFile string
		readOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the MCP tool reference",
		Long: `Print a markdown reference of the MCP tools taskbridge registers.
The table is generated from the registered tool definitions, so it always
matches what an MCP client sees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			markdown, err := toolsReference(readOnly)
			if err != nil {
				return err
			}
			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), markdown)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "List only the tools available in read-only mode")
	return cmd
}

// toolsReference registers the tools on a throwaway server without
// credentials and renders what it lists.
func toolsReference(readOnly bool) (string, error) {
	serverContext, err := server.NewServerContext(context.Background(), server.Options{
		Dispatcher: endpoints.NewDispatcher(endpoints.DispatcherConfig{}),
		ReadOnly:   readOnly,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	serverTools := newMCPServer(serverContext).ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return generateToolsMarkdown(tools), nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools available when running taskbridge as an MCP server. ")
	sb.WriteString("Operations that take a `body` expect the Google Tasks resource as a JSON object.\n\n")
	sb.WriteString("| Tool | Required parameters | Body | Read-only | Description |\n")
	sb.WriteString("|---|---|---|---|---|\n")

	for _, tool := range tools {
		var required []string
		for _, name := range tool.InputSchema.Required {
			if name != endpoints.BodyParam {
				required = append(required, "`"+name+"`")
			}
		}
		requiredStr := "none"
		if len(required) > 0 {
			requiredStr = strings.Join(required, ", ")
		}

		_, hasBody := tool.InputSchema.Properties[endpoints.BodyParam]
		readOnly := tool.Annotations.ReadOnlyHint != nil && *tool.Annotations.ReadOnlyHint

		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n",
			tool.Name, requiredStr, yesNo(hasBody), yesNo(readOnly), escapeCell(tool.Description))
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
