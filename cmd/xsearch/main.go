// Command xsearch runs an MCP server that searches X (Twitter) through the
// xAI Responses API.
//
// Configuration is read from a YAML file, a .env file and XSEARCH_*
// environment variables. The xAI API key is read from XAI_API_KEY (or the
// variable named by xai.api_key_env) on every tool call.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "xsearch",
	Short: "MCP server for searching X through the xAI API",
	Long: `xsearch exposes three MCP tools backed by xAI's x_search:

  search_posts     search posts by query, date window and language
  get_user_posts   recent posts of one account
  get_trending     current trending topics, globally or by region

By default the server speaks MCP over stdio. Use --transport http to serve
the streamable HTTP transport on /mcp together with /healthz and /metrics.

Examples:
  XAI_API_KEY=xai-... xsearch
  xsearch --transport http --port 9090
  xsearch tools
  xsearch config show`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: discovered config.yaml)")
	rootCmd.Flags().String("transport", "", "MCP transport: stdio or http (overrides config)")
	rootCmd.Flags().IntP("port", "p", 0, "HTTP listen port (overrides config)")
}
