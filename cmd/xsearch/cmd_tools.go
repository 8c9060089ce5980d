package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rhuss/xsearch/pkg/mcpserver"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the MCP tool definitions",
	Long:  `Print the name, description, annotations and input schema of every tool as JSON.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(mcpserver.Tools())
	},
}
