// Command eddy is a terminal source-code editor with compiler-aware
// indexing and an LSP client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddy-editor/eddy/cmd/eddy/commands"
	"github.com/eddy-editor/eddy/elog"
)

var rootCmd = &cobra.Command{
	Use:   "eddy [file...]",
	Short: "eddy - a terminal editor with compiler-aware indexing",
	Long: `eddy is a terminal (and GUI) source-code editor backed by an
append-only undo buffer and a Language Server Protocol client, giving
diagnostics and semantic highlighting without shelling out to a
compiler on every keystroke.

Examples:
  eddy main.go              # open a file for editing
  eddy lsp-status           # show configured language servers
  eddy config show          # print the resolved .eddy.toml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs := false
		if v, err := cmd.Flags().GetBool("json-logs"); err == nil {
			jsonLogs = v
		}
		return elog.Initialize(jsonLogs)
	},
	RunE: commands.Open,
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit structured JSON logs instead of console output")
	rootCmd.AddCommand(commands.LSPStatusCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
}

func main() {
	defer elog.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
