package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/eddy-editor/eddy/econfig"
)

// LSPStatusCmd lists the language servers the current project's
// .eddy.toml configures, without starting any of them.
var LSPStatusCmd = &cobra.Command{
	Use:   "lsp-status",
	Short: "Show configured language servers for this project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := econfig.Load(projectDir)
		if err != nil {
			return err
		}

		servers := cfg.Servers()
		if len(servers) == 0 {
			pterm.Info.Println("no language servers configured")
			return nil
		}

		table := pterm.TableData{{"Language", "Command"}}
		for _, s := range servers {
			cmdLine := s.Command
			for _, a := range s.Args {
				cmdLine += " " + a
			}
			table = append(table, []string{s.Language, cmdLine})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	},
}
