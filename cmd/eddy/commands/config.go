package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddy-editor/eddy/econfig"
)

// ConfigCmd groups configuration-inspection subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect eddy's resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved .eddy.toml for the current project",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err := econfig.Load(projectDir)
		if err != nil {
			return err
		}
		fmt.Printf("project_dir: %s\n", cfg.ProjectDir)
		fmt.Printf("log_theme:   %s\n", cfg.LogTheme)
		fmt.Printf("json_logs:   %v\n", cfg.JSONLogs)
		fmt.Println("servers:")
		for _, s := range cfg.Servers() {
			fmt.Printf("  - %s: %s %v\n", s.Language, s.Command, s.Args)
		}
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}
