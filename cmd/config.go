package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage timecard configuration file values.",
	Long: `Create, edit, and display the timecard configuration file.

The configuration stores application-wide values:
- database.path
- web.listen
- export.format`,
	Example: `
  # Create default config in $HOME/.timecard.yaml
  timecard config create

  # Show active config and source file
  timecard config show

  # Open active config in editor (creates example if missing)
  timecard config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
