package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timecard/config"
)

var (
	cfgFile   string
	dbPath    string
	actorName string
	actorRole string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timecard",
	Short: "Track, review, and export daily timesheet entries against project codes.",
	Long: `timecard is a role-based timesheet tracker backed by a local SQLite database.

Contributors submit, modify, delete, and resubmit daily time entries against
project codes; managers approve or reject pending entries with comments and
manage users and project codes.

The acting identity is passed with --as and --role. This resolves a stored
user by username and role only; no credential is checked.`,
	Example: `
  # Create configuration file
  timecard config create

  # Bootstrap the first manager, then a contributor and a project code
  timecard user add frank manager
  timecard --as frank --role manager user add alice user
  timecard --as frank --role manager project add ENG "Engineering"

  # Submit and review an entry
  timecard --as alice --role user entry add ENG 2024-01-05 8.0
  timecard --as frank --role manager review list
  timecard --as frank --role manager review reject 1 --comment "missing approval"
  timecard --as alice --role user entry resubmit 1 6.0

  # Export all entries to Excel
  timecard --as frank --role manager export --mode raw --output ./timesheets.xlsx

  # Start the local web dashboard
  timecard serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.timecard.yaml, then ./.timecard.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to local SQLite database (default: database.path from config)")
	rootCmd.PersistentFlags().StringVar(&actorName, "as", "", "Acting username")
	rootCmd.PersistentFlags().StringVar(&actorRole, "role", "", "Acting role: user|manager")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".timecard" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".timecard")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// Defaults still apply; "config create" writes a starter file.
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: timecard config create")
	}
}
