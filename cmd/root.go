package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the taskbridge application
var rootCmd = &cobra.Command{
	Use:   "taskbridge",
	Short: "MCP server for Google Tasks",
	Long: `taskbridge exposes Google Tasks to AI assistants over the Model Context
Protocol. It authorizes a single Google account once, keeps the credential
refreshed and transparently repairs expired or revoked authorization.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "taskbridge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(flagConfig, "", "Path to a TOML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().String("client-secret-file", "", "Path to the Google OAuth client secret JSON")
	rootCmd.PersistentFlags().String("credentials-storage", "", "Credential storage backend (file, keyring)")
	rootCmd.PersistentFlags().String("credentials-file", "", "Credential file for file storage")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
