package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teemow/taskbridge/internal/config"
)

const flagConfig = "config"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"client-secret-file":  "client_secret_file",
	"credentials-storage": "credentials.storage",
	"credentials-file":    "credentials.file",
	"keyring-user":        "credentials.keyring_user",
	"scopes":              "scopes",
	"callback-port":       "auth.callback_port",
	"open-browser":        "auth.open_browser",
	"transport":           "server.transport",
	"http-addr":           "server.http_addr",
	"read-only":           "server.read_only",
	"log-level":           "log.level",
	"log-format":          "log.format",
	"metrics-enabled":     "metrics.enabled",
	"metrics-addr":        "metrics.addr",
}

// loadConfig loads configuration for cmd. Only flags the user set take part,
// so unset flags never mask file or environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString(flagConfig)
	return config.Load(config.Options{
		File:      configFile,
		Overrides: flagOverrides(cmd.Flags()),
	})
}

func flagOverrides(flags *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			overrides[key] = slice.GetSlice()
			return
		}
		overrides[key] = f.Value.String()
	})
	return overrides
}
