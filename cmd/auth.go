package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/taskbridge/internal/config"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Google credential",
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Authorize taskbridge with your Google account",
		Long: `Run the interactive Google authorization and store the resulting credential.

A local callback server is started on 127.0.0.1 and the consent page is
opened in a browser. The URL is also printed to stderr for headless use.`,
		Args: cobra.NoArgs,
		RunE: runAuthLogin,
	}
	login.Flags().StringSlice("scopes", nil, "OAuth scopes to request (comma-separated)")
	login.Flags().Int("callback-port", 0, "Port for the OAuth loopback callback (0 picks a free port)")
	login.Flags().Bool("open-browser", true, "Open the consent page in a browser")
	login.Flags().String("keyring-user", "", "Keyring user for keyring storage")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the stored credential",
		Long:  "Show where the credential is stored, when it expires and which scopes it grants. Tokens are never printed.",
		Args:  cobra.NoArgs,
		RunE:  runAuthStatus,
	}
	status.Flags().String("keyring-user", "", "Keyring user for keyring storage")

	cmd.AddCommand(login, status)
	return cmd
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newAuthRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}

	cred, err := rt.manager.AuthorizeInteractively(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Authorization complete. Credential stored in %s\n", rt.store.Location())
	if !cred.HasRefreshToken() {
		fmt.Fprintln(out, "Warning: no refresh token was granted; you will need to authorize again when the access token expires.")
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newAuthRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}

	writeStatus(cmd.Context(), cmd.OutOrStdout(), cfg, rt, time.Now())
	return nil
}

func writeStatus(ctx context.Context, out io.Writer, cfg *config.Config, rt *runtime, now time.Time) {
	fmt.Fprintf(out, "Client secret file: %s\n", cfg.ClientSecretFile)
	if id, err := rt.identity.Load(); err != nil {
		fmt.Fprintf(out, "Client identity:    unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Client identity:    %s\n", id.ClientID)
	}
	fmt.Fprintf(out, "Credential store:   %s\n", rt.store.Location())

	cred, ok := rt.store.Load(ctx)
	if !ok {
		fmt.Fprintln(out, "Status:             not authorized (run \"taskbridge auth login\")")
		return
	}

	state := "valid"
	if expiry := cred.Expiry(); !expiry.IsZero() && !expiry.After(now) {
		state = "access token expired"
		if cred.HasRefreshToken() {
			state += ", will refresh on next use"
		}
	}
	fmt.Fprintf(out, "Status:             %s\n", state)
	if expiry := cred.Expiry(); !expiry.IsZero() {
		fmt.Fprintf(out, "Expires:            %s\n", expiry.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Refresh token:      %t\n", cred.HasRefreshToken())
	if cred.Scope != "" {
		fmt.Fprintf(out, "Scopes:             %s\n", strings.Join(strings.Fields(cred.Scope), ", "))
	}
}

func loadCommandConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
