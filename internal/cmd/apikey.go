package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskplan/internal/apikey"
)

func newAPIKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys for the HTTP server",
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}
	cmd.AddCommand(newAPIKeyGenerateCommand())
	return cmd
}

func newAPIKeyGenerateCommand() *cobra.Command {
	var (
		owner  string
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new API key and its config entry",
		Long: `Generate a random API key. The secret is printed once; only its bcrypt
hash and lookup prefix go into the config file under auth.keys.

Example:
  taskplan apikey generate --owner alice --scope read --scope write`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range scopes {
				if s != apikey.ScopeRead && s != apikey.ScopeWrite {
					return fmt.Errorf("unknown scope %q (supported: %s, %s)", s, apikey.ScopeRead, apikey.ScopeWrite)
				}
			}

			secret, err := apikey.Generate()
			if err != nil {
				return err
			}
			hash, err := apikey.HashSecret(secret)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API key (shown once): %s\n\n", secret)
			fmt.Fprintln(out, "Add to the auth.keys list in your config:")
			fmt.Fprintf(out, "  - owner: %s\n", owner)
			fmt.Fprintf(out, "    prefix: %s\n", apikey.LookupPrefix(secret))
			fmt.Fprintf(out, "    hash: %q\n", hash)
			fmt.Fprintf(out, "    scopes: [%s]\n", strings.Join(scopes, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner the key authenticates as")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{apikey.ScopeRead, apikey.ScopeWrite}, "scopes granted to the key")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
