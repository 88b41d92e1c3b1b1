package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/watchlist-cli/internal/application"
	"github.com/bnema/watchlist-cli/internal/config"
	"github.com/bnema/watchlist-cli/internal/domain"
	"github.com/bnema/watchlist-cli/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errCredentialsDisabled = errors.New("credential store is disabled (catalog.credential_store = \"none\")")

func newCredentialCmd() *cobra.Command {
	credentialCmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored catalog API key",
		Long:  "The catalog API key is read from WL_CATALOG_API_KEY first. Without it, wl looks up the key saved here, in pass(1) or in an owner-only file under the config directory.",
	}

	credentialCmd.AddCommand(newCredentialSetCmd(), newCredentialClearCmd(), newCredentialStatusCmd())
	return credentialCmd
}

func newCredentialSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [api-key]",
		Short: "Save the catalog API key (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := loadCredentials()
			if err != nil {
				return err
			}

			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read api key from stdin: %w", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("api key cannot be empty")
			}

			if err := creds.Put(cmd.Context(), application.CatalogCredentialKey, value); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "catalog api key saved")
			return err
		},
	}
}

func newCredentialClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored catalog API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := loadCredentials()
			if err != nil {
				return err
			}
			if err := creds.Delete(cmd.Context(), application.CatalogCredentialKey); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "catalog api key removed")
			return err
		},
	}
}

func newCredentialStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report where the catalog API key comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New())
			if err != nil {
				return err
			}

			status := "not set"
			switch {
			case cfg.Catalog.APIKey != "":
				status = "environment (" + application.CatalogCredentialEnv + ")"
			case cfg.Catalog.CredentialStore != config.CredentialsNone:
				creds, err := openCredentials(cfg)
				if err != nil {
					return err
				}
				_, err = creds.Get(cmd.Context(), application.CatalogCredentialKey)
				switch {
				case err == nil:
					status = "stored (" + cfg.Catalog.CredentialStore + ")"
				case !errors.Is(err, domain.ErrCredentialNotFound):
					status = "unreadable: " + err.Error()
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "catalog api key: %s\n", status)
			return err
		},
	}
}

func loadCredentials() (ports.CredentialStore, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, err
	}

	creds, err := openCredentials(cfg)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, errCredentialsDisabled
	}

	return creds, nil
}
