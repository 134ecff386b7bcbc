package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/database"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/seed"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo restaurants, menus and accounts into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return seedDefault(cmd.Context(), db)
		},
	}
}

// seedDefault applies the embedded catalog; an already seeded database is not an error
func seedDefault(ctx context.Context, db *gorm.DB) error {
	catalog, err := seed.Default()
	if err != nil {
		return err
	}
	err = seed.Apply(ctx, db, catalog, log.StandardLogger())
	if errors.Is(err, seed.ErrAlreadySeeded) {
		log.Info("Database already seeded with initial data")
		return nil
	}
	return err
}

func purgeTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-tokens",
		Short: "Delete expired OAuth2 access tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDatabase()
			if err != nil {
				return err
			}
			purged, err := auth.NewGormTokenStore(db).PurgeExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired tokens\n", purged)
			return nil
		},
	}
}

func createClientCommand() *cobra.Command {
	var (
		owner  string
		name   string
		domain string
		scopes string
	)

	cmd := &cobra.Command{
		Use:   "create-client",
		Short: "Register an OAuth2 client-credentials integration for a back-office user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			ctx := cmd.Context()
			user, err := services.NewUserService(db).GetUserByUsername(ctx, owner)
			if err != nil {
				return fmt.Errorf("owner %q: %w", owner, err)
			}
			registered, err := services.NewClientService(db).CreateClient(ctx, user.ID, services.ClientInput{
				Name:   name,
				Domain: domain,
				Scopes: scopes,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "OAuth client created for %s (%s)\n", user.Username, user.Role)
			fmt.Fprintf(out, "Client ID: %s\n", registered.Client.ID)
			fmt.Fprintf(out, "Client Secret: %s\n", registered.Secret)
			fmt.Fprintln(out, "\nRequest a token with:")
			fmt.Fprintf(out, "curl -X POST http://%s:%d/api/v1/oauth/token \\\n", cfg.Host, cfg.Port)
			fmt.Fprintln(out, "  -d 'grant_type=client_credentials' \\")
			fmt.Fprintf(out, "  -d 'client_id=%s' \\\n", registered.Client.ID)
			fmt.Fprintf(out, "  -d 'client_secret=%s'\n", registered.Secret)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "danger", "username of the back-office user that owns the client")
	cmd.Flags().StringVar(&name, "name", "Development client", "client display name")
	cmd.Flags().StringVar(&domain, "domain", "http://localhost", "client domain")
	cmd.Flags().StringVar(&scopes, "scopes", "read write", "space separated scopes")
	return cmd
}
