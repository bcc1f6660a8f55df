package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"localbazaar/internal/config"
	"localbazaar/internal/identity"
	applog "localbazaar/internal/log"
	"localbazaar/internal/repos"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "localbazaar",
	Short: "LocalBazaar campus marketplace API",
	Long: `LocalBazaar serves the campus marketplace REST API: listings, buyer
inquiries, moderation reports and the admin overview.

Configuration comes from the environment (or a .env file).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, reconcileCmd, grantAdminCmd)
}

// setup loads config, configures logging and opens the store.
func setup() (config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	if err := applog.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return cfg, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, db, nil
}

func newVerifier(ctx context.Context, ac config.AuthConfig) (identity.Verifier, error) {
	switch ac.Mode {
	case "firebase":
		return identity.NewFirebaseVerifier(ctx, ac.FirebaseProjectID, ac.FirebaseCredentialsPath)
	case "jwt":
		return identity.NewJWTVerifier(ac.JWTSigningKey, ac.JWTIssuer)
	}
	return nil, errors.New("AUTH_MODE must be firebase or jwt, got " + ac.Mode)
}
