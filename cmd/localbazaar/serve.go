package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localbazaar/internal/http/handlers"
	applog "localbazaar/internal/log"
	"localbazaar/internal/repos"

	"github.com/spf13/cobra"
)

var seedDemo bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&seedDemo, "seed", false, "Insert demo users and listings into an empty database")
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	if seedDemo {
		seeded, err := repos.SeedDemo(ctx, db)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if seeded {
			log.Printf("[seed] demo data inserted")
		}
	}

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	deps := handlers.NewDeps(db, verifier)
	app := handlers.NewApp(cfg, deps)

	if cfg.ReconcileSchedule != "" {
		c, err := deps.Reconciler.Schedule(cfg.ReconcileSchedule, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("reconcile schedule %q: %w", cfg.ReconcileSchedule, err)
		}
		defer c.Stop()
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		applog.Info(nil, "server.shutdown", map[string]any{"signal": sig.String()})
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}
