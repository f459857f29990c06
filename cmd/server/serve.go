package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Dhoini/course-marketplace/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the enrollment consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, migrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Graceful shutdown по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, app.Options{AutoMigrate: migrate}, log)
	if err != nil {
		log.Errorw("Failed to start application", "error", err)
		return err
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		log.Errorw("Application stopped with error", "error", err)
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}
