package main

import (
	"fmt"
	"os"

	"github.com/Dhoini/course-marketplace/config"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "course-marketplace",
		Short:   "Course marketplace API: catalog, checkout and enrollment",
		Version: Version,
		// Без подкоманды запускается HTTP сервер
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, false)
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap загружает конфигурацию и создает логгер нужного уровня
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	if os.Getenv("DEBUG") == "true" {
		level = logger.DEBUG
	}
	return cfg, logger.New(level), nil
}
