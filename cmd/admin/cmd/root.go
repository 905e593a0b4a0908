package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"fleetreport/internal/app/server"
	"fleetreport/internal/app/server/config"
	"fleetreport/internal/utils/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	envFile string
	quiet   bool
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Fleet report administration",
	Long: `admin runs syncs, issues share links, manages principals and applies
database migrations using the same configuration as the server.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fail(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	var err error
	cfg, err = config.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if quiet {
		log = logger.Discard()
	} else {
		log = logger.New(cfg.Env)
	}
	return nil
}

// openApp собирает сервисы. Закрывает приложение вызывающий.
func openApp(ctx context.Context) (*server.App, error) {
	app, err := server.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise: %w", err)
	}
	return app, nil
}

func closeApp(w io.Writer, app *server.App) {
	if err := app.Close(); err != nil {
		fail(w, "close: %v\n", err)
	}
}

func ok(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, format, args...)
}

func warn(w io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintf(w, format, args...)
}

func fail(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, format, args...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load instead of .env")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "discard log output")

	rootCmd.AddCommand(syncCmd, shareCmd, userCmd, migrateCmd)
}
