package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursetrack/backend/catalog"
	"coursetrack/backend/config"
	"coursetrack/backend/controllers"
	"coursetrack/backend/routes"
	"coursetrack/backend/storage"
	"coursetrack/backend/utils"

	"github.com/spf13/cobra"
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (overrides SERVER_PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Create the storage table on start for SQL drivers")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.ServerPort = servePort
	}

	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	backend, err := storage.Open(cfg, serveMigrate)
	if err != nil {
		return err
	}
	defer backend.Close()

	app := routes.NewApp(&controllers.Deps{
		Cfg:     cfg,
		Storage: backend.Storage,
		Catalog: cat,
		Logger:  logger,
	}, backend.Ping)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "storage", backend.Driver, "courses", cat.Len())
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}
