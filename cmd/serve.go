package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/splitsave/internal/config"
	"github.com/kiesman99/splitsave/internal/journal"
	"github.com/kiesman99/splitsave/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server accepting image uploads",
	Long: `Start an HTTP server that saves uploaded images below a root directory.

Images that are too large for the requested format are split into tiles.
Split and encode settings are reloaded when the config file changes.

Examples:
  # Start server on default port 8080
  splitsave serve --root /var/lib/splitsave

  # Start server with custom bind address
  splitsave serve --bind 0.0.0.0 --port 8080

  # Upload an image
  curl --data-binary @diagram.png 'http://localhost:8080/api/v1/images?name=diagram.webp'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().String("root", ".", "directory uploaded images are saved to")
	serveCmd.Flags().Int64("max-upload", 512<<20, "largest accepted upload in bytes")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.root", serveCmd.Flags().Lookup("root"))
	viper.BindPFlag("server.max-upload", serveCmd.Flags().Lookup("max-upload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.Server.Port)

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.Server.Root, 0o755); err != nil {
		return fmt.Errorf("creating root directory: %v", err)
	}

	// Create server implementation
	apiServer := server.NewServer(version, cfg, fs)

	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		apiServer.SetJournal(j)
	}

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				log.Printf("Ignoring invalid config %s: %v", e.Name, err)
				return
			}
			apiServer.SetConfig(cfg)
			log.Printf("Reloaded config from %s", e.Name)
		})
		viper.WatchConfig()
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, cfg.Server.Timeout),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting splitsave server on %s\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Saving images to %s\n", cfg.Server.Root)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/api/v1/health\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Upload endpoint: http://%s/api/v1/images?name=FILE\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
