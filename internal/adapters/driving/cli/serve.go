package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/rest"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

var (
	serveAddr    string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search HTTP server",
	Long: `Serves the Matrix client-server search endpoint:

  POST /_matrix/client/v3/search?next_batch=...
  GET  /health

Search settings are reloaded when the configuration file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8008", "listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "allowed CORS origins (default all)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if configWatcher != nil && settingsApplier != nil && settingsService != nil {
		go func() {
			if err := configWatcher(ctx, reloadSettings); err != nil {
				logger.Warn("config watch stopped: %v", err)
			}
		}()
	}

	var opts []rest.Option
	if len(serveOrigins) > 0 {
		opts = append(opts, rest.WithAllowedOrigins(serveOrigins...))
	}

	cmd.Printf("Search server listening on http://%s\n", serveAddr)
	return rest.NewServer(searchService, opts...).Run(ctx, serveAddr)
}

func reloadSettings() {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reloading settings: %v", err)
		return
	}
	settingsApplier.ApplySettings(settings.Search)
	logger.Info("search settings reloaded")
}
