package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"m3u-parser/work/handlers"
	"m3u-parser/work/logger"
	"m3u-parser/work/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the playlist HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	api := handlers.NewAPI(cfg)
	defer api.Close()

	router := mux.NewRouter()
	handlers.Routes(router, api)

	// show info
	logger.Info("{main - serveRun} Starting m3u-parser %s", Version)
	logger.Info("{main - serveRun} Server configuration:")
	logger.Info("{main - serveRun}   - Listen Address: %s", cfg.ListenAddr)
	logger.Info("{main - serveRun}   - Workers: %d", cfg.Workers)
	logger.Info("{main - serveRun}   - Request Timeout: %s", cfg.Timeout())
	logger.Info("{main - serveRun}   - Probe Attempts: %d", cfg.MaxAttempts)
	logger.Info("{main - serveRun}   - Probe Cache TTL: %s", cfg.ProbeCacheTTL)
	logger.Info("{main - serveRun}   - Default Source: %s", utils.LogURL(cfg, cfg.DefaultSource))
	logger.Info("{main - serveRun}   - Refresh Schedule: %s", cfg.RefreshCron)
	logger.Info("{main - serveRun}   - Database: %s", cfg.DatabasePath)
	logger.Info("{main - serveRun}   - URL Obfuscation: %v", cfg.ObfuscateUrls)

	if cfg.DefaultSource != "" {
		if err := api.Refresh(ctx); err != nil {
			logger.Error("{main - serveRun} initial load failed: %v", err)
		}
	}

	scheduler, err := startRefresh(ctx, api)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("{main - serveRun} shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// startRefresh schedules re-parsing of the default source. It returns nil
// when refresh_cron or default_source is unset.
func startRefresh(ctx context.Context, api *handlers.API) (*cron.Cron, error) {
	if cfg.RefreshCron == "" || cfg.DefaultSource == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.RefreshCron, func() {
		if err := api.Refresh(ctx); err != nil {
			logger.Error("{main - startRefresh} %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("{main - startRefresh} refreshing %s on %q", utils.LogURL(cfg, cfg.DefaultSource), cfg.RefreshCron)
	return c, nil
}
