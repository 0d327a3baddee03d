package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lkirchmair/bedcast/api/forecast"
	"github.com/lkirchmair/bedcast/config"
	"github.com/lkirchmair/bedcast/infra/logger"
	"github.com/lkirchmair/bedcast/infra/metrics"
	"github.com/lkirchmair/bedcast/infra/mqtt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the forecast API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("serve")
	model, _, err := buildModel(cfg, log)
	if err != nil {
		return err
	}

	var feed forecast.Feed
	if cfg.Feed.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.Feed)
		if err != nil {
			return fmt.Errorf("mqtt feed: %w", err)
		}
		defer pub.Close()
		feed = pub
	}

	handler := forecast.NewHandler(model, forecast.Defaults{
		ForecastDays:   cfg.General.ForecastDays,
		Replicas:       cfg.Model.MonteCarloIterations,
		Bounds:         cfg.Model.CalibrationBounds(),
		MaxGenerations: cfg.Model.MaxGenerations,
		UseCurrent:     cfg.Model.UseCurrentAsSeed,
	}, feed, log)
	mux := http.NewServeMux()
	handler.Register(mux)
	srv := &http.Server{Addr: cfg.API.Address, Handler: mux}

	g, gctx := errgroup.WithContext(ctx)
	if addr := prometheusAddress(cfg.Metrics); addr != "" {
		g.Go(func() error {
			return metrics.StartPromServer(gctx, addr)
		})
	}
	g.Go(func() error {
		log.Infof("forecast API listening on %s", cfg.API.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
