package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chatlab/corpus/internal/dashboard"
)

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the debug/analytics dashboard over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), host, port)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "bind host (default: config value)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (default: config value)")
	return cmd
}

func runServe(parentCtx context.Context, host string, port int) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if host != "" {
		rt.cfg.Dashboard.Host = host
	}
	if port != 0 {
		rt.cfg.Dashboard.Port = port
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := dashboard.New(rt.api, logger)
	router.Use(handler.RequestLogger())
	handler.RegisterRoutes(router)

	addr := rt.cfg.GetAddress()
	srv := &http.Server{Addr: addr, Handler: router}

	ctx, cancel := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("dashboard listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutting down dashboard")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}
