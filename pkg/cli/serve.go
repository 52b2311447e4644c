package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	server "github.com/rmts-health/rmts/pkg/controller/http"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg        config
		addr       string
		corsOrigin string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Aliases:     []string{"a"},
			Usage:       "Listen address",
			Value:       ":5000",
			Sources:     cli.EnvVars("RMTS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "cors-origin",
			Usage:       "Frontend origin allowed to call the API with credentials. Empty disables CORS",
			Value:       "http://localhost:3000",
			Sources:     cli.EnvVars("RMTS_CORS_ORIGIN"),
			Destination: &corsOrigin,
		},
	}
	flags = append(flags, allFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the report HTTP API",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, logger := cfg.setupLogger(ctx)

			uc, cleanup, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.New(uc, server.WithCORSOrigin(corsOrigin)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting HTTP server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", addr))
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down HTTP server")
			}
			return nil
		},
	}
}
