package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examiz/internal/api"
	"github.com/abhisek/examiz/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := openServices(cmd, true, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := api.New(svc.authoring, svc.sessions, svc.reviewer, api.Options{
			CORSOrigins:     cfg.CORSOrigins,
			CORSCredentials: cfg.CORSCredentials,
			RequestTimeout:  cfg.RequestTimeout,
			Logger:          logger,
		})

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(ctx, cfg.HTTPAddr)
		})
		if cfg.ExpirySweep > 0 {
			g.Go(func() error {
				svc.sessions.Lifecycle().RunExpiry(ctx, cfg.ExpirySweep)
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMIZ_HTTP_ADDR)")
}
