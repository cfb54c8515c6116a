package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gopherview/internal/gateway"
	"gopherview/internal/gopher"
)

var serveFlags = struct {
	Listen string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP gateway to gopherspace",
	Long: `serve exposes menu, item and search fetches over HTTP so that a
browser front end (or another gopherview started with --gateway) can
reach gopher servers.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flags.ConfigFile)
		if err != nil {
			return err
		}
		if serveFlags.Listen != "" {
			cfg.Gateway.Listen = serveFlags.Listen
		}

		client, err := gopher.NewClient(gopherOptions(cfg))
		if err != nil {
			return err
		}
		srv := gateway.New(gateway.Config{
			Listen:         cfg.Gateway.Listen,
			AllowedOrigins: cfg.Gateway.AllowedOrigins,
		}, client)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gCtx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			log.Printf("Shutting down gateway...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Gateway shutdown error: %v", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		log.Printf("Gateway stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.Listen, "listen", "l", "", "listen address, overrides [gateway] listen")
}
