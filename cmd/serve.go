package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/pathwise/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation and grading gateway over HTTP",
	Long: "Run the gateway as a JSON HTTP service so several terminals can share one " +
		"set of provider credentials. Point clients at it with --gateway-url.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := rt.cfg
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		// The service owns the provider; it never forwards to another gateway.
		cfg.Gateway.URL = ""

		gw, err := rt.backend(ctx)
		if err != nil {
			return fmt.Errorf("build gateway: %w", err)
		}

		srv := server.New(server.Config{
			Addr:        cfg.Server.Addr,
			Gateway:     gw,
			Log:         rt.log,
			CallTimeout: cfg.Gateway.Timeout,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PATHWISE_ADDR)")
}
