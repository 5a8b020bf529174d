package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/internal/server"
	"github.com/matzehuels/stacktree/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the aggregation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			src, err := c.openSource(ctx, cfg, runner.Cache)
			if err != nil {
				return err
			}
			defer src.Close()

			logger := loggerFromContext(ctx)
			hooks := observability.NewLogHooks(logger)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			defer observability.Reset()

			backend := cfg.Cache.Backend
			if noCache {
				backend = "none"
			}
			printKeyValue("Address", addr)
			printKeyValue("Source", src.Name())
			printKeyValue("Cache", backend)

			srv := server.New(server.Config{
				Addr:    addr,
				Source:  src,
				Runner:  runner,
				Logger:  logger,
				Timeout: timeout,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-request timeout (0 disables)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
