package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	obsprom "github.com/matzehuels/archlayout/pkg/observability/prometheus"
	"github.com/matzehuels/archlayout/pkg/server"
)

// serveCommand creates the serve command running the layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		docsDir string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints:
  POST /api/v1/layout             lay out the posted document
  GET  /api/v1/documents/{path}   lay out a document below --documents
  GET  /healthz                   health check
  GET  /metrics                   Prometheus metrics

The address and timeouts default to the [server] section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, docsDir, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().StringVar(&docsDir, "documents", "", "directory of stored documents to serve")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, docsDir string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obsprom.New(reg).Register()

	opts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithMetrics(reg),
		server.WithDirection(c.Config.Direction),
	}
	if docsDir != "" {
		opts = append(opts, server.WithDocuments(docsDir))
	}
	srv := server.New(runner, opts...)

	printInfo("Serving layouts on %s", StyleHighlight.Render(addr))
	printDetail("Cache: %s", c.cacheLocation())

	cfg := c.Config.Server
	start := time.Now()
	err = srv.ListenAndServe(ctx, addr, cfg.ReadTimeout, cfg.WriteTimeout)
	c.Logger.Info("server stopped", "uptime", time.Since(start).Round(time.Second))
	return err
}
