package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/pkg/buildinfo"
	"github.com/vendaflow/venda-cli/pkg/db"
	"github.com/vendaflow/venda-cli/pkg/logging"
)

// Metrics command flags.
var metricsListenAddr string

// NewMetricsCommand creates the metrics command. It runs a small HTTP sidecar
// exposing Prometheus metrics (process, Go runtime, and database pool stats)
// and the build info endpoint. Mostly used on shared boxes where a team runs
// venda against one database and wants it on a dashboard.
func NewMetricsCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve Prometheus metrics",
		Long: `Serve Prometheus metrics over HTTP.

Endpoints:
  /metrics   Prometheus exposition
  /version   build info JSON

Examples:
  venda metrics --listen :9104`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			if cfg.Database.IsConfigured() {
				pool, err := connectToDatabase(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer pool.Close()
				if _, err := db.RegisterPoolStatsCollector(pool, "venda", reg); err != nil {
					return err
				}
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			mux.HandleFunc("/version", buildinfo.Handler("venda-metrics"))

			server := &http.Server{
				Addr:              metricsListenAddr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				_ = server.Close()
			}()

			fmt.Printf("Servindo metricas em %s\n", metricsListenAddr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", logging.Err(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsListenAddr, "listen", ":9104", "listen address")
	return cmd
}
