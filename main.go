// Package main provides the venda CLI entry point.
// venda is the command-line interface for the VendaFlow sales pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/cmd"
	"github.com/vendaflow/venda-cli/config"
	"github.com/vendaflow/venda-cli/pkg/buildinfo"
)

// Global flags.
var (
	actorID      string
	outputFormat string
	debug        bool
)

// deps carries the production dependencies, with config loading wrapped so
// command-line flags override file and environment values.
var deps = cmd.DefaultDeps()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "venda",
	Short: "VendaFlow CLI - sales pipeline from the terminal",
	Long: `venda is the command-line interface for the VendaFlow sales pipeline.

Opportunities move through funnel stages under completeness rules: each
forward move requires the fields that stage needs, each stage runs an SLA
clock, and only the responsible seller can touch a card. Discounts above
the threshold go through the approval workflow.

COMMON WORKFLOWS:
  See the board:      venda board
  Create a card:      venda card add "Titulo" --client "Nome"
  Advance a card:     venda card move <id> contato-feito
  Close a deal:       venda card win <id>  |  venda card lose <id> --reason price
  Big discount:       venda approval request <id> --discount 15
  Manager sign-off:   venda approval list --status pending, then venda approval approve <id>

DISCOVERY:
  venda <command> --help   Subcommands, flags, and examples for any command`,
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(c *cobra.Command, args []string) {
		fmt.Printf("venda %s\n", buildinfo.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "act as this seller id (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Flag overrides wrap config loading so every command sees them.
	baseLoad := deps.LoadConfig
	deps.LoadConfig = func() (*config.CLIConfig, error) {
		cfg, err := baseLoad()
		if err != nil {
			return nil, err
		}
		if actorID != "" {
			cfg.Actor.ID = actorID
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	rootCmd.AddCommand(cmd.NewBoardCommand(deps))
	rootCmd.AddCommand(cmd.NewCardCommand(deps))
	rootCmd.AddCommand(cmd.NewFunnelCommand(deps))
	rootCmd.AddCommand(cmd.NewApprovalCommand(deps))
	rootCmd.AddCommand(cmd.NewDbCommand(deps))
	rootCmd.AddCommand(cmd.NewMetricsCommand(deps))
	rootCmd.AddCommand(cmd.AuthCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
