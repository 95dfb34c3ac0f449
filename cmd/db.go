package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vendaflow/venda-cli/pkg/db"
)

// NewDbCommand creates the db command group.
func NewDbCommand(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands.

The database section of ~/.venda/config.yaml (or the VENDA_DB_* variables)
selects the server; the password comes from VENDA_DB_PASSWORD or the
credential store (see 'venda auth').`,
	}

	cmd.AddCommand(newDbInitCommand(deps))
	cmd.AddCommand(newDbPingCommand(deps))
	return cmd
}

func newDbInitCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the venda tables",
		Long: `Create the venda tables and indexes if they do not exist.
The statements are idempotent, so running init twice is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.Database.IsConfigured() {
				return fmt.Errorf("no database configured; set the database section in %s", configPathHint())
			}

			pool, err := connectToDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Println("Schema pronto")
			return nil
		},
	}
}

func newDbPingCommand(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.Database.IsConfigured() {
				return fmt.Errorf("no database configured; set the database section in %s", configPathHint())
			}

			pool, err := connectToDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Ping(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Printf("OK: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
			return nil
		},
	}
}
