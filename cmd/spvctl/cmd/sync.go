package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jhoicas/efactura-api/internal/infrastructure/postgres"
)

func newStatusCmd(env *cliEnv) *cobra.Command {
	var companyID, uploadID string
	c := &cobra.Command{
		Use:   "status",
		Short: "Consulta /stareMesaj para una carga y actualiza la factura asociada",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := env.deps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			res, err := deps.Service.CheckStatus(ctx, companyID, uploadID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	c.Flags().StringVar(&companyID, "company", "", "ID de la empresa")
	c.Flags().StringVar(&uploadID, "upload", "", "index_incarcare")
	_ = c.MarkFlagRequired("company")
	_ = c.MarkFlagRequired("upload")
	return c
}

func newSyncCmd(env *cliEnv) *cobra.Command {
	var (
		companyID string
		all       bool
	)
	c := &cobra.Command{
		Use:   "sync",
		Short: "Reconcilia las facturas PENDING/PROCESSING contra ANAF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (companyID == "") == !all {
				return errors.New("indique --company o --all")
			}
			ctx := cmd.Context()
			deps, err := env.deps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			if all {
				return printJSON(cmd.OutOrStdout(), deps.Service.SweepAll(ctx))
			}
			return printJSON(cmd.OutOrStdout(), deps.Service.SyncPendingInvoices(ctx, companyID))
		},
	}
	c.Flags().StringVar(&companyID, "company", "", "ID de la empresa")
	c.Flags().BoolVar(&all, "all", false, "Todas las empresas con pendientes")
	return c
}

func newMigrateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas (idempotentes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := env.config()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			names, _ := postgres.MigrationNames()
			return printJSON(cmd.OutOrStdout(), map[string]any{"applied": names})
		},
	}
}
