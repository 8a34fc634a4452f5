package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ustbills/internal/config"
	"ustbills/internal/middleware"
	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/server"
)

// operatorIdentity is recorded as the actor for changes made from the CLI.
const operatorIdentity = "ustbillsctl"

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mature due bills, mark sold-out bills and settle holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				result, err := rt.Services.USTBills.UpdateMarketData()
				if err != nil {
					return err
				}
				rt.Services.Audit.Log(operatorIdentity, "MARKET_DATA_SWEEP", "ustbill", "", "", nil)
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func fetchRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-rates",
		Short: "Fetch treasury rates from the configured feed and commit them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *server.Runtime) error {
				ctx, cancel := context.WithTimeout(ctx, rt.Config.TreasuryRequestTimeout)
				defer cancel()
				rates, err := rt.Services.Rates.FetchTreasuryRates(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "committed %d treasury rates\n", len(rates))
				return nil
			})
		},
	}
}

func ratesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the committed treasury rate set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *server.Runtime) error {
				rates, err := rt.Services.Rates.GetTreasuryRates(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rates)
			})
		},
	}
}

func billsCmd() *cobra.Command {
	var all bool
	var page, perPage int
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List UST bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				result, err := rt.Services.USTBills.GetUSTBillsPaginated(pagination.NewPageRequest(page, perPage), all)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include matured, sold-out and cancelled bills")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", pagination.DefaultPerPage, "Items per page")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the platform configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the platform configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				cfg, err := rt.Services.Config.GetPlatformConfig()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Overwrite the platform configuration with the environment defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				cfg, err := rt.Services.Config.UpdatePlatformConfig(server.PlatformDefaults(rt.Config.Defaults))
				if err != nil {
					return err
				}
				rt.Services.Audit.Log(operatorIdentity, "RESET_PLATFORM_CONFIG", "platform_config", "1", "", nil)
				return printJSON(cmd.OutOrStdout(), cfg)
			})
		},
	})
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts and trading metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				stats, err := rt.Services.Metrics.GetStorageStats()
				if err != nil {
					return err
				}
				metrics, err := rt.Services.Metrics.GetTradingMetrics()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"storage": stats,
					"trading": metrics,
				})
			})
		},
	}
}

func adminsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage privileged identities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List privileged identities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				admins, err := rt.Services.Admin.ListAdmins()
				if err != nil {
					return err
				}
				for _, a := range admins {
					fmt.Fprintln(cmd.OutOrStdout(), a)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "grant [identity]",
		Short: "Grant the privileged capability to an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				if _, err := rt.Services.Admin.GrantAdmin(operatorIdentity, args[0]); err != nil {
					return err
				}
				rt.Services.Audit.Log(operatorIdentity, "GRANT_ADMIN", "admin_identity", args[0], "", nil)
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func kycCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kyc [identity] [pending|verified|rejected]",
		Short: "Set the KYC status of a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *server.Runtime) error {
				user, err := rt.Services.Users.UpdateKYCStatus(args[0], models.KYCStatus(args[1]))
				if err != nil {
					return err
				}
				rt.Services.Audit.Log(operatorIdentity, "UPDATE_KYC_STATUS", "user", args[0], "",
					map[string]interface{}{"kyc_status": args[1]})
				return printJSON(cmd.OutOrStdout(), user)
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [identity]",
		Short: "Issue a bearer token for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			token, err := middleware.GenerateToken(cfg.JWTSecret, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
