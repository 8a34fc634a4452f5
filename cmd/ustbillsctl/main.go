// Command ustbillsctl runs ledger maintenance jobs and operator tasks against
// the configured database without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ustbills/internal/config"
	"ustbills/internal/logger"
	"ustbills/internal/server"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ustbillsctl",
		Short:         "Operator tooling for the US T-bill ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(fetchRatesCmd())
	rootCmd.AddCommand(ratesCmd())
	rootCmd.AddCommand(billsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(adminsCmd())
	rootCmd.AddCommand(kycCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}

// withRuntime opens the ledger for the duration of fn.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *server.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := server.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Get().Warnw("failed to close runtime", "error", err)
		}
	}()
	return fn(ctx, rt)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
