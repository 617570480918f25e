package main

import (
	"context"
	"fmt"
	"os"

	"clash-tracker/internal/api"
	"clash-tracker/internal/constants"
	fxmodules "clash-tracker/internal/fx"
	"clash-tracker/internal/middleware"
	"clash-tracker/internal/presenter"
	"clash-tracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tracker",
		Short:         "Clash of Clans player stats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newChartCmd())

	return rootCmd
}

// app is the dependency graph a command runs against.
type app struct {
	client  *api.Client
	store   *service.ProfileStore
	players *service.PlayerService
	profile *presenter.Profile
	logger  zerolog.Logger
}

type runFunc func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error

// withApp starts the fx graph around run and stops it afterwards, which waits
// for background refreshes and closes the database.
func withApp(name string, run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := &app{}
		fxApp := fx.New(
			fxmodules.Module,
			fx.NopLogger,
			fx.Populate(&a.client, &a.store, &a.players, &a.profile, &a.logger),
		)
		if err := fxApp.Err(); err != nil {
			return err
		}

		startCtx, cancel := context.WithTimeout(cmd.Context(), fx.DefaultTimeout)
		defer cancel()
		if err := fxApp.Start(startCtx); err != nil {
			return err
		}

		wrapped := middleware.RequestID(a.logger)(name, func(ctx context.Context, args []string) error {
			return run(ctx, a, cmd, args)
		})
		runErr := wrapped(cmd.Context(), args)

		stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer stopCancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			a.logger.Warn().Err(err).Msg("shutdown failed")
		}
		return runErr
	}
}
