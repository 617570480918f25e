package fx

import (
	"context"
	"database/sql"

	"clash-tracker/internal/api"
	"clash-tracker/internal/config"
	"clash-tracker/internal/database"
	"clash-tracker/internal/logger"
	"clash-tracker/internal/presenter"
	"clash-tracker/internal/repository"
	"clash-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvidePlayerClient(c *api.Client) service.PlayerClient {
	return c
}

func ProvidePlayerFetcher(c *api.Client) presenter.PlayerFetcher {
	return c
}

func ProvidePresenterStore(s *service.ProfileStore) presenter.ProfileStore {
	return s
}

func ProvideProfileListener(p *presenter.Profile) service.ProfileListener {
	return p
}

// RegisterHooks waits for background refreshes before closing the database.
func RegisterHooks(lc fx.Lifecycle, db *sql.DB, profile *presenter.Profile, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			profile.Wait()
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
				return err
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(database.NewX),
	// repos
	fx.Provide(repository.NewProfileRepository),
	// api client
	fx.Provide(api.NewClient),
	fx.Provide(ProvidePlayerClient),
	fx.Provide(ProvidePlayerFetcher),
	// svc
	fx.Provide(service.NewProfileStore),
	fx.Provide(ProvidePresenterStore),
	fx.Provide(service.NewPlayerService),
	// presenter
	fx.Provide(presenter.NewProfile),
	fx.Provide(ProvideProfileListener),
	fx.Invoke(RegisterHooks),
)
