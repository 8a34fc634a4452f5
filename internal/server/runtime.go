package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ustbills/internal/config"
	"ustbills/internal/database"
	"ustbills/internal/logger"
	"ustbills/internal/models"
	"ustbills/internal/ratecache"
	"ustbills/internal/ratefeed"
)

// Runtime is an opened ledger: migrated database, optional rate cache and
// the services built over them.
type Runtime struct {
	Config   *config.Config
	Manager  *database.Manager
	Redis    *redis.Client
	Services Services
}

// Open connects to the database, applies migrations, seeds the platform
// config and builds the services. An unreachable Redis only disables the
// cache mirror.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := manager.Migrate(); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	rt := &Runtime{Config: cfg, Manager: manager}

	var cache ratecache.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Get().Warnw("redis unavailable, rate cache mirror disabled", "addr", cfg.RedisAddr, "error", err)
			_ = client.Close()
		} else {
			rt.Redis = client
			cache = ratecache.NewRedisCache(client, cfg.RateCacheTTL)
		}
	}

	fetcher := ratefeed.NewClient(cfg.TreasuryAPIURL, cfg.TreasuryRequestTimeout)
	rt.Services = NewServices(database.NewStore(manager.DB()), fetcher, cache, cfg.AdminIdentities)

	if err := rt.Services.Config.EnsureDefaults(PlatformDefaults(cfg.Defaults)); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("failed to seed platform config: %w", err)
	}
	return rt, nil
}

// Close releases the database pool and the Redis client.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	errs = append(errs, rt.Manager.Close())
	return errors.Join(errs...)
}

// PlatformDefaults converts configured seed values into a config row.
func PlatformDefaults(d config.PlatformDefaults) models.PlatformConfig {
	return models.PlatformConfig{
		ID:                         models.PlatformConfigID,
		MinimumInvestment:          d.MinimumInvestment,
		MaximumInvestment:          d.MaximumInvestment,
		PlatformFeePercentage:      d.PlatformFeePercentage,
		KYCExpiryDays:              d.KYCExpiryDays,
		YieldDistributionFrequency: d.YieldDistributionFrequency,
		TreasuryAPIRefreshInterval: d.TreasuryAPIRefreshInterval,
	}
}
