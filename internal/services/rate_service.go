package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ustbills/internal/database"
	apperrors "ustbills/internal/errors"
	"ustbills/internal/logger"
	"ustbills/internal/models"
	"ustbills/internal/ratecache"
	"ustbills/internal/ratefeed"
)

// RateFetcher performs the outbound request for treasury rates.
type RateFetcher interface {
	Fetch(ctx context.Context) (*ratefeed.Response, error)
}

// rateService ingests treasury rates and serves the cached set.
type rateService struct {
	store   *database.Store
	fetcher RateFetcher
	cache   ratecache.Cache
	now     func() time.Time
}

// NewRateService creates a new RateServicer. cache may be nil.
func NewRateService(store *database.Store, fetcher RateFetcher, cache ratecache.Cache) RateServicer {
	return &rateService{store: store, fetcher: fetcher, cache: cache, now: time.Now}
}

// FetchTreasuryRates fetches, normalizes and commits a fresh rate set.
//
// The fetch runs outside the ledger lock. If another ingestion committed
// while this one was in flight, the result is dropped and the committed set
// is returned instead. Any failure leaves the prior set untouched.
func (s *rateService) FetchTreasuryRates(ctx context.Context) ([]models.TreasuryRate, error) {
	startVersion, err := s.snapshotVersion(s.store.DB())
	if err != nil {
		return nil, err
	}

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		logger.Get().Errorw("treasury rate fetch failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrTreasuryDataFetch, apperrors.WithDetail(apperrors.ErrHTTPRequest, err.Error()))
	}
	normalized, err := ratefeed.Transform(*raw)
	if err != nil {
		return nil, s.externalError(err)
	}
	records, err := ratefeed.Parse(normalized)
	if err != nil {
		return nil, s.externalError(err)
	}

	sum := sha256.Sum256(normalized.Body)
	fingerprint := hex.EncodeToString(sum[:])

	var rates []models.TreasuryRate
	var snapshot models.RateSnapshot
	stale := false
	err = s.store.Atomic(func(tx *gorm.DB) error {
		current, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		if current.Version != startVersion {
			stale = true
			rates, err = loadRates(tx)
			return err
		}

		if err := tx.Where("1 = 1").Delete(&models.TreasuryRate{}).Error; err != nil {
			return dbError(err)
		}
		rates = toTreasuryRates(records)
		if len(rates) > 0 {
			if err := tx.CreateInBatches(&rates, 200).Error; err != nil {
				return dbError(err)
			}
		}

		snapshot = models.RateSnapshot{
			ID:          models.RateSnapshotID,
			Version:     current.Version + 1,
			Fingerprint: fingerprint,
			RecordCount: len(rates),
			FetchedAt:   s.now().UTC(),
		}
		if err := tx.Save(&snapshot).Error; err != nil {
			return dbError(err)
		}
		return applyMarketRates(tx, rates, snapshot.FetchedAt)
	})
	if err != nil {
		return nil, err
	}

	if stale {
		logger.Get().Infow("discarded stale treasury rate ingestion", "started_at_version", startVersion)
		return rates, nil
	}

	logger.Get().Infow("treasury rates ingested",
		"version", snapshot.Version,
		"records", snapshot.RecordCount,
		"fingerprint", fingerprint,
	)
	s.mirror(ctx, &snapshot, rates)
	return rates, nil
}

// GetTreasuryRates returns the committed rate set, from the cache mirror
// when it holds the committed version.
func (s *rateService) GetTreasuryRates(ctx context.Context) ([]models.TreasuryRate, error) {
	db := s.store.DB()
	if s.cache != nil {
		version, err := s.snapshotVersion(db)
		if err != nil {
			return nil, err
		}
		if snap, err := s.cache.Get(ctx); err == nil && snap.Version == version {
			return snap.Rates, nil
		}
	}
	return loadRates(db)
}

func (s *rateService) externalError(err error) error {
	logger.Get().Errorw("treasury rate response rejected", "error", err)
	return apperrors.Wrap(apperrors.ErrTreasuryDataFetch, apperrors.WithDetail(apperrors.ErrExternalAPI, err.Error()))
}

func (s *rateService) snapshotVersion(db *gorm.DB) (int64, error) {
	snap, err := loadSnapshot(db)
	if err != nil {
		return 0, err
	}
	return snap.Version, nil
}

// mirror copies a committed snapshot into the cache. Failures only log.
func (s *rateService) mirror(ctx context.Context, snapshot *models.RateSnapshot, rates []models.TreasuryRate) {
	if s.cache == nil {
		return
	}
	err := s.cache.Set(ctx, &ratecache.Snapshot{
		Version:     snapshot.Version,
		Fingerprint: snapshot.Fingerprint,
		FetchedAt:   snapshot.FetchedAt,
		Rates:       rates,
	})
	if err != nil {
		logger.Get().Warnw("failed to mirror treasury rates to cache", "error", err, "version", snapshot.Version)
	}
}

func loadSnapshot(db *gorm.DB) (*models.RateSnapshot, error) {
	var snap models.RateSnapshot
	err := db.First(&snap, models.RateSnapshotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.RateSnapshot{ID: models.RateSnapshotID}, nil
	}
	if err != nil {
		return nil, dbError(err)
	}
	return &snap, nil
}

func loadRates(db *gorm.DB) ([]models.TreasuryRate, error) {
	rates := []models.TreasuryRate{}
	if err := db.Order("position ASC").Find(&rates).Error; err != nil {
		return nil, dbError(err)
	}
	return rates, nil
}

func toTreasuryRates(records []ratefeed.Record) []models.TreasuryRate {
	rates := make([]models.TreasuryRate, len(records))
	for i, r := range records {
		rates[i] = models.TreasuryRate{
			Position:     i,
			CUSIP:        r.CUSIP,
			Rate:         r.Rate,
			RecordDate:   r.RecordDate,
			RateDate:     r.RateDate,
			SecurityType: r.SecurityType,
			SecurityDesc: r.SecurityDesc,
		}
	}
	return rates
}

// applyMarketRates refreshes the market rate of active bills quoted in the
// feed. The feed publishes percentages; bills carry fractions. Bill status is
// read inside the transaction, so bills that closed during the fetch are left
// alone.
func applyMarketRates(tx *gorm.DB, rates []models.TreasuryRate, at time.Time) error {
	latest := make(map[string]decimal.Decimal, len(rates))
	for _, r := range rates {
		latest[r.CUSIP] = r.Rate
	}
	if len(latest) == 0 {
		return nil
	}

	cusips := make([]string, 0, len(latest))
	for c := range latest {
		cusips = append(cusips, c)
	}
	var bills []models.USTBill
	if err := tx.Where("status = ? AND cusip IN ?", models.USTBillStatusActive, cusips).Find(&bills).Error; err != nil {
		return dbError(err)
	}
	for i := range bills {
		rate := latest[bills[i].CUSIP].Div(decimalHundred)
		if err := tx.Model(&bills[i]).Updates(map[string]interface{}{
			"market_rate":    decimal.NewNullDecimal(rate),
			"market_data_at": at,
		}).Error; err != nil {
			return dbError(err)
		}
	}
	return nil
}
