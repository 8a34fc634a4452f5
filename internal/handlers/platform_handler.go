package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ustbills/internal/services"
)

// PlatformHandler handles configuration, metrics and treasury rate requests.
type PlatformHandler struct {
	configService  services.PlatformConfigServicer
	metricsService services.MetricsServicer
	rateService    services.RateServicer
	auditService   services.AuditServicer
}

// NewPlatformHandler creates a new PlatformHandler.
func NewPlatformHandler(
	configService services.PlatformConfigServicer,
	metricsService services.MetricsServicer,
	rateService services.RateServicer,
	auditService services.AuditServicer,
) *PlatformHandler {
	return &PlatformHandler{
		configService:  configService,
		metricsService: metricsService,
		rateService:    rateService,
		auditService:   auditService,
	}
}

// UpdateConfigRequest represents a partial configuration update. Omitted
// fields keep their current value.
type UpdateConfigRequest struct {
	MinimumInvestment          *int64           `json:"minimum_investment"`
	MaximumInvestment          *int64           `json:"maximum_investment"`
	PlatformFeePercentage      *decimal.Decimal `json:"platform_fee_percentage"`
	KYCExpiryDays              *int             `json:"kyc_expiry_days"`
	YieldDistributionFrequency *int             `json:"yield_distribution_frequency"`
	TreasuryAPIRefreshInterval *int             `json:"treasury_api_refresh_interval"`
}

// GetConfig returns the platform configuration
// @Summary     Get platform configuration
// @Tags        platform
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.PlatformConfig
// @Router      /config [get]
func (h *PlatformHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configService.GetPlatformConfig()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// UpdateConfig replaces the fields present in the request
// @Summary     Update platform configuration
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateConfigRequest true "Fields to change"
// @Success     200 {object} models.PlatformConfig
// @Failure     400 {object} ErrorResponse "Invalid configuration"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Router      /admin/config [put]
func (h *PlatformHandler) UpdateConfig(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	current, err := h.configService.GetPlatformConfig()
	if err != nil {
		respondWithError(c, err)
		return
	}

	next := *current
	changes := map[string]interface{}{}
	if req.MinimumInvestment != nil {
		next.MinimumInvestment = *req.MinimumInvestment
		changes["minimum_investment"] = *req.MinimumInvestment
	}
	if req.MaximumInvestment != nil {
		next.MaximumInvestment = *req.MaximumInvestment
		changes["maximum_investment"] = *req.MaximumInvestment
	}
	if req.PlatformFeePercentage != nil {
		next.PlatformFeePercentage = *req.PlatformFeePercentage
		changes["platform_fee_percentage"] = req.PlatformFeePercentage.String()
	}
	if req.KYCExpiryDays != nil {
		next.KYCExpiryDays = *req.KYCExpiryDays
		changes["kyc_expiry_days"] = *req.KYCExpiryDays
	}
	if req.YieldDistributionFrequency != nil {
		next.YieldDistributionFrequency = *req.YieldDistributionFrequency
		changes["yield_distribution_frequency"] = *req.YieldDistributionFrequency
	}
	if req.TreasuryAPIRefreshInterval != nil {
		next.TreasuryAPIRefreshInterval = *req.TreasuryAPIRefreshInterval
		changes["treasury_api_refresh_interval"] = *req.TreasuryAPIRefreshInterval
	}

	updated, err := h.configService.UpdatePlatformConfig(next)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_PLATFORM_CONFIG", "platform_config", "1", c.ClientIP(), changes)
	c.JSON(http.StatusOK, gin.H{"config": updated})
}

// GetTradingMetrics returns the aggregate over every executed purchase
// @Summary     Trading metrics
// @Tags        platform
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.TradingMetrics
// @Router      /metrics/trading [get]
func (h *PlatformHandler) GetTradingMetrics(c *gin.Context) {
	metrics, err := h.metricsService.GetTradingMetrics()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// GetStorageStats returns row counts per ledger table
// @Summary     Storage statistics
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.StorageStats
// @Router      /admin/stats [get]
func (h *PlatformHandler) GetStorageStats(c *gin.Context) {
	stats, err := h.metricsService.GetStorageStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTreasuryRates returns the committed treasury rate set
// @Summary     Treasury rates
// @Tags        platform
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.TreasuryRate
// @Router      /treasury-rates [get]
func (h *PlatformHandler) GetTreasuryRates(c *gin.Context) {
	rates, err := h.rateService.GetTreasuryRates(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// FetchTreasuryRates refreshes the rate set from the external feed
// @Summary     Refresh treasury rates
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.TreasuryRate
// @Failure     502 {object} ErrorResponse "Feed unavailable"
// @Router      /admin/treasury-rates/fetch [post]
func (h *PlatformHandler) FetchTreasuryRates(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rates, err := h.rateService.FetchTreasuryRates(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "FETCH_TREASURY_RATES", "treasury_rate", "", c.ClientIP(),
		map[string]interface{}{"records": len(rates)})
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}
