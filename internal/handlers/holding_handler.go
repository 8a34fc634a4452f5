package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/models"
	"ustbills/internal/services"
)

// HoldingHandler handles purchases and holding valuation.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	auditService   services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, auditService: auditService}
}

// BuyTokensRequest represents the request payload for a token purchase.
type BuyTokensRequest struct {
	USTBillID   string             `json:"ustbill_id" binding:"required"`
	Tokens      int64              `json:"tokens"`
	YieldOption models.YieldOption `json:"yield_option" binding:"omitempty,yield_option"`
}

// BuyTokens purchases tokens of a bill for the caller
// @Summary     Buy UST bill tokens
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BuyTokensRequest true "Purchase details"
// @Success     201 {object} models.Holding "Holding created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not eligible"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     409 {object} ErrorResponse "Bill closed"
// @Failure     422 {object} ErrorResponse "Limits or funds"
// @Router      /holdings [post]
func (h *HoldingHandler) BuyTokens(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BuyTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	holding, err := h.holdingService.BuyUSTBillTokens(identity, req.USTBillID, req.Tokens, req.YieldOption)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(identity, "BUY_TOKENS", "holding", holding.ID, c.ClientIP(),
		map[string]interface{}{"ustbill_id": req.USTBillID, "tokens": req.Tokens, "cost": holding.CurrentValue})
	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// ListHoldings returns the caller's holdings
// @Summary     List own holdings
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Holding
// @Router      /holdings [get]
func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.holdingService.GetUserHoldings(identity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}

// GetHolding returns one of the caller's holdings
// @Summary     Get a holding
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} models.Holding
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /holdings/{id} [get]
func (h *HoldingHandler) GetHolding(c *gin.Context) {
	holding, err := h.ownedHolding(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// GetCurrentValue values a holding now
// @Summary     Current holding value
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} map[string]int64
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /holdings/{id}/value [get]
func (h *HoldingHandler) GetCurrentValue(c *gin.Context) {
	holding, err := h.ownedHolding(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	value, err := h.holdingService.CalculateCurrentValue(holding.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holding_id": holding.ID, "current_value": value})
}

// GetMaturityValue projects a holding's value at maturity
// @Summary     Holding value at maturity
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} map[string]int64
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Router      /holdings/{id}/maturity-value [get]
func (h *HoldingHandler) GetMaturityValue(c *gin.Context) {
	holding, err := h.ownedHolding(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	value, err := h.holdingService.CalculateMaturityYield(holding.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holding_id": holding.ID, "maturity_value": value})
}

// GetYieldProjection describes the remaining return of an active holding
// @Summary     Yield projection
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} services.YieldProjection
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     409 {object} ErrorResponse "Holding closed or bill matured"
// @Router      /holdings/{id}/projection [get]
func (h *HoldingHandler) GetYieldProjection(c *gin.Context) {
	holding, err := h.ownedHolding(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projection, err := h.holdingService.GetYieldProjection(holding.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// SellHolding is reserved for a secondary market that does not exist yet
// @Summary     Sell a holding
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Failure     501 {object} ErrorResponse "Not implemented"
// @Router      /holdings/{id}/sell [post]
func (h *HoldingHandler) SellHolding(c *gin.Context) {
	if _, err := h.ownedHolding(c); err != nil {
		respondWithError(c, err)
		return
	}
	respondWithError(c, apperrors.WithMessage(apperrors.ErrNotImplemented, "Selling holdings is not supported"))
}

// ownedHolding loads the path holding and hides holdings of other callers.
func (h *HoldingHandler) ownedHolding(c *gin.Context) (*models.Holding, error) {
	identity, err := getIdentity(c)
	if err != nil {
		return nil, err
	}
	holding, err := h.holdingService.GetHolding(c.Param("id"))
	if err != nil {
		return nil, err
	}
	if holding.UserIdentity != identity {
		return nil, apperrors.ErrHoldingNotFound
	}
	return holding, nil
}
