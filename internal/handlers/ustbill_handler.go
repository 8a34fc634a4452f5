package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ustbills/internal/errors"
	"ustbills/internal/pagination"
	"ustbills/internal/services"
)

// USTBillHandler handles instrument registry requests.
type USTBillHandler struct {
	ustbillService services.USTBillServicer
	auditService   services.AuditServicer
}

// NewUSTBillHandler creates a new USTBillHandler.
func NewUSTBillHandler(ustbillService services.USTBillServicer, auditService services.AuditServicer) *USTBillHandler {
	return &USTBillHandler{ustbillService: ustbillService, auditService: auditService}
}

// CreateUSTBillRequest represents the request payload for listing a new bill.
type CreateUSTBillRequest struct {
	CUSIP         string          `json:"cusip" binding:"required,len=9"`
	Issuer        string          `json:"issuer" binding:"required,max=100"`
	BillType      string          `json:"bill_type" binding:"required,max=50"`
	FaceValue     int64           `json:"face_value"`
	PurchasePrice int64           `json:"purchase_price"`
	TotalTokens   int64           `json:"total_tokens"`
	AnnualYield   decimal.Decimal `json:"annual_yield"`
	MaturityDate  time.Time       `json:"maturity_date" binding:"required"`
}

// ListUSTBillsQuery holds the listing filters.
type ListUSTBillsQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,oneof=active all"`
}

// ListUSTBills returns a page of bills, active ones unless status=all
// @Summary     List UST bills
// @Tags        ustbills
// @Produce     json
// @Security    BearerAuth
// @Param       page     query int    false "Page number (default 1)"
// @Param       per_page query int    false "Items per page (default 20, values above 100 are capped to 100)"
// @Param       status   query string false "active (default) or all"
// @Success     200 {object} pagination.PageResponse[models.USTBill]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /ustbills [get]
func (h *USTBillHandler) ListUSTBills(c *gin.Context) {
	var q ListUSTBillsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.ustbillService.GetUSTBillsPaginated(q.PageRequest, q.Status == "all")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListActiveUSTBills returns every bill open for purchase
// @Summary     List active UST bills
// @Tags        ustbills
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.USTBill
// @Router      /ustbills/active [get]
func (h *USTBillHandler) ListActiveUSTBills(c *gin.Context) {
	bills, err := h.ustbillService.GetActiveUSTBills()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ustbills": bills})
}

// GetUSTBill returns a bill by id
// @Summary     Get a UST bill
// @Tags        ustbills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} models.USTBill
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /ustbills/{id} [get]
func (h *USTBillHandler) GetUSTBill(c *gin.Context) {
	bill, err := h.ustbillService.GetUSTBill(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ustbill": bill})
}

// GetAvailability returns the number of unsold tokens
// @Summary     Get token availability
// @Tags        ustbills
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} map[string]int64
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /ustbills/{id}/availability [get]
func (h *USTBillHandler) GetAvailability(c *gin.Context) {
	id := c.Param("id")
	available, err := h.ustbillService.GetUSTBillAvailability(id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ustbill_id": id, "available_tokens": available})
}

// GetPurchaseCost quotes the wallet debit for a token count
// @Summary     Quote purchase cost
// @Tags        ustbills
// @Produce     json
// @Security    BearerAuth
// @Param       id     path  string true "Bill ID"
// @Param       tokens query int    true "Token count"
// @Success     200 {object} map[string]int64
// @Failure     400 {object} ErrorResponse "Invalid token amount"
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Router      /ustbills/{id}/cost [get]
func (h *USTBillHandler) GetPurchaseCost(c *gin.Context) {
	tokens, ok, err := queryInt64(c, "tokens")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !ok {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidTokenAmount, "tokens is required"))
		return
	}

	id := c.Param("id")
	cost, err := h.ustbillService.CalculatePurchaseCost(id, tokens)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ustbill_id": id, "tokens": tokens, "cost": cost})
}

// CreateUSTBill lists a new bill for sale
// @Summary     Create a UST bill
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUSTBillRequest true "Bill details"
// @Success     201 {object} models.USTBill
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     409 {object} ErrorResponse "CUSIP already listed"
// @Router      /admin/ustbills [post]
func (h *USTBillHandler) CreateUSTBill(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUSTBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bill, err := h.ustbillService.CreateUSTBill(services.CreateUSTBillInput{
		CUSIP:         req.CUSIP,
		Issuer:        req.Issuer,
		BillType:      req.BillType,
		FaceValue:     req.FaceValue,
		PurchasePrice: req.PurchasePrice,
		TotalTokens:   req.TotalTokens,
		AnnualYield:   req.AnnualYield,
		MaturityDate:  req.MaturityDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_USTBILL", "ustbill", bill.ID, c.ClientIP(),
		map[string]interface{}{"cusip": bill.CUSIP, "total_tokens": bill.TotalTokens})
	c.JSON(http.StatusCreated, gin.H{"ustbill": bill})
}

// CancelUSTBill withdraws a bill and refunds its active holdings
// @Summary     Cancel a UST bill
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bill ID"
// @Success     200 {object} models.USTBill
// @Failure     404 {object} ErrorResponse "Bill not found"
// @Failure     409 {object} ErrorResponse "Bill already closed"
// @Router      /admin/ustbills/{id}/cancel [post]
func (h *USTBillHandler) CancelUSTBill(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bill, err := h.ustbillService.CancelUSTBill(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CANCEL_USTBILL", "ustbill", bill.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"ustbill": bill})
}

// RunSweep applies maturity and sell-out transitions and settles holdings
// @Summary     Run the market data sweep
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SweepResult
// @Failure     403 {object} ErrorResponse "Access denied"
// @Router      /admin/ustbills/sweep [post]
func (h *USTBillHandler) RunSweep(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ustbillService.UpdateMarketData()
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "MARKET_DATA_SWEEP", "ustbill", "", c.ClientIP(),
		map[string]interface{}{"matured": result.Matured, "settled_holdings": result.SettledHoldings})
	c.JSON(http.StatusOK, result)
}
