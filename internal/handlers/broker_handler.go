package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ustbills/internal/services"
)

// BrokerHandler handles the broker purchase audit ledger.
type BrokerHandler struct {
	brokerService services.BrokerServicer
	auditService  services.AuditServicer
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(brokerService services.BrokerServicer, auditService services.AuditServicer) *BrokerHandler {
	return &BrokerHandler{brokerService: brokerService, auditService: auditService}
}

// BrokerPurchaseRequest represents a purchase settled with an external broker.
type BrokerPurchaseRequest struct {
	BrokerTxnID string `json:"broker_txn_id" binding:"required,max=128"`
	Amount      int64  `json:"amount"`
	Price       int64  `json:"price"`
	USTBillType string `json:"ustbill_type" binding:"required,max=50"`
}

// AddPurchase appends a broker purchase record. Mounted under both the admin
// and the pipeline groups.
// @Summary     Record a broker purchase
// @Tags        broker
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Security    ApiKeyAuth
// @Param       request body BrokerPurchaseRequest true "Purchase details"
// @Success     201 {object} models.BrokerPurchase
// @Failure     400 {object} ErrorResponse "Invalid input or duplicate txn id"
// @Failure     401 {object} ErrorResponse "Missing token or API key"
// @Failure     403 {object} ErrorResponse "Access denied or wrong API key"
// @Router      /admin/broker-purchases [post]
// @Router      /pipeline/broker-purchases [post]
func (h *BrokerHandler) AddPurchase(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BrokerPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	record, err := h.brokerService.AddBrokerPurchaseRecord(actor, services.BrokerPurchaseInput{
		BrokerTxnID: req.BrokerTxnID,
		Amount:      req.Amount,
		Price:       req.Price,
		USTBillType: req.USTBillType,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "ADD_BROKER_PURCHASE", "broker_purchase", record.ID, c.ClientIP(),
		map[string]interface{}{"broker_txn_id": record.BrokerTxnID, "amount": record.Amount})
	c.JSON(http.StatusCreated, gin.H{"broker_purchase": record})
}

// ListPurchases returns every broker purchase in insertion order
// @Summary     List broker purchases
// @Tags        broker
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.BrokerPurchase
// @Failure     403 {object} ErrorResponse "Access denied"
// @Router      /admin/broker-purchases [get]
func (h *BrokerHandler) ListPurchases(c *gin.Context) {
	records, err := h.brokerService.GetAllVerifiedBrokerPurchases()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"broker_purchases": records})
}
