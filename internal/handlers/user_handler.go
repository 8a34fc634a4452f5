package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/services"
)

// UserHandler handles profile, wallet and KYC requests.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// RegisterRequest represents the request payload for registering a profile.
type RegisterRequest struct {
	Email   string  `json:"email" binding:"required,max=254"`
	Country string  `json:"country" binding:"required,max=3"`
	Phone   *string `json:"phone" binding:"omitempty,max=32"`
}

// UpdateEmailRequest represents the request payload for changing the contact email.
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,max=254"`
}

// AmountRequest represents a wallet movement in the smallest currency unit.
type AmountRequest struct {
	Amount int64 `json:"amount"`
}

// BalanceResponse represents a wallet balance after a movement.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// UpdateKYCRequest represents an administrative KYC transition.
type UpdateKYCRequest struct {
	Status models.KYCStatus `json:"status" binding:"required,kyc_status"`
}

// SetActiveRequest represents an administrative trading suspension toggle.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Register handles profile creation for the authenticated identity
// @Summary     Register a profile
// @Description Create the caller's profile with zero balances and pending KYC
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterRequest true "Profile details"
// @Success     201 {object} models.User "Profile created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Anonymous caller"
// @Failure     409 {object} ErrorResponse "Profile already exists"
// @Router      /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.RegisterUser(identity, services.RegisterUserInput{
		Email:   req.Email,
		Country: req.Country,
		Phone:   req.Phone,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(identity, "REGISTER_USER", "user", identity, c.ClientIP(),
		map[string]interface{}{"country": user.Country})

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetProfile returns the caller's profile
// @Summary     Get own profile
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserProfile(identity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateEmail changes the caller's contact email
// @Summary     Update email
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateEmailRequest true "New email"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /users/me/email [put]
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateEmail(identity, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(identity, "UPDATE_EMAIL", "user", identity, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetEligibility reports whether the caller may currently move funds
// @Summary     Check trading eligibility
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]bool
// @Router      /users/me/eligibility [get]
func (h *UserHandler) GetEligibility(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.userService.IsEligible(identity)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": ok})
}

// Deposit credits the caller's wallet
// @Summary     Deposit funds
// @Tags        wallet
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AmountRequest true "Amount"
// @Success     200 {object} BalanceResponse
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     403 {object} ErrorResponse "Not eligible"
// @Router      /wallet/deposit [post]
func (h *UserHandler) Deposit(c *gin.Context) {
	h.moveFunds(c, "DEPOSIT", h.userService.DepositFunds)
}

// Withdraw debits the caller's wallet
// @Summary     Withdraw funds
// @Tags        wallet
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AmountRequest true "Amount"
// @Success     200 {object} BalanceResponse
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     403 {object} ErrorResponse "Not eligible"
// @Failure     422 {object} ErrorResponse "Insufficient funds"
// @Router      /wallet/withdraw [post]
func (h *UserHandler) Withdraw(c *gin.Context) {
	h.moveFunds(c, "WITHDRAW", h.userService.WithdrawFunds)
}

func (h *UserHandler) moveFunds(c *gin.Context, action string, move func(string, int64) (int64, error)) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	balance, err := move(identity, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(identity, action, "wallet", identity, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "balance": balance})
	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

// GetTransactions returns the caller's wallet ledger
// @Summary     List wallet transactions
// @Tags        wallet
// @Produce     json
// @Security    BearerAuth
// @Param       page     query int false "Page number (default 1)"
// @Param       per_page query int false "Items per page (default 20, values above 100 are capped to 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /wallet/transactions [get]
func (h *UserHandler) GetTransactions(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.userService.GetUserTransactions(identity, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser returns any profile for administrators
// @Summary     Get a profile
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       identity path string true "Identity"
// @Success     200 {object} models.User
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /admin/users/{identity} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserProfile(c.Param("identity"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateKYCStatus moves a profile between KYC states
// @Summary     Update KYC status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       identity path string           true "Identity"
// @Param       request  body UpdateKYCRequest true "New status"
// @Success     200 {object} models.User
// @Failure     400 {object} ErrorResponse "Invalid transition"
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /admin/users/{identity}/kyc [put]
func (h *UserHandler) UpdateKYCStatus(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	target := c.Param("identity")
	user, err := h.userService.UpdateKYCStatus(target, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_KYC_STATUS", "user", target, c.ClientIP(),
		map[string]interface{}{"kyc_status": req.Status})
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetActive suspends or re-enables trading for a profile
// @Summary     Set trading active flag
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       identity path string           true "Identity"
// @Param       request  body SetActiveRequest true "Active flag"
// @Success     200 {object} models.User
// @Failure     404 {object} ErrorResponse "Profile not found"
// @Router      /admin/users/{identity}/active [put]
func (h *UserHandler) SetActive(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	target := c.Param("identity")
	user, err := h.userService.SetUserActive(target, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "SET_USER_ACTIVE", "user", target, c.ClientIP(),
		map[string]interface{}{"is_active": *req.IsActive})
	c.JSON(http.StatusOK, gin.H{"user": user})
}
