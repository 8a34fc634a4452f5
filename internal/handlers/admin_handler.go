package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ustbills/internal/services"
)

// AdminHandler manages the privileged identity set.
type AdminHandler struct {
	adminService services.AdminServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{adminService: adminService, auditService: auditService}
}

// GrantAdminRequest names the identity to elevate.
type GrantAdminRequest struct {
	Identity string `json:"identity" binding:"required,max=128"`
}

// ListAdmins returns every privileged identity
// @Summary     List admin identities
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} string
// @Router      /admin/identities [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.ListAdmins()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"identities": admins})
}

// GrantAdmin adds an identity to the privileged set
// @Summary     Grant admin
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GrantAdminRequest true "Identity"
// @Success     201 {object} models.AdminIdentity
// @Failure     400 {object} ErrorResponse "Invalid identity"
// @Router      /admin/identities [post]
func (h *AdminHandler) GrantAdmin(c *gin.Context) {
	actor, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GrantAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	admin, err := h.adminService.GrantAdmin(actor, req.Identity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "GRANT_ADMIN", "admin_identity", req.Identity, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, gin.H{"admin": admin})
}
