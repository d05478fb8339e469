package v1

import (
	"net/http"
	"strconv"

	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type DiagnosticsHandler struct {
	diagnosticsUC domain.DiagnosticsUsecase
}

func NewDiagnosticsHandler(admin *gin.RouterGroup, diagnosticsUC domain.DiagnosticsUsecase) {
	handler := &DiagnosticsHandler{diagnosticsUC: diagnosticsUC}

	// Mail relay
	admin.GET("/mail/config", handler.GetMailConfig)
	admin.POST("/mail/verify", handler.VerifyRelay)

	// Follow-up ledger
	admin.GET("/follow-ups", handler.ListFollowUps)
	admin.POST("/follow-ups/:id/resolve", handler.ResolveFollowUp)
}

// GetMailConfig godoc
// @Summary      Mail relay configuration
// @Description  Reports which relay settings are present. Secrets are never returned.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.ConfigReport}
// @Failure      401  {object}  response.Response
// @Router       /admin/mail/config [get]
func (h *DiagnosticsHandler) GetMailConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, "Mail configuration", h.diagnosticsUC.ConfigReport())
}

// VerifyRelay godoc
// @Summary      Verify mail relay
// @Description  Connects and authenticates against every transport without sending mail.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.TransportCheck}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /admin/mail/verify [post]
func (h *DiagnosticsHandler) VerifyRelay(c *gin.Context) {
	checks, err := h.diagnosticsUC.VerifyRelay(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Relay verification complete", checks)
}

// ListFollowUps godoc
// @Summary      Pending follow-ups
// @Description  Inquiries that could not be delivered and still need a manual reply.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max rows (default 50)"
// @Success      200    {object}  response.Response{data=[]domain.FollowUp}
// @Failure      401    {object}  response.Response
// @Router       /admin/follow-ups [get]
func (h *DiagnosticsHandler) ListFollowUps(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	followUps, err := h.diagnosticsUC.PendingFollowUps(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending follow-ups", followUps)
}

// ResolveFollowUp godoc
// @Summary      Resolve follow-up
// @Description  Marks a follow-up as handled.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Follow-up ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/follow-ups/{id}/resolve [post]
func (h *DiagnosticsHandler) ResolveFollowUp(c *gin.Context) {
	if err := h.diagnosticsUC.ResolveFollowUp(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Follow-up resolved", nil)
}
