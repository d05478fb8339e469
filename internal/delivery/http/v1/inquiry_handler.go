package v1

import (
	"net/http"

	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryUC domain.InquiryUsecase
}

// NewInquiryHandler registers the public inquiry routes. /send is kept for older site builds.
func NewInquiryHandler(public *gin.RouterGroup, inquiryUC domain.InquiryUsecase, limiter gin.HandlerFunc) {
	handler := &InquiryHandler{
		inquiryUC: inquiryUC,
	}

	handlers := []gin.HandlerFunc{handler.SubmitInquiry}
	if limiter != nil {
		handlers = append([]gin.HandlerFunc{limiter}, handlers...)
	}

	public.POST("/contact", handlers...)
	public.POST("/send", handlers...)
}

// SubmitInquiry godoc
// @Summary      Submit Contact Inquiry
// @Description  Validates a visitor inquiry and relays it to the company inbox by email.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        inquiry  body      domain.InquiryPayload  true  "Inquiry"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      405      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /contact [post]
func (h *InquiryHandler) SubmitInquiry(c *gin.Context) {
	var req domain.InquiryPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.MalformedRequest(err))
		return
	}

	result, err := h.inquiryUC.Submit(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Delivered(c, http.StatusOK, result.Message, result.DeliveryID)
}
