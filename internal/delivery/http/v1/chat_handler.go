package v1

import (
	"net/http"
	"strings"
	"time"

	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/apperror"
	"engitech-contact-backend/pkg/chatlink"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	phone       string
	company     string
	revealAfter time.Duration
}

func NewChatHandler(public *gin.RouterGroup, phone, company string, revealAfter time.Duration) {
	handler := &ChatHandler{phone: phone, company: company, revealAfter: revealAfter}

	public.GET("/chat-link", handler.GetChatLink)
}

// GetChatLink godoc
// @Summary      Get chat deep link
// @Description  Returns the WhatsApp link used by the floating chat widget and when to reveal it.
// @Tags         contact
// @Produce      json
// @Param        message  query     string  false  "Prefilled message"
// @Success      200      {object}  response.Response{data=domain.ChatLink}
// @Failure      500      {object}  response.Response
// @Router       /chat-link [get]
func (h *ChatHandler) GetChatLink(c *gin.Context) {
	message := strings.TrimSpace(c.Query("message"))
	if message == "" {
		message = chatlink.DefaultGreeting(h.company)
	}

	url, err := chatlink.Build(h.phone, message)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.Success(c, http.StatusOK, "Chat link", domain.ChatLink{
		URL:           url,
		RevealAfterMs: h.revealAfter.Milliseconds(),
	})
}
