package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	checkoutdomain "github.com/amainooti/Zakat-foundation/internal/checkout/domain"
)

func (s *Server) HandleCheckout(c *gin.Context) {
	var req checkoutdomain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.checkoutSvc.Initiate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleVerifyTransaction lets the thank-you page confirm a charge
// after redirect. It reads the gateway only; the webhook remains the
// sole writer.
func (s *Server) HandleVerifyTransaction(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	verified, err := s.gateway.VerifyTransaction(c.Request.Context(), reference)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, verified)
}
