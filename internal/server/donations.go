package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	donationdomain "github.com/amainooti/Zakat-foundation/internal/donation/domain"
)

func (s *Server) ListDonations(c *gin.Context) {
	resp, err := s.donationSvc.List(c.Request.Context(), donationdomain.ListDonationRequest{
		PageToken:  c.Query("page_token"),
		PageSize:   queryInt(c, "page_size"),
		CampaignID: c.Query("campaign_id"),
		Email:      c.Query("email"),
		Status:     c.Query("status"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ResendReceipt(c *gin.Context) {
	if err := s.donationSvc.ResendReceipt(c.Request.Context(), c.Param("reference")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
