package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	newsletterdomain "github.com/amainooti/Zakat-foundation/internal/newsletter/domain"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

func (s *Server) SubscribeNewsletter(c *gin.Context) {
	var req newsletterdomain.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	subscriber, err := s.newsletterSvc.Subscribe(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": true, "email": subscriber.Email})
}

func (s *Server) UnsubscribeNewsletter(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.newsletterSvc.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}

func (s *Server) ListNewsletterSubscribers(c *gin.Context) {
	activeOnly := c.Query("active") != "false"
	resp, err := s.newsletterSvc.List(c.Request.Context(), activeOnly, pagination.Pagination{
		PageToken: c.Query("page_token"),
		PageSize:  queryInt(c, "page_size"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
