package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	donationdomain "github.com/amainooti/Zakat-foundation/internal/donation/domain"
	obsmetrics "github.com/amainooti/Zakat-foundation/internal/observability/metrics"
	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

// HandlePaystackWebhook authenticates and reconciles a gateway
// delivery. Signature verification runs over the raw body bytes before
// any JSON parsing; re-serializing first would change the byte
// sequence and break the HMAC.
func (s *Server) HandlePaystackWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	if !s.gateway.VerifySignature(payload, signature) {
		// Either tampering or a misconfigured secret; worth a log line.
		s.log.Warn("webhook signature mismatch", zap.String("request_id", c.GetString("request_id")))
		AbortWithError(c, ErrUnauthorized)
		return
	}

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	switch ev := event.(type) {
	case paystack.ChargeSuccessEvent:
		result, err := s.donationSvc.RecordCharge(c.Request.Context(), chargeFromEvent(ev))
		if err != nil {
			// Only the donation insert fails loudly; a 500 here makes
			// the gateway redeliver, which the idempotency check absorbs.
			s.obsMetrics.RecordWebhookEvent("charge.success", obsmetrics.ResultError)
			AbortWithError(c, err)
			return
		}
		s.obsMetrics.RecordWebhookEvent("charge.success", obsmetrics.ResultOK)
		if result.Duplicate {
			c.JSON(http.StatusOK, gin.H{"received": true, "skipped": "duplicate"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})

	case paystack.SubscriptionCreateEvent:
		s.obsMetrics.RecordWebhookEvent("subscription.create", obsmetrics.ResultOK)
		c.JSON(http.StatusOK, gin.H{"received": true})

	case paystack.UnrecognizedEvent:
		s.obsMetrics.RecordWebhookEvent(ev.Type, obsmetrics.ResultOK)
		c.JSON(http.StatusOK, gin.H{"received": true})

	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func chargeFromEvent(ev paystack.ChargeSuccessEvent) donationdomain.Charge {
	return donationdomain.Charge{
		Reference:         ev.Reference,
		Amount:            ev.Amount,
		Currency:          ev.Currency,
		CustomerEmail:     ev.Customer.Email,
		CustomerFirstName: ev.Customer.FirstName,
		CustomerLastName:  ev.Customer.LastName,
		PlanCode:          ev.PlanCode,
		OriginalAmount:    ev.Metadata.OriginalAmount,
		OriginalCurrency:  ev.Metadata.OriginalCurrency,
		CampaignID:        ev.Metadata.CampaignID,
		CampaignSlug:      ev.Metadata.CampaignSlug,
		DonorName:         ev.Metadata.DonorName,
		IsRecurring:       ev.Metadata.IsRecurring,
		NewsletterOptIn:   ev.Metadata.NewsletterOptIn,
		Raw:               ev.Raw,
	}
}
