package domain

import (
	"context"
	"errors"

	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

var (
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrBelowMinimum  = errors.New("amount_below_minimum")
)

// Gateway is the slice of the payment client checkout needs. The
// production implementation is the Paystack client; tests substitute
// a fake.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error)
}

type CheckoutRequest struct {
	Email           string  `json:"email"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	CampaignID      string  `json:"campaign_id"`
	CampaignSlug    string  `json:"campaign_slug"`
	DonorName       string  `json:"donor_name"`
	IsRecurring     bool    `json:"is_recurring"`
	PlanCode        string  `json:"plan_code"`
	NewsletterOptIn bool    `json:"newsletter_opt_in"`
}

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type Service interface {
	// Initiate validates the request, normalizes the amount into the
	// settlement currency, and asks the gateway for a hosted-payment
	// redirect. Nothing is persisted on this path.
	Initiate(context.Context, CheckoutRequest) (CheckoutResponse, error)
}
