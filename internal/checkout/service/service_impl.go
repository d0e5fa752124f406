package service

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	campaigndomain "github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/internal/checkout/domain"
	"github.com/amainooti/Zakat-foundation/internal/config"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	obsmetrics "github.com/amainooti/Zakat-foundation/internal/observability/metrics"
	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	Gateway     domain.Gateway
	CampaignSvc campaigndomain.Service
	Converter   *currency.Converter
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	cfg         config.Config
	log         *zap.Logger
	gateway     domain.Gateway
	campaignSvc campaigndomain.Service
	converter   *currency.Converter
	metrics     *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		cfg:         p.Cfg,
		log:         p.Log.Named("checkout.service"),
		gateway:     p.Gateway,
		campaignSvc: p.CampaignSvc,
		converter:   p.Converter,
		metrics:     p.Metrics,
	}
}

func (s *service) Initiate(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.CheckoutResponse{}, domain.ErrInvalidEmail
	}
	if req.Amount <= 0 {
		return domain.CheckoutResponse{}, domain.ErrInvalidAmount
	}
	if req.Amount < s.cfg.Donation.MinimumAmount {
		return domain.CheckoutResponse{}, domain.ErrBelowMinimum
	}

	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		code = s.cfg.Donation.BaseCurrency
	}

	// Archived campaigns reject checkout before any gateway call.
	campaignSlug := strings.TrimSpace(req.CampaignSlug)
	campaignID := strings.TrimSpace(req.CampaignID)
	if campaignID != "" {
		campaign, err := s.campaignSvc.GetByID(ctx, campaignID)
		if err != nil {
			if err == campaigndomain.ErrInvalidID {
				return domain.CheckoutResponse{}, campaigndomain.ErrNotFound
			}
			return domain.CheckoutResponse{}, err
		}
		if !campaign.AcceptsDonations() {
			return domain.CheckoutResponse{}, campaigndomain.ErrNotFound
		}
		if campaignSlug == "" {
			campaignSlug = campaign.Slug
		}
	}

	settled, err := s.converter.ToSettlement(req.Amount, code)
	if err != nil {
		return domain.CheckoutResponse{}, domain.ErrInvalidAmount
	}

	tx, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      currency.ToSmallestUnit(settled),
		Currency:    s.converter.Settlement(),
		CallbackURL: s.callbackURL(campaignSlug),
		Plan:        strings.TrimSpace(req.PlanCode),
		Metadata: paystack.ChargeMetadata{
			CampaignID:       campaignID,
			CampaignSlug:     campaignSlug,
			DonorName:        strings.TrimSpace(req.DonorName),
			OriginalAmount:   currency.Round2(req.Amount),
			OriginalCurrency: code,
			IsRecurring:      req.IsRecurring,
			NewsletterOptIn:  req.NewsletterOptIn,
		},
	})
	if err != nil {
		s.metrics.RecordCheckout(obsmetrics.ResultError)
		return domain.CheckoutResponse{}, err
	}
	s.metrics.RecordCheckout(obsmetrics.ResultOK)

	s.log.Info("checkout initialized",
		zap.String("reference", tx.Reference),
		zap.String("currency", code),
		zap.Float64("amount", req.Amount),
	)
	return domain.CheckoutResponse{
		AuthorizationURL: tx.AuthorizationURL,
		Reference:        tx.Reference,
	}, nil
}

// callbackURL sends the donor back to where they started, marked so the
// page can show a thank-you state.
func (s *service) callbackURL(campaignSlug string) string {
	if campaignSlug != "" {
		return s.cfg.SiteURL + "/campaigns/" + campaignSlug + "?donated=true"
	}
	return s.cfg.SiteURL + "/donate?donated=true"
}
