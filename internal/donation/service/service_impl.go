package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	campaigndomain "github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	"github.com/amainooti/Zakat-foundation/internal/donation/domain"
	newsletterdomain "github.com/amainooti/Zakat-foundation/internal/newsletter/domain"
	obsmetrics "github.com/amainooti/Zakat-foundation/internal/observability/metrics"
	"github.com/amainooti/Zakat-foundation/internal/receipt"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	CampaignSvc   campaigndomain.Service
	NewsletterSvc newsletterdomain.Service
	Receipts      receipt.Dispatcher
	Converter     *currency.Converter
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	campaignSvc   campaigndomain.Service
	newsletterSvc newsletterdomain.Service
	receipts      receipt.Dispatcher
	converter     *currency.Converter
	metrics       *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:            p.DB,
		log:           p.Log.Named("donation.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		campaignSvc:   p.CampaignSvc,
		newsletterSvc: p.NewsletterSvc,
		receipts:      p.Receipts,
		converter:     p.Converter,
		metrics:       p.Metrics,
	}
}

// RecordCharge is the reconciliation pipeline for one verified charge.
// The donation insert is the single fatal step: its failure bubbles up
// so the gateway redelivers. Every later step failure is logged with
// enough context to replay by hand and then swallowed.
func (s *service) RecordCharge(ctx context.Context, charge domain.Charge) (domain.RecordResult, error) {
	reference := strings.TrimSpace(charge.Reference)
	if reference == "" || charge.Amount <= 0 {
		return domain.RecordResult{}, domain.ErrInvalidCharge
	}

	// Fast path for redelivery. The unique constraint on reference is
	// the real guard; this lookup just avoids the insert round trip.
	existing, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.RecordResult{}, err
	}
	if existing != nil {
		s.metrics.RecordDonation(obsmetrics.OutcomeDuplicate)
		return domain.RecordResult{Duplicate: true, Donation: *existing}, nil
	}

	email := strings.ToLower(strings.TrimSpace(charge.CustomerEmail))
	donorName := extractDonorName(charge)
	amount, code := s.extractAmount(charge)
	planCode := strings.TrimSpace(charge.PlanCode)
	isRecurring := charge.IsRecurring || planCode != ""
	campaignID := parseCampaignID(charge.CampaignID)

	// A stale or deleted campaign must not block the financial record.
	var campaign *campaigndomain.Campaign
	if campaignID != nil {
		found, lookupErr := s.campaignSvc.GetByID(ctx, campaignID.String())
		if lookupErr != nil {
			if !errors.Is(lookupErr, campaigndomain.ErrNotFound) && !errors.Is(lookupErr, campaigndomain.ErrInvalidID) {
				s.log.Warn("campaign lookup failed during reconciliation",
					zap.String("reference", reference),
					zap.String("campaign_id", campaignID.String()),
					zap.Error(lookupErr),
				)
			}
			campaignID = nil
		} else {
			campaign = &found
		}
	}

	donation := domain.Donation{
		ID:              s.genID.Generate(),
		Reference:       reference,
		Email:           email,
		DonorName:       donorName,
		Amount:          currency.Round2(amount),
		Currency:        code,
		CampaignID:      campaignID,
		IsRecurring:     isRecurring,
		PlanCode:        planCode,
		NewsletterOptIn: charge.NewsletterOptIn,
		Status:          domain.StatusCompleted,
		Payload:         datatypes.JSON(charge.Raw),
		CreatedAt:       time.Now().UTC(),
	}

	inserted, err := s.repo.Insert(ctx, s.db, &donation)
	if err != nil {
		s.metrics.RecordDonation(obsmetrics.OutcomeFailed)
		return domain.RecordResult{}, err
	}
	if !inserted {
		// Lost the race against a concurrent delivery of the same
		// reference; the other writer owns the record.
		stored, loadErr := s.repo.FindByReference(ctx, s.db, reference)
		if loadErr != nil {
			return domain.RecordResult{}, loadErr
		}
		if stored == nil {
			return domain.RecordResult{}, domain.ErrInvalidCharge
		}
		s.metrics.RecordDonation(obsmetrics.OutcomeDuplicate)
		return domain.RecordResult{Duplicate: true, Donation: *stored}, nil
	}
	s.metrics.RecordDonation(obsmetrics.OutcomeRecorded)

	if campaign != nil {
		s.applyContribution(ctx, &donation, campaign)
	}
	if donation.NewsletterOptIn && donation.Email != "" {
		if err := s.newsletterSvc.OptInFromDonation(ctx, donation.Email, donation.DonorName); err != nil {
			s.log.Warn("newsletter opt-in failed",
				zap.String("reference", reference),
				zap.Error(err),
			)
		}
	}
	s.dispatchReceipt(ctx, &donation, campaign)

	return domain.RecordResult{Donation: donation}, nil
}

func (s *service) applyContribution(ctx context.Context, donation *domain.Donation, campaign *campaigndomain.Campaign) {
	err := s.campaignSvc.ApplyContribution(ctx, campaigndomain.ApplyContributionRequest{
		CampaignID: campaign.ID,
		DonorName:  donation.DonorName,
		DonorEmail: donation.Email,
		Amount:     donation.Amount,
		Currency:   donation.Currency,
		Reference:  donation.Reference,
		Source:     campaigndomain.ContributionSourceGateway,
	})
	if err != nil {
		// The campaign total will undercount until replayed by hand.
		s.log.Error("contribution write failed",
			zap.String("reference", donation.Reference),
			zap.String("campaign_id", campaign.ID.String()),
			zap.Float64("amount", donation.Amount),
			zap.String("currency", donation.Currency),
			zap.Error(err),
		)
	}
}

func (s *service) dispatchReceipt(ctx context.Context, donation *domain.Donation, campaign *campaigndomain.Campaign) {
	if donation.Email == "" {
		return
	}

	r := receipt.Receipt{
		To:          donation.Email,
		DonorName:   donation.DonorName,
		Amount:      donation.Amount,
		Currency:    donation.Currency,
		Reference:   donation.Reference,
		IsRecurring: donation.IsRecurring,
	}
	if campaign != nil {
		r.CampaignTitle = campaign.Title
		r.CampaignSlug = campaign.Slug
	}

	if err := s.receipts.SendReceipt(ctx, r); err != nil {
		s.metrics.RecordReceipt(obsmetrics.ResultError)
		s.log.Warn("receipt dispatch failed",
			zap.String("reference", donation.Reference),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordReceipt(obsmetrics.ResultOK)

	if err := s.repo.MarkReceiptSent(ctx, s.db, donation.ID); err != nil {
		s.log.Warn("failed to flip receipt flag",
			zap.String("reference", donation.Reference),
			zap.Error(err),
		)
		return
	}
	donation.ReceiptSent = true
}

func (s *service) ResendReceipt(ctx context.Context, reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.ErrNotFound
	}

	donation, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return err
	}
	if donation == nil {
		return domain.ErrNotFound
	}

	var campaign *campaigndomain.Campaign
	if donation.CampaignID != nil {
		if found, lookupErr := s.campaignSvc.GetByID(ctx, donation.CampaignID.String()); lookupErr == nil {
			campaign = &found
		}
	}

	r := receipt.Receipt{
		To:          donation.Email,
		DonorName:   donation.DonorName,
		Amount:      donation.Amount,
		Currency:    donation.Currency,
		Reference:   donation.Reference,
		IsRecurring: donation.IsRecurring,
	}
	if campaign != nil {
		r.CampaignTitle = campaign.Title
		r.CampaignSlug = campaign.Slug
	}

	if err := s.receipts.SendReceipt(ctx, r); err != nil {
		s.metrics.RecordReceipt(obsmetrics.ResultError)
		return err
	}
	s.metrics.RecordReceipt(obsmetrics.ResultOK)

	if !donation.ReceiptSent {
		if err := s.repo.MarkReceiptSent(ctx, s.db, donation.ID); err != nil {
			s.log.Warn("failed to flip receipt flag",
				zap.String("reference", donation.Reference),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, req domain.ListDonationRequest) (domain.ListDonationResponse, error) {
	filter := domain.ListDonationFilter{
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Status: strings.TrimSpace(req.Status),
	}
	if raw := strings.TrimSpace(req.CampaignID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListDonationResponse{}, campaigndomain.ErrInvalidID
		}
		filter.CampaignID = &id
	}

	donations, info, err := s.repo.List(ctx, s.db, filter,
		pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize})
	if err != nil {
		return domain.ListDonationResponse{}, err
	}
	return domain.ListDonationResponse{PageInfo: info, Donations: donations}, nil
}

func extractDonorName(charge domain.Charge) string {
	if name := strings.TrimSpace(charge.DonorName); name != "" {
		return name
	}
	composed := strings.TrimSpace(strings.TrimSpace(charge.CustomerFirstName) + " " + strings.TrimSpace(charge.CustomerLastName))
	return composed
}

// extractAmount prefers the donor-facing figures round-tripped through
// metadata; the gateway's own amount is always settlement currency, so
// falling back to it is lossy but never drops the charge.
func (s *service) extractAmount(charge domain.Charge) (float64, string) {
	if charge.OriginalAmount > 0 && charge.OriginalCurrency != "" {
		return charge.OriginalAmount, strings.ToUpper(charge.OriginalCurrency)
	}
	code := strings.ToUpper(strings.TrimSpace(charge.Currency))
	if code == "" {
		code = s.converter.Settlement()
	}
	return currency.FromSmallestUnit(charge.Amount), code
}

func parseCampaignID(raw string) *snowflake.ID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil
	}
	return &id
}
