package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	"github.com/amainooti/Zakat-foundation/pkg/db"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Converter *currency.Converter
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	converter *currency.Converter
}

func NewService(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("campaign.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		converter: p.Converter,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		return domain.Campaign{}, domain.ErrInvalidTitle
	}
	if req.TargetAmount <= 0 {
		return domain.Campaign{}, domain.ErrInvalidTarget
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		code = s.converter.Display()
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StatusActive
	}
	if !domain.ValidStatus(status) {
		return domain.Campaign{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	campaign := domain.Campaign{
		ID:           s.genID.Generate(),
		Slug:         slug.Make(title),
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Story:        req.Story,
		Category:     strings.TrimSpace(req.Category),
		ImageURL:     strings.TrimSpace(req.ImageURL),
		TargetAmount: req.TargetAmount,
		Currency:     code,
		Status:       status,
		EndsAt:       req.EndsAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Campaign{}, domain.ErrSlugTaken
		}
		return domain.Campaign{}, err
	}

	s.log.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("slug", campaign.Slug),
	)
	return campaign, nil
}

func (s *service) Update(ctx context.Context, req domain.UpdateCampaignRequest) (domain.Campaign, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Campaign{}, domain.ErrInvalidID
	}

	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if len(title) < 3 {
			return domain.Campaign{}, domain.ErrInvalidTitle
		}
		campaign.Title = title
	}
	if req.Description != nil {
		campaign.Description = strings.TrimSpace(*req.Description)
	}
	if req.Story != nil {
		campaign.Story = *req.Story
	}
	if req.Category != nil {
		campaign.Category = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL != nil {
		campaign.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.TargetAmount != nil {
		if *req.TargetAmount <= 0 {
			return domain.Campaign{}, domain.ErrInvalidTarget
		}
		campaign.TargetAmount = *req.TargetAmount
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return domain.Campaign{}, domain.ErrInvalidStatus
		}
		campaign.Status = *req.Status
	}
	if req.EndsAt != nil {
		campaign.EndsAt = req.EndsAt
	}
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *service) GetByID(ctx context.Context, rawID string) (domain.Campaign, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return domain.Campaign{}, domain.ErrInvalidID
	}

	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *campaign, nil
}

func (s *service) GetBySlug(ctx context.Context, rawSlug string) (domain.Campaign, error) {
	cleaned := strings.TrimSpace(rawSlug)
	if cleaned == "" {
		return domain.Campaign{}, domain.ErrInvalidID
	}

	campaign, err := s.repo.FindBySlug(ctx, s.db, cleaned)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *campaign, nil
}

func (s *service) List(ctx context.Context, req domain.ListCampaignRequest) (domain.ListCampaignResponse, error) {
	campaigns, info, err := s.repo.List(ctx, s.db,
		domain.ListCampaignFilter{
			Category: strings.TrimSpace(req.Category),
			Status:   strings.TrimSpace(req.Status),
		},
		pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize},
	)
	if err != nil {
		return domain.ListCampaignResponse{}, err
	}
	return domain.ListCampaignResponse{PageInfo: info, Campaigns: campaigns}, nil
}

// ApplyContribution records the contribution row and refreshes the
// campaign aggregates in a single transaction. The increment to
// raised_amount is applied in SQL so concurrent webhook deliveries
// never lose an update.
func (s *service) ApplyContribution(ctx context.Context, req domain.ApplyContributionRequest) error {
	if req.CampaignID == 0 {
		return domain.ErrInvalidID
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if code == "" {
		return domain.ErrInvalidCurrency
	}

	baseAmount, err := s.converter.ToDisplay(req.Amount, code)
	if err != nil {
		return domain.ErrInvalidAmount
	}
	source := req.Source
	if source == "" {
		source = domain.ContributionSourceGateway
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contribution := domain.Contribution{
			ID:         s.genID.Generate(),
			CampaignID: req.CampaignID,
			DonorName:  strings.TrimSpace(req.DonorName),
			DonorEmail: strings.ToLower(strings.TrimSpace(req.DonorEmail)),
			Amount:     currency.Round2(req.Amount),
			Currency:   code,
			BaseAmount: baseAmount,
			Reference:  strings.TrimSpace(req.Reference),
			Note:       strings.TrimSpace(req.Note),
			Anonymous:  req.Anonymous,
			Source:     source,
			CreatedAt:  time.Now().UTC(),
		}
		if contribution.Anonymous {
			contribution.DonorName = ""
		}

		if err := s.repo.InsertContribution(ctx, tx, &contribution); err != nil {
			return err
		}

		donorCount, err := s.repo.CountDistinctDonors(ctx, tx, req.CampaignID)
		if err != nil {
			return err
		}

		return s.repo.IncrementAggregates(ctx, tx, req.CampaignID, baseAmount, donorCount)
	})
}

func (s *service) ListContributions(ctx context.Context, rawID string, page pagination.Pagination) (domain.ListContributionsResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return domain.ListContributionsResponse{}, domain.ErrInvalidID
	}

	contributions, info, err := s.repo.ListContributions(ctx, s.db, id, page)
	if err != nil {
		return domain.ListContributionsResponse{}, err
	}

	// Anonymous gifts stay anonymous on the way out.
	for _, contribution := range contributions {
		if contribution.Anonymous {
			contribution.DonorName = ""
			contribution.DonorEmail = ""
		}
	}

	return domain.ListContributionsResponse{PageInfo: info, Contributions: contributions}, nil
}
