package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, slug, title, description, story, category, image_url,
		   target_amount, raised_amount, donor_count, currency, status, ends_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Slug,
		campaign.Title,
		campaign.Description,
		campaign.Story,
		campaign.Category,
		campaign.ImageURL,
		campaign.TargetAmount,
		campaign.RaisedAmount,
		campaign.DonorCount,
		campaign.Currency,
		campaign.Status,
		campaign.EndsAt,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns
		 SET title = ?, description = ?, story = ?, category = ?, image_url = ?,
		     target_amount = ?, status = ?, ends_at = ?, updated_at = ?
		 WHERE id = ?`,
		campaign.Title,
		campaign.Description,
		campaign.Story,
		campaign.Category,
		campaign.ImageURL,
		campaign.TargetAmount,
		campaign.Status,
		campaign.EndsAt,
		campaign.UpdatedAt,
		campaign.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM campaigns WHERE id = ?`,
		id,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM campaigns WHERE slug = ?`,
		slug,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCampaignFilter, page pagination.Pagination) ([]*domain.Campaign, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).Model(&domain.Campaign{})
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt, size, err := pagination.Apply(stmt, page, "created_at")
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var campaigns []*domain.Campaign
	if err := stmt.Order("created_at desc, id desc").Find(&campaigns).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	campaigns, info := pagination.BuildPageInfo(campaigns, size, func(c *domain.Campaign) pagination.Cursor {
		return pagination.Cursor{ID: c.ID.String(), CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano)}
	})
	return campaigns, info, nil
}

func (r *repo) InsertContribution(ctx context.Context, db *gorm.DB, contribution *domain.Contribution) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaign_contributions (id, campaign_id, donor_name, donor_email,
		   amount, currency, base_amount, reference, note, anonymous, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contribution.ID,
		contribution.CampaignID,
		contribution.DonorName,
		contribution.DonorEmail,
		contribution.Amount,
		contribution.Currency,
		contribution.BaseAmount,
		contribution.Reference,
		contribution.Note,
		contribution.Anonymous,
		contribution.Source,
		contribution.CreatedAt,
	).Error
}

// CountDistinctDonors counts unique donor emails plus one per
// anonymous contribution, so repeat donors count once and anonymous
// gifts are never collapsed together.
func (r *repo) CountDistinctDonors(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT NULLIF(donor_email, ''))
		   + COALESCE(SUM(CASE WHEN donor_email = '' OR donor_email IS NULL THEN 1 ELSE 0 END), 0)
		 FROM campaign_contributions
		 WHERE campaign_id = ?`,
		campaignID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) IncrementAggregates(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, baseAmount float64, donorCount int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns
		 SET raised_amount = raised_amount + ?, donor_count = ?, updated_at = ?
		 WHERE id = ?`,
		baseAmount,
		donorCount,
		time.Now().UTC(),
		campaignID,
	).Error
}

func (r *repo) ListContributions(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, page pagination.Pagination) ([]*domain.Contribution, pagination.PageInfo, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Contribution{}).
		Where("campaign_id = ?", campaignID)

	stmt, size, err := pagination.Apply(stmt, page, "created_at")
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var contributions []*domain.Contribution
	if err := stmt.Order("created_at desc, id desc").Find(&contributions).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	contributions, info := pagination.BuildPageInfo(contributions, size, func(c *domain.Contribution) pagination.Cursor {
		return pagination.Cursor{ID: c.ID.String(), CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano)}
	})
	return contributions, info, nil
}
