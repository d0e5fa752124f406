package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/donation/domain"
	"github.com/amainooti/Zakat-foundation/pkg/db"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, donation *domain.Donation) (bool, error) {
	result := gdb.WithContext(ctx).Exec(
		`INSERT INTO donations (id, reference, email, donor_name, amount, currency, campaign_id,
		   is_recurring, plan_code, newsletter_opt_in, status, receipt_sent, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (reference) DO NOTHING`,
		donation.ID,
		donation.Reference,
		donation.Email,
		donation.DonorName,
		donation.Amount,
		donation.Currency,
		donation.CampaignID,
		donation.IsRecurring,
		donation.PlanCode,
		donation.NewsletterOptIn,
		donation.Status,
		donation.ReceiptSent,
		donation.Payload,
		donation.CreatedAt,
	)
	if result.Error != nil {
		if db.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByReference(ctx context.Context, gdb *gorm.DB, reference string) (*domain.Donation, error) {
	var donation domain.Donation
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM donations WHERE reference = ?`,
		reference,
	).Scan(&donation).Error
	if err != nil {
		return nil, err
	}
	if donation.ID == 0 {
		return nil, nil
	}
	return &donation, nil
}

func (r *repo) MarkReceiptSent(ctx context.Context, gdb *gorm.DB, id snowflake.ID) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE donations SET receipt_sent = ? WHERE id = ?`,
		true,
		id,
	).Error
}

func (r *repo) List(ctx context.Context, gdb *gorm.DB, filter domain.ListDonationFilter, page pagination.Pagination) ([]*domain.Donation, pagination.PageInfo, error) {
	stmt := gdb.WithContext(ctx).Model(&domain.Donation{})
	if filter.CampaignID != nil {
		stmt = stmt.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt, size, err := pagination.Apply(stmt, page, "created_at")
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var donations []*domain.Donation
	if err := stmt.Order("created_at desc, id desc").Find(&donations).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	donations, info := pagination.BuildPageInfo(donations, size, func(d *domain.Donation) pagination.Cursor {
		return pagination.Cursor{ID: d.ID.String(), CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339Nano)}
	})
	return donations, info, nil
}
