package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	Update(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, filter ListCampaignFilter, page pagination.Pagination) ([]*Campaign, pagination.PageInfo, error)

	InsertContribution(ctx context.Context, db *gorm.DB, contribution *Contribution) error
	CountDistinctDonors(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) (int64, error)
	IncrementAggregates(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, baseAmount float64, donorCount int64) error
	ListContributions(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, page pagination.Pagination) ([]*Contribution, pagination.PageInfo, error)
}
