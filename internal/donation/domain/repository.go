package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type ListDonationFilter struct {
	CampaignID *snowflake.ID
	Email      string
	Status     string
}

type Repository interface {
	// Insert writes the donation, relying on the unique reference
	// constraint to reject a concurrent duplicate. Returns false when
	// the row already existed.
	Insert(ctx context.Context, db *gorm.DB, donation *Donation) (bool, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Donation, error)
	MarkReceiptSent(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	List(ctx context.Context, db *gorm.DB, filter ListDonationFilter, page pagination.Pagination) ([]*Donation, pagination.PageInfo, error)
}
