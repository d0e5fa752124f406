package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type Repository interface {
	// InsertIfAbsent adds a subscriber unless the email is already
	// known, in any state. Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, subscriber *Subscriber) (bool, error)
	// Upsert adds or revives a subscriber, clearing any prior
	// unsubscription and refreshing the name when one is given.
	Upsert(ctx context.Context, db *gorm.DB, subscriber *Subscriber) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Subscriber, error)
	MarkUnsubscribed(ctx context.Context, db *gorm.DB, email string) (bool, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool, page pagination.Pagination) ([]*Subscriber, pagination.PageInfo, error)
}
