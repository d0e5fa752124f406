package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/newsletter/domain"
	"github.com/amainooti/Zakat-foundation/pkg/db"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, gdb *gorm.DB, subscriber *domain.Subscriber) (bool, error) {
	err := gdb.WithContext(ctx).Exec(
		`INSERT INTO newsletter_subscribers (id, email, name, source, subscribed_at, unsubscribed_at)
		 VALUES (?, ?, ?, ?, ?, NULL)
		 ON CONFLICT (email) DO NOTHING`,
		subscriber.ID,
		subscriber.Email,
		subscriber.Name,
		subscriber.Source,
		subscriber.SubscribedAt,
	).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}

	existing, err := r.FindByEmail(ctx, gdb, subscriber.Email)
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID == subscriber.ID, nil
}

func (r *repo) Upsert(ctx context.Context, gdb *gorm.DB, subscriber *domain.Subscriber) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO newsletter_subscribers (id, email, name, source, subscribed_at, unsubscribed_at)
		 VALUES (?, ?, ?, ?, ?, NULL)
		 ON CONFLICT (email) DO UPDATE SET
		   name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE newsletter_subscribers.name END,
		   source = excluded.source,
		   subscribed_at = excluded.subscribed_at,
		   unsubscribed_at = NULL`,
		subscriber.ID,
		subscriber.Email,
		subscriber.Name,
		subscriber.Source,
		subscriber.SubscribedAt,
	).Error
}

func (r *repo) FindByEmail(ctx context.Context, gdb *gorm.DB, email string) (*domain.Subscriber, error) {
	var subscriber domain.Subscriber
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM newsletter_subscribers WHERE email = ?`,
		email,
	).Scan(&subscriber).Error
	if err != nil {
		return nil, err
	}
	if subscriber.ID == 0 {
		return nil, nil
	}
	return &subscriber, nil
}

func (r *repo) MarkUnsubscribed(ctx context.Context, gdb *gorm.DB, email string) (bool, error) {
	result := gdb.WithContext(ctx).Exec(
		`UPDATE newsletter_subscribers
		 SET unsubscribed_at = ?
		 WHERE email = ? AND unsubscribed_at IS NULL`,
		time.Now().UTC(),
		email,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, gdb *gorm.DB, activeOnly bool, page pagination.Pagination) ([]*domain.Subscriber, pagination.PageInfo, error) {
	stmt := gdb.WithContext(ctx).Model(&domain.Subscriber{})
	if activeOnly {
		stmt = stmt.Where("unsubscribed_at IS NULL")
	}

	stmt, size, err := pagination.Apply(stmt, page, "subscribed_at")
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	var subscribers []*domain.Subscriber
	if err := stmt.Order("subscribed_at desc, id desc").Find(&subscribers).Error; err != nil {
		return nil, pagination.PageInfo{}, err
	}

	subscribers, info := pagination.BuildPageInfo(subscribers, size, func(s *domain.Subscriber) pagination.Cursor {
		return pagination.Cursor{ID: s.ID.String(), CreatedAt: s.SubscribedAt.UTC().Format(time.RFC3339Nano)}
	})
	return subscribers, info, nil
}
