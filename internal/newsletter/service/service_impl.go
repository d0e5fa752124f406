package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/newsletter/domain"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("newsletter.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func normalizeEmail(raw string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", domain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(cleaned); err != nil {
		return "", domain.ErrInvalidEmail
	}
	return cleaned, nil
}

func (s *service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (domain.Subscriber, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Subscriber{}, err
	}

	subscriber := domain.Subscriber{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Source:       domain.SourceFooter,
		SubscribedAt: time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, s.db, &subscriber); err != nil {
		return domain.Subscriber{}, err
	}

	stored, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Subscriber{}, err
	}
	if stored == nil {
		return subscriber, nil
	}

	s.log.Info("newsletter subscription", zap.String("source", domain.SourceFooter))
	return *stored, nil
}

func (s *service) OptInFromDonation(ctx context.Context, rawEmail, name string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, &domain.Subscriber{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Source:       domain.SourceDonation,
		SubscribedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if inserted {
		s.log.Info("newsletter subscription", zap.String("source", domain.SourceDonation))
	}
	return nil
}

func (s *service) Unsubscribe(ctx context.Context, rawEmail string) error {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	updated, err := s.repo.MarkUnsubscribed(ctx, s.db, email)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

func (s *service) List(ctx context.Context, activeOnly bool, page pagination.Pagination) (domain.ListSubscribersResponse, error) {
	subscribers, info, err := s.repo.List(ctx, s.db, activeOnly, page)
	if err != nil {
		return domain.ListSubscribersResponse{}, err
	}
	return domain.ListSubscribersResponse{PageInfo: info, Subscribers: subscribers}, nil
}
