package domain

import (
	"context"
	"errors"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)

type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type ListSubscribersResponse struct {
	pagination.PageInfo
	Subscribers []*Subscriber `json:"subscribers"`
}

type Service interface {
	// Subscribe is the site-footer path: it re-subscribes an address
	// that previously unsubscribed.
	Subscribe(context.Context, SubscribeRequest) (Subscriber, error)
	// OptInFromDonation is the checkout opt-in path: it only ever adds
	// a new address and never overrides an unsubscription.
	OptInFromDonation(ctx context.Context, email, name string) error
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool, page pagination.Pagination) (ListSubscribersResponse, error)
}
