package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidTarget   = errors.New("invalid_target")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidCurrency = errors.New("invalid_currency")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidID       = errors.New("invalid_id")
	ErrSlugTaken       = errors.New("slug_taken")
	ErrNotFound        = errors.New("not_found")
)

type CreateCampaignRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Story        string     `json:"story"`
	Category     string     `json:"category"`
	ImageURL     string     `json:"image_url"`
	TargetAmount float64    `json:"target_amount"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status"`
	EndsAt       *time.Time `json:"ends_at"`
}

type UpdateCampaignRequest struct {
	ID           string     `json:"-"`
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Story        *string    `json:"story"`
	Category     *string    `json:"category"`
	ImageURL     *string    `json:"image_url"`
	TargetAmount *float64   `json:"target_amount"`
	Status       *string    `json:"status"`
	EndsAt       *time.Time `json:"ends_at"`
}

type ListCampaignRequest struct {
	PageToken string
	PageSize  int
	Category  string
	Status    string
}

type ListCampaignFilter struct {
	Category string
	Status   string
}

type ListCampaignResponse struct {
	pagination.PageInfo
	Campaigns []*Campaign `json:"campaigns"`
}

// ApplyContributionRequest records one donation against one campaign.
// Amount/Currency are donor-facing; the service converts them into the
// campaign's display currency before updating aggregates.
type ApplyContributionRequest struct {
	CampaignID snowflake.ID
	DonorName  string
	DonorEmail string
	Amount     float64
	Currency   string
	Reference  string
	Note       string
	Anonymous  bool
	Source     string
}

type ListContributionsResponse struct {
	pagination.PageInfo
	Contributions []*Contribution `json:"contributions"`
}

type Service interface {
	Create(context.Context, CreateCampaignRequest) (Campaign, error)
	Update(context.Context, UpdateCampaignRequest) (Campaign, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	GetBySlug(ctx context.Context, slug string) (Campaign, error)
	List(context.Context, ListCampaignRequest) (ListCampaignResponse, error)
	ApplyContribution(context.Context, ApplyContributionRequest) error
	ListContributions(ctx context.Context, campaignID string, page pagination.Pagination) (ListContributionsResponse, error)
}
