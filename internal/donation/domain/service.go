package domain

import (
	"context"
	"errors"

	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

var (
	ErrInvalidCharge = errors.New("invalid_charge")
	ErrNotFound      = errors.New("not_found")
)

// RecordResult reports what the reconciler did with a charge.
// Duplicate means the reference was already recorded and nothing was
// written.
type RecordResult struct {
	Duplicate bool
	Donation  Donation
}

type ListDonationRequest struct {
	PageToken  string
	PageSize   int
	CampaignID string
	Email      string
	Status     string
}

type ListDonationResponse struct {
	pagination.PageInfo
	Donations []*Donation `json:"donations"`
}

type Service interface {
	// RecordCharge runs the webhook reconciliation pipeline for a
	// verified charge. Only a failed donation insert returns an error;
	// contribution, newsletter, and receipt failures are logged and
	// swallowed so the gateway never redelivers a recorded charge.
	RecordCharge(ctx context.Context, charge Charge) (RecordResult, error)
	ResendReceipt(ctx context.Context, reference string) error
	List(context.Context, ListDonationRequest) (ListDonationResponse, error)
}
