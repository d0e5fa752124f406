package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// Donation is the financial record of a verified charge. Amount and
// Currency are donor-facing; the settlement figures live only in the
// raw payload. Rows are written exactly once per gateway reference and
// afterwards only the receipt flag may change.
type Donation struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	Reference       string         `gorm:"uniqueIndex;not null" json:"reference"`
	Email           string         `gorm:"index" json:"email,omitempty"`
	DonorName       string         `json:"donor_name,omitempty"`
	Amount          float64        `gorm:"not null" json:"amount"`
	Currency        string         `gorm:"not null" json:"currency"`
	CampaignID      *snowflake.ID  `gorm:"index" json:"campaign_id,omitempty"`
	IsRecurring     bool           `gorm:"not null;default:false" json:"is_recurring"`
	PlanCode        string         `json:"plan_code,omitempty"`
	NewsletterOptIn bool           `gorm:"not null;default:false" json:"newsletter_opt_in"`
	Status          string         `gorm:"not null" json:"status"`
	ReceiptSent     bool           `gorm:"not null;default:false" json:"receipt_sent"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt       time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Donation) TableName() string { return "donations" }

// Charge is the canonical successful-charge event handed to the
// reconciler after signature verification and payload narrowing.
// Amount is the settlement-currency smallest unit reported by the
// gateway; the Original* fields, when set, carry the figures the donor
// actually saw at checkout.
type Charge struct {
	Reference         string
	Amount            int64
	Currency          string
	CustomerEmail     string
	CustomerFirstName string
	CustomerLastName  string
	PlanCode          string

	OriginalAmount   float64
	OriginalCurrency string
	CampaignID       string
	CampaignSlug     string
	DonorName        string
	IsRecurring      bool
	NewsletterOptIn  bool

	Raw []byte
}
