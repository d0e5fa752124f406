package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive    = "active"
	StatusUrgent    = "urgent"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is one of the campaign lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusUrgent, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Campaign is a fundraising appeal. RaisedAmount and DonorCount are
// denormalized aggregates maintained by ApplyContribution; Currency is
// the display currency all contributions are converted into before
// they are summed.
type Campaign struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug         string       `gorm:"uniqueIndex;not null" json:"slug"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `json:"description,omitempty"`
	Story        string       `json:"story,omitempty"`
	Category     string       `gorm:"index" json:"category,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	TargetAmount float64      `gorm:"not null" json:"target_amount"`
	RaisedAmount float64      `gorm:"not null;default:0" json:"raised_amount"`
	DonorCount   int64        `gorm:"not null;default:0" json:"donor_count"`
	Currency     string       `gorm:"not null" json:"currency"`
	Status       string       `gorm:"not null;default:'active';index" json:"status"`
	EndsAt       *time.Time   `json:"ends_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

// Archived campaigns may no longer receive checkout traffic.
func (c Campaign) AcceptsDonations() bool { return c.Status != StatusArchived }

const (
	ContributionSourceGateway = "paystack"
	ContributionSourceManual  = "manual"
)

// Contribution is one donation's effect on one campaign. Amount and
// Currency are the donor-facing figures; BaseAmount is the same value
// converted to the campaign's display currency at write time, so the
// campaign aggregate stays a sum over a single currency.
type Contribution struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CampaignID snowflake.ID `gorm:"not null;index" json:"campaign_id"`
	DonorName  string       `json:"donor_name,omitempty"`
	DonorEmail string       `gorm:"index" json:"donor_email,omitempty"`
	Amount     float64      `gorm:"not null" json:"amount"`
	Currency   string       `gorm:"not null" json:"currency"`
	BaseAmount float64      `gorm:"not null" json:"base_amount"`
	Reference  string       `gorm:"index" json:"reference,omitempty"`
	Note       string       `json:"note,omitempty"`
	Anonymous  bool         `gorm:"not null;default:false" json:"anonymous"`
	Source     string       `gorm:"not null" json:"source"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Contribution) TableName() string { return "campaign_contributions" }
