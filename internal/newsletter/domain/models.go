package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	SourceDonation = "donation"
	SourceFooter   = "footer"
)

type Subscriber struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Email          string       `gorm:"uniqueIndex;not null" json:"email"`
	Name           string       `json:"name,omitempty"`
	Source         string       `gorm:"not null" json:"source"`
	SubscribedAt   time.Time    `gorm:"not null" json:"subscribed_at"`
	UnsubscribedAt *time.Time   `json:"unsubscribed_at,omitempty"`
}

func (Subscriber) TableName() string { return "newsletter_subscribers" }

func (s Subscriber) Active() bool { return s.UnsubscribedAt == nil }
