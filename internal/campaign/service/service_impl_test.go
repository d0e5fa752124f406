package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	"github.com/amainooti/Zakat-foundation/internal/campaign/repository"
	"github.com/amainooti/Zakat-foundation/internal/campaign/service"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	"github.com/amainooti/Zakat-foundation/pkg/db/pagination"
)

var schema = []string{
	`CREATE TABLE campaigns (
		id INTEGER PRIMARY KEY,
		slug TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		story TEXT,
		category TEXT,
		image_url TEXT,
		target_amount REAL NOT NULL,
		raised_amount REAL NOT NULL DEFAULT 0,
		donor_count INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		ends_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_campaigns_slug ON campaigns(slug)`,
	`CREATE TABLE campaign_contributions (
		id INTEGER PRIMARY KEY,
		campaign_id INTEGER NOT NULL,
		donor_name TEXT,
		donor_email TEXT,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		base_amount REAL NOT NULL,
		reference TEXT,
		note TEXT,
		anonymous INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	for _, stmt := range schema {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return gdb
}

func newService(t *testing.T) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return service.NewService(service.Params{
		DB:        setupTestDB(t),
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Converter: currency.NewConverter("NGN", "USD", nil),
	})
}

func createCampaign(t *testing.T, svc domain.Service, title string) domain.Campaign {
	t.Helper()

	campaign, err := svc.Create(context.Background(), domain.CreateCampaignRequest{
		Title:        title,
		TargetAmount: 10000,
		Currency:     "USD",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return campaign
}

func TestCreateCampaign(t *testing.T) {
	svc := newService(t)

	campaign := createCampaign(t, svc, "Emergency Water Wells")
	if campaign.Slug != "emergency-water-wells" {
		t.Errorf("slug = %q", campaign.Slug)
	}
	if campaign.Status != domain.StatusActive {
		t.Errorf("status = %q, want default active", campaign.Status)
	}
	if campaign.RaisedAmount != 0 || campaign.DonorCount != 0 {
		t.Errorf("aggregates = %v/%d, want zero", campaign.RaisedAmount, campaign.DonorCount)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, domain.CreateCampaignRequest{TargetAmount: 100}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Errorf("missing title: got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateCampaignRequest{Title: "Ab", TargetAmount: 100}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Errorf("short title: got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateCampaignRequest{Title: "Relief"}); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("missing target: got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateCampaignRequest{Title: "Relief", TargetAmount: 100, Status: "paused"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("bad status: got %v", err)
	}
}

func TestCreateCampaignDuplicateSlug(t *testing.T) {
	svc := newService(t)

	createCampaign(t, svc, "Winter Relief")
	if _, err := svc.Create(context.Background(), domain.CreateCampaignRequest{
		Title:        "Winter Relief",
		TargetAmount: 5000,
	}); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("got %v, want ErrSlugTaken", err)
	}
}

func TestUpdateCampaign(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	campaign := createCampaign(t, svc, "School Kits")

	title := "School Kits 2026"
	status := domain.StatusUrgent
	updated, err := svc.Update(ctx, domain.UpdateCampaignRequest{
		ID:     campaign.ID.String(),
		Title:  &title,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Status != domain.StatusUrgent {
		t.Errorf("status = %q", updated.Status)
	}
	// The slug is fixed at creation so published links keep working.
	if updated.Slug != campaign.Slug {
		t.Errorf("slug changed to %q", updated.Slug)
	}

	bad := "paused"
	if _, err := svc.Update(ctx, domain.UpdateCampaignRequest{ID: campaign.ID.String(), Status: &bad}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("bad status: got %v", err)
	}
	if _, err := svc.Update(ctx, domain.UpdateCampaignRequest{ID: "999999999999", Title: &title}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
}

func TestApplyContributionAggregates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	campaign := createCampaign(t, svc, "Food Baskets")

	apply := func(email string, amount float64, code string) {
		t.Helper()
		if err := svc.ApplyContribution(ctx, domain.ApplyContributionRequest{
			CampaignID: campaign.ID,
			DonorEmail: email,
			Amount:     amount,
			Currency:   code,
			Reference:  fmt.Sprintf("ref_%s_%v", email, amount),
		}); err != nil {
			t.Fatalf("apply contribution: %v", err)
		}
	}

	apply("amina@example.com", 50, "USD")
	apply("amina@example.com", 25, "USD")
	apply("tariq@example.com", 10, "GBP")

	updated, err := svc.GetByID(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	// £10 at the static cross rate is $12.70.
	if updated.RaisedAmount != 87.70 {
		t.Errorf("raised_amount = %v, want 87.70", updated.RaisedAmount)
	}
	if updated.DonorCount != 2 {
		t.Errorf("donor_count = %d, want repeat donors counted once", updated.DonorCount)
	}
}

func TestApplyContributionAnonymousDonors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	campaign := createCampaign(t, svc, "Orphan Support")

	for i := 0; i < 2; i++ {
		if err := svc.ApplyContribution(ctx, domain.ApplyContributionRequest{
			CampaignID: campaign.ID,
			DonorName:  "Someone",
			Amount:     20,
			Currency:   "USD",
			Anonymous:  true,
		}); err != nil {
			t.Fatalf("apply contribution: %v", err)
		}
	}

	updated, err := svc.GetByID(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if updated.DonorCount != 2 {
		t.Errorf("donor_count = %d, want each anonymous gift counted", updated.DonorCount)
	}

	page, err := svc.ListContributions(ctx, campaign.ID.String(), pagination.Pagination{PageSize: 10})
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	for _, c := range page.Contributions {
		if c.DonorName != "" || c.DonorEmail != "" {
			t.Errorf("anonymous contribution leaked donor identity: %+v", c)
		}
	}
}

func TestApplyContributionValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	campaign := createCampaign(t, svc, "Medical Aid")

	if err := svc.ApplyContribution(ctx, domain.ApplyContributionRequest{
		DonorEmail: "a@b.org", Amount: 10, Currency: "USD",
	}); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("missing campaign: got %v", err)
	}
	if err := svc.ApplyContribution(ctx, domain.ApplyContributionRequest{
		CampaignID: campaign.ID, Currency: "USD",
	}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v", err)
	}
	if err := svc.ApplyContribution(ctx, domain.ApplyContributionRequest{
		CampaignID: campaign.ID, Amount: 10,
	}); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Errorf("missing currency: got %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	campaign := createCampaign(t, svc, "Water Wells")

	found, err := svc.GetBySlug(ctx, campaign.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if found.ID != campaign.ID {
		t.Errorf("id = %v, want %v", found.ID, campaign.ID)
	}

	if _, err := svc.GetBySlug(ctx, "no-such-campaign"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown slug: got %v", err)
	}
}

func TestListCampaignsFilter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, c := range []struct{ title, category string }{
		{"Water Wells", "water"},
		{"Food Baskets", "food"},
		{"School Kits", "education"},
	} {
		if _, err := svc.Create(ctx, domain.CreateCampaignRequest{
			Title:        c.title,
			Category:     c.category,
			TargetAmount: 1000,
		}); err != nil {
			t.Fatalf("create campaign: %v", err)
		}
	}

	resp, err := svc.List(ctx, domain.ListCampaignRequest{Category: "water", PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Campaigns) != 1 || resp.Campaigns[0].Category != "water" {
		t.Errorf("filtered list = %+v", resp.Campaigns)
	}

	all, err := svc.List(ctx, domain.ListCampaignRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Campaigns) != 3 {
		t.Errorf("campaigns = %d, want 3", len(all.Campaigns))
	}
}
