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

	campaigndomain "github.com/amainooti/Zakat-foundation/internal/campaign/domain"
	campaignrepo "github.com/amainooti/Zakat-foundation/internal/campaign/repository"
	campaignservice "github.com/amainooti/Zakat-foundation/internal/campaign/service"
	"github.com/amainooti/Zakat-foundation/internal/currency"
	"github.com/amainooti/Zakat-foundation/internal/donation/domain"
	"github.com/amainooti/Zakat-foundation/internal/donation/repository"
	"github.com/amainooti/Zakat-foundation/internal/donation/service"
	newsletterrepo "github.com/amainooti/Zakat-foundation/internal/newsletter/repository"
	newsletterservice "github.com/amainooti/Zakat-foundation/internal/newsletter/service"
	"github.com/amainooti/Zakat-foundation/internal/receipt"
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
	`CREATE TABLE donations (
		id INTEGER PRIMARY KEY,
		reference TEXT NOT NULL,
		email TEXT,
		donor_name TEXT,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		campaign_id INTEGER,
		is_recurring INTEGER NOT NULL DEFAULT 0,
		plan_code TEXT NOT NULL DEFAULT '',
		newsletter_opt_in INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		receipt_sent INTEGER NOT NULL DEFAULT 0,
		payload TEXT,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX idx_donations_reference ON donations(reference)`,
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
	`CREATE TABLE newsletter_subscribers (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT,
		source TEXT NOT NULL,
		subscribed_at DATETIME NOT NULL,
		unsubscribed_at DATETIME
	)`,
	`CREATE UNIQUE INDEX idx_newsletter_subscribers_email ON newsletter_subscribers(email)`,
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

type fakeDispatcher struct {
	sent []receipt.Receipt
	fail error
}

func (f *fakeDispatcher) SendReceipt(_ context.Context, r receipt.Receipt) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, r)
	return nil
}

type fixture struct {
	db          *gorm.DB
	svc         domain.Service
	campaignSvc campaigndomain.Service
	dispatcher  *fakeDispatcher
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRepo(t, repository.Provide())
}

func newFixtureWithRepo(t *testing.T, donationRepo domain.Repository) *fixture {
	t.Helper()

	gdb := setupTestDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	log := zap.NewNop()
	converter := currency.NewConverter("NGN", "USD", nil)

	campaignSvc := campaignservice.NewService(campaignservice.Params{
		DB:        gdb,
		Log:       log,
		GenID:     node,
		Repo:      campaignrepo.Provide(),
		Converter: converter,
	})
	newsletterSvc := newsletterservice.NewService(newsletterservice.Params{
		DB:    gdb,
		Log:   log,
		GenID: node,
		Repo:  newsletterrepo.Provide(),
	})
	dispatcher := &fakeDispatcher{}
	svc := service.NewService(service.Params{
		DB:            gdb,
		Log:           log,
		GenID:         node,
		Repo:          donationRepo,
		CampaignSvc:   campaignSvc,
		NewsletterSvc: newsletterSvc,
		Receipts:      dispatcher,
		Converter:     converter,
	})

	return &fixture{db: gdb, svc: svc, campaignSvc: campaignSvc, dispatcher: dispatcher}
}

func (f *fixture) createCampaign(t *testing.T, title string) campaigndomain.Campaign {
	t.Helper()

	campaign, err := f.campaignSvc.Create(context.Background(), campaigndomain.CreateCampaignRequest{
		Title:        title,
		TargetAmount: 10000,
		Currency:     "USD",
	})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return campaign
}

func (f *fixture) countRows(t *testing.T, query string, args ...any) int64 {
	t.Helper()

	var count int64
	if err := f.db.Raw(query, args...).Scan(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func campaignCharge(campaign campaigndomain.Campaign) domain.Charge {
	return domain.Charge{
		Reference:         "ref_happy_1",
		Amount:            8000000,
		Currency:          "NGN",
		CustomerEmail:     "Amina@Example.com",
		CustomerFirstName: "Amina",
		CustomerLastName:  "Yusuf",
		OriginalAmount:    50,
		OriginalCurrency:  "USD",
		CampaignID:        campaign.ID.String(),
		CampaignSlug:      campaign.Slug,
		DonorName:         "Amina Yusuf",
		NewsletterOptIn:   true,
		Raw:               []byte(`{"event":"charge.success"}`),
	}
}

func TestRecordChargeHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.createCampaign(t, "Water Wells")

	result, err := f.svc.RecordCharge(ctx, campaignCharge(campaign))
	if err != nil {
		t.Fatalf("record charge: %v", err)
	}
	if result.Duplicate {
		t.Fatal("first delivery must not be a duplicate")
	}

	donation := result.Donation
	if donation.Amount != 50 {
		t.Errorf("amount = %v, want donor-facing 50", donation.Amount)
	}
	if donation.Currency != "USD" {
		t.Errorf("currency = %q, want donor-facing USD", donation.Currency)
	}
	if donation.Email != "amina@example.com" {
		t.Errorf("email = %q, want lowercased", donation.Email)
	}
	if donation.CampaignID == nil || *donation.CampaignID != campaign.ID {
		t.Errorf("campaign id = %v, want %v", donation.CampaignID, campaign.ID)
	}
	if donation.Status != domain.StatusCompleted {
		t.Errorf("status = %q", donation.Status)
	}
	if !donation.ReceiptSent {
		t.Error("expected receipt flag set after dispatch")
	}

	if len(f.dispatcher.sent) != 1 {
		t.Fatalf("receipts sent = %d, want 1", len(f.dispatcher.sent))
	}
	if got := f.dispatcher.sent[0]; got.To != "amina@example.com" || got.CampaignTitle != "Water Wells" {
		t.Errorf("receipt = %+v", got)
	}

	updated, err := f.campaignSvc.GetByID(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if updated.RaisedAmount != 50 {
		t.Errorf("raised_amount = %v, want 50", updated.RaisedAmount)
	}
	if updated.DonorCount != 1 {
		t.Errorf("donor_count = %d, want 1", updated.DonorCount)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM campaign_contributions WHERE campaign_id = ?`, campaign.ID); n != 1 {
		t.Errorf("contribution rows = %d, want 1", n)
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM newsletter_subscribers WHERE email = ?`, "amina@example.com"); n != 1 {
		t.Errorf("subscriber rows = %d, want 1", n)
	}
}

func TestRecordChargeDuplicateDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.createCampaign(t, "Orphan Support")
	charge := campaignCharge(campaign)

	first, err := f.svc.RecordCharge(ctx, charge)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	second, err := f.svc.RecordCharge(ctx, charge)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("expected duplicate result on redelivery")
	}
	if second.Donation.ID != first.Donation.ID {
		t.Errorf("duplicate returned a different donation: %v vs %v", second.Donation.ID, first.Donation.ID)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM donations WHERE reference = ?`, charge.Reference); n != 1 {
		t.Errorf("donation rows = %d, want 1", n)
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM campaign_contributions WHERE campaign_id = ?`, campaign.ID); n != 1 {
		t.Errorf("contribution rows = %d, want 1", n)
	}

	updated, err := f.campaignSvc.GetByID(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if updated.RaisedAmount != 50 {
		t.Errorf("raised_amount = %v, want 50 after redelivery", updated.RaisedAmount)
	}
	if len(f.dispatcher.sent) != 1 {
		t.Errorf("receipts sent = %d, want 1", len(f.dispatcher.sent))
	}
}

func TestRecordChargeGeneralFund(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.RecordCharge(context.Background(), domain.Charge{
		Reference:        "ref_general_1",
		Amount:           1600000,
		Currency:         "NGN",
		CustomerEmail:    "tariq@example.com",
		OriginalAmount:   10,
		OriginalCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("record charge: %v", err)
	}
	if result.Donation.CampaignID != nil {
		t.Errorf("campaign id = %v, want nil for general fund", result.Donation.CampaignID)
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM campaign_contributions`); n != 0 {
		t.Errorf("contribution rows = %d, want 0", n)
	}
	if len(f.dispatcher.sent) != 1 {
		t.Errorf("receipts sent = %d, want 1", len(f.dispatcher.sent))
	}
}

func TestRecordChargeMissingCampaign(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.RecordCharge(context.Background(), domain.Charge{
		Reference:        "ref_stale_1",
		Amount:           1600000,
		Currency:         "NGN",
		CustomerEmail:    "sara@example.com",
		OriginalAmount:   10,
		OriginalCurrency: "USD",
		CampaignID:       "999999999999",
	})
	if err != nil {
		t.Fatalf("a stale campaign must not block the donation: %v", err)
	}
	if result.Donation.CampaignID != nil {
		t.Errorf("campaign id = %v, want nil when campaign is gone", result.Donation.CampaignID)
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM donations WHERE reference = ?`, "ref_stale_1"); n != 1 {
		t.Errorf("donation rows = %d, want 1", n)
	}
}

func TestRecordChargeReceiptFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	campaign := f.createCampaign(t, "Food Baskets")
	f.dispatcher.fail = errors.New("smtp unavailable")

	result, err := f.svc.RecordCharge(ctx, campaignCharge(campaign))
	if err != nil {
		t.Fatalf("receipt failure must not fail the charge: %v", err)
	}
	if result.Donation.ReceiptSent {
		t.Error("receipt flag must stay false when dispatch fails")
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM donations WHERE reference = ?`, result.Donation.Reference); n != 1 {
		t.Errorf("donation rows = %d, want 1", n)
	}
	updated, err := f.campaignSvc.GetByID(ctx, campaign.ID.String())
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if updated.RaisedAmount != 50 {
		t.Errorf("raised_amount = %v, want 50 despite receipt failure", updated.RaisedAmount)
	}
}

func TestRecordChargeSettlementFallback(t *testing.T) {
	f := newFixture(t)

	// No metadata round-trip: the only figures are the gateway's own
	// settlement amount in kobo.
	result, err := f.svc.RecordCharge(context.Background(), domain.Charge{
		Reference:     "ref_fallback_1",
		Amount:        1600000,
		Currency:      "NGN",
		CustomerEmail: "musa@example.com",
	})
	if err != nil {
		t.Fatalf("record charge: %v", err)
	}
	if result.Donation.Amount != 16000 {
		t.Errorf("amount = %v, want 16000 from smallest unit", result.Donation.Amount)
	}
	if result.Donation.Currency != "NGN" {
		t.Errorf("currency = %q, want settlement NGN", result.Donation.Currency)
	}
}

func TestRecordChargeRecurringFromPlanCode(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.RecordCharge(context.Background(), domain.Charge{
		Reference:     "ref_plan_1",
		Amount:        1600000,
		Currency:      "NGN",
		CustomerEmail: "zainab@example.com",
		PlanCode:      "PLN_monthly",
	})
	if err != nil {
		t.Fatalf("record charge: %v", err)
	}
	if !result.Donation.IsRecurring {
		t.Error("a plan code on the charge must mark the donation recurring")
	}
	if result.Donation.PlanCode != "PLN_monthly" {
		t.Errorf("plan code = %q, want persisted on the donation", result.Donation.PlanCode)
	}

	var stored string
	if err := f.db.Raw(`SELECT plan_code FROM donations WHERE reference = ?`, "ref_plan_1").Scan(&stored).Error; err != nil {
		t.Fatalf("load plan code: %v", err)
	}
	if stored != "PLN_monthly" {
		t.Errorf("stored plan code = %q", stored)
	}
}

func TestRecordChargeNoEmail(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.RecordCharge(context.Background(), domain.Charge{
		Reference:        "ref_anon_1",
		Amount:           1600000,
		Currency:         "NGN",
		OriginalAmount:   10,
		OriginalCurrency: "USD",
		NewsletterOptIn:  true,
	})
	if err != nil {
		t.Fatalf("record charge: %v", err)
	}
	if result.Donation.ReceiptSent {
		t.Error("no recipient, no receipt")
	}
	if len(f.dispatcher.sent) != 0 {
		t.Errorf("receipts sent = %d, want 0", len(f.dispatcher.sent))
	}
	if n := f.countRows(t, `SELECT COUNT(*) FROM newsletter_subscribers`); n != 0 {
		t.Errorf("subscriber rows = %d, want 0 without an email", n)
	}
}

func TestRecordChargeRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.RecordCharge(context.Background(), domain.Charge{Amount: 100}); !errors.Is(err, domain.ErrInvalidCharge) {
		t.Fatalf("missing reference: got %v, want ErrInvalidCharge", err)
	}
	if _, err := f.svc.RecordCharge(context.Background(), domain.Charge{Reference: "ref_x"}); !errors.Is(err, domain.ErrInvalidCharge) {
		t.Fatalf("zero amount: got %v, want ErrInvalidCharge", err)
	}
}

// staleLookupRepo delegates to the real repository but reports one
// forced miss from FindByReference, simulating a concurrent delivery
// committing the row between this delivery's lookup and its insert.
type staleLookupRepo struct {
	domain.Repository
	missNext bool
}

func (r *staleLookupRepo) FindByReference(ctx context.Context, gdb *gorm.DB, reference string) (*domain.Donation, error) {
	if r.missNext {
		r.missNext = false
		return nil, nil
	}
	return r.Repository.FindByReference(ctx, gdb, reference)
}

func TestRecordChargeInsertRace(t *testing.T) {
	repo := &staleLookupRepo{Repository: repository.Provide()}
	f := newFixtureWithRepo(t, repo)
	ctx := context.Background()

	charge := domain.Charge{
		Reference:        "ref_race_1",
		Amount:           1600000,
		Currency:         "NGN",
		CustomerEmail:    "amina@example.com",
		OriginalAmount:   10,
		OriginalCurrency: "USD",
	}
	first, err := f.svc.RecordCharge(ctx, charge)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	receiptsBefore := len(f.dispatcher.sent)

	// Redeliver with the lookup blinded: the insert hits the unique
	// reference constraint and must resolve to the duplicate path.
	repo.missNext = true
	second, err := f.svc.RecordCharge(ctx, charge)
	if err != nil {
		t.Fatalf("racing delivery: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("expected the lost insert race to report a duplicate")
	}
	if second.Donation.ID != first.Donation.ID {
		t.Errorf("race returned a different donation: %v vs %v", second.Donation.ID, first.Donation.ID)
	}

	if n := f.countRows(t, `SELECT COUNT(*) FROM donations WHERE reference = ?`, charge.Reference); n != 1 {
		t.Errorf("donation rows = %d, want 1", n)
	}
	if len(f.dispatcher.sent) != receiptsBefore {
		t.Errorf("receipts sent = %d, want no receipt for the lost race", len(f.dispatcher.sent))
	}
}

func TestResendReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.ResendReceipt(ctx, "ref_unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown reference: got %v, want ErrNotFound", err)
	}

	if _, err := f.svc.RecordCharge(ctx, domain.Charge{
		Reference:        "ref_resend_1",
		Amount:           1600000,
		Currency:         "NGN",
		CustomerEmail:    "halima@example.com",
		OriginalAmount:   10,
		OriginalCurrency: "USD",
	}); err != nil {
		t.Fatalf("record charge: %v", err)
	}

	if err := f.svc.ResendReceipt(ctx, "ref_resend_1"); err != nil {
		t.Fatalf("resend receipt: %v", err)
	}
	if len(f.dispatcher.sent) != 2 {
		t.Errorf("receipts sent = %d, want 2", len(f.dispatcher.sent))
	}
}
