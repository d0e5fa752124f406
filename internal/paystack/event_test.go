package paystack_test

import (
	"errors"
	"testing"

	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

func TestParseEventChargeSuccess(t *testing.T) {
	payload := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref_abc123",
			"amount": 80000,
			"currency": "ngn",
			"customer": {"email": "amina@example.com", "first_name": "Amina", "last_name": "Yusuf"},
			"plan": "PLN_monthly",
			"metadata": {
				"campaign_id": "1234567890",
				"campaign_slug": "water-wells",
				"donor_name": "Amina Yusuf",
				"original_amount": 50,
				"original_currency": "usd",
				"is_recurring": true,
				"newsletter_opt_in": "true"
			}
		}
	}`)

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	charge, ok := event.(paystack.ChargeSuccessEvent)
	if !ok {
		t.Fatalf("expected ChargeSuccessEvent, got %T", event)
	}

	if charge.Reference != "ref_abc123" {
		t.Errorf("reference = %q", charge.Reference)
	}
	if charge.Amount != 80000 {
		t.Errorf("amount = %d", charge.Amount)
	}
	if charge.Currency != "NGN" {
		t.Errorf("currency = %q", charge.Currency)
	}
	if charge.Customer.Email != "amina@example.com" {
		t.Errorf("customer email = %q", charge.Customer.Email)
	}
	if charge.PlanCode != "PLN_monthly" {
		t.Errorf("plan code = %q", charge.PlanCode)
	}
	if charge.Metadata.CampaignID != "1234567890" {
		t.Errorf("campaign id = %q", charge.Metadata.CampaignID)
	}
	if charge.Metadata.OriginalAmount != 50 {
		t.Errorf("original amount = %v", charge.Metadata.OriginalAmount)
	}
	if charge.Metadata.OriginalCurrency != "USD" {
		t.Errorf("original currency = %q", charge.Metadata.OriginalCurrency)
	}
	if !charge.Metadata.IsRecurring {
		t.Error("expected is_recurring true")
	}
	if !charge.Metadata.NewsletterOptIn {
		t.Error("expected newsletter_opt_in coerced from string")
	}
}

func TestParseEventPlanObject(t *testing.T) {
	payload := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref_plan",
			"amount": 16000,
			"currency": "NGN",
			"plan": {"plan_code": "PLN_weekly", "name": "Weekly"}
		}
	}`)

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	charge, ok := event.(paystack.ChargeSuccessEvent)
	if !ok {
		t.Fatalf("expected ChargeSuccessEvent, got %T", event)
	}
	if charge.PlanCode != "PLN_weekly" {
		t.Errorf("plan code = %q", charge.PlanCode)
	}
}

func TestParseEventMetadataStringCoercion(t *testing.T) {
	payload := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref_meta",
			"amount": 16000,
			"currency": "NGN",
			"metadata": {
				"campaign_id": 42,
				"original_amount": "25.50",
				"is_recurring": "false",
				"newsletter_opt_in": 1
			}
		}
	}`)

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	charge := event.(paystack.ChargeSuccessEvent)

	if charge.Metadata.CampaignID != "42" {
		t.Errorf("campaign id = %q, want numeric coerced to string", charge.Metadata.CampaignID)
	}
	if charge.Metadata.OriginalAmount != 25.50 {
		t.Errorf("original amount = %v", charge.Metadata.OriginalAmount)
	}
	if charge.Metadata.IsRecurring {
		t.Error("expected string false to coerce to false")
	}
	if !charge.Metadata.NewsletterOptIn {
		t.Error("expected numeric 1 to coerce to true")
	}
}

func TestParseEventEmptyMetadataString(t *testing.T) {
	// Paystack sends "" when no metadata was attached at checkout.
	payload := []byte(`{
		"event": "charge.success",
		"data": {"reference": "ref_bare", "amount": 16000, "currency": "NGN", "metadata": ""}
	}`)

	event, err := paystack.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	charge := event.(paystack.ChargeSuccessEvent)
	if charge.Metadata != (paystack.ChargeMetadata{}) {
		t.Errorf("expected zero metadata, got %+v", charge.Metadata)
	}
}

func TestParseEventSubscriptionCreate(t *testing.T) {
	event, err := paystack.ParseEvent([]byte(`{"event":"subscription.create","data":{"subscription_code":"SUB_1"}}`))
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if _, ok := event.(paystack.SubscriptionCreateEvent); !ok {
		t.Fatalf("expected SubscriptionCreateEvent, got %T", event)
	}
}

func TestParseEventUnknownType(t *testing.T) {
	event, err := paystack.ParseEvent([]byte(`{"event":"invoice.update","data":{}}`))
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	unrecognized, ok := event.(paystack.UnrecognizedEvent)
	if !ok {
		t.Fatalf("expected UnrecognizedEvent, got %T", event)
	}
	if unrecognized.Type != "invoice.update" {
		t.Errorf("type = %q", unrecognized.Type)
	}
}

func TestParseEventIncompleteCharge(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing reference", `{"event":"charge.success","data":{"amount":16000}}`},
		{"zero amount", `{"event":"charge.success","data":{"reference":"ref_z","amount":0}}`},
		{"malformed data", `{"event":"charge.success","data":[1,2,3]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := paystack.ParseEvent([]byte(tc.payload))
			if err != nil {
				t.Fatalf("parse event: %v", err)
			}
			if _, ok := event.(paystack.UnrecognizedEvent); !ok {
				t.Fatalf("expected UnrecognizedEvent, got %T", event)
			}
		})
	}
}

func TestParseEventInvalidJSON(t *testing.T) {
	_, err := paystack.ParseEvent([]byte(`{"event":`))
	if !errors.Is(err, paystack.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
