package paystack

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	eventChargeSuccess      = "charge.success"
	eventSubscriptionCreate = "subscription.create"
)

// Event is the closed set of webhook shapes the reconciler understands.
// Everything the gateway sends is narrowed into one of these before any
// field is read; shapes that don't fit become UnrecognizedEvent.
type Event interface {
	isPaystackEvent()
}

// ChargeSuccessEvent is a verified successful charge. Amount is in the
// smallest settlement-currency unit as reported by the gateway.
type ChargeSuccessEvent struct {
	Reference string
	Amount    int64
	Currency  string
	Customer  Customer
	PlanCode  string
	Metadata  ChargeMetadata
	Raw       []byte
}

// SubscriptionCreateEvent is acknowledged as a no-op: the first charge
// on a subscription arrives as its own charge.success delivery.
type SubscriptionCreateEvent struct {
	Raw []byte
}

// UnrecognizedEvent covers unknown event types and recognized types
// whose payload doesn't carry the fields processing requires.
type UnrecognizedEvent struct {
	Type string
}

func (ChargeSuccessEvent) isPaystackEvent()      {}
func (SubscriptionCreateEvent) isPaystackEvent() {}
func (UnrecognizedEvent) isPaystackEvent()       {}

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ChargeMetadata is the metadata envelope attached at checkout and
// round-tripped by the gateway. OriginalAmount/OriginalCurrency carry
// the donor-facing figures; the gateway's own amount field is always in
// the settlement currency.
type ChargeMetadata struct {
	CampaignID       string  `json:"campaign_id,omitempty"`
	CampaignSlug     string  `json:"campaign_slug,omitempty"`
	DonorName        string  `json:"donor_name,omitempty"`
	OriginalAmount   float64 `json:"original_amount,omitempty"`
	OriginalCurrency string  `json:"original_currency,omitempty"`
	IsRecurring      bool    `json:"is_recurring"`
	NewsletterOptIn  bool    `json:"newsletter_opt_in"`
}

type eventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chargeData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  Customer        `json:"customer"`
	Plan      json.RawMessage `json:"plan"`
	Metadata  json.RawMessage `json:"metadata"`
}

// ParseEvent narrows a raw webhook body into a typed event. Only an
// unparseable envelope is an error; recognized-but-incomplete payloads
// degrade to UnrecognizedEvent so the transport acknowledges them.
func ParseEvent(payload []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, ErrInvalidPayload
	}

	switch env.Event {
	case eventChargeSuccess:
		return parseCharge(env, payload)
	case eventSubscriptionCreate:
		return SubscriptionCreateEvent{Raw: payload}, nil
	default:
		return UnrecognizedEvent{Type: env.Event}, nil
	}
}

func parseCharge(env eventEnvelope, payload []byte) (Event, error) {
	var data chargeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return UnrecognizedEvent{Type: env.Event}, nil
	}
	if strings.TrimSpace(data.Reference) == "" || data.Amount <= 0 {
		return UnrecognizedEvent{Type: env.Event}, nil
	}

	return ChargeSuccessEvent{
		Reference: strings.TrimSpace(data.Reference),
		Amount:    data.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(data.Currency)),
		Customer:  data.Customer,
		PlanCode:  decodePlanCode(data.Plan),
		Metadata:  decodeMetadata(data.Metadata),
		Raw:       payload,
	}, nil
}

// decodePlanCode tolerates both shapes the gateway uses: a bare plan
// code string or an expanded plan object.
func decodePlanCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return strings.TrimSpace(code)
	}
	var plan struct {
		PlanCode string `json:"plan_code"`
	}
	if err := json.Unmarshal(raw, &plan); err == nil {
		return strings.TrimSpace(plan.PlanCode)
	}
	return ""
}

// decodeMetadata coerces the untyped metadata object. Paystack delivers
// an empty string when no metadata was attached, and numeric or boolean
// values may arrive as strings depending on the channel.
func decodeMetadata(raw json.RawMessage) ChargeMetadata {
	if len(raw) == 0 {
		return ChargeMetadata{}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ChargeMetadata{}
	}
	return ChargeMetadata{
		CampaignID:       readMetaString(fields, "campaign_id"),
		CampaignSlug:     readMetaString(fields, "campaign_slug"),
		DonorName:        readMetaString(fields, "donor_name"),
		OriginalAmount:   readMetaFloat(fields, "original_amount"),
		OriginalCurrency: strings.ToUpper(readMetaString(fields, "original_currency")),
		IsRecurring:      readMetaBool(fields, "is_recurring"),
		NewsletterOptIn:  readMetaBool(fields, "newsletter_opt_in"),
	}
}

func readMetaString(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case float64:
		if cast == 0 {
			return ""
		}
		return strconv.FormatInt(int64(cast), 10)
	case json.Number:
		return cast.String()
	}
	return ""
}

func readMetaFloat(fields map[string]any, key string) float64 {
	value, ok := fields[key]
	if !ok {
		return 0
	}
	switch cast := value.(type) {
	case float64:
		return cast
	case json.Number:
		parsed, err := cast.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(cast), 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

func readMetaBool(fields map[string]any, key string) bool {
	value, ok := fields[key]
	if !ok {
		return false
	}
	switch cast := value.(type) {
	case bool:
		return cast
	case string:
		return strings.EqualFold(strings.TrimSpace(cast), "true")
	case float64:
		return cast != 0
	}
	return false
}
