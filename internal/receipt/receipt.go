package receipt

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/amainooti/Zakat-foundation/internal/config"
	"github.com/amainooti/Zakat-foundation/internal/providers/email"
)

//go:embed templates/receipt.html
var templates embed.FS

var receiptTmpl = template.Must(template.ParseFS(templates, "templates/receipt.html"))

// Receipt carries everything the thank-you email needs. Amount and
// Currency are the donor-facing figures, never the settlement ones.
type Receipt struct {
	To            string
	DonorName     string
	Amount        float64
	Currency      string
	CampaignTitle string
	CampaignSlug  string
	Reference     string
	IsRecurring   bool
}

type Dispatcher interface {
	SendReceipt(ctx context.Context, r Receipt) error
}

type emailDispatcher struct {
	provider  email.Provider
	log       *zap.Logger
	siteURL   string
	fromEmail string
}

func NewDispatcher(cfg config.Config, provider email.Provider, log *zap.Logger) Dispatcher {
	return &emailDispatcher{
		provider:  provider,
		log:       log.Named("receipt"),
		siteURL:   cfg.SiteURL,
		fromEmail: cfg.Email.From,
	}
}

type templateData struct {
	DonorName       string
	FormattedAmount string
	CampaignTitle   string
	CampaignURL     string
	Reference       string
	IsRecurring     bool
	FromEmail       string
}

func (d *emailDispatcher) SendReceipt(ctx context.Context, r Receipt) error {
	to := strings.TrimSpace(r.To)
	if to == "" {
		return fmt.Errorf("receipt: missing recipient")
	}

	name := strings.TrimSpace(r.DonorName)
	if name == "" {
		name = "Friend"
	}

	data := templateData{
		DonorName:       name,
		FormattedAmount: FormatAmount(r.Amount, r.Currency),
		CampaignTitle:   r.CampaignTitle,
		Reference:       r.Reference,
		IsRecurring:     r.IsRecurring,
		FromEmail:       d.fromEmail,
	}
	if r.CampaignSlug != "" {
		data.CampaignURL = d.siteURL + "/campaigns/" + r.CampaignSlug
	}

	var body bytes.Buffer
	if err := receiptTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("receipt: render template: %w", err)
	}

	if err := d.provider.Send(ctx, []string{to}, "Your donation receipt", body.String()); err != nil {
		return fmt.Errorf("receipt: send: %w", err)
	}

	d.log.Info("receipt sent", zap.String("reference", r.Reference))
	return nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"NGN": "₦",
	"GBP": "£",
	"EUR": "€",
}

// FormatAmount renders an amount the way the receipt shows it, with a
// currency symbol when one is known and thousands separators.
func FormatAmount(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	formatted := groupThousands(fmt.Sprintf("%.2f", amount))
	if symbol, ok := currencySymbols[code]; ok {
		return symbol + formatted
	}
	if code == "" {
		return formatted
	}
	return code + " " + formatted
}

func groupThousands(s string) string {
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}
