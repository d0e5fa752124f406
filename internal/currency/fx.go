package currency

import (
	"github.com/amainooti/Zakat-foundation/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("currency",
	fx.Provide(LoadRates),
	fx.Provide(func(cfg config.Config, rates Rates) *Converter {
		return NewConverter(cfg.Donation.SettlementCurrency, cfg.Donation.BaseCurrency, rates)
	}),
)
