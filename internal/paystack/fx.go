package paystack

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/amainooti/Zakat-foundation/internal/config"
)

var Module = fx.Module("paystack",
	fx.Provide(
		func(cfg config.Config, log *zap.Logger) (*Client, error) {
			return NewClient(cfg.Paystack, log)
		},
	),
)
