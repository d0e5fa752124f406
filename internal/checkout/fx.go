package checkout

import (
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/checkout/domain"
	"github.com/amainooti/Zakat-foundation/internal/checkout/service"
	"github.com/amainooti/Zakat-foundation/internal/paystack"
)

var Module = fx.Module("checkout.service",
	fx.Provide(func(client *paystack.Client) domain.Gateway { return client }),
	fx.Provide(service.NewService),
)
