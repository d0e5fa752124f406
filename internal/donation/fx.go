package donation

import (
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/donation/repository"
	"github.com/amainooti/Zakat-foundation/internal/donation/service"
)

var Module = fx.Module("donation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
