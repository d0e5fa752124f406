package campaign

import (
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/campaign/repository"
	"github.com/amainooti/Zakat-foundation/internal/campaign/service"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
