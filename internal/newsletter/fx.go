package newsletter

import (
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/newsletter/repository"
	"github.com/amainooti/Zakat-foundation/internal/newsletter/service"
)

var Module = fx.Module("newsletter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
