package observability

import (
	"go.uber.org/fx"

	"github.com/amainooti/Zakat-foundation/internal/observability/metrics"
)

var Module = fx.Module("observability",
	fx.Provide(metrics.New),
)
