package pricing

import (
	"github.com/spotlane/pricing/internal/pricing/repository"
	"github.com/spotlane/pricing/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
