package parking

import (
	"github.com/spotlane/pricing/internal/parking/repository"
	"github.com/spotlane/pricing/internal/parking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
