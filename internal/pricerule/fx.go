package pricerule

import (
	"github.com/spotlane/pricing/internal/pricerule/repository"
	"github.com/spotlane/pricing/internal/pricerule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricerule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
