package suggestion

import (
	"github.com/spotlane/pricing/internal/suggestion/repository"
	"github.com/spotlane/pricing/internal/suggestion/service"
	"go.uber.org/fx"
)

var Module = fx.Module("suggestion.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
