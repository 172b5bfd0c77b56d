package meter

import (
	"github.com/smallbiznis/metr/internal/meter/repository"
	"github.com/smallbiznis/metr/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
