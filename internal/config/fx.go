package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("config",
	fx.Provide(
		Load,
		provideListingConfig,
	),
)

func provideListingConfig(log *zap.Logger) (*ListingConfigHolder, error) {
	return NewListingConfigHolder(log)
}
