package migration

import (
	"github.com/smallbiznis/metr/internal/config"
	"github.com/smallbiznis/metr/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}

		if cfg.SeedSampleMeters {
			inserted, err := seed.EnsureSampleMeters(conn)
			if err != nil {
				return err
			}
			log.Info("sample meters seeded", zap.Int64("inserted", inserted))
		}
		return nil
	}),
)
