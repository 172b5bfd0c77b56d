package db

import (
	"time"

	"github.com/smallbiznis/metr/internal/config"
)

type Config struct {
	Type            string
	Name            string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MetricsEnabled  bool
	LogLevel        string
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Type:            cfg.DBType,
		Name:            cfg.DBName,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTime) * time.Second,
		MetricsEnabled:  cfg.MetricsEnabled,
		LogLevel:        cfg.DBLogLevel,
	}
}
