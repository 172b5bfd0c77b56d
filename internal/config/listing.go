package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ListingConfig controls list pagination defaults and bounds.
type ListingConfig struct {
	DefaultPage     int `mapstructure:"default_page"`
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

func DefaultListingConfig() ListingConfig {
	return ListingConfig{
		DefaultPage:     1,
		DefaultPageSize: 20,
		MaxPageSize:     250,
	}
}

type ListingConfigHolder struct {
	current atomic.Value // holds ListingConfig
}

// NewStaticListingConfigHolder returns a holder that never reloads.
func NewStaticListingConfigHolder(cfg ListingConfig) *ListingConfigHolder {
	holder := &ListingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewListingConfigHolder reads listing.yml from the given directories (or the
// default search path) and watches the file for changes.
func NewListingConfigHolder(log *zap.Logger, paths ...string) (*ListingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("listing.config")

	v := viper.New()
	v.SetConfigName("listing")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"/etc/metr", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("METR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeListingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticListingConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeListingConfig(v)
		if err != nil {
			log.Warn("listing config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("listing config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *ListingConfigHolder) Get() ListingConfig {
	return h.current.Load().(ListingConfig)
}

func decodeListingConfig(v *viper.Viper) (ListingConfig, error) {
	cfg := DefaultListingConfig()
	if err := v.UnmarshalKey("listing", &cfg); err != nil {
		return ListingConfig{}, err
	}
	if err := validateListingConfig(cfg); err != nil {
		return ListingConfig{}, err
	}
	return cfg, nil
}

func validateListingConfig(cfg ListingConfig) error {
	if cfg.DefaultPage < 1 {
		return errors.New("listing.default_page must be at least 1")
	}
	if cfg.MaxPageSize < 1 {
		return errors.New("listing.max_page_size must be at least 1")
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return fmt.Errorf("listing.default_page_size must be between 1 and %d", cfg.MaxPageSize)
	}
	return nil
}
