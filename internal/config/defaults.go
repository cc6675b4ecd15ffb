package config

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ResourceDefaults controls how new resources are created when the caller
// leaves the billing flags unset, and how long ledger mutations may hold the
// per-resource lock.
type ResourceDefaults struct {
	PrePaid  bool          `mapstructure:"prePaid"`
	Prorated bool          `mapstructure:"prorated"`
	LockTTL  time.Duration `mapstructure:"lockTTL"`
}

func DefaultResourceDefaults() ResourceDefaults {
	return ResourceDefaults{
		PrePaid:  true,
		Prorated: false,
		LockTTL:  5 * time.Second,
	}
}

type ResourceDefaultsHolder struct {
	current atomic.Value // holds ResourceDefaults
}

func NewResourceDefaultsHolder() (*ResourceDefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("tally")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tally/config") // Volume-mounted config
	v.AddConfigPath("/etc/tally")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultResourceDefaults()
	v.SetDefault("resource.prePaid", defaults.PrePaid)
	v.SetDefault("resource.prorated", defaults.Prorated)
	v.SetDefault("resource.lockTTL", defaults.LockTTL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ResourceDefaults
	if err := v.UnmarshalKey("resource", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeResourceDefaults(cfg)

	holder := &ResourceDefaultsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ResourceDefaults
		if err := v.UnmarshalKey("resource", &updated); err != nil {
			log.Printf("[resource-config] reload failed: %v", err)
			return
		}
		holder.current.Store(normalizeResourceDefaults(updated))
		log.Printf("[resource-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticResourceDefaultsHolder returns a holder pinned to cfg with no
// file watching. Intended for tests.
func NewStaticResourceDefaultsHolder(cfg ResourceDefaults) *ResourceDefaultsHolder {
	holder := &ResourceDefaultsHolder{}
	holder.current.Store(normalizeResourceDefaults(cfg))
	return holder
}

func (h *ResourceDefaultsHolder) Get() ResourceDefaults {
	return h.current.Load().(ResourceDefaults)
}

func normalizeResourceDefaults(cfg ResourceDefaults) ResourceDefaults {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultResourceDefaults().LockTTL
	}
	return cfg
}
