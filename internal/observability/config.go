package observability

import (
	"strings"

	"github.com/smallbiznis/tally/internal/config"
)

// Config holds observability settings derived from application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	OtelEnabled          bool
	OtelExporterEndpoint string
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "tally"
	}
	return Config{
		ServiceName:          serviceName,
		Environment:          cfg.Environment,
		Version:              cfg.AppVersion,
		OtelEnabled:          cfg.OtelEnabled,
		OtelExporterEndpoint: cfg.OTLPEndpoint,
	}
}

func (c Config) Debug() bool {
	return c.Environment != "production"
}
