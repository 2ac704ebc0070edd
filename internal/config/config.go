package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cityzones/safezones-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Zones    ZonesConfig    `yaml:"zones" mapstructure:"zones"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegistryConfig selects the hazard category registry. File replaces the
// built-in registry wholesale; BufferOverrides adjusts individual radii of
// whichever registry is active.
type RegistryConfig struct {
	File            string             `yaml:"file" mapstructure:"file"`
	BufferOverrides map[string]float64 `yaml:"buffer_overrides" mapstructure:"buffer_overrides"`
}

// OverpassConfig configures the OpenStreetMap data loaders.
type OverpassConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	NominatimURL   string  `yaml:"nominatim_url" mapstructure:"nominatim_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries        int     `yaml:"retries" mapstructure:"retries"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	CachePath      string  `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTLHours  int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// EngineConfig configures the buffer-union stage.
type EngineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ZonesConfig configures free-space extraction and annotation.
type ZonesConfig struct {
	MinAreaM2       float64                `yaml:"min_area_m2" mapstructure:"min_area_m2"`
	SizeBreakpoints []model.SizeBreakpoint `yaml:"size_breakpoints" mapstructure:"size_breakpoints"`
}

// ExportConfig configures result serialization.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEZONES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("overpass.user_agent", "safezones-cli/1.0")
	v.SetDefault("overpass.timeout_secs", 180)
	v.SetDefault("overpass.retries", 3)
	v.SetDefault("overpass.requests_per_sec", 1)
	v.SetDefault("overpass.cache_path", ".safezones/cache.db")
	v.SetDefault("overpass.cache_ttl_hours", 24)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("zones.min_area_m2", 2000)
	v.SetDefault("export.dir", "output")
	v.SetDefault("export.formats", []string{"geojson"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Zones.SizeBreakpoints) == 0 {
		cfg.Zones.SizeBreakpoints = model.DefaultSizeBreakpoints()
	} else if err := model.ValidateSizeBreakpoints(cfg.Zones.SizeBreakpoints); err != nil {
		return nil, eris.Wrap(err, "config: zones.size_breakpoints")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
