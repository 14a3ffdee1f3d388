package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the sync service.
type Config struct {
	Org           OrgConfig           `mapstructure:"org"`
	Cursor        CursorConfig        `mapstructure:"cursor"`
	Port          PortConfig          `mapstructure:"port"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type OrgConfig struct {
	Identifier string `mapstructure:"identifier"`
}

// CursorConfig configures the Cursor Admin API client.
type CursorConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	PageSize   int           `mapstructure:"page_size"`
}

// PortConfig configures the Port export boundary.
type PortConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	AuthURL       string        `mapstructure:"auth_url"`
	BulkUpsertURL string        `mapstructure:"bulk_upsert_url"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	DryRun        bool          `mapstructure:"dry_run"`
}

// SyncConfig controls the day windows and optional pipeline stages.
type SyncConfig struct {
	LookbackDays     int           `mapstructure:"lookback_days"`
	Interval         time.Duration `mapstructure:"interval"`
	TeamMapFile      string        `mapstructure:"team_map_file"`
	AnonymizeEmails  bool          `mapstructure:"anonymize_emails"`
	IncludeAiMetrics bool          `mapstructure:"include_ai_metrics"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// Enabled reports whether run bookkeeping is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.URL) != ""
}

type ServerConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	ListenAddr            string        `mapstructure:"listen_addr"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

type ObservabilityConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
	// DryRun forces port.dry_run before validation, so a CLI flag can
	// waive the Port credential requirement.
	DryRun bool
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("SYNC_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("syncd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if opts.DryRun {
		cfg.Port.DryRun = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set.
func (c *Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Org.Identifier) == "" {
		missing = append(missing, "SYNC_ORG_IDENTIFIER")
	}
	if strings.TrimSpace(c.Cursor.APIKey) == "" {
		missing = append(missing, "SYNC_CURSOR_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Cursor.Timeout <= 0 {
		c.Cursor.Timeout = 60 * time.Second
	}
	if c.Cursor.MaxRetries <= 0 {
		c.Cursor.MaxRetries = 5
	}
	if c.Cursor.PageSize <= 0 {
		c.Cursor.PageSize = 200
	}

	// Port credentials are only required when the run actually exports.
	if !c.Port.DryRun {
		if strings.TrimSpace(c.Port.ClientID) == "" || strings.TrimSpace(c.Port.ClientSecret) == "" {
			return fmt.Errorf("port.client_id and port.client_secret must be provided unless port.dry_run is true")
		}
	}
	if c.Port.Timeout <= 0 {
		c.Port.Timeout = 60 * time.Second
	}
	if c.Port.MaxRetries <= 0 {
		c.Port.MaxRetries = 5
	}
	if c.Port.ChunkSize <= 0 {
		c.Port.ChunkSize = 300
	}

	if c.Sync.LookbackDays <= 0 {
		c.Sync.LookbackDays = 1
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("sync.interval must be >= 0")
	}

	if c.Database.Enabled() {
		if c.Database.RunMigrations && c.Database.MigrationsDir == "" {
			return fmt.Errorf("database.migrations_dir must be provided when run_migrations is true")
		}
		if c.Database.MaxConns < 0 {
			return fmt.Errorf("database.max_conns must be >= 0")
		}
	}

	if c.Server.Enabled && strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("server.listen_addr must be provided when the ops server is enabled")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults register the keys with viper so AutomaticEnv can
	// resolve them without a config file.
	v.SetDefault("org.identifier", "")
	v.SetDefault("cursor.api_key", "")
	v.SetDefault("port.client_id", "")
	v.SetDefault("port.client_secret", "")
	v.SetDefault("database.url", "")
	v.SetDefault("sync.team_map_file", "")

	v.SetDefault("cursor.base_url", "https://api.cursor.com")
	v.SetDefault("cursor.timeout", "60s")
	v.SetDefault("cursor.max_retries", 5)
	v.SetDefault("cursor.page_size", 200)

	v.SetDefault("port.base_url", "https://api.getport.io")
	v.SetDefault("port.auth_url", "https://api.getport.io/v1/auth/access_token")
	v.SetDefault("port.bulk_upsert_url", "https://api.getport.io/v1/entities/bulk")
	v.SetDefault("port.timeout", "60s")
	v.SetDefault("port.max_retries", 5)
	v.SetDefault("port.chunk_size", 300)
	v.SetDefault("port.dry_run", false)

	v.SetDefault("sync.lookback_days", 1)
	v.SetDefault("sync.interval", "0s")
	v.SetDefault("sync.anonymize_emails", false)
	v.SetDefault("sync.include_ai_metrics", true)

	v.SetDefault("database.run_migrations", true)
	v.SetDefault("database.migrations_dir", "./db/migrations")
	v.SetDefault("database.max_conns", 5)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("observability.enable_metrics", true)
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
