// Package config loads settings from ZEEGUU_* environment variables and an
// optional config file in the data directory.
package config

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by NewConfig.
const EnvPrefix = "ZEEGUU"

type (
	Config struct {
		HTTP
		API
		Storage
		Network
		Tasks
		Sync
		Log
		Global
	}

	// HTTP configures the local bridge started by `zeeguu serve`.
	HTTP struct {
		Port int32
		Host string
	}
	API struct {
		BaseURL           string
		Timeout           time.Duration
		MaxRetries        int
		RequestsPerSecond float64
		Burst             int
	}
	Storage struct {
		DataDir       string
		DatabasePath  string
		CacheDir      string
		EncryptionKey string // base64, 32 bytes
		Passphrase    string
		KeyFilePath   string
	}
	Network struct {
		Offline      bool // Treat the network as unavailable
		ProbeTimeout time.Duration
		ProbeTTL     time.Duration
	}
	Tasks struct {
		Enabled         bool // Offload response processing to the backlite queue
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Sync struct {
		Enabled  bool
		Schedule string // Cron format: "*/15 * * * *" = every 15 minutes
	}
	Log struct {
		Level string
		JSON  bool
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("port", 8189)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("api_url", "https://zeeguu.unibe.ch")
	v.SetDefault("api_timeout", "10s")
	v.SetDefault("api_max_retries", 1)
	v.SetDefault("api_requests_per_second", 5)
	v.SetDefault("api_burst", 5)

	v.SetDefault("offline", false)
	v.SetDefault("probe_timeout", "2s")
	v.SetDefault("probe_ttl", "30s")

	v.SetDefault("tasks_enabled", false)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("sync_enabled", true)
	v.SetDefault("sync_schedule", "*/15 * * * *")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	dataDir := expand(v.GetString("DATA_DIR"))
	readConfigFile(v, dataDir)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		API: API{
			BaseURL:           v.GetString("API_URL"),
			Timeout:           v.GetDuration("API_TIMEOUT"),
			MaxRetries:        v.GetInt("API_MAX_RETRIES"),
			RequestsPerSecond: v.GetFloat64("API_REQUESTS_PER_SECOND"),
			Burst:             v.GetInt("API_BURST"),
		},
		Storage: Storage{
			DataDir:       dataDir,
			DatabasePath:  pathIn(dataDir, expand(v.GetString("DATABASE_PATH")), DefaultDatabaseName),
			CacheDir:      pathIn(dataDir, expand(v.GetString("CACHE_DIR")), DefaultCacheDirName),
			EncryptionKey: v.GetString("ENCRYPTION_KEY"),
			Passphrase:    v.GetString("PASSPHRASE"),
			KeyFilePath:   expand(v.GetString("KEY_FILE")),
		},
		Network: Network{
			Offline:      v.GetBool("OFFLINE"),
			ProbeTimeout: v.GetDuration("PROBE_TIMEOUT"),
			ProbeTTL:     v.GetDuration("PROBE_TTL"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Sync: Sync{
			Enabled:  v.GetBool("SYNC_ENABLED"),
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
			JSON:  v.GetBool("LOG_JSON"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// readConfigFile merges config.{yaml,json,toml} from the data directory when
// present. Environment variables still win.
func readConfigFile(v *viper.Viper, dataDir string) {
	v.SetConfigName(DefaultConfigName)
	v.AddConfigPath(dataDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Failed to read config file: %v", err)
		}
	}
}

func expand(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Printf("Failed to expand %s: %v", path, err)
		return path
	}
	return expanded
}

// pathIn returns explicit when set, otherwise name inside dir.
func pathIn(dir, explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(dir, name)
}
