package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/coasterranker/coastermap/internal/matcher"
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/constants"
	pkgerrors "github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/merger"
)

// envPrefix namespaces the environment variables read by viper, e.g.
// COASTERMAP_STORE_PATH.
const envPrefix = "COASTERMAP"

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog files
	StorePath string
	XrefPath  string
	BackupDir string
	NoBackup  bool

	// Batch updates
	ProgressPath string
	SaveInterval int
	FetchDelay   time.Duration

	// Merge engine
	ExcludeModels        []string
	ExcludeManufacturers []string
	ExcludeNames         []string
	IDPrefix             string
	IDWidth              int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.coastermap.yaml or ./.coastermap.yaml)
//  5. Defaults
//
// configFile overrides the config file search; COASTERMAP_CONFIG does the
// same when configFile is empty.
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".coastermap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &pkgerrors.ConfigError{Component: "config file", Message: err.Error(), Err: err}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		StorePath: v.GetString("store_path"),
		XrefPath:  v.GetString("xref_path"),
		BackupDir: v.GetString("backup_dir"),
		NoBackup:  v.GetBool("no_backup"),

		ProgressPath: v.GetString("progress_path"),
		SaveInterval: v.GetInt("save_interval"),
		FetchDelay:   v.GetDuration("fetch_delay"),

		ExcludeModels:        v.GetStringSlice("exclude_models"),
		ExcludeManufacturers: v.GetStringSlice("exclude_manufacturers"),
		ExcludeNames:         v.GetStringSlice("exclude_names"),
		IDPrefix:             v.GetString("id_prefix"),
		IDWidth:              v.GetInt("id_width"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	denylist := merger.DefaultDenylist()
	v.SetDefault("store_path", constants.DefaultStorePath)
	v.SetDefault("xref_path", constants.DefaultCrossReferencePath)
	v.SetDefault("progress_path", constants.DefaultProgressPath)
	v.SetDefault("save_interval", constants.DefaultSaveInterval)
	v.SetDefault("fetch_delay", constants.DefaultFetchDelay)
	v.SetDefault("exclude_models", denylist.Models)
	v.SetDefault("exclude_manufacturers", denylist.Manufacturers)
	v.SetDefault("id_prefix", constants.DefaultIDPrefix)
	v.SetDefault("id_width", constants.DefaultIDWidth)
}

// Denylist returns the configured merge denylist.
func (c *Config) Denylist() merger.Denylist {
	return merger.Denylist{
		Models:        c.ExcludeModels,
		Manufacturers: c.ExcludeManufacturers,
	}
}

// NameExclusion returns a merge predicate dropping records whose name
// matches any configured glob or regex, or nil when none are configured.
// Matching ignores case.
func (c *Config) NameExclusion() (merger.Predicate, error) {
	set, err := matcher.NewSet(c.ExcludeNames, &matcher.Options{CaseInsensitive: true, Anchored: true})
	if err != nil {
		return nil, &pkgerrors.ConfigError{Component: "exclude_names", Message: err.Error(), Err: err}
	}
	if set.Len() == 0 {
		return nil, nil
	}
	return func(record *coasters.Record) bool {
		_, ok := set.Match(record.Name())
		return ok
	}, nil
}

// IDScheme returns the configured local id scheme.
func (c *Config) IDScheme() merger.IDScheme {
	return merger.IDScheme{Prefix: c.IDPrefix, Width: c.IDWidth}
}

// UpdateFromFlags updates config values from parsed command flags. Flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
